package service

import (
	"context"

	"github.com/recipelab/backend/internal/model"
)

// MockRecipeGenerator returns a fixed recipe without calling any provider.
// Used when the server runs in mock mode.
type MockRecipeGenerator struct{}

func (MockRecipeGenerator) Generate(ctx context.Context, prompt string, mods Modifiers) (*model.Recipe, error) {
	return mockRecipe(), nil
}

func (MockRecipeGenerator) Update(ctx context.Context, original *model.Recipe, modifications string) (*model.Recipe, error) {
	updated := *original
	updated.Title = original.Title + " (Modified)"
	return &updated, nil
}

func mockRecipe() *model.Recipe {
	return &model.Recipe{
		Title:       "Classic Spaghetti Carbonara",
		Description: "A silky Roman pasta built on eggs, cured pork, and sharp cheese. No cream needed: the sauce comes together from starchy pasta water and residual heat.",
		PrepTime:    "10 minutes",
		CookTime:    "15 minutes",
		Servings:    "4 servings",
		Macros: &model.Macros{
			Calories: 650,
			Protein:  28,
			Carbs:    70,
			Fat:      26,
		},
		Ingredients: []model.IngredientGroup{
			{
				GroupName: "Main",
				Items: []string{
					"400g (14oz) spaghetti",
					"150g (5oz) guanciale or pancetta, cut into 1cm batons",
					"4 large egg yolks plus 1 whole egg",
					"100g (3.5oz) Pecorino Romano, finely grated",
					"Freshly cracked black pepper",
					"Kosher salt for the pasta water",
				},
			},
		},
		Instructions: []string{
			"Bring a large pot of salted water to a <strong>rolling boil</strong> and cook the spaghetti until just shy of al dente.",
			"Meanwhile, render the guanciale in a cold skillet over <strong>medium heat</strong> until the fat runs and the edges crisp, about <strong>6 minutes</strong>.",
			"Whisk the yolks, whole egg, and most of the Pecorino with a heavy dose of black pepper.",
			"Reserve <strong>1 cup of pasta water</strong>, then transfer the pasta straight into the skillet off the heat.",
			"Temper the egg mixture with a splash of pasta water, pour over the pasta, and toss vigorously until the sauce turns <strong>glossy and clings to each strand</strong>.",
			"Serve immediately with the remaining Pecorino and more pepper.",
		},
		Notes: []string{
			"The skillet must be off the heat when the eggs go in or they will scramble.",
			"Pecorino can be split with Parmigiano-Reggiano for a milder sauce.",
		},
	}
}
