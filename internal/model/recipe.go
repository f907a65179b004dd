package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// IngredientGroup is one named section of a recipe's ingredient list
// (e.g. "For the Marinade") with its items in order.
type IngredientGroup struct {
	GroupName string   `json:"group_name"`
	Items     []string `json:"items"`
}

// Macros holds estimated per-serving macronutrients.
type Macros struct {
	Calories int `json:"calories"`
	Protein  int `json:"protein"`
	Carbs    int `json:"carbs"`
	Fat      int `json:"fat"`
}

// Recipe is the generated content as returned by the LLM provider.
// Instructions may carry inline <strong> emphasis markup.
type Recipe struct {
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	PrepTime     string            `json:"prep_time"`
	CookTime     string            `json:"cook_time"`
	Servings     string            `json:"servings"`
	Macros       *Macros           `json:"macros,omitempty"`
	Ingredients  []IngredientGroup `json:"ingredients"`
	Instructions []string          `json:"instructions"`
	Notes        []string          `json:"notes"`
}

// RecipeJSON stores a Recipe as a JSONB column.
type RecipeJSON Recipe

// Value implements the driver.Valuer interface
func (r RecipeJSON) Value() (driver.Value, error) {
	return json.Marshal(r)
}

// Scan implements the sql.Scanner interface
func (r *RecipeJSON) Scan(value interface{}) error {
	if value == nil {
		*r = RecipeJSON{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported recipe column type %T", value)
	}

	return json.Unmarshal(bytes, r)
}

// Recipe returns the payload as a plain Recipe.
func (r RecipeJSON) Recipe() Recipe { return Recipe(r) }

// RecipeRecord is the persisted envelope around a generated Recipe:
// ownership, the originating prompt and modifiers, timestamps and the
// soft-archive state. Records are never deleted, only archived.
type RecipeRecord struct {
	ID             string     `gorm:"type:char(32);primaryKey" json:"id"`
	UID            string     `gorm:"size:128;not null;index" json:"uid"`
	Prompt         string     `gorm:"type:text;not null" json:"prompt"`
	Complexity     string     `gorm:"size:20" json:"complexity"`
	Diet           string     `gorm:"size:20" json:"diet"`
	TimeConstraint string     `gorm:"size:20" json:"time"`
	Servings       string     `gorm:"size:20" json:"servings"`
	Recipe         RecipeJSON `gorm:"type:jsonb;not null" json:"recipe"`
	ImageURL       string     `gorm:"size:512" json:"image_url"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	Archived       bool       `gorm:"not null;default:false;index" json:"archived"`
	ArchivedAt     *time.Time `json:"archived_at,omitempty"`
}

// RecordSnapshot is the cached view of a record: enough to serve a read
// without touching the data store. Prompt is only exposed to the owner.
type RecordSnapshot struct {
	Recipe    Recipe    `json:"recipe"`
	UID       string    `json:"uid"`
	ImageURL  string    `json:"image_url"`
	Prompt    string    `json:"prompt"`
	Timestamp time.Time `json:"timestamp"`
}

// Snapshot builds the cacheable view of a record.
func (r *RecipeRecord) Snapshot() RecordSnapshot {
	return RecordSnapshot{
		Recipe:    r.Recipe.Recipe(),
		UID:       r.UID,
		ImageURL:  r.ImageURL,
		Prompt:    r.Prompt,
		Timestamp: r.UpdatedAt,
	}
}
