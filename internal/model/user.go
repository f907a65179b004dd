package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// MaxFavorites caps the favorites list per user profile.
const MaxFavorites = 500

// FavoriteItem is one entry in a user's favorites list: a recipe id plus
// the title cached at the time it was favorited.
type FavoriteItem struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// FavoriteList stores favorites as a JSONB column.
type FavoriteList []FavoriteItem

// Value implements the driver.Valuer interface
func (l FavoriteList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	return json.Marshal(l)
}

// Scan implements the sql.Scanner interface
func (l *FavoriteList) Scan(value interface{}) error {
	if value == nil {
		*l = FavoriteList{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported favorites column type %T", value)
	}

	return json.Unmarshal(bytes, l)
}

// IDs returns just the recipe identifiers, in list order.
func (l FavoriteList) IDs() []string {
	ids := make([]string, 0, len(l))
	for _, f := range l {
		ids = append(ids, f.ID)
	}
	return ids
}

// Contains reports whether a recipe id is already favorited.
func (l FavoriteList) Contains(id string) bool {
	for _, f := range l {
		if f.ID == id {
			return true
		}
	}
	return false
}

// Preferences holds per-user feature preferences.
type Preferences struct {
	ImageGenerationEnabled bool `json:"imageGenerationEnabled"`
}

// DefaultPreferences returns the preferences applied before a user has
// written any.
func DefaultPreferences() Preferences {
	return Preferences{ImageGenerationEnabled: true}
}

// PreferencesJSON stores Preferences as a JSONB column.
type PreferencesJSON Preferences

// Value implements the driver.Valuer interface
func (p PreferencesJSON) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements the sql.Scanner interface
func (p *PreferencesJSON) Scan(value interface{}) error {
	if value == nil {
		*p = PreferencesJSON(DefaultPreferences())
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported preferences column type %T", value)
	}

	return json.Unmarshal(bytes, p)
}

// UserProfile is per-user auxiliary state keyed by the verified user id.
// Created lazily on first write and never deleted.
type UserProfile struct {
	UID         string          `gorm:"size:128;primaryKey" json:"uid"`
	DisplayName string          `gorm:"size:255" json:"display_name"`
	Favorites   FavoriteList    `gorm:"type:jsonb;not null;default:'[]'" json:"favorites"`
	Preferences PreferencesJSON `gorm:"type:jsonb" json:"preferences"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
