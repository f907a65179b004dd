// Package store is the data access layer over the document tables:
// recipe records and user profiles. Ownership checks belong to the
// handlers, not here.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/recipelab/backend/internal/model"
)

// ErrNotFound is returned when a record lookup matches nothing.
var ErrNotFound = errors.New("record not found")

// MaxPageSize bounds history pagination.
const (
	MaxPageSize     = 50
	DefaultPageSize = 20
)

// Store wraps the database for recipe records and user profiles.
type Store struct {
	db *gorm.DB
}

// New creates a Store on top of an open gorm connection.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// NewID assigns record identifiers. Hex-compacted UUIDs keep them opaque
// while satisfying the alphanumeric id format exposed in URLs.
func NewID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// CreateRecipeRecord appends a new record and returns its generated id.
func (s *Store) CreateRecipeRecord(ctx context.Context, rec *model.RecipeRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = NewID()
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return "", fmt.Errorf("failed to create recipe record: %w", err)
	}
	return rec.ID, nil
}

// GetRecipeRecord loads a record by id, archived or not.
func (s *Store) GetRecipeRecord(ctx context.Context, id string) (*model.RecipeRecord, error) {
	var rec model.RecipeRecord
	if err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load recipe record: %w", err)
	}
	return &rec, nil
}

// UpdateRecipeRecord merges the given fields into an existing record. It
// does not replace the whole document; last write wins on races.
func (s *Store) UpdateRecipeRecord(ctx context.Context, id string, fields map[string]interface{}) error {
	err := s.db.WithContext(ctx).
		Model(&model.RecipeRecord{}).
		Where("id = ?", id).
		Updates(fields).Error
	if err != nil {
		return fmt.Errorf("failed to update recipe record: %w", err)
	}
	return nil
}

// ListRecipeRecords returns the caller's non-archived records, newest
// first. limit is clamped to MaxPageSize.
func (s *Store) ListRecipeRecords(ctx context.Context, uid string, limit, offset int) ([]model.RecipeRecord, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	var recs []model.RecipeRecord
	err := s.db.WithContext(ctx).
		Where("uid = ? AND archived = ?", uid, false).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recipe records: %w", err)
	}
	return recs, nil
}

// GetUserProfile loads a profile, returning an empty default when the user
// has never written one.
func (s *Store) GetUserProfile(ctx context.Context, uid string) (*model.UserProfile, error) {
	var profile model.UserProfile
	err := s.db.WithContext(ctx).First(&profile, "uid = ?", uid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &model.UserProfile{
			UID:         uid,
			Favorites:   model.FavoriteList{},
			Preferences: model.PreferencesJSON(model.DefaultPreferences()),
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user profile: %w", err)
	}
	return &profile, nil
}

// SaveUserProfile upserts a profile row. Callers load-modify-save, so a
// write merges at field granularity; concurrent writers are last-write-wins.
func (s *Store) SaveUserProfile(ctx context.Context, profile *model.UserProfile) error {
	if err := s.db.WithContext(ctx).Save(profile).Error; err != nil {
		return fmt.Errorf("failed to save user profile: %w", err)
	}
	return nil
}

// HealthCheck probes database reachability with a one-row query.
func (s *Store) HealthCheck(ctx context.Context) error {
	var recs []model.RecipeRecord
	return s.db.WithContext(ctx).Limit(1).Find(&recs).Error
}
