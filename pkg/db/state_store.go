package db

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/moda-storefront/pkg/db/models"
	"github.com/angelmondragon/moda-storefront/pkg/storage"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StateStore implements storage.Store over the storefront_state table.
type StateStore struct {
	db *gorm.DB
}

var _ storage.Store = (*StateStore)(nil)

// NewStateStore builds a store tied to the provided GORM DB.
func NewStateStore(db *gorm.DB) *StateStore {
	return &StateStore{db: db}
}

func (s *StateStore) Get(ctx context.Context, key string) ([]byte, error) {
	var entry models.StateEntry
	err := s.db.WithContext(ctx).Where("state_key = ?", key).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry.Value, nil
}

func (s *StateStore) Set(ctx context.Context, key string, value []byte) error {
	entry := models.StateEntry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "state_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

func (s *StateStore) Remove(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("state_key = ?", key).Delete(&models.StateEntry{}).Error
}
