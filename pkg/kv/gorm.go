package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entry is the row layout of the kv_entries table.
type Entry struct {
	Namespace string    `gorm:"column:namespace;primaryKey;size:64"`
	Key       string    `gorm:"column:entry_key;primaryKey;size:255"`
	Value     string    `gorm:"column:value;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (Entry) TableName() string { return "kv_entries" }

// GormStore persists entries in a SQL table. On a device it runs over SQLite;
// it also works against Postgres when the service is hosted.
type GormStore struct {
	db        *gorm.DB
	namespace string
	now       func() time.Time
}

func NewGormStore(db *gorm.DB, namespace string) (*GormStore, error) {
	if db == nil {
		return nil, errors.New("kv: gorm db is required")
	}
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		return nil, errors.New("kv: namespace is required")
	}
	return &GormStore{db: db, namespace: namespace, now: time.Now}, nil
}

// EnsureSchema creates the kv_entries table when it does not exist yet.
// Hosted Postgres gets the table from the goose migrations instead.
func (s *GormStore) EnsureSchema(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&Entry{}); err != nil {
		return fmt.Errorf("migrate kv_entries: %w", err)
	}
	return nil
}

func (s *GormStore) Get(ctx context.Context, key string) (string, error) {
	var entry Entry
	err := s.db.WithContext(ctx).
		Where("namespace = ? AND entry_key = ?", s.namespace, key).
		Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("kv get %q: %w", key, err)
	}
	return entry.Value, nil
}

func (s *GormStore) Set(ctx context.Context, key, value string) error {
	entry := Entry{
		Namespace: s.namespace,
		Key:       key,
		Value:     value,
		UpdatedAt: s.now().UTC(),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "namespace"}, {Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("kv set %q: %w", key, err)
	}
	return nil
}

func (s *GormStore) Remove(ctx context.Context, key string) error {
	err := s.db.WithContext(ctx).
		Where("namespace = ? AND entry_key = ?", s.namespace, key).
		Delete(&Entry{}).Error
	if err != nil {
		return fmt.Errorf("kv remove %q: %w", key, err)
	}
	return nil
}

func (s *GormStore) Clear(ctx context.Context) error {
	err := s.db.WithContext(ctx).
		Where("namespace = ?", s.namespace).
		Delete(&Entry{}).Error
	if err != nil {
		return fmt.Errorf("kv clear: %w", err)
	}
	return nil
}
