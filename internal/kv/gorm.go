package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Slot is one row of the journal_slots table.
type Slot struct {
	Key       string `gorm:"column:slot_key;primaryKey;size:191"`
	Value     string `gorm:"type:longtext"`
	UpdatedAt time.Time
}

func (Slot) TableName() string { return "journal_slots" }

// Gorm stores values in a relational table through gorm (MySQL in production).
type Gorm struct{ db *gorm.DB }

// NewGorm migrates the slot table and wraps db.
func NewGorm(db *gorm.DB) (*Gorm, error) {
	if err := db.AutoMigrate(&Slot{}); err != nil {
		return nil, fmt.Errorf("migrate journal_slots: %w", err)
	}
	return &Gorm{db: db}, nil
}

func (g *Gorm) Get(ctx context.Context, key string) (string, error) {
	var s Slot
	if err := g.db.WithContext(ctx).Where("slot_key = ?", key).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("query slot %s: %w", key, err)
	}
	return s.Value, nil
}

func (g *Gorm) Set(ctx context.Context, key, value string) error {
	s := Slot{Key: key, Value: value, UpdatedAt: time.Now()}
	if err := upsert(g.db.WithContext(ctx), &s).Error; err != nil {
		return fmt.Errorf("upsert slot %s: %w", key, err)
	}
	return nil
}

// upsert inserts s or overwrites the row with the same key.
func upsert(tx *gorm.DB, s *Slot) *gorm.DB {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(s)
}

func (g *Gorm) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
