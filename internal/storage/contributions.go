package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/Soar-Robotics/SoarchainPresale/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store is the append-only contribution collection.
type Store interface {
	Create(ctx context.Context, c *models.Contribution) error
	List(ctx context.Context) ([]models.Contribution, error)
	// Total returns the XRP sum and the record count.
	Total(ctx context.Context) (float64, int64, error)
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Migrate() error {
	return s.db.AutoMigrate(&models.Contribution{})
}

// Create inserts c, assigning an id and timestamp when they are unset.
func (s *GormStore) Create(ctx context.Context, c *models.Contribution) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Timestamp.IsZero() {
		c.Timestamp = time.Now().UTC()
	}
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("insert contribution: %w", err)
	}
	return nil
}

func (s *GormStore) List(ctx context.Context) ([]models.Contribution, error) {
	contributions := []models.Contribution{}
	err := s.db.WithContext(ctx).
		Order("timestamp ASC").
		Find(&contributions).Error
	if err != nil {
		return nil, fmt.Errorf("list contributions: %w", err)
	}
	return contributions, nil
}

func (s *GormStore) Total(ctx context.Context) (float64, int64, error) {
	var row struct {
		Total float64
		Count int64
	}
	err := s.db.WithContext(ctx).
		Model(&models.Contribution{}).
		Select("COALESCE(SUM(xrp_amount), 0) AS total, COUNT(*) AS count").
		Scan(&row).Error
	if err != nil {
		return 0, 0, fmt.Errorf("sum contributions: %w", err)
	}
	return row.Total, row.Count, nil
}
