package alerts

import (
	"context"

	"github.com/prodataworld/prodata-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository reads dashboard alerts.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListActive returns active alerts, newest first.
func (r *Repository) ListActive(ctx context.Context) ([]models.Alert, error) {
	var rows []models.Alert
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
