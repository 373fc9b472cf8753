package alerts

import (
	"context"
	"fmt"

	"github.com/prodataworld/prodata-backend/pkg/db/models"
)

type Service interface {
	ListActive(ctx context.Context) ([]models.Alert, error)
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("alerts repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListActive(ctx context.Context) ([]models.Alert, error) {
	rows, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []models.Alert{}
	}
	return rows, nil
}
