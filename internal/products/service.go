package product

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/prodataworld/prodata-backend/pkg/db/models"
	"github.com/prodataworld/prodata-backend/pkg/enums"
	pkgerrors "github.com/prodataworld/prodata-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

// BundleSize is one purchasable size shown in the order form.
type BundleSize struct {
	VariantID uint            `json:"variant_id"`
	Value     string          `json:"value"`
	Label     string          `json:"label"`
	Price     decimal.Decimal `json:"price"`
}

// Service exposes catalogue lookups to order intake and the HTTP API.
type Service interface {
	BundleSizes(ctx context.Context, network string, role enums.UserRole) ([]BundleSize, error)
	ResolveVariant(ctx context.Context, productID uint, role enums.UserRole, size string) (*models.Product, *models.ProductVariant, error)
	FindVariant(ctx context.Context, id uint) (*models.ProductVariant, *models.Product, error)
}

type service struct {
	repo *Repository
}

// NewService wires the catalogue service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

// BundleSizes lists in-stock sizes for a network in the caller's catalogue,
// cheapest-to-largest by size.
func (s *service) BundleSizes(ctx context.Context, network string, role enums.UserRole) ([]BundleSize, error) {
	if strings.TrimSpace(network) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Network is required")
	}
	parsed, err := enums.ParseNetwork(network)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown network")
	}

	product, err := s.repo.FindByNetwork(ctx, parsed, enums.CatalogueForRole(role))
	if err != nil {
		return nil, err
	}

	sizes := make([]BundleSize, 0, len(product.Variants))
	for _, variant := range product.Variants {
		if !variant.InStock() {
			continue
		}
		size := variant.Size()
		if size == "" {
			size = "unknown"
		}
		sizes = append(sizes, BundleSize{
			VariantID: variant.ID,
			Value:     SizeValue(size),
			Label:     SizeLabel(size),
			Price:     variant.Price,
		})
	}
	sort.SliceStable(sizes, func(i, j int) bool {
		return sortKey(sizes[i].Value).LessThan(sortKey(sizes[j].Value))
	})
	return sizes, nil
}

func sortKey(value string) decimal.Decimal {
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return parsed
}

// ResolveVariant finds the variant of a catalogue product matching size.
func (s *service) ResolveVariant(ctx context.Context, productID uint, role enums.UserRole, size string) (*models.Product, *models.ProductVariant, error) {
	product, err := s.repo.FindInCatalogue(ctx, productID, enums.CatalogueForRole(role))
	if err != nil {
		return nil, nil, err
	}
	wanted := strings.ToLower(strings.TrimSpace(size))
	for i := range product.Variants {
		if product.Variants[i].Size() == wanted {
			return product, &product.Variants[i], nil
		}
	}
	return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "Size variant not available")
}

func (s *service) FindVariant(ctx context.Context, id uint) (*models.ProductVariant, *models.Product, error) {
	return s.repo.FindVariant(ctx, id)
}
