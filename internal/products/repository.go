package product

import (
	"context"
	stdErrors "errors"

	"github.com/prodataworld/prodata-backend/pkg/db/models"
	"github.com/prodataworld/prodata-backend/pkg/enums"
	pkgerrors "github.com/prodataworld/prodata-backend/pkg/errors"
	"gorm.io/gorm"
)

// Repository reads the bundle catalogue.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindInCatalogue loads a product by id restricted to one catalogue, with variants.
func (r *Repository) FindInCatalogue(ctx context.Context, id uint, productType enums.ProductType) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Variants").
		Where("id = ? AND product_type = ?", id, productType).
		First(&product).Error
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
		}
		return nil, err
	}
	return &product, nil
}

// FindByNetwork loads the first product for a network in a catalogue. The
// network is matched case-insensitively.
func (r *Repository) FindByNetwork(ctx context.Context, network enums.Network, productType enums.ProductType) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Variants").
		Where("LOWER(network) = ? AND product_type = ?", network.String(), productType).
		Order("id ASC").
		First(&product).Error
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
		}
		return nil, err
	}
	return &product, nil
}

// FindVariant loads a variant with its parent product.
func (r *Repository) FindVariant(ctx context.Context, id uint) (*models.ProductVariant, *models.Product, error) {
	var variant models.ProductVariant
	if err := r.db.WithContext(ctx).First(&variant, "id = ?", id).Error; err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "Size variant not available")
		}
		return nil, nil, err
	}
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", variant.ProductID).Error; err != nil {
		return nil, nil, err
	}
	return &variant, &product, nil
}
