package cart

import (
	"context"
	"fmt"
	"strings"

	product "github.com/prodataworld/prodata-backend/internal/products"
	"github.com/prodataworld/prodata-backend/pkg/db/models"
	"github.com/prodataworld/prodata-backend/pkg/enums"
	pkgerrors "github.com/prodataworld/prodata-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

// AddInput stages one bundle for one beneficiary.
type AddInput struct {
	ProductVariantID  uint
	BeneficiaryNumber string
	Quantity          int
}

// Summary is the cart as shown before checkout.
type Summary struct {
	Items []models.CartItem `json:"items"`
	Total decimal.Decimal   `json:"total"`
}

type Service interface {
	Add(ctx context.Context, userID uint, role enums.UserRole, input AddInput) (*models.CartItem, error)
	List(ctx context.Context, userID uint) (*Summary, error)
	Remove(ctx context.Context, userID, itemID uint) error
}

type service struct {
	repo     *Repository
	products product.Service
}

func NewService(repo *Repository, products product.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product service required")
	}
	return &service{repo: repo, products: products}, nil
}

func (s *service) Add(ctx context.Context, userID uint, role enums.UserRole, input AddInput) (*models.CartItem, error) {
	beneficiary := strings.TrimSpace(input.BeneficiaryNumber)
	if beneficiary == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "beneficiary number is required")
	}
	quantity := input.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	variant, prod, err := s.products.FindVariant(ctx, input.ProductVariantID)
	if err != nil {
		return nil, err
	}
	if prod.ProductType != enums.CatalogueForRole(role) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
	}
	if !variant.InStock() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "bundle is out of stock")
	}

	item := &models.CartItem{
		UserID:            userID,
		ProductID:         prod.ID,
		ProductVariantID:  &variant.ID,
		Quantity:          quantity,
		Price:             variant.Price,
		BeneficiaryNumber: beneficiary,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	item.Product = prod
	item.Variant = variant
	return item, nil
}

func (s *service) List(ctx context.Context, userID uint) (*Summary, error) {
	items, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(ItemPrice(item))
	}
	return &Summary{Items: items, Total: total}, nil
}

func (s *service) Remove(ctx context.Context, userID, itemID uint) error {
	found, err := s.repo.DeleteForUser(ctx, userID, itemID)
	if err != nil {
		return err
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	return nil
}

// ItemPrice is the amount charged for a cart line: its stored price, or the
// variant's current price when none was captured.
func ItemPrice(item models.CartItem) decimal.Decimal {
	if !item.Price.IsZero() {
		return item.Price
	}
	if item.Variant != nil {
		return item.Variant.Price
	}
	return decimal.Zero
}
