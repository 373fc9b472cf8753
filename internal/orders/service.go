package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/prodataworld/prodata-backend/internal/cart"
	"github.com/prodataworld/prodata-backend/internal/fulfillment"
	product "github.com/prodataworld/prodata-backend/internal/products"
	"github.com/prodataworld/prodata-backend/internal/users"
	"github.com/prodataworld/prodata-backend/internal/wallet"
	"github.com/prodataworld/prodata-backend/pkg/db"
	"github.com/prodataworld/prodata-backend/pkg/db/models"
	"github.com/prodataworld/prodata-backend/pkg/enums"
	pkgerrors "github.com/prodataworld/prodata-backend/pkg/errors"
	"github.com/prodataworld/prodata-backend/pkg/logger"
	"github.com/prodataworld/prodata-backend/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Dispatcher hands committed orders to fulfillment.
type Dispatcher interface {
	Dispatch(ctx context.Context, table fulfillment.RoutingTable, orderID uint) fulfillment.Outcome
}

// Service covers order intake for resellers and order administration.
type Service interface {
	PlaceAPIOrder(ctx context.Context, userID uint, input APIOrderInput) (*models.Order, error)
	Checkout(ctx context.Context, userID uint) (*CheckoutResult, error)
	List(ctx context.Context, userID uint, filters ListFilters, params pagination.Params) (pagination.Page[models.Order], error)
	Get(ctx context.Context, userID, id uint) (*models.Order, error)
	ListAll(ctx context.Context, filters ListFilters, params pagination.Params) (pagination.Page[models.Order], error)
	UpdateStatus(ctx context.Context, id uint, status enums.OrderStatus) (*models.Order, error)
	BulkUpdateStatus(ctx context.Context, ids []uint, status enums.OrderStatus) (int64, error)
	Repush(ctx context.Context, id uint) (fulfillment.Outcome, error)
}

// APIOrderInput is a single-bundle purchase placed programmatically.
type APIOrderInput struct {
	BeneficiaryNumber string
	ProductID         uint
	Size              string
}

// CheckoutResult lists the orders one checkout produced.
type CheckoutResult struct {
	Orders  []models.Order
	Message string
}

// ServiceParams wires the orders service.
type ServiceParams struct {
	DB         db.TxRunner
	Repo       Repository
	Users      *users.Repository
	Products   product.Service
	Cart       *cart.Repository
	Wallet     wallet.Service
	Dispatcher Dispatcher
	Logger     *logger.Logger
}

type service struct {
	tx         db.TxRunner
	repo       Repository
	users      *users.Repository
	products   product.Service
	cart       *cart.Repository
	wallet     wallet.Service
	dispatcher Dispatcher
	logg       *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product service required")
	}
	if params.Cart == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Wallet == nil {
		return nil, fmt.Errorf("wallet service required")
	}
	if params.Dispatcher == nil {
		return nil, fmt.Errorf("dispatcher required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		tx:         params.DB,
		repo:       params.Repo,
		users:      params.Users,
		products:   params.Products,
		cart:       params.Cart,
		wallet:     params.Wallet,
		dispatcher: params.Dispatcher,
		logg:       params.Logger,
	}, nil
}

func (s *service) PlaceAPIOrder(ctx context.Context, userID uint, input APIOrderInput) (*models.Order, error) {
	beneficiary := strings.TrimSpace(input.BeneficiaryNumber)
	if beneficiary == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "beneficiary_number is required")
	}
	if input.ProductID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "network_id is required")
	}
	if strings.TrimSpace(input.Size) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "size is required")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	prod, variant, err := s.products.ResolveVariant(ctx, input.ProductID, user.Role, input.Size)
	if err != nil {
		return nil, err
	}
	price := variant.Price
	if user.WalletBalance.LessThan(price) {
		return nil, insufficientBalance(price)
	}

	var orderID uint
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.users.WithTx(tx).DebitWallet(ctx, user.ID, price); err != nil {
			return err
		}
		order, err := s.createOrder(ctx, tx, user.ID, prod, variant.ID, price, beneficiary, 1)
		if err != nil {
			return err
		}
		orderID = order.ID
		_, err = s.wallet.Record(ctx, tx, wallet.RecordInput{
			UserID:      user.ID,
			OrderID:     &order.ID,
			Amount:      price,
			Type:        enums.TransactionTypeOrder,
			Status:      enums.TransactionStatusCompleted,
			Description: fmt.Sprintf("API order placed for %s data/airtime.", prod.Network),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithFields(s.logg.WithOrderID(ctx, orderID), map[string]any{"user_id": user.ID, "network": prod.Network})
	s.logg.Info(ctx, "api order placed")
	s.dispatcher.Dispatch(ctx, fulfillment.APIRoutes, orderID)

	return s.repo.FindForUser(ctx, user.ID, orderID)
}

func (s *service) Checkout(ctx context.Context, userID uint) (*CheckoutResult, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	items, err := s.cart.ListForUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Cart is empty")
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(cart.ItemPrice(item))
	}
	ctx = s.logg.WithFields(ctx, map[string]any{"user_id": user.ID, "cart_items": len(items), "total": total.StringFixed(2)})
	if user.WalletBalance.LessThan(total) {
		s.logg.Warn(ctx, "checkout rejected for insufficient balance")
		return nil, insufficientBalance(total)
	}

	orderIDs := make([]uint, 0, len(items))
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if total.IsPositive() {
			if err := s.users.WithTx(tx).DebitWallet(ctx, user.ID, total); err != nil {
				return err
			}
		}
		for _, item := range items {
			if item.Product == nil {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "cart item product no longer exists")
			}
			price := cart.ItemPrice(item)
			var variantID uint
			if item.ProductVariantID != nil {
				variantID = *item.ProductVariantID
			}
			quantity := item.Quantity
			if quantity <= 0 {
				quantity = 1
			}
			order, err := s.createOrder(ctx, tx, user.ID, item.Product, variantID, price, item.BeneficiaryNumber, quantity)
			if err != nil {
				return err
			}
			if _, err := s.wallet.Record(ctx, tx, wallet.RecordInput{
				UserID:      user.ID,
				OrderID:     &order.ID,
				Amount:      price,
				Type:        enums.TransactionTypeOrder,
				Status:      enums.TransactionStatusCompleted,
				Description: fmt.Sprintf("Order placed for %s data/airtime.", item.Product.Network),
			}); err != nil {
				return err
			}
			orderIDs = append(orderIDs, order.ID)
		}
		return s.cart.WithTx(tx).Clear(ctx, user.ID)
	})
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithField(ctx, "order_ids", orderIDs), "checkout committed")

	for _, id := range orderIDs {
		s.dispatcher.Dispatch(ctx, fulfillment.CheckoutRoutes, id)
	}

	result := &CheckoutResult{Orders: make([]models.Order, 0, len(orderIDs))}
	for _, id := range orderIDs {
		order, err := s.repo.FindForUser(ctx, user.ID, id)
		if err != nil {
			return nil, err
		}
		result.Orders = append(result.Orders, *order)
	}
	if len(orderIDs) == 1 {
		result.Message = "Order placed successfully!"
	} else {
		result.Message = fmt.Sprintf("%d orders placed successfully!", len(orderIDs))
	}
	return result, nil
}

func (s *service) createOrder(ctx context.Context, tx *gorm.DB, userID uint, prod *models.Product, variantID uint, price decimal.Decimal, beneficiary string, quantity int) (*models.Order, error) {
	repo := s.repo.WithTx(tx)
	order := &models.Order{
		UserID:            userID,
		Status:            enums.OrderStatusPending,
		Total:             price,
		BeneficiaryNumber: beneficiary,
		Network:           prod.Network,
	}
	if err := repo.CreateOrder(ctx, order); err != nil {
		return nil, err
	}
	item := &models.OrderItem{
		OrderID:           order.ID,
		ProductID:         prod.ID,
		Quantity:          quantity,
		Price:             price,
		BeneficiaryNumber: beneficiary,
	}
	if variantID != 0 {
		item.ProductVariantID = &variantID
	}
	if err := repo.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) List(ctx context.Context, userID uint, filters ListFilters, params pagination.Params) (pagination.Page[models.Order], error) {
	filters.UserID = userID
	return s.list(ctx, filters, params)
}

func (s *service) Get(ctx context.Context, userID, id uint) (*models.Order, error) {
	return s.repo.FindForUser(ctx, userID, id)
}

func (s *service) ListAll(ctx context.Context, filters ListFilters, params pagination.Params) (pagination.Page[models.Order], error) {
	return s.list(ctx, filters, params)
}

func (s *service) list(ctx context.Context, filters ListFilters, params pagination.Params) (pagination.Page[models.Order], error) {
	rows, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return pagination.Page[models.Order]{}, err
	}
	return pagination.Trim(rows, params.Limit, func(o models.Order) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	}), nil
}

func (s *service) UpdateStatus(ctx context.Context, id uint, status enums.OrderStatus) (*models.Order, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	updated, err := s.repo.UpdateStatus(ctx, []uint{id}, status)
	if err != nil {
		return nil, err
	}
	if updated == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	s.logg.Info(s.logg.WithField(s.logg.WithOrderID(ctx, id), "status", status), "order status updated by admin")
	return s.repo.FindByID(ctx, id)
}

func (s *service) BulkUpdateStatus(ctx context.Context, ids []uint, status enums.OrderStatus) (int64, error) {
	if !status.IsValid() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	if len(ids) == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "order ids required")
	}
	count, err := s.repo.UpdateStatus(ctx, ids, status)
	if err != nil {
		return 0, err
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"count": count, "status": status}), "order statuses bulk updated by admin")
	return count, nil
}

// Repush sends an open order through the checkout routing table again.
func (s *service) Repush(ctx context.Context, id uint) (fulfillment.Outcome, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fulfillment.Outcome{}, err
	}
	if order.Status == enums.OrderStatusCompleted || order.Status == enums.OrderStatusCancelled {
		return fulfillment.Outcome{}, pkgerrors.New(pkgerrors.CodeStateConflict, "order is already closed")
	}
	return s.dispatcher.Dispatch(ctx, fulfillment.CheckoutRoutes, order.ID), nil
}

func insufficientBalance(required decimal.Decimal) error {
	return pkgerrors.New(pkgerrors.CodeInsufficient, "Insufficient wallet balance").
		WithDetails(map[string]any{"required": required.StringFixed(2)})
}
