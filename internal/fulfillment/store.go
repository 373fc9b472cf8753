package fulfillment

import (
	"context"
	stdErrors "errors"
	"strings"
	"time"

	"github.com/prodataworld/prodata-backend/pkg/db/models"
	"github.com/prodataworld/prodata-backend/pkg/enums"
	pkgerrors "github.com/prodataworld/prodata-backend/pkg/errors"
	"gorm.io/gorm"
)

// Store persists dispatch outcomes and reconciliation state.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) withRelations(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.Product").
		Preload("Items.Variant").
		Preload("User")
}

// LoadOrder returns the order with items, products, variants and owner.
func (s *Store) LoadOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := s.withRelations(ctx).First(&order, "id = ?", id).Error; err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, err
	}
	return &order, nil
}

func (s *Store) RecordAttempt(ctx context.Context, attempt *models.PushAttempt) error {
	return s.db.WithContext(ctx).Create(attempt).Error
}

// UpdateItemPush stores the latest push outcome on a pivot row.
func (s *Store) UpdateItemPush(ctx context.Context, itemID uint, outcome enums.PushOutcome, reference, errMsg *string) error {
	return s.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("id = ?", itemID).
		Updates(map[string]any{
			"push_status":    outcome,
			"push_reference": reference,
			"push_error":     errMsg,
		}).Error
}

// SaveDispatch writes the order-level pusher fields. reference and provider
// are left untouched when nil.
func (s *Store) SaveDispatch(ctx context.Context, orderID uint, status enums.PusherStatus, provider, reference *string) error {
	updates := map[string]any{"order_pusher_status": status}
	if provider != nil {
		updates["pusher_provider"] = *provider
	}
	if reference != nil {
		updates["reference_id"] = *reference
	}
	return s.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(updates).Error
}

// SyncCandidates lists pending orders holding a vendor reference within scope.
func (s *Store) SyncCandidates(ctx context.Context, scope SyncScope, limit int) ([]models.Order, error) {
	q := s.withRelations(ctx).
		Where("status = ?", enums.OrderStatusPending).
		Where("reference_id IS NOT NULL AND reference_id <> ''")

	provider := strings.ToLower(scope.Provider)
	if scope.IncludeUnattributed {
		q = q.Where("(LOWER(pusher_provider) = ? OR pusher_provider IS NULL)", provider)
	} else {
		q = q.Where("LOWER(pusher_provider) = ?", provider)
	}
	if len(scope.Networks) > 0 {
		networks := make([]string, 0, len(scope.Networks))
		for _, n := range scope.Networks {
			networks = append(networks, n.String())
		}
		q = q.Where("LOWER(network) IN ?", networks)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var orders []models.Order
	if err := q.Order("id ASC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// MarkCompleted moves an order to completed only while it is still in one of
// from. It reports whether this call made the change.
func (s *Store) MarkCompleted(ctx context.Context, orderID uint, from ...enums.OrderStatus) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status IN ?", orderID, from).
		Update("status", enums.OrderStatusCompleted)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// StaleOrders lists open orders created at or before cutoff that hold an
// item whose product name contains any keyword.
func (s *Store) StaleOrders(ctx context.Context, cutoff time.Time, keywords []string) ([]models.Order, error) {
	if len(keywords) == 0 {
		return nil, nil
	}
	clauses := make([]string, 0, len(keywords))
	args := make([]any, 0, len(keywords))
	for _, kw := range keywords {
		clauses = append(clauses, "LOWER(products.name) LIKE ?")
		args = append(args, "%"+strings.ToLower(kw)+"%")
	}
	sub := s.db.Model(&models.OrderItem{}).
		Select("order_product.order_id").
		Joins("JOIN products ON products.id = order_product.product_id").
		Where(strings.Join(clauses, " OR "), args...)

	var orders []models.Order
	err := s.withRelations(ctx).
		Where("status IN ?", []enums.OrderStatus{enums.OrderStatusPending, enums.OrderStatusProcessing}).
		Where("created_at <= ?", cutoff).
		Where("id IN (?)", sub).
		Order("id ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// FixNullPusherStatus backfills orders that were never dispatched.
func (s *Store) FixNullPusherStatus(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("order_pusher_status IS NULL").
		Update("order_pusher_status", enums.PusherStatusDisabled)
	return res.RowsAffected, res.Error
}
