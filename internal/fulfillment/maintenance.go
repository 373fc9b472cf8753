package fulfillment

import (
	"context"
	"fmt"
	"time"

	"github.com/prodataworld/prodata-backend/internal/notifications"
	"github.com/prodataworld/prodata-backend/pkg/enums"
	"github.com/prodataworld/prodata-backend/pkg/logger"
	"go.uber.org/multierr"
)

const defaultStaleOrderAge = 30 * time.Minute

// MaintenanceParams wires Maintenance.
type MaintenanceParams struct {
	Store    *Store
	Notifier notifications.Notifier
	Logger   *logger.Logger
	// StaleAge is how long an open order waits before it is auto-completed.
	StaleAge time.Duration
	// Keywords select orders by product name, e.g. "bigtime", "telecel".
	Keywords []string
}

// Maintenance closes out orders no vendor will ever confirm.
type Maintenance struct {
	store    *Store
	notifier notifications.Notifier
	logg     *logger.Logger
	staleAge time.Duration
	keywords []string
	now      func() time.Time
}

func NewMaintenance(params MaintenanceParams) (*Maintenance, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("fulfillment store required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	age := params.StaleAge
	if age <= 0 {
		age = defaultStaleOrderAge
	}
	return &Maintenance{
		store:    params.Store,
		notifier: params.Notifier,
		logg:     params.Logger,
		staleAge: age,
		keywords: params.Keywords,
		now:      time.Now,
	}, nil
}

// CompleteOldOrders marks stale pending/processing orders completed and
// texts their owners. It returns how many orders it completed.
func (m *Maintenance) CompleteOldOrders(ctx context.Context) (int, error) {
	cutoff := m.now().UTC().Add(-m.staleAge)
	orders, err := m.store.StaleOrders(ctx, cutoff, m.keywords)
	if err != nil {
		return 0, fmt.Errorf("query stale orders: %w", err)
	}

	var errs error
	count := 0
	for i := range orders {
		order := &orders[i]
		octx := m.logg.WithOrderID(ctx, order.ID)
		updated, err := m.store.MarkCompleted(octx, order.ID, enums.OrderStatusPending, enums.OrderStatusProcessing)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("complete order %d: %w", order.ID, err))
			continue
		}
		if !updated {
			continue
		}
		count++
		order.Status = enums.OrderStatusCompleted
		if m.notifier != nil && order.User != nil && order.User.HasPhone() {
			m.notifier.Notify(octx, *order.User.Phone, notifications.OrderCompletedMessage(order))
		}
		m.logg.Info(m.logg.WithField(octx, "network", order.Network), "Auto-completed old order")
	}

	logCtx := m.logg.WithFields(ctx, map[string]any{"count": count, "cutoff": cutoff})
	m.logg.Info(logCtx, "stale order completion loop complete")
	return count, errs
}

// FixPusherStatus marks never-dispatched orders as disabled.
func (m *Maintenance) FixPusherStatus(ctx context.Context) (int64, error) {
	count, err := m.store.FixNullPusherStatus(ctx)
	if err != nil {
		return 0, fmt.Errorf("backfill pusher status: %w", err)
	}
	m.logg.Info(m.logg.WithField(ctx, "count", count), "pusher status backfill complete")
	return count, nil
}
