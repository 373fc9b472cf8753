package fulfillment

import (
	"context"
	"fmt"

	"github.com/prodataworld/prodata-backend/internal/notifications"
	"github.com/prodataworld/prodata-backend/pkg/db/models"
	"github.com/prodataworld/prodata-backend/pkg/enums"
	"github.com/prodataworld/prodata-backend/pkg/logger"
	"github.com/prodataworld/prodata-backend/pkg/metrics"
)

const defaultSyncBatch = 500

// SyncReport counts what one reconciliation pass saw.
type SyncReport struct {
	Checked   int
	Completed int
	Pending   int
	Failed    int
	Errors    int
}

// StatusSyncParams wires StatusSync. Notifier and Metrics are optional.
type StatusSyncParams struct {
	Store     *Store
	Notifier  notifications.Notifier
	Metrics   *metrics.FulfillmentMetrics
	Logger    *logger.Logger
	BatchSize int
}

// StatusSync completes pending orders that a vendor reports as delivered.
type StatusSync struct {
	store     *Store
	notifier  notifications.Notifier
	metrics   *metrics.FulfillmentMetrics
	logg      *logger.Logger
	batchSize int
}

func NewStatusSync(params StatusSyncParams) (*StatusSync, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("fulfillment store required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultSyncBatch
	}
	return &StatusSync{
		store:     params.Store,
		notifier:  params.Notifier,
		metrics:   params.Metrics,
		logg:      params.Logger,
		batchSize: batch,
	}, nil
}

// Run polls every candidate order once. Per-order failures are logged and
// counted; only a failed candidate query is returned.
func (s *StatusSync) Run(ctx context.Context, poller StatusPoller) (SyncReport, error) {
	var report SyncReport
	ctx = s.logg.WithProvider(ctx, poller.Name())

	orders, err := s.store.SyncCandidates(ctx, poller.Scope(), s.batchSize)
	if err != nil {
		return report, fmt.Errorf("query %s sync candidates: %w", poller.Name(), err)
	}

	for i := range orders {
		order := &orders[i]
		if order.ReferenceID == nil {
			continue
		}
		report.Checked++
		octx := s.logg.WithFields(s.logg.WithOrderID(ctx, order.ID), map[string]any{"vendor_reference": *order.ReferenceID})

		state, err := poller.PollStatus(octx, *order.ReferenceID)
		if err != nil {
			report.Errors++
			s.metrics.IncSync(poller.Name(), "error")
			s.logg.Warn(s.logg.WithField(octx, "error", err.Error()), "failed to fetch vendor status")
			continue
		}

		switch state {
		case DeliveryDelivered:
			updated, err := s.store.MarkCompleted(octx, order.ID, enums.OrderStatusPending)
			if err != nil {
				report.Errors++
				s.logg.Error(octx, "failed to complete synced order", err)
				continue
			}
			if !updated {
				continue
			}
			report.Completed++
			s.metrics.IncSync(poller.Name(), "completed")
			s.logg.Info(octx, "order status updated to completed")
			order.Status = enums.OrderStatusCompleted
			s.notifyCompleted(octx, order)
		case DeliveryFailed:
			report.Failed++
			s.metrics.IncSync(poller.Name(), "failed")
			s.logg.Warn(octx, "vendor reports delivery failed")
		default:
			report.Pending++
			s.metrics.IncSync(poller.Name(), "pending")
			s.logg.Info(s.logg.WithField(octx, "vendor_state", state), "order not completed at vendor")
		}
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"checked":   report.Checked,
		"completed": report.Completed,
		"pending":   report.Pending,
		"failed":    report.Failed,
		"errors":    report.Errors,
	})
	s.logg.Info(logCtx, "status sync complete")
	return report, nil
}

func (s *StatusSync) notifyCompleted(ctx context.Context, order *models.Order) {
	if s.notifier == nil || order.User == nil || !order.User.HasPhone() {
		return
	}
	s.notifier.Notify(ctx, *order.User.Phone, notifications.OrderCompletedMessage(order))
}
