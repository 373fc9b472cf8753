package cron

import (
	"context"
	"fmt"

	"github.com/prodataworld/prodata-backend/internal/fulfillment"
	"github.com/prodataworld/prodata-backend/pkg/logger"
	"go.uber.org/multierr"
)

const (
	JobFosterStatusSync   = "foster-status-sync"
	JobProviderStatusSync = "provider-status-sync"
	JobCompleteOldOrders  = "complete-old-orders"
	JobFixPusherStatus    = "fix-pusher-status"
)

type statusSyncer interface {
	Run(ctx context.Context, poller fulfillment.StatusPoller) (fulfillment.SyncReport, error)
}

type orderMaintainer interface {
	CompleteOldOrders(ctx context.Context) (int, error)
	FixPusherStatus(ctx context.Context) (int64, error)
}

// StatusSyncJobParams wires a status reconciliation job over one or more pollers.
type StatusSyncJobParams struct {
	Name    string
	Logger  *logger.Logger
	Sync    statusSyncer
	Pollers []fulfillment.StatusPoller
}

// NewStatusSyncJob reconciles pending orders against every poller in turn.
// A poller failing does not stop the remaining pollers.
func NewStatusSyncJob(params StatusSyncJobParams) (Job, error) {
	if params.Name == "" {
		return nil, fmt.Errorf("job name required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Sync == nil {
		return nil, fmt.Errorf("status sync required")
	}
	pollers := make([]fulfillment.StatusPoller, 0, len(params.Pollers))
	for _, p := range params.Pollers {
		if p != nil {
			pollers = append(pollers, p)
		}
	}
	return &statusSyncJob{name: params.Name, logg: params.Logger, sync: params.Sync, pollers: pollers}, nil
}

type statusSyncJob struct {
	name    string
	logg    *logger.Logger
	sync    statusSyncer
	pollers []fulfillment.StatusPoller
}

func (j *statusSyncJob) Name() string { return j.name }

func (j *statusSyncJob) Run(ctx context.Context) error {
	if len(j.pollers) == 0 {
		j.logg.Warn(ctx, "no status pollers configured")
		return nil
	}
	var errs error
	for _, poller := range j.pollers {
		report, err := j.sync.Run(ctx, poller)
		pollCtx := j.logg.WithFields(ctx, map[string]any{
			"provider":  poller.Name(),
			"checked":   report.Checked,
			"completed": report.Completed,
			"pending":   report.Pending,
			"failed":    report.Failed,
			"errors":    report.Errors,
		})
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", poller.Name(), err))
			continue
		}
		j.logg.Info(pollCtx, "status sync finished")
	}
	return errs
}

// MaintenanceJobParams wires the order maintenance jobs.
type MaintenanceJobParams struct {
	Logger      *logger.Logger
	Maintenance orderMaintainer
}

func (p MaintenanceJobParams) validate() error {
	if p.Logger == nil {
		return fmt.Errorf("logger required")
	}
	if p.Maintenance == nil {
		return fmt.Errorf("maintenance required")
	}
	return nil
}

// NewCompleteOldOrdersJob auto-completes stale orders on networks without
// vendor status reporting.
func NewCompleteOldOrdersJob(params MaintenanceJobParams) (Job, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	return &completeOldOrdersJob{logg: params.Logger, maintenance: params.Maintenance}, nil
}

type completeOldOrdersJob struct {
	logg        *logger.Logger
	maintenance orderMaintainer
}

func (j *completeOldOrdersJob) Name() string { return JobCompleteOldOrders }

func (j *completeOldOrdersJob) Run(ctx context.Context) error {
	completed, err := j.maintenance.CompleteOldOrders(ctx)
	j.logg.Info(j.logg.WithField(ctx, "orders_completed", completed), "old orders sweep finished")
	return err
}

// NewFixPusherStatusJob backfills orders that never recorded a pusher status.
func NewFixPusherStatusJob(params MaintenanceJobParams) (Job, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	return &fixPusherStatusJob{logg: params.Logger, maintenance: params.Maintenance}, nil
}

type fixPusherStatusJob struct {
	logg        *logger.Logger
	maintenance orderMaintainer
}

func (j *fixPusherStatusJob) Name() string { return JobFixPusherStatus }

func (j *fixPusherStatusJob) Run(ctx context.Context) error {
	fixed, err := j.maintenance.FixPusherStatus(ctx)
	if err != nil {
		return err
	}
	j.logg.Info(j.logg.WithField(ctx, "orders_updated", fixed), "pusher status backfill finished")
	return nil
}
