package fulfillment

import (
	"context"
	"fmt"
	"time"

	"github.com/prodataworld/prodata-backend/internal/settings"
	"github.com/prodataworld/prodata-backend/pkg/db/models"
	"github.com/prodataworld/prodata-backend/pkg/enums"
	"github.com/prodataworld/prodata-backend/pkg/logger"
	"github.com/prodataworld/prodata-backend/pkg/metrics"
	"go.uber.org/multierr"
)

// FlagReader reads the per-provider enable switches.
type FlagReader interface {
	Enabled(ctx context.Context, key string, fallback bool) (bool, error)
}

// Outcome summarises one dispatch.
type Outcome struct {
	OrderID   uint
	Status    enums.PusherStatus
	Providers []string
	Reference string
	Succeeded int
	Failed    int
}

// DispatcherParams wires Dispatcher. Events and Metrics are optional.
type DispatcherParams struct {
	Store     *Store
	Providers []Provider
	Flags     FlagReader
	Events    EventPublisher
	Metrics   *metrics.FulfillmentMetrics
	Logger    *logger.Logger
}

// Dispatcher pushes freshly paid orders to the vendors their routing table
// names. It never fails the caller: every problem ends up logged and in the
// order's pusher status.
type Dispatcher struct {
	store     *Store
	providers map[string]Provider
	flags     FlagReader
	events    EventPublisher
	metrics   *metrics.FulfillmentMetrics
	logg      *logger.Logger
	now       func() time.Time
}

func NewDispatcher(params DispatcherParams) (*Dispatcher, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("fulfillment store required")
	}
	if params.Flags == nil {
		return nil, fmt.Errorf("flag reader required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	providers := make(map[string]Provider, len(params.Providers))
	for _, p := range params.Providers {
		if p == nil {
			continue
		}
		providers[p.Name()] = p
	}
	return &Dispatcher{
		store:     params.Store,
		providers: providers,
		flags:     params.Flags,
		events:    params.Events,
		metrics:   params.Metrics,
		logg:      params.Logger,
		now:       time.Now,
	}, nil
}

// Dispatch routes the order through table and records the result.
func (d *Dispatcher) Dispatch(ctx context.Context, table RoutingTable, orderID uint) (outcome Outcome) {
	outcome = Outcome{OrderID: orderID}
	ctx = d.logg.WithOrderID(ctx, orderID)
	ctx = d.logg.WithField(ctx, "routing", table.Name)

	defer func() {
		if r := recover(); r != nil {
			d.logg.Error(ctx, "order dispatch panicked", fmt.Errorf("panic: %v", r))
			outcome.Status = enums.PusherStatusFailed
			if err := d.store.SaveDispatch(ctx, orderID, enums.PusherStatusFailed, nil, nil); err != nil {
				d.logg.Error(ctx, "failed to flag order after panic", err)
			}
		}
	}()

	order, err := d.store.LoadOrder(ctx, orderID)
	if err != nil {
		d.logg.Error(ctx, "failed to load order for dispatch", err)
		return outcome
	}
	ctx = d.logg.WithField(ctx, "network", order.Network)

	active := d.activeProviders(ctx, table, order)
	if len(active) == 0 {
		outcome.Status = enums.PusherStatusDisabled
		if err := d.store.SaveDispatch(ctx, order.ID, enums.PusherStatusDisabled, nil, nil); err != nil {
			d.logg.Error(ctx, "failed to mark order pusher disabled", err)
		}
		return outcome
	}

	var (
		kept      vendorRef
		results   = make([]itemResult, len(order.Items))
		storeErrs error
	)
	for _, p := range active {
		outcome.Providers = append(outcome.Providers, p.Name())
		pctx := d.logg.WithProvider(ctx, p.Name())
		for i := range order.Items {
			item := &order.Items[i]
			receipt, err := d.pushItem(pctx, p, order, item)
			if err != nil {
				outcome.Failed++
				results[i].fail(err)
				storeErrs = multierr.Append(storeErrs, d.recordFailure(pctx, p.Name(), order.ID, item, err))
				continue
			}
			outcome.Succeeded++
			ref := newVendorRef(p, receipt.Reference)
			results[i].succeed(ref)
			if kept.replacedBy(ref) {
				kept = ref
			}
			storeErrs = multierr.Append(storeErrs, d.recordSuccess(pctx, p.Name(), order.ID, item, receipt))
		}
	}
	for i := range order.Items {
		storeErrs = multierr.Append(storeErrs, results[i].save(ctx, d.store, order.Items[i].ID))
	}
	if storeErrs != nil {
		d.logg.Error(ctx, "failed to persist push attempts", storeErrs)
	}

	switch {
	case outcome.Failed > 0:
		outcome.Status = enums.PusherStatusFailed
	case outcome.Succeeded > 0:
		outcome.Status = enums.PusherStatusSuccess
	default:
		d.logg.Warn(ctx, "order has no items to push")
		return outcome
	}

	var providerPtr, referencePtr *string
	if kept.reference != "" {
		providerPtr = &kept.provider
		referencePtr = &kept.reference
		outcome.Reference = kept.reference
	}
	if err := d.store.SaveDispatch(ctx, order.ID, outcome.Status, providerPtr, referencePtr); err != nil {
		d.logg.Error(ctx, "failed to save dispatch result", err)
	}

	logCtx := d.logg.WithFields(ctx, map[string]any{
		"pusher_status": outcome.Status,
		"succeeded":     outcome.Succeeded,
		"failed":        outcome.Failed,
		"providers":     outcome.Providers,
	})
	d.logg.Info(logCtx, "order dispatched")

	d.publish(ctx, table, outcome, order.Network)
	return outcome
}

func (d *Dispatcher) activeProviders(ctx context.Context, table RoutingTable, order *models.Order) []Provider {
	names := table.ProvidersFor(order.Network)
	if len(names) == 0 {
		d.logg.Info(ctx, "no order pusher for network")
		return nil
	}
	active := make([]Provider, 0, len(names))
	for _, name := range names {
		pctx := d.logg.WithProvider(ctx, name)
		p, ok := d.providers[name]
		if !ok {
			d.logg.Warn(pctx, "order pusher not configured, skipping")
			continue
		}
		enabled, err := d.flags.Enabled(ctx, settings.PusherKey(name), settings.PusherEnabledByDefault)
		if err != nil {
			d.logg.Error(pctx, "failed to read pusher flag, assuming enabled", err)
		}
		if !enabled {
			d.logg.Info(pctx, "order pusher disabled, skipping")
			continue
		}
		if !p.Eligible(order) {
			d.logg.Info(pctx, "order not eligible for pusher, skipping")
			continue
		}
		active = append(active, p)
	}
	return active
}

func (d *Dispatcher) pushItem(ctx context.Context, p Provider, order *models.Order, item *models.OrderItem) (receipt Receipt, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewPushError(enums.PushErrorTransport, 0, "provider panic: %v", r)
		}
	}()
	return p.PushItem(ctx, order, item)
}

func (d *Dispatcher) recordSuccess(ctx context.Context, provider string, orderID uint, item *models.OrderItem, receipt Receipt) error {
	d.metrics.IncPush(provider, string(enums.PushOutcomeSuccess), "")
	var ref *string
	if receipt.Reference != "" {
		r := receipt.Reference
		ref = &r
	}
	attempt := &models.PushAttempt{
		OrderID:     orderID,
		OrderItemID: &item.ID,
		Provider:    provider,
		Outcome:     enums.PushOutcomeSuccess,
		Reference:   ref,
	}
	if receipt.HTTPStatus > 0 {
		status := receipt.HTTPStatus
		attempt.HTTPStatus = &status
	}
	logCtx := d.logg.WithFields(ctx, map[string]any{"order_item_id": item.ID, "vendor_reference": receipt.Reference})
	d.logg.Info(logCtx, "order item pushed")
	return d.store.RecordAttempt(ctx, attempt)
}

func (d *Dispatcher) recordFailure(ctx context.Context, provider string, orderID uint, item *models.OrderItem, pushErr error) error {
	kind, status := ClassifyPushError(pushErr)
	d.metrics.IncPush(provider, string(enums.PushOutcomeFailed), string(kind))
	msg := pushErr.Error()
	attempt := &models.PushAttempt{
		OrderID:      orderID,
		OrderItemID:  &item.ID,
		Provider:     provider,
		Outcome:      enums.PushOutcomeFailed,
		ErrorKind:    &kind,
		ErrorMessage: &msg,
	}
	if status > 0 {
		attempt.HTTPStatus = &status
	}
	logCtx := d.logg.WithFields(ctx, map[string]any{"order_item_id": item.ID, "error_kind": kind, "http_status": status})
	d.logg.Error(logCtx, "order item push failed", pushErr)
	return d.store.RecordAttempt(ctx, attempt)
}

// vendorRef is a reference handed back by one provider. Only references from
// providers that can be polled let status sync converge the order later.
type vendorRef struct {
	provider  string
	reference string
	pollable  bool
}

func newVendorRef(p Provider, reference string) vendorRef {
	_, pollable := p.(StatusPoller)
	return vendorRef{provider: p.Name(), reference: reference, pollable: pollable}
}

// replacedBy keeps the first pollable reference, falling back to the first
// reference of any kind.
func (r vendorRef) replacedBy(next vendorRef) bool {
	if next.reference == "" {
		return false
	}
	return r.reference == "" || (!r.pollable && next.pollable)
}

// itemResult folds every provider's answer for one pivot row. Any failure
// marks the row failed; the kept reference follows the order-level rule.
type itemResult struct {
	attempted bool
	failed    bool
	ref       vendorRef
	errMsg    string
}

func (r *itemResult) succeed(ref vendorRef) {
	r.attempted = true
	if r.ref.replacedBy(ref) {
		r.ref = ref
	}
}

func (r *itemResult) fail(err error) {
	r.attempted = true
	r.failed = true
	if r.errMsg == "" {
		r.errMsg = err.Error()
	}
}

func (r itemResult) save(ctx context.Context, store *Store, itemID uint) error {
	if !r.attempted {
		return nil
	}
	outcome := enums.PushOutcomeSuccess
	var reference, errMsg *string
	if r.failed {
		outcome = enums.PushOutcomeFailed
		msg := r.errMsg
		errMsg = &msg
	}
	if r.ref.reference != "" {
		ref := r.ref.reference
		reference = &ref
	}
	return store.UpdateItemPush(ctx, itemID, outcome, reference, errMsg)
}

func (d *Dispatcher) publish(ctx context.Context, table RoutingTable, outcome Outcome, network string) {
	if d.events == nil {
		return
	}
	data, attrs, err := newDispatchedEvent(table, outcome, network, d.now()).encode()
	if err == nil {
		err = d.events.Publish(ctx, data, attrs)
	}
	if err != nil {
		d.logg.Error(ctx, "failed to publish dispatch event", err)
	}
}
