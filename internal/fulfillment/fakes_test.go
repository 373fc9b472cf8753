package fulfillment

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/prodataworld/prodata-backend/pkg/db/models"
	"github.com/prodataworld/prodata-backend/pkg/enums"
	"github.com/prodataworld/prodata-backend/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "fulfillment-test", Level: zerolog.Disabled, Output: io.Discard})
}

type fakeProvider struct {
	name     string
	networks []enums.Network
	push     func(order *models.Order, item *models.OrderItem) (Receipt, error)
	calls    int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Eligible(order *models.Order) bool {
	for _, n := range f.networks {
		if enums.NetworkIs(order.Network, n) {
			return true
		}
	}
	return false
}

func (f *fakeProvider) PushItem(_ context.Context, order *models.Order, item *models.OrderItem) (Receipt, error) {
	f.calls++
	return f.push(order, item)
}

type fakeFlags map[string]bool

func (f fakeFlags) Enabled(_ context.Context, key string, fallback bool) (bool, error) {
	if v, ok := f[key]; ok {
		return v, nil
	}
	return fallback, nil
}

type fakePoller struct {
	name   string
	scope  SyncScope
	states map[string]DeliveryState
	errs   map[string]error
	calls  []string
}

func (f *fakePoller) Name() string     { return f.name }
func (f *fakePoller) Scope() SyncScope { return f.scope }

func (f *fakePoller) PollStatus(_ context.Context, reference string) (DeliveryState, error) {
	f.calls = append(f.calls, reference)
	if err, ok := f.errs[reference]; ok {
		return DeliveryUnknown, err
	}
	if state, ok := f.states[reference]; ok {
		return state, nil
	}
	return DeliveryPending, nil
}

type sentSMS struct {
	phone   string
	message string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentSMS
}

func (f *fakeNotifier) Notify(_ context.Context, phone, message string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentSMS{phone: phone, message: message})
	return true
}

type fakeEvents struct {
	published []map[string]string
}

func (f *fakeEvents) Publish(_ context.Context, _ []byte, attributes map[string]string) error {
	f.published = append(f.published, attributes)
	return nil
}

func reloadOrder(t *testing.T, conn *gorm.DB, id uint) models.Order {
	t.Helper()
	var order models.Order
	require.NoError(t, conn.Preload("Items").First(&order, id).Error)
	return order
}

func setVendorReference(t *testing.T, conn *gorm.DB, id uint, provider *string, reference string) {
	t.Helper()
	require.NoError(t, conn.Model(&models.Order{}).Where("id = ?", id).Updates(map[string]any{
		"pusher_provider": provider,
		"reference_id":    reference,
	}).Error)
}

func strPtr(s string) *string { return &s }
