package fulfillment

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prodataworld/prodata-backend/pkg/enums"
)

const EventOrderDispatched = "order.fulfillment.dispatched"

// EventPublisher ships fulfillment events to the message bus.
type EventPublisher interface {
	Publish(ctx context.Context, data []byte, attributes map[string]string) error
}

// DispatchedEvent is emitted after every dispatch that reached a vendor.
type DispatchedEvent struct {
	EventID    string             `json:"event_id"`
	OrderID    uint               `json:"order_id"`
	Routing    string             `json:"routing"`
	Network    string             `json:"network"`
	Status     enums.PusherStatus `json:"status"`
	Providers  []string           `json:"providers"`
	Reference  string             `json:"reference,omitempty"`
	Succeeded  int                `json:"succeeded"`
	Failed     int                `json:"failed"`
	OccurredAt time.Time          `json:"occurred_at"`
}

func newDispatchedEvent(table RoutingTable, outcome Outcome, network string, now time.Time) DispatchedEvent {
	return DispatchedEvent{
		EventID:    uuid.NewString(),
		OrderID:    outcome.OrderID,
		Routing:    table.Name,
		Network:    network,
		Status:     outcome.Status,
		Providers:  outcome.Providers,
		Reference:  outcome.Reference,
		Succeeded:  outcome.Succeeded,
		Failed:     outcome.Failed,
		OccurredAt: now.UTC(),
	}
}

func (e DispatchedEvent) encode() ([]byte, map[string]string, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, nil, err
	}
	return data, map[string]string{
		"event_id":   e.EventID,
		"event_type": EventOrderDispatched,
		"order_id":   strconv.FormatUint(uint64(e.OrderID), 10),
		"status":     string(e.Status),
	}, nil
}
