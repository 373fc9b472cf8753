package fulfillment

import (
	"context"
	stdErrors "errors"
	"fmt"

	"github.com/prodataworld/prodata-backend/pkg/db/models"
	"github.com/prodataworld/prodata-backend/pkg/enums"
)

// Provider hands order items to an upstream bundle vendor.
type Provider interface {
	Name() string
	// Eligible reports whether the vendor serves the order at all. Orders it
	// rejects are skipped without recording an attempt.
	Eligible(order *models.Order) bool
	// PushItem submits one pivot row. order.Items entries carry Product and
	// Variant.
	PushItem(ctx context.Context, order *models.Order, item *models.OrderItem) (Receipt, error)
}

// Receipt is what a vendor hands back for an accepted submission.
type Receipt struct {
	Reference  string
	HTTPStatus int
}

// DeliveryState is a vendor's view of a previously accepted order.
type DeliveryState string

const (
	DeliveryPending   DeliveryState = "pending"
	DeliveryDelivered DeliveryState = "delivered"
	DeliveryFailed    DeliveryState = "failed"
	DeliveryUnknown   DeliveryState = "unknown"
)

// SyncScope narrows which pending orders a poller is asked about.
type SyncScope struct {
	Provider string
	// Networks restricts selection when non-empty.
	Networks []enums.Network
	// IncludeUnattributed also selects orders that carry a reference but no
	// pusher_provider.
	IncludeUnattributed bool
}

// StatusPoller asks a vendor whether an accepted order has been delivered.
type StatusPoller interface {
	Name() string
	Scope() SyncScope
	PollStatus(ctx context.Context, reference string) (DeliveryState, error)
}

// PushError classifies a failed submission.
type PushError struct {
	Kind       enums.PushErrorKind
	HTTPStatus int
	Err        error
}

func (e *PushError) Error() string {
	if e.HTTPStatus > 0 {
		return fmt.Sprintf("%s (http %d): %v", e.Kind, e.HTTPStatus, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *PushError) Unwrap() error {
	return e.Err
}

// NewPushError builds a PushError from a message.
func NewPushError(kind enums.PushErrorKind, status int, format string, args ...any) *PushError {
	return &PushError{Kind: kind, HTTPStatus: status, Err: fmt.Errorf(format, args...)}
}

// ClassifyPushError returns the kind and HTTP status carried by err. Errors
// that were never classified count as transport failures.
func ClassifyPushError(err error) (enums.PushErrorKind, int) {
	var pushErr *PushError
	if stdErrors.As(err, &pushErr) {
		return pushErr.Kind, pushErr.HTTPStatus
	}
	return enums.PushErrorTransport, 0
}
