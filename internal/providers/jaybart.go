package providers

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/prodataworld/prodata-backend/internal/fulfillment"
	product "github.com/prodataworld/prodata-backend/internal/products"
	"github.com/prodataworld/prodata-backend/pkg/config"
	"github.com/prodataworld/prodata-backend/pkg/db/models"
	"github.com/prodataworld/prodata-backend/pkg/enums"
)

// Jaybart serves MTN and Telecel data.
type Jaybart struct {
	c *caller
}

func NewJaybart(cfg config.ProviderConfig, opts ...Option) (*Jaybart, error) {
	if !cfg.Configured() {
		return nil, fmt.Errorf("jaybart base url and api key required")
	}
	headers := map[string]string{"Authorization": "Bearer " + cfg.APIKey}
	return &Jaybart{c: newCaller(fulfillment.ProviderJaybart, cfg, headers, opts...)}, nil
}

func (j *Jaybart) Name() string { return fulfillment.ProviderJaybart }

func (j *Jaybart) Eligible(order *models.Order) bool {
	return enums.NetworkIs(order.Network, enums.NetworkMTN) || enums.NetworkIs(order.Network, enums.NetworkTelecel)
}

type jaybartOrder struct {
	Network   string `json:"network"`
	Recipient string `json:"recipient"`
	VolumeMB  int    `json:"volume_mb"`
	Reference string `json:"reference"`
}

type jaybartReply struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		TransactionID string `json:"transaction_id"`
		Status        string `json:"status"`
	} `json:"data"`
}

func (j *Jaybart) PushItem(ctx context.Context, order *models.Order, item *models.OrderItem) (fulfillment.Receipt, error) {
	recipient := FormatPhone(item.BeneficiaryNumber)
	if recipient == "" {
		return fulfillment.Receipt{}, fulfillment.NewPushError(enums.PushErrorInvalidOrder, 0, "missing beneficiary number")
	}
	volume := product.SizeToMegabytes(item.Size())
	if volume <= 0 {
		return fulfillment.Receipt{}, fulfillment.NewPushError(enums.PushErrorInvalidOrder, 0, "invalid bundle size %q", item.Size())
	}
	network, _ := enums.ParseNetwork(order.Network)

	resp, err := j.c.postJSON(ctx, "/orders", jaybartOrder{
		Network:   network.String(),
		Recipient: recipient,
		VolumeMB:  volume,
		Reference: order.VendorReference(),
	})
	if err != nil {
		return fulfillment.Receipt{}, err
	}
	var reply jaybartReply
	if err := decode(resp, &reply); err != nil {
		return fulfillment.Receipt{}, err
	}
	if !strings.EqualFold(reply.Status, "success") {
		return fulfillment.Receipt{}, fulfillment.NewPushError(enums.PushErrorRejected, resp.status, "jaybart declined order: %s", reply.Message)
	}
	if reply.Data.TransactionID == "" {
		return fulfillment.Receipt{}, fulfillment.NewPushError(enums.PushErrorMalformed, resp.status, "jaybart reply missing transaction id")
	}
	return fulfillment.Receipt{Reference: reply.Data.TransactionID, HTTPStatus: resp.status}, nil
}

func (j *Jaybart) Scope() fulfillment.SyncScope {
	return fulfillment.SyncScope{Provider: fulfillment.ProviderJaybart}
}

func (j *Jaybart) PollStatus(ctx context.Context, reference string) (fulfillment.DeliveryState, error) {
	resp, err := j.c.getJSON(ctx, "/orders/"+url.PathEscape(reference))
	if err != nil {
		return fulfillment.DeliveryUnknown, err
	}
	var reply jaybartReply
	if err := decode(resp, &reply); err != nil {
		return fulfillment.DeliveryUnknown, err
	}
	return deliveryState(reply.Data.Status), nil
}

func deliveryState(status string) fulfillment.DeliveryState {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "delivered", "completed", "success", "successful":
		return fulfillment.DeliveryDelivered
	case "failed", "reversed", "refunded":
		return fulfillment.DeliveryFailed
	case "pending", "processing", "queued":
		return fulfillment.DeliveryPending
	default:
		return fulfillment.DeliveryUnknown
	}
}
