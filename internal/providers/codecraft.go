package providers

import (
	"context"
	"fmt"

	"github.com/prodataworld/prodata-backend/internal/fulfillment"
	product "github.com/prodataworld/prodata-backend/internal/products"
	"github.com/prodataworld/prodata-backend/pkg/config"
	"github.com/prodataworld/prodata-backend/pkg/db/models"
	"github.com/prodataworld/prodata-backend/pkg/enums"
)

// CodeCraft serves Telecel, iShare and Bigtime bundles for API orders.
type CodeCraft struct {
	c *caller
}

func NewCodeCraft(cfg config.ProviderConfig, opts ...Option) (*CodeCraft, error) {
	if !cfg.Configured() {
		return nil, fmt.Errorf("codecraft base url and api key required")
	}
	headers := map[string]string{"x-api-key": cfg.APIKey}
	return &CodeCraft{c: newCaller(fulfillment.ProviderCodeCraft, cfg, headers, opts...)}, nil
}

func (c *CodeCraft) Name() string { return fulfillment.ProviderCodeCraft }

func (c *CodeCraft) Eligible(order *models.Order) bool {
	for _, n := range []enums.Network{enums.NetworkTelecel, enums.NetworkIshare, enums.NetworkBigtime} {
		if enums.NetworkIs(order.Network, n) {
			return true
		}
	}
	return false
}

type codeCraftPurchase struct {
	Network         string `json:"network"`
	RecipientMSISDN string `json:"recipient_msisdn"`
	SharedBundle    int    `json:"shared_bundle"`
	OrderReference  string `json:"order_reference"`
}

type codeCraftReply struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
}

func (c *CodeCraft) PushItem(ctx context.Context, order *models.Order, item *models.OrderItem) (fulfillment.Receipt, error) {
	recipient := FormatPhone(item.BeneficiaryNumber)
	if recipient == "" {
		return fulfillment.Receipt{}, fulfillment.NewPushError(enums.PushErrorInvalidOrder, 0, "missing beneficiary number")
	}
	bundle := product.SizeToMegabytes(item.Size())
	if bundle <= 0 {
		return fulfillment.Receipt{}, fulfillment.NewPushError(enums.PushErrorInvalidOrder, 0, "invalid bundle size %q", item.Size())
	}
	network, _ := enums.ParseNetwork(order.Network)

	resp, err := c.c.postJSON(ctx, "/buy-other-package", codeCraftPurchase{
		Network:         network.String(),
		RecipientMSISDN: recipient,
		SharedBundle:    bundle,
		OrderReference:  order.VendorReference(),
	})
	if err != nil {
		return fulfillment.Receipt{}, err
	}
	var reply codeCraftReply
	if err := decode(resp, &reply); err != nil {
		return fulfillment.Receipt{}, err
	}
	if !reply.Success {
		return fulfillment.Receipt{}, fulfillment.NewPushError(enums.PushErrorRejected, resp.status, "codecraft declined order: %s", reply.Message)
	}
	return fulfillment.Receipt{Reference: reply.TransactionID, HTTPStatus: resp.status}, nil
}

func (c *CodeCraft) Scope() fulfillment.SyncScope {
	return fulfillment.SyncScope{Provider: fulfillment.ProviderCodeCraft}
}

func (c *CodeCraft) PollStatus(ctx context.Context, reference string) (fulfillment.DeliveryState, error) {
	resp, err := c.c.postJSON(ctx, "/fetch-transaction", map[string]string{"transaction_id": reference})
	if err != nil {
		return fulfillment.DeliveryUnknown, err
	}
	var reply codeCraftReply
	if err := decode(resp, &reply); err != nil {
		return fulfillment.DeliveryUnknown, err
	}
	return deliveryState(reply.Status), nil
}
