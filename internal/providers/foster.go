package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/prodataworld/prodata-backend/internal/fulfillment"
	product "github.com/prodataworld/prodata-backend/internal/products"
	"github.com/prodataworld/prodata-backend/pkg/config"
	"github.com/prodataworld/prodata-backend/pkg/db/models"
	"github.com/prodataworld/prodata-backend/pkg/enums"
)

const (
	fosterPurchasePath = "/buy-ishare-package"
	fosterStatusPath   = "/fetch-ishare-transaction"
	fosterDelivered    = "200"
)

// Foster sells iShare shared bundles.
type Foster struct {
	c *caller
}

func NewFoster(cfg config.ProviderConfig, opts ...Option) (*Foster, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("foster api key required")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = config.DefaultFosterBaseURL
	}
	headers := map[string]string{"x-api-key": cfg.APIKey}
	return &Foster{c: newCaller(fulfillment.ProviderFoster, cfg, headers, opts...)}, nil
}

func (f *Foster) Name() string { return fulfillment.ProviderFoster }

func (f *Foster) Eligible(order *models.Order) bool {
	return enums.NetworkIs(order.Network, enums.NetworkIshare)
}

type fosterPurchase struct {
	RecipientMSISDN string `json:"recipient_msisdn"`
	SharedBundle    int    `json:"shared_bundle"`
	OrderReference  string `json:"order_reference"`
}

func (f *Foster) PushItem(ctx context.Context, order *models.Order, item *models.OrderItem) (fulfillment.Receipt, error) {
	beneficiary := strings.TrimSpace(item.BeneficiaryNumber)
	if beneficiary == "" {
		return fulfillment.Receipt{}, fulfillment.NewPushError(enums.PushErrorInvalidOrder, 0, "missing beneficiary number")
	}
	if !strings.Contains(strings.ToLower(item.ProductName()), "ishare") {
		return fulfillment.Receipt{}, fulfillment.NewPushError(enums.PushErrorInvalidOrder, 0, "product %q is not an ishare bundle", item.ProductName())
	}
	megabytes := product.SizeToMegabytes(item.Size())
	if megabytes <= 0 {
		return fulfillment.Receipt{}, fulfillment.NewPushError(enums.PushErrorInvalidOrder, 0, "invalid bundle size %q", item.Size())
	}

	resp, err := f.c.postJSON(ctx, fosterPurchasePath, fosterPurchase{
		RecipientMSISDN: FormatPhone(beneficiary),
		SharedBundle:    megabytes,
		OrderReference:  order.VendorReference(),
	})
	if err != nil {
		return fulfillment.Receipt{}, err
	}

	// Foster acknowledges with 2xx; the transaction id is optional.
	var body struct {
		VendorTranxID string `json:"vendorTranxId"`
	}
	_ = decode(resp, &body)
	return fulfillment.Receipt{Reference: body.VendorTranxID, HTTPStatus: resp.status}, nil
}

func (f *Foster) Scope() fulfillment.SyncScope {
	return fulfillment.SyncScope{
		Provider:            fulfillment.ProviderFoster,
		Networks:            []enums.Network{enums.NetworkIshare},
		IncludeUnattributed: true,
	}
}

func (f *Foster) PollStatus(ctx context.Context, reference string) (fulfillment.DeliveryState, error) {
	resp, err := f.c.postJSON(ctx, fosterStatusPath, map[string]string{"transaction_id": reference})
	if err != nil {
		return fulfillment.DeliveryUnknown, err
	}
	var body struct {
		ResponseCode any    `json:"response_code"`
		Message      string `json:"message"`
	}
	if err := decode(resp, &body); err != nil {
		return fulfillment.DeliveryUnknown, err
	}
	if fmt.Sprint(body.ResponseCode) == fosterDelivered {
		return fulfillment.DeliveryDelivered, nil
	}
	return fulfillment.DeliveryPending, nil
}
