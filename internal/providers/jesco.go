package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/prodataworld/prodata-backend/internal/fulfillment"
	"github.com/prodataworld/prodata-backend/pkg/config"
	"github.com/prodataworld/prodata-backend/pkg/db/models"
	"github.com/prodataworld/prodata-backend/pkg/enums"
)

// Jesco is a push-only MTN vendor; it exposes no status endpoint.
type Jesco struct {
	c *caller
}

func NewJesco(cfg config.ProviderConfig, opts ...Option) (*Jesco, error) {
	if !cfg.Configured() {
		return nil, fmt.Errorf("jesco base url and api key required")
	}
	headers := map[string]string{"Authorization": "Bearer " + cfg.APIKey}
	return &Jesco{c: newCaller(fulfillment.ProviderJesco, cfg, headers, opts...)}, nil
}

func (j *Jesco) Name() string { return fulfillment.ProviderJesco }

func (j *Jesco) Eligible(order *models.Order) bool {
	return enums.NetworkIs(order.Network, enums.NetworkMTN)
}

type jescoPurchase struct {
	Phone   string `json:"phone"`
	Size    string `json:"size"`
	Network string `json:"network"`
	Ref     string `json:"ref"`
}

func (j *Jesco) PushItem(ctx context.Context, order *models.Order, item *models.OrderItem) (fulfillment.Receipt, error) {
	phone := FormatPhone(item.BeneficiaryNumber)
	if phone == "" {
		return fulfillment.Receipt{}, fulfillment.NewPushError(enums.PushErrorInvalidOrder, 0, "missing beneficiary number")
	}
	size := strings.ToUpper(item.Size())
	if size == "" {
		return fulfillment.Receipt{}, fulfillment.NewPushError(enums.PushErrorInvalidOrder, 0, "missing bundle size")
	}

	resp, err := j.c.postJSON(ctx, "/purchase", jescoPurchase{
		Phone:   phone,
		Size:    size,
		Network: "MTN",
		Ref:     order.VendorReference(),
	})
	if err != nil {
		return fulfillment.Receipt{}, err
	}
	var reply struct {
		Success   bool   `json:"success"`
		Message   string `json:"message"`
		Reference string `json:"reference"`
	}
	if err := decode(resp, &reply); err != nil {
		return fulfillment.Receipt{}, err
	}
	if !reply.Success {
		return fulfillment.Receipt{}, fulfillment.NewPushError(enums.PushErrorRejected, resp.status, "jesco declined order: %s", reply.Message)
	}
	return fulfillment.Receipt{Reference: reply.Reference, HTTPStatus: resp.status}, nil
}
