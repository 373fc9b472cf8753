package notifications

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/prodataworld/prodata-backend/pkg/db/models"
	"github.com/prodataworld/prodata-backend/pkg/logger"
	"github.com/prodataworld/prodata-backend/pkg/moolre"
)

// Sender is the gateway surface used to deliver texts.
type Sender interface {
	Send(ctx context.Context, recipient, text string) (*moolre.SendResult, error)
}

// Notifier delivers customer-facing SMS. Delivery failures are logged and
// reported as false, never returned to the caller.
type Notifier interface {
	Notify(ctx context.Context, phone, message string) bool
}

// SMSNotifier sends through a Sender. A nil sender turns it into a logger.
type SMSNotifier struct {
	sender Sender
	logg   *logger.Logger
}

func NewSMSNotifier(sender Sender, logg *logger.Logger) *SMSNotifier {
	return &SMSNotifier{sender: sender, logg: logg}
}

func (n *SMSNotifier) Notify(ctx context.Context, phone, message string) bool {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return false
	}
	ctx = n.withFields(ctx, map[string]any{"recipient": phone, "message_length": len(message)})
	if n.sender == nil {
		n.warn(ctx, "sms gateway not configured, skipping notification")
		return false
	}

	result, err := n.sender.Send(ctx, phone, message)
	if err != nil {
		if result != nil {
			ctx = n.withFields(ctx, map[string]any{"http_status": result.HTTPStatus, "gateway_status": result.Status})
		}
		n.error(ctx, "sms sending failed", err)
		return false
	}
	n.info(ctx, "sms sent")
	return true
}

// OrderCompletedMessage renders the text sent when an order is completed.
func OrderCompletedMessage(order *models.Order) string {
	beneficiary := "N/A"
	productName := ""
	size := ""
	if len(order.Items) > 0 {
		first := order.Items[0]
		if first.BeneficiaryNumber != "" {
			beneficiary = first.BeneficiaryNumber
		}
		productName = first.ProductName()
		if s := first.Size(); s != "" {
			size = strings.ToUpper(s) + " "
		}
	}
	return fmt.Sprintf("Your order #%d for %s%s to %s (%s) has been completed. Total: GHS %s",
		order.ID, size, productName, beneficiary, order.Network, FormatAmount(order.Total))
}

// FormatAmount renders money with two decimals and comma thousands
// separators, e.g. 1,234.50.
func FormatAmount(amount decimal.Decimal) string {
	fixed := amount.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if amount.IsNegative() {
		b.WriteByte('-')
	}
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

func (n *SMSNotifier) withFields(ctx context.Context, fields map[string]any) context.Context {
	if n.logg == nil {
		return ctx
	}
	return n.logg.WithFields(ctx, fields)
}

func (n *SMSNotifier) info(ctx context.Context, msg string) {
	if n.logg != nil {
		n.logg.Info(ctx, msg)
	}
}

func (n *SMSNotifier) warn(ctx context.Context, msg string) {
	if n.logg != nil {
		n.logg.Warn(ctx, msg)
	}
}

func (n *SMSNotifier) error(ctx context.Context, msg string, err error) {
	if n.logg != nil {
		n.logg.Error(ctx, msg, err)
	}
}
