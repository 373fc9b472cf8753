package controllers

import (
	"strings"
	"time"

	"github.com/prodataworld/prodata-backend/pkg/db/models"
	"github.com/prodataworld/prodata-backend/pkg/pagination"
	"github.com/shopspring/decimal"
)

type orderUserView struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type orderProductView struct {
	Name     string          `json:"name"`
	Size     string          `json:"size"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type orderView struct {
	ID                uint               `json:"id"`
	ReferenceID       *string            `json:"reference_id"`
	Total             decimal.Decimal    `json:"total"`
	Status            string             `json:"status"`
	Network           string             `json:"network"`
	BeneficiaryNumber string             `json:"beneficiary_number"`
	PusherStatus      *string            `json:"order_pusher_status"`
	CreatedAt         time.Time          `json:"created_at"`
	User              *orderUserView     `json:"user,omitempty"`
	Products          []orderProductView `json:"products"`
}

func newOrderView(order *models.Order) orderView {
	view := orderView{
		ID:                order.ID,
		ReferenceID:       order.ReferenceID,
		Total:             order.Total,
		Status:            string(order.Status),
		Network:           order.Network,
		BeneficiaryNumber: order.BeneficiaryNumber,
		CreatedAt:         order.CreatedAt,
		Products:          make([]orderProductView, 0, len(order.Items)),
	}
	if order.PusherStatus != nil {
		status := string(*order.PusherStatus)
		view.PusherStatus = &status
	}
	if order.User != nil {
		view.User = &orderUserView{Name: order.User.Name, Email: order.User.Email}
	}
	for _, item := range order.Items {
		view.Products = append(view.Products, orderProductView{
			Name:     item.ProductName(),
			Size:     strings.ToUpper(item.Size()),
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}
	return view
}

func newOrderViews(orders []models.Order) []orderView {
	out := make([]orderView, 0, len(orders))
	for i := range orders {
		out = append(out, newOrderView(&orders[i]))
	}
	return out
}

type transactionView struct {
	ID          uint            `json:"id"`
	OrderID     *uint           `json:"order_id"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
	Type        string          `json:"type"`
	Description string          `json:"description"`
	Reference   *string         `json:"reference"`
	CreatedAt   time.Time       `json:"created_at"`
}

func newTransactionView(txn *models.Transaction) transactionView {
	return transactionView{
		ID:          txn.ID,
		OrderID:     txn.OrderID,
		Amount:      txn.Amount,
		Status:      string(txn.Status),
		Type:        string(txn.Type),
		Description: txn.Description,
		Reference:   txn.Reference,
		CreatedAt:   txn.CreatedAt,
	}
}

type cartItemView struct {
	ID                uint            `json:"id"`
	ProductID         uint            `json:"product_id"`
	ProductVariantID  *uint           `json:"product_variant_id"`
	ProductName       string          `json:"product_name"`
	Network           string          `json:"network"`
	Size              string          `json:"size"`
	Quantity          int             `json:"quantity"`
	Price             decimal.Decimal `json:"price"`
	BeneficiaryNumber string          `json:"beneficiary_number"`
}

func newCartItemView(item *models.CartItem, price decimal.Decimal) cartItemView {
	view := cartItemView{
		ID:                item.ID,
		ProductID:         item.ProductID,
		ProductVariantID:  item.ProductVariantID,
		Quantity:          item.Quantity,
		Price:             price,
		BeneficiaryNumber: item.BeneficiaryNumber,
	}
	if item.Product != nil {
		view.ProductName = item.Product.Name
		view.Network = item.Product.Network
	}
	if item.Variant != nil {
		view.Size = strings.ToUpper(item.Variant.Size())
	}
	return view
}

type pageView[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
}

func newPageView[S any, T any](page pagination.Page[S], convert func(*S) T) pageView[T] {
	items := make([]T, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, convert(&page.Items[i]))
	}
	return pageView[T]{Items: items, NextCursor: page.NextCursor}
}
