package models

import (
	"fmt"
	"time"

	"github.com/prodataworld/prodata-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// Order is a single wallet-paid bundle purchase for one beneficiary.
type Order struct {
	ID                uint                `gorm:"primaryKey"`
	UserID            uint                `gorm:"column:user_id;not null;index"`
	Status            enums.OrderStatus   `gorm:"column:status;not null;default:'pending';index"`
	Total             decimal.Decimal     `gorm:"column:total;type:numeric(12,2);not null"`
	BeneficiaryNumber string              `gorm:"column:beneficiary_number;not null"`
	Network           string              `gorm:"column:network;not null"`
	ReferenceID       *string             `gorm:"column:reference_id"`
	PusherProvider    *string             `gorm:"column:pusher_provider"`
	PusherStatus      *enums.PusherStatus `gorm:"column:order_pusher_status"`
	Items             []OrderItem         `gorm:"foreignKey:OrderID"`
	User              *User               `gorm:"foreignKey:UserID"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// VendorReference is the idempotency reference handed to upstream vendors.
func (o *Order) VendorReference() string {
	return fmt.Sprintf("DEB-%d", o.ID)
}

// OrderItem is the order/product pivot row.
type OrderItem struct {
	ID                uint               `gorm:"primaryKey"`
	OrderID           uint               `gorm:"column:order_id;not null;index"`
	ProductID         uint               `gorm:"column:product_id;not null"`
	ProductVariantID  *uint              `gorm:"column:product_variant_id"`
	Quantity          int                `gorm:"column:quantity;not null;default:1"`
	Price             decimal.Decimal    `gorm:"column:price;type:numeric(12,2);not null"`
	BeneficiaryNumber string             `gorm:"column:beneficiary_number;not null"`
	PushStatus        *enums.PushOutcome `gorm:"column:push_status"`
	PushReference     *string            `gorm:"column:push_reference"`
	PushError         *string            `gorm:"column:push_error"`
	Product           *Product           `gorm:"foreignKey:ProductID"`
	Variant           *ProductVariant    `gorm:"foreignKey:ProductVariantID"`
	CreatedAt         time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (OrderItem) TableName() string {
	return "order_product"
}

// Size returns the variant size of the item, or "" when unknown.
func (i OrderItem) Size() string {
	if i.Variant == nil {
		return ""
	}
	return i.Variant.Size()
}

// ProductName returns the joined product name, or "" when not preloaded.
func (i OrderItem) ProductName() string {
	if i.Product == nil {
		return ""
	}
	return i.Product.Name
}

// PushAttempt is one vendor submission for one order item.
type PushAttempt struct {
	ID           uint                 `gorm:"primaryKey"`
	OrderID      uint                 `gorm:"column:order_id;not null;index"`
	OrderItemID  *uint                `gorm:"column:order_item_id"`
	Provider     string               `gorm:"column:provider;not null"`
	Outcome      enums.PushOutcome    `gorm:"column:outcome;not null"`
	Reference    *string              `gorm:"column:reference"`
	ErrorKind    *enums.PushErrorKind `gorm:"column:error_kind"`
	ErrorMessage *string              `gorm:"column:error_message"`
	HTTPStatus   *int                 `gorm:"column:http_status"`
	CreatedAt    time.Time            `gorm:"column:created_at;autoCreateTime"`
}
