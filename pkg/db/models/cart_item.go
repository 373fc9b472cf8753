package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is a bundle a user has staged for checkout.
type CartItem struct {
	ID                uint            `gorm:"primaryKey"`
	UserID            uint            `gorm:"column:user_id;not null;index"`
	ProductID         uint            `gorm:"column:product_id;not null"`
	ProductVariantID  *uint           `gorm:"column:product_variant_id"`
	Quantity          int             `gorm:"column:quantity;not null;default:1"`
	Price             decimal.Decimal `gorm:"column:price;type:numeric(12,2)"`
	BeneficiaryNumber string          `gorm:"column:beneficiary_number;not null"`
	Product           *Product        `gorm:"foreignKey:ProductID"`
	Variant           *ProductVariant `gorm:"foreignKey:ProductVariantID"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
