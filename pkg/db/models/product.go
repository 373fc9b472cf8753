package models

import (
	"strings"
	"time"

	"github.com/prodataworld/prodata-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// Product is a network bundle family (e.g. "MTN Data") in one pricing catalogue.
type Product struct {
	ID          uint              `gorm:"primaryKey"`
	Name        string            `gorm:"column:name;not null"`
	Description string            `gorm:"column:description"`
	Network     string            `gorm:"column:network;not null"`
	ProductType enums.ProductType `gorm:"column:product_type;not null"`
	Expiry      *string           `gorm:"column:expiry"`
	HasVariants bool              `gorm:"column:has_variants;not null;default:true"`
	Variants    []ProductVariant  `gorm:"foreignKey:ProductID"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// VariantAttributes is the JSON blob carried on every variant row.
type VariantAttributes struct {
	Size string `json:"size"`
}

// ProductVariant is a purchasable bundle size with its own price and stock.
type ProductVariant struct {
	ID         uint              `gorm:"primaryKey"`
	ProductID  uint              `gorm:"column:product_id;not null;index"`
	Price      decimal.Decimal   `gorm:"column:price;type:numeric(12,2);not null"`
	Quantity   int               `gorm:"column:quantity;not null;default:0"`
	Status     string            `gorm:"column:status;not null;default:'IN STOCK'"`
	Attributes VariantAttributes `gorm:"column:variant_attributes;type:text;serializer:json"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// InStock reports whether the variant can currently be sold.
func (v ProductVariant) InStock() bool {
	return strings.EqualFold(v.Status, string(enums.VariantStatusInStock)) && v.Quantity > 0
}

// Size returns the normalised lower-case size label ("1gb", "0.5gb").
func (v ProductVariant) Size() string {
	return strings.ToLower(strings.TrimSpace(v.Attributes.Size))
}
