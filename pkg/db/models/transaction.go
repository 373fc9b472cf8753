package models

import (
	"time"

	"github.com/prodataworld/prodata-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// Transaction is an append-only wallet ledger entry.
type Transaction struct {
	ID          uint                    `gorm:"primaryKey"`
	UserID      uint                    `gorm:"column:user_id;not null;index"`
	OrderID     *uint                   `gorm:"column:order_id"`
	Amount      decimal.Decimal         `gorm:"column:amount;type:numeric(12,2);not null"`
	Status      enums.TransactionStatus `gorm:"column:status;not null"`
	Type        enums.TransactionType   `gorm:"column:type;not null"`
	Description string                  `gorm:"column:description"`
	Reference   *string                 `gorm:"column:reference"`
	CreatedAt   time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
