package models

import (
	"time"

	"github.com/prodataworld/prodata-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// User is a reseller account holding a prepaid wallet.
type User struct {
	ID            uint            `gorm:"primaryKey"`
	Name          string          `gorm:"column:name;not null"`
	Email         string          `gorm:"column:email;not null;uniqueIndex"`
	Phone         *string         `gorm:"column:phone"`
	Role          enums.UserRole  `gorm:"column:role;not null;default:'customer'"`
	WalletBalance decimal.Decimal `gorm:"column:wallet_balance;type:numeric(12,2);not null;default:0"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// HasPhone reports whether SMS notifications can be delivered.
func (u *User) HasPhone() bool {
	return u != nil && u.Phone != nil && *u.Phone != ""
}
