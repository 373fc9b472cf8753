package models

import "time"

// Setting is a runtime-tunable key/value flag.
type Setting struct {
	ID        uint      `gorm:"primaryKey"`
	Key       string    `gorm:"column:key;not null;uniqueIndex"`
	Value     string    `gorm:"column:value"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Alert is a dashboard banner.
type Alert struct {
	ID        uint      `gorm:"primaryKey"`
	Title     string    `gorm:"column:title;not null"`
	Message   string    `gorm:"column:message;not null"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// All lists every persisted model, for schema helpers in tests.
func All() []any {
	return []any{
		&User{},
		&Product{},
		&ProductVariant{},
		&CartItem{},
		&Order{},
		&OrderItem{},
		&PushAttempt{},
		&Transaction{},
		&Setting{},
		&Alert{},
	}
}
