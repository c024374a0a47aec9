package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order captures a completed purchase with price snapshots taken at
// checkout time. ListPriceCents is the undiscounted unit price, and
// UnitPriceCents is the per-unit price after discount resolution.
type Order struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID      uuid.UUID       `gorm:"column:customer_id;type:uuid;not null;index"`
	InstrumentID    uuid.UUID       `gorm:"column:instrument_id;type:uuid;not null"`
	Brand           string          `gorm:"column:brand;not null"`
	Model           string          `gorm:"column:model;not null"`
	Quantity        int             `gorm:"column:quantity;not null"`
	ListPriceCents  int             `gorm:"column:list_price_cents;not null"`
	UnitPriceCents  int             `gorm:"column:unit_price_cents;not null"`
	DiscountPercent decimal.Decimal `gorm:"column:discount_percent;type:numeric(5,2);not null;default:0"`
	TotalCents      int             `gorm:"column:total_cents;not null"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
}
