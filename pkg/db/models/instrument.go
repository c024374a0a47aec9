package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/stringmaster/stringmaster-backend/pkg/enums"
	"github.com/stringmaster/stringmaster-backend/pkg/types"
)

// Instrument represents a catalog listing with its live stock count.
type Instrument struct {
	ID         uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Type       enums.InstrumentType `gorm:"column:type;type:text;not null;index"`
	Brand      string               `gorm:"column:brand;not null;index"`
	Model      string               `gorm:"column:model;not null"`
	PriceCents int                  `gorm:"column:price_cents;not null"`
	Stock      int                  `gorm:"column:stock;not null;default:0"`
	Attributes types.Attributes     `gorm:"column:attributes;type:jsonb;not null;default:'{}'"`
	IsActive   bool                 `gorm:"column:is_active;not null;default:true"`
	CreatedAt  time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
