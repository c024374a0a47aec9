package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/stringmaster/stringmaster-backend/pkg/db/models"
	"github.com/stringmaster/stringmaster-backend/pkg/types"
)

// InstrumentDTO represents the catalog payload returned to clients.
type InstrumentDTO struct {
	ID         uuid.UUID        `json:"id"`
	Type       string           `json:"type"`
	Brand      string           `json:"brand"`
	Model      string           `json:"model"`
	PriceCents int              `json:"price_cents"`
	Stock      int              `json:"stock"`
	InStock    bool             `json:"in_stock"`
	Attributes types.Attributes `json:"attributes,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// NewInstrumentDTO maps the model to its API shape.
func NewInstrumentDTO(instrument *models.Instrument) *InstrumentDTO {
	if instrument == nil {
		return nil
	}
	return &InstrumentDTO{
		ID:         instrument.ID,
		Type:       instrument.Type.String(),
		Brand:      instrument.Brand,
		Model:      instrument.Model,
		PriceCents: instrument.PriceCents,
		Stock:      instrument.Stock,
		InStock:    instrument.Stock > 0,
		Attributes: instrument.Attributes,
		CreatedAt:  instrument.CreatedAt,
		UpdatedAt:  instrument.UpdatedAt,
	}
}

// NewInstrumentDTOs maps a slice of models.
func NewInstrumentDTOs(instruments []models.Instrument) []InstrumentDTO {
	out := make([]InstrumentDTO, 0, len(instruments))
	for i := range instruments {
		out = append(out, *NewInstrumentDTO(&instruments[i]))
	}
	return out
}

// StatsDTO summarizes the active catalog for the admin dashboard.
type StatsDTO struct {
	TotalInstruments int                  `json:"total_instruments"`
	TotalStockUnits  int                  `json:"total_stock_units"`
	StockValueCents  int64                `json:"stock_value_cents"`
	ByType           map[string]GroupStat `json:"by_type"`
	ByBrand          map[string]GroupStat `json:"by_brand"`
}

// GroupStat carries per-group counters inside the stats payload.
type GroupStat struct {
	Instruments int `json:"instruments"`
	StockUnits  int `json:"stock_units"`
}
