package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stringmaster/stringmaster-backend/pkg/db/models"
)

// PurchaseInput captures a customer's purchase request.
type PurchaseInput struct {
	CustomerID   uuid.UUID
	InstrumentID uuid.UUID
	Quantity     int
}

// OrderDTO exposes the persisted order snapshot.
type OrderDTO struct {
	ID              uuid.UUID       `json:"id"`
	InstrumentID    uuid.UUID       `json:"instrument_id"`
	Brand           string          `json:"brand"`
	Model           string          `json:"model"`
	Quantity        int             `json:"quantity"`
	ListPriceCents  int             `json:"list_price_cents"`
	UnitPriceCents  int             `json:"unit_price_cents"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	TotalCents      int             `json:"total_cents"`
	CreatedAt       time.Time       `json:"created_at"`
}

// NewOrderDTO maps the stored order to its API shape.
func NewOrderDTO(order *models.Order) *OrderDTO {
	return &OrderDTO{
		ID:              order.ID,
		InstrumentID:    order.InstrumentID,
		Brand:           order.Brand,
		Model:           order.Model,
		Quantity:        order.Quantity,
		ListPriceCents:  order.ListPriceCents,
		UnitPriceCents:  order.UnitPriceCents,
		DiscountPercent: order.DiscountPercent,
		TotalCents:      order.TotalCents,
		CreatedAt:       order.CreatedAt,
	}
}

// OrderList wraps paginated order history plus the next page cursor.
type OrderList struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}
