package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/stringmaster/stringmaster-backend/pkg/db/models"
)

func mustCreateTestOrder(t *testing.T, tx *gorm.DB, customerID uuid.UUID, createdAt time.Time) *models.Order {
	t.Helper()
	order := &models.Order{
		CustomerID:      customerID,
		InstrumentID:    uuid.New(),
		Brand:           "Fender",
		Model:           "Player Stratocaster",
		Quantity:        1,
		ListPriceCents:  84999,
		UnitPriceCents:  76499,
		DiscountPercent: decimal.NewFromInt(10),
		TotalCents:      76499,
		CreatedAt:       createdAt,
	}
	if err := tx.Create(order).Error; err != nil {
		t.Fatalf("create order: %v", err)
	}
	return order
}

func TestRepositoryListByCustomerPagination(t *testing.T) {
	conn := openTestDB(t)
	tx := conn.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		_ = tx.Rollback()
	})

	repo := NewRepository(tx)
	ctx := context.Background()

	customerID := uuid.New()
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		mustCreateTestOrder(t, tx, customerID, base.Add(time.Duration(i)*time.Minute))
	}
	// another customer's order must never leak into the page
	mustCreateTestOrder(t, tx, uuid.New(), base)

	rows, next, err := repo.ListByCustomer(ctx, listOrdersParams{CustomerID: customerID, Limit: 2})
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].CreatedAt.Before(rows[1].CreatedAt) {
		t.Fatal("expected newest-first ordering")
	}
	if next == nil {
		t.Fatal("expected a next cursor")
	}

	rest, final, err := repo.ListByCustomer(ctx, listOrdersParams{CustomerID: customerID, Limit: 2, Cursor: next})
	if err != nil {
		t.Fatalf("list orders second page: %v", err)
	}
	if len(rest) != 1 {
		t.Fatalf("expected 1 row on final page, got %d", len(rest))
	}
	if final != nil {
		t.Fatalf("expected no cursor on final page, got %+v", final)
	}
	for _, row := range append(rows, rest...) {
		if row.CustomerID != customerID {
			t.Fatalf("unexpected customer %s in page", row.CustomerID)
		}
	}
}

func TestRepositoryCreateAndFind(t *testing.T) {
	conn := openTestDB(t)
	tx := conn.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		_ = tx.Rollback()
	})

	repo := NewRepository(tx)
	ctx := context.Background()

	created := mustCreateTestOrder(t, tx, uuid.New(), time.Now().UTC())

	found, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("find order: %v", err)
	}
	if found.TotalCents != created.TotalCents || found.Brand != created.Brand {
		t.Fatalf("unexpected order row: %+v", found)
	}
	if !found.DiscountPercent.Equal(created.DiscountPercent) {
		t.Fatalf("discount percent mismatch: %s vs %s", found.DiscountPercent, created.DiscountPercent)
	}
}
