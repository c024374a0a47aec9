package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/stringmaster/stringmaster-backend/pkg/db"
	"github.com/stringmaster/stringmaster-backend/pkg/enums"
	pkgerrors "github.com/stringmaster/stringmaster-backend/pkg/errors"
)

func newValidationOnlyService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(NewRepository(nil), &db.Client{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestGetInstrumentRequiresID(t *testing.T) {
	svc := newValidationOnlyService(t)

	_, err := svc.GetInstrument(context.Background(), uuid.Nil)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListInstrumentsRejectsBadFilters(t *testing.T) {
	svc := newValidationOnlyService(t)
	ctx := context.Background()

	badType := enums.InstrumentType("banjo")
	if _, err := svc.ListInstruments(ctx, ListFilters{Type: &badType}); pkgerrors.As(err) == nil {
		t.Fatalf("expected validation error for bad type, got %v", err)
	}

	negative := -1
	if _, err := svc.ListInstruments(ctx, ListFilters{PriceMinCents: &negative}); pkgerrors.As(err) == nil {
		t.Fatalf("expected validation error for negative min price, got %v", err)
	}

	min, max := 5000, 1000
	if _, err := svc.ListInstruments(ctx, ListFilters{PriceMinCents: &min, PriceMaxCents: &max}); pkgerrors.As(err) == nil {
		t.Fatalf("expected validation error for inverted price range, got %v", err)
	}
}

func TestCreateInstrumentValidation(t *testing.T) {
	svc := newValidationOnlyService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input CreateInstrumentInput
	}{
		{
			name:  "invalidType",
			input: CreateInstrumentInput{Type: "kazoo", Brand: "Fender", Model: "X", PriceCents: 100},
		},
		{
			name:  "missingBrand",
			input: CreateInstrumentInput{Type: enums.InstrumentTypeElectric, Model: "X", PriceCents: 100},
		},
		{
			name:  "negativePrice",
			input: CreateInstrumentInput{Type: enums.InstrumentTypeElectric, Brand: "Fender", Model: "X", PriceCents: -1},
		},
		{
			name:  "negativeStock",
			input: CreateInstrumentInput{Type: enums.InstrumentTypeElectric, Brand: "Fender", Model: "X", PriceCents: 100, Stock: -2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateInstrument(ctx, tt.input)
			if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestRestockValidation(t *testing.T) {
	svc := newValidationOnlyService(t)
	ctx := context.Background()

	if _, err := svc.Restock(ctx, uuid.Nil, 5); pkgerrors.As(err) == nil {
		t.Fatal("expected validation error for nil id")
	}
	if _, err := svc.Restock(ctx, uuid.New(), 0); pkgerrors.As(err) == nil {
		t.Fatal("expected validation error for zero quantity")
	}
	if _, err := svc.Restock(ctx, uuid.New(), -3); pkgerrors.As(err) == nil {
		t.Fatal("expected validation error for negative quantity")
	}
}
