package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stringmaster/stringmaster-backend/pkg/db"
	"github.com/stringmaster/stringmaster-backend/pkg/db/models"
	"github.com/stringmaster/stringmaster-backend/pkg/enums"
	pkgerrors "github.com/stringmaster/stringmaster-backend/pkg/errors"
	"github.com/stringmaster/stringmaster-backend/pkg/types"
)

// Service exposes catalog management and stock operations.
type Service interface {
	GetInstrument(ctx context.Context, id uuid.UUID) (*InstrumentDTO, error)
	ListInstruments(ctx context.Context, filters ListFilters) ([]InstrumentDTO, error)
	CreateInstrument(ctx context.Context, input CreateInstrumentInput) (*InstrumentDTO, error)
	UpdateInstrument(ctx context.Context, id uuid.UUID, input UpdateInstrumentInput) (*InstrumentDTO, error)
	DeleteInstrument(ctx context.Context, id uuid.UUID) error
	Restock(ctx context.Context, id uuid.UUID, qty int) (*InstrumentDTO, error)
	Stats(ctx context.Context) (*StatsDTO, error)
}

// CreateInstrumentInput holds the validated payload to create a listing.
type CreateInstrumentInput struct {
	Type       enums.InstrumentType
	Brand      string
	Model      string
	PriceCents int
	Stock      int
	Attributes types.Attributes
}

// UpdateInstrumentInput holds optional mutation values for a listing.
type UpdateInstrumentInput struct {
	Type       *enums.InstrumentType
	Brand      *string
	Model      *string
	PriceCents *int
	Attributes *types.Attributes
	IsActive   *bool
}

// service implements the catalog service.
type service struct {
	repo     *Repository
	dbClient *db.Client
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient}, nil
}

// GetInstrument fetches a single active listing.
func (s *service) GetInstrument(ctx context.Context, id uuid.UUID) (*InstrumentDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "instrument id is required")
	}

	instrument, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "instrument not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load instrument")
	}
	if !instrument.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "instrument not found")
	}
	return NewInstrumentDTO(instrument), nil
}

// ListInstruments returns the filtered storefront catalog.
func (s *service) ListInstruments(ctx context.Context, filters ListFilters) ([]InstrumentDTO, error) {
	if filters.Type != nil && !filters.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid instrument type %q", *filters.Type))
	}
	if filters.PriceMinCents != nil && *filters.PriceMinCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price_min_cents cannot be negative")
	}
	if filters.PriceMaxCents != nil && *filters.PriceMaxCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price_max_cents cannot be negative")
	}
	if filters.PriceMinCents != nil && filters.PriceMaxCents != nil && *filters.PriceMinCents > *filters.PriceMaxCents {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price_min_cents exceeds price_max_cents")
	}

	instruments, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list instruments")
	}
	return NewInstrumentDTOs(instruments), nil
}

// CreateInstrument adds a listing to the catalog.
func (s *service) CreateInstrument(ctx context.Context, input CreateInstrumentInput) (*InstrumentDTO, error) {
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid instrument type %q", input.Type))
	}
	if input.Brand == "" || input.Model == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "brand and model are required")
	}
	if input.PriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price_cents cannot be negative")
	}
	if input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}

	attributes := input.Attributes
	if attributes == nil {
		attributes = types.Attributes{}
	}

	instrument := &models.Instrument{
		Type:       input.Type,
		Brand:      input.Brand,
		Model:      input.Model,
		PriceCents: input.PriceCents,
		Stock:      input.Stock,
		Attributes: attributes,
		IsActive:   true,
	}

	created, err := s.repo.Create(ctx, instrument)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "instrument already exists for brand and model")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert instrument")
	}
	return NewInstrumentDTO(created), nil
}

// UpdateInstrument applies the provided partial mutation.
func (s *service) UpdateInstrument(ctx context.Context, id uuid.UUID, input UpdateInstrumentInput) (*InstrumentDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "instrument id is required")
	}
	if input.Type != nil && !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid instrument type %q", *input.Type))
	}
	if input.PriceCents != nil && *input.PriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price_cents cannot be negative")
	}

	instrument, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "instrument not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load instrument")
	}

	if input.Type != nil {
		instrument.Type = *input.Type
	}
	if input.Brand != nil {
		instrument.Brand = *input.Brand
	}
	if input.Model != nil {
		instrument.Model = *input.Model
	}
	if input.PriceCents != nil {
		instrument.PriceCents = *input.PriceCents
	}
	if input.Attributes != nil {
		instrument.Attributes = *input.Attributes
	}
	if input.IsActive != nil {
		instrument.IsActive = *input.IsActive
	}

	updated, err := s.repo.Update(ctx, instrument)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "instrument already exists for brand and model")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update instrument")
	}
	return NewInstrumentDTO(updated), nil
}

// DeleteInstrument retires a listing. Order snapshots keep their FK, so
// removal is a deactivation rather than a destructive delete.
func (s *service) DeleteInstrument(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "instrument id is required")
	}

	ok, err := s.repo.Deactivate(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: deactivate instrument")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "instrument not found")
	}
	return nil
}

// Restock adds units back to the shelf.
func (s *service) Restock(ctx context.Context, id uuid.UUID, qty int) (*InstrumentDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "instrument id is required")
	}
	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	ok, err := s.repo.Restock(ctx, id, qty)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: restock instrument")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "instrument not found")
	}

	instrument, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load instrument")
	}
	return NewInstrumentDTO(instrument), nil
}

// Stats aggregates the active catalog for the admin dashboard.
func (s *service) Stats(ctx context.Context) (*StatsDTO, error) {
	totals, err := s.repo.Totals(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: catalog totals")
	}
	byType, err := s.repo.CountByType(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: catalog by type")
	}
	byBrand, err := s.repo.CountByBrand(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: catalog by brand")
	}

	stats := &StatsDTO{
		TotalInstruments: totals.Instruments,
		TotalStockUnits:  totals.StockUnits,
		StockValueCents:  totals.StockValueCents,
		ByType:           make(map[string]GroupStat, len(byType)),
		ByBrand:          make(map[string]GroupStat, len(byBrand)),
	}
	for _, row := range byType {
		stats.ByType[row.Key] = GroupStat{Instruments: row.Count, StockUnits: row.Stock}
	}
	for _, row := range byBrand {
		stats.ByBrand[row.Key] = GroupStat{Instruments: row.Count, StockUnits: row.Stock}
	}
	return stats, nil
}
