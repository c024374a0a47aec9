package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stringmaster/stringmaster-backend/pkg/db/models"
	"github.com/stringmaster/stringmaster-backend/pkg/enums"
)

// Repository wires together catalog persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads the instrument row.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Instrument, error) {
	var instrument models.Instrument
	if err := r.db.WithContext(ctx).First(&instrument, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &instrument, nil
}

// List returns active instruments matching the provided filters, ordered by brand then model.
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]models.Instrument, error) {
	query := r.db.WithContext(ctx).Model(&models.Instrument{}).Where("is_active = ?", true)

	if filters.Type != nil {
		query = query.Where("type = ?", *filters.Type)
	}
	if filters.Brand != nil {
		query = query.Where("LOWER(brand) = LOWER(?)", *filters.Brand)
	}
	if filters.PriceMinCents != nil {
		query = query.Where("price_cents >= ?", *filters.PriceMinCents)
	}
	if filters.PriceMaxCents != nil {
		query = query.Where("price_cents <= ?", *filters.PriceMaxCents)
	}
	if filters.InStock != nil && *filters.InStock {
		query = query.Where("stock > 0")
	}

	var instruments []models.Instrument
	if err := query.Order("brand ASC, model ASC").Find(&instruments).Error; err != nil {
		return nil, err
	}
	return instruments, nil
}

// Create inserts a new instrument row.
func (r *Repository) Create(ctx context.Context, instrument *models.Instrument) (*models.Instrument, error) {
	if err := r.db.WithContext(ctx).Create(instrument).Error; err != nil {
		return nil, err
	}
	return instrument, nil
}

// Update saves an existing instrument row.
func (r *Repository) Update(ctx context.Context, instrument *models.Instrument) (*models.Instrument, error) {
	if err := r.db.WithContext(ctx).Save(instrument).Error; err != nil {
		return nil, err
	}
	return instrument, nil
}

// Deactivate retires an instrument from the storefront without touching
// order history rows that reference it.
func (r *Repository) Deactivate(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Instrument{}).
		Where("id = ? AND is_active = ?", id, true).
		UpdateColumn("is_active", false)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ReserveStock atomically decrements stock when enough units remain.
// The conditional predicate keeps concurrent purchases from overselling.
func (r *Repository) ReserveStock(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Instrument{}).
		Where("id = ? AND stock >= ?", id, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Restock increments stock for the instrument.
func (r *Repository) Restock(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Instrument{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// GroupCount aggregates stock counts for the stats endpoint.
type GroupCount struct {
	Key   string `gorm:"column:key"`
	Count int    `gorm:"column:count"`
	Stock int    `gorm:"column:stock"`
}

// StatsTotals summarizes the active catalog.
type StatsTotals struct {
	Instruments     int   `gorm:"column:instruments"`
	StockUnits      int   `gorm:"column:stock_units"`
	StockValueCents int64 `gorm:"column:stock_value_cents"`
}

// Totals returns catalog-wide counters for active instruments.
func (r *Repository) Totals(ctx context.Context) (*StatsTotals, error) {
	var totals StatsTotals
	err := r.db.WithContext(ctx).
		Model(&models.Instrument{}).
		Select("COUNT(*) AS instruments, COALESCE(SUM(stock), 0) AS stock_units, COALESCE(SUM(CAST(stock AS bigint) * price_cents), 0) AS stock_value_cents").
		Where("is_active = ?", true).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return &totals, nil
}

// CountByType groups active instruments by type.
func (r *Repository) CountByType(ctx context.Context) ([]GroupCount, error) {
	return r.groupBy(ctx, "type")
}

// CountByBrand groups active instruments by brand.
func (r *Repository) CountByBrand(ctx context.Context) ([]GroupCount, error) {
	return r.groupBy(ctx, "brand")
}

func (r *Repository) groupBy(ctx context.Context, column string) ([]GroupCount, error) {
	var rows []GroupCount
	err := r.db.WithContext(ctx).
		Model(&models.Instrument{}).
		Select(column+" AS key, COUNT(*) AS count, COALESCE(SUM(stock), 0) AS stock").
		Where("is_active = ?", true).
		Group(column).
		Order(column + " ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListFilters describe the supported filter knobs for the browse endpoint.
type ListFilters struct {
	Type          *enums.InstrumentType
	Brand         *string
	PriceMinCents *int
	PriceMaxCents *int
	InStock       *bool
}
