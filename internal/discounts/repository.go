package discounts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stringmaster/stringmaster-backend/pkg/db/models"
	"github.com/stringmaster/stringmaster-backend/pkg/enums"
)

// Repository wires together discount rule persistence helpers.
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

// Upsert inserts or replaces the rule for its (scope, scope_key) pair.
func (r *Repository) Upsert(ctx context.Context, rule *models.DiscountRule) (*models.DiscountRule, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "scope"}, {Name: "scope_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"percent", "updated_at"}),
		}).
		Create(rule).Error
	if err != nil {
		return nil, err
	}

	// re-read so callers see the winning row on conflict
	var stored models.DiscountRule
	if err := r.db.WithContext(ctx).
		First(&stored, "scope = ? AND scope_key = ?", rule.Scope, rule.ScopeKey).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

// Delete removes the rule for the (scope, scope_key) pair.
func (r *Repository) Delete(ctx context.Context, scope enums.DiscountScope, scopeKey string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("scope = ? AND scope_key = ?", scope, scopeKey).
		Delete(&models.DiscountRule{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteByID removes a single rule by primary key.
func (r *Repository) DeleteByID(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.DiscountRule{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteAll wipes every rule and reports how many were removed.
func (r *Repository) DeleteAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("1 = 1").
		Delete(&models.DiscountRule{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// List returns all configured rules ordered by scope then key.
func (r *Repository) List(ctx context.Context) ([]models.DiscountRule, error) {
	var rules []models.DiscountRule
	if err := r.db.WithContext(ctx).
		Order("scope ASC, scope_key ASC").
		Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

// FindCandidates loads every rule that could apply to the given instrument.
// Precedence is decided by the resolver, not the query.
func (r *Repository) FindCandidates(ctx context.Context, instrument *models.Instrument) ([]models.DiscountRule, error) {
	var rules []models.DiscountRule
	err := r.db.WithContext(ctx).
		Where("(scope = ? AND scope_key = ?) OR (scope = ? AND scope_key = LOWER(?)) OR (scope = ? AND scope_key = ?)",
			enums.DiscountScopeItem, instrument.ID.String(),
			enums.DiscountScopeBrand, instrument.Brand,
			enums.DiscountScopeType, instrument.Type.String(),
		).
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}
