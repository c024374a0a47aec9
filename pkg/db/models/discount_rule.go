package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stringmaster/stringmaster-backend/pkg/enums"
)

// DiscountRule stores one percentage rule per (scope, scope_key) pair.
// ScopeKey holds the instrument ID, brand name, or instrument type
// depending on the scope.
type DiscountRule struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Scope     enums.DiscountScope `gorm:"column:scope;type:text;not null;uniqueIndex:idx_discount_rules_scope_key"`
	ScopeKey  string              `gorm:"column:scope_key;not null;uniqueIndex:idx_discount_rules_scope_key"`
	Percent   decimal.Decimal     `gorm:"column:percent;type:numeric(5,2);not null"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
