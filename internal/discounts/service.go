package discounts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stringmaster/stringmaster-backend/pkg/db/models"
	"github.com/stringmaster/stringmaster-backend/pkg/enums"
	pkgerrors "github.com/stringmaster/stringmaster-backend/pkg/errors"
)

// Service exposes discount rule management and price resolution.
type Service interface {
	UpsertRule(ctx context.Context, input UpsertRuleInput) (*RuleDTO, error)
	DeleteRule(ctx context.Context, scope enums.DiscountScope, scopeKey string) error
	DeleteRuleByID(ctx context.Context, id uuid.UUID) error
	ClearAll(ctx context.Context) (int64, error)
	ListRules(ctx context.Context) ([]RuleDTO, error)
	Resolve(ctx context.Context, instrument *models.Instrument) (*Applied, error)
}

// UpsertRuleInput holds the validated payload for rule creation/replacement.
type UpsertRuleInput struct {
	Scope    enums.DiscountScope
	ScopeKey string
	Percent  decimal.Decimal
}

// RuleDTO represents a discount rule returned to clients.
type RuleDTO struct {
	ID        uuid.UUID       `json:"id"`
	Scope     string          `json:"scope"`
	ScopeKey  string          `json:"scope_key"`
	Percent   decimal.Decimal `json:"percent"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Applied describes the single winning rule for an instrument. Rules never
// stack; one winner is chosen by scope precedence.
type Applied struct {
	RuleID  uuid.UUID
	Scope   enums.DiscountScope
	Percent decimal.Decimal
}

type service struct {
	repo *Repository
}

// NewService constructs a discount service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("discount repository required")
	}
	return &service{repo: repo}, nil
}

// UpsertRule validates and stores the rule, replacing any prior percent for
// the same (scope, scope_key).
func (s *service) UpsertRule(ctx context.Context, input UpsertRuleInput) (*RuleDTO, error) {
	if !input.Scope.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid discount scope %q", input.Scope))
	}
	scopeKey, err := normalizeScopeKey(input.Scope, input.ScopeKey)
	if err != nil {
		return nil, err
	}
	if err := validatePercent(input.Percent); err != nil {
		return nil, err
	}

	rule := &models.DiscountRule{
		Scope:    input.Scope,
		ScopeKey: scopeKey,
		Percent:  input.Percent,
	}
	stored, err := s.repo.Upsert(ctx, rule)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: upsert discount rule")
	}
	return newRuleDTO(stored), nil
}

// DeleteRule removes the rule for the pair, erroring when absent.
func (s *service) DeleteRule(ctx context.Context, scope enums.DiscountScope, scopeKey string) error {
	if !scope.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid discount scope %q", scope))
	}
	key, err := normalizeScopeKey(scope, scopeKey)
	if err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, scope, key)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete discount rule")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "discount rule not found")
	}
	return nil
}

// DeleteRuleByID removes the rule with the given id, erroring when absent.
func (s *service) DeleteRuleByID(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "rule id is required")
	}

	deleted, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete discount rule")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "discount rule not found")
	}
	return nil
}

// ClearAll removes every configured rule.
func (s *service) ClearAll(ctx context.Context) (int64, error) {
	removed, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: clear discount rules")
	}
	return removed, nil
}

// ListRules returns all configured rules.
func (s *service) ListRules(ctx context.Context) ([]RuleDTO, error) {
	rules, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list discount rules")
	}
	out := make([]RuleDTO, 0, len(rules))
	for i := range rules {
		out = append(out, *newRuleDTO(&rules[i]))
	}
	return out, nil
}

// Resolve picks the winning rule for an instrument. Item rules beat brand
// rules, brand rules beat type rules. Returns nil when no rule applies.
func (s *service) Resolve(ctx context.Context, instrument *models.Instrument) (*Applied, error) {
	if instrument == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "instrument is required")
	}

	candidates, err := s.repo.FindCandidates(ctx, instrument)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find discount candidates")
	}
	return pickWinner(candidates), nil
}

func pickWinner(candidates []models.DiscountRule) *Applied {
	var winner *models.DiscountRule
	for i := range candidates {
		rule := &candidates[i]
		if winner == nil || scopeRank(rule.Scope) < scopeRank(winner.Scope) {
			winner = rule
		}
	}
	if winner == nil {
		return nil
	}
	return &Applied{
		RuleID:  winner.ID,
		Scope:   winner.Scope,
		Percent: winner.Percent,
	}
}

func scopeRank(scope enums.DiscountScope) int {
	switch scope {
	case enums.DiscountScopeItem:
		return 0
	case enums.DiscountScopeBrand:
		return 1
	default:
		return 2
	}
}

func normalizeScopeKey(scope enums.DiscountScope, scopeKey string) (string, error) {
	key := strings.TrimSpace(scopeKey)
	if key == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "scope_key is required")
	}

	switch scope {
	case enums.DiscountScopeItem:
		id, err := uuid.Parse(key)
		if err != nil {
			return "", pkgerrors.New(pkgerrors.CodeValidation, "scope_key must be an instrument id for item rules")
		}
		return id.String(), nil
	case enums.DiscountScopeType:
		parsed, err := enums.ParseInstrumentType(strings.ToLower(key))
		if err != nil {
			return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("scope_key %q is not an instrument type", key))
		}
		return parsed.String(), nil
	default:
		// Brand keys are stored lowercased so "Fender" and "fender" name the
		// same rule, matching the case-insensitive catalog brand filter.
		return strings.ToLower(key), nil
	}
}

func validatePercent(percent decimal.Decimal) error {
	if percent.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "percent cannot be negative")
	}
	if percent.GreaterThan(oneHundred) {
		return pkgerrors.New(pkgerrors.CodeValidation, "percent cannot exceed 100")
	}
	return nil
}

func newRuleDTO(rule *models.DiscountRule) *RuleDTO {
	return &RuleDTO{
		ID:        rule.ID,
		Scope:     rule.Scope.String(),
		ScopeKey:  rule.ScopeKey,
		Percent:   rule.Percent,
		CreatedAt: rule.CreatedAt,
		UpdatedAt: rule.UpdatedAt,
	}
}
