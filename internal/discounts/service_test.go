package discounts

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stringmaster/stringmaster-backend/pkg/db/models"
	"github.com/stringmaster/stringmaster-backend/pkg/enums"
	pkgerrors "github.com/stringmaster/stringmaster-backend/pkg/errors"
)

func TestPickWinnerPrecedence(t *testing.T) {
	itemRule := models.DiscountRule{ID: uuid.New(), Scope: enums.DiscountScopeItem, Percent: decimal.NewFromInt(5)}
	brandRule := models.DiscountRule{ID: uuid.New(), Scope: enums.DiscountScopeBrand, Percent: decimal.NewFromInt(10)}
	typeRule := models.DiscountRule{ID: uuid.New(), Scope: enums.DiscountScopeType, Percent: decimal.NewFromInt(20)}

	t.Run("itemBeatsBrandAndType", func(t *testing.T) {
		// the item rule wins even though its percent is the smallest
		applied := pickWinner([]models.DiscountRule{typeRule, brandRule, itemRule})
		if applied == nil || applied.RuleID != itemRule.ID {
			t.Fatalf("expected item rule to win, got %+v", applied)
		}
	})

	t.Run("brandBeatsType", func(t *testing.T) {
		applied := pickWinner([]models.DiscountRule{typeRule, brandRule})
		if applied == nil || applied.RuleID != brandRule.ID {
			t.Fatalf("expected brand rule to win, got %+v", applied)
		}
	})

	t.Run("typeAlone", func(t *testing.T) {
		applied := pickWinner([]models.DiscountRule{typeRule})
		if applied == nil || applied.RuleID != typeRule.ID {
			t.Fatalf("expected type rule to win, got %+v", applied)
		}
	})

	t.Run("noRules", func(t *testing.T) {
		if applied := pickWinner(nil); applied != nil {
			t.Fatalf("expected nil, got %+v", applied)
		}
	})
}

func TestNormalizeScopeKey(t *testing.T) {
	id := uuid.New()

	key, err := normalizeScopeKey(enums.DiscountScopeItem, id.String())
	if err != nil {
		t.Fatalf("item scope key: %v", err)
	}
	if key != id.String() {
		t.Fatalf("expected %s, got %s", id, key)
	}

	if _, err := normalizeScopeKey(enums.DiscountScopeItem, "not-a-uuid"); pkgerrors.As(err) == nil {
		t.Fatal("expected validation error for malformed item key")
	}

	key, err = normalizeScopeKey(enums.DiscountScopeType, "Electric")
	if err != nil {
		t.Fatalf("type scope key: %v", err)
	}
	if key != "electric" {
		t.Fatalf("expected canonical type, got %s", key)
	}

	if _, err := normalizeScopeKey(enums.DiscountScopeType, "banjo"); pkgerrors.As(err) == nil {
		t.Fatal("expected validation error for unknown type")
	}

	if _, err := normalizeScopeKey(enums.DiscountScopeBrand, "   "); pkgerrors.As(err) == nil {
		t.Fatal("expected validation error for blank key")
	}

	// Brand keys are stored lowercased so rule lookup matches the
	// case-insensitive catalog brand filter.
	key, err = normalizeScopeKey(enums.DiscountScopeBrand, "  Fender ")
	if err != nil {
		t.Fatalf("brand scope key: %v", err)
	}
	if key != "fender" {
		t.Fatalf("expected lowercased brand key, got %q", key)
	}
}

func TestValidatePercent(t *testing.T) {
	if err := validatePercent(decimal.NewFromInt(50)); err != nil {
		t.Fatalf("expected 50 to be valid: %v", err)
	}
	if err := validatePercent(decimal.NewFromInt(-1)); pkgerrors.As(err) == nil {
		t.Fatal("expected validation error for negative percent")
	}
	if err := validatePercent(decimal.NewFromInt(101)); pkgerrors.As(err) == nil {
		t.Fatal("expected validation error for percent over 100")
	}
}
