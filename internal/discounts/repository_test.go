package discounts

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/stringmaster/stringmaster-backend/pkg/db/models"
	"github.com/stringmaster/stringmaster-backend/pkg/enums"
)

func mustUpsertTestRule(t *testing.T, repo *Repository, scope enums.DiscountScope, key, percent string) *models.DiscountRule {
	t.Helper()
	value, err := decimal.NewFromString(percent)
	if err != nil {
		t.Fatalf("parse percent: %v", err)
	}
	rule, err := repo.Upsert(context.Background(), &models.DiscountRule{
		Scope:    scope,
		ScopeKey: key,
		Percent:  value,
	})
	if err != nil {
		t.Fatalf("upsert rule: %v", err)
	}
	return rule
}

func beginTestTx(t *testing.T) *gorm.DB {
	t.Helper()
	conn := openTestDB(t)
	tx := conn.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		_ = tx.Rollback()
	})
	return tx
}

func TestRepositoryUpsertReplacesPercent(t *testing.T) {
	tx := beginTestTx(t)
	repo := NewRepository(tx)

	first := mustUpsertTestRule(t, repo, enums.DiscountScopeBrand, "Fender", "10")
	second := mustUpsertTestRule(t, repo, enums.DiscountScopeBrand, "Fender", "25")

	if first.ID != second.ID {
		t.Fatalf("expected upsert to keep one row, got %s and %s", first.ID, second.ID)
	}
	if !second.Percent.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("expected percent 25, got %s", second.Percent)
	}
}

func TestRepositoryDeleteByID(t *testing.T) {
	tx := beginTestTx(t)
	repo := NewRepository(tx)

	rule := mustUpsertTestRule(t, repo, enums.DiscountScopeType, "electric", "15")

	deleted, err := repo.DeleteByID(context.Background(), rule.ID)
	if err != nil {
		t.Fatalf("delete by id: %v", err)
	}
	if !deleted {
		t.Fatal("expected rule to be deleted")
	}

	deleted, err = repo.DeleteByID(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("delete unknown id: %v", err)
	}
	if deleted {
		t.Fatal("expected unknown id to delete nothing")
	}
}

func TestRepositoryDeleteAll(t *testing.T) {
	tx := beginTestTx(t)
	repo := NewRepository(tx)
	ctx := context.Background()

	mustUpsertTestRule(t, repo, enums.DiscountScopeBrand, "Fender", "10")
	mustUpsertTestRule(t, repo, enums.DiscountScopeType, "acoustic", "5")

	removed, err := repo.DeleteAll(ctx)
	if err != nil {
		t.Fatalf("delete all: %v", err)
	}
	if removed < 2 {
		t.Fatalf("expected at least 2 removed rules, got %d", removed)
	}

	rules, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list after clear: %v", err)
	}
	if len(rules) != 0 {
		t.Fatalf("expected empty rule set, got %d rows", len(rules))
	}
}

func TestRepositoryFindCandidates(t *testing.T) {
	tx := beginTestTx(t)
	repo := NewRepository(tx)
	ctx := context.Background()

	instrument := &models.Instrument{
		ID:    uuid.New(),
		Type:  enums.InstrumentTypeElectric,
		Brand: "Fender",
		Model: "Player Stratocaster",
	}

	// Brand rules arrive lowercased from the service; the candidate query
	// must still match the instrument's mixed-case brand.
	item := mustUpsertTestRule(t, repo, enums.DiscountScopeItem, instrument.ID.String(), "5")
	brand := mustUpsertTestRule(t, repo, enums.DiscountScopeBrand, "fender", "10")
	mustUpsertTestRule(t, repo, enums.DiscountScopeBrand, "gibson", "50")
	mustUpsertTestRule(t, repo, enums.DiscountScopeType, "acoustic", "50")

	candidates, err := repo.FindCandidates(ctx, instrument)
	if err != nil {
		t.Fatalf("find candidates: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	found := map[uuid.UUID]bool{}
	for _, rule := range candidates {
		found[rule.ID] = true
	}
	if !found[item.ID] || !found[brand.ID] {
		t.Fatalf("expected item and brand rules, got %+v", candidates)
	}
}
