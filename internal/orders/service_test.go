package orders

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/stringmaster/stringmaster-backend/internal/discounts"
	"github.com/stringmaster/stringmaster-backend/pkg/db/models"
	"github.com/stringmaster/stringmaster-backend/pkg/enums"
	pkgerrors "github.com/stringmaster/stringmaster-backend/pkg/errors"
	"github.com/stringmaster/stringmaster-backend/pkg/logger"
	"github.com/stringmaster/stringmaster-backend/pkg/pagination"
)

type fakeTxRunner struct {
	rolledBack bool
}

func (f *fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if err := fn(nil); err != nil {
		f.rolledBack = true
		return err
	}
	return nil
}

type fakeOrdersRepo struct {
	created   []*models.Order
	createErr error
	listFn    func(ctx context.Context, params listOrdersParams) ([]models.Order, *pagination.Cursor, error)
}

func (f *fakeOrdersRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeOrdersRepo) Create(_ context.Context, order *models.Order) (*models.Order, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	order.ID = uuid.New()
	order.CreatedAt = time.Now().UTC()
	f.created = append(f.created, order)
	return order, nil
}

func (f *fakeOrdersRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOrdersRepo) ListByCustomer(ctx context.Context, params listOrdersParams) ([]models.Order, *pagination.Cursor, error) {
	if f.listFn != nil {
		return f.listFn(ctx, params)
	}
	return nil, nil, nil
}

type fakeInstrumentLoader struct {
	instrument *models.Instrument
	err        error
}

func (f *fakeInstrumentLoader) FindByID(_ context.Context, id uuid.UUID) (*models.Instrument, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.instrument, nil
}

type fakeReserver struct {
	reserved bool
	err      error
	calls    int
	ops      *[]string
}

func (f *fakeReserver) Reserve(_ context.Context, _ *gorm.DB, _ uuid.UUID, _ int) (bool, error) {
	f.calls++
	if f.ops != nil {
		*f.ops = append(*f.ops, "reserve")
	}
	return f.reserved, f.err
}

type fakeResolver struct {
	applied *discounts.Applied
	err     error
	calls   int
	ops     *[]string
}

func (f *fakeResolver) Resolve(_ context.Context, _ *models.Instrument) (*discounts.Applied, error) {
	f.calls++
	if f.ops != nil {
		*f.ops = append(*f.ops, "resolve")
	}
	return f.applied, f.err
}

type fakeNoteWriter struct {
	created []*models.Notification
}

func (f *fakeNoteWriter) Write(_ context.Context, _ *gorm.DB, notification *models.Notification) error {
	notification.ID = uuid.New()
	f.created = append(f.created, notification)
	return nil
}

type fakeHub struct {
	published []models.Notification
}

func (f *fakeHub) Publish(_ context.Context, notification models.Notification) {
	f.published = append(f.published, notification)
}

func testStratocaster() *models.Instrument {
	return &models.Instrument{
		ID:         uuid.New(),
		Type:       enums.InstrumentTypeElectric,
		Brand:      "Fender",
		Model:      "Player Stratocaster",
		PriceCents: 84999,
		Stock:      5,
		IsActive:   true,
	}
}

type purchaseFixture struct {
	tx       *fakeTxRunner
	repo     *fakeOrdersRepo
	loader   *fakeInstrumentLoader
	reserver *fakeReserver
	resolver *fakeResolver
	notes    *fakeNoteWriter
	hub      *fakeHub
	svc      Service
}

func newPurchaseFixture(t *testing.T, instrument *models.Instrument) *purchaseFixture {
	t.Helper()
	f := &purchaseFixture{
		tx:       &fakeTxRunner{},
		repo:     &fakeOrdersRepo{},
		loader:   &fakeInstrumentLoader{instrument: instrument},
		reserver: &fakeReserver{reserved: true},
		resolver: &fakeResolver{},
		notes:    &fakeNoteWriter{},
		hub:      &fakeHub{},
	}
	if instrument == nil {
		f.loader.err = gorm.ErrRecordNotFound
	}
	svc, err := NewService(ServiceParams{
		Tx:          f.tx,
		Repo:        f.repo,
		Instruments: f.loader,
		Reserver:    f.reserver,
		Discounts:   f.resolver,
		NoteWriter:  f.notes,
		Hub:         f.hub,
		Logger:      logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	f.svc = svc
	return f
}

func TestPurchaseHappyPath(t *testing.T) {
	instrument := testStratocaster()
	f := newPurchaseFixture(t, instrument)
	f.resolver.applied = &discounts.Applied{
		RuleID:  uuid.New(),
		Scope:   enums.DiscountScopeBrand,
		Percent: decimal.NewFromInt(10),
	}

	customerID := uuid.New()
	dto, err := f.svc.Purchase(context.Background(), PurchaseInput{
		CustomerID:   customerID,
		InstrumentID: instrument.ID,
		Quantity:     2,
	})
	if err != nil {
		t.Fatalf("Purchase: %v", err)
	}

	if dto.UnitPriceCents != 76499 {
		t.Fatalf("expected discounted unit price 76499, got %d", dto.UnitPriceCents)
	}
	if dto.TotalCents != 152998 {
		t.Fatalf("expected total 152998, got %d", dto.TotalCents)
	}
	if dto.ListPriceCents != instrument.PriceCents {
		t.Fatalf("expected list price snapshot %d, got %d", instrument.PriceCents, dto.ListPriceCents)
	}
	if len(f.repo.created) != 1 {
		t.Fatalf("expected one order, got %d", len(f.repo.created))
	}
	if f.repo.created[0].CustomerID != customerID {
		t.Fatal("customer id not persisted")
	}
	if len(f.notes.created) != 1 {
		t.Fatalf("expected one notification row, got %d", len(f.notes.created))
	}
	if len(f.hub.published) != 1 {
		t.Fatalf("expected one hub publish, got %d", len(f.hub.published))
	}
	if f.hub.published[0].OrderID == nil || *f.hub.published[0].OrderID != dto.ID {
		t.Fatal("published notification missing order id")
	}
}

func TestPurchaseNoDiscount(t *testing.T) {
	instrument := testStratocaster()
	f := newPurchaseFixture(t, instrument)

	dto, err := f.svc.Purchase(context.Background(), PurchaseInput{
		CustomerID:   uuid.New(),
		InstrumentID: instrument.ID,
		Quantity:     1,
	})
	if err != nil {
		t.Fatalf("Purchase: %v", err)
	}
	if dto.UnitPriceCents != instrument.PriceCents {
		t.Fatalf("expected list price %d, got %d", instrument.PriceCents, dto.UnitPriceCents)
	}
	if !dto.DiscountPercent.IsZero() {
		t.Fatalf("expected zero discount, got %s", dto.DiscountPercent)
	}
}

func TestPurchaseInsufficientStock(t *testing.T) {
	instrument := testStratocaster()
	f := newPurchaseFixture(t, instrument)
	f.reserver.reserved = false

	_, err := f.svc.Purchase(context.Background(), PurchaseInput{
		CustomerID:   uuid.New(),
		InstrumentID: instrument.ID,
		Quantity:     10,
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	if len(f.repo.created) != 0 {
		t.Fatal("order must not be created when reservation fails")
	}
	if len(f.hub.published) != 0 {
		t.Fatal("nothing should be published when reservation fails")
	}
	if !f.tx.rolledBack {
		t.Fatal("expected transaction rollback")
	}
}

func TestPurchasePricesOnlyAfterReservation(t *testing.T) {
	instrument := testStratocaster()
	f := newPurchaseFixture(t, instrument)
	var ops []string
	f.reserver.ops = &ops
	f.resolver.ops = &ops

	if _, err := f.svc.Purchase(context.Background(), PurchaseInput{
		CustomerID:   uuid.New(),
		InstrumentID: instrument.ID,
		Quantity:     1,
	}); err != nil {
		t.Fatalf("Purchase: %v", err)
	}
	if len(ops) != 2 || ops[0] != "reserve" || ops[1] != "resolve" {
		t.Fatalf("price snapshot must follow the stock reservation, got %v", ops)
	}

	// A failed reservation must short-circuit before any pricing.
	f = newPurchaseFixture(t, instrument)
	f.reserver.reserved = false

	_, err := f.svc.Purchase(context.Background(), PurchaseInput{
		CustomerID:   uuid.New(),
		InstrumentID: instrument.ID,
		Quantity:     1,
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	if f.resolver.calls != 0 {
		t.Fatal("discount must not be resolved when reservation fails")
	}
}

func TestPurchaseUnknownInstrument(t *testing.T) {
	f := newPurchaseFixture(t, nil)

	_, err := f.svc.Purchase(context.Background(), PurchaseInput{
		CustomerID:   uuid.New(),
		InstrumentID: uuid.New(),
		Quantity:     1,
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if f.reserver.calls != 0 {
		t.Fatal("reservation must not run for unknown instruments")
	}
}

func TestPurchaseInactiveInstrument(t *testing.T) {
	instrument := testStratocaster()
	instrument.IsActive = false
	f := newPurchaseFixture(t, instrument)

	_, err := f.svc.Purchase(context.Background(), PurchaseInput{
		CustomerID:   uuid.New(),
		InstrumentID: instrument.ID,
		Quantity:     1,
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPurchaseInvalidQuantity(t *testing.T) {
	f := newPurchaseFixture(t, testStratocaster())

	for _, qty := range []int{0, -3} {
		_, err := f.svc.Purchase(context.Background(), PurchaseInput{
			CustomerID:   uuid.New(),
			InstrumentID: uuid.New(),
			Quantity:     qty,
		})
		appErr := pkgerrors.As(err)
		if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
			t.Fatalf("qty %d: expected validation error, got %v", qty, err)
		}
	}
}

func TestPurchasePersistenceFailureRollsBack(t *testing.T) {
	instrument := testStratocaster()
	f := newPurchaseFixture(t, instrument)
	f.repo.createErr = errors.New("disk full")

	_, err := f.svc.Purchase(context.Background(), PurchaseInput{
		CustomerID:   uuid.New(),
		InstrumentID: instrument.ID,
		Quantity:     1,
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if !f.tx.rolledBack {
		t.Fatal("expected transaction rollback")
	}
	if len(f.hub.published) != 0 {
		t.Fatal("nothing should be published on rollback")
	}
}

func TestListByCustomerInvalidCursor(t *testing.T) {
	f := newPurchaseFixture(t, testStratocaster())

	_, err := f.svc.ListByCustomer(context.Background(), uuid.New(), 10, "not-a-cursor")
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListByCustomerPaginates(t *testing.T) {
	f := newPurchaseFixture(t, testStratocaster())
	newest := models.Order{ID: uuid.New(), CreatedAt: time.Now()}
	f.repo.listFn = func(_ context.Context, params listOrdersParams) ([]models.Order, *pagination.Cursor, error) {
		return []models.Order{newest}, &pagination.Cursor{CreatedAt: newest.CreatedAt, ID: newest.ID}, nil
	}

	list, err := f.svc.ListByCustomer(context.Background(), uuid.New(), 1, "")
	if err != nil {
		t.Fatalf("ListByCustomer: %v", err)
	}
	if len(list.Orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(list.Orders))
	}
	if list.NextCursor == "" {
		t.Fatal("expected next cursor")
	}
}
