package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/stringmaster/stringmaster-backend/internal/catalog"
	"github.com/stringmaster/stringmaster-backend/internal/discounts"
	"github.com/stringmaster/stringmaster-backend/internal/notifications"
	"github.com/stringmaster/stringmaster-backend/pkg/db/models"
	pkgerrors "github.com/stringmaster/stringmaster-backend/pkg/errors"
	"github.com/stringmaster/stringmaster-backend/pkg/logger"
	"github.com/stringmaster/stringmaster-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type instrumentLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Instrument, error)
}

type stockReserver interface {
	Reserve(ctx context.Context, tx *gorm.DB, instrumentID uuid.UUID, qty int) (bool, error)
}

type catalogReserver struct {
	repo *catalog.Repository
}

func (c catalogReserver) Reserve(ctx context.Context, tx *gorm.DB, instrumentID uuid.UUID, qty int) (bool, error) {
	return c.repo.WithTx(tx).ReserveStock(ctx, instrumentID, qty)
}

type discountResolver interface {
	Resolve(ctx context.Context, instrument *models.Instrument) (*discounts.Applied, error)
}

type notificationPublisher interface {
	Publish(ctx context.Context, notification models.Notification)
}

type notificationWriter interface {
	Write(ctx context.Context, tx *gorm.DB, notification *models.Notification) error
}

type repoNotificationWriter struct {
	repo notifications.Repository
}

func (w repoNotificationWriter) Write(ctx context.Context, tx *gorm.DB, notification *models.Notification) error {
	return w.repo.WithTx(tx).Create(ctx, notification)
}

// Service executes purchases and serves order history.
type Service interface {
	Purchase(ctx context.Context, input PurchaseInput) (*OrderDTO, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, limit int, cursor string) (*OrderList, error)
}

// ServiceParams bundles the dependencies required to build the order service.
type ServiceParams struct {
	Tx          txRunner
	Repo        Repository
	Instruments instrumentLoader
	Catalog     *catalog.Repository
	Reserver    stockReserver
	Discounts   discountResolver
	Notes       notifications.Repository
	NoteWriter  notificationWriter
	Hub         notificationPublisher
	Logger      *logger.Logger
}

type service struct {
	tx          txRunner
	repo        Repository
	instruments instrumentLoader
	reserver    stockReserver
	discounts   discountResolver
	notes       notificationWriter
	hub         notificationPublisher
	logg        *logger.Logger
}

// NewService builds the order service.
func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Instruments == nil {
		return nil, fmt.Errorf("instrument loader required")
	}
	if params.Reserver == nil {
		if params.Catalog == nil {
			return nil, fmt.Errorf("catalog repository required")
		}
		params.Reserver = catalogReserver{repo: params.Catalog}
	}
	if params.Discounts == nil {
		return nil, fmt.Errorf("discount resolver required")
	}
	if params.NoteWriter == nil {
		if params.Notes == nil {
			return nil, fmt.Errorf("notifications repository required")
		}
		params.NoteWriter = repoNotificationWriter{repo: params.Notes}
	}
	if params.Hub == nil {
		return nil, fmt.Errorf("notification hub required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		tx:          params.Tx,
		repo:        params.Repo,
		instruments: params.Instruments,
		reserver:    params.Reserver,
		discounts:   params.Discounts,
		notes:       params.NoteWriter,
		hub:         params.Hub,
		logg:        params.Logger,
	}, nil
}

// Purchase reserves stock, snapshots pricing, and persists the order plus its
// admin notification in a single transaction. The stock decrement runs inside
// that transaction, so any later failure rolls the reservation back with it.
func (s *service) Purchase(ctx context.Context, input PurchaseInput) (*OrderDTO, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	if input.InstrumentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "instrument id is required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	instrument, err := s.instruments.FindByID(ctx, input.InstrumentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "instrument not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find instrument")
	}
	if !instrument.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "instrument not found")
	}

	var (
		order        *models.Order
		notification *models.Notification
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		reserved, err := s.reserver.Reserve(ctx, tx, instrument.ID, input.Quantity)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reserve stock")
		}
		if !reserved {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
				WithDetails(map[string]any{
					"instrument_id": instrument.ID.String(),
					"requested":     input.Quantity,
				})
		}

		// The price snapshot is taken only once the units are reserved. A
		// discount change cannot retouch a decremented sale, and a failed
		// reservation never prices anything.
		applied, err := s.discounts.Resolve(ctx, instrument)
		if err != nil {
			return err
		}
		percent := decimal.Zero
		if applied != nil {
			percent = applied.Percent
		}
		unitPrice := discounts.DiscountedUnitPriceCents(instrument.PriceCents, percent)

		order, err = s.repo.WithTx(tx).Create(ctx, &models.Order{
			CustomerID:      input.CustomerID,
			InstrumentID:    instrument.ID,
			Brand:           instrument.Brand,
			Model:           instrument.Model,
			Quantity:        input.Quantity,
			ListPriceCents:  instrument.PriceCents,
			UnitPriceCents:  unitPrice,
			DiscountPercent: percent,
			TotalCents:      discounts.TotalCents(unitPrice, input.Quantity),
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: create order")
		}

		notification = notifications.NewPurchaseNotification(order)
		if err := s.notes.Write(ctx, tx, notification); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: create notification")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Fan-out happens after commit. A full observer buffer drops the live
	// event only; the stored row replays on the next subscribe.
	s.hub.Publish(ctx, *notification)

	logCtx := s.logg.WithOrderID(s.logg.WithInstrumentID(ctx, instrument.ID.String()), order.ID.String())
	s.logg.Info(logCtx, "order placed")

	return NewOrderDTO(order), nil
}

func (s *service) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit int, cursor string) (*OrderList, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}

	params := listOrdersParams{CustomerID: customerID, Limit: limit}
	if cursor != "" {
		parsed, err := pagination.ParseCursor(cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		params.Cursor = parsed
	}

	rows, next, err := s.repo.ListByCustomer(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list orders")
	}

	list := &OrderList{Orders: make([]OrderDTO, 0, len(rows))}
	for i := range rows {
		list.Orders = append(list.Orders, *NewOrderDTO(&rows[i]))
	}
	if next != nil {
		list.NextCursor = pagination.EncodeCursor(*next)
	}
	return list, nil
}
