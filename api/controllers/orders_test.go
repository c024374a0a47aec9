package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/stringmaster/stringmaster-backend/api/middleware"
	"github.com/stringmaster/stringmaster-backend/internal/orders"
	pkgerrors "github.com/stringmaster/stringmaster-backend/pkg/errors"
	"github.com/stringmaster/stringmaster-backend/pkg/logger"
)

type testOrdersService struct {
	purchaseFn func(ctx context.Context, input orders.PurchaseInput) (*orders.OrderDTO, error)
	listFn     func(ctx context.Context, customerID uuid.UUID, limit int, cursor string) (*orders.OrderList, error)
}

func (s *testOrdersService) Purchase(ctx context.Context, input orders.PurchaseInput) (*orders.OrderDTO, error) {
	if s.purchaseFn != nil {
		return s.purchaseFn(ctx, input)
	}
	return &orders.OrderDTO{}, nil
}

func (s *testOrdersService) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit int, cursor string) (*orders.OrderList, error) {
	if s.listFn != nil {
		return s.listFn(ctx, customerID, limit, cursor)
	}
	return &orders.OrderList{}, nil
}

func testControllerLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func addRouteParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestPurchaseSuccess(t *testing.T) {
	customerID := uuid.New()
	instrumentID := uuid.New()
	var got orders.PurchaseInput
	svc := &testOrdersService{
		purchaseFn: func(ctx context.Context, input orders.PurchaseInput) (*orders.OrderDTO, error) {
			got = input
			return &orders.OrderDTO{ID: uuid.New(), Quantity: input.Quantity}, nil
		},
	}

	body := `{"instrument_id":"` + instrumentID.String() + `","quantity":2}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/purchase", strings.NewReader(body))
	req = req.WithContext(middleware.WithUserID(req.Context(), customerID.String()))

	resp := httptest.NewRecorder()
	Purchase(svc, testControllerLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if got.CustomerID != customerID || got.InstrumentID != instrumentID || got.Quantity != 2 {
		t.Fatalf("unexpected input %+v", got)
	}
}

func TestPurchaseRequiresAuthenticatedCaller(t *testing.T) {
	body := `{"instrument_id":"` + uuid.NewString() + `","quantity":1}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/purchase", strings.NewReader(body))

	resp := httptest.NewRecorder()
	Purchase(&testOrdersService{}, testControllerLogger())(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestPurchaseRejectsInvalidBody(t *testing.T) {
	cases := map[string]string{
		"zeroQuantity": `{"instrument_id":"` + uuid.NewString() + `","quantity":0}`,
		"badUUID":      `{"instrument_id":"not-a-uuid","quantity":1}`,
		"unknownField": `{"instrument_id":"` + uuid.NewString() + `","quantity":1,"price_cents":1}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/purchase", strings.NewReader(body))
			req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))

			resp := httptest.NewRecorder()
			Purchase(&testOrdersService{}, testControllerLogger())(resp, req)

			if resp.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 got %d", resp.Code)
			}
		})
	}
}

func TestPurchaseSurfacesInsufficientStock(t *testing.T) {
	svc := &testOrdersService{
		purchaseFn: func(ctx context.Context, input orders.PurchaseInput) (*orders.OrderDTO, error) {
			return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock")
		},
	}

	body := `{"instrument_id":"` + uuid.NewString() + `","quantity":5}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/purchase", strings.NewReader(body))
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))

	resp := httptest.NewRecorder()
	Purchase(svc, testControllerLogger())(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeInsufficientStock) {
		t.Fatalf("unexpected code %s", envelope.Error.Code)
	}
}

func TestListOrdersPassesPagination(t *testing.T) {
	customerID := uuid.New()
	var gotLimit int
	var gotCursor string
	svc := &testOrdersService{
		listFn: func(ctx context.Context, cid uuid.UUID, limit int, cursor string) (*orders.OrderList, error) {
			if cid != customerID {
				t.Fatalf("unexpected customer %s", cid)
			}
			gotLimit = limit
			gotCursor = cursor
			return &orders.OrderList{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders?limit=10&cursor=abc", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), customerID.String()))

	resp := httptest.NewRecorder()
	ListOrders(svc, testControllerLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if gotLimit != 10 || gotCursor != "abc" {
		t.Fatalf("unexpected pagination limit=%d cursor=%q", gotLimit, gotCursor)
	}
}
