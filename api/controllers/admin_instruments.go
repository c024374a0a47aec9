package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stringmaster/stringmaster-backend/api/responses"
	"github.com/stringmaster/stringmaster-backend/api/validators"
	"github.com/stringmaster/stringmaster-backend/internal/catalog"
	"github.com/stringmaster/stringmaster-backend/pkg/enums"
	pkgerrors "github.com/stringmaster/stringmaster-backend/pkg/errors"
	"github.com/stringmaster/stringmaster-backend/pkg/logger"
	"github.com/stringmaster/stringmaster-backend/pkg/types"
)

type createInstrumentRequest struct {
	Type       string           `json:"type" validate:"required"`
	Brand      string           `json:"brand" validate:"required"`
	Model      string           `json:"model" validate:"required"`
	PriceCents int              `json:"price_cents" validate:"required,gt=0"`
	Stock      int              `json:"stock" validate:"gte=0"`
	Attributes types.Attributes `json:"attributes"`
}

func (req createInstrumentRequest) toInput() (*catalog.CreateInstrumentInput, error) {
	instrumentType, err := enums.ParseInstrumentType(req.Type)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid instrument type")
	}
	return &catalog.CreateInstrumentInput{
		Type:       instrumentType,
		Brand:      req.Brand,
		Model:      req.Model,
		PriceCents: req.PriceCents,
		Stock:      req.Stock,
		Attributes: req.Attributes,
	}, nil
}

type updateInstrumentRequest struct {
	Type       *string           `json:"type"`
	Brand      *string           `json:"brand" validate:"omitempty,min=1"`
	Model      *string           `json:"model" validate:"omitempty,min=1"`
	PriceCents *int              `json:"price_cents" validate:"omitempty,gt=0"`
	Attributes *types.Attributes `json:"attributes"`
	IsActive   *bool             `json:"is_active"`
}

func (req updateInstrumentRequest) toInput() (*catalog.UpdateInstrumentInput, error) {
	input := catalog.UpdateInstrumentInput{
		Brand:      req.Brand,
		Model:      req.Model,
		PriceCents: req.PriceCents,
		Attributes: req.Attributes,
		IsActive:   req.IsActive,
	}
	if req.Type != nil {
		instrumentType, err := enums.ParseInstrumentType(*req.Type)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid instrument type")
		}
		input.Type = &instrumentType
	}
	return &input, nil
}

type restockRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

// AdminCreateInstrument adds a listing to the catalog.
func AdminCreateInstrument(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var body createInstrumentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		instrument, err := svc.CreateInstrument(r.Context(), *input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, instrument)
	}
}

// AdminUpdateInstrument mutates listing fields in place.
func AdminUpdateInstrument(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "instrumentId"), "instrument id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateInstrumentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		instrument, err := svc.UpdateInstrument(r.Context(), id, *input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, instrument)
	}
}

// AdminDeleteInstrument retires a listing from the catalog.
func AdminDeleteInstrument(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "instrumentId"), "instrument id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteInstrument(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// AdminRestockInstrument adds units to a listing's stock.
func AdminRestockInstrument(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "instrumentId"), "instrument id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body restockRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		instrument, err := svc.Restock(r.Context(), id, body.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, instrument)
	}
}

// AdminCatalogStats serves inventory totals for the dashboard.
func AdminCatalogStats(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		stats, err := svc.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}
