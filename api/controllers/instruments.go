package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/stringmaster/stringmaster-backend/api/responses"
	"github.com/stringmaster/stringmaster-backend/api/validators"
	"github.com/stringmaster/stringmaster-backend/internal/catalog"
	"github.com/stringmaster/stringmaster-backend/pkg/enums"
	pkgerrors "github.com/stringmaster/stringmaster-backend/pkg/errors"
	"github.com/stringmaster/stringmaster-backend/pkg/logger"
)

const maxPriceFilterCents = 100_000_000

// ListInstruments serves the public catalog with optional filters.
func ListInstruments(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		filters, err := parseListFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		instruments, err := svc.ListInstruments(r.Context(), *filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"instruments": instruments})
	}
}

// GetInstrument serves a single active listing.
func GetInstrument(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
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

		instrument, err := svc.GetInstrument(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, instrument)
	}
}

func parseListFilters(r *http.Request) (*catalog.ListFilters, error) {
	var filters catalog.ListFilters

	if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
		parsed, err := enums.ParseInstrumentType(raw)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid instrument type")
		}
		filters.Type = &parsed
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("brand")); raw != "" {
		filters.Brand = &raw
	}

	if r.URL.Query().Get("minPrice") != "" {
		value, err := validators.ParseQueryInt(r, "minPrice", 0, 0, maxPriceFilterCents)
		if err != nil {
			return nil, err
		}
		filters.PriceMinCents = &value
	}

	if r.URL.Query().Get("maxPrice") != "" {
		value, err := validators.ParseQueryInt(r, "maxPrice", 0, 0, maxPriceFilterCents)
		if err != nil {
			return nil, err
		}
		filters.PriceMaxCents = &value
	}

	inStock, err := validators.ParseQueryBool(r, "inStock")
	if err != nil {
		return nil, err
	}
	filters.InStock = inStock

	if filters.PriceMinCents != nil && filters.PriceMaxCents != nil && *filters.PriceMinCents > *filters.PriceMaxCents {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "minPrice cannot exceed maxPrice")
	}
	return &filters, nil
}
