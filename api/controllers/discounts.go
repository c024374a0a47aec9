package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/stringmaster/stringmaster-backend/api/responses"
	"github.com/stringmaster/stringmaster-backend/api/validators"
	"github.com/stringmaster/stringmaster-backend/internal/discounts"
	"github.com/stringmaster/stringmaster-backend/pkg/enums"
	pkgerrors "github.com/stringmaster/stringmaster-backend/pkg/errors"
	"github.com/stringmaster/stringmaster-backend/pkg/logger"
)

type upsertDiscountRequest struct {
	Scope    string          `json:"scope" validate:"required"`
	ScopeKey string          `json:"scope_key" validate:"required"`
	Percent  decimal.Decimal `json:"percent"`
}

// AdminUpsertDiscount creates or replaces the rule for its scope pair.
func AdminUpsertDiscount(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount service unavailable"))
			return
		}

		var body upsertDiscountRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		scope, err := enums.ParseDiscountScope(body.Scope)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid discount scope"))
			return
		}

		rule, err := svc.UpsertRule(r.Context(), discounts.UpsertRuleInput{
			Scope:    scope,
			ScopeKey: body.ScopeKey,
			Percent:  body.Percent,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rule)
	}
}

// AdminListDiscounts returns every configured rule.
func AdminListDiscounts(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount service unavailable"))
			return
		}

		rules, err := svc.ListRules(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"rules": rules})
	}
}

// AdminClearDiscounts removes every configured rule.
func AdminClearDiscounts(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount service unavailable"))
			return
		}

		removed, err := svc.ClearAll(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"removed": removed})
	}
}

// AdminDeleteDiscount removes one rule by id.
func AdminDeleteDiscount(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "ruleId"), "rule id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteRuleByID(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
