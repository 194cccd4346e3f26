package controllers

import (
	"net/http"
	"strings"

	"github.com/sonigems/saraf-backend/api/responses"
	"github.com/sonigems/saraf-backend/api/validators"
	"github.com/sonigems/saraf-backend/internal/billing"
	"github.com/sonigems/saraf-backend/pkg/enums"
	pkgerrors "github.com/sonigems/saraf-backend/pkg/errors"
	"github.com/sonigems/saraf-backend/pkg/logger"
)

// GetBill returns one bill by id.
func GetBill(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}

		id, err := parseIDParam(r, "billId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// ListBills pages bills, optionally filtered by bill type.
func ListBills(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := billing.ListParams{
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			Limit:  limit,
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("billType")); raw != "" {
			billType, err := enums.ParseBillType(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid billType"))
				return
			}
			params.BillType = &billType
		}

		resp, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// UpdateBill patches a bill's customer and transport metadata. Amounts are
// recomputed when the tax fields change.
func UpdateBill(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}

		id, err := parseIDParam(r, "billId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body billing.UpdateBillInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.UpdateMetadata(r.Context(), id, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}
