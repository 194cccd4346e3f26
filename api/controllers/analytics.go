package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/sonigems/saraf-backend/api/responses"
	"github.com/sonigems/saraf-backend/internal/analytics"
	"github.com/sonigems/saraf-backend/pkg/enums"
	pkgerrors "github.com/sonigems/saraf-backend/pkg/errors"
	"github.com/sonigems/saraf-backend/pkg/logger"
)

// SalesAnalytics resolves the reporting window from the query string and
// returns KPIs, the sales trend and leaderboards. Either timeframe or an
// explicit start/end pair must be supplied.
func SalesAnalytics(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}

		var params analytics.Params

		if raw := strings.TrimSpace(r.URL.Query().Get("timeframe")); raw != "" {
			tf := analytics.Timeframe(raw)
			params.Timeframe = &tf
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("start")); raw != "" {
			start, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid start"))
				return
			}
			params.Start = &start
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("end")); raw != "" {
			end, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid end"))
				return
			}
			params.End = &end
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("billType")); raw != "" {
			billType, err := enums.ParseBillType(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid billType"))
				return
			}
			params.BillType = &billType
		}

		resp, err := svc.SalesAnalytics(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}
