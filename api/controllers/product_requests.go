package controllers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/sonigems/saraf-backend/api/middleware"
	"github.com/sonigems/saraf-backend/api/responses"
	"github.com/sonigems/saraf-backend/api/validators"
	"github.com/sonigems/saraf-backend/internal/media"
	"github.com/sonigems/saraf-backend/internal/requests"
	"github.com/sonigems/saraf-backend/pkg/enums"
	pkgerrors "github.com/sonigems/saraf-backend/pkg/errors"
	"github.com/sonigems/saraf-backend/pkg/logger"
)

// CreateProductRequest opens a pending product change request. The payload is
// either plain JSON or a multipart form with a "payload" JSON part and an
// optional "image" file part.
func CreateProductRequest(svc requests.Service, maxUploadBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "requests service unavailable"))
			return
		}

		actorID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body requests.CreateProductRequestInput
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			if err := decodeMultipartRequest(r, maxUploadBytes, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		} else if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.CreateProductRequest(r.Context(), actorID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, resp)
	}
}

// GetProductRequest returns one product request by id.
func GetProductRequest(svc requests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "requests service unavailable"))
			return
		}

		id, err := parseIDParam(r, "requestId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.GetProductRequest(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// ListProductRequests pages product requests, optionally filtered by status
// or requester.
func ListProductRequests(svc requests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "requests service unavailable"))
			return
		}

		params, err := requestListParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.ListProductRequests(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// DecideProductRequest records the admin verdict and, on approval, applies
// the proposed change to the catalog.
func DecideProductRequest(svc requests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "requests service unavailable"))
			return
		}

		adminID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := parseIDParam(r, "requestId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body requests.Decision
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.DecideProductRequest(r.Context(), id, adminID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

func actorFromContext(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return id, nil
}

func requestListParams(r *http.Request) (requests.ListParams, error) {
	limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 200)
	if err != nil {
		return requests.ListParams{}, err
	}

	params := requests.ListParams{
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		Limit:  limit,
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseRequestStatus(raw)
		if err != nil {
			return requests.ListParams{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		params.Status = &status
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("requestedBy")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return requests.ListParams{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid requestedBy")
		}
		params.RequestedBy = &id
	}

	return params, nil
}

func decodeMultipartRequest(r *http.Request, maxUploadBytes int64, dest *requests.CreateProductRequestInput) error {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}

	payload := r.FormValue("payload")
	if strings.TrimSpace(payload) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "payload part is required")
	}
	if err := json.Unmarshal([]byte(payload), dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request payload").WithDetails(map[string]any{"error": err.Error()})
	}
	if err := validators.ValidateStruct(dest); err != nil {
		return err
	}

	file, header, err := r.FormFile("image")
	if err == http.ErrMissingFile {
		return nil
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid image part")
	}

	dest.Image = &media.UploadInput{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		SizeBytes:   header.Size,
		Body:        file,
	}
	return nil
}
