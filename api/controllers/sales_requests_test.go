package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/sonigems/saraf-backend/api/middleware"
	"github.com/sonigems/saraf-backend/internal/requests"
	"github.com/sonigems/saraf-backend/pkg/enums"
	pkgerrors "github.com/sonigems/saraf-backend/pkg/errors"
)

type testRequestsService struct {
	createSalesFn func(ctx context.Context, userID uuid.UUID, input requests.CreateSalesRequestInput) (*requests.SalesRequestDTO, error)
	decideSalesFn func(ctx context.Context, requestID, adminID uuid.UUID, decision requests.SalesDecision) (*requests.SalesRequestDTO, error)
}

func (s *testRequestsService) CreateProductRequest(ctx context.Context, userID uuid.UUID, input requests.CreateProductRequestInput) (*requests.ProductRequestDTO, error) {
	return nil, nil
}

func (s *testRequestsService) GetProductRequest(ctx context.Context, id uuid.UUID) (*requests.ProductRequestDTO, error) {
	return nil, nil
}

func (s *testRequestsService) ListProductRequests(ctx context.Context, params requests.ListParams) (*requests.ProductRequestsPage, error) {
	return nil, nil
}

func (s *testRequestsService) DecideProductRequest(ctx context.Context, requestID, adminID uuid.UUID, decision requests.Decision) (*requests.ProductRequestDTO, error) {
	return nil, nil
}

func (s *testRequestsService) CreateSalesRequest(ctx context.Context, userID uuid.UUID, input requests.CreateSalesRequestInput) (*requests.SalesRequestDTO, error) {
	if s.createSalesFn != nil {
		return s.createSalesFn(ctx, userID, input)
	}
	return nil, nil
}

func (s *testRequestsService) GetSalesRequest(ctx context.Context, id uuid.UUID) (*requests.SalesRequestDTO, error) {
	return nil, nil
}

func (s *testRequestsService) ListSalesRequests(ctx context.Context, params requests.ListParams) (*requests.SalesRequestsPage, error) {
	return nil, nil
}

func (s *testRequestsService) DecideSalesRequest(ctx context.Context, requestID, adminID uuid.UUID, decision requests.SalesDecision) (*requests.SalesRequestDTO, error) {
	if s.decideSalesFn != nil {
		return s.decideSalesFn(ctx, requestID, adminID, decision)
	}
	return nil, nil
}

func TestCreateSalesRequestPassesActor(t *testing.T) {
	userID := uuid.New()
	productID := uuid.New()
	svc := &testRequestsService{
		createSalesFn: func(ctx context.Context, uid uuid.UUID, input requests.CreateSalesRequestInput) (*requests.SalesRequestDTO, error) {
			if uid != userID {
				t.Fatalf("unexpected actor %s", uid)
			}
			if input.CustomerName != "Meena" {
				t.Fatalf("unexpected customer %q", input.CustomerName)
			}
			if len(input.Items) != 1 || input.Items[0].ProductID != productID {
				t.Fatalf("unexpected items %+v", input.Items)
			}
			return &requests.SalesRequestDTO{ID: uuid.New(), CustomerName: input.CustomerName}, nil
		},
	}

	body := `{"customer_name":"Meena","items":[{"product_id":"` + productID.String() + `","quantity":2}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sales-requests", strings.NewReader(body))
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
	resp := httptest.NewRecorder()

	CreateSalesRequest(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
}

func TestCreateSalesRequestRejectsMissingItems(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sales-requests", strings.NewReader(`{"customer_name":"Meena"}`))
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	resp := httptest.NewRecorder()

	CreateSalesRequest(&testRequestsService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	var envelope struct {
		Error struct {
			Code    string            `json:"code"`
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeValidation) {
		t.Fatalf("unexpected code %q", envelope.Error.Code)
	}
	if envelope.Error.Details["items"] == "" {
		t.Fatalf("expected items detail, got %+v", envelope.Error.Details)
	}
}

func TestDecideSalesRequestRoutesVerdict(t *testing.T) {
	adminID := uuid.New()
	requestID := uuid.New()
	billType := enums.BillTypeGST
	svc := &testRequestsService{
		decideSalesFn: func(ctx context.Context, rid, aid uuid.UUID, decision requests.SalesDecision) (*requests.SalesRequestDTO, error) {
			if rid != requestID {
				t.Fatalf("unexpected request %s", rid)
			}
			if aid != adminID {
				t.Fatalf("unexpected admin %s", aid)
			}
			if decision.Status != enums.RequestStatusApproved {
				t.Fatalf("unexpected status %s", decision.Status)
			}
			if decision.BillType == nil || *decision.BillType != billType {
				t.Fatalf("unexpected bill type %+v", decision.BillType)
			}
			return &requests.SalesRequestDTO{ID: rid, Status: decision.Status}, nil
		},
	}

	body := `{"status":"approved","bill_type":"gst"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/sales-requests/"+requestID.String()+"/decision", strings.NewReader(body))
	req = req.WithContext(middleware.WithUserID(req.Context(), adminID.String()))
	req = addRouteParam(req, "requestId", requestID.String())
	resp := httptest.NewRecorder()

	DecideSalesRequest(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
}

func TestDecideSalesRequestStateConflictMapsTo422(t *testing.T) {
	svc := &testRequestsService{
		decideSalesFn: func(ctx context.Context, rid, aid uuid.UUID, decision requests.SalesDecision) (*requests.SalesRequestDTO, error) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "request is already decided")
		},
	}

	requestID := uuid.New()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/sales-requests/"+requestID.String()+"/decision", strings.NewReader(`{"status":"rejected"}`))
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	req = addRouteParam(req, "requestId", requestID.String())
	resp := httptest.NewRecorder()

	DecideSalesRequest(svc, testLogger())(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}

func TestDecideSalesRequestRejectsBadID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/api/v1/sales-requests/not-a-uuid/decision", strings.NewReader(`{"status":"approved"}`))
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	req = addRouteParam(req, "requestId", "not-a-uuid")
	resp := httptest.NewRecorder()

	DecideSalesRequest(&testRequestsService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
