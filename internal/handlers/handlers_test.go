package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/akunmarket/platform/claims-service/internal/api"
	"github.com/akunmarket/platform/claims-service/internal/handlers"
	"github.com/akunmarket/platform/claims-service/internal/models"
)

// stubClaimService returns canned answers so the tests exercise routing,
// identity handling and error mapping only.
type stubClaimService struct {
	submitErr error
	claims    []*models.WarrantyClaim
}

func (s *stubClaimService) ListEligibleAccounts(context.Context, string) ([]*models.EligibleAccount, error) {
	return []*models.EligibleAccount{}, nil
}

func (s *stubClaimService) Submit(_ context.Context, userID string, req models.SubmitClaimRequest) (*models.WarrantyClaim, error) {
	if s.submitErr != nil {
		return nil, s.submitErr
	}
	return &models.WarrantyClaim{
		ID:         "c-1",
		UserID:     userID,
		PurchaseID: req.PurchaseID,
		Status:     models.StatusPending,
	}, nil
}

func (s *stubClaimService) ListClaims(context.Context, string, *models.ClaimStatus) ([]*models.WarrantyClaim, error) {
	return s.claims, nil
}

func (s *stubClaimService) Stats(context.Context, string) (*models.ClaimStats, error) {
	return &models.ClaimStats{}, nil
}

type stubReviewService struct {
	updateErr error
	settleErr error
}

func (s *stubReviewService) ListAll(context.Context, models.ClaimFilter, int, int) ([]*models.WarrantyClaim, *models.Pagination, error) {
	return []*models.WarrantyClaim{}, &models.Pagination{Page: 1, Limit: 20}, nil
}

func (s *stubReviewService) UpdateStatus(_ context.Context, claimID string, status models.ClaimStatus, _ *string) (*models.WarrantyClaim, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	return &models.WarrantyClaim{ID: claimID, Status: status}, nil
}

func (s *stubReviewService) SettleRefund(_ context.Context, claimID string) (*models.RefundTransaction, *models.WarrantyClaim, error) {
	if s.settleErr != nil {
		return nil, nil, s.settleErr
	}
	return &models.RefundTransaction{ID: "t-1", ClaimID: claimID},
		&models.WarrantyClaim{ID: claimID, Status: models.StatusCompleted}, nil
}

func (s *stubReviewService) Stats(context.Context) (*models.ClaimStats, error) {
	return &models.ClaimStats{}, nil
}

func (s *stubReviewService) Delete(context.Context, string) error { return nil }

func newTestRouter(claimSvc *stubClaimService, reviewSvc *stubReviewService) http.Handler {
	return api.NewRouter(
		handlers.NewClaimHandler(claimSvc, nil),
		handlers.NewAdminHandler(reviewSvc),
		handlers.NewEventsHandler(nil),
	)
}

func doRequest(t *testing.T, router http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

var memberHeaders = map[string]string{"X-User-ID": "user-1"}
var adminHeaders = map[string]string{"X-User-ID": "admin-1", "X-User-Role": "admin"}

func TestAuthRequired(t *testing.T) {
	router := newTestRouter(&stubClaimService{}, &stubReviewService{})

	w := doRequest(t, router, http.MethodGet, "/api/claims", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without identity, got %d", w.Code)
	}

	w = doRequest(t, router, http.MethodGet, "/api/claims", "", memberHeaders)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 with identity, got %d", w.Code)
	}
}

func TestAdminRequired(t *testing.T) {
	router := newTestRouter(&stubClaimService{}, &stubReviewService{})

	w := doRequest(t, router, http.MethodGet, "/api/admin/claims", "", memberHeaders)
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for a member, got %d", w.Code)
	}

	w = doRequest(t, router, http.MethodGet, "/api/admin/claims", "", adminHeaders)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 for an admin, got %d", w.Code)
	}
}

func TestSubmitCreated(t *testing.T) {
	router := newTestRouter(&stubClaimService{}, &stubReviewService{})

	body := `{"purchase_id":"p-1","claim_type":"refund","reason":"Akun tidak bisa login"}`
	w := doRequest(t, router, http.MethodPost, "/api/claims", body, memberHeaders)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var claim models.WarrantyClaim
	if err := json.Unmarshal(w.Body.Bytes(), &claim); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if claim.UserID != "user-1" || claim.Status != models.StatusPending {
		t.Errorf("unexpected claim payload: %+v", claim)
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", models.ErrValidation, http.StatusBadRequest},
		{"not found", models.ErrNotFound, http.StatusNotFound},
		{"duplicate", models.ErrDuplicateClaim, http.StatusConflict},
		{"expired", models.ErrWarrantyExpired, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&stubClaimService{submitErr: tt.err}, &stubReviewService{})
			body := `{"purchase_id":"p-1","claim_type":"refund","reason":"Akun tidak bisa login"}`
			w := doRequest(t, router, http.MethodPost, "/api/claims", body, memberHeaders)
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}

func TestUpdateStatusErrors(t *testing.T) {
	router := newTestRouter(&stubClaimService{}, &stubReviewService{updateErr: models.ErrInvalidTransition})

	body := `{"status":"approved"}`
	w := doRequest(t, router, http.MethodPatch, "/api/admin/claims/c-1/status", body, adminHeaders)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for invalid transition, got %d", w.Code)
	}
}

func TestSettleRefundAlreadySettled(t *testing.T) {
	router := newTestRouter(&stubClaimService{}, &stubReviewService{settleErr: models.ErrAlreadySettled})

	w := doRequest(t, router, http.MethodPost, "/api/admin/claims/c-1/refund", "", adminHeaders)
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 for repeated settlement, got %d", w.Code)
	}
}

func TestStatusFilterRejected(t *testing.T) {
	router := newTestRouter(&stubClaimService{}, &stubReviewService{})

	w := doRequest(t, router, http.MethodGet, "/api/claims?status=bogus", "", memberHeaders)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown status filter, got %d", w.Code)
	}
}

func TestEvidenceUnconfigured(t *testing.T) {
	router := newTestRouter(&stubClaimService{}, &stubReviewService{})

	body := `{"filename":"a.png","content_type":"image/png","size":1024}`
	w := doRequest(t, router, http.MethodPost, "/api/evidence/presign", body, memberHeaders)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 without evidence storage, got %d", w.Code)
	}
}
