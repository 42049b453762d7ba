package interfaces

import (
	"context"

	"github.com/akunmarket/platform/claims-service/internal/models"
)

// ClaimService is the member-facing surface of the claim subsystem.
type ClaimService interface {
	ListEligibleAccounts(ctx context.Context, userID string) ([]*models.EligibleAccount, error)
	Submit(ctx context.Context, userID string, req models.SubmitClaimRequest) (*models.WarrantyClaim, error)
	ListClaims(ctx context.Context, userID string, status *models.ClaimStatus) ([]*models.WarrantyClaim, error)
	Stats(ctx context.Context, userID string) (*models.ClaimStats, error)
}

// ReviewService is the admin-facing surface: review state machine, refund
// settlement and the delete escape hatch. Admin privilege is enforced by the
// caller, not here.
type ReviewService interface {
	ListAll(ctx context.Context, filter models.ClaimFilter, page, limit int) ([]*models.WarrantyClaim, *models.Pagination, error)
	UpdateStatus(ctx context.Context, claimID string, newStatus models.ClaimStatus, adminNotes *string) (*models.WarrantyClaim, error)
	SettleRefund(ctx context.Context, claimID string) (*models.RefundTransaction, *models.WarrantyClaim, error)
	Stats(ctx context.Context) (*models.ClaimStats, error)
	Delete(ctx context.Context, claimID string) error
}
