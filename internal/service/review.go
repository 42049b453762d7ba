package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/akunmarket/platform/claims-service/internal/interfaces"
	"github.com/akunmarket/platform/claims-service/internal/models"
	"github.com/akunmarket/platform/claims-service/internal/telemetry"
)

// ReviewService implements the admin-side review state machine and refund
// settlement. Admin privilege is enforced by the HTTP layer; there is no
// authorization model here.
type ReviewService struct {
	claims  interfaces.ClaimRepository
	refunds interfaces.RefundRepository
	notify  interfaces.Notifier
}

func NewReviewService(
	claims interfaces.ClaimRepository,
	refunds interfaces.RefundRepository,
	notify interfaces.Notifier,
) *ReviewService {
	return &ReviewService{claims: claims, refunds: refunds, notify: notify}
}

func (s *ReviewService) ListAll(ctx context.Context, filter models.ClaimFilter, page, limit int) ([]*models.WarrantyClaim, *models.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	claims, total, err := s.claims.ListAll(ctx, filter, page, limit)
	if err != nil {
		return nil, nil, err
	}
	pagination := &models.Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: (total + limit - 1) / limit,
	}
	return claims, pagination, nil
}

// UpdateStatus moves a claim through the review state machine. Terminal
// states never transition again; entering approved, rejected or completed
// stamps resolved_at; omitted notes leave previously stored notes in place.
func (s *ReviewService) UpdateStatus(ctx context.Context, claimID string, newStatus models.ClaimStatus, adminNotes *string) (*models.WarrantyClaim, error) {
	if !newStatus.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", models.ErrValidation, newStatus)
	}

	claim, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(claim.Status, newStatus) {
		return nil, models.ErrInvalidTransition
	}

	// The repository re-checks the from-status on update, so a concurrent
	// reviewer losing the race gets ErrInvalidTransition, not a lost write.
	updated, err := s.claims.TransitionStatus(ctx, claimID, claim.Status, newStatus, adminNotes)
	if err != nil {
		return nil, err
	}

	telemetry.ClaimTransitions.WithLabelValues(string(claim.Status), string(newStatus)).Inc()
	telemetry.Logger.Info("Claim status transition",
		zap.String("claim_id", claimID),
		zap.String("from_status", string(claim.Status)),
		zap.String("to_status", string(newStatus)),
	)

	s.notify.ClaimUpdated(ctx, updated, claim.Status, newStatus)
	return updated, nil
}

// SettleRefund credits the user's balance for an approved refund claim and
// completes it. Re-invocation on a completed claim fails with
// models.ErrAlreadySettled and never credits twice.
func (s *ReviewService) SettleRefund(ctx context.Context, claimID string) (*models.RefundTransaction, *models.WarrantyClaim, error) {
	claim, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		return nil, nil, err
	}
	switch claim.Status {
	case models.StatusApproved:
	case models.StatusCompleted:
		return nil, nil, models.ErrAlreadySettled
	default:
		return nil, nil, models.ErrInvalidState
	}

	txn, updated, err := s.refunds.Settle(ctx, claimID)
	if err != nil {
		return nil, nil, err
	}

	telemetry.RefundSettlements.Inc()
	telemetry.RefundedAmount.Add(float64(txn.Amount))
	telemetry.Logger.Info("Refund settled",
		zap.String("claim_id", claimID),
		zap.String("transaction_id", txn.ID),
		zap.String("user_id", txn.UserID),
		zap.Int64("amount", txn.Amount),
	)

	s.notify.ClaimUpdated(ctx, updated, models.StatusApproved, models.StatusCompleted)
	return txn, updated, nil
}

func (s *ReviewService) Stats(ctx context.Context) (*models.ClaimStats, error) {
	return s.claims.Stats(ctx, "")
}

// Delete removes a claim outright. Administrative escape hatch only; the
// normal lifecycle never deletes.
func (s *ReviewService) Delete(ctx context.Context, claimID string) error {
	claim, err := s.claims.Delete(ctx, claimID)
	if err != nil {
		return err
	}

	telemetry.Logger.Warn("Claim deleted by admin", zap.String("claim_id", claimID))
	s.notify.ClaimDeleted(ctx, claim)
	return nil
}
