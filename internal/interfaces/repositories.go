package interfaces

import (
	"context"

	"github.com/akunmarket/platform/claims-service/internal/models"
)

// ClaimRepository defines the contract for warranty-claim data access.
type ClaimRepository interface {
	// Insert persists a new claim. Returns models.ErrDuplicateClaim when an
	// active claim already exists for the purchase (partial unique index).
	Insert(ctx context.Context, claim *models.WarrantyClaim) error
	GetByID(ctx context.Context, id string) (*models.WarrantyClaim, error)
	ListByUser(ctx context.Context, userID string, status *models.ClaimStatus) ([]*models.WarrantyClaim, error)
	ListAll(ctx context.Context, filter models.ClaimFilter, page, limit int) ([]*models.WarrantyClaim, int, error)
	// TransitionStatus performs a guarded update: the row moves to newStatus
	// only if it is still in from. Zero affected rows surface as
	// models.ErrInvalidTransition.
	TransitionStatus(ctx context.Context, id string, from, to models.ClaimStatus, adminNotes *string) (*models.WarrantyClaim, error)
	UpdateScreening(ctx context.Context, id, decision string) error
	// Stats aggregates per-status counts; empty userID means global scope.
	Stats(ctx context.Context, userID string) (*models.ClaimStats, error)
	// Delete is the administrative escape hatch, not part of the lifecycle.
	Delete(ctx context.Context, id string) (*models.WarrantyClaim, error)
}

// PurchaseRepository reads the purchase store owned by the checkout subsystem.
type PurchaseRepository interface {
	// GetForUser loads a purchase scoped to its owner. Absent rows and rows
	// owned by another user both return models.ErrNotFound.
	GetForUser(ctx context.Context, id, userID string) (*models.Purchase, error)
	// ListEligible returns, newest first, the purchases that currently
	// qualify for a new claim: active, warranty set and in the future, no
	// claim in an active status.
	ListEligible(ctx context.Context, userID string) ([]*models.Purchase, error)
}

// RefundRepository settles approved refund claims atomically: transaction
// record, balance credit and claim completion commit together or not at all.
type RefundRepository interface {
	Settle(ctx context.Context, claimID string) (*models.RefundTransaction, *models.WarrantyClaim, error)
}

// Notifier fans claim mutations out to realtime subscribers and invalidates
// the cached views they back.
type Notifier interface {
	ClaimInserted(ctx context.Context, claim *models.WarrantyClaim)
	ClaimUpdated(ctx context.Context, claim *models.WarrantyClaim, oldStatus, newStatus models.ClaimStatus)
	ClaimDeleted(ctx context.Context, claim *models.WarrantyClaim)
}
