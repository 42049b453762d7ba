package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/akunmarket/platform/claims-service/internal/models"
)

// RefundRepository settles approved refund claims in a single database
// transaction: the transaction record, the balance credit and the claim
// completion commit together or not at all.
type RefundRepository struct {
	db     *sql.DB
	claims *ClaimRepository
}

func NewRefundRepository(db *sql.DB, claims *ClaimRepository) *RefundRepository {
	return &RefundRepository{db: db, claims: claims}
}

func (r *RefundRepository) Settle(ctx context.Context, claimID string) (*models.RefundTransaction, *models.WarrantyClaim, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	// Lock the claim row and resolve the refund amount from the purchase
	// price at settlement time.
	var (
		userID     string
		purchaseID string
		status     models.ClaimStatus
		amount     int64
	)
	err = tx.QueryRowContext(ctx, `
		SELECT c.user_id, c.purchase_id, c.status, p.price
		FROM warranty_claims c
		JOIN purchases p ON p.id = c.purchase_id
		WHERE c.id = $1
		FOR UPDATE OF c
	`, claimID).Scan(&userID, &purchaseID, &status, &amount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, models.ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	switch status {
	case models.StatusApproved:
	case models.StatusCompleted:
		return nil, nil, models.ErrAlreadySettled
	default:
		return nil, nil, models.ErrInvalidState
	}

	txn := &models.RefundTransaction{
		ID:         uuid.NewString(),
		UserID:     userID,
		Amount:     amount,
		Status:     "completed",
		ClaimID:    claimID,
		PurchaseID: purchaseID,
		CreatedAt:  time.Now(),
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO refund_transactions (id, user_id, amount, status, claim_id, purchase_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, txn.ID, txn.UserID, txn.Amount, txn.Status, txn.ClaimID, txn.PurchaseID); err != nil {
		return nil, nil, fmt.Errorf("insert refund transaction: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE users SET balance = balance + $1 WHERE id = $2`, amount, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("credit balance: %w", err)
	}
	if rows, err := result.RowsAffected(); err != nil {
		return nil, nil, err
	} else if rows == 0 {
		return nil, nil, fmt.Errorf("credit balance: user %s: %w", userID, models.ErrNotFound)
	}

	details, err := json.Marshal(map[string]string{"refund_transaction_id": txn.ID})
	if err != nil {
		return nil, nil, err
	}
	// Guarded completion: the affected-row check is what makes a concurrent
	// double settlement a no-op instead of a second credit.
	result, err = tx.ExecContext(ctx, `
		UPDATE warranty_claims
		SET status = 'completed', resolution_details = $1, resolved_at = NOW(), updated_at = NOW()
		WHERE id = $2 AND status = 'approved'
	`, details, claimID)
	if err != nil {
		return nil, nil, err
	}
	if rows, err := result.RowsAffected(); err != nil {
		return nil, nil, err
	} else if rows == 0 {
		return nil, nil, models.ErrAlreadySettled
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}

	claim, err := r.claims.GetByID(ctx, claimID)
	if err != nil {
		return nil, nil, err
	}
	return txn, claim, nil
}
