package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/akunmarket/platform/claims-service/internal/models"
)

const purchaseColumns = `
	p.id, p.user_id, p.product_id, p.product_name, p.product_type, p.product_category,
	p.price, p.account_details, p.warranty_expires_at, p.status, p.created_at`

type PurchaseRepository struct {
	db *sql.DB
}

func NewPurchaseRepository(db *sql.DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

func scanPurchase(row rowScanner) (*models.Purchase, error) {
	var (
		p       models.Purchase
		details []byte
		expires sql.NullTime
	)
	err := row.Scan(
		&p.ID, &p.UserID, &p.ProductID, &p.ProductName, &p.ProductType, &p.ProductCategory,
		&p.Price, &details, &expires, &p.Status, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if expires.Valid {
		t := expires.Time
		p.WarrantyExpiresAt = &t
	}
	if len(details) > 0 {
		if err := json.Unmarshal(details, &p.AccountDetails); err != nil {
			return nil, fmt.Errorf("decode account details: %w", err)
		}
	}
	return &p, nil
}

// GetForUser loads a purchase scoped to its owner; a row owned by someone
// else is indistinguishable from an absent one.
func (r *PurchaseRepository) GetForUser(ctx context.Context, id, userID string) (*models.Purchase, error) {
	purchase, err := scanPurchase(r.db.QueryRowContext(ctx, `
		SELECT `+purchaseColumns+`
		FROM purchases p
		WHERE p.id = $1 AND p.user_id = $2
	`, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return purchase, nil
}

// ListEligible returns the purchases that currently qualify for a new claim,
// newest first: active, warranty set and still running, and no claim already
// open against them.
func (r *PurchaseRepository) ListEligible(ctx context.Context, userID string) ([]*models.Purchase, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+purchaseColumns+`
		FROM purchases p
		WHERE p.user_id = $1
		  AND p.status = 'active'
		  AND p.warranty_expires_at IS NOT NULL
		  AND p.warranty_expires_at > NOW()
		  AND NOT EXISTS (
			SELECT 1 FROM warranty_claims c
			WHERE c.purchase_id = p.id
			  AND c.status IN ('pending', 'reviewing', 'approved')
		  )
		ORDER BY p.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	purchases := []*models.Purchase{}
	for rows.Next() {
		purchase, err := scanPurchase(rows)
		if err != nil {
			return nil, err
		}
		purchases = append(purchases, purchase)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return purchases, nil
}
