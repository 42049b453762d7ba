package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/akunmarket/platform/claims-service/internal/models"
)

// uniqueViolation is the Postgres error code raised by the partial unique
// index when a second active claim targets the same purchase.
const uniqueViolation = "23505"

const claimColumns = `
	c.id, c.user_id, c.purchase_id, c.claim_type, c.reason_code, c.reason_detail,
	c.evidence_urls, c.status, c.admin_notes, c.screening, c.resolution_details,
	c.created_at, c.updated_at, c.resolved_at,
	p.product_name, p.product_type, p.product_category`

const claimSelect = `
	SELECT ` + claimColumns + `
	FROM warranty_claims c
	JOIN purchases p ON p.id = c.purchase_id`

type ClaimRepository struct {
	db *sql.DB
}

func NewClaimRepository(db *sql.DB) *ClaimRepository {
	return &ClaimRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClaim(row rowScanner) (*models.WarrantyClaim, error) {
	var (
		c          models.WarrantyClaim
		evidence   pq.StringArray
		notes      sql.NullString
		screening  sql.NullString
		resolution []byte
		resolvedAt sql.NullTime
	)
	err := row.Scan(
		&c.ID, &c.UserID, &c.PurchaseID, &c.ClaimType, &c.ReasonCode, &c.ReasonDetail,
		&evidence, &c.Status, &notes, &screening, &resolution,
		&c.CreatedAt, &c.UpdatedAt, &resolvedAt,
		&c.ProductName, &c.ProductType, &c.ProductCategory,
	)
	if err != nil {
		return nil, err
	}
	c.EvidenceURLs = []string(evidence)
	if notes.Valid {
		c.AdminNotes = &notes.String
	}
	if screening.Valid {
		c.Screening = screening.String
	}
	if resolvedAt.Valid {
		t := resolvedAt.Time
		c.ResolvedAt = &t
	}
	if len(resolution) > 0 {
		if err := json.Unmarshal(resolution, &c.ResolutionDetails); err != nil {
			return nil, fmt.Errorf("decode resolution details: %w", err)
		}
	}
	return &c, nil
}

func (r *ClaimRepository) Insert(ctx context.Context, claim *models.WarrantyClaim) error {
	if claim.EvidenceURLs == nil {
		claim.EvidenceURLs = []string{}
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO warranty_claims
			(id, user_id, purchase_id, claim_type, reason_code, reason_detail, evidence_urls, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`, claim.ID, claim.UserID, claim.PurchaseID, claim.ClaimType,
		claim.ReasonCode, claim.ReasonDetail, pq.Array(claim.EvidenceURLs), claim.Status,
	).Scan(&claim.CreatedAt, &claim.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return models.ErrDuplicateClaim
		}
		return err
	}
	return nil
}

func (r *ClaimRepository) GetByID(ctx context.Context, id string) (*models.WarrantyClaim, error) {
	claim, err := scanClaim(r.db.QueryRowContext(ctx, claimSelect+` WHERE c.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return claim, nil
}

func (r *ClaimRepository) ListByUser(ctx context.Context, userID string, status *models.ClaimStatus) ([]*models.WarrantyClaim, error) {
	query := claimSelect + ` WHERE c.user_id = $1`
	args := []any{userID}
	if status != nil {
		query += ` AND c.status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY c.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectClaims(rows)
}

func (r *ClaimRepository) ListAll(ctx context.Context, filter models.ClaimFilter, page, limit int) ([]*models.WarrantyClaim, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	where := ` WHERE 1=1`
	args := []any{}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		where += fmt.Sprintf(` AND c.status = $%d`, len(args))
	}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		where += fmt.Sprintf(` AND c.user_id = $%d`, len(args))
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM warranty_claims c` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, (page-1)*limit)
	query := claimSelect + where + fmt.Sprintf(
		` ORDER BY c.created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	claims, err := collectClaims(rows)
	if err != nil {
		return nil, 0, err
	}
	return claims, total, nil
}

// TransitionStatus moves a claim to newStatus only if it is still in from.
// resolved_at is stamped when entering approved, rejected or completed and
// admin notes are preserved when none are supplied.
func (r *ClaimRepository) TransitionStatus(ctx context.Context, id string, from, to models.ClaimStatus, adminNotes *string) (*models.WarrantyClaim, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE warranty_claims
		SET status = $1,
		    admin_notes = COALESCE($2, admin_notes),
		    resolved_at = CASE WHEN $1 IN ('approved', 'rejected', 'completed')
		                       THEN NOW() ELSE resolved_at END,
		    updated_at = NOW()
		WHERE id = $3 AND status = $4
	`, to, adminNotes, id, from)
	if err != nil {
		return nil, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, models.ErrInvalidTransition
	}
	return r.GetByID(ctx, id)
}

func (r *ClaimRepository) UpdateScreening(ctx context.Context, id, decision string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE warranty_claims SET screening = $1, updated_at = NOW() WHERE id = $2`, decision, id)
	return err
}

func (r *ClaimRepository) Stats(ctx context.Context, userID string) (*models.ClaimStats, error) {
	query := `SELECT status, COUNT(*) FROM warranty_claims`
	args := []any{}
	if userID != "" {
		query += ` WHERE user_id = $1`
		args = append(args, userID)
	}
	query += ` GROUP BY status`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &models.ClaimStats{}
	for rows.Next() {
		var status models.ClaimStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.Add(status, count)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	stats.Finalize()
	return stats, nil
}

func (r *ClaimRepository) Delete(ctx context.Context, id string) (*models.WarrantyClaim, error) {
	claim, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM warranty_claims WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return claim, nil
}

func collectClaims(rows *sql.Rows) ([]*models.WarrantyClaim, error) {
	claims := []*models.WarrantyClaim{}
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		claims = append(claims, claim)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return claims, nil
}
