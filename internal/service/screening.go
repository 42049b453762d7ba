package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/akunmarket/platform/claims-service/internal/interfaces"
	"github.com/akunmarket/platform/claims-service/internal/models"
	"github.com/akunmarket/platform/claims-service/internal/telemetry"
)

const (
	screeningSubject = "claims.screen"
	screeningTimeout = 5 * time.Second
)

type screeningRequest struct {
	ClaimID    string `json:"claim_id"`
	UserID     string `json:"user_id"`
	PurchaseID string `json:"purchase_id"`
	ClaimType  string `json:"claim_type"`
	ReasonCode string `json:"reason_code"`
}

type screeningResponse struct {
	Decision string `json:"decision"` // clear, suspicious, manual_review
	Reason   string `json:"reason"`
}

// Screener asks the abuse-screening service for an advisory verdict on a
// freshly submitted claim over NATS request/reply. The verdict is stored on
// the claim for admins to see; it never blocks or rejects a submission.
type Screener struct {
	nc     *nats.Conn
	claims interfaces.ClaimRepository
}

func NewScreener(nc *nats.Conn, claims interfaces.ClaimRepository) *Screener {
	return &Screener{nc: nc, claims: claims}
}

func (s *Screener) Screen(claim *models.WarrantyClaim) {
	req := screeningRequest{
		ClaimID:    claim.ID,
		UserID:     claim.UserID,
		PurchaseID: claim.PurchaseID,
		ClaimType:  string(claim.ClaimType),
		ReasonCode: claim.ReasonCode,
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return
	}

	msg, err := s.nc.Request(screeningSubject, payload, screeningTimeout)
	if err != nil {
		telemetry.Logger.Warn("Claim screening timeout",
			zap.String("claim_id", claim.ID),
			zap.Error(err),
		)
		return
	}

	var resp screeningResponse
	if err := json.Unmarshal(msg.Data, &resp); err != nil {
		telemetry.Logger.Error("Invalid screening response",
			zap.String("claim_id", claim.ID),
			zap.Error(err),
		)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), screeningTimeout)
	defer cancel()
	if err := s.claims.UpdateScreening(ctx, claim.ID, resp.Decision); err != nil {
		telemetry.Logger.Error("Failed to store screening decision",
			zap.String("claim_id", claim.ID),
			zap.Error(err),
		)
		return
	}

	telemetry.Logger.Info("Claim screened",
		zap.String("claim_id", claim.ID),
		zap.String("decision", resp.Decision),
	)
}
