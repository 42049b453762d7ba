package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/akunmarket/platform/claims-service/internal/interfaces"
	"github.com/akunmarket/platform/claims-service/internal/models"
	"github.com/akunmarket/platform/claims-service/internal/notifier"
	"github.com/akunmarket/platform/claims-service/internal/telemetry"
	"github.com/akunmarket/platform/claims-service/internal/validate"
)

const submissionLockTTL = 30 * time.Second

// ClaimService implements the member-facing claim operations: eligibility
// listing, submission, claim listing and stats.
type ClaimService struct {
	claims      interfaces.ClaimRepository
	purchases   interfaces.PurchaseRepository
	notify      interfaces.Notifier
	redisClient *redis.Client
	screener    *Screener
	cacheTTL    time.Duration
}

func NewClaimService(
	claims interfaces.ClaimRepository,
	purchases interfaces.PurchaseRepository,
	notify interfaces.Notifier,
	redisClient *redis.Client,
	screener *Screener,
	cacheTTL time.Duration,
) *ClaimService {
	return &ClaimService{
		claims:      claims,
		purchases:   purchases,
		notify:      notify,
		redisClient: redisClient,
		screener:    screener,
		cacheTTL:    cacheTTL,
	}
}

// ListEligibleAccounts returns the purchases the user may currently claim
// against, newest first. An empty result is a valid answer, not an error.
func (s *ClaimService) ListEligibleAccounts(ctx context.Context, userID string) ([]*models.EligibleAccount, error) {
	key := notifier.CacheKeyEligible(userID)
	var cached []*models.EligibleAccount
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	purchases, err := s.purchases.ListEligible(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	accounts := make([]*models.EligibleAccount, 0, len(purchases))
	for _, p := range purchases {
		accounts = append(accounts, &models.EligibleAccount{
			Purchase:     *p,
			WarrantyDays: models.WarrantyDaysLeft(*p.WarrantyExpiresAt, now),
		})
	}

	s.cacheSet(ctx, key, accounts)
	return accounts, nil
}

// Submit validates a claim request and creates the claim in pending state.
// The warranty expiry is re-checked here regardless of what the eligibility
// listing said earlier; time has passed since then.
func (s *ClaimService) Submit(ctx context.Context, userID string, req models.SubmitClaimRequest) (*models.WarrantyClaim, error) {
	code, detail := models.SplitReason(req.Reason)
	if err := validate.Reason(detail); err != nil {
		return nil, err
	}
	if err := validate.ClaimType(req.ClaimType); err != nil {
		return nil, err
	}
	if err := validate.EvidenceRefs(req.EvidenceURLs); err != nil {
		return nil, err
	}

	purchase, err := s.purchases.GetForUser(ctx, req.PurchaseID, userID)
	if err != nil {
		return nil, err
	}
	if !purchase.WarrantyValid(time.Now()) {
		return nil, models.ErrWarrantyExpired
	}

	// Short-lived lock against an in-flight submission for the same
	// purchase. The partial unique index remains the authoritative guard.
	if s.redisClient != nil {
		lockKey := fmt.Sprintf("claims.submit.%s", req.PurchaseID)
		locked, err := s.redisClient.SetNX(ctx, lockKey, "1", submissionLockTTL).Result()
		if err == nil && !locked {
			return nil, models.ErrDuplicateClaim
		}
		defer s.redisClient.Del(ctx, lockKey)
	}

	claim := &models.WarrantyClaim{
		ID:           uuid.NewString(),
		UserID:       userID,
		PurchaseID:   req.PurchaseID,
		ClaimType:    req.ClaimType,
		ReasonCode:   code,
		ReasonDetail: detail,
		EvidenceURLs: req.EvidenceURLs,
		Status:       models.StatusPending,
	}
	if err := s.claims.Insert(ctx, claim); err != nil {
		return nil, err
	}

	created, err := s.claims.GetByID(ctx, claim.ID)
	if err != nil {
		return nil, err
	}

	telemetry.ClaimSubmissions.Inc()
	telemetry.Logger.Info("Warranty claim submitted",
		zap.String("claim_id", created.ID),
		zap.String("user_id", userID),
		zap.String("purchase_id", req.PurchaseID),
		zap.String("claim_type", string(req.ClaimType)),
	)

	s.notify.ClaimInserted(ctx, created)

	if s.screener != nil {
		go s.screener.Screen(created)
	}
	return created, nil
}

func (s *ClaimService) ListClaims(ctx context.Context, userID string, status *models.ClaimStatus) ([]*models.WarrantyClaim, error) {
	key := notifier.CacheKeyClaims(userID)
	if status == nil {
		var cached []*models.WarrantyClaim
		if s.cacheGet(ctx, key, &cached) {
			return cached, nil
		}
	}

	claims, err := s.claims.ListByUser(ctx, userID, status)
	if err != nil {
		return nil, err
	}
	if status == nil {
		s.cacheSet(ctx, key, claims)
	}
	return claims, nil
}

func (s *ClaimService) Stats(ctx context.Context, userID string) (*models.ClaimStats, error) {
	key := notifier.CacheKeyStats(userID)
	var cached models.ClaimStats
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	stats, err := s.claims.Stats(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, key, stats)
	return stats, nil
}

// cacheGet loads a cached view. Cache trouble is never an error for the
// caller; the database answer wins.
func (s *ClaimService) cacheGet(ctx context.Context, key string, dest any) bool {
	if s.redisClient == nil {
		return false
	}
	raw, err := s.redisClient.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			telemetry.Logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		telemetry.Logger.Warn("Cache decode failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *ClaimService) cacheSet(ctx context.Context, key string, value any) {
	if s.redisClient == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.redisClient.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
		telemetry.Logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
}
