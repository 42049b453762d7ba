package service_test

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/akunmarket/platform/claims-service/internal/models"
)

// fakePurchaseRepo holds purchases in memory and mirrors the repository's
// eligibility predicate so service tests exercise the same rules.
type fakePurchaseRepo struct {
	mu        sync.Mutex
	purchases map[string]*models.Purchase
	claims    *fakeClaimRepo
}

func newFakePurchaseRepo(claims *fakeClaimRepo) *fakePurchaseRepo {
	return &fakePurchaseRepo{purchases: map[string]*models.Purchase{}, claims: claims}
}

func (r *fakePurchaseRepo) add(p *models.Purchase) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.purchases[p.ID] = p
}

func (r *fakePurchaseRepo) GetForUser(_ context.Context, id, userID string) (*models.Purchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.purchases[id]
	if !ok || p.UserID != userID {
		return nil, models.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePurchaseRepo) ListEligible(_ context.Context, userID string) ([]*models.Purchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	eligible := []*models.Purchase{}
	for _, p := range r.purchases {
		if p.UserID != userID || p.Status != models.PurchaseActive {
			continue
		}
		if p.WarrantyExpiresAt == nil || !p.WarrantyExpiresAt.After(now) {
			continue
		}
		if r.claims != nil && r.claims.hasActiveClaim(p.ID) {
			continue
		}
		cp := *p
		eligible = append(eligible, &cp)
	}
	sort.Slice(eligible, func(i, j int) bool {
		return eligible[i].CreatedAt.After(eligible[j].CreatedAt)
	})
	return eligible, nil
}

// fakeClaimRepo mirrors the Postgres claim repository: the duplicate check
// behaves like the partial unique index and the guarded transition behaves
// like the conditional UPDATE.
type fakeClaimRepo struct {
	mu        sync.Mutex
	claims    map[string]*models.WarrantyClaim
	purchases *fakePurchaseRepo
}

func newFakeClaimRepo() *fakeClaimRepo {
	return &fakeClaimRepo{claims: map[string]*models.WarrantyClaim{}}
}

func (r *fakeClaimRepo) hasActiveClaim(purchaseID string) bool {
	for _, c := range r.claims {
		if c.PurchaseID != purchaseID {
			continue
		}
		switch c.Status {
		case models.StatusPending, models.StatusReviewing, models.StatusApproved:
			return true
		}
	}
	return false
}

func (r *fakeClaimRepo) join(c *models.WarrantyClaim) *models.WarrantyClaim {
	cp := *c
	if r.purchases != nil {
		if p, ok := r.purchases.purchases[c.PurchaseID]; ok {
			cp.ProductName = p.ProductName
			cp.ProductType = p.ProductType
			cp.ProductCategory = p.ProductCategory
		}
	}
	return &cp
}

func (r *fakeClaimRepo) Insert(_ context.Context, claim *models.WarrantyClaim) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hasActiveClaim(claim.PurchaseID) {
		return models.ErrDuplicateClaim
	}
	now := time.Now()
	claim.CreatedAt = now
	claim.UpdatedAt = now
	cp := *claim
	r.claims[claim.ID] = &cp
	return nil
}

func (r *fakeClaimRepo) GetByID(_ context.Context, id string) (*models.WarrantyClaim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.claims[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return r.join(c), nil
}

func (r *fakeClaimRepo) ListByUser(_ context.Context, userID string, status *models.ClaimStatus) ([]*models.WarrantyClaim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []*models.WarrantyClaim{}
	for _, c := range r.claims {
		if c.UserID != userID {
			continue
		}
		if status != nil && c.Status != *status {
			continue
		}
		result = append(result, r.join(c))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *fakeClaimRepo) ListAll(_ context.Context, filter models.ClaimFilter, page, limit int) ([]*models.WarrantyClaim, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := []*models.WarrantyClaim{}
	for _, c := range r.claims {
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		if filter.UserID != "" && c.UserID != filter.UserID {
			continue
		}
		matched = append(matched, r.join(c))
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := len(matched)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (r *fakeClaimRepo) TransitionStatus(_ context.Context, id string, from, to models.ClaimStatus, adminNotes *string) (*models.WarrantyClaim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.claims[id]
	if !ok || c.Status != from {
		return nil, models.ErrInvalidTransition
	}
	c.Status = to
	if adminNotes != nil {
		notes := *adminNotes
		c.AdminNotes = &notes
	}
	if to.Resolved() {
		now := time.Now()
		c.ResolvedAt = &now
	}
	c.UpdatedAt = time.Now()
	return r.join(c), nil
}

func (r *fakeClaimRepo) UpdateScreening(_ context.Context, id, decision string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.claims[id]
	if !ok {
		return models.ErrNotFound
	}
	c.Screening = decision
	return nil
}

func (r *fakeClaimRepo) Stats(_ context.Context, userID string) (*models.ClaimStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &models.ClaimStats{}
	for _, c := range r.claims {
		if userID != "" && c.UserID != userID {
			continue
		}
		stats.Add(c.Status, 1)
	}
	stats.Finalize()
	return stats, nil
}

func (r *fakeClaimRepo) Delete(_ context.Context, id string) (*models.WarrantyClaim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.claims[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	delete(r.claims, id)
	return r.join(c), nil
}

// fakeRefundRepo settles against the in-memory claim store and counts how
// many times a balance was actually credited.
type fakeRefundRepo struct {
	mu       sync.Mutex
	claims   *fakeClaimRepo
	balances map[string]int64
	credits  int
}

func newFakeRefundRepo(claims *fakeClaimRepo) *fakeRefundRepo {
	return &fakeRefundRepo{claims: claims, balances: map[string]int64{}}
}

func (r *fakeRefundRepo) Settle(_ context.Context, claimID string) (*models.RefundTransaction, *models.WarrantyClaim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.claims.mu.Lock()
	defer r.claims.mu.Unlock()

	c, ok := r.claims.claims[claimID]
	if !ok {
		return nil, nil, models.ErrNotFound
	}
	switch c.Status {
	case models.StatusApproved:
	case models.StatusCompleted:
		return nil, nil, models.ErrAlreadySettled
	default:
		return nil, nil, models.ErrInvalidState
	}

	var amount int64
	if r.claims.purchases != nil {
		if p, ok := r.claims.purchases.purchases[c.PurchaseID]; ok {
			amount = p.Price
		}
	}

	txn := &models.RefundTransaction{
		ID:         uuid.NewString(),
		UserID:     c.UserID,
		Amount:     amount,
		Status:     "completed",
		ClaimID:    claimID,
		PurchaseID: c.PurchaseID,
		CreatedAt:  time.Now(),
	}
	r.balances[c.UserID] += amount
	r.credits++

	c.Status = models.StatusCompleted
	c.ResolutionDetails = map[string]string{"refund_transaction_id": txn.ID}
	now := time.Now()
	c.ResolvedAt = &now
	c.UpdatedAt = now

	return txn, r.claims.join(c), nil
}

type notifierCall struct {
	event     models.ClaimEventType
	claim     *models.WarrantyClaim
	oldStatus models.ClaimStatus
	newStatus models.ClaimStatus
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []notifierCall
}

func (n *fakeNotifier) ClaimInserted(_ context.Context, claim *models.WarrantyClaim) {
	n.record(notifierCall{event: models.ClaimInserted, claim: claim})
}

func (n *fakeNotifier) ClaimUpdated(_ context.Context, claim *models.WarrantyClaim, oldStatus, newStatus models.ClaimStatus) {
	n.record(notifierCall{event: models.ClaimUpdated, claim: claim, oldStatus: oldStatus, newStatus: newStatus})
}

func (n *fakeNotifier) ClaimDeleted(_ context.Context, claim *models.WarrantyClaim) {
	n.record(notifierCall{event: models.ClaimDeleted, claim: claim})
}

func (n *fakeNotifier) record(call notifierCall) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, call)
}

func (n *fakeNotifier) last() (notifierCall, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.calls) == 0 {
		return notifierCall{}, false
	}
	return n.calls[len(n.calls)-1], true
}

// mustJSON keeps test expectations readable when comparing nested values.
func mustJSON(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}
