package models

import (
	"strings"
	"time"
)

type ClaimStatus string

const (
	StatusPending   ClaimStatus = "pending"
	StatusReviewing ClaimStatus = "reviewing"
	StatusApproved  ClaimStatus = "approved"
	StatusRejected  ClaimStatus = "rejected"
	StatusCompleted ClaimStatus = "completed"
)

// ActiveClaimStatuses are the statuses covered by the one-claim-per-purchase
// constraint. A purchase with a claim in any of these cannot be claimed again.
var ActiveClaimStatuses = []ClaimStatus{StatusPending, StatusReviewing, StatusApproved}

// Terminal reports whether no further transition is permitted out of s.
func (s ClaimStatus) Terminal() bool {
	return s == StatusRejected || s == StatusCompleted
}

// Resolved reports whether entering s must stamp resolved_at.
func (s ClaimStatus) Resolved() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCompleted
}

func (s ClaimStatus) Valid() bool {
	switch s {
	case StatusPending, StatusReviewing, StatusApproved, StatusRejected, StatusCompleted:
		return true
	}
	return false
}

// allowedTransitions encodes the review state machine. Marking a claim as
// reviewing is optional: pending may move straight to approved or rejected.
var allowedTransitions = map[ClaimStatus][]ClaimStatus{
	StatusPending:   {StatusReviewing, StatusApproved, StatusRejected},
	StatusReviewing: {StatusApproved, StatusRejected},
	StatusApproved:  {StatusCompleted},
}

// CanTransition reports whether the state machine permits from -> to.
func CanTransition(from, to ClaimStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type ClaimType string

const (
	ClaimTypeReplacement ClaimType = "replacement"
	ClaimTypeRefund      ClaimType = "refund"
	ClaimTypeRepair      ClaimType = "repair"
)

func (t ClaimType) Valid() bool {
	switch t {
	case ClaimTypeReplacement, ClaimTypeRefund, ClaimTypeRepair:
		return true
	}
	return false
}

// knownReasonCodes are the machine-readable prefixes a client may put in front
// of the free-text reason, separated by a colon.
var knownReasonCodes = map[string]bool{
	"cannot_login":     true,
	"account_disabled": true,
	"checkpoint":       true,
	"limited":          true,
	"other":            true,
}

// SplitReason separates an optional colon-prefixed reason code from the free
// text. Unknown or missing prefixes classify as "other" and the full input is
// kept as the detail.
func SplitReason(reason string) (code, detail string) {
	if idx := strings.Index(reason, ":"); idx > 0 {
		prefix := strings.ToLower(strings.TrimSpace(reason[:idx]))
		if knownReasonCodes[prefix] {
			return prefix, strings.TrimSpace(reason[idx+1:])
		}
	}
	return "other", strings.TrimSpace(reason)
}

// WarrantyClaim is a user-initiated dispute against a purchase.
type WarrantyClaim struct {
	ID                string            `json:"id"`
	UserID            string            `json:"user_id"`
	PurchaseID        string            `json:"purchase_id"`
	ClaimType         ClaimType         `json:"claim_type"`
	ReasonCode        string            `json:"reason_code"`
	ReasonDetail      string            `json:"reason_detail"`
	EvidenceURLs      []string          `json:"evidence_urls"`
	Status            ClaimStatus       `json:"status"`
	AdminNotes        *string           `json:"admin_notes,omitempty"`
	Screening         string            `json:"screening,omitempty"`
	ResolutionDetails map[string]string `json:"resolution_details,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
	ResolvedAt        *time.Time        `json:"resolved_at,omitempty"`

	// Denormalized product snapshot from the joined purchase, for display.
	ProductName     string `json:"product_name"`
	ProductType     string `json:"product_type"`
	ProductCategory string `json:"product_category"`
}

// RefundTransaction credits a user's balance for a completed refund claim.
// Immutable once created; one-to-one with the claim that produced it.
type RefundTransaction struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Amount     int64     `json:"amount"`
	Status     string    `json:"status"`
	ClaimID    string    `json:"claim_id"`
	PurchaseID string    `json:"purchase_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// SubmitClaimRequest is the member-facing submission payload. Reason may carry
// a colon-prefixed reason code; it is stored split into code and detail.
type SubmitClaimRequest struct {
	PurchaseID   string    `json:"purchase_id"`
	ClaimType    ClaimType `json:"claim_type"`
	Reason       string    `json:"reason"`
	EvidenceURLs []string  `json:"evidence_urls"`
}

// ClaimFilter narrows admin claim listings.
type ClaimFilter struct {
	Status *ClaimStatus
	UserID string
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// ClaimStats aggregates claim counts per status for a user or globally.
type ClaimStats struct {
	Pending     int     `json:"pending"`
	Reviewing   int     `json:"reviewing"`
	Approved    int     `json:"approved"`
	Rejected    int     `json:"rejected"`
	Completed   int     `json:"completed"`
	Total       int     `json:"total"`
	SuccessRate float64 `json:"success_rate"`
}

// Finalize recomputes the derived fields from the per-status counts.
// Success rate is approved+completed over all resolved claims.
func (s *ClaimStats) Finalize() {
	s.Total = s.Pending + s.Reviewing + s.Approved + s.Rejected + s.Completed
	resolved := s.Approved + s.Rejected + s.Completed
	if resolved == 0 {
		s.SuccessRate = 0
		return
	}
	s.SuccessRate = float64(s.Approved+s.Completed) / float64(resolved)
}

// Add records one claim of the given status.
func (s *ClaimStats) Add(status ClaimStatus, count int) {
	switch status {
	case StatusPending:
		s.Pending += count
	case StatusReviewing:
		s.Reviewing += count
	case StatusApproved:
		s.Approved += count
	case StatusRejected:
		s.Rejected += count
	case StatusCompleted:
		s.Completed += count
	}
}
