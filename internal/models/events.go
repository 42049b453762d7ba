package models

import "time"

type ClaimEventType string

const (
	ClaimInserted ClaimEventType = "claim.inserted"
	ClaimUpdated  ClaimEventType = "claim.updated"
	ClaimDeleted  ClaimEventType = "claim.deleted"
)

// StatusNotification is the semantic event the UI renders as a toast when a
// claim changes status. Emitted only when old and new status differ.
type StatusNotification struct {
	ClaimID   string      `json:"claim_id"`
	OldStatus ClaimStatus `json:"old_status"`
	NewStatus ClaimStatus `json:"new_status"`
}

// ClaimEvent is the typed payload fanned out on every claim mutation.
// Consumers treat events as idempotent cache refresh triggers, not as
// authoritative diffs: delivery order relative to the request that caused
// the change is not guaranteed.
type ClaimEvent struct {
	Type         ClaimEventType      `json:"type"`
	Claim        *WarrantyClaim      `json:"claim"`
	Notification *StatusNotification `json:"notification,omitempty"`
	At           time.Time           `json:"at"`
}
