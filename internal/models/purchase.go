package models

import "time"

type PurchaseStatus string

const (
	PurchaseActive   PurchaseStatus = "active"
	PurchaseDisabled PurchaseStatus = "disabled"
	PurchaseClaimed  PurchaseStatus = "claimed"
)

// Purchase is one purchased account/unit with its own warranty window.
// Owned by the checkout subsystem; this service reads it.
type Purchase struct {
	ID                string            `json:"id"`
	UserID            string            `json:"user_id"`
	ProductID         string            `json:"product_id"`
	ProductName       string            `json:"product_name"`
	ProductType       string            `json:"product_type"`
	ProductCategory   string            `json:"product_category"`
	Price             int64             `json:"price"`
	AccountDetails    map[string]string `json:"account_details"`
	WarrantyExpiresAt *time.Time        `json:"warranty_expires_at"`
	Status            PurchaseStatus    `json:"status"`
	CreatedAt         time.Time         `json:"created_at"`
}

// WarrantyValid reports whether the purchase has a warranty that is still
// running at the given instant.
func (p *Purchase) WarrantyValid(now time.Time) bool {
	return p.WarrantyExpiresAt != nil && p.WarrantyExpiresAt.After(now)
}

// WarrantyDaysLeft computes whole days remaining from expiry minus now, in a
// single unit. Returns 0 once expired.
func WarrantyDaysLeft(expiresAt, now time.Time) int {
	remaining := expiresAt.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int(remaining.Hours() / 24)
}

// EligibleAccount is a purchase that currently qualifies for a new claim,
// enriched for display.
type EligibleAccount struct {
	Purchase
	WarrantyDays int `json:"warranty_days_left"`
}
