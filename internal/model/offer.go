package model

import "time"

// Offer statuses as stored by the admin subsystem. The pipeline only
// cares whether an offer is active.
const (
	OfferStatusActive = "active"
	OfferStatusPaused = "paused"
)

// Offer is a campaign definition. This pipeline reads offers, it never
// writes them; the admin CRUD subsystem owns the full lifecycle.
type Offer struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Payout    *float64  `json:"payout"`
	Currency  string    `json:"currency"`
	Status    string    `json:"status"`
	Hidden    bool      `json:"hidden"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Eligible reports whether traffic may be redirected through this offer:
// it must be active, visible, and have a destination URL configured.
func (o *Offer) Eligible() bool {
	return o.Status == OfferStatusActive && !o.Hidden && o.URL != ""
}
