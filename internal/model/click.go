package model

import "time"

// Click is a single recorded visit through a tracking redirect. Rows are
// append-only: created once when the redirect is followed, never updated.
type Click struct {
	ID        int64
	ClickID   string
	OfferID   int64
	UserID    *int64
	SubID     string
	Sub2      string
	Sub3      string
	Sub4      string
	Sub5      string
	Source    string
	Campaign  string
	Adset     string
	Creative  string
	IP        string
	UserAgent string
	Referrer  string
	CreatedAt time.Time
}

// RedirectTarget is the outcome of recording a click: where to send the
// visitor, plus the identifier minted for the click.
type RedirectTarget struct {
	URL     string
	ClickID string
}
