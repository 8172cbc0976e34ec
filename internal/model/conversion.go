package model

import "time"

// ConversionType is the closed set of outcomes a postback can report.
type ConversionType string

const (
	ConversionReg    ConversionType = "REG"
	ConversionDep    ConversionType = "DEP"
	ConversionRebill ConversionType = "REBILL"
	ConversionSale   ConversionType = "SALE"
	ConversionLead   ConversionType = "LEAD"
)

// Conversion is a reported outcome attributed to an offer and, where
// attribution succeeded, a user. When TxID is present the pair
// (OfferID, TxID) is unique and redelivery updates the row in place.
type Conversion struct {
	ID        int64
	OfferID   int64
	TxID      string
	Type      ConversionType
	Amount    *float64
	Currency  string
	UserID    *int64
	SubID     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NormalizedEvent is the canonical form of an inbound postback after
// alias resolution and type mapping.
type NormalizedEvent struct {
	OfferID  int64
	TxID     string
	Type     ConversionType
	Amount   *float64
	Currency string
	ClickID  string
	SubID    string
}
