package service

import "errors"

// ValidationError represents user input issues.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Offer eligibility failures on the redirect path. Both map to the same
// external OFFER_NOT_AVAILABLE response; the distinction is for logs.
var (
	ErrOfferNotFound    = errors.New("offer not found")
	ErrOfferNotEligible = errors.New("offer not eligible")
)
