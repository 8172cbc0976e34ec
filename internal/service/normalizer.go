package service

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"affiliate-tracking-service/internal/model"
)

// Normalize maps a raw postback payload (JSON body or query string) to a
// canonical event. Advertiser integrations disagree on field naming, so
// both snake_case and camelCase variants are accepted; the first
// non-empty variant wins.
func Normalize(raw map[string]any) (model.NormalizedEvent, error) {
	offerRaw := stringField(raw, "offer_id", "offerId")
	if offerRaw == "" {
		return model.NormalizedEvent{}, &ValidationError{Message: "offer_id is required"}
	}
	offerID, err := strconv.ParseInt(offerRaw, 10, 64)
	if err != nil {
		return model.NormalizedEvent{}, &ValidationError{Message: "invalid offer_id"}
	}

	amount, err := amountField(raw, "amount")
	if err != nil {
		return model.NormalizedEvent{}, err
	}

	return model.NormalizedEvent{
		OfferID:  offerID,
		TxID:     stringField(raw, "tx_id", "txId"),
		Type:     ParseConversionType(stringField(raw, "event", "type")),
		Amount:   amount,
		Currency: stringField(raw, "currency"),
		ClickID:  stringField(raw, "click_id", "clickId"),
		SubID:    stringField(raw, "sub_id", "subId"),
	}, nil
}

// ParseConversionType maps a free-text event name to the closed enum.
// Unrecognized names fall back to REG rather than rejecting the request;
// existing integrations depend on that behavior.
func ParseConversionType(raw string) model.ConversionType {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "DEP", "DEPOSIT":
		return model.ConversionDep
	case "REBILL":
		return model.ConversionRebill
	case "SALE", "PURCHASE":
		return model.ConversionSale
	case "LEAD":
		return model.ConversionLead
	default:
		return model.ConversionReg
	}
}

// stringField returns the first non-empty value among the given keys.
// JSON numbers are tolerated for identifier fields since some senders
// emit numeric offer or transaction ids.
func stringField(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := raw[key].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case json.Number:
			if s := v.String(); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// amountField parses an optional monetary amount. Absence is fine (REG
// and LEAD events carry no money) but a present, malformed amount is a
// hard validation error.
func amountField(raw map[string]any, key string) (*float64, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return nil, nil
	}
	var parsed float64
	switch val := v.(type) {
	case float64:
		parsed = val
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return nil, &ValidationError{Message: "invalid amount"}
		}
		parsed = f
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return nil, &ValidationError{Message: "invalid amount"}
		}
		parsed = f
	default:
		return nil, &ValidationError{Message: "invalid amount"}
	}
	if math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return nil, &ValidationError{Message: "invalid amount"}
	}
	return &parsed, nil
}
