package viewmodel

import (
	"bytes"
	"encoding/json"

	"github.com/rileyhilliard/storelens/internal/errors"
)

type forecastPayload struct {
	DS        *[]string  `json:"ds"`
	YHat      *[]float64 `json:"yhat"`
	YHatLower *[]float64 `json:"yhat_lower"`
	YHatUpper *[]float64 `json:"yhat_upper"`
}

type insightRow struct {
	KPI            *string          `json:"kpi"`
	Value          *json.RawMessage `json:"value"`
	Recommendation *string          `json:"recommendation"`
}

type basketRow struct {
	Pair       *json.RawMessage `json:"pair"`
	Confidence *float64         `json:"confidence"`
	Lift       *float64         `json:"lift"`
}

type segmentRow struct {
	SegmentName   *string  `json:"segment_name"`
	TotalSpend    *float64 `json:"total_spend"`
	CustomerCount *float64 `json:"customer_count"`
}

type seasonalRow struct {
	Month      *json.RawMessage `json:"month"`
	TotalPrice *float64         `json:"total_price"`
}

type dailyRow struct {
	DayOfWeek  *string  `json:"day_of_week"`
	TotalPrice *float64 `json:"total_price"`
}

type hourlyRow struct {
	Hour       *float64 `json:"hour"`
	TotalPrice *float64 `json:"total_price"`
}

type timeHabitsPayload struct {
	DailySales  *[]dailyRow  `json:"daily_sales"`
	HourlySales *[]hourlyRow `json:"hourly_sales"`
}

type sentimentRow struct {
	Sentiment *string  `json:"sentiment"`
	Count     *float64 `json:"count"`
}

type personaRow struct {
	Persona  *string  `json:"persona"`
	AvgSpend *float64 `json:"avg_spend"`
	TxnCount *float64 `json:"txn_count"`
}

// decodeObject decodes a JSON object payload into v.
func decodeObject(tag string, payload []byte, v interface{}) error {
	if first(payload) != '{' {
		return errors.Schemaf("%s: expected a JSON object", tag)
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return errors.WrapWithCode(err, errors.ErrSchema, tag+": payload does not match the expected shape", "")
	}
	return nil
}

// decodeArray decodes a JSON array payload into v.
func decodeArray(tag string, payload []byte, v interface{}) error {
	if first(payload) != '[' {
		return errors.Schemaf("%s: expected a JSON array", tag)
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return errors.WrapWithCode(err, errors.ErrSchema, tag+": payload does not match the expected shape", "")
	}
	return nil
}

func first(b []byte) byte {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return 0
	}
	return b[0]
}

func missing(tag string, i int, field string) error {
	return errors.Schemaf("%s: item %d is missing %q", tag, i, field)
}

// text renders a scalar JSON value (string or number) as display text.
func text(raw *json.RawMessage) (string, bool) {
	if raw == nil {
		return "", false
	}
	var s string
	if err := json.Unmarshal(*raw, &s); err == nil {
		return s, true
	}
	var n json.Number
	if err := json.Unmarshal(*raw, &n); err == nil {
		return n.String(), true
	}
	return "", false
}

// pairText accepts a pair as a string or a two-element array.
func pairText(raw *json.RawMessage) (string, bool) {
	if s, ok := text(raw); ok {
		return s, true
	}
	if raw == nil {
		return "", false
	}
	var parts []string
	if err := json.Unmarshal(*raw, &parts); err == nil && len(parts) > 0 {
		out := parts[0]
		for _, p := range parts[1:] {
			out += " + " + p
		}
		return out, true
	}
	return "", false
}
