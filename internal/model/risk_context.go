package model

import "encoding/json"

// RiskLevel is the three-tier classification of a risk score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// DerivedRatios are the diagnostic ratios used while scoring.
type DerivedRatios struct {
	LiqToFDV *float64 `json:"liq_to_fdv"`
	VolToLiq *float64 `json:"vol_to_liq"`
}

// RiskContext is a descriptive annotation of a TokenSnapshot. It is not a forecast.
type RiskContext struct {
	Score     int           `json:"score"`
	RiskLevel RiskLevel     `json:"risk_level"`
	Warnings  []string      `json:"warnings"`
	Summary   string        `json:"summary"`
	Derived   DerivedRatios `json:"derived"`
}

// MarshalJSON keeps an empty warning list encoded as [] rather than null.
func (rc RiskContext) MarshalJSON() ([]byte, error) {
	type Alias RiskContext
	a := Alias(rc)
	if a.Warnings == nil {
		a.Warnings = []string{}
	}
	return json.Marshal(a)
}
