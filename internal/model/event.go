package model

import "time"

// CalculatorTokenPrice is the calculator identifier attached to risk context events.
const CalculatorTokenPrice = "token-price"

// Event is the analytics signal emitted after a successful risk computation.
// It deliberately carries no address, score or warnings.
type Event struct {
	Name       string    `json:"name"`
	Calculator string    `json:"calculator"`
	RiskLevel  RiskLevel `json:"risk_level"`
	OccurredAt time.Time `json:"occurred_at"`
}
