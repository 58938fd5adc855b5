// Package risk derives a descriptive, point-based risk context from a token
// snapshot. Same numeric inputs always give the same result; nothing here
// predicts prices or gives advice.
package risk

import (
	"math"

	"tokenScope/internal/model"
)

const (
	highScore   = 55
	mediumScore = 25

	disclaimer = " This is context, not advice."
)

// Compute scores liquidity, liquidity-to-FDV and volume-to-liquidity and
// classifies the total. It only reads LiquidityUSD, FDVUSD and Volume24hUSD.
func Compute(snapshot model.TokenSnapshot) model.RiskContext {
	derived := computeDerived(snapshot)

	var hits []hit
	hits = append(hits, scoreLiquidity(snapshot.LiquidityUSD)...)
	hits = append(hits, scoreLiquidityToFDV(derived.LiqToFDV, snapshot.FDVUSD)...)
	hits = append(hits, scoreVolume(derived.VolToLiq, snapshot.Volume24hUSD)...)

	score := 0
	warnings := make([]string, 0, len(hits))
	for _, h := range hits {
		score += h.points
		warnings = append(warnings, h.warning)
	}

	level := classify(score)
	return model.RiskContext{
		Score:     score,
		RiskLevel: level,
		Warnings:  warnings,
		Summary:   summary(level, len(hits)),
		Derived:   derived,
	}
}

func computeDerived(snapshot model.TokenSnapshot) model.DerivedRatios {
	liq, fdv, vol := snapshot.LiquidityUSD, snapshot.FDVUSD, snapshot.Volume24hUSD

	var derived model.DerivedRatios
	if liq != nil && fdv != nil && *fdv > 0 {
		derived.LiqToFDV = ratio(*liq, *fdv)
	}
	if vol != nil && liq != nil && *liq > 0 {
		derived.VolToLiq = ratio(*vol, *liq)
	}
	return derived
}

// ratio returns nil when the quotient overflows float64.
func ratio(a, b float64) *float64 {
	r := a / b
	if math.IsInf(r, 0) || math.IsNaN(r) {
		return nil
	}
	return &r
}

func classify(score int) model.RiskLevel {
	switch {
	case score >= highScore:
		return model.RiskHigh
	case score >= mediumScore:
		return model.RiskMedium
	}
	return model.RiskLow
}

func summary(level model.RiskLevel, hits int) string {
	if hits == 0 {
		return "No risk flags were triggered by the current snapshot rules." + disclaimer
	}

	switch level {
	case model.RiskLow:
		return "Low risk flags based on the snapshot rules." + disclaimer
	case model.RiskMedium:
		return "Medium risk flags based on liquidity/valuation/volume signals." + disclaimer
	}
	return "High risk flags based on liquidity/valuation/volume signals." + disclaimer
}
