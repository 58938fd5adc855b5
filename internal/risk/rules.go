package risk

// hit is one triggered rule component.
type hit struct {
	points  int
	warning string
}

const (
	thinLiquidityUSD     = 50_000
	lowLiquidityUSD      = 250_000
	moderateLiquidityUSD = 1_000_000

	veryLowLiqToFDV  = 0.002
	lowLiqToFDV      = 0.01
	moderateLiqToFDV = 0.03

	lowVolToLiq      = 0.05
	moderateVolToLiq = 0.2
	highVolToLiq     = 1.0
)

func scoreLiquidity(liquidityUSD *float64) []hit {
	if liquidityUSD == nil {
		return []hit{{35, "Liquidity data unavailable (treated as elevated risk)."}}
	}

	v := *liquidityUSD
	switch {
	case v < thinLiquidityUSD:
		return []hit{{35, "Thin liquidity (< $50k)."}}
	case v < lowLiquidityUSD:
		return []hit{{20, "Low liquidity ($50k–$250k)."}}
	case v < moderateLiquidityUSD:
		return []hit{{10, "Moderate liquidity ($250k–$1m)."}}
	}
	return nil
}

func scoreLiquidityToFDV(liqToFDV *float64, fdvUSD *float64) []hit {
	switch {
	case fdvUSD == nil:
		return []hit{{15, "FDV data unavailable (risk context may be incomplete)."}}
	case *fdvUSD <= 0:
		return []hit{{15, "FDV is non-positive (risk context may be incomplete)."}}
	case liqToFDV == nil:
		return []hit{{15, "Unable to compute liquidity-to-FDV ratio (risk context may be incomplete)."}}
	}

	r := *liqToFDV
	switch {
	case r < veryLowLiqToFDV:
		return []hit{{25, "Very low liquidity relative to FDV (liq/FDV < 0.002)."}}
	case r < lowLiqToFDV:
		return []hit{{15, "Low liquidity relative to FDV (liq/FDV 0.002–0.01)."}}
	case r < moderateLiqToFDV:
		return []hit{{5, "Moderate liquidity relative to FDV (liq/FDV 0.01–0.03)."}}
	}
	return nil
}

// scoreVolume flags both stale and unusually heavy turnover.
func scoreVolume(volToLiq *float64, volume24hUSD *float64) []hit {
	switch {
	case volume24hUSD == nil:
		return []hit{{10, "24h volume data unavailable (risk context may be incomplete)."}}
	case *volume24hUSD < 0:
		return []hit{{10, "24h volume is negative (risk context may be incomplete)."}}
	case volToLiq == nil:
		return []hit{{10, "Unable to compute volume-to-liquidity ratio (risk context may be incomplete)."}}
	}

	r := *volToLiq
	switch {
	case r < lowVolToLiq:
		return []hit{{20, "Low volume relative to liquidity (vol/liq < 0.05)."}}
	case r < moderateVolToLiq:
		return []hit{{10, "Moderate volume relative to liquidity (vol/liq 0.05–0.2)."}}
	case r < highVolToLiq:
		return nil
	}
	return []hit{{10, "Very high volume relative to liquidity (vol/liq ≥ 1.0)."}}
}
