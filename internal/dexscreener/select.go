package dexscreener

import (
	"sort"
	"strings"
)

// selectBestPair picks the chain's pair with the highest USD liquidity. Pairs
// without a liquidity figure never beat one that has it; ties keep the first.
func selectBestPair(pairs []pairRecord, chain string) (pairRecord, bool) {
	var best pairRecord
	found := false
	for _, p := range pairs {
		if !strings.EqualFold(p.ChainID, chain) {
			continue
		}
		if !found {
			best, found = p, true
			continue
		}
		if p.LiquidityUSD == nil {
			continue
		}
		if best.LiquidityUSD == nil || *p.LiquidityUSD > *best.LiquidityUSD {
			best = p
		}
	}
	return best, found
}

// foundChains lists the distinct lower-cased chain ids across all pairs.
func foundChains(pairs []pairRecord) []string {
	set := make(map[string]struct{})
	for _, p := range pairs {
		if p.ChainID == "" {
			continue
		}
		set[strings.ToLower(p.ChainID)] = struct{}{}
	}

	chains := make([]string, 0, len(set))
	for c := range set {
		chains = append(chains, c)
	}
	sort.Strings(chains)
	return chains
}
