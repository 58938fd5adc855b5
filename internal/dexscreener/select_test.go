package dexscreener

import (
	"reflect"
	"testing"
)

func f(v float64) *float64 { return &v }

func TestSelectBestPair(t *testing.T) {
	cases := []struct {
		name  string
		pairs []pairRecord
		want  string
		found bool
	}{
		{
			name: "highest liquidity wins",
			pairs: []pairRecord{
				{ChainID: "ethereum", PairAddress: "a", LiquidityUSD: f(10)},
				{ChainID: "ethereum", PairAddress: "b", LiquidityUSD: f(30)},
				{ChainID: "ethereum", PairAddress: "c", LiquidityUSD: f(20)},
			},
			want:  "b",
			found: true,
		},
		{
			name: "tie keeps first",
			pairs: []pairRecord{
				{ChainID: "ethereum", PairAddress: "a", LiquidityUSD: f(10)},
				{ChainID: "ethereum", PairAddress: "b", LiquidityUSD: f(10)},
			},
			want:  "a",
			found: true,
		},
		{
			name: "unknown liquidity never beats a figure",
			pairs: []pairRecord{
				{ChainID: "ethereum", PairAddress: "a"},
				{ChainID: "ethereum", PairAddress: "b", LiquidityUSD: f(-5)},
				{ChainID: "ethereum", PairAddress: "c"},
			},
			want:  "b",
			found: true,
		},
		{
			name: "all unknown keeps first",
			pairs: []pairRecord{
				{ChainID: "ethereum", PairAddress: "a"},
				{ChainID: "ethereum", PairAddress: "b"},
			},
			want:  "a",
			found: true,
		},
		{
			name: "chain compare is case-insensitive",
			pairs: []pairRecord{
				{ChainID: "bsc", PairAddress: "a", LiquidityUSD: f(1e9)},
				{ChainID: "ETHEREUM", PairAddress: "b", LiquidityUSD: f(1)},
			},
			want:  "b",
			found: true,
		},
		{
			name:  "no matching chain",
			pairs: []pairRecord{{ChainID: "bsc", PairAddress: "a"}},
		},
	}

	for _, tc := range cases {
		got, ok := selectBestPair(tc.pairs, "ethereum")
		if ok != tc.found {
			t.Fatalf("%s: found = %v, want %v", tc.name, ok, tc.found)
		}
		if ok && got.PairAddress != tc.want {
			t.Fatalf("%s: selected %s, want %s", tc.name, got.PairAddress, tc.want)
		}
	}
}

func TestFoundChains(t *testing.T) {
	got := foundChains([]pairRecord{
		{ChainID: "Solana"},
		{ChainID: "bsc"},
		{ChainID: ""},
		{ChainID: "solana"},
		{ChainID: "ethereum"},
	})
	want := []string{"bsc", "ethereum", "solana"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("chains mismatch: %v != %v", got, want)
	}
}
