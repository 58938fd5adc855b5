package model

import "time"

// BaseToken identifies the token a snapshot was captured for.
type BaseToken struct {
	Address string `json:"address"`
	Symbol  string `json:"symbol"`
	Name    string `json:"name"`
}

// TokenSnapshot is the normalized market view of a token on its best pair.
// Numeric fields are nil when the provider did not supply a usable value.
type TokenSnapshot struct {
	ChainID      string    `json:"chain_id"`
	DexID        string    `json:"dex_id"`
	PairAddress  string    `json:"pair_address"`
	URL          string    `json:"url,omitempty"`
	BaseToken    BaseToken `json:"base_token"`
	PriceUSD     *float64  `json:"price_usd"`
	LiquidityUSD *float64  `json:"liquidity_usd"`
	FDVUSD       *float64  `json:"fdv_usd"`
	Volume24hUSD *float64  `json:"volume_24h_usd"`
	FetchedAt    time.Time `json:"fetched_at"`
}
