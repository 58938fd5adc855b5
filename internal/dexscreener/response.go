package dexscreener

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// pairRecord is a validated view of one provider pair. Every field is optional
// upstream, so absent or mistyped values are left empty or nil.
type pairRecord struct {
	ChainID      string
	DexID        string
	PairAddress  string
	URL          string
	BaseAddress  string
	BaseSymbol   string
	BaseName     string
	PriceUSD     *float64
	LiquidityUSD *float64
	FDV          *float64
	Volume24h    *float64
}

// parsePairs decodes a token lookup body. The envelope must be a JSON object and
// "pairs", when present and non-null, an array of objects.
func parsePairs(body []byte) ([]pairRecord, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if envelope == nil {
		return nil, fmt.Errorf("decode envelope: body is null")
	}

	raw, ok := envelope["pairs"]
	if !ok || isNull(raw) {
		return nil, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode pairs: %w", err)
	}

	pairs := make([]pairRecord, 0, len(items))
	for i, item := range items {
		obj, err := asObject(item)
		if err != nil {
			return nil, fmt.Errorf("decode pair %d: %w", i, err)
		}

		base := lenientObject(obj["baseToken"])
		pairs = append(pairs, pairRecord{
			ChainID:      stringField(obj["chainId"]),
			DexID:        stringField(obj["dexId"]),
			PairAddress:  stringField(obj["pairAddress"]),
			URL:          stringField(obj["url"]),
			BaseAddress:  stringField(base["address"]),
			BaseSymbol:   stringField(base["symbol"]),
			BaseName:     stringField(base["name"]),
			PriceUSD:     numberField(obj["priceUsd"]),
			LiquidityUSD: numberField(lenientObject(obj["liquidity"])["usd"]),
			FDV:          numberField(obj["fdv"]),
			Volume24h:    numberField(lenientObject(obj["volume"])["h24"]),
		})
	}
	return pairs, nil
}

func asObject(raw json.RawMessage) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("pair is null")
	}
	return obj, nil
}

// lenientObject returns nil for anything that is not a JSON object.
func lenientObject(raw json.RawMessage) map[string]json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil
	}
	return obj
}

func stringField(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// numberField accepts a JSON number or a numeric string and returns nil for
// anything else, including values that do not fit a finite float64.
func numberField(raw json.RawMessage) *float64 {
	if len(raw) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil
	}

	switch typed := v.(type) {
	case json.Number:
		return finiteFloat(typed.String())
	case string:
		return finiteFloat(strings.TrimSpace(typed))
	default:
		return nil
	}
}

func finiteFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
