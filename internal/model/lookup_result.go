package model

// LookupError is the user-facing error of a failed lookup.
type LookupError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// LookupResult is one line of batch output.
type LookupResult struct {
	Address  string         `json:"address"`
	Snapshot *TokenSnapshot `json:"snapshot,omitempty"`
	Risk     *RiskContext   `json:"risk,omitempty"`
	Error    *LookupError   `json:"error,omitempty"`
}
