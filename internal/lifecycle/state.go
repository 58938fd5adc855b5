package lifecycle

import "tokenScope/internal/model"

// Status is the visible phase of a lookup session.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// State is what the presentation layer renders. Snapshot and Risk are set only
// on success; Error only on error.
type State struct {
	Status    Status               `json:"status"`
	RequestID uint64               `json:"request_id"`
	Address   string               `json:"address,omitempty"`
	Snapshot  *model.TokenSnapshot `json:"snapshot,omitempty"`
	Risk      *model.RiskContext   `json:"risk,omitempty"`
	Error     string               `json:"error,omitempty"`
	ErrorKind string               `json:"error_kind,omitempty"`
}

// KindUnexpected labels errors that did not come from the fetcher taxonomy.
const KindUnexpected = "UNEXPECTED"

// Result converts a settled state into the batch/HTTP result shape.
func (s State) Result() model.LookupResult {
	result := model.LookupResult{Address: s.Address}
	switch s.Status {
	case StatusSuccess:
		result.Snapshot = s.Snapshot
		result.Risk = s.Risk
	case StatusError:
		kind := s.ErrorKind
		if kind == "" {
			kind = KindUnexpected
		}
		result.Error = &model.LookupError{Kind: kind, Message: s.Error}
	}
	return result
}
