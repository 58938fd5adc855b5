package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"tokenScope/internal/dexscreener"
	"tokenScope/internal/lifecycle"
	"tokenScope/internal/model"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleRisk(w http.ResponseWriter, r *http.Request) {
	state := s.newController().Lookup(r.Context(), r.PathValue("address"))

	switch state.Status {
	case lifecycle.StatusSuccess:
		writeJSON(w, http.StatusOK, state.Result())
	case lifecycle.StatusError:
		result := state.Result()
		writeJSON(w, statusFor(result.Error), result)
	default:
		// Client went away before the lookup settled.
		s.logger.Debug("risk request abandoned", zap.String("address", state.Address))
	}
}

func statusFor(lookupErr *model.LookupError) int {
	if lookupErr == nil {
		return http.StatusInternalServerError
	}
	switch dexscreener.Kind(lookupErr.Kind) {
	case dexscreener.KindInvalidAddress:
		return http.StatusBadRequest
	case dexscreener.KindNotFound:
		return http.StatusNotFound
	case dexscreener.KindUnsupportedChain:
		return http.StatusUnprocessableEntity
	case dexscreener.KindRateLimited:
		return http.StatusTooManyRequests
	case dexscreener.KindNetworkError, dexscreener.KindAPIError, dexscreener.KindParseError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
