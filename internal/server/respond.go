package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/desertthunder/moviex/internal/services"
	"github.com/desertthunder/moviex/internal/shared"
)

// Error codes carried in [ErrorResponse].
const (
	CodeBadRequest  = "BAD_REQUEST"
	CodeNotFound    = "NOT_FOUND"
	CodeConflict    = "SYNC_IN_PROGRESS"
	CodeRateLimited = "RATE_LIMITED"
	CodeUpstream    = "UPSTREAM_ERROR"
	CodeNetwork     = "NETWORK_ERROR"
	CodeStorage     = "STORAGE_ERROR"
	CodeInternal    = "INTERNAL"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Status    int    `json:"status,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes an [ErrorResponse].
func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	WriteJSON(w, status, ErrorResponse{
		Error:     message,
		Code:      code,
		RequestID: RequestIDFromContext(r.Context()),
	})
}

// WriteFailure maps err onto a status and code and writes it. The failure message is
// passed through; Status carries the upstream HTTP status when there was one.
func WriteFailure(w http.ResponseWriter, r *http.Request, err error) {
	f := shared.AsFailure(err)
	status, code := classify(f)
	WriteJSON(w, status, ErrorResponse{
		Error:     f.Message,
		Code:      code,
		Status:    f.Code,
		RequestID: RequestIDFromContext(r.Context()),
	})
}

func classify(f *shared.Failure) (int, string) {
	switch {
	case errors.Is(f, shared.ErrMovieNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(f, shared.ErrInvalidArgument):
		return http.StatusBadRequest, CodeBadRequest
	case errors.Is(f, shared.ErrSyncInProgress):
		return http.StatusConflict, CodeConflict
	case f.HasCode():
		return http.StatusBadGateway, CodeUpstream
	case f.Message == services.NetworkMessage:
		return http.StatusServiceUnavailable, CodeNetwork
	case strings.HasPrefix(f.Message, "Storage Error"):
		return http.StatusInternalServerError, CodeStorage
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}
