package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/yourusername/revlimiter/pkg/revlimiter"
)

// Handler serves admission checks for one throttled route.
// It owns the wire format only; every decision is delegated to the
// route's Throttler.
type Handler struct {
	route     string
	throttler *revlimiter.Throttler
	metrics   MetricsRecorder
	now       func() time.Time
}

// MetricsRecorder defines the interface for recording admission outcomes
type MetricsRecorder interface {
	RecordDecision(route string, allowed bool)
}

// NewHandler creates an admission handler for a route.
// metrics may be nil to disable recording.
func NewHandler(route string, throttler *revlimiter.Throttler, metrics MetricsRecorder) *Handler {
	return &Handler{
		route:     route,
		throttler: throttler,
		metrics:   metrics,
		now:       time.Now,
	}
}

// AdmitRequest represents the incoming admission check request
type AdmitRequest struct {
	RequesterID string `json:"requester_id"` // Required: who is being throttled (typically a token)
	ResourceID  string `json:"resource_id"`  // Required: what is being throttled (e.g. "api.example.com/resource")

	// ThrottleParams is an arbitrary bag of extra parameters. It is a
	// reserved extension point: accepted and currently unused, but an
	// explicit null is rejected at decode time.
	ThrottleParams json.RawMessage `json:"throttle_params,omitempty"`
}

// AdmitResponse represents the admission check response
type AdmitResponse struct {
	AllowRequest  bool    `json:"allow_request"`  // True means don't throttle
	DenialDetails *string `json:"denial_details"` // Message to the requester; null when allowed
}

// ErrorResponse represents a decode or validation failure
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

var jsonNull = []byte("null")

// ServeHTTP handles POST requests carrying an AdmitRequest.
// Malformed requests are rejected here; the throttler core is only
// invoked once the input is known to be well-formed.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Only POST requests are allowed")
		return
	}

	var req AdmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	if req.RequesterID == "" {
		h.sendError(w, http.StatusBadRequest, "missing_requester_id", "requester_id is required")
		return
	}
	if req.ResourceID == "" {
		h.sendError(w, http.StatusBadRequest, "missing_resource_id", "resource_id is required")
		return
	}
	if bytes.Equal(bytes.TrimSpace(req.ThrottleParams), jsonNull) {
		h.sendError(w, http.StatusBadRequest, "null_throttle_params", "throttle_params must not be null")
		return
	}

	decision := h.throttler.Admit(req.ResourceID, req.RequesterID, h.now())

	if h.metrics != nil {
		h.metrics.RecordDecision(h.route, decision.Allow)
	}

	resp := AdmitResponse{AllowRequest: decision.Allow}
	if !decision.Allow {
		resp.DenialDetails = &decision.DenialDetails
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// sendError writes a JSON error response
func (h *Handler) sendError(w http.ResponseWriter, status int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errCode,
		Message: message,
	})
}
