package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/yourusername/revlimiter/core"
	"github.com/yourusername/revlimiter/pkg/revlimiter"
)

type recordedDecision struct {
	route   string
	allowed bool
}

type fakeRecorder struct {
	decisions []recordedDecision
}

func (r *fakeRecorder) RecordDecision(route string, allowed bool) {
	r.decisions = append(r.decisions, recordedDecision{route, allowed})
}

func newTestHandler(t *testing.T, settings core.Settings, metrics MetricsRecorder) *Handler {
	t.Helper()
	throttler, err := revlimiter.New(settings)
	if err != nil {
		t.Fatalf("revlimiter.New() failed: %v", err)
	}
	return NewHandler("/limited", throttler, metrics)
}

func postAdmit(handler *Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/limited", strings.NewReader(body))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestServeHTTP_AllowsRequest(t *testing.T) {
	handler := newTestHandler(t, core.Settings{FillRate: 10, BucketMax: 100, BucketStart: 100}, nil)

	w := postAdmit(handler, `{"requester_id": "foouser", "resource_id": "barresource"}`)

	if w.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var resp AdmitResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !resp.AllowRequest {
		t.Error("request should be allowed")
	}
	if resp.DenialDetails != nil {
		t.Errorf("denial_details = %q, want null", *resp.DenialDetails)
	}
}

func TestServeHTTP_DeniesWhenDrained(t *testing.T) {
	handler := newTestHandler(t, core.Settings{FillRate: 0, BucketMax: 2, BucketStart: 2}, nil)

	body := `{"requester_id": "foouser", "resource_id": "barresource"}`
	for i := 0; i < 2; i++ {
		w := postAdmit(handler, body)
		var resp AdmitResponse
		json.NewDecoder(w.Body).Decode(&resp)
		if !resp.AllowRequest {
			t.Fatalf("admit %d should be allowed", i+1)
		}
	}

	// Bucket is empty; the decision still travels as HTTP 200, the
	// denial is in the payload.
	w := postAdmit(handler, body)
	if w.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp AdmitResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.AllowRequest {
		t.Error("request should be denied")
	}
	if resp.DenialDetails == nil || *resp.DenialDetails == "" {
		t.Error("denial_details should carry a message when denied")
	}
}

func TestServeHTTP_DenialDetailsNullOnWire(t *testing.T) {
	handler := newTestHandler(t, core.Settings{FillRate: 10, BucketMax: 100, BucketStart: 100}, nil)

	w := postAdmit(handler, `{"requester_id": "foouser", "resource_id": "barresource"}`)

	// The field must be present and explicitly null when allowed.
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decoding raw response: %v", err)
	}
	details, ok := raw["denial_details"]
	if !ok {
		t.Fatal("denial_details field missing from response")
	}
	if !bytes.Equal(bytes.TrimSpace(details), []byte("null")) {
		t.Errorf("denial_details = %s, want null", details)
	}
}

func TestServeHTTP_MalformedRequests(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantError string
	}{
		{
			name:      "invalid json",
			body:      `{not json`,
			wantError: "invalid_request",
		},
		{
			name:      "missing requester_id",
			body:      `{"resource_id": "barresource"}`,
			wantError: "missing_requester_id",
		},
		{
			name:      "empty requester_id",
			body:      `{"requester_id": "", "resource_id": "barresource"}`,
			wantError: "missing_requester_id",
		},
		{
			name:      "missing resource_id",
			body:      `{"requester_id": "foouser"}`,
			wantError: "missing_resource_id",
		},
		{
			name:      "explicit null throttle_params",
			body:      `{"requester_id": "foouser", "resource_id": "barresource", "throttle_params": null}`,
			wantError: "null_throttle_params",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := &fakeRecorder{}
			handler := newTestHandler(t, core.Settings{FillRate: 10, BucketMax: 100, BucketStart: 100}, recorder)

			w := postAdmit(handler, tt.body)

			if w.Code != http.StatusBadRequest {
				t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
			}

			var resp ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("decoding error response: %v", err)
			}
			if resp.Error != tt.wantError {
				t.Errorf("error = %q, want %q", resp.Error, tt.wantError)
			}

			// Malformed requests never reach the core or the metrics.
			if len(recorder.decisions) != 0 {
				t.Errorf("recorded %d decisions for a rejected request, want 0", len(recorder.decisions))
			}
		})
	}
}

func TestServeHTTP_ThrottleParamsAcceptedAndIgnored(t *testing.T) {
	handler := newTestHandler(t, core.Settings{FillRate: 10, BucketMax: 100, BucketStart: 100}, nil)

	bodies := []string{
		`{"requester_id": "foouser", "resource_id": "barresource"}`,
		`{"requester_id": "foouser", "resource_id": "barresource", "throttle_params": {}}`,
		`{"requester_id": "foouser", "resource_id": "barresource", "throttle_params": {"weight": 3}}`,
	}

	for _, body := range bodies {
		w := postAdmit(handler, body)
		if w.Code != http.StatusOK {
			t.Errorf("Status = %d for body %s, want %d", w.Code, body, http.StatusOK)
		}
	}
}

func TestServeHTTP_MethodNotAllowed(t *testing.T) {
	handler := newTestHandler(t, core.Settings{FillRate: 10, BucketMax: 100, BucketStart: 100}, nil)

	req := httptest.NewRequest(http.MethodGet, "/limited", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}
}

func TestServeHTTP_RecordsMetrics(t *testing.T) {
	recorder := &fakeRecorder{}
	handler := newTestHandler(t, core.Settings{FillRate: 0, BucketMax: 1, BucketStart: 1}, recorder)

	body := `{"requester_id": "foouser", "resource_id": "barresource"}`
	postAdmit(handler, body)
	postAdmit(handler, body)

	want := []recordedDecision{
		{route: "/limited", allowed: true},
		{route: "/limited", allowed: false},
	}
	if len(recorder.decisions) != len(want) {
		t.Fatalf("recorded %d decisions, want %d", len(recorder.decisions), len(want))
	}
	for i, d := range want {
		if recorder.decisions[i] != d {
			t.Errorf("decision %d = %+v, want %+v", i, recorder.decisions[i], d)
		}
	}
}

func TestServeHTTP_InjectedClock(t *testing.T) {
	throttler, err := revlimiter.New(core.Settings{FillRate: 1, BucketMax: 2, BucketStart: 2})
	if err != nil {
		t.Fatalf("revlimiter.New() failed: %v", err)
	}
	handler := NewHandler("/limited", throttler, nil)

	now := time.Unix(1000, 0)
	handler.now = func() time.Time { return now }

	body := `{"requester_id": "foouser", "resource_id": "barresource"}`

	outcomes := []bool{true, true, false}
	for i, want := range outcomes {
		w := postAdmit(handler, body)
		var resp AdmitResponse
		json.NewDecoder(w.Body).Decode(&resp)
		if resp.AllowRequest != want {
			t.Errorf("admit %d at t=0: allow = %v, want %v", i+1, resp.AllowRequest, want)
		}
	}

	// Two seconds later the bucket has refilled back to max.
	now = now.Add(2 * time.Second)
	w := postAdmit(handler, body)
	var resp AdmitResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if !resp.AllowRequest {
		t.Error("admit after refill window should be allowed")
	}
}
