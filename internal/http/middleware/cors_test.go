package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORS(t *testing.T) {
	tests := []struct {
		name            string
		allowed         []string
		method          string
		origin          string
		preflight       bool
		wantOrigin      string
		wantCredentials bool
		wantStatus      int
		wantCalled      bool
	}{
		{"listed origin", []string{"https://clinic.example.com/"}, http.MethodPost, "https://clinic.example.com", false, "https://clinic.example.com", true, http.StatusOK, true},
		{"unknown origin", []string{"https://clinic.example.com"}, http.MethodGet, "https://evil.example", false, "", false, http.StatusOK, true},
		{"wildcard", []string{"*"}, http.MethodGet, "https://random.example", false, "https://random.example", false, http.StatusOK, true},
		{"no origin", []string{"*"}, http.MethodGet, "", false, "", false, http.StatusOK, true},
		{"preflight", []string{"https://clinic.example.com"}, http.MethodOptions, "https://clinic.example.com", true, "https://clinic.example.com", true, http.StatusNoContent, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := CORS(tt.allowed)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(tt.method, "/chat/message", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", "POST")
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if called != tt.wantCalled {
				t.Fatalf("handler called = %v, want %v", called, tt.wantCalled)
			}
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Fatalf("allow origin = %q, want %q", got, tt.wantOrigin)
			}
			if got := rec.Header().Get("Access-Control-Allow-Credentials") == "true"; got != tt.wantCredentials {
				t.Fatalf("credentials = %v, want %v", got, tt.wantCredentials)
			}
			if tt.wantOrigin != "" && rec.Header().Get("Access-Control-Allow-Headers") != corsAllowedHeaders {
				t.Fatalf("expected allow headers")
			}
		})
	}
}
