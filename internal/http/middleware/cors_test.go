package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORSOriginHandling(t *testing.T) {
	for _, tt := range []struct {
		name       string
		allowed    []string
		origin     string
		wantEchoed bool
	}{
		{"listed origin echoed", []string{"https://console.riverline.example.com"}, "https://console.riverline.example.com", true},
		{"unlisted origin ignored", []string{"https://console.riverline.example.com"}, "https://evil.example", false},
		{"wildcard echoes anything", []string{"*"}, "https://anywhere.example", true},
		{"blank entries skipped", []string{"", " "}, "https://anywhere.example", false},
	} {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()

			CORS(tt.allowed)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})).ServeHTTP(rec, req)

			got := rec.Header().Get("Access-Control-Allow-Origin")
			if tt.wantEchoed && got != tt.origin {
				t.Fatalf("allow-origin = %q, want %q", got, tt.origin)
			}
			if !tt.wantEchoed && got != "" {
				t.Fatalf("allow-origin = %q, want empty", got)
			}
		})
	}
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/borrowers", nil)
	req.Header.Set("Origin", "https://console.riverline.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()

	CORS([]string{"https://console.riverline.example.com"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("preflight must not hit the handler")
	})).ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if rec.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Fatal("expected allow-methods header on preflight")
	}
}
