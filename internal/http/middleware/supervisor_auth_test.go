package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func supervisorToken(t *testing.T, secret string) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "supervisor-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(10 * time.Minute)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestSupervisorJWTRejects(t *testing.T) {
	for _, tt := range []struct {
		name   string
		secret string
		header string
	}{
		{"empty secret disables surface", "", "Bearer " + supervisorToken(t, "s3cret")},
		{"missing header", "s3cret", ""},
		{"not a bearer token", "s3cret", "Basic abc"},
		{"wrong signing key", "s3cret", "Bearer " + supervisorToken(t, "other")},
		{"garbage token", "s3cret", "Bearer not.a.jwt"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ops/dashboard", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			SupervisorJWT(tt.secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("handler must not run")
			})).ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestSupervisorJWTAcceptsSignedToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ops/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+supervisorToken(t, "s3cret"))
	rec := httptest.NewRecorder()

	var subject string
	SupervisorJWT("s3cret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := SupervisorFromContext(r.Context())
		if !ok {
			t.Fatal("expected supervisor claims in context")
		}
		subject = claims.Subject
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if subject != "supervisor-1" {
		t.Fatalf("subject = %q, want supervisor-1", subject)
	}
}
