package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const secret = "0123456789abcdef0123"

func newIssuer(t *testing.T, now time.Time) *Issuer {
	t.Helper()
	i, err := NewIssuer(secret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	i.now = func() time.Time { return now }
	return i
}

func TestNewIssuer_Validates(t *testing.T) {
	if _, err := NewIssuer("short", time.Hour); err == nil {
		t.Error("expected error for short secret")
	}
	if _, err := NewIssuer(secret, 0); err == nil {
		t.Error("expected error for zero ttl")
	}
}

func TestSignVerify(t *testing.T) {
	now := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	i := newIssuer(t, now)

	token, expires, err := i.Sign("user-1", "ana@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if !expires.Equal(now.Add(time.Hour)) {
		t.Errorf("expires = %v", expires)
	}

	p, err := i.Verify(token)
	if err != nil {
		t.Fatal(err)
	}
	if p.UserID != "user-1" || p.Email != "ana@example.com" {
		t.Errorf("principal = %+v", p)
	}
}

func TestVerify_Rejects(t *testing.T) {
	now := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	i := newIssuer(t, now)
	good, _, _ := i.Sign("user-1", "a@b.c")

	other, _ := NewIssuer("another-secret-value", time.Hour)
	other.now = i.now
	foreign, _, _ := other.Sign("user-1", "a@b.c")

	later := newIssuer(t, now.Add(2*time.Hour))

	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "user-1", "iss": issuerName}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name   string
		issuer *Issuer
		token  string
	}{
		{"garbage", i, "not.a.token"},
		{"wrong secret", i, foreign},
		{"expired", later, good},
		{"alg none", i, none},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.issuer.Verify(tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("err = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestMiddleware(t *testing.T) {
	i := newIssuer(t, time.Now())
	token, _, _ := i.Sign("user-1", "a@b.c")

	var gotErr error
	onError := func(w http.ResponseWriter, r *http.Request, err error) {
		gotErr = err
		w.WriteHeader(http.StatusUnauthorized)
	}
	var seen Principal
	h := i.Middleware(onError)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = PrincipalFrom(r.Context())
	}))

	tests := []struct {
		name    string
		header  string
		want    int
		wantErr error
	}{
		{"no header", "", http.StatusUnauthorized, ErrMissingToken},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, ErrMissingToken},
		{"bad token", "Bearer nope", http.StatusUnauthorized, ErrInvalidToken},
		{"valid", "Bearer " + token, http.StatusOK, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotErr, seen = nil, Principal{}
			req := httptest.NewRequest(http.MethodGet, "/api/households", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.wantErr != nil && !errors.Is(gotErr, tt.wantErr) {
				t.Fatalf("err = %v, want %v", gotErr, tt.wantErr)
			}
			if tt.wantErr == nil && seen.UserID != "user-1" {
				t.Fatalf("principal = %+v", seen)
			}
		})
	}
}
