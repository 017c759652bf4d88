package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestLimiter(perMinute int) (*Limiter, *clock) {
	rl := NewLimiter(Config{RequestsPerMinute: perMinute, Window: time.Minute, CleanupInterval: time.Hour})
	c := &clock{t: time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)}
	rl.now = c.now
	return rl, c
}

func TestLimiter_AllowWithinWindow(t *testing.T) {
	rl, c := newTestLimiter(2)
	defer rl.Stop()

	if !rl.Allow("1.1.1.1") || !rl.Allow("1.1.1.1") {
		t.Fatal("first two requests should pass")
	}
	if rl.Allow("1.1.1.1") {
		t.Fatal("third request should be limited")
	}
	if !rl.Allow("2.2.2.2") {
		t.Fatal("other clients are counted separately")
	}

	c.t = c.t.Add(time.Minute)
	if !rl.Allow("1.1.1.1") {
		t.Fatal("new window should reset the counter")
	}
}

func TestLimiter_WindowDoesNotSlideOnActivity(t *testing.T) {
	rl, c := newTestLimiter(1)
	defer rl.Stop()

	rl.Allow("ip")
	for i := 0; i < 5; i++ {
		c.t = c.t.Add(10 * time.Second)
		rl.Allow("ip")
	}
	c.t = c.t.Add(10 * time.Second)
	if !rl.Allow("ip") {
		t.Fatal("window should reset a minute after it opened")
	}
}

func TestLimiter_Cleanup(t *testing.T) {
	rl, c := newTestLimiter(5)
	defer rl.Stop()

	rl.Allow("a")
	c.t = c.t.Add(11 * time.Minute)
	rl.Allow("b")

	if removed := rl.cleanupStaleEntries(); removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if rl.ActiveClients() != 1 {
		t.Fatalf("active = %d, want 1", rl.ActiveClients())
	}
}

func TestMiddleware_WritesOnly(t *testing.T) {
	rl, c := newTestLimiter(1)
	defer rl.Stop()

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := rl.Middleware(func(*http.Request) string { return "ip" }, nil)(ok)

	tests := []struct {
		method string
		want   int
	}{
		{http.MethodPost, http.StatusNoContent},
		{http.MethodGet, http.StatusNoContent},
		{http.MethodGet, http.StatusNoContent},
		{http.MethodPatch, http.StatusTooManyRequests},
		{http.MethodDelete, http.StatusTooManyRequests},
	}
	for _, tt := range tests {
		c.t = c.t.Add(time.Second)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(tt.method, "/api/x", nil))
		if rec.Code != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.method, rec.Code, tt.want)
		}
		if rec.Code == http.StatusTooManyRequests && rec.Header().Get("Retry-After") == "" {
			t.Errorf("%s: missing Retry-After", tt.method)
		}
	}
}

func TestLimiter_StopTwice(t *testing.T) {
	rl := NewLimiter(DefaultConfig())
	rl.Stop()
	rl.Stop()
}
