package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	pkgerrors "github.com/stringmaster/stringmaster-backend/pkg/errors"
)

type fakeRateCounter struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func newFakeRateCounter() *fakeRateCounter {
	return &fakeRateCounter{counts: map[string]int64{}}
}

func (f *fakeRateCounter) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.counts[key]++
	return f.counts[key], nil
}

func loginAttempt(t *testing.T, handler http.Handler, remoteAddr, email string) *httptest.ResponseRecorder {
	t.Helper()
	body := `{"email":"` + email + `","password":"secret"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestAuthRateLimit_AllowsUnderLimitAndPreservesBody(t *testing.T) {
	policy := NewAuthRateLimitPolicy("login", time.Minute, 2, 2)
	handler := AuthRateLimit(policy, newFakeRateCounter(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		if !strings.Contains(string(body), `"email":"luthier@stringmaster.com"`) {
			t.Fatalf("body not replayed for downstream handler: %s", string(body))
		}
		w.WriteHeader(http.StatusOK)
	}))

	rec := loginAttempt(t, handler, "1.2.3.4:5678", "luthier@stringmaster.com")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthRateLimit_EmailLimitTriggers(t *testing.T) {
	policy := NewAuthRateLimitPolicy("login", time.Minute, 0, 2)
	handler := AuthRateLimit(policy, newFakeRateCounter(), nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		if rec := loginAttempt(t, handler, "1.2.3.4:5678", "blocked@example.com"); rec.Code != http.StatusOK {
			t.Fatalf("attempt %d: expected success under limit, got %d", i, rec.Code)
		}
	}

	rec := loginAttempt(t, handler, "1.2.3.4:5678", "blocked@example.com")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodeRateLimit) {
		t.Fatalf("unexpected code: %s", payload.Error.Code)
	}
}

func TestAuthRateLimit_IPLimitTriggers(t *testing.T) {
	policy := NewAuthRateLimitPolicy("register", time.Minute, 1, 0)
	handler := AuthRateLimit(policy, newFakeRateCounter(), nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	if rec := loginAttempt(t, handler, "5.6.7.8:1234", "foo@example.com"); rec.Code != http.StatusOK {
		t.Fatalf("expected first attempt to pass, got %d", rec.Code)
	}
	if rec := loginAttempt(t, handler, "5.6.7.8:1234", "foo@example.com"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestAuthRateLimit_FailsClosedWhenCounterDown(t *testing.T) {
	counter := newFakeRateCounter()
	counter.err = errors.New("redis: connection refused")
	policy := NewAuthRateLimitPolicy("login", time.Minute, 1, 0)
	handler := AuthRateLimit(policy, counter, nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := loginAttempt(t, handler, "9.9.9.9:1234", "foo@example.com")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when counter store is down, got %d", rec.Code)
	}
}
