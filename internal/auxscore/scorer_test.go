// Crossfeed - Cross-Platform Content Preference Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crossfeed

package auxscore

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
)

func newModelServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestNewRequiresURL(t *testing.T) {
	t.Parallel()
	if _, err := New(Config{}); err == nil {
		t.Error("expected error for empty URL")
	}
}

func TestScoreAux(t *testing.T) {
	t.Parallel()
	srv := newModelServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		var req scoreRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		score := 0.25
		if req.Title == "Deep Sea Creatures" {
			score = 0.9
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]float64{"score": score})
	})

	s, err := New(Config{URL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got, err := s.ScoreAux(context.Background(), "Deep Sea Creatures")
	if err != nil {
		t.Fatalf("ScoreAux: %v", err)
	}
	if got != 0.9 {
		t.Errorf("ScoreAux = %v, want 0.9", got)
	}
}

func TestScoreAuxRejectsBadResponses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		payload string
	}{
		{"server error", http.StatusInternalServerError, `{"score": 1}`},
		{"missing score", http.StatusOK, `{"value": 1}`},
		{"malformed body", http.StatusOK, `{"score":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := newModelServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.payload))
			})
			s, err := New(Config{URL: srv.URL})
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if _, err := s.ScoreAux(context.Background(), "anything"); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestCircuitOpensAfterConsecutiveFailures(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	srv := newModelServer(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	s, err := New(Config{URL: srv.URL, FailureThreshold: 3, OpenTimeout: time.Hour, RatePerSecond: 1000, Burst: 100})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := s.ScoreAux(context.Background(), "title"); err == nil {
			t.Fatalf("call %d: expected error", i)
		}
	}
	if s.State() != gobreaker.StateOpen {
		t.Fatalf("state = %v, want open", s.State())
	}

	_, err = s.ScoreAux(context.Background(), "title")
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("err = %v, want ErrCircuitOpen", err)
	}
	if n := calls.Load(); n != 3 {
		t.Errorf("server saw %d calls, want 3", n)
	}
}

func TestRateLimitDoesNotBlock(t *testing.T) {
	t.Parallel()
	srv := newModelServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"score": 0.5}`))
	})

	s, err := New(Config{URL: srv.URL, RatePerSecond: 0.001, Burst: 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := s.ScoreAux(context.Background(), "first"); err != nil {
		t.Fatalf("first call: %v", err)
	}
	start := time.Now()
	_, err = s.ScoreAux(context.Background(), "second")
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("err = %v, want ErrRateLimited", err)
	}
	if time.Since(start) > time.Second {
		t.Error("rate-limited call blocked")
	}
}

func TestStateValue(t *testing.T) {
	t.Parallel()
	tests := map[gobreaker.State]int{
		gobreaker.StateClosed:   0,
		gobreaker.StateHalfOpen: 1,
		gobreaker.StateOpen:     2,
	}
	for st, want := range tests {
		if got := stateValue(st); got != want {
			t.Errorf("stateValue(%v) = %d, want %d", st, got, want)
		}
	}
}
