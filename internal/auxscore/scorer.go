// Crossfeed - Cross-Platform Content Preference Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crossfeed

// Package auxscore adapts a remote relevance model to recommend.AuxScorer.
//
// The model is called over HTTP:
//
//	POST <url>  {"title": "..."}
//	200 OK      {"score": 0.42}
//
// Calls are rate limited and guarded by a circuit breaker, so a slow or
// failing model degrades scoring to the ledger terms instead of stalling
// ranking.
package auxscore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/crossfeed/internal/logging"
	"github.com/tomtom215/crossfeed/internal/metrics"
)

// Request outcomes reported to metrics.
const (
	outcomeOK          = "ok"
	outcomeError       = "error"
	outcomeRateLimited = "rate_limited"
	outcomeCircuitOpen = "circuit_open"
)

const breakerName = "aux-scorer"

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 64 << 10

var (
	// ErrRateLimited is returned when the local rate limit is exhausted.
	ErrRateLimited = errors.New("auxiliary scorer rate limit exceeded")

	// ErrCircuitOpen is returned while the breaker rejects calls.
	ErrCircuitOpen = errors.New("auxiliary scorer circuit open")
)

// Config configures an HTTPScorer.
type Config struct {
	URL              string
	Timeout          time.Duration
	RatePerSecond    float64
	Burst            int
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// HTTPScorer calls a relevance model over HTTP. It implements
// recommend.AuxScorer and is safe for concurrent use.
type HTTPScorer struct {
	url     string
	client  *http.Client
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[float64]
}

type scoreRequest struct {
	Title string `json:"title"`
}

type scoreResponse struct {
	Score *float64 `json:"score"`
}

// New creates an HTTPScorer. Zero values in cfg fall back to a 2s timeout,
// 20 requests per second with a burst of 5, five consecutive failures to
// open the breaker and 30s before a trial call.
func New(cfg Config) (*HTTPScorer, error) {
	if cfg.URL == "" {
		return nil, errors.New("auxiliary scorer URL is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 20
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}

	metrics.SetAuxCircuitState(stateValue(gobreaker.StateClosed))

	threshold := cfg.FailureThreshold
	cb := gobreaker.NewCircuitBreaker[float64](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Auxiliary scorer circuit state changed")
			metrics.SetAuxCircuitState(stateValue(to))
		},
	})

	return &HTTPScorer{
		url:     cfg.URL,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		cb:      cb,
	}, nil
}

// ScoreAux returns the model's score for title. It never waits for the
// rate limiter; an exhausted budget returns ErrRateLimited at once.
func (s *HTTPScorer) ScoreAux(ctx context.Context, title string) (float64, error) {
	if !s.limiter.Allow() {
		metrics.RecordAuxRequest(outcomeRateLimited)
		return 0, ErrRateLimited
	}

	score, err := s.cb.Execute(func() (float64, error) {
		return s.call(ctx, title)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.RecordAuxRequest(outcomeCircuitOpen)
			return 0, fmt.Errorf("%w: %w", ErrCircuitOpen, err)
		}
		metrics.RecordAuxRequest(outcomeError)
		return 0, err
	}

	metrics.RecordAuxRequest(outcomeOK)
	return score, nil
}

// State reports the breaker state.
func (s *HTTPScorer) State() gobreaker.State {
	return s.cb.State()
}

func (s *HTTPScorer) call(ctx context.Context, title string) (float64, error) {
	body, err := json.Marshal(scoreRequest{Title: title})
	if err != nil {
		return 0, fmt.Errorf("encode aux request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build aux request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		req.Header.Set("X-Correlation-ID", id)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("aux request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return 0, fmt.Errorf("aux scorer returned status %d", resp.StatusCode)
	}

	var out scoreResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode aux response: %w", err)
	}
	if out.Score == nil {
		return 0, errors.New("aux response has no score")
	}
	if math.IsNaN(*out.Score) || math.IsInf(*out.Score, 0) {
		return 0, fmt.Errorf("aux score %v is not finite", *out.Score)
	}
	return *out.Score, nil
}

// stateValue maps a breaker state to the gauge value (0 closed, 1
// half-open, 2 open).
func stateValue(st gobreaker.State) int {
	switch st {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
