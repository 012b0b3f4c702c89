// Crossfeed - Cross-Platform Content Preference Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crossfeed

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordInteraction(t *testing.T) {
	before := testutil.ToFloat64(InteractionsRecorded.WithLabelValues("news", "starred"))
	RecordInteraction("news", "starred")
	RecordInteraction("news", "starred")
	after := testutil.ToFloat64(InteractionsRecorded.WithLabelValues("news", "starred"))

	if after-before != 2 {
		t.Errorf("counter delta = %v, want 2", after-before)
	}
}

func TestRecordWriteTx(t *testing.T) {
	before := testutil.ToFloat64(WriteTxErrors.WithLabelValues("record_interaction", "lock_timeout"))

	RecordWriteTx("record_interaction", 3*time.Millisecond, "")
	RecordWriteTx("record_interaction", 30*time.Second, "lock_timeout")

	after := testutil.ToFloat64(WriteTxErrors.WithLabelValues("record_interaction", "lock_timeout"))
	if after-before != 1 {
		t.Errorf("error counter delta = %v, want 1", after-before)
	}
	if n := testutil.CollectAndCount(WriteTxDuration); n == 0 {
		t.Error("expected at least one duration series")
	}
}

func TestRecordPurge(t *testing.T) {
	okBefore := testutil.ToFloat64(PurgeRuns.WithLabelValues("ok"))
	errBefore := testutil.ToFloat64(PurgeRuns.WithLabelValues("error"))
	rowsBefore := testutil.ToFloat64(PurgeDeleted.WithLabelValues("keywords"))

	RecordPurge(map[string]int64{"keywords": 4, "content": 0}, nil)
	RecordPurge(nil, errors.New("disk full"))

	if d := testutil.ToFloat64(PurgeRuns.WithLabelValues("ok")) - okBefore; d != 1 {
		t.Errorf("ok runs delta = %v", d)
	}
	if d := testutil.ToFloat64(PurgeRuns.WithLabelValues("error")) - errBefore; d != 1 {
		t.Errorf("error runs delta = %v", d)
	}
	if d := testutil.ToFloat64(PurgeDeleted.WithLabelValues("keywords")) - rowsBefore; d != 4 {
		t.Errorf("keyword rows delta = %v, want 4", d)
	}
}

func TestAuxMetrics(t *testing.T) {
	before := testutil.ToFloat64(AuxRequests.WithLabelValues("circuit_open"))
	RecordAuxRequest("circuit_open")
	if d := testutil.ToFloat64(AuxRequests.WithLabelValues("circuit_open")) - before; d != 1 {
		t.Errorf("delta = %v", d)
	}

	SetAuxCircuitState(2)
	if v := testutil.ToFloat64(AuxCircuitState); v != 2 {
		t.Errorf("circuit state = %v, want 2", v)
	}
}

func TestScoreMetrics(t *testing.T) {
	before := testutil.ToFloat64(ScoreDegraded.WithLabelValues("keyword"))
	RecordScoreDegraded("keyword")
	RecordScore(time.Millisecond)
	RecordRank(3)

	if d := testutil.ToFloat64(ScoreDegraded.WithLabelValues("keyword")) - before; d != 1 {
		t.Errorf("degraded delta = %v", d)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("POST", "/api/v1/rank", "200"))
	RecordAPIRequest("POST", "/api/v1/rank", "200", 12*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("POST", "/api/v1/rank", "200"))
	if after-before != 1 {
		t.Errorf("request counter delta = %v, want 1", after-before)
	}

	active := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != active+1 {
		t.Errorf("active = %v, want %v", got, active+1)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != active {
		t.Errorf("active = %v, want %v", got, active)
	}
}
