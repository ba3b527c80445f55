// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package runlog

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

var baseTime = time.Date(2026, 3, 1, 22, 0, 0, 0, time.UTC)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func testRun(id string, offset time.Duration) *Run {
	return &Run{
		ID:        id,
		Kind:      KindBatch,
		StartedAt: baseTime.Add(offset),
		Duration:  1500 * time.Millisecond,
		Status:    StatusOK,
		Input:     "grid.csv",
		Output:    "reco.csv",
		Scorer:    "rule",
		Rows:      3,
		Written:   3,
		Details:   map[string]float64{"unique_recommended": 3},
	}
}

func TestJournal_RecordAndGet(t *testing.T) {
	t.Parallel()

	j := openTestJournal(t)
	ctx := context.Background()

	want := testRun("run-1", 0)
	if err := j.Record(ctx, want); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	got, err := j.Get(ctx, "run-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ID != want.ID || got.Kind != KindBatch || !got.StartedAt.Equal(want.StartedAt) {
		t.Errorf("Get() = %+v", got)
	}
	if got.Duration != want.Duration || got.Written != 3 || got.Details["unique_recommended"] != 3 {
		t.Errorf("Get() lost fields: %+v", got)
	}
}

func TestJournal_GetNotFound(t *testing.T) {
	t.Parallel()

	j := openTestJournal(t)
	if _, err := j.Get(context.Background(), "missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Get() error = %v, want ErrRunNotFound", err)
	}
}

func TestJournal_ListNewestFirst(t *testing.T) {
	t.Parallel()

	j := openTestJournal(t)
	ctx := context.Background()

	// Recorded out of order on purpose.
	for _, offset := range []int{2, 0, 4, 1, 3} {
		id := fmt.Sprintf("run-%d", offset)
		if err := j.Record(ctx, testRun(id, time.Duration(offset)*time.Minute)); err != nil {
			t.Fatalf("Record(%s) error = %v", id, err)
		}
	}

	runs, err := j.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(runs) != 5 {
		t.Fatalf("List() returned %d runs, want 5", len(runs))
	}
	for i, run := range runs {
		if want := fmt.Sprintf("run-%d", 4-i); run.ID != want {
			t.Errorf("runs[%d] = %s, want %s", i, run.ID, want)
		}
	}

	limited, err := j.List(ctx, 2)
	if err != nil {
		t.Fatalf("List(2) error = %v", err)
	}
	if len(limited) != 2 || limited[0].ID != "run-4" || limited[1].ID != "run-3" {
		t.Errorf("List(2) = %v, %v", limited[0].ID, limited[1].ID)
	}
}

func TestJournal_RecordReplaces(t *testing.T) {
	t.Parallel()

	j := openTestJournal(t)
	ctx := context.Background()

	run := testRun("run-1", 0)
	if err := j.Record(ctx, run); err != nil {
		t.Fatal(err)
	}
	run.Status = StatusFailed
	run.Error = "policy violation"
	run.StartedAt = run.StartedAt.Add(time.Second)
	if err := j.Record(ctx, run); err != nil {
		t.Fatal(err)
	}

	runs, err := j.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Status != StatusFailed {
		t.Errorf("List() after replace = %+v", runs)
	}
}

func TestJournal_RecordInvalid(t *testing.T) {
	t.Parallel()

	j := openTestJournal(t)
	ctx := context.Background()

	tests := []struct {
		name string
		run  *Run
	}{
		{"nil", nil},
		{"no id", &Run{StartedAt: baseTime}},
		{"no start", &Run{ID: "x"}},
	}
	for _, tt := range tests {
		if err := j.Record(ctx, tt.run); !errors.Is(err, ErrInvalidRun) {
			t.Errorf("%s: Record() error = %v, want ErrInvalidRun", tt.name, err)
		}
	}
}

func TestJournal_Prune(t *testing.T) {
	t.Parallel()

	j := openTestJournal(t)
	ctx := context.Background()
	for i := 0; i < 6; i++ {
		if err := j.Record(ctx, testRun(fmt.Sprintf("run-%d", i), time.Duration(i)*time.Minute)); err != nil {
			t.Fatal(err)
		}
	}

	pruned, err := j.Prune(ctx, 4)
	if err != nil || pruned != 2 {
		t.Fatalf("Prune(4) = %d, %v, want 2", pruned, err)
	}
	if _, err := j.Get(ctx, "run-0"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("oldest run survived: %v", err)
	}
	if _, err := j.Get(ctx, "run-5"); err != nil {
		t.Errorf("newest run pruned: %v", err)
	}
	if pruned, _ := j.Prune(ctx, 4); pruned != 0 {
		t.Errorf("second Prune() = %d, want 0", pruned)
	}
}

func TestJournal_MaxRuns(t *testing.T) {
	t.Parallel()

	j, err := Open(Config{InMemory: true, MaxRuns: 2}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer j.Close()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := j.Record(ctx, testRun(fmt.Sprintf("run-%d", i), time.Duration(i)*time.Minute)); err != nil {
			t.Fatal(err)
		}
	}
	runs, err := j.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 || runs[0].ID != "run-4" {
		t.Errorf("List() = %d runs", len(runs))
	}
}

func TestJournal_Persistence(t *testing.T) {
	t.Parallel()

	cfg := Config{Path: t.TempDir()}
	ctx := context.Background()

	j, err := Open(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := j.Record(ctx, testRun("durable", 0)); err != nil {
		t.Fatal(err)
	}
	if err := j.RunGC(); err != nil {
		t.Errorf("RunGC() error = %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := Open(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.Get(ctx, "durable"); err != nil {
		t.Errorf("Get() after reopen error = %v", err)
	}
}

func TestJournal_Closed(t *testing.T) {
	t.Parallel()

	j, err := OpenInMemory()
	if err != nil {
		t.Fatal(err)
	}
	if err := j.Close(); err != nil {
		t.Fatal(err)
	}
	if err := j.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	ctx := context.Background()
	if err := j.Record(ctx, testRun("x", 0)); !errors.Is(err, ErrJournalClosed) {
		t.Errorf("Record() error = %v", err)
	}
	if _, err := j.List(ctx, 0); !errors.Is(err, ErrJournalClosed) {
		t.Errorf("List() error = %v", err)
	}
}

func TestOpen_RequiresPath(t *testing.T) {
	t.Parallel()
	if _, err := Open(Config{}, zerolog.Nop()); err == nil {
		t.Error("Open() without path = nil error")
	}
}

func TestRun_Finish(t *testing.T) {
	t.Parallel()

	run := NewRun(KindReport, "reco.csv", "")
	if run.ID == "" || run.StartedAt.IsZero() {
		t.Fatalf("NewRun() = %+v", run)
	}
	run.Finish(nil)
	if run.Status != StatusOK || run.Error != "" || run.Duration < 0 {
		t.Errorf("Finish(nil) = %+v", run)
	}
	run.Finish(errors.New("boom"))
	if run.Status != StatusFailed || run.Error != "boom" {
		t.Errorf("Finish(err) = %+v", run)
	}
}

func TestRunKeyOrder(t *testing.T) {
	t.Parallel()

	older := runKey(baseTime, "b")
	newer := runKey(baseTime.Add(time.Nanosecond), "a")
	if string(newer) >= string(older) {
		t.Error("newer run should sort first")
	}
	if got := idFromRunKey(older); got != "b" {
		t.Errorf("idFromRunKey() = %q", got)
	}
}
