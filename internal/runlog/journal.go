// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package runlog

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Prefix keys for the record and index entries
const (
	prefixRun = "run:"
	prefixID  = "id:"
)

var (
	// ErrRunNotFound is returned by Get for an unknown id.
	ErrRunNotFound = errors.New("run not found")

	// ErrJournalClosed is returned after Close.
	ErrJournalClosed = errors.New("run journal is closed")

	// ErrInvalidRun is returned when a run has no id or start time.
	ErrInvalidRun = errors.New("run needs an id and a start time")
)

// Kind names the command that produced a run.
type Kind string

// Run kinds.
const (
	KindBatch     Kind = "batch"
	KindSynthetic Kind = "synth"
	KindReport    Kind = "report"
)

// Status is the final state of a run.
type Status string

// Run statuses.
const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
)

// Run is one journal record.
type Run struct {
	ID        string        `json:"id"`
	Kind      Kind          `json:"kind"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
	Status    Status        `json:"status"`

	Input  string `json:"input,omitempty"`
	Output string `json:"output,omitempty"`
	Scorer string `json:"scorer,omitempty"`

	Rows    int `json:"rows"`
	Written int `json:"written"`
	Skipped int `json:"skipped"`
	Capped  int `json:"capped"`

	// Details carries kind-specific figures such as saving totals.
	Details map[string]float64 `json:"details,omitempty"`

	Error string `json:"error,omitempty"`
}

// NewRun starts a run record with a fresh id.
func NewRun(kind Kind, input, output string) *Run {
	return &Run{
		ID:        uuid.New().String(),
		Kind:      kind,
		StartedAt: time.Now().UTC(),
		Input:     input,
		Output:    output,
	}
}

// Finish sets the duration and the status derived from err.
func (r *Run) Finish(err error) {
	r.Duration = time.Since(r.StartedAt)
	if err != nil {
		r.Status = StatusFailed
		r.Error = err.Error()
		return
	}
	r.Status = StatusOK
	r.Error = ""
}

// Config controls where the journal lives.
type Config struct {
	// Path is the BadgerDB directory.
	Path string `koanf:"path"`

	// InMemory keeps the journal in memory; Path is ignored.
	InMemory bool `koanf:"in_memory"`

	SyncWrites bool `koanf:"sync_writes"`

	// MaxRuns bounds the journal; older runs are pruned on Record. 0 keeps all.
	MaxRuns int `koanf:"max_runs" validate:"gte=0"`
}

// DefaultConfig returns a journal under ./data/runs keeping the last 1000 runs.
func DefaultConfig() Config {
	return Config{
		Path:       "./data/runs",
		SyncWrites: true,
		MaxRuns:    1000,
	}
}

// Journal is a BadgerDB-backed run journal. It is safe for concurrent use.
type Journal struct {
	db     *badger.DB
	cfg    Config
	logger zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

// Open opens (or creates) the journal.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Open(cfg Config, logger zerolog.Logger) (*Journal, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.New("run journal path is required")
		}
		opts = badger.DefaultOptions(cfg.Path)
		opts.SyncWrites = cfg.SyncWrites
	}

	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open run journal: %w", err)
	}

	j := &Journal{
		db:     db,
		cfg:    cfg,
		logger: logger.With().Str("component", "runlog").Logger(),
	}
	j.logger.Debug().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Msg("run journal opened")
	return j, nil
}

// OpenInMemory opens an unbounded in-memory journal.
func OpenInMemory() (*Journal, error) {
	return Open(Config{InMemory: true}, zerolog.Nop())
}

// runKey orders runs newest first under prefixRun.
func runKey(startedAt time.Time, id string) []byte {
	key := make([]byte, 0, len(prefixRun)+8+len(id))
	key = append(key, prefixRun...)
	key = binary.BigEndian.AppendUint64(key, uint64(math.MaxInt64-startedAt.UnixNano()))
	return append(key, id...)
}

func idKey(id string) []byte {
	return []byte(prefixID + id)
}

// idFromRunKey returns the id suffix of a primary key.
func idFromRunKey(key []byte) string {
	return string(key[len(prefixRun)+8:])
}

func (j *Journal) checkOpen() error {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return ErrJournalClosed
	}
	return nil
}

// Record stores run, replacing an earlier record with the same id.
func (j *Journal) Record(ctx context.Context, run *Run) error {
	if err := j.checkOpen(); err != nil {
		return err
	}
	if run == nil || run.ID == "" || run.StartedAt.IsZero() {
		return ErrInvalidRun
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}

	key := runKey(run.StartedAt, run.ID)
	err = j.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(idKey(run.ID))
		switch {
		case err == nil:
			old, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if string(old) != string(key) {
				if err := txn.Delete(old); err != nil {
					return err
				}
			}
		case !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}

		if err := txn.SetEntry(badger.NewEntry(key, data)); err != nil {
			return err
		}
		return txn.Set(idKey(run.ID), key)
	})
	if err != nil {
		return fmt.Errorf("write run %s: %w", run.ID, err)
	}

	j.logger.Debug().
		Str("run_id", run.ID).
		Str("kind", string(run.Kind)).
		Str("status", string(run.Status)).
		Msg("run recorded")

	if j.cfg.MaxRuns > 0 {
		if _, err := j.Prune(ctx, j.cfg.MaxRuns); err != nil {
			j.logger.Warn().Err(err).Msg("failed to prune run journal")
		}
	}
	return nil
}

// Get returns the run with the given id.
func (j *Journal) Get(ctx context.Context, id string) (*Run, error) {
	if err := j.checkOpen(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var run Run
	err := j.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(idKey(id))
		if err != nil {
			return err
		}
		key, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		item, err = txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &run)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("read run %s: %w", id, err)
	}
	return &run, nil
}

// List returns up to limit runs, newest first. A non-positive limit returns
// every run.
func (j *Journal) List(ctx context.Context, limit int) ([]*Run, error) {
	if err := j.checkOpen(); err != nil {
		return nil, err
	}

	var runs []*Run
	err := j.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixRun)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if limit > 0 && len(runs) >= limit {
				return nil
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			item := it.Item()
			var run Run
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &run)
			})
			if err != nil {
				j.logger.Warn().Err(err).Str("key", string(item.Key())).Msg("failed to unmarshal run")
				continue
			}
			runs = append(runs, &run)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// Prune deletes all but the newest keep runs and returns how many went.
func (j *Journal) Prune(ctx context.Context, keep int) (int, error) {
	if err := j.checkOpen(); err != nil {
		return 0, err
	}

	var stale [][]byte
	err := j.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixRun)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		seen := 0
		for it.Rewind(); it.Valid(); it.Next() {
			seen++
			if seen > keep {
				stale = append(stale, it.Item().KeyCopy(nil))
			}
		}
		return ctx.Err()
	})
	if err != nil {
		return 0, fmt.Errorf("scan runs: %w", err)
	}
	if len(stale) == 0 {
		return 0, nil
	}

	wb := j.db.NewWriteBatch()
	defer wb.Cancel()
	for _, key := range stale {
		if err := wb.Delete(key); err != nil {
			return 0, fmt.Errorf("prune runs: %w", err)
		}
		if err := wb.Delete(idKey(idFromRunKey(key))); err != nil {
			return 0, fmt.Errorf("prune runs: %w", err)
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}

	j.logger.Debug().Int("pruned", len(stale)).Msg("run journal pruned")
	return len(stale), nil
}

// RunGC reclaims value log space. It is a no-op for in-memory journals.
func (j *Journal) RunGC() error {
	if err := j.checkOpen(); err != nil {
		return err
	}
	if j.cfg.InMemory {
		return nil
	}

	// Run GC until no more cleanup is possible
	for {
		err := j.db.RunValueLogGC(0.5)
		if errors.Is(err, badger.ErrNoRewrite) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run GC: %w", err)
		}
	}
}

// Close closes the database. It is safe to call more than once.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return nil
	}
	j.closed = true
	if err := j.db.Close(); err != nil {
		return fmt.Errorf("close run journal: %w", err)
	}
	return nil
}
