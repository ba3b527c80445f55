// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Model kinds understood by the scorers package.
const (
	KindLinear = "linear"
	KindTrees  = "trees"
)

const modelExt = ".gob.gz"

var (
	// ErrModelNotFound is returned when no stored model matches a name/version.
	ErrModelNotFound = errors.New("model not found")

	// ErrChecksumMismatch is returned when a stored model fails verification.
	ErrChecksumMismatch = errors.New("model checksum mismatch")
)

// ModelMetadata contains information about a stored model artifact.
type ModelMetadata struct {
	// ID uniquely identifies this saved artifact.
	ID string `json:"id"`

	// Name is the model name (e.g., "lgbm_reco", "elastic_reco").
	Name string `json:"name"`

	// Version is the model version (monotonically increasing per name).
	Version int `json:"version"`

	// Kind is the model family (linear or trees).
	Kind string `json:"kind"`

	// Features is the ordered feature tuple the model was trained on.
	Features []string `json:"features"`

	// TrainedAt is when the external trainer produced the model.
	TrainedAt time.Time `json:"trained_at"`

	// SavedAt is when the model was saved.
	SavedAt time.Time `json:"saved_at"`

	// TrainingRows is the number of rows the model was fit on, if known.
	TrainingRows int `json:"training_rows"`

	// Source describes where the artifact was imported from.
	Source string `json:"source,omitempty"`

	// Metrics holds held-out evaluation metrics reported by the trainer
	// (MAE, RMSE, R2).
	Metrics map[string]float64 `json:"metrics,omitempty"`

	// Checksum is the SHA-256 checksum of the uncompressed model data.
	Checksum string `json:"checksum"`

	// SizeBytes is the compressed model size in bytes.
	SizeBytes int64 `json:"size_bytes"`
}

// ModelState is the serializable form of a learned scorer.
type ModelState struct {
	Kind     string             `json:"kind" validate:"oneof=linear trees"`
	Features []string           `json:"features" validate:"required"`
	Linear   *LinearModelState  `json:"linear,omitempty" validate:"required_if=Kind linear"`
	Trees    *TreeEnsembleState `json:"trees,omitempty" validate:"required_if=Kind trees"`
}

// LinearModelState is a standardized linear regressor:
// y = Intercept + sum Coef[i] * (x[i] - Mean[i]) / Scale[i].
type LinearModelState struct {
	Intercept float64   `json:"intercept"`
	Coef      []float64 `json:"coef"`
	Mean      []float64 `json:"mean"`
	Scale     []float64 `json:"scale"`
}

// TreeEnsembleState is an additive ensemble of regression trees:
// y = BaseScore + sum leaf(tree, x).
type TreeEnsembleState struct {
	BaseScore float64     `json:"base_score"`
	Trees     []TreeState `json:"trees"`
}

// TreeState is one regression tree stored as a flat node slice; Nodes[0] is
// the root.
type TreeState struct {
	Nodes []NodeState `json:"nodes"`
}

// NodeState is one tree node. Feature < 0 marks a leaf. Value is the leaf
// output for leaves and the expected (cover-weighted) output for internal
// nodes.
type NodeState struct {
	Feature     int     `json:"feature"`
	Threshold   float64 `json:"threshold,omitempty"`
	Left        int     `json:"left,omitempty"`
	Right       int     `json:"right,omitempty"`
	DefaultLeft bool    `json:"default_left,omitempty"`
	Value       float64 `json:"value"`
}

// Store manages model persistence.
type Store struct {
	baseDir string
	mu      sync.RWMutex

	// latest version per model name
	versions map[string]int
}

// NewStore creates a new model store at the given directory.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil { //nolint:gosec // 0750 is acceptable for model storage
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	s := &Store{
		baseDir:  baseDir,
		versions: make(map[string]int),
	}

	if err := s.scanModels(); err != nil {
		return nil, fmt.Errorf("scan existing models: %w", err)
	}

	return s, nil
}

// Dir returns the storage directory.
func (s *Store) Dir() string {
	return s.baseDir
}

// scanModels rebuilds the latest-version index from the directory contents.
// Caller must hold the write lock or be the constructor.
func (s *Store) scanModels() error {
	versions, err := s.listVersions("")
	if err != nil {
		return err
	}
	s.versions = make(map[string]int, len(versions))
	for name, vs := range versions {
		s.versions[name] = vs[0]
	}
	return nil
}

// listVersions returns every stored version per model name, sorted
// descending. An empty filter lists all names.
func (s *Store) listVersions(filter string) (map[string][]int, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]int)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), modelExt) {
			continue
		}
		name, version := parseModelFilename(strings.TrimSuffix(entry.Name(), modelExt))
		if name == "" || (filter != "" && name != filter) {
			continue
		}
		out[name] = append(out[name], version)
	}
	for name := range out {
		sort.Sort(sort.Reverse(sort.IntSlice(out[name])))
	}
	return out, nil
}

// parseModelFilename splits "lgbm_reco_v3" into ("lgbm_reco", 3).
func parseModelFilename(base string) (name string, version int) {
	idx := strings.LastIndex(base, "_v")
	if idx <= 0 {
		return "", 0
	}
	v, err := strconv.Atoi(base[idx+2:])
	if err != nil || v < 1 {
		return "", 0
	}
	return base[:idx], v
}

// storedFile is the on-disk format for model files.
type storedFile struct {
	Metadata       ModelMetadata
	CompressedData []byte
}

// Save stores a model state under name/version. A zero version allocates
// the next version number. The saved metadata is returned.
//
//nolint:gocritic // meta passed by value is acceptable for this write operation
func (s *Store) Save(ctx context.Context, name string, version int, state *ModelState, meta ModelMetadata) (*ModelMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("invalid model name %q", name)
	}
	if state == nil {
		return nil, errors.New("model state is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if version == 0 {
		version = s.versions[name] + 1
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(state); err != nil {
		return nil, fmt.Errorf("encode model: %w", err)
	}
	rawData := buf.Bytes()

	hash := sha256.Sum256(rawData)
	meta.Checksum = hex.EncodeToString(hash[:])

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(rawData); err != nil {
		return nil, fmt.Errorf("compress model: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return nil, fmt.Errorf("finalize compression: %w", err)
	}

	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	meta.Name = name
	meta.Version = version
	meta.Kind = state.Kind
	meta.Features = append([]string(nil), state.Features...)
	meta.SizeBytes = int64(compressed.Len())
	meta.SavedAt = time.Now().UTC()

	// Write to a temp file and rename so readers never see a partial model.
	tmp, err := os.CreateTemp(s.baseDir, "."+name+"-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create model file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }() //nolint:errcheck // temp file is gone after a successful rename

	sf := storedFile{Metadata: meta, CompressedData: compressed.Bytes()}
	if err := encodeStoredFile(tmp, &sf); err != nil {
		_ = tmp.Close() //nolint:errcheck // write error already reported
		return nil, fmt.Errorf("write model file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close model file: %w", err)
	}
	if err := os.Rename(tmpName, s.modelPath(name, version)); err != nil {
		return nil, fmt.Errorf("commit model file: %w", err)
	}

	if version > s.versions[name] {
		s.versions[name] = version
	}

	return &meta, nil
}

// Load loads a model by name and version. A zero version loads the latest.
func (s *Store) Load(ctx context.Context, name string, version int) (*ModelState, *ModelMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if version == 0 {
		var ok bool
		if version, ok = s.versions[name]; !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrModelNotFound, name)
		}
	}

	sf, err := readStoredFile(s.modelPath(name, version))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s v%d", ErrModelNotFound, name, version)
		}
		return nil, nil, err
	}

	gzr, err := gzip.NewReader(bytes.NewReader(sf.CompressedData))
	if err != nil {
		return nil, nil, fmt.Errorf("decompress model: %w", err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // error on gzip close after read is not actionable

	rawData, err := io.ReadAll(gzr)
	if err != nil {
		return nil, nil, fmt.Errorf("read decompressed data: %w", err)
	}

	hash := sha256.Sum256(rawData)
	if checksum := hex.EncodeToString(hash[:]); checksum != sf.Metadata.Checksum {
		return nil, nil, fmt.Errorf("%w: expected %s, got %s", ErrChecksumMismatch, sf.Metadata.Checksum, checksum)
	}

	var state ModelState
	if err := gob.NewDecoder(bytes.NewReader(rawData)).Decode(&state); err != nil {
		return nil, nil, fmt.Errorf("decode model: %w", err)
	}

	return &state, &sf.Metadata, nil
}

func encodeStoredFile(w io.Writer, sf *storedFile) error {
	return gob.NewEncoder(w).Encode(sf)
}

func readStoredFile(path string) (*storedFile, error) {
	f, err := os.Open(path) //nolint:gosec // path is built from the store directory and a validated name
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // error on close after read is not actionable

	var sf storedFile
	if err := gob.NewDecoder(f).Decode(&sf); err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}
	return &sf, nil
}

// GetLatestVersion returns the latest version number for a model.
func (s *Store) GetLatestVersion(name string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	version, ok := s.versions[name]
	return version, ok
}

// ListModels returns metadata for the latest version of every stored model,
// sorted by name.
func (s *Store) ListModels(ctx context.Context) ([]ModelMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.versions))
	for name := range s.versions {
		names = append(names, name)
	}
	sort.Strings(names)

	models := make([]ModelMetadata, 0, len(names))
	for _, name := range names {
		sf, err := readStoredFile(s.modelPath(name, s.versions[name]))
		if err != nil {
			continue
		}
		models = append(models, sf.Metadata)
	}
	return models, nil
}

// Delete removes a specific model version.
func (s *Store) Delete(ctx context.Context, name string, version int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.modelPath(name, version)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s v%d", ErrModelNotFound, name, version)
		}
		return fmt.Errorf("delete model: %w", err)
	}

	return s.scanModels()
}

// Prune removes old model versions, keeping only the latest keepVersions.
func (s *Store) Prune(ctx context.Context, name string, keepVersions int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if keepVersions < 1 {
		keepVersions = 1
	}

	versions, err := s.listVersions(name)
	if err != nil {
		return 0, fmt.Errorf("read directory: %w", err)
	}

	removed := 0
	vs := versions[name]
	for i := keepVersions; i < len(vs); i++ {
		if err := os.Remove(s.modelPath(name, vs[i])); err == nil {
			removed++
		}
	}

	return removed, s.scanModels()
}

// modelPath returns the file path for a model.
func (s *Store) modelPath(name string, version int) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("%s_v%d%s", name, version, modelExt))
}

// Register gob types for serialization.
//
//nolint:gochecknoinits // gob.Register must be called in init for type registration
func init() {
	gob.Register(ModelState{})
	gob.Register(LinearModelState{})
	gob.Register(TreeEnsembleState{})
	gob.Register(ModelMetadata{})
	gob.Register(storedFile{})
}
