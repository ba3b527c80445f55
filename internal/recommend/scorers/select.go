// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package scorers

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/lumen/internal/recommend"
	"github.com/tomtom215/lumen/internal/recommend/storage"
)

// LearnedName selects a stored model in Selection.Scorer.
const LearnedName = "learned"

// Selection names the scorer a process runs with.
//
// Environment Variables:
//   - MODEL_SCORER: rule or learned (default: rule)
//   - MODEL_DIR: artifact directory for learned models
//   - MODEL_NAME: artifact name (default: dimming)
//   - MODEL_VERSION: artifact version, 0 for the latest
type Selection struct {
	Scorer  string `koanf:"scorer" json:"scorer"`
	Dir     string `koanf:"dir" json:"dir,omitempty"`
	Name    string `koanf:"name" json:"name,omitempty"`
	Version int    `koanf:"version" json:"version,omitempty"`
}

// Build returns the selected scorer. A learned model that cannot be loaded
// is an error; there is no fallback to the rule scorer.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Build(ctx context.Context, sel Selection, logger zerolog.Logger) (recommend.Scorer, error) {
	switch sel.Scorer {
	case RuleName, "":
		logger.Info().Msg("Using rule scorer")
		return NewRuleScorer(), nil

	case LearnedName:
		store, err := storage.NewStore(sel.Dir)
		if err != nil {
			return nil, fmt.Errorf("open model store: %w", err)
		}
		scorer, meta, err := LoadScorer(ctx, store, sel.Name, sel.Version)
		if err != nil {
			return nil, err
		}
		logger.Info().
			Str("model", meta.Name).
			Int("version", meta.Version).
			Str("kind", scorer.Kind()).
			Str("checksum", meta.Checksum).
			Time("trained_at", meta.TrainedAt).
			Msg("Loaded learned scorer")
		return scorer, nil

	default:
		return nil, fmt.Errorf("unknown scorer %q", sel.Scorer)
	}
}

// Describe returns the name, kind and version reported for a scorer.
func Describe(s recommend.Scorer) (name, kind string, version int) {
	if ls, ok := s.(*LearnedScorer); ok {
		return ls.Name(), ls.Kind(), ls.Version()
	}
	return s.Name(), s.Name(), 0
}
