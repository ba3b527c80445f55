// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package scorers

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/lumen/internal/recommend/storage"
	"github.com/tomtom215/lumen/internal/validation"
)

// Artifact is an externally trained model description, as exported by the
// training job:
//
//	{
//	  "name": "lgbm_reco",
//	  "kind": "trees",
//	  "features": ["night_traffic", ..., "existing_lx"],
//	  "trained_at": "2026-03-01T00:00:00Z",
//	  "training_rows": 50000,
//	  "metrics": {"mae": 0.21, "rmse": 0.33, "r2": 0.97},
//	  "trees": {"base_score": 14.2, "trees": [{"nodes": [...]}]}
//	}
type Artifact struct {
	storage.ModelState

	Name         string             `json:"name" validate:"required,max=64,excludesall=/\\"`
	TrainedAt    time.Time          `json:"trained_at"`
	TrainingRows int                `json:"training_rows" validate:"gte=0"`
	Metrics      map[string]float64 `json:"metrics,omitempty"`
}

// ImportJSON decodes and validates an artifact. The model is built once to
// check its structure and feature order.
func ImportJSON(r io.Reader) (*Artifact, error) {
	var a Artifact
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&a); err != nil {
		return nil, fmt.Errorf("decode model artifact: %w", err)
	}
	if _, err := a.Model(); err != nil {
		return nil, err
	}
	return &a, nil
}

// Model validates the artifact and builds its model.
func (a *Artifact) Model() (Model, error) {
	if verr := validation.ValidateStruct(a); verr != nil {
		return nil, fmt.Errorf("invalid model artifact: %w", verr)
	}
	if err := CheckFeatureOrder(a.Features); err != nil {
		return nil, err
	}
	return ModelFromState(&a.ModelState)
}

// Scorer builds an unversioned LearnedScorer from the artifact.
func (a *Artifact) Scorer() (*LearnedScorer, error) {
	model, err := a.Model()
	if err != nil {
		return nil, err
	}
	return NewLearnedScorer(a.Name, 0, a.Features, model)
}

// Save stores the artifact as the next version of its name.
func (a *Artifact) Save(ctx context.Context, store *storage.Store, source string) (*storage.ModelMetadata, error) {
	if _, err := a.Model(); err != nil {
		return nil, err
	}
	return store.Save(ctx, a.Name, 0, &a.ModelState, storage.ModelMetadata{
		TrainedAt:    a.TrainedAt,
		TrainingRows: a.TrainingRows,
		Source:       source,
		Metrics:      a.Metrics,
	})
}
