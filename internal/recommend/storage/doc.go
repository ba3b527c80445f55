// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

// Package storage persists learned scorer artifacts.
//
// Models are trained outside this process and imported once; the store keeps
// every imported version so a deployment can pin or roll back a scorer.
//
// # Storage Format
//
//	filename: {model_name}_v{version}.gob.gz
//
//	structure:
//	  - Metadata (ModelMetadata)
//	  - CompressedData (gzip-compressed gob-encoded ModelState)
//
// The checksum in the metadata is the SHA-256 of the uncompressed gob
// payload. Load verifies it and fails with ErrChecksumMismatch on a
// corrupted file. Writes go through a temp file and a rename.
//
// # Model State
//
// ModelState carries the kind, the ordered feature tuple, and exactly one of
// LinearModelState or TreeEnsembleState. The scorers package turns a state
// into a LearnedScorer and enforces the feature order.
//
// # Usage
//
//	store, err := storage.NewStore("/data/models")
//	meta, err := store.Save(ctx, "lgbm_reco", 0, state, storage.ModelMetadata{})
//	state, meta, err := store.Load(ctx, "lgbm_reco", 0) // 0 = latest
//
// # Thread Safety
//
// Save, Delete and Prune take the write lock; Load and ListModels share the
// read lock.
package storage
