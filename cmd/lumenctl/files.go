// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// writeAtomic writes through a temporary file next to path and renames it
// into place only when write succeeds.
func writeAtomic(path string, write func(w io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".lumen-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	err = write(tmp)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// readFile opens path and hands it to read.
func readFile(path string, read func(r io.Reader) error) error {
	f, err := os.Open(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return err
	}
	defer f.Close()
	return read(f)
}
