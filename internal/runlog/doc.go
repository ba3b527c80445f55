// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

/*
Package runlog keeps a durable journal of offline runs.

Every batch, synthetic or report run executed by lumenctl is recorded as a
Run in a BadgerDB database. Keys sort newest first, so List walks the
journal forward and stops at the limit:

	run:<inverted start time, 8 bytes big-endian><run id>

Values are JSON. Lookups by id go through a secondary index:

	id:<run id> -> primary key

Usage:

	j, err := runlog.Open(runlog.DefaultConfig())
	if err != nil {
		return err
	}
	defer j.Close()

	run := runlog.NewRun(runlog.KindBatch, "grid.csv", "out.csv")
	// ... do the work ...
	run.Finish(err)
	if err := j.Record(ctx, run); err != nil {
		return err
	}

	recent, err := j.List(ctx, 20)

For tests, OpenInMemory returns a journal that never touches the disk.
*/
package runlog
