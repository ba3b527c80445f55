// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package main

import (
	"context"
	"errors"

	"github.com/urfave/cli/v3"
)

var errRunID = errors.New("a run id is required")

const flagLimit = "limit"

func runsCommand() *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "Inspect the run journal",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recorded runs, newest first",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    flagLimit,
						Aliases: []string{"n"},
						Usage:   "Maximum runs listed, newest first",
						Value:   20,
					},
				},
				Action: cmdRunsList,
			},
			{
				Name:      "show",
				Usage:     "Show one run",
				ArgsUsage: "<run-id>",
				Action:    cmdRunsShow,
			},
			{
				Name:  "prune",
				Usage: "Delete all but the newest runs and reclaim disk space",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  flagKeep,
						Usage: "Runs to keep",
						Value: 100,
					},
				},
				Action: cmdRunsPrune,
			},
		},
	}
}

func cmdRunsList(ctx context.Context, cmd *cli.Command) error {
	st, err := getState(cmd)
	if err != nil {
		return err
	}
	journal, err := st.openJournal()
	if err != nil {
		return err
	}
	runs, err := journal.List(ctx, cmd.Int(flagLimit))
	if err != nil {
		return err
	}
	return st.encode(runs)
}

func cmdRunsShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.Args().First()
	if id == "" {
		return errRunID
	}
	st, err := getState(cmd)
	if err != nil {
		return err
	}
	journal, err := st.openJournal()
	if err != nil {
		return err
	}
	run, err := journal.Get(ctx, id)
	if err != nil {
		return err
	}
	return st.encode(run)
}

func cmdRunsPrune(ctx context.Context, cmd *cli.Command) error {
	st, err := getState(cmd)
	if err != nil {
		return err
	}
	journal, err := st.openJournal()
	if err != nil {
		return err
	}
	removed, err := journal.Prune(ctx, max(cmd.Int(flagKeep), 0))
	if err != nil {
		return err
	}
	if err := journal.RunGC(); err != nil {
		return err
	}
	return st.encode(map[string]any{"removed": removed})
}
