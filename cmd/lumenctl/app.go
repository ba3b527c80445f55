// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/tomtom215/lumen/internal/config"
	"github.com/tomtom215/lumen/internal/logging"
	"github.com/tomtom215/lumen/internal/runlog"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

var errNoState = errors.New("lumenctl state not initialized")

// Global flag names.
const (
	flagConfig    = "config"
	flagDebug     = "debug"
	flagFormat    = "format"
	flagNoJournal = "no-journal"
)

const appStateKey = "app-state"

// appState is built once in Before and shared by every command.
type appState struct {
	cfg       *config.Config
	format    string
	noJournal bool
	out       io.Writer

	journalOnce sync.Once
	journal     *runlog.Journal
	journalErr  error
}

func getState(cmd *cli.Command) (*appState, error) {
	st, ok := cmd.Root().Metadata[appStateKey].(*appState)
	if !ok {
		return nil, errNoState
	}
	return st, nil
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:                  "lumenctl",
		Version:               fmt.Sprintf("%s (%s)", version, commit),
		Usage:                 "Offline tools for the Lumen dimming recommender",
		EnableShellCompletion: true,
		HideHelpCommand:       true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config file (default: config.yaml or $CONFIG_PATH)",
			},
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "Prints verbose logs",
			},
			&cli.StringFlag{
				Name:  flagFormat,
				Usage: "Output format [json, yaml]",
				Value: formatJSON,
			},
			&cli.BoolFlag{
				Name:  flagNoJournal,
				Usage: "Do not record runs in the journal",
			},
		},
		Commands: []*cli.Command{
			batchCommand(),
			synthCommand(),
			reportCommand(),
			modelCommand(),
			runsCommand(),
		},
		Metadata: map[string]any{},
		Before:   setup,
		After:    teardown,
	}
}

func setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if path := cmd.String(flagConfig); path != "" {
		if err := os.Setenv(config.ConfigPathEnvVar, path); err != nil {
			return ctx, fmt.Errorf("set %s: %w", config.ConfigPathEnvVar, err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return ctx, err
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.Format = cfg.Logging.Format
	logCfg.Caller = cfg.Logging.Caller
	logCfg.Service = "lumenctl"
	logCfg.Version = version
	if cmd.Bool(flagDebug) {
		logCfg.Level = "debug"
	}
	logging.Init(logCfg)

	format := cmd.String(flagFormat)
	switch format {
	case formatJSON:
	case formatYAML, "yml":
		format = formatYAML
	default:
		return ctx, fmt.Errorf("unknown output format %q", format)
	}

	out := cmd.Root().Writer
	if out == nil {
		out = os.Stdout
	}
	st := &appState{
		cfg:       cfg,
		format:    format,
		noJournal: cmd.Bool(flagNoJournal),
		out:       out,
	}
	cmd.Root().Metadata[appStateKey] = st
	return ctx, nil
}

func teardown(_ context.Context, cmd *cli.Command) error {
	if st, err := getState(cmd); err == nil && st.journal != nil {
		return st.journal.Close()
	}
	return nil
}

// openJournal opens the run journal on first use.
func (st *appState) openJournal() (*runlog.Journal, error) {
	st.journalOnce.Do(func() {
		st.journal, st.journalErr = runlog.Open(st.cfg.Journal, logging.WithComponent("runlog"))
	})
	return st.journal, st.journalErr
}

// record finishes a run and writes it to the journal. Journal failures are
// logged; they never fail the command.
func (st *appState) record(ctx context.Context, run *runlog.Run, runErr error) {
	run.Finish(runErr)
	if st.noJournal {
		return
	}
	journal, err := st.openJournal()
	if err == nil {
		err = journal.Record(ctx, run)
	}
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("run not recorded in journal")
	}
}

// runLogger returns a logger carrying the run id.
func runLogger(ctx context.Context) zerolog.Logger {
	return logging.CtxWith(ctx).Logger()
}

func (st *appState) encode(v any) error {
	if st.format == formatYAML {
		enc := yaml.NewEncoder(st.out)
		defer enc.Close()
		return enc.Encode(v)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(st.out, string(data))
	return err
}
