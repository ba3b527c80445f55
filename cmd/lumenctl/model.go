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

	"github.com/urfave/cli/v3"

	"github.com/tomtom215/lumen/internal/recommend/scorers"
	"github.com/tomtom215/lumen/internal/recommend/storage"
)

var errModelName = errors.New("a model name is required")

const (
	flagDir  = "dir"
	flagKeep = "keep"
)

func modelCommand() *cli.Command {
	return &cli.Command{
		Name:    "model",
		Aliases: []string{"m"},
		Usage:   "Manage learned model artifacts",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  flagDir,
				Usage: "Model artifact directory (default: model.dir from config)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "import",
				Usage:     "Validate an exported model description and store it as the next version",
				ArgsUsage: "<model.json>",
				Action:    cmdModelImport,
			},
			{
				Name:   "list",
				Usage:  "List the latest version of every stored model",
				Action: cmdModelList,
			},
			{
				Name:      "inspect",
				Usage:     "Show metadata and structure of a stored model",
				ArgsUsage: "<name>",
				Flags:     []cli.Flag{modelVersionFlag()},
				Action:    cmdModelInspect,
			},
			{
				Name:      "prune",
				Usage:     "Remove old versions of a model",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  flagKeep,
						Usage: "Versions to keep",
						Value: 3,
					},
				},
				Action: cmdModelPrune,
			},
		},
	}
}

// ModelInfo is printed by model inspect.
type ModelInfo struct {
	Metadata *storage.ModelMetadata    `json:"metadata" yaml:"metadata"`
	Trees    int                       `json:"trees,omitempty" yaml:"trees,omitempty"`
	Nodes    int                       `json:"nodes,omitempty" yaml:"nodes,omitempty"`
	Linear   *storage.LinearModelState `json:"linear,omitempty" yaml:"linear,omitempty"`
}

func openModelStore(cmd *cli.Command) (*appState, *storage.Store, error) {
	st, err := getState(cmd)
	if err != nil {
		return nil, nil, err
	}
	dir := st.cfg.Model.Dir
	if v := cmd.String(flagDir); v != "" {
		dir = v
	}
	store, err := storage.NewStore(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("open model store: %w", err)
	}
	return st, store, nil
}

func cmdModelImport(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return errOneInput
	}
	st, store, err := openModelStore(cmd)
	if err != nil {
		return err
	}

	path := cmd.Args().First()
	var artifact *scorers.Artifact
	if err := readFile(path, func(r io.Reader) error {
		artifact, err = scorers.ImportJSON(r)
		return err
	}); err != nil {
		return err
	}
	meta, err := artifact.Save(ctx, store, path)
	if err != nil {
		return err
	}
	return st.encode(meta)
}

func cmdModelList(ctx context.Context, cmd *cli.Command) error {
	st, store, err := openModelStore(cmd)
	if err != nil {
		return err
	}
	models, err := store.ListModels(ctx)
	if err != nil {
		return err
	}
	return st.encode(models)
}

func cmdModelInspect(ctx context.Context, cmd *cli.Command) error {
	name := cmd.Args().First()
	if name == "" {
		return errModelName
	}
	st, store, err := openModelStore(cmd)
	if err != nil {
		return err
	}
	state, meta, err := store.Load(ctx, name, cmd.Int(flagModelVersion))
	if err != nil {
		return err
	}

	info := ModelInfo{Metadata: meta, Linear: state.Linear}
	if state.Trees != nil {
		info.Trees = len(state.Trees.Trees)
		for _, tree := range state.Trees.Trees {
			info.Nodes += len(tree.Nodes)
		}
	}
	return st.encode(info)
}

func cmdModelPrune(ctx context.Context, cmd *cli.Command) error {
	name := cmd.Args().First()
	if name == "" {
		return errModelName
	}
	st, store, err := openModelStore(cmd)
	if err != nil {
		return err
	}
	removed, err := store.Prune(ctx, name, cmd.Int(flagKeep))
	if err != nil {
		return err
	}
	return st.encode(map[string]any{"model": name, "removed": removed})
}
