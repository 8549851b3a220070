/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"kistlerview/internal/config"
	applog "kistlerview/internal/log"
	"kistlerview/internal/ui"
)

// cli carries the flags and the loaded config shared by all subcommands.
type cli struct {
	cfgPath   string
	logLevel  string
	logFormat string

	cfg config.AppConfig
	log *slog.Logger
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	c := &cli{cfg: config.Defaults()}
	root := &cobra.Command{
		Use:   "kistlerview [file.csv]",
		Short: "Viewer for Kistler sensor pressure curves",
		Long: `kistlerview loads the semicolon separated CSV exports of Kistler pressure
sensors, shows metadata and readings in a table and plots the pressure curve
with its peak and a selectable point. Charts export as PNG, JPEG, PDF or SVG.

Examples:
  kistlerview                          # Open the viewer
  kistlerview run_01.csv               # Open the viewer with a file loaded
  kistlerview info run_01.csv          # Print metadata, count and peak
  kistlerview render run_01.csv -o run_01.pdf --select 120`,
		Args:              cobra.MaximumNArgs(1),
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		RunE:              c.runUI,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&c.cfgPath, "config", "",
		"Config file (default: <user config dir>/kistlerview/config.yaml)")
	pf.StringVar(&c.logLevel, "log-level", "",
		"Log level (debug, info, warn, error)")
	pf.StringVar(&c.logFormat, "log-format", "",
		"Log format (console, json)")

	root.AddCommand(c.infoCmd(), c.renderCmd(), c.versionCmd())
	return root
}

// setup loads the config and initialises logging before any subcommand runs.
// An invalid config file is reported and the defaults are used.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	var err error
	if c.cfgPath != "" {
		if _, serr := os.Stat(c.cfgPath); serr != nil {
			return fmt.Errorf("config: %w", serr)
		}
		c.cfg, err = config.LoadFile(c.cfgPath)
	} else {
		c.cfg, err = config.Load()
	}

	opts := applog.Options{
		Level:     c.cfg.Logging.Level,
		Format:    c.cfg.Logging.Format,
		AddSource: c.cfg.Logging.Source,
		File:      c.cfg.Logging.File,
	}
	if c.logLevel != "" {
		opts.Level = c.logLevel
	}
	if c.logFormat != "" {
		opts.Format = c.logFormat
	}
	applog.Init(opts)
	c.log = applog.WithComponent("cli")
	c.log.Debug("start", slog.String("cmd", cmd.Name()))

	if err != nil {
		c.log.Warn("config not loaded, using defaults", slog.Any("err", err))
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v (using defaults)\n", err)
	}
	return nil
}

func (c *cli) runUI(_ *cobra.Command, args []string) error {
	opts := ui.Options{Config: c.cfg}
	if len(args) == 1 {
		opts.File = args[0]
	}
	c.log.Info("launch ui", slog.String("file", opts.File))
	return ui.Run(opts)
}
