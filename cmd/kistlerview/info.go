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
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"kistlerview/internal/sensor"
)

func (c *cli) infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <file.csv>",
		Short: "Print metadata, reading count and peak of a sensor file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := sensor.LoadFile(args[0], sensor.ParseOptions{Encoding: c.cfg.Loader.Encoding})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printInfo(out, rec, outputWidth(out))
			return nil
		},
	}
}

// outputWidth is the terminal width of w, or 0 when w is not a terminal.
func outputWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width < 20 {
		return 0
	}
	return width
}

// printInfo writes a summary of rec. Metadata lines wider than width
// display cells are cut; width 0 disables truncation.
func printInfo(w io.Writer, rec *sensor.Recording, width int) {
	s := rec.Summary()
	_, _ = fmt.Fprintf(w, "File:      %s\n", rec.Source.Path)
	_, _ = fmt.Fprintf(w, "Metadata:  %d lines\n", len(rec.Metadata))
	for _, line := range rec.Metadata {
		_, _ = fmt.Fprintf(w, "  %s\n", fit(line, width-2))
	}
	_, _ = fmt.Fprintf(w, "Readings:  %d\n", s.Count)
	_, _ = fmt.Fprintf(w, "Time:      %.6f .. %.6f s\n", s.Start, s.End)
	_, _ = fmt.Fprintf(w, "Pressure:  %.2f .. %.2f MPa\n", s.MinPressure, s.MaxPressure)
	_, _ = fmt.Fprintf(w, "Peak:      %.2f MPa at %.6f s (row %d)\n", s.Peak.Pressure, s.Peak.Time, rec.PeakIndex)
}

func fit(s string, width int) string {
	s = strings.ReplaceAll(s, "\t", " ")
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}
