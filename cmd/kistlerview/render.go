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
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"kistlerview/internal/viewer"
)

func (c *cli) renderCmd() *cobra.Command {
	var (
		output string
		row    int
	)
	cmd := &cobra.Command{
		Use:   "render <file.csv>",
		Short: "Export the pressure chart of a sensor file without opening the UI",
		Long: `Loads a sensor file and writes its chart. The format follows the output
extension (.png, .jpg, .jpeg, .pdf, .svg); without an extension the configured
default format is used. The default output is <dir>/<base>.png next to the input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctl := viewer.New(viewer.SettingsFrom(c.cfg), nil)
			if err := ctl.Load(args[0]); err != nil {
				return err
			}
			if row >= 0 {
				if err := ctl.SelectRow(row); err != nil {
					return err
				}
			}
			target := output
			if target == "" {
				target = filepath.Join(ctl.Recording().Source.Dir, ctl.DefaultExportName())
			}
			out, err := ctl.Export(target)
			if err != nil {
				return err
			}
			c.log.Debug("render done", slog.String("path", out))
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "",
		"Output file (format from extension)")
	cmd.Flags().IntVar(&row, "select", -1,
		"Mark the reading at this row (0-based) as the selection")
	return cmd
}
