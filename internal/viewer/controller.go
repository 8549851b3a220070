/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package viewer holds the state behind the data viewer window: the loaded
// recording, the selected row and the source identity. It is UI agnostic;
// the fyne shell and the CLI both drive it through Controller and receive
// updates through View.
//
// Controller is not safe for concurrent use. All calls are expected on the
// UI event loop (or the CLI main goroutine).
package viewer

import (
	"errors"
	"fmt"
	"log/slog"

	"kistlerview/internal/chart"
	"kistlerview/internal/config"
	"kistlerview/internal/export"
	applog "kistlerview/internal/log"
	"kistlerview/internal/sensor"
)

var (
	// ErrNoData is returned by operations that need a loaded file.
	ErrNoData = errors.New("no file loaded")
	// ErrNoSuchRow is returned for a row index outside the table.
	ErrNoSuchRow = errors.New("no such row")
)

// View receives state changes. ShowRecording rebuilds the metadata pane and
// the table; Redraw repaints the chart only.
type View interface {
	ShowRecording(rec *sensor.Recording)
	Redraw(s chart.Snapshot)
	ShowError(op string, err error)
}

// Settings are the tunables the controller takes from the app config.
type Settings struct {
	Parse         sensor.ParseOptions
	Chart         chart.Options
	FallbackLabel string
	DefaultFormat export.Format
	JPEGQuality   int
}

// SettingsFrom maps the app config onto controller settings.
func SettingsFrom(c config.AppConfig) Settings {
	f, err := export.ParseFormat(c.Chart.DefaultFormat)
	if err != nil {
		f = export.PNG
	}
	return Settings{
		Parse:         sensor.ParseOptions{Encoding: c.Loader.Encoding},
		Chart:         chart.Options{Width: c.Chart.Width, Height: c.Chart.Height},
		FallbackLabel: c.Chart.FallbackLabel,
		DefaultFormat: f,
		JPEGQuality:   c.Chart.JPEGQuality,
	}
}

// Controller owns the viewer state.
type Controller struct {
	set  Settings
	view View
	log  *slog.Logger

	rec      *sensor.Recording
	selected int // -1 when nothing is selected
}

// New returns a controller with nothing loaded. v may be nil.
func New(set Settings, v View) *Controller {
	if set.FallbackLabel == "" {
		set.FallbackLabel = "chart"
	}
	if set.DefaultFormat == "" {
		set.DefaultFormat = export.PNG
	}
	c := &Controller{set: set, log: applog.WithComponent("viewer"), selected: -1}
	c.SetView(v)
	return c
}

// SetView replaces the view receiving updates.
func (c *Controller) SetView(v View) {
	if v == nil {
		v = nopView{}
	}
	c.view = v
}

// Recording returns the loaded recording, or nil.
func (c *Controller) Recording() *sensor.Recording { return c.rec }

// Selection returns the selected reading and its row.
func (c *Controller) Selection() (sensor.Reading, int, bool) {
	if c.rec == nil || c.selected < 0 {
		return sensor.Reading{}, -1, false
	}
	return c.rec.Readings[c.selected], c.selected, true
}

// Label is the source base name, or the fallback label when nothing is loaded.
func (c *Controller) Label() string {
	if c.rec == nil || c.rec.Source.BaseName == "" {
		return c.set.FallbackLabel
	}
	return c.rec.Source.BaseName
}

// Load parses path and, on success, replaces recording, peak, source and
// clears the selection before refreshing the whole view. On failure the
// current state is kept and the error is reported.
func (c *Controller) Load(path string) error {
	l := applog.WithOperation(c.log, "load")
	rec, err := sensor.LoadFile(path, c.set.Parse)
	if err != nil {
		l.Error("load failed", slog.String("path", path), slog.Any("err", err))
		c.view.ShowError("Load", err)
		return err
	}
	c.rec = rec
	c.selected = -1
	peak := rec.Peak()
	l.Info("loaded",
		slog.String("path", rec.Source.Path),
		slog.Int("metadata", len(rec.Metadata)),
		slog.Int("readings", rec.Len()),
		slog.Float64("peak_mpa", peak.Pressure),
		slog.Float64("peak_s", peak.Time))

	c.view.ShowRecording(rec)
	c.view.Redraw(c.Snapshot())
	return nil
}

// SelectRow marks table row i as the selection and redraws the chart.
func (c *Controller) SelectRow(i int) error {
	if c.rec == nil {
		return ErrNoData
	}
	if i < 0 || i >= c.rec.Len() {
		return fmt.Errorf("%w: %d", ErrNoSuchRow, i)
	}
	c.selected = i
	r := c.rec.Readings[i]
	c.log.Debug("select", slog.Int("row", i), slog.Float64("time", r.Time), slog.Float64("pressure", r.Pressure))
	c.view.Redraw(c.Snapshot())
	return nil
}

// Snapshot captures what the chart should show right now.
func (c *Controller) Snapshot() chart.Snapshot {
	s := chart.Snapshot{Label: c.Label()}
	if c.rec == nil {
		return s
	}
	s.Readings = c.rec.Readings
	peak := c.rec.Peak()
	s.Peak = &peak
	if sel, _, ok := c.Selection(); ok {
		s.Selection = &sel
	}
	return s
}

// DefaultExportName suggests the save dialog's file name.
func (c *Controller) DefaultExportName() string {
	return export.FileName(c.Label(), c.set.DefaultFormat)
}

// Export renders the current chart to path. The format follows the
// extension; a path without one gets the default format's extension. With
// nothing loaded the chart is exported empty under the fallback label.
// The final path is returned.
func (c *Controller) Export(path string) (string, error) {
	l := applog.WithOperation(c.log, "export")
	out, f, err := export.ResolvePath(path, c.set.DefaultFormat)
	if err != nil {
		l.Error("export failed", slog.String("path", path), slog.Any("err", err))
		c.view.ShowError("Export", err)
		return "", err
	}
	if err := export.WriteChart(out, f, c.Snapshot(), c.exportOptions()); err != nil {
		l.Error("export failed", slog.String("path", out), slog.Any("err", err))
		c.view.ShowError("Export", err)
		return "", err
	}
	l.Info("exported", slog.String("path", out), slog.String("format", string(f)))
	return out, nil
}

// QuickExport writes <dir>/<base>.jpg beside the loaded file. It does
// nothing and returns "" when no file has been loaded.
func (c *Controller) QuickExport() (string, error) {
	if c.rec == nil {
		return "", nil
	}
	out := export.QuickPath(c.rec.Source)
	if out == "" {
		return "", nil
	}
	l := applog.WithOperation(c.log, "quick-export")
	if err := export.WriteChart(out, export.JPEG, c.Snapshot(), c.exportOptions()); err != nil {
		l.Error("quick export failed", slog.String("path", out), slog.Any("err", err))
		c.view.ShowError("Quick save", err)
		return "", err
	}
	l.Info("exported", slog.String("path", out))
	return out, nil
}

func (c *Controller) exportOptions() export.Options {
	o := export.Options{Chart: c.set.Chart, JPEGQuality: c.set.JPEGQuality}
	if c.rec != nil {
		o.SourcePath = c.rec.Source.Path
	}
	return o
}

type nopView struct{}

func (nopView) ShowRecording(*sensor.Recording) {}
func (nopView) Redraw(chart.Snapshot)           {}
func (nopView) ShowError(string, error)         {}
