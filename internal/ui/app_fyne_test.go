//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// These tests drive the shell through the fyne test driver. They are gated
// behind the "fyne" build tag so CI does not need a display:
//
//	go test -tags fyne ./internal/ui
package ui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"

	"kistlerview/internal/chart"
	"kistlerview/internal/config"
	"kistlerview/internal/sensor"
)

const sample = "Sensor Run 1\nTime;\nTime[s];Pressure[MPa]\n0.000;0.1\n0.001;5.2\n0.002;3.0\n"

func newTestShell(t *testing.T) *shell {
	t.Helper()
	a := test.NewTempApp(t)
	cfg := config.Defaults()
	cfg.Chart.Width, cfg.Chart.Height = 320, 200
	return newShell(a, Options{Config: cfg})
}

func writeSample(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestShell_InitialState(t *testing.T) {
	s := newTestShell(t)
	if s.status.Text != "Ready" {
		t.Fatalf("status = %q", s.status.Text)
	}
	if rows, cols := s.table.Length(); rows != 0 || cols != 2 {
		t.Fatalf("table length = %d x %d", rows, cols)
	}
	if s.chartWin != nil {
		t.Fatal("chart window open before any action")
	}
	if s.win.Title() != appTitle {
		t.Fatalf("title = %q", s.win.Title())
	}
}

func TestShell_LoadFillsPanes(t *testing.T) {
	s := newTestShell(t)
	if err := s.ctl.Load(writeSample(t, "run1.csv", sample)); err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.metadata.Text != "Sensor Run 1" {
		t.Fatalf("metadata = %q", s.metadata.Text)
	}
	if rows, _ := s.table.Length(); rows != 3 {
		t.Fatalf("rows = %d", rows)
	}
	if !strings.Contains(s.status.Text, "3 readings") || !strings.Contains(s.status.Text, "Max: 5.20 MPa") {
		t.Fatalf("status = %q", s.status.Text)
	}
	if s.chartWin == nil || s.chartImg == nil || s.chartImg.Image == nil {
		t.Fatal("chart window not drawn after load")
	}
	if got := s.chartWin.Title(); got != chart.Title("run1") {
		t.Fatalf("chart title = %q", got)
	}
}

func TestShell_SelectRow(t *testing.T) {
	s := newTestShell(t)
	if err := s.ctl.Load(writeSample(t, "run1.csv", sample)); err != nil {
		t.Fatal(err)
	}
	s.table.Select(widget.TableCellID{Row: 2, Col: 1})
	r, row, ok := s.ctl.Selection()
	if !ok || row != 2 || r != (sensor.Reading{Time: 0.002, Pressure: 3.0}) {
		t.Fatalf("selection = %v row %d ok %v", r, row, ok)
	}
	if !strings.HasPrefix(s.status.Text, "Sel: 3.00 MPa") {
		t.Fatalf("status = %q", s.status.Text)
	}
}

func TestShell_ChartWindowReopens(t *testing.T) {
	s := newTestShell(t)
	s.showChart()
	first := s.chartWin
	if first == nil {
		t.Fatal("show chart did not open a window")
	}
	first.Close()
	if s.chartWin != nil {
		t.Fatal("handle kept after close")
	}
	s.showChart()
	if s.chartWin == nil || s.chartWin == first {
		t.Fatal("chart window not recreated")
	}
}

func TestShell_FailedLoad(t *testing.T) {
	s := newTestShell(t)
	if err := s.ctl.Load(writeSample(t, "good.csv", sample)); err != nil {
		t.Fatal(err)
	}
	if err := s.ctl.Load(writeSample(t, "bad.csv", sample+"0.003;abc\n")); err == nil {
		t.Fatal("expected failure")
	}
	if s.status.Text != "Load failed." {
		t.Fatalf("status = %q", s.status.Text)
	}
	if rows, _ := s.table.Length(); rows != 3 {
		t.Fatalf("previous rows lost: %d", rows)
	}
}

func TestShell_QuickSave(t *testing.T) {
	s := newTestShell(t)
	s.quickSave()
	if s.status.Text != "Load a CSV file first." {
		t.Fatalf("status = %q", s.status.Text)
	}

	p := writeSample(t, "run1.csv", sample)
	if err := s.ctl.Load(p); err != nil {
		t.Fatal(err)
	}
	s.quickSave()
	want := filepath.Join(filepath.Dir(p), "run1.jpg")
	if s.status.Text != "Saved "+want {
		t.Fatalf("status = %q", s.status.Text)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("quick save file: %v", err)
	}
}

func TestCellText(t *testing.T) {
	r := sensor.Reading{Time: 0.001, Pressure: 5.2}
	if cellText(r, 0) != "0.001" || cellText(r, 1) != "5.2" {
		t.Fatalf("cells = %q %q", cellText(r, 0), cellText(r, 1))
	}
	if headerText(0) != chart.AxisTime || headerText(1) != chart.AxisPressure {
		t.Fatal("unexpected headers")
	}
}

func TestDropEmpty(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "plain")
	full := filepath.Join(dir, "kept")
	_ = os.WriteFile(empty, nil, 0o644)
	_ = os.WriteFile(full, []byte("x"), 0o644)
	dropEmpty(empty)
	dropEmpty(full)
	if _, err := os.Stat(empty); !os.IsNotExist(err) {
		t.Fatal("empty file kept")
	}
	if _, err := os.Stat(full); err != nil {
		t.Fatal("non-empty file removed")
	}
}
