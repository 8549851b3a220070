//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	fstorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"kistlerview/internal/chart"
	"kistlerview/internal/crash"
	"kistlerview/internal/export"
	applog "kistlerview/internal/log"
	"kistlerview/internal/sensor"
	"kistlerview/internal/version"
	"kistlerview/internal/viewer"
)

const appTitle = "Kistler Data Viewer"

// Run starts the desktop UI and blocks until the main window is closed.
func Run(opts Options) error {
	l := applog.WithComponent("ui")
	l.Info("starting UI")

	a := app.NewWithID("com.kistlerview.viewer")
	s := newShell(a, opts)
	defer crash.Recover(s.loadedPath)

	if opts.File != "" {
		// failure is reported through the error dialog; the window still opens
		_ = s.ctl.Load(opts.File)
	}
	s.win.ShowAndRun()
	l.Info("UI closed")
	return nil
}

// shell is the fyne implementation of viewer.View.
type shell struct {
	app  fyne.App
	win  fyne.Window
	ctl  *viewer.Controller
	set  viewer.Settings
	log  *slog.Logger
	rows []sensor.Reading

	metadata *widget.Entry
	table    *widget.Table
	status   *widget.Label

	chartWin fyne.Window
	chartImg *canvas.Image
}

func newShell(a fyne.App, opts Options) *shell {
	s := &shell{
		app: a,
		set: viewer.SettingsFrom(opts.Config),
		log: applog.WithComponent("ui"),
	}
	s.ctl = viewer.New(s.set, s)

	s.win = a.NewWindow(appTitle)
	w, h := opts.Config.Window.Width, opts.Config.Window.Height
	if w <= 0 || h <= 0 {
		w, h = 800, 600
	}
	s.win.Resize(fyne.NewSize(float32(w), float32(h)))
	s.win.SetMaster()

	s.metadata = widget.NewMultiLineEntry()
	s.metadata.SetPlaceHolder("Metadata of the loaded file")
	s.metadata.Wrapping = fyne.TextWrapOff
	s.metadata.Disable()

	s.table = s.newTable()
	s.status = widget.NewLabel("Ready")

	toolbar := container.NewHBox(
		widget.NewButtonWithIcon("Load CSV…", theme.FolderOpenIcon(), s.openCSV),
		widget.NewButtonWithIcon("Show chart", theme.VisibilityIcon(), s.showChart),
		widget.NewButtonWithIcon("Save chart…", theme.DocumentSaveIcon(), s.saveChart),
		widget.NewButtonWithIcon("Quick save JPG", theme.DownloadIcon(), s.quickSave),
	)
	split := container.NewVSplit(s.metadata, s.table)
	split.Offset = 0.3
	s.win.SetContent(container.NewBorder(toolbar, s.status, nil, nil, split))
	s.win.SetMainMenu(s.menu())
	s.win.SetOnClosed(func() {
		if s.chartWin != nil {
			s.chartWin.Close()
		}
	})
	return s
}

func (s *shell) newTable() *widget.Table {
	t := widget.NewTable(
		func() (int, int) { return len(s.rows), 2 },
		func() fyne.CanvasObject { return widget.NewLabel("0000.000000") },
		func(id widget.TableCellID, o fyne.CanvasObject) {
			lbl := o.(*widget.Label)
			if id.Row < 0 || id.Row >= len(s.rows) {
				lbl.SetText("")
				return
			}
			lbl.SetText(cellText(s.rows[id.Row], id.Col))
		},
	)
	t.ShowHeaderRow = true
	t.CreateHeader = func() fyne.CanvasObject {
		return widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	}
	t.UpdateHeader = func(id widget.TableCellID, o fyne.CanvasObject) {
		o.(*widget.Label).SetText(headerText(id.Col))
	}
	t.SetColumnWidth(0, 160)
	t.SetColumnWidth(1, 160)
	t.OnSelected = s.selectRow
	return t
}

func headerText(col int) string {
	if col == 0 {
		return chart.AxisTime
	}
	return chart.AxisPressure
}

func cellText(r sensor.Reading, col int) string {
	if col == 0 {
		return strconv.FormatFloat(r.Time, 'f', -1, 64)
	}
	return strconv.FormatFloat(r.Pressure, 'f', -1, 64)
}

func (s *shell) menu() *fyne.MainMenu {
	openItem := fyne.NewMenuItem("Load CSV…", s.openCSV)
	openItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyO, Modifier: fyne.KeyModifierShortcutDefault}
	openAnyItem := fyne.NewMenuItem("Open any file…", s.openAny)
	saveItem := fyne.NewMenuItem("Save chart…", s.saveChart)
	saveItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: fyne.KeyModifierShortcutDefault}
	quickItem := fyne.NewMenuItem("Quick save JPG", s.quickSave)
	fileMenu := fyne.NewMenu("File", openItem, openAnyItem, fyne.NewMenuItemSeparator(), saveItem, quickItem)

	chartItem := fyne.NewMenuItem("Show chart", s.showChart)
	viewMenu := fyne.NewMenu("View", chartItem)

	aboutItem := fyne.NewMenuItem("About "+appTitle, func() {
		s.log.Info("menu: about")
		exe, _ := os.Executable()
		info := fmt.Sprintf("%s\nVersion: %s\nOS: %s\nArch: %s\nGo: %s\nExecutable: %s",
			appTitle, version.String(), runtime.GOOS, runtime.GOARCH, runtime.Version(), exe)
		dialog.ShowInformation("About", info, s.win)
	})
	helpMenu := fyne.NewMenu("Help", aboutItem)

	return fyne.NewMainMenu(fileMenu, viewMenu, helpMenu)
}

// ShowRecording rebuilds the metadata pane and the table.
func (s *shell) ShowRecording(rec *sensor.Recording) {
	s.metadata.SetText(strings.Join(rec.Metadata, "\n"))
	s.rows = rec.Readings
	s.table.UnselectAll()
	s.table.Refresh()
	s.table.ScrollToTop()
	s.win.SetTitle(appTitle + " - " + filepath.Base(rec.Source.Path))
	s.status.SetText(fmt.Sprintf("%s: %d readings, %s",
		rec.Source.BaseName, rec.Len(), chart.PointLabel("Max", rec.Peak())))
}

// Redraw repaints the chart window, opening it when it is closed.
func (s *shell) Redraw(snap chart.Snapshot) {
	if s.chartWin == nil {
		s.openChartWindow()
	}
	img, err := chart.RenderImage(snap, s.set.Chart)
	if err != nil {
		s.log.Error("render chart failed", slog.Any("err", err))
		s.status.SetText("Chart rendering failed.")
		w, h := s.chartSize()
		img = chart.Stamp(chart.Blank(w, h), "Chart rendering failed")
	}
	s.chartWin.SetTitle(chart.Title(snap.Label))
	s.chartImg.Image = img
	s.chartImg.Refresh()
}

// ShowError reports a failed action in a dialog and the status bar.
func (s *shell) ShowError(op string, err error) {
	s.status.SetText(op + " failed.")
	dialog.ShowError(err, s.win)
}

func (s *shell) openChartWindow() {
	w := s.app.NewWindow(chart.Title(s.ctl.Label()))
	img := canvas.NewImageFromImage(nil)
	img.FillMode = canvas.ImageFillContain
	img.SetMinSize(fyne.NewSize(480, 240))
	w.SetContent(img)
	cw, ch := s.chartSize()
	w.Resize(fyne.NewSize(float32(cw), float32(ch)))
	w.SetOnClosed(func() {
		if s.chartWin == w {
			s.chartWin = nil
			s.chartImg = nil
		}
	})
	s.chartWin = w
	s.chartImg = img
	w.Show()
}

func (s *shell) chartSize() (int, int) {
	w, h := s.set.Chart.Width, s.set.Chart.Height
	if w <= 0 || h <= 0 {
		return chart.DefaultWidth, chart.DefaultHeight
	}
	return w, h
}

func (s *shell) showChart() {
	s.log.Info("menu: show chart")
	s.Redraw(s.ctl.Snapshot())
	s.chartWin.RequestFocus()
}

func (s *shell) selectRow(id widget.TableCellID) {
	if err := s.ctl.SelectRow(id.Row); err != nil {
		s.log.Debug("select ignored", slog.Int("row", id.Row), slog.Any("err", err))
		return
	}
	if r, _, ok := s.ctl.Selection(); ok {
		s.status.SetText(chart.PointLabel("Sel", r))
	}
}

func (s *shell) openCSV() { s.open(true) }
func (s *shell) openAny() { s.open(false) }

func (s *shell) open(csvOnly bool) {
	fd := dialog.NewFileOpen(func(ur fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, s.win)
			return
		}
		if ur == nil {
			return
		}
		path := ur.URI().Path()
		_ = ur.Close()
		if s.ctl.Load(path) == nil {
			s.log.Info("opened", slog.String("path", path))
		}
	}, s.win)
	if csvOnly {
		fd.SetFilter(fstorage.NewExtensionFileFilter([]string{".csv"}))
	}
	s.startIn(fd)
	fd.Show()
}

func (s *shell) saveChart() {
	fd := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, s.win)
			return
		}
		if uc == nil {
			return
		}
		chosen := uc.URI().Path()
		_ = uc.Close()
		out, err := s.ctl.Export(chosen)
		if out != chosen {
			// the dialog created the chosen name; drop it if we wrote elsewhere
			dropEmpty(chosen)
		}
		if err != nil {
			return
		}
		s.status.SetText("Saved " + out)
	}, s.win)
	fd.SetFileName(s.ctl.DefaultExportName())
	fd.SetFilter(fstorage.NewExtensionFileFilter(export.Extensions()))
	s.startIn(fd)
	fd.Show()
}

func (s *shell) quickSave() {
	out, err := s.ctl.QuickExport()
	if err != nil {
		return
	}
	if out == "" {
		s.status.SetText("Load a CSV file first.")
		return
	}
	s.status.SetText("Saved " + out)
}

type locatable interface {
	SetLocation(fyne.ListableURI)
}

// startIn points a file dialog at the loaded file's directory.
func (s *shell) startIn(d locatable) {
	rec := s.ctl.Recording()
	if rec == nil || rec.Source.Dir == "" {
		return
	}
	lister, err := fstorage.ListerForURI(fstorage.NewFileURI(rec.Source.Dir))
	if err != nil {
		return
	}
	d.SetLocation(lister)
}

func (s *shell) loadedPath() string {
	if rec := s.ctl.Recording(); rec != nil {
		return rec.Source.Path
	}
	return ""
}

func dropEmpty(path string) {
	if st, err := os.Stat(path); err == nil && st.Size() == 0 {
		_ = os.Remove(path)
	}
}
