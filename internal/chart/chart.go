/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package chart draws the pressure curve. Every call builds a new chart from
// a Snapshot: there is no incremental update, the caller simply redraws.
package chart

import (
	"bytes"
	"fmt"
	"html"
	"image"
	"image/png"
	"io"
	"math"
	"strconv"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"kistlerview/internal/sensor"
)

const (
	DefaultWidth  = 1000
	DefaultHeight = 500

	AxisTime     = "Time (s)"
	AxisPressure = "Pressure (MPa)"
	SeriesCurve  = "Pressure"

	// NoDataMessage is stamped on charts of an empty snapshot.
	NoDataMessage = "No data loaded"
	titlePrefix  = "Pressure curve"
)

var (
	curveColor     = drawing.ColorFromHex("1f77b4")
	peakColor      = drawing.ColorFromHex("d62728")
	selectionColor = drawing.ColorFromHex("2ca02c")
	gridColor      = drawing.ColorFromHex("dddddd")
	gridMinorColor = drawing.ColorFromHex("f0f0f0")
)

// Snapshot is what the renderer reads on each redraw. Label is the source
// base name, or the fallback label when nothing is loaded.
type Snapshot struct {
	Label     string
	Readings  []sensor.Reading
	Peak      *sensor.Reading
	Selection *sensor.Reading
}

// Empty reports whether there is nothing to plot.
func (s Snapshot) Empty() bool { return len(s.Readings) == 0 }

// Options sets the output surface size in pixels.
type Options struct {
	Width  int
	Height int
}

func (o Options) size() (int, int) {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	return w, h
}

// Format is an output encoding supported by go-chart directly.
type Format int

const (
	PNG Format = iota
	SVG
)

// PointLabel formats a marker legend entry: pressure to 2 and time to 6 decimals.
func PointLabel(prefix string, r sensor.Reading) string {
	return fmt.Sprintf("%s: %.2f MPa at %.6f s", prefix, r.Pressure, r.Time)
}

// Title returns the chart title for label.
func Title(label string) string {
	if label == "" {
		return titlePrefix
	}
	return titlePrefix + ": " + label
}

// Build assembles the chart for s: the full curve, the peak marker, the
// selection marker when set, axis names, title, legend and grid.
func Build(s Snapshot, o Options) gochart.Chart {
	w, h := o.size()
	ch := gochart.Chart{
		Title:      Title(s.Label),
		TitleStyle: gochart.Style{FontSize: 13},
		Width:      w,
		Height:     h,
		Background: gochart.Style{Padding: gochart.Box{Top: 48, Left: 16, Right: 24, Bottom: 16}},
	}

	if s.Empty() {
		ch.XAxis = axisX(0, 1)
		ch.YAxis = axisY(0, 1)
		// go-chart refuses to render without a series; this one draws nothing.
		ch.Series = []gochart.Series{gochart.ContinuousSeries{
			XValues: []float64{0},
			YValues: []float64{0},
			Style:   gochart.Style{StrokeColor: drawing.ColorTransparent},
		}}
		return ch
	}

	xs := make([]float64, len(s.Readings))
	ys := make([]float64, len(s.Readings))
	for i, r := range s.Readings {
		xs[i], ys[i] = r.Time, r.Pressure
	}
	xmin, xmax := bounds(xs)
	ymin, ymax := bounds(ys)
	ch.XAxis = axisX(xmin, xmax)
	ch.YAxis = axisY(ymin, ymax)

	series := []gochart.Series{gochart.ContinuousSeries{
		Name:    SeriesCurve,
		XValues: xs,
		YValues: ys,
		Style:   gochart.Style{StrokeColor: curveColor, StrokeWidth: 1.5},
	}}
	if s.Peak != nil {
		series = append(series, marker(PointLabel("Max", *s.Peak), *s.Peak, peakColor, 5))
	}
	if s.Selection != nil {
		series = append(series, marker(PointLabel("Sel", *s.Selection), *s.Selection, selectionColor, 7))
	}
	ch.Series = series
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}
	return ch
}

func marker(name string, r sensor.Reading, col drawing.Color, size float64) gochart.ContinuousSeries {
	return gochart.ContinuousSeries{
		Name:    name,
		XValues: []float64{r.Time},
		YValues: []float64{r.Pressure},
		Style: gochart.Style{
			StrokeColor: col,
			StrokeWidth: 2,
			DotColor:    col,
			DotWidth:    size,
		},
	}
}

func axisX(lo, hi float64) gochart.XAxis {
	lo, hi = widen(lo, hi, 0, 0)
	return gochart.XAxis{
		Name:           AxisTime,
		Range:          &gochart.ContinuousRange{Min: lo, Max: hi},
		Ticks:          ticks(lo, hi, 8),
		GridMajorStyle: gochart.Style{StrokeColor: gridColor, StrokeWidth: 1},
		GridMinorStyle: gochart.Style{StrokeColor: gridMinorColor, StrokeWidth: 1},
	}
}

func axisY(lo, hi float64) gochart.YAxis {
	lo, hi = widen(lo, hi, 0.05, 0.12)
	return gochart.YAxis{
		Name:           AxisPressure,
		Range:          &gochart.ContinuousRange{Min: lo, Max: hi},
		Ticks:          ticks(lo, hi, 6),
		GridMajorStyle: gochart.Style{StrokeColor: gridColor, StrokeWidth: 1},
		GridMinorStyle: gochart.Style{StrokeColor: gridMinorColor, StrokeWidth: 1},
	}
}

// widen pads [lo, hi] by fractions of its span. A zero span (one reading or
// a flat curve) becomes a unit-sized window around the value, since go-chart
// rejects empty ranges.
func widen(lo, hi, below, above float64) (float64, float64) {
	span := hi - lo
	if span <= 0 {
		pad := math.Max(math.Abs(lo)*0.5, 0.5)
		return lo - pad, hi + pad
	}
	return lo - span*below, hi + span*above
}

func bounds(vs []float64) (lo, hi float64) {
	lo, hi = vs[0], vs[0]
	for _, v := range vs[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// ticks places about target ticks on [lo, hi] at round steps (1, 2 or 5
// times a power of ten), labelled with as many decimals as the step needs.
// Sensor time axes are often only a few milliseconds wide.
func ticks(lo, hi float64, target int) []gochart.Tick {
	span := hi - lo
	if !(span > 0) || math.IsInf(span, 0) || target < 1 {
		return nil
	}
	step := niceStep(span / float64(target))
	dec := min(max(0, -int(math.Floor(math.Log10(step)+1e-9))), 9)
	first := int(math.Ceil(lo/step - 1e-9))
	last := int(math.Floor(hi/step + 1e-9))
	if last < first || last-first > 100 {
		return nil
	}
	out := make([]gochart.Tick, 0, last-first+1)
	for i := first; i <= last; i++ {
		v := float64(i) * step
		if v == 0 {
			v = 0 // no "-0.00" label
		}
		out = append(out, gochart.Tick{Value: v, Label: strconv.FormatFloat(v, 'f', dec, 64)})
	}
	return out
}

func niceStep(raw float64) float64 {
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	const eps = 1e-9
	switch f := raw / mag; {
	case f <= 1+eps:
		return mag
	case f <= 2+eps:
		return 2 * mag
	case f <= 5+eps:
		return 5 * mag
	default:
		return 10 * mag
	}
}

// Render writes s as PNG or SVG.
func Render(w io.Writer, s Snapshot, o Options, f Format) error {
	if f == PNG {
		img, err := RenderImage(s, o)
		if err != nil {
			return err
		}
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("encode png: %w", err)
		}
		return nil
	}
	ch := Build(s, o)
	var buf bytes.Buffer
	if err := ch.Render(gochart.SVG, &buf); err != nil {
		return fmt.Errorf("render svg: %w", err)
	}
	out := buf.Bytes()
	if s.Empty() {
		width, height := o.size()
		out = svgNotice(out, width, height, NoDataMessage)
	}
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

// svgNotice adds msg in a light box at the centre of an SVG document,
// matching Stamp on raster output.
func svgNotice(doc []byte, width, height int, msg string) []byte {
	end := bytes.LastIndex(doc, []byte("</svg>"))
	if end < 0 {
		return doc
	}
	bw, bh := len([]rune(msg))*8+16, 29
	x, y := width/2, height/2
	note := fmt.Sprintf(`<rect x="%d" y="%d" width="%d" height="%d" style="fill:rgb(248,248,248);fill-opacity:0.92"/>`+
		`<text x="%d" y="%d" text-anchor="middle" style="font-family:sans-serif;font-size:13px;fill:rgb(90,90,90)">%s</text>`,
		x-bw/2, y-bh/2-4, bw, bh, x, y, html.EscapeString(msg))
	out := make([]byte, 0, len(doc)+len(note))
	out = append(out, doc[:end]...)
	out = append(out, note...)
	return append(out, doc[end:]...)
}

// RenderImage rasterizes s. An empty snapshot gets a "No data loaded" notice.
func RenderImage(s Snapshot, o Options) (image.Image, error) {
	ch := Build(s, o)
	var buf bytes.Buffer
	if err := ch.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decode chart: %w", err)
	}
	if s.Empty() {
		return Stamp(img, NoDataMessage), nil
	}
	return img, nil
}
