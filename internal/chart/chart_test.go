/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package chart

import (
	"bytes"
	"image"
	"image/color"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gochart "github.com/wcharczuk/go-chart/v2"

	"kistlerview/internal/sensor"
)

func sample() Snapshot {
	rs := []sensor.Reading{{Time: 0, Pressure: 0.1}, {Time: 0.001, Pressure: 5.2}, {Time: 0.002, Pressure: 3.0}}
	return Snapshot{Label: "run-1", Readings: rs, Peak: &rs[1]}
}

func seriesByPrefix(t *testing.T, ch gochart.Chart, prefix string) gochart.ContinuousSeries {
	t.Helper()
	for _, s := range ch.Series {
		cs, ok := s.(gochart.ContinuousSeries)
		if ok && strings.HasPrefix(cs.Name, prefix) {
			return cs
		}
	}
	t.Fatalf("no series named %q*", prefix)
	return gochart.ContinuousSeries{}
}

func TestBuildPlotsCurvePeakAndSelection(t *testing.T) {
	s := sample()
	sel := s.Readings[2]
	s.Selection = &sel

	ch := Build(s, Options{Width: 640, Height: 320})
	require.Len(t, ch.Series, 3)
	assert.Equal(t, "Pressure curve: run-1", ch.Title)
	assert.Equal(t, AxisTime, ch.XAxis.Name)
	assert.Equal(t, AxisPressure, ch.YAxis.Name)
	assert.Equal(t, 640, ch.Width)
	assert.Len(t, ch.Elements, 1, "legend")

	curve := seriesByPrefix(t, ch, SeriesCurve)
	assert.Equal(t, []float64{0, 0.001, 0.002}, curve.XValues)
	assert.Equal(t, []float64{0.1, 5.2, 3.0}, curve.YValues)

	peak := seriesByPrefix(t, ch, "Max")
	assert.Equal(t, "Max: 5.20 MPa at 0.001000 s", peak.Name)
	assert.Equal(t, []float64{0.001}, peak.XValues)
	assert.Equal(t, []float64{5.2}, peak.YValues)

	mark := seriesByPrefix(t, ch, "Sel")
	assert.Equal(t, "Sel: 3.00 MPa at 0.002000 s", mark.Name)
	assert.Equal(t, []float64{0.002}, mark.XValues)
	assert.Equal(t, []float64{3.0}, mark.YValues)
	assert.NotEqual(t, peak.Style.DotColor, mark.Style.DotColor)
}

func TestBuildWithoutSelection(t *testing.T) {
	ch := Build(sample(), Options{})
	assert.Len(t, ch.Series, 2)
	assert.Equal(t, DefaultWidth, ch.Width)
	assert.Equal(t, DefaultHeight, ch.Height)
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Pressure curve", Title(""))
	assert.Equal(t, "Pressure curve: chart", Title("chart"))
}

func TestRenderImageSizes(t *testing.T) {
	one := []sensor.Reading{{Time: 0.5, Pressure: 2}}
	flat := []sensor.Reading{{Time: 0, Pressure: 1}, {Time: 1, Pressure: 1}}
	cases := map[string]Snapshot{
		"sample":        sample(),
		"single point":  {Label: "x", Readings: one, Peak: &one[0]},
		"flat pressure": {Label: "x", Readings: flat, Peak: &flat[0]},
		"empty":         {Label: "chart"},
	}
	for name, s := range cases {
		t.Run(name, func(t *testing.T) {
			img, err := RenderImage(s, Options{Width: 400, Height: 240})
			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, 400, 240), img.Bounds())
		})
	}
}

func TestRenderSVG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sample(), Options{Width: 500, Height: 300}, SVG))
	out := buf.String()
	assert.Contains(t, out, "<svg")
	assert.Contains(t, out, "run-1")
}

func TestRenderPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sample(), Options{Width: 300, Height: 200}, PNG))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
}

func TestTicksAtRoundSteps(t *testing.T) {
	cases := []struct {
		lo, hi float64
		target int
		labels []string
	}{
		{0.3, 5.8, 6, []string{"1", "2", "3", "4", "5"}},
		{0, 0.002, 4, []string{"0.0000", "0.0005", "0.0010", "0.0015", "0.0020"}},
		{-0.25, 0.25, 5, []string{"-0.2", "-0.1", "0.0", "0.1", "0.2"}},
	}
	for _, tc := range cases {
		ts := ticks(tc.lo, tc.hi, tc.target)
		got := make([]string, len(ts))
		for i, tk := range ts {
			got[i] = tk.Label
			// the label names exactly where the tick sits
			v, err := strconv.ParseFloat(tk.Label, 64)
			require.NoError(t, err)
			assert.InDelta(t, tk.Value, v, 1e-12, tk.Label)
			assert.GreaterOrEqual(t, tk.Value, tc.lo-1e-12)
			assert.LessOrEqual(t, tk.Value, tc.hi+1e-12)
		}
		assert.Equal(t, tc.labels, got)
	}
	assert.Nil(t, ticks(1, 1, 6))
	assert.Nil(t, ticks(0, 1, 0))
}

func TestBuildUsesRoundTicks(t *testing.T) {
	ch := Build(sample(), Options{})
	require.NotEmpty(t, ch.YAxis.Ticks)
	for _, tk := range ch.YAxis.Ticks {
		v, err := strconv.ParseFloat(tk.Label, 64)
		require.NoError(t, err)
		assert.InDelta(t, tk.Value, v, 1e-12)
	}
	require.NotEmpty(t, ch.XAxis.Ticks)
}

func TestRenderEmptySVGHasNotice(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Snapshot{}, Options{Width: 300, Height: 200}, SVG))
	out := buf.String()
	assert.Contains(t, out, ">"+NoDataMessage+"</text>")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "</svg>"))

	buf.Reset()
	require.NoError(t, Render(&buf, sample(), Options{Width: 300, Height: 200}, SVG))
	assert.NotContains(t, buf.String(), NoDataMessage)
}

func TestWiden(t *testing.T) {
	lo, hi := widen(2, 2, 0.1, 0.1)
	assert.Less(t, lo, 2.0)
	assert.Greater(t, hi, 2.0)

	lo, hi = widen(0, 10, 0.1, 0.2)
	assert.InDelta(t, -1, lo, 1e-9)
	assert.InDelta(t, 12, hi, 1e-9)
}

func TestStampMarksCentre(t *testing.T) {
	base := Blank(200, 100)
	out := Stamp(base, NoDataMessage)
	assert.Equal(t, base.Bounds(), out.Bounds())

	changed := false
	for x := 60; x < 140 && !changed; x++ {
		for y := 40; y < 55; y++ {
			if out.At(x, y) != base.At(x, y) {
				changed = true
				break
			}
		}
	}
	assert.True(t, changed, "message not drawn")

	// box corner, left of the first glyph: light grey over white
	r, g, b, _ := out.At(45, 33).RGBA()
	for _, c := range []uint32{r, g, b} {
		assert.GreaterOrEqual(t, c>>8, uint32(240), "notice box must stay light")
	}
	assert.Equal(t, color.RGBAModel.Convert(color.White), color.RGBAModel.Convert(out.At(0, 0)))
	assert.Same(t, base, Stamp(base, "  "))
}
