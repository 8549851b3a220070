/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package sensor reads pressure-curve exports written by the charge
// amplifier software: a free-form metadata block, a "Time;" marker line,
// a header/units line, then one "time;pressure" pair per line.
package sensor

import (
	"path/filepath"
	"strings"
)

// Marker identifies the first line of the data block.
const Marker = "Time;"

// Reading is one sample: seconds and MPa.
type Reading struct {
	Time     float64
	Pressure float64
}

// Source identifies the file a Recording was loaded from.
type Source struct {
	Path     string
	Dir      string
	BaseName string // file name without extension
}

// NewSource derives the identity of path.
func NewSource(path string) Source {
	if path == "" {
		return Source{}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	name := filepath.Base(abs)
	return Source{
		Path:     abs,
		Dir:      filepath.Dir(abs),
		BaseName: strings.TrimSuffix(name, filepath.Ext(name)),
	}
}

// IsZero reports whether no file is behind s.
func (s Source) IsZero() bool { return s.Path == "" }

// Recording is a fully parsed export. It is built in one step by Parse, so a
// failed parse never produces a partially filled value.
type Recording struct {
	Source    Source
	Metadata  []string
	Readings  []Reading
	PeakIndex int
}

// Peak returns the reading with the highest pressure.
func (r *Recording) Peak() Reading { return r.Readings[r.PeakIndex] }

// Len returns the number of readings.
func (r *Recording) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Readings)
}

// PeakIndex returns the index of the maximum pressure, the earliest one on
// ties. ok is false for an empty slice.
func PeakIndex(readings []Reading) (idx int, ok bool) {
	if len(readings) == 0 {
		return -1, false
	}
	for i := 1; i < len(readings); i++ {
		if readings[i].Pressure > readings[idx].Pressure {
			idx = i
		}
	}
	return idx, true
}

// Summary condenses a recording for status lines and the info command.
type Summary struct {
	Count       int
	Start, End  float64
	MinPressure float64
	MaxPressure float64
	Peak        Reading
}

// Summary computes the Summary of r.
func (r *Recording) Summary() Summary {
	if r.Len() == 0 {
		return Summary{}
	}
	s := Summary{
		Count:       len(r.Readings),
		Start:       r.Readings[0].Time,
		End:         r.Readings[len(r.Readings)-1].Time,
		MinPressure: r.Readings[0].Pressure,
		MaxPressure: r.Peak().Pressure,
		Peak:        r.Peak(),
	}
	for _, rd := range r.Readings[1:] {
		if rd.Pressure < s.MinPressure {
			s.MinPressure = rd.Pressure
		}
	}
	return s
}
