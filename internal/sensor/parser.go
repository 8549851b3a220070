/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package sensor

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ParseOptions tunes Parse. The zero value is usable.
type ParseOptions struct {
	Encoding string
}

const maxLineBytes = 1 << 20

type parseState int

const (
	stateMetadata parseState = iota
	stateHeader
	stateData
)

// LoadFile opens and parses path. The returned Recording carries the
// file's Source identity.
func LoadFile(path string, opts ParseOptions) (*Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	defer func() { _ = f.Close() }()

	rec, err := Parse(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	rec.Source = NewSource(path)
	return rec, nil
}

// Parse reads a whole export from r.
//
// Lines before the first one containing Marker are metadata (trailing
// whitespace trimmed). The marker line and the header/units line after it
// are skipped; every further non-blank line must be exactly two numeric
// fields separated by ';'. The first bad line fails the whole parse.
func Parse(r io.Reader, opts ParseOptions) (*Recording, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	text, err := decode(raw, opts.Encoding)
	if err != nil {
		return nil, err
	}

	var (
		meta     = []string{}
		readings []Reading
		state    = stateMetadata
		lineNo   int
	)
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), " \t\r")
		switch state {
		case stateMetadata:
			if strings.Contains(line, Marker) {
				state = stateHeader
				continue
			}
			meta = append(meta, line)
		case stateHeader:
			if strings.TrimSpace(line) != "" {
				state = stateData
			}
		case stateData:
			if strings.TrimSpace(line) == "" {
				continue
			}
			rd, reason := parseReading(line)
			if reason != "" {
				return nil, &LineError{Line: lineNo, Text: line, Reason: reason}
			}
			readings = append(readings, rd)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: line %d: %w", ErrOpen, lineNo+1, err)
	}
	if state == stateMetadata {
		return nil, ErrNoMarker
	}
	peak, ok := PeakIndex(readings)
	if !ok {
		return nil, ErrNoReadings
	}
	return &Recording{Metadata: meta, Readings: readings, PeakIndex: peak}, nil
}

// parseReading splits "time;pressure". A dangling separator ("0.1;2.5;")
// is tolerated; any other field count is not. reason is empty on success.
func parseReading(line string) (Reading, string) {
	fields := strings.Split(line, ";")
	for len(fields) > 2 && strings.TrimSpace(fields[len(fields)-1]) == "" {
		fields = fields[:len(fields)-1]
	}
	if len(fields) != 2 {
		return Reading{}, fmt.Sprintf("expected 2 fields, got %d", len(fields))
	}
	t, err := parseNumber(fields[0])
	if err != nil {
		return Reading{}, "time: " + err.Error()
	}
	p, err := parseNumber(fields[1])
	if err != nil {
		return Reading{}, "pressure: " + err.Error()
	}
	return Reading{Time: t, Pressure: p}, ""
}

func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty field")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return v, nil
}
