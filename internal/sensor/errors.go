/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package sensor

import (
	"errors"
	"fmt"
)

var (
	// ErrOpen wraps failures to open or read the file.
	ErrOpen = errors.New("cannot read file")
	// ErrFormat is matched by every content problem.
	ErrFormat = errors.New("unsupported file format")
	// ErrNoMarker means no line contains the data marker.
	ErrNoMarker = fmt.Errorf("%w: no %q line found", ErrFormat, Marker)
	// ErrNoReadings means the data block holds no samples.
	ErrNoReadings = fmt.Errorf("%w: no readings after the header line", ErrFormat)
	// ErrEncoding means the bytes could not be decoded with the chosen charset.
	ErrEncoding = errors.New("character decoding failed")
)

// LineError reports the first data line that is not a time;pressure pair.
type LineError struct {
	Line   int // 1-based line number in the file
	Text   string
	Reason string
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Text)
}

// Is makes errors.Is(err, ErrFormat) hold for line errors.
func (e *LineError) Is(target error) bool { return target == ErrFormat }
