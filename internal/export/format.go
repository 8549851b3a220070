/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export writes the pressure chart to image and document files.
package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"kistlerview/internal/sensor"
)

// Format is an export file type.
type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpg"
	PDF  Format = "pdf"
	SVG  Format = "svg"
)

// Formats lists every supported format in menu order.
var Formats = []Format{PNG, JPEG, PDF, SVG}

var ErrUnsupportedFormat = errors.New("unsupported export format")

// ParseFormat accepts a format name or extension, with or without the dot.
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	case "pdf":
		return PDF, nil
	case "svg":
		return SVG, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// FormatFromPath resolves the format from the file extension. ok is false
// when path has no extension; an unknown extension is an error.
func FormatFromPath(path string) (f Format, ok bool, err error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", false, nil
	}
	f, err = ParseFormat(ext)
	return f, err == nil, err
}

// Ext returns the canonical extension including the dot.
func (f Format) Ext() string { return "." + string(f) }

// Extensions returns all accepted extensions, for file dialog filters.
func Extensions() []string {
	return []string{".png", ".jpg", ".jpeg", ".pdf", ".svg"}
}

// ResolvePath returns path and its format, appending def's extension when
// path has none.
func ResolvePath(path string, def Format) (string, Format, error) {
	f, ok, err := FormatFromPath(path)
	if err != nil {
		return "", "", err
	}
	if ok {
		return path, f, nil
	}
	if def == "" {
		def = PNG
	}
	return path + def.Ext(), def, nil
}

// FileName returns "<label><ext>", falling back to "chart" for an empty label.
func FileName(label string, f Format) string {
	label = strings.TrimSpace(label)
	if label == "" {
		label = "chart"
	}
	return label + f.Ext()
}

// QuickPath is the quick-save target beside the source file: <dir>/<base>.jpg.
func QuickPath(src sensor.Source) string {
	if src.IsZero() {
		return ""
	}
	return filepath.Join(src.Dir, FileName(src.BaseName, JPEG))
}
