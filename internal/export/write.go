/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"io"
	"os"
	"path/filepath"

	"kistlerview/internal/chart"
)

// Options controls rendering of an export.
type Options struct {
	Chart       chart.Options
	JPEGQuality int    // 1..100, default 92
	SourcePath  string // printed in the PDF footer when set
}

// newFileMode is the mode of a fresh export; a replaced file keeps its own.
const newFileMode os.FileMode = 0o644

// WriteChart renders s to path in format f. The file is written to a
// temporary sibling and renamed into place, so a failed export never leaves
// a truncated file under the target name.
func WriteChart(path string, f Format, s chart.Snapshot, o Options) (err error) {
	mode := newFileMode
	if st, serr := os.Stat(path); serr == nil && st.Mode().IsRegular() {
		mode = st.Mode().Perm()
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if err = Encode(tmp, f, s, o); err != nil {
		return err
	}
	if err = tmp.Chmod(mode); err != nil {
		return fmt.Errorf("set export file mode: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("flush export file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close export file: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Encode renders s to w.
func Encode(w io.Writer, f Format, s chart.Snapshot, o Options) error {
	switch f {
	case PNG:
		return chart.Render(w, s, o.Chart, chart.PNG)
	case SVG:
		return chart.Render(w, s, o.Chart, chart.SVG)
	case JPEG:
		img, err := chart.RenderImage(s, o.Chart)
		if err != nil {
			return err
		}
		return encodeJPEG(w, img, o.JPEGQuality)
	case PDF:
		return encodePDF(w, s, o)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(f))
}

func encodeJPEG(w io.Writer, img image.Image, quality int) error {
	if quality <= 0 || quality > 100 {
		quality = 92
	}
	// JPEG has no alpha; flatten onto white so transparent areas do not turn black.
	b := img.Bounds()
	flat := image.NewRGBA(b)
	draw.Draw(flat, b, &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(flat, b, img, b.Min, draw.Over)
	if err := jpeg.Encode(w, flat, &jpeg.Options{Quality: quality}); err != nil {
		return fmt.Errorf("encode jpeg: %w", err)
	}
	return nil
}
