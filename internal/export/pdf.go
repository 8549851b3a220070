/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"image/png"
	"io"

	"github.com/jung-kurt/gofpdf"

	"kistlerview/internal/chart"
	"kistlerview/internal/version"
)

const pdfMargin = 12.0 // mm

// encodePDF places the rasterized chart on a landscape A4 page, scaled to
// fit inside the margins, with an optional source footer.
func encodePDF(w io.Writer, s chart.Snapshot, o Options) error {
	img, err := chart.RenderImage(s, o.Chart)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode chart for pdf: %w", err)
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	title := chart.Title(s.Label)
	pdf.SetTitle(title, true)
	pdf.SetSubject("Pressure curve export", true)
	pdf.SetAuthor("Kistler Data Viewer", true)
	pdf.SetCreator("kistlerview "+version.String(), true)
	pdf.AddPage()

	opt := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("chart", opt, &buf)

	pageW, pageH := pdf.GetPageSize()
	availW := pageW - 2*pdfMargin
	availH := pageH - 2*pdfMargin - 8 // footer line
	b := img.Bounds()
	iw, ih := float64(b.Dx()), float64(b.Dy())
	dw := availW
	dh := dw * ih / iw
	if dh > availH {
		dh = availH
		dw = dh * iw / ih
	}
	x := (pageW - dw) / 2
	pdf.ImageOptions("chart", x, pdfMargin, dw, dh, false, opt, 0, "")

	if o.SourcePath != "" {
		tr := pdf.UnicodeTranslatorFromDescriptor("")
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(90, 90, 90)
		pdf.Text(pdfMargin, pageH-pdfMargin, tr("Source: "+o.SourcePath))
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
