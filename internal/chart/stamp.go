/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package chart

import (
	"image"
	"image/color"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Stamp returns a copy of img with msg centred in a light box.
func Stamp(img image.Image, msg string) image.Image {
	if img == nil || strings.TrimSpace(msg) == "" {
		return img
	}
	b := img.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, img, b.Min, draw.Src)

	face := basicfont.Face7x13
	d := &font.Drawer{Dst: out, Src: image.NewUniform(color.RGBA{R: 90, G: 90, B: 90, A: 255}), Face: face}
	tw := d.MeasureString(msg).Ceil()
	asc := face.Metrics().Ascent.Ceil()
	x := b.Min.X + (b.Dx()-tw)/2
	y := b.Min.Y + b.Dy()/2

	const pad = 8
	box := image.Rect(x-pad, y-asc-pad, x+tw+pad, y+pad)
	draw.Draw(out, box, image.NewUniform(color.NRGBA{R: 248, G: 248, B: 248, A: 235}), image.Point{}, draw.Over)

	d.Dot = fixed.P(x, y)
	d.DrawString(msg)
	return out
}

// Blank returns a plain white w x h surface.
func Blank(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	return img
}
