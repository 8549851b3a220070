/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package sensor

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding names accepted by ParseOptions.
const (
	EncodingAuto        = "auto"
	EncodingUTF8        = "utf-8"
	EncodingWindows1252 = "windows-1252"
	EncodingLatin1      = "iso-8859-1"
)

// NormalizeEncoding maps aliases to one of the Encoding* names. Unknown
// names are returned lower-cased so decode can reject them.
func NormalizeEncoding(name string) string {
	switch n := strings.ToLower(strings.TrimSpace(name)); n {
	case "", EncodingAuto:
		return EncodingAuto
	case "utf8", EncodingUTF8:
		return EncodingUTF8
	case "cp1252", "win1252", EncodingWindows1252:
		return EncodingWindows1252
	case "latin1", "latin-1", EncodingLatin1:
		return EncodingLatin1
	default:
		return n
	}
}

// decode converts raw file bytes to UTF-8 text. A byte order mark always
// wins over the configured charset. In auto mode valid UTF-8 is kept as is
// and anything else is read as Windows-1252, the charset the acquisition
// software uses on Windows ("µ", "°C" in the metadata block).
func decode(raw []byte, name string) (string, error) {
	var fallback encoding.Encoding
	switch n := NormalizeEncoding(name); n {
	case EncodingAuto:
		if utf8.Valid(raw) {
			fallback = unicode.UTF8
		} else {
			fallback = charmap.Windows1252
		}
	case EncodingUTF8:
		fallback = unicode.UTF8
	case EncodingWindows1252:
		fallback = charmap.Windows1252
	case EncodingLatin1:
		fallback = charmap.ISO8859_1
	default:
		return "", fmt.Errorf("%w: unknown encoding %q", ErrEncoding, name)
	}
	out, _, err := transform.Bytes(unicode.BOMOverride(fallback.NewDecoder()), raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	return string(out), nil
}
