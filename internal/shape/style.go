/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package shape

// Styles and paint definitions.

import (
	"fmt"
	"strconv"
	"strings"
)

type Color struct{ R, G, B, A uint8 }

var (
	Black = Color{0, 0, 0, 255}
	White = Color{255, 255, 255, 255}
)

// Hex renders the color as #rrggbb (alpha is carried by Style.Opacity, not here).
func (c Color) Hex() string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }

// Paint is a color that can be switched off ("none" in SVG terms).
type Paint struct {
	Color   Color
	Enabled bool
}

// ParsePaint accepts "none" or "#rrggbb" (case-insensitive). Unparseable input
// yields a disabled paint and ok=false.
func ParsePaint(s string) (Paint, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "none" {
		return Paint{}, s == "none"
	}
	if !strings.HasPrefix(s, "#") || len(s) != 7 {
		return Paint{}, false
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return Paint{}, false
	}
	c := Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
	return Paint{Color: c, Enabled: true}, true
}

const (
	MinStrokeWidth = 1
	MaxStrokeWidth = 20
)

// Style carries the per-shape presentation attributes.
type Style struct {
	Stroke      Paint
	StrokeWidth float64
	Fill        Paint
	Opacity     float64
}

// DefaultStyle is the fallback used when no editor defaults are configured.
func DefaultStyle() Style {
	return Style{
		Stroke:      Paint{Color: Black, Enabled: true},
		StrokeWidth: 2,
		Fill:        Paint{},
		Opacity:     1,
	}
}

// Normalized clamps stroke width to [1,20] and opacity to [0,1].
func (s Style) Normalized() Style {
	if s.StrokeWidth < MinStrokeWidth {
		s.StrokeWidth = MinStrokeWidth
	}
	if s.StrokeWidth > MaxStrokeWidth {
		s.StrokeWidth = MaxStrokeWidth
	}
	if s.Opacity < 0 {
		s.Opacity = 0
	}
	if s.Opacity > 1 {
		s.Opacity = 1
	}
	return s
}
