/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders a document to SVG. The output maps one document
// shape to one SVG element in z-order; coordinates are emitted verbatim, so
// the SVG viewBox is the document's canvas coordinate system.
package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"govectoredit/internal/document"
	"govectoredit/internal/geom"
	"govectoredit/internal/shape"
)

// SVGOptions controls SVG export behavior. Width/Height define the viewBox
// and the width/height attributes; Background, when set, paints a full-size
// rect under all shapes.
type SVGOptions struct {
	Width      float64
	Height     float64
	Background string // e.g. "#ffffff"; empty leaves the canvas transparent
}

// DefaultSVGOptions matches the editor's default canvas.
func DefaultSVGOptions() SVGOptions {
	return SVGOptions{Width: 800, Height: 600}
}

// Document serializes the whole document as a standalone SVG.
func Document(d *document.Document, opt SVGOptions) ([]byte, error) {
	if d == nil {
		return nil, fmt.Errorf("document is nil")
	}
	if opt.Width <= 0 || opt.Height <= 0 {
		def := DefaultSVGOptions()
		opt.Width, opt.Height = def.Width, def.Height
	}

	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%s\" height=\"%s\" viewBox=\"0 0 %s %s\">\n",
		num(opt.Width), num(opt.Height), num(opt.Width), num(opt.Height))
	if opt.Background != "" {
		wf("  <rect x=\"0\" y=\"0\" width=\"%s\" height=\"%s\" fill=\"%s\"/>\n",
			num(opt.Width), num(opt.Height), opt.Background)
	}

	for _, s := range d.Shapes() {
		writeShape(wf, s)
	}

	wf("</svg>\n")
	if werr != nil {
		return nil, fmt.Errorf("render svg: %w", werr)
	}
	return buf.Bytes(), nil
}

// WriteFile exports the document to path, creating parent directories.
func WriteFile(d *document.Document, path string, opt SVGOptions) error {
	data, err := Document(d, opt)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure out dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

func writeShape(wf func(string, ...any), s *shape.Shape) {
	st := s.Style.Normalized()
	attrs := styleAttrs(st)
	switch g := s.Geom.(type) {
	case shape.Line:
		wf("  <line x1=\"%s\" y1=\"%s\" x2=\"%s\" y2=\"%s\"%s/>\n",
			num(g.X1), num(g.Y1), num(g.X2), num(g.Y2), attrs)
	case shape.Rect:
		wf("  <rect x=\"%s\" y=\"%s\" width=\"%s\" height=\"%s\"%s/>\n",
			num(g.X), num(g.Y), num(g.W), num(g.H), attrs)
	case shape.Circle:
		wf("  <circle cx=\"%s\" cy=\"%s\" r=\"%s\"%s/>\n",
			num(g.CX), num(g.CY), num(g.R), attrs)
	case *shape.Path:
		if !g.Anchored() {
			return
		}
		wf("  <path d=\"%s\"%s/>\n", g.Data(), attrs)
	default:
		panic("export: unsupported geometry")
	}
}

// styleAttrs renders the shared presentation attributes. A disabled paint
// becomes "none"; full opacity is omitted as it is the SVG default.
func styleAttrs(st shape.Style) string {
	var b bytes.Buffer
	fmt.Fprintf(&b, " stroke=\"%s\"", paint(st.Stroke))
	fmt.Fprintf(&b, " stroke-width=\"%s\"", num(st.StrokeWidth))
	fmt.Fprintf(&b, " fill=\"%s\"", paint(st.Fill))
	if st.Opacity < 1 {
		fmt.Fprintf(&b, " opacity=\"%s\"", num(st.Opacity))
	}
	return b.String()
}

func paint(p shape.Paint) string {
	if !p.Enabled {
		return "none"
	}
	return p.Color.Hex()
}

// num formats a coordinate or attribute value, rounded to three decimals so
// derived values (circle radii from pointer distances) do not bloat the SVG.
func num(v float64) string {
	return strconv.FormatFloat(geom.FloatRound(v, 3), 'f', -1, 64)
}
