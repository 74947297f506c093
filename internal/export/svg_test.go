/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"govectoredit/internal/document"
	"govectoredit/internal/geom"
	"govectoredit/internal/shape"
)

func buildDoc(t *testing.T) *document.Document {
	t.Helper()
	d := newDoc()
	id := d.CreateShape(shape.KindLine, geom.Pt{X: 0, Y: 0})
	if err := d.UpdateShapeFromDrag(id, geom.Pt{X: 100, Y: 50}); err != nil {
		t.Fatalf("drag: %v", err)
	}
	_ = d.FinalizeShape(id)

	id = d.CreateShape(shape.KindRect, geom.Pt{X: 10, Y: 20})
	_ = d.UpdateShapeFromDrag(id, geom.Pt{X: 40, Y: 60})
	_ = d.FinalizeShape(id)

	id = d.CreateShape(shape.KindCircle, geom.Pt{X: 200, Y: 200})
	_ = d.UpdateShapeFromDrag(id, geom.Pt{X: 230, Y: 200})
	_ = d.FinalizeShape(id)

	id = d.CreateShape(shape.KindPath, geom.Pt{X: 0, Y: 100})
	_ = d.AppendPathLine(id, geom.Pt{X: 50, Y: 100})
	_ = d.AppendPathCurve(id, geom.Pt{X: 75, Y: 150}, geom.Pt{X: 100, Y: 100})
	_ = d.FinalizeShape(id)
	return d
}

func newDoc() *document.Document {
	return document.New(shape.DefaultStyle())
}

func TestDocumentEmitsOneElementPerShape(t *testing.T) {
	d := buildDoc(t)
	data, err := Document(d, DefaultSVGOptions())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	svg := string(data)

	for _, want := range []string{
		"<?xml version=\"1.0\"",
		"viewBox=\"0 0 800 600\"",
		"<line x1=\"0\" y1=\"0\" x2=\"100\" y2=\"50\"",
		"<rect x=\"10\" y=\"20\" width=\"30\" height=\"40\"",
		"<circle cx=\"200\" cy=\"200\" r=\"30\"",
		"<path d=\"M 0 100 L 50 100 C ",
		"</svg>",
	} {
		if !strings.Contains(svg, want) {
			t.Fatalf("missing %q in:\n%s", want, svg)
		}
	}

	// z-order: the line was drawn first, so it precedes the rect
	if strings.Index(svg, "<line") > strings.Index(svg, "<rect x=\"10\"") {
		t.Fatal("elements out of document order")
	}
}

func TestDocumentStyleAttributes(t *testing.T) {
	d := newDoc()
	id := d.CreateShape(shape.KindRect, geom.Pt{})
	_ = d.UpdateShapeFromDrag(id, geom.Pt{X: 10, Y: 10})
	_ = d.FinalizeShape(id)
	s, _ := d.ShapeByID(id)
	s.Style = shape.Style{
		Stroke:      shape.Paint{Color: shape.Color{R: 255, A: 255}, Enabled: true},
		StrokeWidth: 3,
		Fill:        shape.Paint{}, // disabled
		Opacity:     0.5,
	}

	data, err := Document(d, DefaultSVGOptions())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	svg := string(data)
	for _, want := range []string{
		"stroke=\"#ff0000\"",
		"stroke-width=\"3\"",
		"fill=\"none\"",
		"opacity=\"0.5\"",
	} {
		if !strings.Contains(svg, want) {
			t.Fatalf("missing %q in:\n%s", want, svg)
		}
	}
}

func TestDocumentRoundsDerivedNumbers(t *testing.T) {
	d := newDoc()
	id := d.CreateShape(shape.KindCircle, geom.Pt{X: 0, Y: 0})
	_ = d.UpdateShapeFromDrag(id, geom.Pt{X: 1, Y: 1}) // r = sqrt(2)
	_ = d.FinalizeShape(id)

	data, err := Document(d, DefaultSVGOptions())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(string(data), "r=\"1.414\"") {
		t.Fatalf("radius not rounded to three decimals:\n%s", data)
	}
}

func TestDocumentOmitsFullOpacity(t *testing.T) {
	d := newDoc()
	id := d.CreateShape(shape.KindLine, geom.Pt{})
	_ = d.UpdateShapeFromDrag(id, geom.Pt{X: 5, Y: 5})
	_ = d.FinalizeShape(id)

	data, err := Document(d, DefaultSVGOptions())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if strings.Contains(string(data), "opacity=") {
		t.Fatalf("full opacity must be omitted:\n%s", data)
	}
}

func TestDocumentBackground(t *testing.T) {
	d := newDoc()
	opt := SVGOptions{Width: 400, Height: 300, Background: "#ffffff"}
	data, err := Document(d, opt)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	svg := string(data)
	if !strings.Contains(svg, "width=\"400\" height=\"300\" fill=\"#ffffff\"") {
		t.Fatalf("background rect missing:\n%s", svg)
	}
	if !strings.Contains(svg, "viewBox=\"0 0 400 300\"") {
		t.Fatalf("viewBox wrong:\n%s", svg)
	}
}

func TestDocumentExportsAnchoredEmptyPath(t *testing.T) {
	d := newDoc()
	_ = d.CreateShape(shape.KindPath, geom.Pt{X: 1, Y: 1})
	// the pending path has an anchor but no segments and still exports
	data, err := Document(d, DefaultSVGOptions())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(string(data), "<path d=\"M 1 1\"") {
		t.Fatalf("anchored empty path should export its move:\n%s", data)
	}
}

func TestDocumentInvalidOptionsFallBack(t *testing.T) {
	d := newDoc()
	data, err := Document(d, SVGOptions{Width: -5, Height: 0})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(string(data), "viewBox=\"0 0 800 600\"") {
		t.Fatalf("invalid sizes must fall back to defaults:\n%s", data)
	}
}

func TestDocumentNil(t *testing.T) {
	if _, err := Document(nil, DefaultSVGOptions()); err == nil {
		t.Fatal("nil document must fail")
	}
}

func TestWriteFileCreatesDirectories(t *testing.T) {
	d := buildDoc(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.svg")
	if err := WriteFile(d, path, DefaultSVGOptions()); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.HasPrefix(string(data), "<?xml") {
		t.Fatalf("file content wrong:\n%s", data)
	}
}
