/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package shape holds the drawable geometry model: a closed set of four
// primitive kinds plus the segment-based path representation, the per-kind
// operations (reference point, translate, clone) and the derived handle sets
// the editing layer works with.
package shape

import (
	"fmt"

	"github.com/google/uuid"

	"govectoredit/internal/geom"
)

// ID identifies a shape within a document.
type ID string

// NewID allocates a fresh shape identity.
func NewID() ID { return ID(uuid.NewString()) }

// Kind enumerates the supported geometry kinds.
type Kind uint8

const (
	KindLine Kind = iota
	KindRect
	KindCircle
	KindPath
)

func (k Kind) String() string {
	switch k {
	case KindLine:
		return "line"
	case KindRect:
		return "rect"
	case KindCircle:
		return "circle"
	case KindPath:
		return "path"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Geometry is the closed union of the four drawable kinds. The sealed marker
// keeps the set exhaustive so type switches over it can treat an unknown
// implementation as a programmer error.
type Geometry interface {
	Kind() Kind
	sealed()
}

// Line runs from (X1,Y1) to (X2,Y2).
type Line struct{ X1, Y1, X2, Y2 float64 }

// Rect is axis-aligned; W and H are kept >= 0 by all mutating operations.
type Rect struct{ X, Y, W, H float64 }

// Circle has center (CX,CY) and radius R >= 0.
type Circle struct{ CX, CY, R float64 }

func (Line) Kind() Kind    { return KindLine }
func (Rect) Kind() Kind    { return KindRect }
func (Circle) Kind() Kind  { return KindCircle }
func (*Path) Kind() Kind   { return KindPath }
func (Line) sealed()       {}
func (Rect) sealed()       {}
func (Circle) sealed()     {}
func (*Path) sealed()      {}

// Shape couples a geometry with its identity and presentation style.
type Shape struct {
	ID    ID
	Geom  Geometry
	Style Style
}

// New builds a shape with a fresh ID and normalized style.
func New(g Geometry, st Style) *Shape {
	return &Shape{ID: NewID(), Geom: g, Style: st.Normalized()}
}

// ReferencePoint returns the canonical origin of a geometry: line start,
// rect min corner, circle center, path anchor 0.
func ReferencePoint(g Geometry) geom.Pt {
	switch v := g.(type) {
	case Line:
		return geom.Pt{X: v.X1, Y: v.Y1}
	case Rect:
		return geom.Pt{X: v.X, Y: v.Y}
	case Circle:
		return geom.Pt{X: v.CX, Y: v.CY}
	case *Path:
		return v.StartPoint()
	default:
		panic(fmt.Sprintf("shape: reference point of unsupported geometry %T", g))
	}
}

// Translate returns a copy of g with every coordinate-bearing field shifted
// by (dx,dy). Paths shift every segment endpoint and control point.
func Translate(g Geometry, dx, dy float64) Geometry {
	switch v := g.(type) {
	case Line:
		return Line{X1: v.X1 + dx, Y1: v.Y1 + dy, X2: v.X2 + dx, Y2: v.Y2 + dy}
	case Rect:
		return Rect{X: v.X + dx, Y: v.Y + dy, W: v.W, H: v.H}
	case Circle:
		return Circle{CX: v.CX + dx, CY: v.CY + dy, R: v.R}
	case *Path:
		return v.translated(dx, dy)
	default:
		panic(fmt.Sprintf("shape: translate of unsupported geometry %T", g))
	}
}

// CloneGeometry deep-copies a geometry so the result shares no state with g.
func CloneGeometry(g Geometry) Geometry {
	switch v := g.(type) {
	case Line, Rect, Circle:
		return v
	case *Path:
		return v.Clone()
	default:
		panic(fmt.Sprintf("shape: clone of unsupported geometry %T", g))
	}
}

// Clone deep-copies the shape under a fresh identity. The copy is not part of
// any document until a caller inserts it.
func (s *Shape) Clone() *Shape {
	return &Shape{ID: NewID(), Geom: CloneGeometry(s.Geom), Style: s.Style}
}
