/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package shape

import "govectoredit/internal/geom"

// Handles are pure derived data: they are rebuilt from the shape's defining
// attributes after every geometry change and never patched incrementally.
// Nothing here owns the shape; the back-reference must be dropped when the
// shape is deleted or deselected.

// HandleKind tells the editing layer which attribute a handle drives.
type HandleKind uint8

const (
	HandleLineEndpoint HandleKind = iota // Index 0 or 1
	HandleRectCorner                     // Index 0..3, clockwise from top-left
	HandleCircleCenter
	HandleCircleRadius // a point at distance R along +x from the center
	HandlePathVertex   // Index is the anchor index (0 = the M anchor)
)

// AnchorHandle projects one geometry-defining point of a shape.
type AnchorHandle struct {
	Shape *Shape
	Kind  HandleKind
	Index int
	Pos   geom.Pt
}

// ControlHandle projects one curve control point of a path segment.
type ControlHandle struct {
	Shape   *Shape
	Segment int
	Which   ControlWhich
	Pos     geom.Pt
}

// RectCorner returns corner i of r, clockwise from top-left.
func RectCorner(r Rect, i int) geom.Pt {
	switch i {
	case 0:
		return geom.Pt{X: r.X, Y: r.Y}
	case 1:
		return geom.Pt{X: r.X + r.W, Y: r.Y}
	case 2:
		return geom.Pt{X: r.X + r.W, Y: r.Y + r.H}
	case 3:
		return geom.Pt{X: r.X, Y: r.Y + r.H}
	}
	panic("shape: rect corner index out of range")
}

// Handles derives the full anchor handle set for a shape.
func Handles(s *Shape) []AnchorHandle {
	switch g := s.Geom.(type) {
	case Line:
		return []AnchorHandle{
			{Shape: s, Kind: HandleLineEndpoint, Index: 0, Pos: geom.Pt{X: g.X1, Y: g.Y1}},
			{Shape: s, Kind: HandleLineEndpoint, Index: 1, Pos: geom.Pt{X: g.X2, Y: g.Y2}},
		}
	case Rect:
		hs := make([]AnchorHandle, 0, 4)
		for i := 0; i < 4; i++ {
			hs = append(hs, AnchorHandle{Shape: s, Kind: HandleRectCorner, Index: i, Pos: RectCorner(g, i)})
		}
		return hs
	case Circle:
		return []AnchorHandle{
			{Shape: s, Kind: HandleCircleCenter, Index: 0, Pos: geom.Pt{X: g.CX, Y: g.CY}},
			{Shape: s, Kind: HandleCircleRadius, Index: 1, Pos: geom.Pt{X: g.CX + g.R, Y: g.CY}},
		}
	case *Path:
		if !g.Anchored() {
			return nil
		}
		hs := make([]AnchorHandle, 0, g.AnchorCount())
		hs = append(hs, AnchorHandle{Shape: s, Kind: HandlePathVertex, Index: 0, Pos: g.StartPoint()})
		for i, seg := range g.Segments {
			hs = append(hs, AnchorHandle{Shape: s, Kind: HandlePathVertex, Index: i + 1, Pos: seg.End})
		}
		return hs
	default:
		panic("shape: handles of unsupported geometry")
	}
}

// ControlHandles derives the control handle set; only path curve segments
// have any.
func ControlHandles(s *Shape) []ControlHandle {
	g, ok := s.Geom.(*Path)
	if !ok {
		return nil
	}
	var hs []ControlHandle
	for i, seg := range g.Segments {
		if seg.Kind != SegCurve {
			continue
		}
		hs = append(hs,
			ControlHandle{Shape: s, Segment: i, Which: ControlFirst, Pos: seg.Control1},
			ControlHandle{Shape: s, Segment: i, Which: ControlSecond, Pos: seg.Control2},
		)
	}
	return hs
}
