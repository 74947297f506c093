/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package edit

import (
	"math"
	"testing"

	"govectoredit/internal/geom"
	"govectoredit/internal/shape"
)

func anchorByIndex(t *testing.T, s *shape.Shape, kind shape.HandleKind, index int) shape.AnchorHandle {
	t.Helper()
	for _, h := range shape.Handles(s) {
		if h.Kind == kind && h.Index == index {
			return h
		}
	}
	t.Fatalf("no handle kind=%v index=%d", kind, index)
	return shape.AnchorHandle{}
}

func TestStateTransitions(t *testing.T) {
	sess := NewSession()
	if sess.State() != Idle {
		t.Fatalf("initial state = %v", sess.State())
	}
	s := shape.New(shape.Line{X2: 10}, shape.DefaultStyle())
	sess.SelectAnchor(anchorByIndex(t, s, shape.HandleLineEndpoint, 1))
	if sess.State() != HandleSelected {
		t.Fatalf("after select = %v", sess.State())
	}
	if err := sess.BeginDrag(geom.Pt{X: 10, Y: 0}); err != nil {
		t.Fatalf("begin drag: %v", err)
	}
	if sess.State() != Dragging {
		t.Fatalf("after begin = %v", sess.State())
	}
	sess.EndDrag()
	if sess.State() != HandleSelected {
		t.Fatalf("selection must survive EndDrag, state = %v", sess.State())
	}
	sess.ClearSelection()
	if sess.State() != Idle {
		t.Fatalf("after clear = %v", sess.State())
	}
}

func TestBeginDragRequiresSelection(t *testing.T) {
	sess := NewSession()
	if err := sess.BeginDrag(geom.Pt{}); err == nil {
		t.Fatal("begin drag without selection must fail")
	}
	if err := sess.UpdateDrag(geom.Pt{}); err == nil {
		t.Fatal("update drag without drag must fail")
	}
}

func TestLineEndpointDragUsesOffset(t *testing.T) {
	s := shape.New(shape.Line{X1: 0, Y1: 0, X2: 10, Y2: 0}, shape.DefaultStyle())
	sess := NewSession()
	sess.SelectAnchor(anchorByIndex(t, s, shape.HandleLineEndpoint, 1))

	// grab 2px to the right of the handle; the offset must be preserved
	if err := sess.BeginDrag(geom.Pt{X: 12, Y: 0}); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := sess.UpdateDrag(geom.Pt{X: 32, Y: 5}); err != nil {
		t.Fatalf("update: %v", err)
	}
	g := s.Geom.(shape.Line)
	if g.X2 != 30 || g.Y2 != 5 {
		t.Fatalf("endpoint = (%v,%v), want (30,5)", g.X2, g.Y2)
	}
	if g.X1 != 0 || g.Y1 != 0 {
		t.Fatalf("other endpoint moved: %+v", g)
	}
}

func TestUpdateDragIsIdempotent(t *testing.T) {
	s := shape.New(shape.Line{X1: 0, Y1: 0, X2: 10, Y2: 0}, shape.DefaultStyle())
	sess := NewSession()
	sess.SelectAnchor(anchorByIndex(t, s, shape.HandleLineEndpoint, 1))
	_ = sess.BeginDrag(geom.Pt{X: 10, Y: 0})

	for i := 0; i < 3; i++ {
		if err := sess.UpdateDrag(geom.Pt{X: 25, Y: 7}); err != nil {
			t.Fatalf("update %d: %v", i, err)
		}
	}
	g := s.Geom.(shape.Line)
	if g.X2 != 25 || g.Y2 != 7 {
		t.Fatalf("repeated updates must not accumulate: %+v", g)
	}
}

func TestRectCornerDragFlips(t *testing.T) {
	s := shape.New(shape.Rect{X: 10, Y: 10, W: 20, H: 20}, shape.DefaultStyle())
	sess := NewSession()
	sess.SelectAnchor(anchorByIndex(t, s, shape.HandleRectCorner, 0)) // top-left
	_ = sess.BeginDrag(geom.Pt{X: 10, Y: 10})

	// drag the top-left corner past the bottom-right corner (30,30)
	if err := sess.UpdateDrag(geom.Pt{X: 40, Y: 45}); err != nil {
		t.Fatalf("update: %v", err)
	}
	g := s.Geom.(shape.Rect)
	if g.X != 30 || g.Y != 30 || g.W != 10 || g.H != 15 {
		t.Fatalf("flipped rect = %+v, want {30 30 10 15}", g)
	}
	if g.W < 0 || g.H < 0 {
		t.Fatalf("dimensions must never go negative: %+v", g)
	}

	// drag back: the opposite corner from drag start stays the fixed point
	if err := sess.UpdateDrag(geom.Pt{X: 5, Y: 0}); err != nil {
		t.Fatalf("update: %v", err)
	}
	g = s.Geom.(shape.Rect)
	if g.X != 5 || g.Y != 0 || g.W != 25 || g.H != 30 {
		t.Fatalf("rect after dragging back = %+v, want {5 0 25 30}", g)
	}
}

func TestCircleCenterAndRadiusDrag(t *testing.T) {
	s := shape.New(shape.Circle{CX: 0, CY: 0, R: 5}, shape.DefaultStyle())
	sess := NewSession()

	sess.SelectAnchor(anchorByIndex(t, s, shape.HandleCircleCenter, 0))
	_ = sess.BeginDrag(geom.Pt{X: 0, Y: 0})
	_ = sess.UpdateDrag(geom.Pt{X: 7, Y: 9})
	g := s.Geom.(shape.Circle)
	if g.CX != 7 || g.CY != 9 || g.R != 5 {
		t.Fatalf("center drag = %+v", g)
	}
	sess.EndDrag()

	sess.SelectAnchor(anchorByIndex(t, s, shape.HandleCircleRadius, 1))
	_ = sess.BeginDrag(geom.Pt{X: 12, Y: 9}) // handle at cx+r
	_ = sess.UpdateDrag(geom.Pt{X: 10, Y: 13})
	g = s.Geom.(shape.Circle)
	if math.Abs(g.R-5) > 1e-9 { // dist from (7,9) to (10,13) = 5
		t.Fatalf("radius drag = %v, want 5", g.R)
	}
	if g.CX != 7 || g.CY != 9 {
		t.Fatalf("center moved during radius drag: %+v", g)
	}
}

func TestPathVertexDragThroughSession(t *testing.T) {
	p := shape.NewPath(geom.Pt{X: 0, Y: 0})
	p.AppendCurve(geom.Pt{X: 10, Y: 0}, geom.Pt{X: 30, Y: 10})
	s := shape.New(p, shape.DefaultStyle())
	sess := NewSession()
	sess.SelectAnchor(anchorByIndex(t, s, shape.HandlePathVertex, 1))
	c1Before := p.Segments[0].Control1
	_ = sess.BeginDrag(p.Segments[0].End)
	_ = sess.UpdateDrag(p.Segments[0].End.Add(geom.Pt{X: 10, Y: 10}))
	if p.Segments[0].End != (geom.Pt{X: 40, Y: 20}) {
		t.Fatalf("end = %+v", p.Segments[0].End)
	}
	if p.Segments[0].Control1 != c1Before.Add(geom.Pt{X: 10, Y: 10}) {
		t.Fatalf("controls must follow the endpoint: %+v", p.Segments[0].Control1)
	}
}

func TestControlHandleDrag(t *testing.T) {
	p := shape.NewPath(geom.Pt{})
	p.AppendCurve(geom.Pt{X: 10, Y: 0}, geom.Pt{X: 20, Y: 0})
	s := shape.New(p, shape.DefaultStyle())
	sess := NewSession()
	cs := shape.ControlHandles(s)
	sess.SelectControl(cs[1]) // second control
	_ = sess.BeginDrag(cs[1].Pos)
	_ = sess.UpdateDrag(geom.Pt{X: 15, Y: 9})
	if p.Segments[0].Control2 != (geom.Pt{X: 15, Y: 9}) {
		t.Fatalf("control2 = %+v", p.Segments[0].Control2)
	}
	if _, ok := sess.SelectedControl(); !ok {
		t.Fatal("control selection must survive the drag")
	}
}

func TestCancelDragRestoresGeometry(t *testing.T) {
	s := shape.New(shape.Rect{X: 0, Y: 0, W: 10, H: 10}, shape.DefaultStyle())
	sess := NewSession()
	sess.SelectAnchor(anchorByIndex(t, s, shape.HandleRectCorner, 2))
	_ = sess.BeginDrag(geom.Pt{X: 10, Y: 10})
	_ = sess.UpdateDrag(geom.Pt{X: 50, Y: 50})
	sess.CancelDrag()
	g := s.Geom.(shape.Rect)
	if g != (shape.Rect{X: 0, Y: 0, W: 10, H: 10}) {
		t.Fatalf("cancel must restore drag-start geometry: %+v", g)
	}
	if sess.State() != HandleSelected {
		t.Fatalf("state after cancel = %v", sess.State())
	}
}

func TestSelectionIsExclusive(t *testing.T) {
	p := shape.NewPath(geom.Pt{})
	p.AppendCurve(geom.Pt{X: 5, Y: 5}, geom.Pt{X: 10, Y: 0})
	s := shape.New(p, shape.DefaultStyle())
	sess := NewSession()

	sess.SelectAnchor(anchorByIndex(t, s, shape.HandlePathVertex, 1))
	sess.SelectControl(shape.ControlHandles(s)[0])
	if _, ok := sess.SelectedAnchor(); ok {
		t.Fatal("control selection must replace the anchor selection")
	}
	if _, ok := sess.SelectedControl(); !ok {
		t.Fatal("control must be selected")
	}
}

func TestOnShapeChangedFires(t *testing.T) {
	s := shape.New(shape.Line{X2: 10}, shape.DefaultStyle())
	sess := NewSession()
	var fired int
	sess.OnShapeChanged = func(ch *shape.Shape) {
		if ch != s {
			t.Fatalf("callback got wrong shape")
		}
		fired++
	}
	sess.SelectAnchor(anchorByIndex(t, s, shape.HandleLineEndpoint, 0))
	_ = sess.BeginDrag(geom.Pt{})
	_ = sess.UpdateDrag(geom.Pt{X: 1, Y: 1})
	_ = sess.UpdateDrag(geom.Pt{X: 2, Y: 2})
	if fired != 2 {
		t.Fatalf("callback fired %d times, want 2", fired)
	}
}
