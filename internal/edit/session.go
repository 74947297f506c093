/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package edit maps on-canvas handle gestures to geometry mutations. One
// editing session is active at a time, scoped to the currently selected
// shape (or all shapes in the dedicated point-editing mode).
package edit

import (
	"fmt"
	"log/slog"
	"math"

	"govectoredit/internal/geom"
	applog "govectoredit/internal/log"
	"govectoredit/internal/shape"
)

// State is the session's gesture state.
type State uint8

const (
	Idle State = iota
	HandleSelected
	Dragging
)

// Session drives handle selection and dragging. A drag never accumulates
// deltas: every update recomputes the target from the current pointer
// position and the offset stored at drag begin, so replayed or repeated
// pointer events cannot cause drift.
type Session struct {
	anchor   *shape.AnchorHandle
	control  *shape.ControlHandle
	dragging bool
	offset   geom.Pt

	// geometry snapshot taken at BeginDrag; the fixed reference for
	// opposite-corner math and the restore point for CancelDrag
	origGeom shape.Geometry

	// OnShapeChanged fires after every committed geometry mutation, once the
	// shape's handles have been rebuilt.
	OnShapeChanged func(*shape.Shape)

	log *slog.Logger
}

func NewSession() *Session {
	return &Session{log: applog.WithComponent("edit")}
}

// State derives the current gesture state. A retained selection after
// EndDrag reports HandleSelected so the same handle can be re-dragged
// without re-selecting.
func (s *Session) State() State {
	switch {
	case s.dragging:
		return Dragging
	case s.anchor != nil || s.control != nil:
		return HandleSelected
	default:
		return Idle
	}
}

// SelectedAnchor returns the selected anchor handle, if any.
func (s *Session) SelectedAnchor() (shape.AnchorHandle, bool) {
	if s.anchor == nil {
		return shape.AnchorHandle{}, false
	}
	return *s.anchor, true
}

// SelectedControl returns the selected control handle, if any.
func (s *Session) SelectedControl() (shape.ControlHandle, bool) {
	if s.control == nil {
		return shape.ControlHandle{}, false
	}
	return *s.control, true
}

// SelectAnchor makes h the selection, replacing any previous anchor or
// control selection. Valid from any state; an in-flight drag is abandoned
// without committing further movement.
func (s *Session) SelectAnchor(h shape.AnchorHandle) {
	hc := h
	s.anchor = &hc
	s.control = nil
	s.dragging = false
	s.origGeom = nil
}

// SelectControl mirrors SelectAnchor for curve control handles; anchor and
// control selection are mutually exclusive.
func (s *Session) SelectControl(h shape.ControlHandle) {
	hc := h
	s.control = &hc
	s.anchor = nil
	s.dragging = false
	s.origGeom = nil
}

// ClearSelection drops any selection and returns to Idle. Must be called
// when the handled shape is deleted or deselected so no stale back-reference
// survives.
func (s *Session) ClearSelection() {
	s.anchor = nil
	s.control = nil
	s.dragging = false
	s.origGeom = nil
}

// BeginDrag starts dragging the selected handle. The offset between the
// pointer and the handle position is captured once here.
func (s *Session) BeginDrag(pos geom.Pt) error {
	if s.State() != HandleSelected {
		return fmt.Errorf("begin drag requires a selected handle")
	}
	var sh *shape.Shape
	var hpos geom.Pt
	if s.anchor != nil {
		sh, hpos = s.anchor.Shape, s.anchor.Pos
	} else {
		sh, hpos = s.control.Shape, s.control.Pos
	}
	s.offset = pos.Sub(hpos)
	s.origGeom = shape.CloneGeometry(sh.Geom)
	s.dragging = true
	return nil
}

// UpdateDrag commits the geometry mutation for the current pointer position.
// Safe to call any number of times with intermediate positions.
func (s *Session) UpdateDrag(pos geom.Pt) error {
	if !s.dragging {
		return fmt.Errorf("update drag without an active drag")
	}
	target := pos.Sub(s.offset)
	if s.control != nil {
		return s.applyControl(target)
	}
	return s.applyAnchor(target)
}

// EndDrag commits the last computed position and returns to the selected
// state; the selection is retained so the handle can be dragged again.
func (s *Session) EndDrag() {
	s.dragging = false
	s.origGeom = nil
	s.offset = geom.Pt{}
}

// CancelDrag abandons an in-flight drag, restoring the geometry captured at
// BeginDrag. (Releasing the pointer normally always commits; cancel exists
// for an explicit Escape gesture.)
func (s *Session) CancelDrag() {
	if !s.dragging || s.origGeom == nil {
		return
	}
	var sh *shape.Shape
	if s.anchor != nil {
		sh = s.anchor.Shape
	} else if s.control != nil {
		sh = s.control.Shape
	}
	if sh != nil {
		sh.Geom = s.origGeom
		s.refreshSelection(sh)
		s.notify(sh)
	}
	s.dragging = false
	s.origGeom = nil
	s.offset = geom.Pt{}
}

func (s *Session) applyAnchor(target geom.Pt) error {
	h := s.anchor
	sh := h.Shape
	switch h.Kind {
	case shape.HandleLineEndpoint:
		g := sh.Geom.(shape.Line)
		if h.Index == 0 {
			g.X1, g.Y1 = target.X, target.Y
		} else {
			g.X2, g.Y2 = target.X, target.Y
		}
		sh.Geom = g
	case shape.HandleRectCorner:
		// the opposite corner of the drag-start geometry stays fixed for the
		// whole gesture; dragging past it flips the rectangle instead of
		// producing negative dimensions
		orig := s.origGeom.(shape.Rect)
		opp := shape.RectCorner(orig, (h.Index+2)%4)
		sh.Geom = shape.Rect{
			X: math.Min(target.X, opp.X),
			Y: math.Min(target.Y, opp.Y),
			W: math.Abs(target.X - opp.X),
			H: math.Abs(target.Y - opp.Y),
		}
	case shape.HandleCircleCenter:
		g := sh.Geom.(shape.Circle)
		g.CX, g.CY = target.X, target.Y
		sh.Geom = g
	case shape.HandleCircleRadius:
		g := sh.Geom.(shape.Circle)
		center := geom.Pt{X: g.CX, Y: g.CY}
		g.R = geom.Dist(target, center)
		sh.Geom = g
	case shape.HandlePathVertex:
		p := sh.Geom.(*shape.Path)
		if err := p.MoveAnchor(h.Index, target.X, target.Y); err != nil {
			return err
		}
	default:
		panic("edit: unsupported anchor handle kind")
	}
	s.refreshSelection(sh)
	s.notify(sh)
	return nil
}

func (s *Session) applyControl(target geom.Pt) error {
	h := s.control
	p, ok := h.Shape.Geom.(*shape.Path)
	if !ok {
		return fmt.Errorf("control handle on non-path shape")
	}
	if err := p.MoveControl(h.Segment, h.Which, target.X, target.Y); err != nil {
		return err
	}
	s.refreshSelection(h.Shape)
	s.notify(h.Shape)
	return nil
}

// refreshSelection rebuilds the shape's handle set and repoints the stored
// selection at the freshly derived handle. Handles are derived data; after a
// mutation the old positions are stale and must never be reused.
func (s *Session) refreshSelection(sh *shape.Shape) {
	if s.anchor != nil {
		for _, h := range shape.Handles(sh) {
			if h.Kind == s.anchor.Kind && h.Index == s.anchor.Index {
				hc := h
				s.anchor = &hc
				return
			}
		}
		applog.WithShape(s.log, string(sh.ID)).Warn("selected handle vanished after mutation")
		s.anchor = nil
		s.dragging = false
		return
	}
	if s.control != nil {
		for _, h := range shape.ControlHandles(sh) {
			if h.Segment == s.control.Segment && h.Which == s.control.Which {
				hc := h
				s.control = &hc
				return
			}
		}
		applog.WithShape(s.log, string(sh.ID)).Warn("selected control handle vanished after mutation")
		s.control = nil
		s.dragging = false
	}
}

func (s *Session) notify(sh *shape.Shape) {
	if s.OnShapeChanged != nil {
		s.OnShapeChanged(sh)
	}
}
