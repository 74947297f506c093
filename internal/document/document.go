/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package document owns the element list and exposes the operations the
// drawing tools and UI call: create/update/finalize/delete shapes, selection
// with handle emission, and the repeat-point controls. Everything runs on
// the UI's single event loop; there is no locking by construction.
package document

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"govectoredit/internal/edit"
	"govectoredit/internal/geom"
	applog "govectoredit/internal/log"
	"govectoredit/internal/repeat"
	"govectoredit/internal/shape"
	"govectoredit/internal/undo"
)

// Document is the insertion-ordered shape list; order defines z-order and
// the layer panel order. Shapes are exclusively owned here; handles and
// repeat metadata hold non-owning back-references that are cleared on
// delete/deselect.
type Document struct {
	shapes  []*shape.Shape
	byID    map[shape.ID]*shape.Shape
	pending map[shape.ID]*pendingDraw

	selected shape.ID

	Session *edit.Session
	Repeats *repeat.Engine
	History *undo.Manager

	defaults shape.Style

	// OnStatus surfaces user-visible, non-fatal messages (rejected actions,
	// clone counts). OnShapeChanged lets a render layer redraw one shape.
	OnStatus       func(msg string)
	OnShapeChanged func(*shape.Shape)

	log *slog.Logger
}

// pendingDraw tracks an in-progress drawing gesture for a shape that has not
// been finalized yet.
type pendingDraw struct {
	origin geom.Pt
}

// New builds an empty document with the given style defaults for new shapes.
func New(defaults shape.Style) *Document {
	d := &Document{
		byID:     make(map[shape.ID]*shape.Shape),
		pending:  make(map[shape.ID]*pendingDraw),
		Session:  edit.NewSession(),
		Repeats:  repeat.NewEngine(0),
		History: undo.NewManager(undo.Config{
			MaxBytes:    16 * 1024 * 1024,
			MaxDepth:    50,
			MinInterval: 300 * time.Millisecond,
		}),
		defaults: defaults.Normalized(),
		log:      applog.WithComponent("document"),
	}
	d.Session.OnShapeChanged = d.shapeChanged
	return d
}

// Shapes returns the element list in z-order. Callers must not reorder it.
func (d *Document) Shapes() []*shape.Shape { return d.shapes }

// ShapeByID resolves an id.
func (d *Document) ShapeByID(id shape.ID) (*shape.Shape, bool) {
	s, ok := d.byID[id]
	return s, ok
}

// Len reports the number of shapes in the document.
func (d *Document) Len() int { return len(d.shapes) }

// CreateShape starts a new shape of the given kind at pos and returns its id.
// The shape is live in the document immediately (so it renders while being
// drawn) but stays pending until FinalizeShape or CancelDraw.
func (d *Document) CreateShape(kind shape.Kind, pos geom.Pt) shape.ID {
	var g shape.Geometry
	switch kind {
	case shape.KindLine:
		g = shape.Line{X1: pos.X, Y1: pos.Y, X2: pos.X, Y2: pos.Y}
	case shape.KindRect:
		g = shape.Rect{X: pos.X, Y: pos.Y}
	case shape.KindCircle:
		g = shape.Circle{CX: pos.X, CY: pos.Y}
	case shape.KindPath:
		g = shape.NewPath(pos)
	default:
		panic(fmt.Sprintf("document: create of unsupported kind %v", kind))
	}
	d.recordHistory()
	s := shape.New(g, d.defaults)
	d.shapes = append(d.shapes, s)
	d.byID[s.ID] = s
	d.pending[s.ID] = &pendingDraw{origin: pos}
	applog.WithShape(d.log, string(s.ID)).Debug("shape created", slog.String("kind", kind.String()))
	return s.ID
}

// UpdateShapeFromDrag updates an in-progress shape from the current pointer
// position: the line's free endpoint, the rect spanned from its origin
// (flipping instead of going negative), the circle's radius, or the path's
// last anchor. Recomputed from scratch on every call.
func (d *Document) UpdateShapeFromDrag(id shape.ID, pos geom.Pt) error {
	s, ok := d.byID[id]
	if !ok {
		return fmt.Errorf("unknown shape %s", id)
	}
	pd, ok := d.pending[id]
	if !ok {
		return fmt.Errorf("shape %s is not being drawn", id)
	}
	switch g := s.Geom.(type) {
	case shape.Line:
		g.X2, g.Y2 = pos.X, pos.Y
		s.Geom = g
	case shape.Rect:
		s.Geom = shape.Rect{
			X: min(pos.X, pd.origin.X),
			Y: min(pos.Y, pd.origin.Y),
			W: math.Abs(pos.X - pd.origin.X),
			H: math.Abs(pos.Y - pd.origin.Y),
		}
	case shape.Circle:
		g.R = geom.Dist(pos, geom.Pt{X: g.CX, Y: g.CY})
		s.Geom = g
	case *shape.Path:
		if n := g.AnchorCount(); n > 1 {
			if err := g.MoveAnchor(n-1, pos.X, pos.Y); err != nil {
				return err
			}
		}
	default:
		panic("document: drag update of unsupported geometry")
	}
	d.shapeChanged(s)
	return nil
}

// AppendPathLine extends an in-progress path with a straight segment.
func (d *Document) AppendPathLine(id shape.ID, end geom.Pt) error {
	p, err := d.pendingPath(id)
	if err != nil {
		return err
	}
	p.AppendLine(end)
	s := d.byID[id]
	d.shapeChanged(s)
	return nil
}

// AppendPathCurve extends an in-progress path with a cubic segment derived
// from a single press-drag-release gesture.
func (d *Document) AppendPathCurve(id shape.ID, dragAnchor, end geom.Pt) error {
	p, err := d.pendingPath(id)
	if err != nil {
		return err
	}
	p.AppendCurve(dragAnchor, end)
	s := d.byID[id]
	d.shapeChanged(s)
	return nil
}

func (d *Document) pendingPath(id shape.ID) (*shape.Path, error) {
	s, ok := d.byID[id]
	if !ok {
		return nil, fmt.Errorf("unknown shape %s", id)
	}
	if _, ok := d.pending[id]; !ok {
		return nil, fmt.Errorf("shape %s is not being drawn", id)
	}
	p, ok := s.Geom.(*shape.Path)
	if !ok {
		return nil, fmt.Errorf("shape %s is not a path", id)
	}
	return p, nil
}

// FinalizeShape commits an in-progress shape. If some template shape holds
// an active repeat point, the new element is cloned to every other sample
// point; the drawn shape itself is never moved. Finalizing a shape that is
// not pending fails before the clone pass so clones are never duplicated.
func (d *Document) FinalizeShape(id shape.ID) error {
	s, ok := d.byID[id]
	if !ok {
		return fmt.Errorf("unknown shape %s", id)
	}
	if _, ok := d.pending[id]; !ok {
		return fmt.Errorf("shape %s is not being drawn", id)
	}
	delete(d.pending, id)

	tid, ok := d.Repeats.ActiveTemplate()
	if !ok || tid == id {
		return nil
	}
	template, ok := d.byID[tid]
	if !ok {
		// template was deleted but its meta lingered; clean up
		d.Repeats.Forget(tid)
		return nil
	}
	clones := d.Repeats.CloneForNewElement(template, s)
	for _, c := range clones {
		d.shapes = append(d.shapes, c)
		d.byID[c.ID] = c
	}
	if len(clones) > 0 {
		d.status(fmt.Sprintf("placed %d copies along the repeat points", len(clones)))
	}
	return nil
}

// CancelDraw abandons an in-progress shape, removing it from the document.
// Finalized shapes are not affected.
func (d *Document) CancelDraw(id shape.ID) {
	if _, ok := d.pending[id]; !ok {
		return
	}
	delete(d.pending, id)
	d.remove(id)
	applog.WithShape(d.log, string(id)).Debug("draw cancelled")
}

// DeleteShape removes a shape, clearing its selection, handles and repeat
// metadata so nothing holds a stale back-reference.
func (d *Document) DeleteShape(id shape.ID) error {
	if _, ok := d.byID[id]; !ok {
		return fmt.Errorf("unknown shape %s", id)
	}
	d.recordHistory()
	delete(d.pending, id)
	d.remove(id)
	return nil
}

func (d *Document) remove(id shape.ID) {
	delete(d.byID, id)
	for i, s := range d.shapes {
		if s.ID == id {
			d.shapes = append(d.shapes[:i], d.shapes[i+1:]...)
			break
		}
	}
	d.Repeats.Forget(id)
	if d.selected == id {
		d.selected = ""
		d.Session.ClearSelection()
	}
}

// SelectShape marks a shape selected and emits its freshly derived handle
// sets for rendering.
func (d *Document) SelectShape(id shape.ID) ([]shape.AnchorHandle, []shape.ControlHandle, error) {
	s, ok := d.byID[id]
	if !ok {
		return nil, nil, fmt.Errorf("unknown shape %s", id)
	}
	if d.selected != id {
		d.Session.ClearSelection()
	}
	d.selected = id
	return shape.Handles(s), shape.ControlHandles(s), nil
}

// Deselect clears the selection and the editing session.
func (d *Document) Deselect() {
	d.selected = ""
	d.Session.ClearSelection()
}

// Selected returns the currently selected shape, if any.
func (d *Document) Selected() (*shape.Shape, bool) {
	if d.selected == "" {
		return nil, false
	}
	s, ok := d.byID[d.selected]
	return s, ok
}

// SetRepeatCount samples n repeat points along the shape. Unsupported kinds
// (rect, circle) are rejected with a user-facing message, not an error in
// the editing session. n <= 0 clears the repeat state.
func (d *Document) SetRepeatCount(id shape.ID, n int) error {
	s, ok := d.byID[id]
	if !ok {
		return fmt.Errorf("unknown shape %s", id)
	}
	if err := d.Repeats.SetCount(s, n); err != nil {
		d.status(err.Error())
		return err
	}
	return nil
}

// SetActiveRepeatPoint toggles the active sample point on a shape.
func (d *Document) SetActiveRepeatPoint(id shape.ID, index int) error {
	if _, ok := d.byID[id]; !ok {
		return fmt.Errorf("unknown shape %s", id)
	}
	if err := d.Repeats.SetActive(id, index); err != nil {
		d.status(err.Error())
		return err
	}
	return nil
}

// shapeChanged is the single funnel for geometry mutations: repeat points
// are recomputed so they never desync from the template, then the render
// layer is told to redraw. Derived data is always fully rebuilt.
func (d *Document) shapeChanged(s *shape.Shape) {
	d.Repeats.Recompute(s)
	if d.OnShapeChanged != nil {
		d.OnShapeChanged(s)
	}
}

func (d *Document) status(msg string) {
	if d.OnStatus != nil {
		d.OnStatus(msg)
	}
	d.log.Info("status", slog.String("msg", msg))
}
