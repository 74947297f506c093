/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package document

import (
	"encoding/json"
	"fmt"
	"time"

	"govectoredit/internal/shape"
	"govectoredit/internal/undo"
)

// Snapshots are the undo unit: the full shape list serialized to JSON.
// Geometry travels in a flat per-kind form; paths reuse the wire format so
// this stays a single source of truth with parse.go.

type shapeDTO struct {
	ID   string  `json:"id"`
	Kind string  `json:"kind"`
	X1   float64 `json:"x1,omitempty"`
	Y1   float64 `json:"y1,omitempty"`
	X2   float64 `json:"x2,omitempty"`
	Y2   float64 `json:"y2,omitempty"`
	X    float64 `json:"x,omitempty"`
	Y    float64 `json:"y,omitempty"`
	W    float64 `json:"w,omitempty"`
	H    float64 `json:"h,omitempty"`
	CX   float64 `json:"cx,omitempty"`
	CY   float64 `json:"cy,omitempty"`
	R    float64 `json:"r,omitempty"`
	Data string  `json:"data,omitempty"`

	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"strokeWidth"`
	Fill        string  `json:"fill"`
	Opacity     float64 `json:"opacity"`
}

func toDTO(s *shape.Shape) shapeDTO {
	d := shapeDTO{
		ID:          string(s.ID),
		Kind:        s.Geom.Kind().String(),
		Stroke:      paintString(s.Style.Stroke),
		StrokeWidth: s.Style.StrokeWidth,
		Fill:        paintString(s.Style.Fill),
		Opacity:     s.Style.Opacity,
	}
	switch g := s.Geom.(type) {
	case shape.Line:
		d.X1, d.Y1, d.X2, d.Y2 = g.X1, g.Y1, g.X2, g.Y2
	case shape.Rect:
		d.X, d.Y, d.W, d.H = g.X, g.Y, g.W, g.H
	case shape.Circle:
		d.CX, d.CY, d.R = g.CX, g.CY, g.R
	case *shape.Path:
		d.Data = g.Data()
	default:
		panic("document: snapshot of unsupported geometry")
	}
	return d
}

func fromDTO(d shapeDTO) (*shape.Shape, error) {
	var g shape.Geometry
	switch d.Kind {
	case "line":
		g = shape.Line{X1: d.X1, Y1: d.Y1, X2: d.X2, Y2: d.Y2}
	case "rect":
		g = shape.Rect{X: d.X, Y: d.Y, W: d.W, H: d.H}
	case "circle":
		g = shape.Circle{CX: d.CX, CY: d.CY, R: d.R}
	case "path":
		p, err := shape.ParseData(d.Data)
		if err != nil {
			return nil, err
		}
		g = p
	default:
		return nil, fmt.Errorf("unknown shape kind %q in snapshot", d.Kind)
	}
	st := shape.Style{StrokeWidth: d.StrokeWidth, Opacity: d.Opacity}
	if p, ok := shape.ParsePaint(d.Stroke); ok {
		st.Stroke = p
	}
	if p, ok := shape.ParsePaint(d.Fill); ok {
		st.Fill = p
	}
	return &shape.Shape{ID: shape.ID(d.ID), Geom: g, Style: st.Normalized()}, nil
}

func paintString(p shape.Paint) string {
	if !p.Enabled {
		return "none"
	}
	return p.Color.Hex()
}

// Snapshot serializes the current shape list.
func (d *Document) Snapshot() ([]byte, error) {
	dtos := make([]shapeDTO, 0, len(d.shapes))
	for _, s := range d.shapes {
		dtos = append(dtos, toDTO(s))
	}
	return json.Marshal(dtos)
}

// Restore replaces the shape list with the snapshot's content. Selection and
// in-progress draws are dropped; repeat metadata of vanished shapes is
// forgotten and the rest is recomputed against the restored geometry.
func (d *Document) Restore(blob []byte) error {
	var dtos []shapeDTO
	if err := json.Unmarshal(blob, &dtos); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	shapes := make([]*shape.Shape, 0, len(dtos))
	byID := make(map[shape.ID]*shape.Shape, len(dtos))
	for _, dto := range dtos {
		s, err := fromDTO(dto)
		if err != nil {
			return err
		}
		shapes = append(shapes, s)
		byID[s.ID] = s
	}

	for id := range d.byID {
		if _, ok := byID[id]; !ok {
			d.Repeats.Forget(id)
		}
	}
	d.shapes = shapes
	d.byID = byID
	d.pending = make(map[shape.ID]*pendingDraw)
	d.Deselect()
	for _, s := range d.shapes {
		d.Repeats.Recompute(s)
	}
	if d.OnShapeChanged != nil && len(d.shapes) > 0 {
		d.OnShapeChanged(d.shapes[len(d.shapes)-1])
	}
	return nil
}

// recordHistory pushes the pre-mutation state; callers invoke it before a
// committed structural change so Undo restores the state just prior.
func (d *Document) recordHistory() {
	if d.History == nil {
		return
	}
	blob, err := d.Snapshot()
	if err != nil {
		d.log.Warn("history snapshot failed", "err", err)
		return
	}
	d.History.PushSnapshot(undo.Snapshot{Blob: blob, TS: time.Now()})
}

// Undo reverts the document to the state before the last committed change.
func (d *Document) Undo() bool {
	if d.History == nil {
		return false
	}
	s, ok := d.History.Undo()
	if !ok {
		return false
	}
	if err := d.Restore(s.Blob); err != nil {
		d.log.Error("undo restore failed", "err", err)
		return false
	}
	return true
}

// Redo re-applies the state most recently reverted by Undo.
func (d *Document) Redo() bool {
	if d.History == nil {
		return false
	}
	s, ok := d.History.Redo()
	if !ok {
		return false
	}
	if err := d.Restore(s.Blob); err != nil {
		d.log.Error("redo restore failed", "err", err)
		return false
	}
	return true
}
