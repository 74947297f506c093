/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package repeat samples parametric points along a template line or path and
// clones newly drawn shapes to every sampled position, preserving the offset
// between the drawn shape and the active sample point.
package repeat

import (
	"fmt"
	"log/slog"

	"govectoredit/internal/geom"
	applog "govectoredit/internal/log"
	"govectoredit/internal/shape"
)

// MaxPoints caps the sample count; more repeat points than this stops being
// an editing aid and starts being a perf problem.
const MaxPoints = 500

// NoActive marks a meta without an active sample point.
const NoActive = -1

// SamplePoint is one parametric position along the template.
type SamplePoint struct {
	T    float64 // parameter in [0,1]
	X, Y float64
}

// Meta is the per-template repeat state. It lives in the engine's side table,
// never on the shape itself, and is dropped when the shape is deleted.
type Meta struct {
	Count  int
	Points []SamplePoint
	Active int // index into Points, or NoActive
}

// Engine owns the repeat state for all shapes in a document.
type Engine struct {
	meta      map[shape.ID]*Meta
	maxPoints int
	log       *slog.Logger
}

// NewEngine builds an engine; maxPoints <= 0 selects the default cap.
func NewEngine(maxPoints int) *Engine {
	if maxPoints <= 0 || maxPoints > MaxPoints {
		maxPoints = MaxPoints
	}
	return &Engine{
		meta:      make(map[shape.ID]*Meta),
		maxPoints: maxPoints,
		log:       applog.WithComponent("repeat"),
	}
}

// Sample returns count evenly-spaced-in-parameter points along the template,
// positioned by arclength. count <= 0 yields an empty slice; count == 1
// yields the single midpoint t=0.5; larger counts use t_i = i/(count-1).
// Lines and paths are the only templates; other kinds are a user-level
// rejection, not a crash.
func Sample(g shape.Geometry, count int) ([]SamplePoint, error) {
	if count <= 0 {
		return nil, nil
	}
	if count > MaxPoints {
		count = MaxPoints
	}
	at, err := pointAt(g)
	if err != nil {
		return nil, err
	}
	if count == 1 {
		p := at(0.5)
		return []SamplePoint{{T: 0.5, X: p.X, Y: p.Y}}, nil
	}
	pts := make([]SamplePoint, 0, count)
	for i := 0; i < count; i++ {
		t := float64(i) / float64(count-1)
		p := at(t)
		pts = append(pts, SamplePoint{T: t, X: p.X, Y: p.Y})
	}
	return pts, nil
}

// pointAt returns the arclength-parameterized evaluator for a template.
func pointAt(g shape.Geometry) (func(t float64) geom.Pt, error) {
	switch v := g.(type) {
	case shape.Line:
		a := geom.Pt{X: v.X1, Y: v.Y1}
		b := geom.Pt{X: v.X2, Y: v.Y2}
		return func(t float64) geom.Pt { return geom.Lerp(a, b, t) }, nil
	case *shape.Path:
		total := v.Length()
		return func(t float64) geom.Pt { return v.PointAtLength(t * total) }, nil
	default:
		return nil, fmt.Errorf("repeat points are only available on lines and paths, not %s", g.Kind())
	}
}

// Meta looks up the repeat state for a shape.
func (e *Engine) Meta(id shape.ID) (*Meta, bool) {
	m, ok := e.meta[id]
	return m, ok
}

// SetCount resamples the template with the given count. count <= 0 clears the
// shape's repeat state entirely.
func (e *Engine) SetCount(s *shape.Shape, count int) error {
	if count <= 0 {
		delete(e.meta, s.ID)
		return nil
	}
	if count > e.maxPoints {
		count = e.maxPoints
	}
	pts, err := Sample(s.Geom, count)
	if err != nil {
		return err
	}
	m, ok := e.meta[s.ID]
	if !ok {
		m = &Meta{Active: NoActive}
		e.meta[s.ID] = m
	}
	m.Count = count
	m.Points = pts
	if m.Active >= len(m.Points) {
		m.Active = NoActive
	}
	e.log.Debug("repeat points sampled", slog.String("shape", string(s.ID)), slog.Int("count", count))
	return nil
}

// SetActive toggles the active sample point: selecting the current active
// index deselects it, selecting another replaces it. Only one index can be
// active at a time across the whole engine.
func (e *Engine) SetActive(id shape.ID, index int) error {
	m, ok := e.meta[id]
	if !ok {
		return fmt.Errorf("shape has no repeat points")
	}
	if index < 0 || index >= len(m.Points) {
		return fmt.Errorf("repeat point index %d out of range [0,%d)", index, len(m.Points))
	}
	if m.Active == index {
		m.Active = NoActive
		return nil
	}
	for oid, om := range e.meta {
		if oid != id {
			om.Active = NoActive
		}
	}
	m.Active = index
	return nil
}

// Recompute regenerates the sample points from the template's current
// geometry. Called after every geometry mutation of a template so the points
// never visibly desync from the shape. The active index is invalidated when
// it no longer fits the regenerated points.
func (e *Engine) Recompute(s *shape.Shape) {
	m, ok := e.meta[s.ID]
	if !ok || m.Count <= 0 {
		return
	}
	pts, err := Sample(s.Geom, m.Count)
	if err != nil {
		// geometry kind changed under us; drop the stale points
		e.log.Warn("repeat recompute failed", slog.String("shape", string(s.ID)), slog.Any("err", err))
		m.Points = nil
		m.Active = NoActive
		return
	}
	m.Points = pts
	if m.Active >= len(m.Points) {
		m.Active = NoActive
	}
}

// Forget drops all repeat state for a shape (deletion path).
func (e *Engine) Forget(id shape.ID) { delete(e.meta, id) }

// ActiveTemplate returns the shape currently holding an active sample point.
func (e *Engine) ActiveTemplate() (shape.ID, bool) {
	for id, m := range e.meta {
		if m.Active != NoActive && len(m.Points) > 0 {
			return id, true
		}
	}
	return "", false
}

// CloneForNewElement places a copy of drawn at every sample point except the
// active one, each copy offset from its sample point exactly as drawn is
// offset from the active point. The drawn shape itself is never moved; the
// returned clones are net-new and not yet part of any document. Fewer than
// two sample points round to zero clones.
func (e *Engine) CloneForNewElement(template, drawn *shape.Shape) []*shape.Shape {
	m, ok := e.meta[template.ID]
	if !ok || m.Active == NoActive || len(m.Points) <= 1 {
		return nil
	}
	active := m.Points[m.Active]
	clones := make([]*shape.Shape, 0, len(m.Points)-1)
	for i, p := range m.Points {
		if i == m.Active {
			continue
		}
		c := drawn.Clone()
		c.Geom = shape.Translate(c.Geom, p.X-active.X, p.Y-active.Y)
		clones = append(clones, c)
	}
	e.log.Info("cloned element to repeat points",
		slog.String("template", string(template.ID)),
		slog.String("drawn", string(drawn.ID)),
		slog.Int("clones", len(clones)))
	return clones
}
