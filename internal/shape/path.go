/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package shape

import (
	"fmt"
	"strconv"
	"strings"

	"govectoredit/internal/geom"
)

// SegmentKind distinguishes straight from cubic segments.
type SegmentKind uint8

const (
	SegLine SegmentKind = iota
	SegCurve
)

// Segment is one piece of a path between two consecutive anchors. Control1
// and Control2 are meaningful only for SegCurve. Segments form a connected
// chain: Segments[i].Start equals Segments[i-1].End.
type Segment struct {
	Kind               SegmentKind
	Start, End         geom.Pt
	Control1, Control2 geom.Pt
}

// Path is an ordered segment chain with an explicit anchor-0 start point.
// The segment list is the source of truth; the wire-format string exists only
// at the export/parse boundary and is never re-parsed internally.
type Path struct {
	start    geom.Pt
	hasStart bool
	Segments []Segment
}

// NewPath starts a path at its anchor-0 point.
func NewPath(start geom.Pt) *Path { return &Path{start: start, hasStart: true} }

// StartPoint returns the anchor-0 point (zero value for a path that was
// never anchored).
func (p *Path) StartPoint() geom.Pt { return p.start }

// Anchored reports whether the path has an anchor-0 point.
func (p *Path) Anchored() bool { return p.hasStart }

// AnchorCount counts the draggable anchors: the start plus one per segment end.
func (p *Path) AnchorCount() int {
	if !p.hasStart {
		return 0
	}
	return len(p.Segments) + 1
}

// Anchor returns the position of anchor i (0 = start, i>0 = Segments[i-1].End).
func (p *Path) Anchor(i int) (geom.Pt, error) {
	if i < 0 || i >= p.AnchorCount() {
		return geom.Pt{}, fmt.Errorf("anchor index %d out of range [0,%d)", i, p.AnchorCount())
	}
	if i == 0 {
		return p.start, nil
	}
	return p.Segments[i-1].End, nil
}

// lastPoint is the chain's current endpoint, where the next segment starts.
func (p *Path) lastPoint() geom.Pt {
	if n := len(p.Segments); n > 0 {
		return p.Segments[n-1].End
	}
	return p.start
}

// AppendLine adds a straight segment from the current endpoint to end.
// On a path that was never anchored it establishes the anchor instead.
func (p *Path) AppendLine(end geom.Pt) {
	if !p.hasStart {
		p.start = end
		p.hasStart = true
		return
	}
	p.Segments = append(p.Segments, Segment{Kind: SegLine, Start: p.lastPoint(), End: end})
}

// Control-point split for single-gesture curves. A curve is drawn by pressing
// at dragAnchor and releasing at end; placing control1 30% of the way from
// the start toward the press point and control2 70% of the way from the press
// point toward the release point gives a natural-feeling curve without a
// second control-point gesture. Serialized documents depend on these exact
// fractions, so they must not change.
const (
	curveSplitIn  = 0.3
	curveSplitOut = 0.7
)

// AppendCurve adds a cubic segment from the current endpoint to end, deriving
// both control points from the single drag gesture anchored at dragAnchor.
func (p *Path) AppendCurve(dragAnchor, end geom.Pt) {
	if !p.hasStart {
		p.start = dragAnchor
		p.hasStart = true
	}
	start := p.lastPoint()
	c1 := start.Add(dragAnchor.Sub(start).Mul(curveSplitIn))
	c2 := dragAnchor.Add(end.Sub(dragAnchor).Mul(curveSplitOut))
	p.Segments = append(p.Segments, Segment{Kind: SegCurve, Start: start, End: end, Control1: c1, Control2: c2})
}

// MoveAnchor relocates anchor i to (x,y). Moving the end of a curve segment
// translates both of its control points by the same delta, which keeps the
// curve's shape under an endpoint drag; that is a contract callers may rely
// on, not an implementation accident. The joint with the following segment is
// kept connected. Moving anchor 0 of a zero-segment path is a no-op.
func (p *Path) MoveAnchor(i int, x, y float64) error {
	if i == 0 && len(p.Segments) == 0 {
		return nil
	}
	if i < 0 || i >= p.AnchorCount() {
		return fmt.Errorf("anchor index %d out of range [0,%d)", i, p.AnchorCount())
	}
	target := geom.Pt{X: x, Y: y}
	if i == 0 {
		p.start = target
		p.Segments[0].Start = target
		return nil
	}
	s := &p.Segments[i-1]
	delta := target.Sub(s.End)
	if s.Kind == SegCurve {
		s.Control1 = s.Control1.Add(delta)
		s.Control2 = s.Control2.Add(delta)
	}
	s.End = target
	if i < len(p.Segments) {
		p.Segments[i].Start = target
	}
	return nil
}

// ControlWhich selects one of a curve segment's two control points.
type ControlWhich uint8

const (
	ControlFirst ControlWhich = iota
	ControlSecond
)

// MoveControl relocates exactly one control point of one curve segment; the
// sibling control point and both endpoints are untouched.
func (p *Path) MoveControl(segIndex int, which ControlWhich, x, y float64) error {
	if segIndex < 0 || segIndex >= len(p.Segments) {
		return fmt.Errorf("segment index %d out of range [0,%d)", segIndex, len(p.Segments))
	}
	s := &p.Segments[segIndex]
	if s.Kind != SegCurve {
		return fmt.Errorf("segment %d is not a curve", segIndex)
	}
	switch which {
	case ControlFirst:
		s.Control1 = geom.Pt{X: x, Y: y}
	case ControlSecond:
		s.Control2 = geom.Pt{X: x, Y: y}
	default:
		return fmt.Errorf("unknown control selector %d", which)
	}
	return nil
}

// fnum formats a coordinate as plain decimal, never scientific notation.
func fnum(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// Data serializes the path to its wire format: one leading "M x y" followed
// by "L ex ey" / "C c1x c1y c2x c2y ex ey" commands, space-joined. A path
// holding only its anchor serializes to a bare "M x y"; a never-anchored path
// serializes to the empty string.
func (p *Path) Data() string {
	if !p.hasStart {
		return ""
	}
	var b strings.Builder
	b.WriteString("M ")
	b.WriteString(fnum(p.start.X))
	b.WriteString(" ")
	b.WriteString(fnum(p.start.Y))
	for _, s := range p.Segments {
		switch s.Kind {
		case SegLine:
			b.WriteString(" L ")
			b.WriteString(fnum(s.End.X))
			b.WriteString(" ")
			b.WriteString(fnum(s.End.Y))
		case SegCurve:
			b.WriteString(" C ")
			b.WriteString(fnum(s.Control1.X))
			b.WriteString(" ")
			b.WriteString(fnum(s.Control1.Y))
			b.WriteString(" ")
			b.WriteString(fnum(s.Control2.X))
			b.WriteString(" ")
			b.WriteString(fnum(s.Control2.Y))
			b.WriteString(" ")
			b.WriteString(fnum(s.End.X))
			b.WriteString(" ")
			b.WriteString(fnum(s.End.Y))
		}
	}
	return b.String()
}

// Clone deep-copies the path.
func (p *Path) Clone() *Path {
	cp := &Path{start: p.start, hasStart: p.hasStart}
	if len(p.Segments) > 0 {
		cp.Segments = append([]Segment(nil), p.Segments...)
	}
	return cp
}

func (p *Path) translated(dx, dy float64) *Path {
	cp := p.Clone()
	d := geom.Pt{X: dx, Y: dy}
	cp.start = cp.start.Add(d)
	for i := range cp.Segments {
		s := &cp.Segments[i]
		s.Start = s.Start.Add(d)
		s.End = s.End.Add(d)
		if s.Kind == SegCurve {
			s.Control1 = s.Control1.Add(d)
			s.Control2 = s.Control2.Add(d)
		}
	}
	return cp
}

// curveFlattenSteps is the uniform subdivision used to approximate curve
// segments for length and point-at-length queries.
const curveFlattenSteps = 32

// flatten returns the path as a polyline.
func (p *Path) flatten() []geom.Pt {
	if !p.hasStart {
		return nil
	}
	pts := []geom.Pt{p.start}
	for _, s := range p.Segments {
		switch s.Kind {
		case SegLine:
			pts = append(pts, s.End)
		case SegCurve:
			sub := geom.FlattenCubic(s.Start, s.Control1, s.Control2, s.End, curveFlattenSteps)
			pts = append(pts, sub[1:]...)
		}
	}
	return pts
}

// Length approximates the total arclength of the path.
func (p *Path) Length() float64 { return geom.PolylineLength(p.flatten()) }

// PointAtLength walks the flattened path to the point at distance d from the
// start. d is clamped to [0, Length].
func (p *Path) PointAtLength(d float64) geom.Pt {
	pts := p.flatten()
	if len(pts) == 0 {
		return geom.Pt{}
	}
	if d <= 0 {
		return pts[0]
	}
	for i := 1; i < len(pts); i++ {
		step := geom.Dist(pts[i-1], pts[i])
		if d <= step && step > 0 {
			return geom.Lerp(pts[i-1], pts[i], d/step)
		}
		d -= step
	}
	return pts[len(pts)-1]
}
