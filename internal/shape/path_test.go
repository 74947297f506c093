/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package shape

import (
	"math"
	"strings"
	"testing"

	"govectoredit/internal/geom"
)

func nearPt(a, b geom.Pt) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9
}

func TestAppendCurveControlDerivation(t *testing.T) {
	p := NewPath(geom.Pt{X: 0, Y: 0})
	p.AppendCurve(geom.Pt{X: 10, Y: 0}, geom.Pt{X: 30, Y: 10})
	if len(p.Segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(p.Segments))
	}
	s := p.Segments[0]
	// control1 sits 30% of the way from the start toward the press point
	if !nearPt(s.Control1, geom.Pt{X: 3, Y: 0}) {
		t.Fatalf("control1 = %+v, want (3,0)", s.Control1)
	}
	// control2 sits 70% of the way from the press point toward the release point
	if !nearPt(s.Control2, geom.Pt{X: 24, Y: 7}) {
		t.Fatalf("control2 = %+v, want (24,7)", s.Control2)
	}
	if s.Start != (geom.Pt{}) || s.End != (geom.Pt{X: 30, Y: 10}) {
		t.Fatalf("segment endpoints wrong: %+v", s)
	}
}

func TestAppendLineEstablishesAnchor(t *testing.T) {
	p := &Path{}
	if p.Anchored() {
		t.Fatal("zero path should not be anchored")
	}
	p.AppendLine(geom.Pt{X: 4, Y: 5})
	if !p.Anchored() || len(p.Segments) != 0 {
		t.Fatalf("first append should only establish the anchor: anchored=%v segs=%d", p.Anchored(), len(p.Segments))
	}
	p.AppendLine(geom.Pt{X: 8, Y: 5})
	if len(p.Segments) != 1 || p.Segments[0].Start != (geom.Pt{X: 4, Y: 5}) {
		t.Fatalf("second append wrong: %+v", p.Segments)
	}
}

func TestMoveAnchorTranslatesCurveControls(t *testing.T) {
	p := NewPath(geom.Pt{X: 0, Y: 0})
	p.Segments = append(p.Segments, Segment{
		Kind:     SegCurve,
		Start:    geom.Pt{X: 0, Y: 0},
		Control1: geom.Pt{X: 10, Y: 0},
		Control2: geom.Pt{X: 20, Y: 10},
		End:      geom.Pt{X: 30, Y: 10},
	})
	if err := p.MoveAnchor(1, 40, 20); err != nil {
		t.Fatalf("move anchor: %v", err)
	}
	s := p.Segments[0]
	if s.Control1 != (geom.Pt{X: 20, Y: 10}) {
		t.Fatalf("control1 = %+v, want (20,10)", s.Control1)
	}
	if s.Control2 != (geom.Pt{X: 30, Y: 20}) {
		t.Fatalf("control2 = %+v, want (30,20)", s.Control2)
	}
	if s.End != (geom.Pt{X: 40, Y: 20}) {
		t.Fatalf("end = %+v, want (40,20)", s.End)
	}
}

func TestMoveAnchorKeepsJointConnected(t *testing.T) {
	p := NewPath(geom.Pt{X: 0, Y: 0})
	p.AppendLine(geom.Pt{X: 10, Y: 0})
	p.AppendLine(geom.Pt{X: 20, Y: 0})
	if err := p.MoveAnchor(1, 10, 5); err != nil {
		t.Fatalf("move anchor: %v", err)
	}
	if p.Segments[0].End != (geom.Pt{X: 10, Y: 5}) {
		t.Fatalf("segment end not moved: %+v", p.Segments[0].End)
	}
	if p.Segments[1].Start != (geom.Pt{X: 10, Y: 5}) {
		t.Fatalf("next segment start disconnected: %+v", p.Segments[1].Start)
	}
}

func TestMoveAnchorZeroOnBareStartIsNoop(t *testing.T) {
	p := NewPath(geom.Pt{X: 5, Y: 5})
	if err := p.MoveAnchor(0, 9, 9); err != nil {
		t.Fatalf("expected no-op, got error %v", err)
	}
	if p.StartPoint() != (geom.Pt{X: 5, Y: 5}) {
		t.Fatalf("bare start moved: %+v", p.StartPoint())
	}
}

func TestMoveAnchorZeroWithSegments(t *testing.T) {
	p := NewPath(geom.Pt{X: 0, Y: 0})
	p.AppendLine(geom.Pt{X: 10, Y: 0})
	if err := p.MoveAnchor(0, 2, 3); err != nil {
		t.Fatalf("move anchor 0: %v", err)
	}
	if p.StartPoint() != (geom.Pt{X: 2, Y: 3}) || p.Segments[0].Start != (geom.Pt{X: 2, Y: 3}) {
		t.Fatalf("start and first segment must move together: %+v / %+v", p.StartPoint(), p.Segments[0].Start)
	}
}

func TestMoveAnchorOutOfRange(t *testing.T) {
	p := NewPath(geom.Pt{})
	p.AppendLine(geom.Pt{X: 1, Y: 1})
	if err := p.MoveAnchor(5, 0, 0); err == nil {
		t.Fatal("expected range error")
	}
	if err := p.MoveAnchor(-1, 0, 0); err == nil {
		t.Fatal("expected range error for negative index")
	}
}

func TestMoveControlTouchesOnlyOnePoint(t *testing.T) {
	p := NewPath(geom.Pt{})
	p.AppendCurve(geom.Pt{X: 10, Y: 0}, geom.Pt{X: 20, Y: 0})
	before := p.Segments[0]
	if err := p.MoveControl(0, ControlSecond, 15, 9); err != nil {
		t.Fatalf("move control: %v", err)
	}
	after := p.Segments[0]
	if after.Control2 != (geom.Pt{X: 15, Y: 9}) {
		t.Fatalf("control2 = %+v", after.Control2)
	}
	if after.Control1 != before.Control1 || after.Start != before.Start || after.End != before.End {
		t.Fatalf("sibling control or endpoints moved: %+v", after)
	}
}

func TestMoveControlOnLineSegmentFails(t *testing.T) {
	p := NewPath(geom.Pt{})
	p.AppendLine(geom.Pt{X: 5, Y: 0})
	if err := p.MoveControl(0, ControlFirst, 1, 1); err == nil {
		t.Fatal("expected error moving control of a line segment")
	}
}

func TestDataSerialization(t *testing.T) {
	p := NewPath(geom.Pt{X: 1.5, Y: 2})
	if got := p.Data(); got != "M 1.5 2" {
		t.Fatalf("bare anchor data = %q", got)
	}
	p.AppendLine(geom.Pt{X: 10, Y: 2})
	if got := p.Data(); got != "M 1.5 2 L 10 2" {
		t.Fatalf("line data = %q", got)
	}
	p.AppendCurve(geom.Pt{X: 15, Y: 10}, geom.Pt{X: 20, Y: 2})
	got := p.Data()
	if !strings.HasPrefix(got, "M 1.5 2 L 10 2 C ") || !strings.HasSuffix(got, " 20 2") {
		t.Fatalf("curve data = %q", got)
	}
	if (&Path{}).Data() != "" {
		t.Fatal("unanchored path must serialize empty")
	}
}

func TestDataParseRoundTrip(t *testing.T) {
	p := NewPath(geom.Pt{X: 0, Y: 0})
	p.AppendLine(geom.Pt{X: 12.25, Y: 0})
	p.AppendCurve(geom.Pt{X: 20, Y: 8}, geom.Pt{X: 30, Y: 0})
	parsed, err := ParseData(p.Data())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.Data() != p.Data() {
		t.Fatalf("round trip mismatch:\n  %q\n  %q", p.Data(), parsed.Data())
	}
}

func TestLengthAndPointAtLength(t *testing.T) {
	p := NewPath(geom.Pt{X: 0, Y: 0})
	p.AppendLine(geom.Pt{X: 10, Y: 0})
	p.AppendLine(geom.Pt{X: 10, Y: 10})
	if l := p.Length(); math.Abs(l-20) > 1e-9 {
		t.Fatalf("length = %v, want 20", l)
	}
	mid := p.PointAtLength(10)
	if mid != (geom.Pt{X: 10, Y: 0}) {
		t.Fatalf("point at 10 = %+v", mid)
	}
	if end := p.PointAtLength(999); end != (geom.Pt{X: 10, Y: 10}) {
		t.Fatalf("clamped end = %+v", end)
	}
	if start := p.PointAtLength(-1); start != (geom.Pt{X: 0, Y: 0}) {
		t.Fatalf("clamped start = %+v", start)
	}
}
