/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package shape

import (
	"testing"

	"govectoredit/internal/geom"
)

func TestParseDataBasic(t *testing.T) {
	p, err := ParseData("M 0 0 L 10 0 C 12 3 18 3 20 0")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.StartPoint() != (geom.Pt{X: 0, Y: 0}) {
		t.Fatalf("start = %+v", p.StartPoint())
	}
	if len(p.Segments) != 2 {
		t.Fatalf("segments = %d, want 2", len(p.Segments))
	}
	if p.Segments[0].Kind != SegLine || p.Segments[1].Kind != SegCurve {
		t.Fatalf("segment kinds wrong: %+v", p.Segments)
	}
	if p.Segments[1].Start != p.Segments[0].End {
		t.Fatalf("chain disconnected: %+v", p.Segments)
	}
	if p.Segments[1].Control2 != (geom.Pt{X: 18, Y: 3}) {
		t.Fatalf("control2 = %+v", p.Segments[1].Control2)
	}
}

func TestParseDataSkipsMalformedCommand(t *testing.T) {
	p, err := ParseData("M 0 0 L x y L 10 0")
	if err != nil {
		t.Fatalf("parse should tolerate a bad command: %v", err)
	}
	if len(p.Segments) != 1 {
		t.Fatalf("expected the good segment to survive, got %d", len(p.Segments))
	}
	if p.Segments[0].End != (geom.Pt{X: 10, Y: 0}) {
		t.Fatalf("surviving segment = %+v", p.Segments[0])
	}
}

func TestParseDataTruncatedCurve(t *testing.T) {
	p, err := ParseData("M 0 0 C 1 2 3")
	if err != nil {
		t.Fatalf("truncated curve should not fail the whole parse: %v", err)
	}
	if len(p.Segments) != 0 {
		t.Fatalf("truncated curve must be dropped, got %+v", p.Segments)
	}
	if p.StartPoint() != (geom.Pt{}) || !p.Anchored() {
		t.Fatalf("anchor must survive: %+v", p.StartPoint())
	}
}

func TestParseDataExtraMIsDropped(t *testing.T) {
	p, err := ParseData("M 0 0 M 5 5 L 10 0")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.StartPoint() != (geom.Pt{X: 0, Y: 0}) {
		t.Fatalf("first M must win: %+v", p.StartPoint())
	}
	if len(p.Segments) != 1 {
		t.Fatalf("segments = %d", len(p.Segments))
	}
}

func TestParseDataNoUsableStart(t *testing.T) {
	if _, err := ParseData("L 10 0"); err == nil {
		t.Fatal("segments before any M must fail the parse")
	}
	if _, err := ParseData("garbage tokens only"); err == nil {
		t.Fatal("pure garbage must fail the parse")
	}
}

func TestParseDataEmptyInput(t *testing.T) {
	p, err := ParseData("")
	if err != nil {
		t.Fatalf("empty input: %v", err)
	}
	if p.Anchored() {
		t.Fatal("empty input must yield an unanchored path")
	}
}
