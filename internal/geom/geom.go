/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

// Basic 2D geometry for the editor model. Coordinates are float64 to match
// the precision of the serialized path data and the SVG output.

import "math"

// Pt is a 2D point.
type Pt struct{ X, Y float64 }

func (p Pt) Add(q Pt) Pt { return Pt{p.X + q.X, p.Y + q.Y} }
func (p Pt) Sub(q Pt) Pt { return Pt{p.X - q.X, p.Y - q.Y} }

// Mul scales the point by a scalar.
func (p Pt) Mul(s float64) Pt { return Pt{p.X * s, p.Y * s} }

// Dist returns the Euclidean distance between two points.
func Dist(a, b Pt) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Lerp interpolates linearly between a and b; t=0 yields a, t=1 yields b.
func Lerp(a, b Pt, t float64) Pt {
	return Pt{a.X + (b.X-a.X)*t, a.Y + (b.Y-a.Y)*t}
}

// CubicPoint evaluates a cubic Bezier at parameter t using the polynomial form.
func CubicPoint(p0, c1, c2, p1 Pt, t float64) Pt {
	u := 1 - t
	a := u * u * u
	b := 3 * u * u * t
	c := 3 * u * t * t
	d := t * t * t
	return Pt{
		X: a*p0.X + b*c1.X + c*c2.X + d*p1.X,
		Y: a*p0.Y + b*c1.Y + c*c2.Y + d*p1.Y,
	}
}

// FlattenCubic approximates a cubic Bezier by a polyline with steps uniform
// parameter subdivisions. The result has steps+1 points including both ends.
func FlattenCubic(p0, c1, c2, p1 Pt, steps int) []Pt {
	if steps < 1 {
		steps = 1
	}
	pts := make([]Pt, 0, steps+1)
	for i := 0; i <= steps; i++ {
		pts = append(pts, CubicPoint(p0, c1, c2, p1, float64(i)/float64(steps)))
	}
	return pts
}

// PolylineLength sums the segment lengths of a polyline.
func PolylineLength(pts []Pt) float64 {
	var d float64
	for i := 1; i < len(pts); i++ {
		d += Dist(pts[i-1], pts[i])
	}
	return d
}

// FloatRound rounds v to n decimal places deterministically.
func FloatRound(v float64, places int) float64 {
	if places < 0 {
		return v
	}
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
