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
	"log/slog"
	"strconv"
	"strings"

	applog "govectoredit/internal/log"

	"govectoredit/internal/geom"
)

// ParseData rebuilds a path from its wire format: space-separated tokens,
// one leading "M x y", then any number of absolute "L x y" and
// "C c1x c1y c2x c2y ex ey" commands. Parsing is tolerant: a malformed
// command is skipped and logged, and already-parsed segments are preserved.
// An error is returned only when no anchor could be recovered at all.
func ParseData(data string) (*Path, error) {
	l := applog.WithComponent("path")
	tokens := strings.Fields(data)
	p := &Path{}
	i := 0
	for i < len(tokens) {
		cmd := tokens[i]
		switch cmd {
		case "M":
			nums, next, ok := takeNumbers(tokens, i+1, 2)
			if !ok {
				l.Warn("skipping malformed path command", slog.String("cmd", cmd), slog.Int("pos", i))
				i = skipToCommand(tokens, i+1)
				continue
			}
			if p.hasStart {
				// the grammar allows a single M; later ones are dropped
				l.Warn("skipping extra M command", slog.Int("pos", i))
				i = next
				continue
			}
			p.start = geom.Pt{X: nums[0], Y: nums[1]}
			p.hasStart = true
			i = next
		case "L":
			nums, next, ok := takeNumbers(tokens, i+1, 2)
			if !ok || !p.hasStart {
				l.Warn("skipping malformed path command", slog.String("cmd", cmd), slog.Int("pos", i))
				i = skipToCommand(tokens, i+1)
				continue
			}
			p.Segments = append(p.Segments, Segment{Kind: SegLine, Start: p.lastPoint(), End: geom.Pt{X: nums[0], Y: nums[1]}})
			i = next
		case "C":
			nums, next, ok := takeNumbers(tokens, i+1, 6)
			if !ok || !p.hasStart {
				l.Warn("skipping malformed path command", slog.String("cmd", cmd), slog.Int("pos", i))
				i = skipToCommand(tokens, i+1)
				continue
			}
			p.Segments = append(p.Segments, Segment{
				Kind:     SegCurve,
				Start:    p.lastPoint(),
				Control1: geom.Pt{X: nums[0], Y: nums[1]},
				Control2: geom.Pt{X: nums[2], Y: nums[3]},
				End:      geom.Pt{X: nums[4], Y: nums[5]},
			})
			i = next
		default:
			l.Warn("skipping unknown path token", slog.String("token", cmd), slog.Int("pos", i))
			i++
		}
	}
	if !p.hasStart && len(tokens) > 0 {
		return nil, fmt.Errorf("path data %q contains no usable M command", data)
	}
	return p, nil
}

// takeNumbers reads count floats starting at tokens[from]. ok is false when a
// token is missing or not a plain decimal number.
func takeNumbers(tokens []string, from, count int) (nums []float64, next int, ok bool) {
	if from+count > len(tokens) {
		return nil, from, false
	}
	nums = make([]float64, 0, count)
	for j := 0; j < count; j++ {
		v, err := strconv.ParseFloat(tokens[from+j], 64)
		if err != nil {
			return nil, from, false
		}
		nums = append(nums, v)
	}
	return nums, from + count, true
}

// skipToCommand advances to the next recognizable command letter so a bad
// command cannot swallow the rest of the string.
func skipToCommand(tokens []string, from int) int {
	for from < len(tokens) {
		switch tokens[from] {
		case "M", "L", "C":
			return from
		}
		from++
	}
	return from
}
