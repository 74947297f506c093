/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"govectoredit/internal/crash"
	"govectoredit/internal/document"
	"govectoredit/internal/export"
	"govectoredit/internal/geom"
	applog "govectoredit/internal/log"
	"govectoredit/internal/shape"
	"govectoredit/internal/ui"
	"govectoredit/internal/version"
)

func usage() {
	fmt.Println("GoVectorEdit — vector drawing editor")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  govectoredit version|-v|--version   Show version")
	fmt.Println("  govectoredit demo <out.svg>          Build a sample drawing and export it as SVG")
	fmt.Println("  govectoredit ui                      Launch desktop UI (build with -tags fyne for full UI)")
}

func main() {
	// initialize structured logging using environment defaults
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	// doc is assigned by the demo branch; the handler picks up whatever
	// exists when a panic unwinds
	var doc *document.Document
	defer func() {
		if r := recover(); r != nil {
			crash.HandlePanic(r, doc)
		}
	}()

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) > 1 {
		switch args[1] {
		case "version", "--version", "-v":
			fmt.Println("GoVectorEdit — vector drawing editor")
			fmt.Println(version.String())
			return
		case "demo":
			if len(args) < 3 {
				fmt.Println("demo requires <out.svg>")
				usage()
				os.Exit(2)
			}
			out, _ := filepath.Abs(args[2])
			doc = buildDemoDocument()
			l.Info("export demo drawing", slog.String("path", out), slog.Int("shapes", doc.Len()))
			if err := export.WriteFile(doc, out, export.SVGOptions{Width: 800, Height: 600, Background: "#ffffff"}); err != nil {
				l.Error("export failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Println("Wrote", out)
			return
		case "ui":
			if err := ui.Run(); err != nil {
				l.Error("UI failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			return
		}
	}
	usage()
}

// buildDemoDocument draws a small scene through the same operations the UI
// uses, including repeat-point cloning of a circle along a line.
func buildDemoDocument() *document.Document {
	d := document.New(shape.DefaultStyle())

	id := d.CreateShape(shape.KindLine, geom.Pt{X: 100, Y: 500})
	_ = d.UpdateShapeFromDrag(id, geom.Pt{X: 700, Y: 500})
	_ = d.FinalizeShape(id)
	_ = d.SetRepeatCount(id, 5)
	_ = d.SetActiveRepeatPoint(id, 2)

	// one circle at the active point becomes five along the baseline
	cid := d.CreateShape(shape.KindCircle, geom.Pt{X: 400, Y: 450})
	_ = d.UpdateShapeFromDrag(cid, geom.Pt{X: 400, Y: 430})
	_ = d.FinalizeShape(cid)

	rid := d.CreateShape(shape.KindRect, geom.Pt{X: 150, Y: 100})
	_ = d.UpdateShapeFromDrag(rid, geom.Pt{X: 350, Y: 220})
	_ = d.FinalizeShape(rid)

	pid := d.CreateShape(shape.KindPath, geom.Pt{X: 420, Y: 120})
	_ = d.AppendPathLine(pid, geom.Pt{X: 520, Y: 180})
	_ = d.AppendPathCurve(pid, geom.Pt{X: 580, Y: 80}, geom.Pt{X: 660, Y: 200})
	_ = d.FinalizeShape(pid)

	return d
}
