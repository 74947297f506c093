//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"fmt"
	"image/color"
	"log/slog"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"golang.org/x/image/colornames"

	"govectoredit/internal/config"
	"govectoredit/internal/crash"
	"govectoredit/internal/document"
	"govectoredit/internal/export"
	"govectoredit/internal/geom"
	applog "govectoredit/internal/log"
	"govectoredit/internal/repeat"
	"govectoredit/internal/shape"
	"govectoredit/internal/telemetry"
)

// strokePalette is the toolbar color choice, by X11 color name.
var strokePalette = []string{"black", "red", "blue", "green", "orange", "purple", "gray"}

// Run starts the Fyne-based desktop editor.
func Run() error {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("ui")
	l.Info("starting UI")

	cfg, err := config.Load()
	if err != nil {
		l.Warn("config load failed, using defaults", slog.Any("err", err))
		cfg = config.Defaults()
	}

	doc := document.New(styleFromConfig(cfg))
	if n := cfg.Editor.MaxRepeatPoints; n > 0 {
		doc.Repeats = repeat.NewEngine(n)
	}
	defer crash.Recover(doc)
	telemetry.AppStarted()

	fyneApp := app.NewWithID("govectoredit")
	w := fyneApp.NewWindow("GoVectorEdit")
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1200)
	winH := prefs.IntWithFallback("window.height", 800)
	if winW < 800 {
		winW = 800
	}
	if winH < 600 {
		winH = 600
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	status := widget.NewLabel("Ready")
	ec := NewEditorCanvas(doc)
	doc.OnStatus = func(msg string) { status.SetText(msg) }
	doc.OnShapeChanged = func(*shape.Shape) { ec.Refresh() }

	toolSelect := widget.NewSelect([]string{"select", "line", "rect", "circle", "path", "curve"}, func(name string) {
		ec.SetTool(toolFromName(name))
		status.SetText("Tool: " + name)
		telemetry.ToolSelected(name)
	})
	toolSelect.SetSelected("select")

	colorSelect := widget.NewSelect(strokePalette, func(name string) {
		c, ok := colornames.Map[name]
		if !ok {
			return
		}
		ec.SetStrokeColor(shape.Color{R: c.R, G: c.G, B: c.B, A: c.A})
	})
	colorSelect.SetSelected("black")

	finishBtn := widget.NewButton("Finish Path", func() {
		if err := ec.FinishPath(); err != nil {
			status.SetText(err.Error())
		}
	})

	repeatEntry := widget.NewEntry()
	repeatEntry.SetPlaceHolder("repeat points")
	applyRepeat := widget.NewButton("Apply Repeat", func() {
		sel, ok := doc.Selected()
		if !ok {
			status.SetText("Select a line or path first.")
			return
		}
		n, err := strconv.Atoi(strings.TrimSpace(repeatEntry.Text))
		if err != nil {
			status.SetText("Repeat count must be a whole number.")
			return
		}
		if err := doc.SetRepeatCount(sel.ID, n); err != nil {
			return // status already set via OnStatus
		}
		ec.Refresh()
		status.SetText(fmt.Sprintf("Sampled %d repeat points.", n))
	})

	undoBtn := widget.NewButton("Undo", func() {
		if doc.Undo() {
			ec.Refresh()
			status.SetText("Undone.")
		}
	})
	redoBtn := widget.NewButton("Redo", func() {
		if doc.Redo() {
			ec.Refresh()
			status.SetText("Redone.")
		}
	})

	deleteBtn := widget.NewButton("Delete", func() {
		sel, ok := doc.Selected()
		if !ok {
			return
		}
		if err := doc.DeleteShape(sel.ID); err != nil {
			dialog.ShowError(err, w)
			return
		}
		ec.Refresh()
		status.SetText("Shape deleted.")
	})

	exportBtn := widget.NewButton("Export SVG", func() {
		dialog.ShowFileSave(func(wc fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if wc == nil {
				return
			}
			defer func() { _ = wc.Close() }()
			data, err := export.Document(doc, export.SVGOptions{Width: ec.docW, Height: ec.docH, Background: "#ffffff"})
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if _, err := wc.Write(data); err != nil {
				dialog.ShowError(err, w)
				return
			}
			telemetry.DocumentExported(doc.Len())
			status.SetText("Exported " + wc.URI().Name())
		}, w)
	})

	toolbar := container.NewHBox(
		widget.NewLabel("Tool:"), toolSelect,
		widget.NewLabel("Stroke:"), colorSelect,
		finishBtn, widget.NewSeparator(),
		repeatEntry, applyRepeat, widget.NewSeparator(),
		undoBtn, redoBtn, deleteBtn, exportBtn,
	)

	w.SetContent(container.NewBorder(toolbar, status, nil, nil, ec))
	w.SetOnClosed(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
	})
	w.ShowAndRun()
	return nil
}

func styleFromConfig(cfg config.AppConfig) shape.Style {
	st := shape.DefaultStyle()
	if p, ok := shape.ParsePaint(cfg.Editor.StrokeColor); ok {
		st.Stroke = p
	}
	if p, ok := shape.ParsePaint(cfg.Editor.FillColor); ok {
		st.Fill = p
	}
	if cfg.Editor.StrokeWidth > 0 {
		st.StrokeWidth = cfg.Editor.StrokeWidth
	}
	st.Opacity = cfg.Editor.Opacity
	return st.Normalized()
}

// Tool selects the active drawing interaction.
type Tool int

const (
	ToolSelect Tool = iota
	ToolLine
	ToolRect
	ToolCircle
	ToolPath
	ToolCurve
)

func toolFromName(name string) Tool {
	switch name {
	case "line":
		return ToolLine
	case "rect":
		return ToolRect
	case "circle":
		return ToolCircle
	case "path":
		return ToolPath
	case "curve":
		return ToolCurve
	}
	return ToolSelect
}

// dragMode represents the current pointer interaction kind.
type dragMode int

const (
	dragNone dragMode = iota
	dragPan
	dragDraw
	dragCurve
	dragHandle
)

const handleHitRadius = 8 // screen px

// EditorCanvas is the interactive drawing surface. It draws a white document
// rectangle on a dark background, renders every document shape plus the
// selection handles and repeat markers, and maps taps and drags onto document
// operations. Pan with a background drag, zoom with the wheel.
type EditorCanvas struct {
	widget.BaseWidget

	doc *document.Document

	zoom       float32
	offsetX    float32
	offsetY    float32
	docW, docH float64

	tool        Tool
	strokeColor shape.Color

	// in-progress draw gesture
	drawID       shape.ID
	pathID       shape.ID // open path being built across taps
	mode         dragMode
	dragStart    geom.Pt // document coords of the gesture start
	lastCurveEnd geom.Pt // latest pointer position of a curve gesture

	log *slog.Logger
}

func NewEditorCanvas(doc *document.Document) *EditorCanvas {
	ec := &EditorCanvas{
		doc:         doc,
		zoom:        1,
		docW:        800,
		docH:        600,
		strokeColor: shape.Black,
		log:         applog.WithComponent("canvas"),
	}
	ec.ExtendBaseWidget(ec)
	return ec
}

func (ec *EditorCanvas) SetTool(t Tool) {
	if t != ToolPath && t != ToolCurve {
		ec.closePath()
	}
	ec.tool = t
}

func (ec *EditorCanvas) SetStrokeColor(c shape.Color) { ec.strokeColor = c }

// FinishPath commits the open path, if any.
func (ec *EditorCanvas) FinishPath() error {
	if ec.pathID == "" {
		return fmt.Errorf("no open path")
	}
	id := ec.pathID
	ec.pathID = ""
	if err := ec.doc.FinalizeShape(id); err != nil {
		return err
	}
	ec.Refresh()
	return nil
}

func (ec *EditorCanvas) closePath() {
	if ec.pathID == "" {
		return
	}
	_ = ec.doc.FinalizeShape(ec.pathID)
	ec.pathID = ""
}

// PreferredSize sets a decent default size for the widget.
func (ec *EditorCanvas) PreferredSize() fyne.Size { return fyne.NewSize(800, 600) }

// Coordinate helpers: document <-> screen mapping.
func (ec *EditorCanvas) docOriginAndScale() (cx, cy, scale float32) {
	size := ec.Size()
	scaledW := float32(ec.docW) * ec.zoom
	scaledH := float32(ec.docH) * ec.zoom
	cx = size.Width/2 - scaledW/2 + ec.offsetX
	cy = size.Height/2 - scaledH/2 + ec.offsetY
	return cx, cy, ec.zoom
}

func (ec *EditorCanvas) toScreen(pt geom.Pt) fyne.Position {
	cx, cy, s := ec.docOriginAndScale()
	return fyne.NewPos(cx+float32(pt.X)*s, cy+float32(pt.Y)*s)
}

func (ec *EditorCanvas) toDoc(pos fyne.Position) geom.Pt {
	cx, cy, s := ec.docOriginAndScale()
	return geom.Pt{X: float64((pos.X - cx) / s), Y: float64((pos.Y - cy) / s)}
}

// hitTolerance is the pick distance in document units at the current zoom.
func (ec *EditorCanvas) hitTolerance() float64 {
	return float64(handleHitRadius) / float64(ec.zoom)
}

// Tapped drives selection, repeat-point activation, and path building.
func (ec *EditorCanvas) Tapped(e *fyne.PointEvent) {
	pt := ec.toDoc(e.Position)
	switch ec.tool {
	case ToolPath:
		if ec.pathID == "" {
			ec.pathID = ec.doc.CreateShape(shape.KindPath, pt)
		} else if err := ec.doc.AppendPathLine(ec.pathID, pt); err != nil {
			ec.log.Warn("append path line", slog.Any("err", err))
		}
		ec.Refresh()
	case ToolSelect:
		ec.tapSelect(e.Position, pt)
	}
}

func (ec *EditorCanvas) tapSelect(screen fyne.Position, pt geom.Pt) {
	// handles of the selected shape win over everything underneath
	if sel, ok := ec.doc.Selected(); ok {
		for _, h := range shape.ControlHandles(sel) {
			if ec.nearScreen(screen, h.Pos) {
				ec.doc.Session.SelectControl(h)
				ec.Refresh()
				return
			}
		}
		for _, h := range shape.Handles(sel) {
			if ec.nearScreen(screen, h.Pos) {
				ec.doc.Session.SelectAnchor(h)
				ec.Refresh()
				return
			}
		}
	}
	// repeat markers next
	for _, s := range ec.doc.Shapes() {
		m, ok := ec.doc.Repeats.Meta(s.ID)
		if !ok {
			continue
		}
		for i, p := range m.Points {
			if ec.nearScreen(screen, geom.Pt{X: p.X, Y: p.Y}) {
				_ = ec.doc.SetActiveRepeatPoint(s.ID, i)
				ec.Refresh()
				return
			}
		}
	}
	// then the shapes themselves, topmost first
	shapes := ec.doc.Shapes()
	for i := len(shapes) - 1; i >= 0; i-- {
		if ec.hitShape(shapes[i], pt) {
			_, _, _ = ec.doc.SelectShape(shapes[i].ID)
			ec.Refresh()
			return
		}
	}
	ec.doc.Deselect()
	ec.Refresh()
}

func (ec *EditorCanvas) nearScreen(screen fyne.Position, pt geom.Pt) bool {
	sp := ec.toScreen(pt)
	dx := float64(screen.X - sp.X)
	dy := float64(screen.Y - sp.Y)
	return dx*dx+dy*dy <= handleHitRadius*handleHitRadius
}

// hitShape tests a document point against a shape's outline (or interior for
// filled rects and circles).
func (ec *EditorCanvas) hitShape(s *shape.Shape, pt geom.Pt) bool {
	tol := ec.hitTolerance()
	switch g := s.Geom.(type) {
	case shape.Line:
		return distToSegment(pt, geom.Pt{X: g.X1, Y: g.Y1}, geom.Pt{X: g.X2, Y: g.Y2}) <= tol
	case shape.Rect:
		return pt.X >= g.X-tol && pt.X <= g.X+g.W+tol && pt.Y >= g.Y-tol && pt.Y <= g.Y+g.H+tol
	case shape.Circle:
		return geom.Dist(pt, geom.Pt{X: g.CX, Y: g.CY}) <= g.R+tol
	case *shape.Path:
		prev, first := geom.Pt{}, true
		for _, fp := range flattenPath(g) {
			if !first && distToSegment(pt, prev, fp) <= tol {
				return true
			}
			prev, first = fp, false
		}
		return false
	default:
		panic("ui: hit test of unsupported geometry")
	}
}

// Dragged drives drawing, handle dragging, and panning.
func (ec *EditorCanvas) Dragged(e *fyne.DragEvent) {
	pos := e.Position
	if ec.mode == dragNone {
		start := fyne.NewPos(pos.X-e.Dragged.DX, pos.Y-e.Dragged.DY)
		ec.dragStart = ec.toDoc(start)
		switch ec.tool {
		case ToolLine:
			ec.drawID = ec.doc.CreateShape(shape.KindLine, ec.dragStart)
			ec.mode = dragDraw
		case ToolRect:
			ec.drawID = ec.doc.CreateShape(shape.KindRect, ec.dragStart)
			ec.mode = dragDraw
		case ToolCircle:
			ec.drawID = ec.doc.CreateShape(shape.KindCircle, ec.dragStart)
			ec.mode = dragDraw
		case ToolCurve:
			ec.mode = dragCurve
		default:
			if ec.beginHandleDrag(start) {
				ec.mode = dragHandle
			} else {
				ec.mode = dragPan
			}
		}
	}

	switch ec.mode {
	case dragPan:
		ec.offsetX += e.Dragged.DX
		ec.offsetY += e.Dragged.DY
	case dragDraw:
		if err := ec.doc.UpdateShapeFromDrag(ec.drawID, ec.toDoc(pos)); err != nil {
			ec.log.Warn("drag update", slog.Any("err", err))
		}
	case dragHandle:
		if err := ec.doc.Session.UpdateDrag(ec.toDoc(pos)); err != nil {
			ec.log.Warn("handle drag", slog.Any("err", err))
		}
	case dragCurve:
		// the curve is appended once, on release; DragEnd carries no
		// position, so remember the latest one here
		ec.lastCurveEnd = ec.toDoc(pos)
	}
	ec.Refresh()
}

// beginHandleDrag starts a session drag when the gesture begins on the
// selected handle.
func (ec *EditorCanvas) beginHandleDrag(start fyne.Position) bool {
	sess := ec.doc.Session
	var hpos geom.Pt
	if h, ok := sess.SelectedAnchor(); ok {
		hpos = h.Pos
	} else if h, ok := sess.SelectedControl(); ok {
		hpos = h.Pos
	} else {
		return false
	}
	if !ec.nearScreen(start, hpos) {
		return false
	}
	if err := sess.BeginDrag(ec.toDoc(start)); err != nil {
		ec.log.Warn("begin drag", slog.Any("err", err))
		return false
	}
	return true
}

// DragEnd commits whatever gesture was in flight.
func (ec *EditorCanvas) DragEnd() {
	switch ec.mode {
	case dragDraw:
		if ec.drawID != "" {
			if err := ec.doc.FinalizeShape(ec.drawID); err != nil {
				ec.log.Warn("finalize", slog.Any("err", err))
			}
			ec.drawID = ""
		}
	case dragCurve:
		// press point shapes the curve, release point ends it
		if ec.pathID == "" {
			ec.pathID = ec.doc.CreateShape(shape.KindPath, ec.dragStart)
		}
		if err := ec.doc.AppendPathCurve(ec.pathID, ec.dragStart, ec.lastCurveEnd); err != nil {
			ec.log.Warn("append curve", slog.Any("err", err))
		}
	case dragHandle:
		ec.doc.Session.EndDrag()
	}
	ec.mode = dragNone
	ec.Refresh()
}

// Scrolled zooms around the current view.
func (ec *EditorCanvas) Scrolled(e *fyne.ScrollEvent) {
	step := e.Scrolled.DY * 0.05
	ec.zoom += step
	if ec.zoom < 0.1 {
		ec.zoom = 0.1
	}
	if ec.zoom > 4.0 {
		ec.zoom = 4.0
	}
	ec.Refresh()
}

// CreateRenderer builds the renderer; all scene objects are rebuilt from the
// document on every layout, mirroring how the model treats derived data.
func (ec *EditorCanvas) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.RGBA{R: 30, G: 30, B: 34, A: 255})
	page := canvas.NewRectangle(color.White)
	page.StrokeColor = color.RGBA{R: 20, G: 20, B: 20, A: 255}
	page.StrokeWidth = 2
	return &editorCanvasRenderer{ec: ec, bg: bg, page: page}
}

type editorCanvasRenderer struct {
	ec      *EditorCanvas
	bg      *canvas.Rectangle
	page    *canvas.Rectangle
	objects []fyne.CanvasObject
}

func (r *editorCanvasRenderer) Destroy()                     {}
func (r *editorCanvasRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *editorCanvasRenderer) MinSize() fyne.Size           { return r.ec.PreferredSize() }
func (r *editorCanvasRenderer) Refresh()                     { r.Layout(r.ec.Size()); canvas.Refresh(r.ec) }

func (r *editorCanvasRenderer) Layout(size fyne.Size) {
	ec := r.ec
	r.bg.Resize(size)
	r.bg.Move(fyne.NewPos(0, 0))

	cx, cy, s := ec.docOriginAndScale()
	r.page.Resize(fyne.NewSize(float32(ec.docW)*s, float32(ec.docH)*s))
	r.page.Move(fyne.NewPos(cx, cy))

	objs := []fyne.CanvasObject{r.bg, r.page}
	for _, sh := range ec.doc.Shapes() {
		objs = append(objs, r.shapeObjects(sh)...)
	}
	objs = append(objs, r.repeatMarkers()...)
	objs = append(objs, r.handleObjects()...)
	r.objects = objs
}

func (r *editorCanvasRenderer) shapeObjects(sh *shape.Shape) []fyne.CanvasObject {
	ec := r.ec
	st := sh.Style.Normalized()
	stroke := rgba(st.Stroke.Color, st.Opacity)
	if !st.Stroke.Enabled {
		stroke = color.RGBA{}
	}
	fill := color.RGBA{}
	if st.Fill.Enabled {
		fill = rgba(st.Fill.Color, st.Opacity)
	}
	width := float32(st.StrokeWidth) * ec.zoom

	switch g := sh.Geom.(type) {
	case shape.Line:
		ln := canvas.NewLine(stroke)
		ln.StrokeWidth = width
		ln.Position1 = ec.toScreen(geom.Pt{X: g.X1, Y: g.Y1})
		ln.Position2 = ec.toScreen(geom.Pt{X: g.X2, Y: g.Y2})
		return []fyne.CanvasObject{ln}
	case shape.Rect:
		rc := canvas.NewRectangle(fill)
		rc.StrokeColor = stroke
		rc.StrokeWidth = width
		p0 := ec.toScreen(geom.Pt{X: g.X, Y: g.Y})
		p1 := ec.toScreen(geom.Pt{X: g.X + g.W, Y: g.Y + g.H})
		rc.Move(p0)
		rc.Resize(fyne.NewSize(p1.X-p0.X, p1.Y-p0.Y))
		return []fyne.CanvasObject{rc}
	case shape.Circle:
		ci := canvas.NewCircle(fill)
		ci.StrokeColor = stroke
		ci.StrokeWidth = width
		p0 := ec.toScreen(geom.Pt{X: g.CX - g.R, Y: g.CY - g.R})
		p1 := ec.toScreen(geom.Pt{X: g.CX + g.R, Y: g.CY + g.R})
		ci.Move(p0)
		ci.Resize(fyne.NewSize(p1.X-p0.X, p1.Y-p0.Y))
		return []fyne.CanvasObject{ci}
	case *shape.Path:
		var objs []fyne.CanvasObject
		pts := flattenPath(g)
		for i := 1; i < len(pts); i++ {
			ln := canvas.NewLine(stroke)
			ln.StrokeWidth = width
			ln.Position1 = ec.toScreen(pts[i-1])
			ln.Position2 = ec.toScreen(pts[i])
			objs = append(objs, ln)
		}
		return objs
	default:
		panic("ui: render of unsupported geometry")
	}
}

func (r *editorCanvasRenderer) repeatMarkers() []fyne.CanvasObject {
	ec := r.ec
	var objs []fyne.CanvasObject
	for _, sh := range ec.doc.Shapes() {
		m, ok := ec.doc.Repeats.Meta(sh.ID)
		if !ok {
			continue
		}
		for i, p := range m.Points {
			c := colornames.Limegreen
			if i == m.Active {
				c = colornames.Red
			}
			mk := canvas.NewCircle(c)
			sp := ec.toScreen(geom.Pt{X: p.X, Y: p.Y})
			mk.Move(fyne.NewPos(sp.X-4, sp.Y-4))
			mk.Resize(fyne.NewSize(8, 8))
			objs = append(objs, mk)
		}
	}
	return objs
}

func (r *editorCanvasRenderer) handleObjects() []fyne.CanvasObject {
	ec := r.ec
	sel, ok := ec.doc.Selected()
	if !ok {
		return nil
	}
	var objs []fyne.CanvasObject
	for _, h := range shape.Handles(sel) {
		hr := canvas.NewRectangle(colornames.Deepskyblue)
		hr.StrokeColor = color.RGBA{R: 20, G: 20, B: 20, A: 255}
		hr.StrokeWidth = 1
		sp := ec.toScreen(h.Pos)
		hr.Move(fyne.NewPos(sp.X-4, sp.Y-4))
		hr.Resize(fyne.NewSize(8, 8))
		objs = append(objs, hr)
	}
	for _, h := range shape.ControlHandles(sel) {
		hc := canvas.NewCircle(colornames.Orange)
		sp := ec.toScreen(h.Pos)
		hc.Move(fyne.NewPos(sp.X-4, sp.Y-4))
		hc.Resize(fyne.NewSize(8, 8))
		objs = append(objs, hc)
	}
	return objs
}

func rgba(c shape.Color, opacity float64) color.RGBA {
	a := float64(c.A) * opacity
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: uint8(a)}
}

// flattenPath approximates a path as a polyline for rendering and hit tests.
func flattenPath(p *shape.Path) []geom.Pt {
	if !p.Anchored() {
		return nil
	}
	pts := []geom.Pt{p.StartPoint()}
	for _, seg := range p.Segments {
		switch seg.Kind {
		case shape.SegLine:
			pts = append(pts, seg.End)
		case shape.SegCurve:
			sub := geom.FlattenCubic(seg.Start, seg.Control1, seg.Control2, seg.End, 24)
			pts = append(pts, sub[1:]...)
		}
	}
	return pts
}

// distToSegment is the distance from p to segment ab.
func distToSegment(p, a, b geom.Pt) float64 {
	ab := b.Sub(a)
	den := ab.X*ab.X + ab.Y*ab.Y
	if den == 0 {
		return geom.Dist(p, a)
	}
	t := ((p.X-a.X)*ab.X + (p.Y-a.Y)*ab.Y) / den
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return geom.Dist(p, a.Add(ab.Mul(t)))
}
