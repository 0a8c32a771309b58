// Package svg draws rendered scenes as standalone SVG documents.
package svg

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"

	svgo "github.com/ajstarks/svgo"

	"voice-shapes/internal/domain"
)

const (
	gridStyle  = "stroke:white;stroke-width:1"
	axisStyle  = "stroke:#444;stroke-width:1"
	labelStyle = "font-family:sans-serif;font-size:9px;fill:#444"
	plotClipID = "plot-area"
	targetTick = 6
)

// Encode writes scene to w. The viewport is widened to keep one data unit the
// same length on both axes, and a zero-extent axis is drawn as a unit span
// around its midpoint.
func Encode(w io.Writer, scene domain.Scene) error {
	layout := scene.Layout
	plotW, plotH := layout.PlotSize()
	if plotW <= 0 || plotH <= 0 {
		return fmt.Errorf("canvas %dx%d too small for margin %d", layout.Width, layout.Height, layout.Margin)
	}

	vp := nonDegenerate(scene.Viewport).Locked(plotW, plotH)
	m := mapper{
		vp:     vp,
		left:   float64(layout.Margin),
		top:    float64(layout.Margin),
		width:  plotW,
		height: plotH,
	}

	canvas := svgo.New(w)
	canvas.Start(layout.Width, layout.Height)
	canvas.Rect(0, 0, layout.Width, layout.Height, "fill:white")

	canvas.Def()
	canvas.ClipPath(`id="` + plotClipID + `"`)
	canvas.Rect(layout.Margin, layout.Margin, int(plotW), int(plotH))
	canvas.ClipEnd()
	canvas.DefEnd()

	canvas.Rect(layout.Margin, layout.Margin, int(plotW), int(plotH), "fill:"+layout.Background)

	if layout.ShowGrid {
		drawGrid(canvas, m)
	}

	canvas.Group(`clip-path="url(#` + plotClipID + `)"`)
	for _, p := range scene.Primitives {
		drawPrimitive(canvas, m, p)
	}
	canvas.Gend()

	canvas.End()
	return nil
}

// String renders scene into an SVG document string.
func String(scene domain.Scene) (string, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, scene); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func drawPrimitive(canvas *svgo.SVG, m mapper, p domain.Primitive) {
	x0, y0 := m.point(p.X0, p.Y0)
	x1, y1 := m.point(p.X1, p.Y1)
	left, right := min(x0, x1), max(x0, x1)
	top, bottom := min(y0, y1), max(y0, y1)

	style := fmt.Sprintf("fill:%s;stroke:%s;stroke-width:2;opacity:%s",
		p.Style.Fill, p.Style.Stroke, strconv.FormatFloat(p.Style.Opacity, 'f', -1, 64))

	switch p.Kind {
	case domain.PrimitiveRect:
		canvas.Rect(round(left), round(top), round(right-left), round(bottom-top), style)
	case domain.PrimitiveCircle:
		cx, cy := (left+right)/2, (top+bottom)/2
		canvas.Ellipse(round(cx), round(cy), round((right-left)/2), round((bottom-top)/2), style)
	}
}

func drawGrid(canvas *svgo.SVG, m mapper) {
	for _, x := range ticks(m.vp.X) {
		px, _ := m.point(x, 0)
		style := gridStyle
		if x == 0 {
			style = axisStyle
		}
		canvas.Line(round(px), round(m.top), round(px), round(m.top+m.height), style)
		canvas.Text(round(px), round(m.top+m.height+12), formatTick(x), labelStyle+";text-anchor:middle")
	}
	for _, y := range ticks(m.vp.Y) {
		_, py := m.point(0, y)
		style := gridStyle
		if y == 0 {
			style = axisStyle
		}
		canvas.Line(round(m.left), round(py), round(m.left+m.width), round(py), style)
		canvas.Text(round(m.left-3), round(py+3), formatTick(y), labelStyle+";text-anchor:end")
	}
}

type mapper struct {
	vp     domain.Viewport
	left   float64
	top    float64
	width  float64
	height float64
}

// point converts data coordinates to canvas pixels; the y axis points up.
func (m mapper) point(x, y float64) (float64, float64) {
	px := m.left + (x-m.vp.X.Min)/m.vp.X.Span()*m.width
	py := m.top + (m.vp.Y.Max-y)/m.vp.Y.Span()*m.height
	return px, py
}

func nonDegenerate(vp domain.Viewport) domain.Viewport {
	vp.X = unitIfEmpty(vp.X)
	vp.Y = unitIfEmpty(vp.Y)
	return vp
}

func unitIfEmpty(r domain.Range) domain.Range {
	if r.Span() > 0 {
		return r
	}
	mid := r.Mid()
	return domain.Range{Min: mid - 0.5, Max: mid + 0.5}
}

// ticks returns multiples of a 1-2-5 step that fall inside r.
func ticks(r domain.Range) []float64 {
	step := niceStep(r.Span() / targetTick)
	if step <= 0 {
		return nil
	}
	var out []float64
	for v := math.Ceil(r.Min/step) * step; v <= r.Max; v += step {
		t := math.Round(v/step) * step
		if t == 0 {
			t = 0 // drop the sign of -0
		}
		out = append(out, t)
	}
	return out
}

func niceStep(raw float64) float64 {
	if raw <= 0 || math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 0
	}
	exp := math.Pow(10, math.Floor(math.Log10(raw)))
	switch f := raw / exp; {
	case f <= 1:
		return exp
	case f <= 2:
		return 2 * exp
	case f <= 5:
		return 5 * exp
	default:
		return 10 * exp
	}
}

func formatTick(v float64) string {
	return strconv.FormatFloat(v, 'g', 4, 64)
}

func round(v float64) int {
	return int(math.Round(v))
}
