// Package render maps shape descriptors onto plot geometry.
package render

import "voice-shapes/internal/domain"

const (
	canvasSize = 500
	margin     = 20
	padding    = 0.1
)

var (
	rectStyle   = domain.Style{Fill: "orange", Stroke: "red", Opacity: 0.2}
	circleStyle = domain.Style{Fill: "lightseagreen", Stroke: "blue", Opacity: 0.2}
)

// Render builds a scene with one primitive per shape, anchored at the origin.
// It never fails; an empty list yields a scene whose viewport is [0, 0] on
// both axes.
func Render(shapes domain.ShapeList) domain.Scene {
	primitives := make([]domain.Primitive, 0, len(shapes))
	var maxX, maxY float64

	for _, s := range shapes {
		var p domain.Primitive
		switch s.Type {
		case domain.ShapeRectangle:
			p = domain.Primitive{Kind: domain.PrimitiveRect, X1: s.Width, Y1: s.Height, Style: rectStyle}
		case domain.ShapeCircle:
			// Bounding box starts at the origin, so the circle is centered at (r, r).
			p = domain.Primitive{Kind: domain.PrimitiveCircle, X1: 2 * s.Radius, Y1: 2 * s.Radius, Style: circleStyle}
		default:
			continue
		}
		primitives = append(primitives, p)
		maxX = max(maxX, p.X1)
		maxY = max(maxY, p.Y1)
	}

	return domain.Scene{
		Primitives: primitives,
		Viewport: domain.Viewport{
			X:          padded(maxX),
			Y:          padded(maxY),
			ScaleRatio: 1,
		},
		Layout: DefaultLayout(),
	}
}

func DefaultLayout() domain.Layout {
	return domain.Layout{
		Width:      canvasSize,
		Height:     canvasSize,
		Margin:     margin,
		Background: "lightgray",
		ShowLegend: false,
		ShowGrid:   true,
	}
}

func padded(extent float64) domain.Range {
	return domain.Range{Min: -extent * padding, Max: extent * (1 + padding)}
}
