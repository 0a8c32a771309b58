package domain

type PrimitiveKind string

const (
	PrimitiveRect   PrimitiveKind = "rect"
	PrimitiveCircle PrimitiveKind = "circle"
)

type Style struct {
	Fill    string  `json:"fill"`
	Stroke  string  `json:"stroke"`
	Opacity float64 `json:"opacity"`
}

// Primitive is an axis-aligned shape given by two opposite corners of its
// bounding box. Circles are inscribed in that box.
type Primitive struct {
	Kind  PrimitiveKind `json:"kind"`
	X0    float64       `json:"x0"`
	Y0    float64       `json:"y0"`
	X1    float64       `json:"x1"`
	Y1    float64       `json:"y1"`
	Style Style         `json:"style"`
}

type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (r Range) Span() float64 {
	return r.Max - r.Min
}

func (r Range) Mid() float64 {
	return (r.Min + r.Max) / 2
}

// Viewport is the data range shown on screen. ScaleRatio fixes y units per
// x unit; the literal ranges may need widening to honor it, see Locked.
type Viewport struct {
	X          Range   `json:"x"`
	Y          Range   `json:"y"`
	ScaleRatio float64 `json:"scale_ratio"`
}

// Locked returns the viewport widened so one data unit covers the same
// number of pixels on both axes of a plotW x plotH area. The axis that would
// otherwise be stretched grows around its midpoint.
func (v Viewport) Locked(plotW, plotH float64) Viewport {
	ratio := v.ScaleRatio
	if ratio <= 0 {
		ratio = 1
	}
	if plotW <= 0 || plotH <= 0 {
		return v
	}

	perPixelX := v.X.Span() / plotW
	perPixelY := v.Y.Span() / (plotH * ratio)
	perPixel := max(perPixelX, perPixelY)

	out := v
	out.X = widen(v.X, perPixel*plotW)
	out.Y = widen(v.Y, perPixel*plotH*ratio)
	return out
}

func widen(r Range, span float64) Range {
	if span <= r.Span() {
		return r
	}
	mid := r.Mid()
	return Range{Min: mid - span/2, Max: mid + span/2}
}

type Layout struct {
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Margin     int    `json:"margin"`
	Background string `json:"background"`
	ShowLegend bool   `json:"show_legend"`
	ShowGrid   bool   `json:"show_grid"`
}

// PlotSize is the drawable area inside the margins.
func (l Layout) PlotSize() (float64, float64) {
	return float64(l.Width - 2*l.Margin), float64(l.Height - 2*l.Margin)
}

type Scene struct {
	Primitives []Primitive `json:"primitives"`
	Viewport   Viewport    `json:"viewport"`
	Layout     Layout      `json:"layout"`
}
