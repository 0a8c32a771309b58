package domain

type ShapeType string

const (
	ShapeRectangle ShapeType = "rectangle"
	ShapeCircle    ShapeType = "circle"
)

// Shape is a rectangle (Width, Height) or a circle (Radius), selected by Type.
// Fields that do not belong to Type are zero.
type Shape struct {
	Type   ShapeType `json:"type"`
	Width  float64   `json:"width,omitempty"`
	Height float64   `json:"height,omitempty"`
	Radius float64   `json:"radius,omitempty"`
}

func Rectangle(width, height float64) Shape {
	return Shape{Type: ShapeRectangle, Width: width, Height: height}
}

func Circle(radius float64) Shape {
	return Shape{Type: ShapeCircle, Radius: radius}
}

// ShapeList keeps the model's output order, which is also the draw order.
type ShapeList []Shape

// Extraction is the language model reply as received plus the shapes parsed from it.
type Extraction struct {
	Raw    string    `json:"raw"`
	Shapes ShapeList `json:"shapes"`
}
