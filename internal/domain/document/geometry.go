// Package document defines the shared vocabulary of the editing core:
// the error taxonomy, page geometry, and the normalized descriptors the
// feature editors return instead of raw engine objects.
//
// All coordinates are PDF user-space points with the origin at the
// bottom-left corner of the page.
package document

// Point is a position on a page in PDF points.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned rectangle in PDF points. LLX/LLY is the
// lower-left corner, URX/URY the upper-right.
type Rect struct {
	LLX float64 `json:"llx"`
	LLY float64 `json:"lly"`
	URX float64 `json:"urx"`
	URY float64 `json:"ury"`
}

// Width returns the rectangle width.
func (r Rect) Width() float64 { return r.URX - r.LLX }

// Height returns the rectangle height.
func (r Rect) Height() float64 { return r.URY - r.LLY }

// Valid reports whether the rectangle has positive area.
func (r Rect) Valid() bool { return r.Width() > 0 && r.Height() > 0 }

// Quad is a quadrilateral given as four corner points. Highlight
// annotations are built from sequences of quads.
type Quad struct {
	P1 Point `json:"p1"`
	P2 Point `json:"p2"`
	P3 Point `json:"p3"`
	P4 Point `json:"p4"`
}

// Color is an RGB color with components in [0, 1].
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

var (
	// Black is the default stroke and text color.
	Black = Color{0, 0, 0}
	// White is the redaction fill color.
	White = Color{1, 1, 1}
)
