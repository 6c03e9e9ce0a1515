package editor

import (
	"fmt"
	"math"
	"os"

	"github.com/OthmaneBlial/pdf-editor-offline/internal/domain/document"
	"github.com/OthmaneBlial/pdf-editor-offline/internal/engine"
)

// AnnotationEnhancer creates and edits page annotations. Every
// operation returns normalized descriptors, never raw engine objects.
type AnnotationEnhancer struct {
	doc *engine.Document
}

// List returns descriptors for all annotations on a 0-based page.
func (a *AnnotationEnhancer) List(page int) ([]document.AnnotationDescriptor, error) {
	const op = "list_annotations"
	if err := checkPage(op, a.doc, page); err != nil {
		return nil, err
	}
	descs, err := a.doc.ListAnnotations(page + 1)
	if err != nil {
		return nil, document.WrapEngine(op, err)
	}
	return descs, nil
}

// Info returns the descriptor of one annotation by index.
func (a *AnnotationEnhancer) Info(page, index int) (document.AnnotationDescriptor, error) {
	const op = "annotation_info"
	descs, err := a.List(page)
	if err != nil {
		return document.AnnotationDescriptor{}, err
	}
	if index < 0 || index >= len(descs) {
		return document.AnnotationDescriptor{}, document.InvalidIndex(op, "annotation", index, len(descs))
	}
	return descs[index], nil
}

// Flatten bakes the visible form of every annotation in the document
// into page content and deletes the annotations. Returns how many
// annotations were flattened.
func (a *AnnotationEnhancer) Flatten() (int, error) {
	const op = "flatten_annotations"
	if a.doc.Closed() {
		return 0, document.Invalidf(op, "document handle is closed")
	}
	n, err := a.doc.FlattenAnnotations()
	if err != nil {
		return n, document.WrapEngine(op, err)
	}
	return n, nil
}

// Delete removes the annotation at index on a 0-based page.
func (a *AnnotationEnhancer) Delete(page, index int) error {
	const op = "delete_annotation"
	descs, err := a.List(page)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(descs) {
		return document.InvalidIndex(op, "annotation", index, len(descs))
	}
	return document.WrapEngine(op, a.doc.DeleteAnnotation(page+1, index))
}

// StyleOptions carries the visual properties shared by the add
// operations. Colors are names or hex strings; empty strings take the
// defaults (black stroke, no fill, opacity 1).
type StyleOptions struct {
	Stroke  string  `json:"stroke"`
	Fill    string  `json:"fill"`
	Width   float64 `json:"width"`
	Opacity float64 `json:"opacity"`
}

func (s StyleOptions) resolve(op string) (stroke, fill *document.Color, width, opacity float64, err error) {
	sc, err := parseColor(s.Stroke, document.Black)
	if err != nil {
		return nil, nil, 0, 0, document.Invalidf(op, "%v", err)
	}
	stroke = &sc
	if s.Fill != "" {
		fc, err := parseColor(s.Fill, document.White)
		if err != nil {
			return nil, nil, 0, 0, document.Invalidf(op, "%v", err)
		}
		fill = &fc
	}
	width = s.Width
	if width <= 0 {
		width = 1
	}
	opacity = s.Opacity
	if opacity <= 0 || opacity > 1 {
		opacity = 1
	}
	return stroke, fill, width, opacity, nil
}

func bbox(points []document.Point, margin float64) document.Rect {
	r := document.Rect{
		LLX: math.MaxFloat64, LLY: math.MaxFloat64,
		URX: -math.MaxFloat64, URY: -math.MaxFloat64,
	}
	for _, p := range points {
		r.LLX = math.Min(r.LLX, p.X)
		r.LLY = math.Min(r.LLY, p.Y)
		r.URX = math.Max(r.URX, p.X)
		r.URY = math.Max(r.URY, p.Y)
	}
	r.LLX -= margin
	r.LLY -= margin
	r.URX += margin
	r.URY += margin
	return r
}

func flatten(points []document.Point) []float64 {
	flat := make([]float64, 0, len(points)*2)
	for _, p := range points {
		flat = append(flat, p.X, p.Y)
	}
	return flat
}

// AddPolygon adds a closed polygon annotation from at least three
// vertices.
func (a *AnnotationEnhancer) AddPolygon(page int, points []document.Point, style StyleOptions) (document.AnnotationDescriptor, error) {
	return a.addVertexAnnotation("add_polygon", "Polygon", page, points, 3, style)
}

// AddPolyline adds an open polyline annotation from at least two
// vertices.
func (a *AnnotationEnhancer) AddPolyline(page int, points []document.Point, style StyleOptions) (document.AnnotationDescriptor, error) {
	return a.addVertexAnnotation("add_polyline", "PolyLine", page, points, 2, style)
}

func (a *AnnotationEnhancer) addVertexAnnotation(op, subtype string, page int, points []document.Point, minPoints int, style StyleOptions) (document.AnnotationDescriptor, error) {
	if err := checkPage(op, a.doc, page); err != nil {
		return document.AnnotationDescriptor{}, err
	}
	if len(points) < minPoints {
		return document.AnnotationDescriptor{}, document.Invalidf(op,
			"%d points given, at least %d required", len(points), minPoints)
	}
	stroke, fill, width, opacity, err := style.resolve(op)
	if err != nil {
		return document.AnnotationDescriptor{}, err
	}
	spec := engine.AnnotationSpec{
		Subtype:  subtype,
		Rect:     bbox(points, width),
		Stroke:   stroke,
		Fill:     fill,
		Width:    width,
		Opacity:  opacity,
		Vertices: flatten(points),
	}
	index, err := a.doc.AddAnnotation(page+1, spec)
	if err != nil {
		return document.AnnotationDescriptor{}, document.WrapEngine(op, err)
	}
	return document.AnnotationDescriptor{Index: index, Type: subtype, Rect: spec.Rect, Opacity: opacity}, nil
}

// AddFreehandHighlight builds a highlight annotation along a freehand
// stroke. Each pair of consecutive points becomes a quad offset
// perpendicular to the segment by half the stroke width. Zero-length
// segments between duplicate points are skipped; the perpendicular of
// an empty segment is undefined.
func (a *AnnotationEnhancer) AddFreehandHighlight(page int, points []document.Point, strokeWidth float64, color string, opacity float64) (document.AnnotationDescriptor, error) {
	const op = "add_freehand_highlight"
	if err := checkPage(op, a.doc, page); err != nil {
		return document.AnnotationDescriptor{}, err
	}
	if len(points) < 2 {
		return document.AnnotationDescriptor{}, document.Invalidf(op,
			"%d points given, at least 2 required", len(points))
	}
	if strokeWidth <= 0 {
		strokeWidth = 8
	}
	if opacity <= 0 || opacity > 1 {
		opacity = 0.4
	}
	c, err := parseColor(color, document.Color{R: 1, G: 1, B: 0})
	if err != nil {
		return document.AnnotationDescriptor{}, document.Invalidf(op, "%v", err)
	}

	quads := strokeQuads(points, strokeWidth)
	if len(quads) == 0 {
		return document.AnnotationDescriptor{}, document.Invalidf(op,
			"all %d points coincide, no stroke to highlight", len(points))
	}

	flat := make([]float64, 0, len(quads)*8)
	var corners []document.Point
	for _, q := range quads {
		flat = append(flat,
			q.P1.X, q.P1.Y, q.P2.X, q.P2.Y,
			q.P3.X, q.P3.Y, q.P4.X, q.P4.Y)
		corners = append(corners, q.P1, q.P2, q.P3, q.P4)
	}
	spec := engine.AnnotationSpec{
		Subtype:    "Highlight",
		Rect:       bbox(corners, 0),
		Stroke:     &c,
		Opacity:    opacity,
		QuadPoints: flat,
	}
	index, err := a.doc.AddAnnotation(page+1, spec)
	if err != nil {
		return document.AnnotationDescriptor{}, document.WrapEngine(op, err)
	}
	return document.AnnotationDescriptor{Index: index, Type: "Highlight", Rect: spec.Rect, Opacity: opacity}, nil
}

// strokeQuads converts a polyline into highlight quads, one per
// segment, offset perpendicular to the segment by width/2. Degenerate
// segments are dropped.
func strokeQuads(points []document.Point, width float64) []document.Quad {
	half := width / 2
	var quads []document.Quad
	for i := 0; i < len(points)-1; i++ {
		p1, p2 := points[i], points[i+1]
		dx := p2.X - p1.X
		dy := p2.Y - p1.Y
		length := math.Hypot(dx, dy)
		if length == 0 {
			continue
		}
		// Unit normal of the segment.
		nx := -dy / length * half
		ny := dx / length * half
		quads = append(quads, document.Quad{
			P1: document.Point{X: p1.X + nx, Y: p1.Y + ny},
			P2: document.Point{X: p2.X + nx, Y: p2.Y + ny},
			P3: document.Point{X: p1.X - nx, Y: p1.Y - ny},
			P4: document.Point{X: p2.X - nx, Y: p2.Y - ny},
		})
	}
	return quads
}

// AddStamp places a FreeText annotation with the given text in rect.
func (a *AnnotationEnhancer) AddStamp(page int, rect document.Rect, text string, style StyleOptions) (document.AnnotationDescriptor, error) {
	const op = "add_stamp"
	if err := checkPage(op, a.doc, page); err != nil {
		return document.AnnotationDescriptor{}, err
	}
	if !rect.Valid() {
		return document.AnnotationDescriptor{}, document.Invalidf(op, "rect %.1fx%.1f must have positive area", rect.Width(), rect.Height())
	}
	if text == "" {
		return document.AnnotationDescriptor{}, document.Invalidf(op, "stamp text is empty")
	}
	stroke, fill, width, opacity, err := style.resolve(op)
	if err != nil {
		return document.AnnotationDescriptor{}, err
	}
	spec := engine.AnnotationSpec{
		Subtype:  "FreeText",
		Rect:     rect,
		Contents: text,
		Stroke:   stroke,
		Fill:     fill,
		Width:    width,
		Opacity:  opacity,
		DefaultAppearance: fmt.Sprintf("/Helv 12 Tf %.3f %.3f %.3f rg",
			stroke.R, stroke.G, stroke.B),
	}
	index, err := a.doc.AddAnnotation(page+1, spec)
	if err != nil {
		return document.AnnotationDescriptor{}, document.WrapEngine(op, err)
	}
	return document.AnnotationDescriptor{Index: index, Type: "FreeText", Rect: rect, Contents: text, Opacity: opacity}, nil
}

var noteIcons = map[string]bool{
	"Comment": true, "Key": true, "Note": true, "Help": true,
	"NewParagraph": true, "Paragraph": true, "Insert": true,
}

// AddNote places a sticky-note (Text) annotation at a point.
func (a *AnnotationEnhancer) AddNote(page int, at document.Point, text, icon string) (document.AnnotationDescriptor, error) {
	const op = "add_note"
	if err := checkPage(op, a.doc, page); err != nil {
		return document.AnnotationDescriptor{}, err
	}
	if text == "" {
		return document.AnnotationDescriptor{}, document.Invalidf(op, "note text is empty")
	}
	if icon == "" {
		icon = "Note"
	}
	if !noteIcons[icon] {
		return document.AnnotationDescriptor{}, document.Invalidf(op, "unknown note icon %q", icon)
	}
	rect := document.Rect{LLX: at.X, LLY: at.Y, URX: at.X + 20, URY: at.Y + 20}
	spec := engine.AnnotationSpec{
		Subtype:  "Text",
		Rect:     rect,
		Contents: text,
		Icon:     icon,
	}
	index, err := a.doc.AddAnnotation(page+1, spec)
	if err != nil {
		return document.AnnotationDescriptor{}, document.WrapEngine(op, err)
	}
	return document.AnnotationDescriptor{Index: index, Type: "Text", Rect: rect, Contents: text, Opacity: 1}, nil
}

// AppearancePatch carries optional visual changes for SetAppearance.
type AppearancePatch struct {
	Stroke      *string  `json:"stroke"`
	Fill        *string  `json:"fill"`
	Opacity     *float64 `json:"opacity"`
	BorderWidth *float64 `json:"border_width"`
}

// SetAppearance updates the colors, opacity, and border width of an
// existing annotation.
func (a *AnnotationEnhancer) SetAppearance(page, index int, patch AppearancePatch) error {
	const op = "set_annotation_appearance"
	descs, err := a.List(page)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(descs) {
		return document.InvalidIndex(op, "annotation", index, len(descs))
	}
	var up engine.AppearanceUpdate
	if patch.Stroke != nil {
		c, err := parseColor(*patch.Stroke, document.Black)
		if err != nil {
			return document.Invalidf(op, "%v", err)
		}
		up.Stroke = &c
	}
	if patch.Fill != nil {
		c, err := parseColor(*patch.Fill, document.White)
		if err != nil {
			return document.Invalidf(op, "%v", err)
		}
		up.Fill = &c
	}
	if patch.Opacity != nil {
		if *patch.Opacity <= 0 || *patch.Opacity > 1 {
			return document.Invalidf(op, "opacity %.2f out of range (0, 1]", *patch.Opacity)
		}
		up.Opacity = patch.Opacity
	}
	if patch.BorderWidth != nil {
		if *patch.BorderWidth < 0 {
			return document.Invalidf(op, "border width %.2f must not be negative", *patch.BorderWidth)
		}
		up.BorderWidth = patch.BorderWidth
	}
	return document.WrapEngine(op, a.doc.UpdateAnnotationAppearance(page+1, index, up))
}

// AttachFile embeds the file at path into the document. The underlying
// format stores attachments per document, not per page.
func (a *AnnotationEnhancer) AttachFile(path string) error {
	const op = "attach_file"
	if a.doc.Closed() {
		return document.Invalidf(op, "document handle is closed")
	}
	if _, err := os.Stat(path); err != nil {
		return document.Invalidf(op, "attachment file is not readable: %v", err)
	}
	return document.WrapEngine(op, a.doc.AttachFile(path))
}
