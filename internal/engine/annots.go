package engine

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/OthmaneBlial/pdf-editor-offline/internal/domain/document"
)

const annotFlagPrint = 4

// AnnotationSpec carries the engine-level parameters for a new
// annotation. Editors construct specs; the engine turns them into
// annotation dictionaries.
type AnnotationSpec struct {
	Subtype  string
	Rect     document.Rect
	Contents string
	Stroke   *document.Color
	Fill     *document.Color
	Opacity  float64
	Width    float64
	// Vertices for Polygon/PolyLine annotations, flat x,y pairs.
	Vertices []float64
	// QuadPoints for Highlight annotations, 8 values per quad.
	QuadPoints []float64
	// Icon for Text annotations.
	Icon string
	// DefaultAppearance for FreeText annotations.
	DefaultAppearance string
}

func colorArray(c document.Color) types.Array {
	return types.Array{types.Float(c.R), types.Float(c.G), types.Float(c.B)}
}

func floatArray(vals []float64) types.Array {
	arr := make(types.Array, 0, len(vals))
	for _, v := range vals {
		arr = append(arr, types.Float(v))
	}
	return arr
}

func (s AnnotationSpec) dict() types.Dict {
	rect := types.NewRectangle(s.Rect.LLX, s.Rect.LLY, s.Rect.URX, s.Rect.URY)
	d := types.Dict{
		"Type":    types.Name("Annot"),
		"Subtype": types.Name(s.Subtype),
		"Rect":    rect.Array(),
		"F":       types.Integer(annotFlagPrint),
	}
	if s.Contents != "" {
		d["Contents"] = types.StringLiteral(s.Contents)
	}
	if s.Stroke != nil {
		d["C"] = colorArray(*s.Stroke)
	}
	if s.Fill != nil {
		d["IC"] = colorArray(*s.Fill)
	}
	if s.Opacity > 0 && s.Opacity < 1 {
		d["CA"] = types.Float(s.Opacity)
	}
	if s.Width > 0 {
		d["BS"] = types.Dict{"W": types.Float(s.Width)}
	}
	if len(s.Vertices) > 0 {
		d["Vertices"] = floatArray(s.Vertices)
	}
	if len(s.QuadPoints) > 0 {
		d["QuadPoints"] = floatArray(s.QuadPoints)
	}
	if s.Icon != "" {
		d["Name"] = types.Name(s.Icon)
	}
	if s.DefaultAppearance != "" {
		d["DA"] = types.StringLiteral(s.DefaultAppearance)
	}
	return d
}

// AddAnnotation appends an annotation to a page (1-based) and returns
// its index within the page's annotation array.
func (d *Document) AddAnnotation(pageNr int, spec AnnotationSpec) (int, error) {
	index := -1
	err := d.withContext(func(ctx *model.Context) error {
		var err error
		index, err = d.appendAnnot(ctx, pageNr, spec.dict())
		return err
	})
	return index, err
}

// annotationsOf returns the page's annotation array as a direct array,
// dereferencing an indirect Annots entry if present.
func (d *Document) annotationsOf(ctx *model.Context, pd types.Dict) (types.Array, error) {
	obj, found := pd.Find("Annots")
	if !found {
		return types.Array{}, nil
	}
	resolved, err := ctx.Dereference(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve annotations: %w", err)
	}
	arr, ok := resolved.(types.Array)
	if !ok {
		return types.Array{}, nil
	}
	return arr, nil
}

// ListAnnotations returns normalized descriptors for every annotation
// on a page (1-based).
func (d *Document) ListAnnotations(pageNr int) ([]document.AnnotationDescriptor, error) {
	if d.closed {
		return nil, ErrClosed
	}
	pd, _, _, err := d.ctx.PageDict(pageNr, false)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve page %d: %w", pageNr, err)
	}
	annots, err := d.annotationsOf(d.ctx, pd)
	if err != nil {
		return nil, err
	}

	descs := make([]document.AnnotationDescriptor, 0, len(annots))
	for i, entry := range annots {
		ad, err := d.annotDict(entry)
		if err != nil {
			continue
		}
		descs = append(descs, describeAnnotation(d.ctx, i, ad))
	}
	return descs, nil
}

func (d *Document) annotDict(entry types.Object) (types.Dict, error) {
	resolved, err := d.ctx.Dereference(entry)
	if err != nil {
		return nil, err
	}
	ad, ok := resolved.(types.Dict)
	if !ok {
		return nil, fmt.Errorf("annotation entry is not a dictionary")
	}
	return ad, nil
}

func describeAnnotation(ctx *model.Context, index int, ad types.Dict) document.AnnotationDescriptor {
	desc := document.AnnotationDescriptor{Index: index, Type: "Unknown", Opacity: 1}
	if name := ad.NameEntry("Subtype"); name != nil {
		desc.Type = *name
	}
	if rect, ok := rectEntry(ctx, ad, "Rect"); ok {
		desc.Rect = rect
	}
	desc.Contents = stringEntry(ctx, ad, "Contents")
	if ca, ok := floatEntry(ctx, ad, "CA"); ok {
		desc.Opacity = ca
	}
	return desc
}

// DeleteAnnotation removes the annotation at index on a page (1-based).
func (d *Document) DeleteAnnotation(pageNr, index int) error {
	return d.withContext(func(ctx *model.Context) error {
		pd, _, _, err := ctx.PageDict(pageNr, false)
		if err != nil {
			return fmt.Errorf("failed to resolve page %d: %w", pageNr, err)
		}
		annots, err := d.annotationsOf(ctx, pd)
		if err != nil {
			return err
		}
		if index < 0 || index >= len(annots) {
			return fmt.Errorf("annotation %d out of range", index)
		}
		pd["Annots"] = append(annots[:index:index], annots[index+1:]...)
		return nil
	})
}

// AppearanceUpdate carries changes to an existing annotation's visual
// properties. Nil fields leave the property untouched.
type AppearanceUpdate struct {
	Stroke      *document.Color
	Fill        *document.Color
	Opacity     *float64
	BorderWidth *float64
}

// UpdateAnnotationAppearance mutates the appearance of the annotation
// at index on a page (1-based).
func (d *Document) UpdateAnnotationAppearance(pageNr, index int, up AppearanceUpdate) error {
	return d.withContext(func(ctx *model.Context) error {
		pd, _, _, err := ctx.PageDict(pageNr, false)
		if err != nil {
			return fmt.Errorf("failed to resolve page %d: %w", pageNr, err)
		}
		annots, err := d.annotationsOf(ctx, pd)
		if err != nil {
			return err
		}
		if index < 0 || index >= len(annots) {
			return fmt.Errorf("annotation %d out of range", index)
		}
		ad, err := d.annotDict(annots[index])
		if err != nil {
			return fmt.Errorf("annotation %d: %w", index, err)
		}
		if up.Stroke != nil {
			ad["C"] = colorArray(*up.Stroke)
		}
		if up.Fill != nil {
			ad["IC"] = colorArray(*up.Fill)
		}
		if up.Opacity != nil {
			ad["CA"] = types.Float(*up.Opacity)
		}
		if up.BorderWidth != nil {
			ad["BS"] = types.Dict{"W": types.Float(*up.BorderWidth)}
		}
		return nil
	})
}

// annotShape is the drawable form of an existing annotation, read back
// from its dictionary for flattening.
type annotShape struct {
	subtype  string
	rect     document.Rect
	contents string
	stroke   *document.Color
	fill     *document.Color
	opacity  float64
	width    float64
	vertices []document.Point
	quads    []document.Rect
}

func (d *Document) annotShapes(pageNr int) ([]annotShape, error) {
	pd, _, _, err := d.ctx.PageDict(pageNr, false)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve page %d: %w", pageNr, err)
	}
	annots, err := d.annotationsOf(d.ctx, pd)
	if err != nil {
		return nil, err
	}
	shapes := make([]annotShape, 0, len(annots))
	for _, entry := range annots {
		ad, err := d.annotDict(entry)
		if err != nil {
			continue
		}
		sh := annotShape{opacity: 1, width: 1}
		if name := ad.NameEntry("Subtype"); name != nil {
			sh.subtype = *name
		}
		if rect, ok := rectEntry(d.ctx, ad, "Rect"); ok {
			sh.rect = rect
		}
		sh.contents = stringEntry(d.ctx, ad, "Contents")
		sh.stroke = colorEntry(d.ctx, ad, "C")
		sh.fill = colorEntry(d.ctx, ad, "IC")
		if ca, ok := floatEntry(d.ctx, ad, "CA"); ok {
			sh.opacity = ca
		}
		if bs, found := ad.Find("BS"); found {
			if resolved, err := d.ctx.Dereference(bs); err == nil {
				if bd, ok := resolved.(types.Dict); ok {
					if w, ok := floatEntry(d.ctx, bd, "W"); ok {
						sh.width = w
					}
				}
			}
		}
		if flat := floatSliceEntry(d.ctx, ad, "Vertices"); len(flat) >= 4 {
			for i := 0; i+1 < len(flat); i += 2 {
				sh.vertices = append(sh.vertices, document.Point{X: flat[i], Y: flat[i+1]})
			}
		}
		if flat := floatSliceEntry(d.ctx, ad, "QuadPoints"); len(flat) >= 8 {
			for i := 0; i+7 < len(flat); i += 8 {
				sh.quads = append(sh.quads, quadBounds(flat[i:i+8]))
			}
		}
		shapes = append(shapes, sh)
	}
	return shapes, nil
}

func quadBounds(q []float64) document.Rect {
	r := document.Rect{LLX: q[0], LLY: q[1], URX: q[0], URY: q[1]}
	for i := 2; i+1 < len(q); i += 2 {
		if q[i] < r.LLX {
			r.LLX = q[i]
		}
		if q[i] > r.URX {
			r.URX = q[i]
		}
		if q[i+1] < r.LLY {
			r.LLY = q[i+1]
		}
		if q[i+1] > r.URY {
			r.URY = q[i+1]
		}
	}
	return r
}

func drawAnnotShape(ov *Overlay, sh annotShape) {
	stroke := document.Black
	if sh.stroke != nil {
		stroke = *sh.stroke
	}
	alpha := sh.opacity
	if alpha <= 0 || alpha > 1 {
		alpha = 1
	}
	// A highlight without an explicit opacity would occlude the text
	// underneath once baked into content, so it gets a translucent
	// default.
	if sh.subtype == "Highlight" && alpha == 1 {
		alpha = 0.4
	}
	if alpha < 1 {
		ov.SetAlpha(alpha)
		defer ov.SetAlpha(1)
	}
	switch sh.subtype {
	case "Polygon":
		ov.Polygon(sh.vertices, sh.stroke, sh.fill, sh.width)
	case "PolyLine", "Ink":
		ov.Polyline(sh.vertices, stroke, sh.width)
	case "Highlight":
		if len(sh.quads) == 0 {
			ov.FillRect(sh.rect, stroke)
			return
		}
		for _, q := range sh.quads {
			ov.FillRect(q, stroke)
		}
	case "FreeText":
		if sh.fill != nil {
			ov.FillRect(sh.rect, *sh.fill)
		}
		ov.StrokeRect(sh.rect, stroke, sh.width)
		if sh.contents != "" {
			size := 12.0
			ov.Text(sh.rect.LLX+4, sh.rect.URY-size, "Helvetica", size, stroke, sh.contents)
		}
	case "Square":
		if sh.fill != nil {
			ov.FillRect(sh.rect, *sh.fill)
		}
		ov.StrokeRect(sh.rect, stroke, sh.width)
	default:
		// Text notes and unrecognized subtypes keep only their
		// footprint.
		ov.StrokeRect(sh.rect, stroke, sh.width)
	}
}

// FlattenAnnotations bakes the visible form of every annotation into
// page content and removes the annotation dictionaries. Returns the
// number of annotations flattened.
func (d *Document) FlattenAnnotations() (int, error) {
	if d.closed {
		return 0, ErrClosed
	}
	total := 0
	for pageNr := 1; pageNr <= d.pageCount; pageNr++ {
		shapes, err := d.annotShapes(pageNr)
		if err != nil {
			return total, err
		}
		if len(shapes) == 0 {
			continue
		}
		err = d.ApplyOverlay(pageNr, func(ov *Overlay) error {
			for _, sh := range shapes {
				drawAnnotShape(ov, sh)
			}
			return nil
		})
		if err != nil {
			return total, err
		}
		err = d.withContext(func(ctx *model.Context) error {
			pd, _, _, err := ctx.PageDict(pageNr, false)
			if err != nil {
				return fmt.Errorf("failed to resolve page %d: %w", pageNr, err)
			}
			delete(pd, "Annots")
			return nil
		})
		if err != nil {
			return total, err
		}
		total += len(shapes)
	}
	return total, nil
}

// AttachFile embeds a file into the document. Attachments are
// document-level in the underlying format, not bound to a page.
func (d *Document) AttachFile(path string) error {
	return d.transform(func(in, out string) error {
		return api.AddAttachmentsFile(in, out, []string{path}, false, d.conf)
	})
}

func floatEntry(ctx *model.Context, dict types.Dict, key string) (float64, bool) {
	obj, found := dict.Find(key)
	if !found {
		return 0, false
	}
	return floatFromObj(ctx, obj)
}

func floatFromObj(ctx *model.Context, obj types.Object) (float64, bool) {
	resolved, err := ctx.Dereference(obj)
	if err != nil {
		return 0, false
	}
	switch v := resolved.(type) {
	case types.Float:
		return v.Value(), true
	case types.Integer:
		return float64(v.Value()), true
	}
	return 0, false
}

func stringEntry(ctx *model.Context, dict types.Dict, key string) string {
	obj, found := dict.Find(key)
	if !found {
		return ""
	}
	resolved, err := ctx.Dereference(obj)
	if err != nil {
		return ""
	}
	switch v := resolved.(type) {
	case types.StringLiteral:
		return v.Value()
	case types.HexLiteral:
		return v.Value()
	}
	return ""
}

func colorEntry(ctx *model.Context, dict types.Dict, key string) *document.Color {
	vals := floatSliceEntry(ctx, dict, key)
	if len(vals) != 3 {
		return nil
	}
	return &document.Color{R: vals[0], G: vals[1], B: vals[2]}
}

func floatSliceEntry(ctx *model.Context, dict types.Dict, key string) []float64 {
	obj, found := dict.Find(key)
	if !found {
		return nil
	}
	resolved, err := ctx.Dereference(obj)
	if err != nil {
		return nil
	}
	arr, ok := resolved.(types.Array)
	if !ok {
		return nil
	}
	vals := make([]float64, 0, len(arr))
	for _, o := range arr {
		v, ok := floatFromObj(ctx, o)
		if !ok {
			return nil
		}
		vals = append(vals, v)
	}
	return vals
}

func rectEntry(ctx *model.Context, dict types.Dict, key string) (document.Rect, bool) {
	obj, found := dict.Find(key)
	if !found {
		return document.Rect{}, false
	}
	resolved, err := ctx.Dereference(obj)
	if err != nil {
		return document.Rect{}, false
	}
	arr, ok := resolved.(types.Array)
	if !ok || len(arr) != 4 {
		return document.Rect{}, false
	}
	vals := make([]float64, 4)
	for i, o := range arr {
		v, ok := floatFromObj(ctx, o)
		if !ok {
			return document.Rect{}, false
		}
		vals[i] = v
	}
	r := document.Rect{LLX: vals[0], LLY: vals[1], URX: vals[2], URY: vals[3]}
	if r.LLX > r.URX {
		r.LLX, r.URX = r.URX, r.LLX
	}
	if r.LLY > r.URY {
		r.LLY, r.URY = r.URY, r.LLY
	}
	return r, true
}
