package engine

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/phpdave11/gofpdf"

	"github.com/OthmaneBlial/pdf-editor-offline/internal/domain/document"
)

// Overlay builds a single-page PDF sized to a target page. Content is
// drawn in PDF user space (origin bottom-left); the builder converts to
// the top-left origin its backend uses. The finished overlay is stamped
// onto the target page at full size so coordinates map one to one.
type Overlay struct {
	pdf    *gofpdf.Fpdf
	height float64
}

// NewOverlay creates an overlay page of width x height points.
func NewOverlay(width, height float64) *Overlay {
	pdf := gofpdf.New("P", "pt", "", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.AddPageFormat("P", gofpdf.SizeType{Wd: width, Ht: height})
	return &Overlay{pdf: pdf, height: height}
}

func (o *Overlay) flipY(y float64) float64 { return o.height - y }

func toRGB(c document.Color) (int, int, int) {
	return int(c.R * 255), int(c.G * 255), int(c.B * 255)
}

// FillRect draws an opaque filled rectangle. Used for redaction.
func (o *Overlay) FillRect(r document.Rect, c document.Color) {
	o.pdf.SetFillColor(toRGB(c))
	o.pdf.Rect(r.LLX, o.flipY(r.URY), r.Width(), r.Height(), "F")
}

// StrokeRect draws a rectangle outline.
func (o *Overlay) StrokeRect(r document.Rect, c document.Color, lineWidth float64) {
	o.pdf.SetDrawColor(toRGB(c))
	o.pdf.SetLineWidth(lineWidth)
	o.pdf.Rect(r.LLX, o.flipY(r.URY), r.Width(), r.Height(), "D")
}

// Polygon draws a closed polygon through the given points. A nil
// stroke or fill skips that paint.
func (o *Overlay) Polygon(pts []document.Point, stroke, fill *document.Color, lineWidth float64) {
	if len(pts) < 3 {
		return
	}
	style := ""
	if stroke != nil {
		o.pdf.SetDrawColor(toRGB(*stroke))
		style += "D"
	}
	if fill != nil {
		o.pdf.SetFillColor(toRGB(*fill))
		style += "F"
	}
	if style == "" {
		return
	}
	if lineWidth > 0 {
		o.pdf.SetLineWidth(lineWidth)
	}
	gp := make([]gofpdf.PointType, 0, len(pts))
	for _, p := range pts {
		gp = append(gp, gofpdf.PointType{X: p.X, Y: o.flipY(p.Y)})
	}
	o.pdf.Polygon(gp, style)
}

// Polyline draws an open stroked path through the given points.
func (o *Overlay) Polyline(pts []document.Point, c document.Color, lineWidth float64) {
	if len(pts) < 2 {
		return
	}
	o.pdf.SetDrawColor(toRGB(c))
	if lineWidth > 0 {
		o.pdf.SetLineWidth(lineWidth)
	}
	o.pdf.MoveTo(pts[0].X, o.flipY(pts[0].Y))
	for _, p := range pts[1:] {
		o.pdf.LineTo(p.X, o.flipY(p.Y))
	}
	o.pdf.DrawPath("D")
}

// Text draws a string with its baseline at (x, y). font must be one of
// the builtin font names.
func (o *Overlay) Text(x, y float64, font string, size float64, c document.Color, s string) {
	family, style := CoreFont(font)
	o.pdf.SetFont(family, style, size)
	o.pdf.SetTextColor(toRGB(c))
	o.pdf.Text(x, o.flipY(y), s)
}

// TextWidth measures a string in the given builtin font and size.
func (o *Overlay) TextWidth(font string, size float64, s string) float64 {
	family, style := CoreFont(font)
	o.pdf.SetFont(family, style, size)
	return o.pdf.GetStringWidth(s)
}

// Image places the image file at path into the given rectangle,
// stretched to fill it.
func (o *Overlay) Image(r document.Rect, path string) {
	opts := gofpdf.ImageOptions{ReadDpi: true}
	o.pdf.ImageOptions(path, r.LLX, o.flipY(r.URY), r.Width(), r.Height(), false, opts, 0, "")
}

// SetAlpha sets the blend alpha for subsequent drawing, in [0, 1].
func (o *Overlay) SetAlpha(alpha float64) {
	o.pdf.SetAlpha(alpha, "Normal")
}

// WriteTo renders the overlay to a PDF file at path.
func (o *Overlay) WriteTo(path string) error {
	if err := o.pdf.Error(); err != nil {
		return fmt.Errorf("overlay build failed: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := o.pdf.Output(f); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("failed to write overlay: %w", err)
	}
	return nil
}

// ApplyOverlay builds an overlay sized to the given page (1-based),
// lets build draw on it, and stamps it onto that page at full size.
func (d *Document) ApplyOverlay(pageNr int, build func(*Overlay) error) error {
	if d.closed {
		return ErrClosed
	}
	w, h, err := d.PageDim(pageNr)
	if err != nil {
		return err
	}
	ov := NewOverlay(w, h)
	if err := build(ov); err != nil {
		return err
	}

	scratch, err := d.ScratchDir()
	if err != nil {
		return err
	}
	path := filepath.Join(scratch, "overlay-"+uuid.NewString()+".pdf")
	if err := ov.WriteTo(path); err != nil {
		return err
	}
	defer os.Remove(path)

	return d.StampPDF([]int{pageNr}, path, "pos:full, scale:1 abs, rot:0, op:1")
}
