package engine

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/gen2brain/go-fitz"
)

const baseRenderDPI = 72

// RenderPagePNG rasterizes a page (1-based) at the given zoom factor
// and returns PNG bytes. Zoom 1.0 renders at 72 DPI.
func (d *Document) RenderPagePNG(pageNr int, zoom float64) ([]byte, error) {
	if d.closed {
		return nil, ErrClosed
	}
	if zoom <= 0 {
		zoom = 1
	}
	doc, err := fitz.New(d.workPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open document for rendering: %w", err)
	}
	defer doc.Close()

	if pageNr < 1 || pageNr > doc.NumPage() {
		return nil, fmt.Errorf("page %d out of range", pageNr)
	}
	img, err := doc.ImageDPI(pageNr-1, baseRenderDPI*zoom)
	if err != nil {
		return nil, fmt.Errorf("failed to render page %d: %w", pageNr, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}
	return buf.Bytes(), nil
}
