package editor

import (
	"image"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/OthmaneBlial/pdf-editor-offline/internal/domain/document"
	"github.com/OthmaneBlial/pdf-editor-offline/internal/engine"
)

// ImageProcessor inspects, extracts, inserts, and replaces page images
// and runs document optimization.
type ImageProcessor struct {
	doc *engine.Document
}

// List describes the images referenced by a 0-based page.
func (p *ImageProcessor) List(page int) ([]document.ImageInfo, error) {
	const op = "list_images"
	if err := checkPage(op, p.doc, page); err != nil {
		return nil, err
	}
	infos, err := p.doc.ListImages(page + 1)
	if err != nil {
		return nil, document.WrapEngine(op, err)
	}
	return infos, nil
}

// Extract writes one image of a 0-based page to a scratch file and
// returns its path.
func (p *ImageProcessor) Extract(page, index int) (string, error) {
	const op = "extract_image"
	if err := checkPage(op, p.doc, page); err != nil {
		return "", err
	}
	if index < 0 {
		return "", document.InvalidIndex(op, "image", index, 0)
	}
	paths, err := p.doc.ExtractImages(page + 1)
	if err != nil {
		return "", document.WrapEngine(op, err)
	}
	if index >= len(paths) {
		return "", document.InvalidIndex(op, "image", index, len(paths))
	}
	return paths[index], nil
}

// Insert draws the image file at path into rect on a 0-based page.
// With maintainAspect the image is aspect-fit and centered inside the
// rect instead of stretched.
func (p *ImageProcessor) Insert(page int, rect document.Rect, path string, maintainAspect bool) (document.Rect, error) {
	const op = "insert_image"
	placed, err := p.placement(op, page, rect, path, maintainAspect)
	if err != nil {
		return document.Rect{}, err
	}
	err = p.doc.ApplyOverlay(page+1, func(ov *engine.Overlay) error {
		ov.Image(placed, path)
		return nil
	})
	if err != nil {
		return document.Rect{}, document.WrapEngine(op, err)
	}
	return placed, nil
}

// Replace covers rect with an opaque white fill and draws the
// replacement image into it. Validation happens before the redaction
// so a bad input cannot leave a half-mutated page.
func (p *ImageProcessor) Replace(page int, rect document.Rect, path string, maintainAspect bool) (document.Rect, error) {
	const op = "replace_image"
	placed, err := p.placement(op, page, rect, path, maintainAspect)
	if err != nil {
		return document.Rect{}, err
	}
	err = p.doc.ApplyOverlay(page+1, func(ov *engine.Overlay) error {
		ov.FillRect(rect, document.White)
		ov.Image(placed, path)
		return nil
	})
	if err != nil {
		return document.Rect{}, document.WrapEngine(op, err)
	}
	return placed, nil
}

func (p *ImageProcessor) placement(op string, page int, rect document.Rect, path string, maintainAspect bool) (document.Rect, error) {
	if err := checkPage(op, p.doc, page); err != nil {
		return document.Rect{}, err
	}
	if !rect.Valid() {
		return document.Rect{}, document.Invalidf(op, "rect %.1fx%.1f must have positive area", rect.Width(), rect.Height())
	}
	width, height, err := imageDimensions(path)
	if err != nil {
		return document.Rect{}, document.Invalidf(op, "image file is not readable: %v", err)
	}
	if !maintainAspect {
		return rect, nil
	}
	return aspectFit(rect, width, height), nil
}

func imageDimensions(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

// aspectFit centers the largest rectangle with the image's aspect
// ratio inside target.
func aspectFit(target document.Rect, imgW, imgH int) document.Rect {
	if imgW <= 0 || imgH <= 0 {
		return target
	}
	scaleX := target.Width() / float64(imgW)
	scaleY := target.Height() / float64(imgH)
	scale := scaleX
	if scaleY < scale {
		scale = scaleY
	}
	w := float64(imgW) * scale
	h := float64(imgH) * scale
	llx := target.LLX + (target.Width()-w)/2
	lly := target.LLY + (target.Height()-h)/2
	return document.Rect{LLX: llx, LLY: lly, URX: llx + w, URY: lly + h}
}

// Optimize rewrites the document with garbage collection and stream
// compaction and reports the size change of the working copy.
func (p *ImageProcessor) Optimize() (document.OptimizeReport, error) {
	const op = "optimize_document"
	if p.doc.Closed() {
		return document.OptimizeReport{}, document.Invalidf(op, "document handle is closed")
	}
	before, err := p.doc.Size()
	if err != nil {
		return document.OptimizeReport{}, document.WrapEngine(op, err)
	}
	if err := p.doc.Optimize(); err != nil {
		return document.OptimizeReport{}, document.WrapEngine(op, err)
	}
	after, err := p.doc.Size()
	if err != nil {
		return document.OptimizeReport{}, document.WrapEngine(op, err)
	}
	report := document.OptimizeReport{BytesBefore: before, BytesAfter: after}
	if before > 0 {
		report.ReductionPercent = float64(before-after) / float64(before) * 100
	}
	return report, nil
}
