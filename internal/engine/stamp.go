package engine

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// StampText stamps text onto the given pages (1-based). desc is a
// pdfcpu watermark description, e.g. "points:10, pos:bc, off:0 20,
// rot:0, op:1".
func (d *Document) StampText(pages []int, text, desc string) error {
	wm, err := pdfcpu.ParseTextWatermarkDetails(text, desc, true, types.POINTS)
	if err != nil {
		return fmt.Errorf("invalid text stamp %q: %w", desc, err)
	}
	return d.transform(func(in, out string) error {
		return api.AddWatermarksFile(in, out, pageSelection(pages), wm, d.conf)
	})
}

// StampImage stamps the image file at path onto the given pages.
func (d *Document) StampImage(pages []int, path, desc string) error {
	wm, err := pdfcpu.ParseImageWatermarkDetails(path, desc, true, types.POINTS)
	if err != nil {
		return fmt.Errorf("invalid image stamp %q: %w", desc, err)
	}
	return d.transform(func(in, out string) error {
		return api.AddWatermarksFile(in, out, pageSelection(pages), wm, d.conf)
	})
}

// StampPDF stamps page 1 of the PDF at path onto the given pages.
// Overlay pages built to the exact target page size are stamped with
// "pos:full, scale:1 abs, rot:0" so their coordinates map one to one.
func (d *Document) StampPDF(pages []int, path, desc string) error {
	wm, err := pdfcpu.ParsePDFWatermarkDetails(path, desc, true, types.POINTS)
	if err != nil {
		return fmt.Errorf("invalid pdf stamp %q: %w", desc, err)
	}
	return d.transform(func(in, out string) error {
		return api.AddWatermarksFile(in, out, pageSelection(pages), wm, d.conf)
	})
}
