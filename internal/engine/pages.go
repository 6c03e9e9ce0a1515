package engine

import (
	"fmt"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// pageSelection converts 1-based page numbers into a pdfcpu page
// selection, preserving order.
func pageSelection(pages []int) []string {
	sel := make([]string, 0, len(pages))
	for _, p := range pages {
		sel = append(sel, strconv.Itoa(p))
	}
	return sel
}

// RotatePages rotates the given pages (1-based) by degrees, which must
// be a multiple of 90.
func (d *Document) RotatePages(pages []int, degrees int) error {
	return d.transform(func(in, out string) error {
		return api.RotateFile(in, out, degrees, pageSelection(pages), d.conf)
	})
}

// RemovePages deletes the given pages (1-based) from the document.
func (d *Document) RemovePages(pages []int) error {
	return d.transform(func(in, out string) error {
		return api.RemovePagesFile(in, out, pageSelection(pages), d.conf)
	})
}

// Collect rebuilds the document so its pages appear in exactly the
// given order. Every page number is 1-based and refers to the current
// working copy.
func (d *Document) Collect(order []int) error {
	return d.transform(func(in, out string) error {
		return api.CollectFile(in, out, pageSelection(order), d.conf)
	})
}

// ExtractTo writes a new PDF containing only the given pages (1-based)
// to dst. The handle itself is not modified.
func (d *Document) ExtractTo(pages []int, dst string) error {
	if d.closed {
		return ErrClosed
	}
	if err := api.TrimFile(d.workPath, dst, pageSelection(pages), d.conf); err != nil {
		return fmt.Errorf("failed to extract pages: %w", err)
	}
	return nil
}

// AppendFile appends every page of the PDF at path to the end of the
// document.
func (d *Document) AppendFile(path string) error {
	return d.transform(func(in, out string) error {
		return api.MergeCreateFile([]string{in, path}, out, false, d.conf)
	})
}

// CropPages sets the crop box of the given pages to the rectangle
// [llx lly urx ury] in points.
func (d *Document) CropPages(pages []int, llx, lly, urx, ury float64) error {
	boxExpr := fmt.Sprintf("[%.2f %.2f %.2f %.2f]", llx, lly, urx, ury)
	box, err := model.ParseBox(boxExpr, types.POINTS)
	if err != nil {
		return fmt.Errorf("invalid crop box %s: %w", boxExpr, err)
	}
	return d.transform(func(in, out string) error {
		return api.CropFile(in, out, pageSelection(pages), box, d.conf)
	})
}

// ResizePages scales the given pages to exactly width x height points.
func (d *Document) ResizePages(pages []int, width, height float64) error {
	res, err := pdfcpu.ParseResizeConfig(
		fmt.Sprintf("dim:%.2f %.2f, enforce:true", width, height), types.POINTS)
	if err != nil {
		return fmt.Errorf("invalid resize config: %w", err)
	}
	return d.transform(func(in, out string) error {
		return api.ResizeFile(in, out, pageSelection(pages), res, d.conf)
	})
}

// Optimize rewrites the working copy with pdfcpu's garbage collection
// and stream compaction.
func (d *Document) Optimize() error {
	return d.transform(func(in, out string) error {
		return api.OptimizeFile(in, out, d.conf)
	})
}

// PageCountOf reports the page count of an arbitrary PDF file without
// opening a handle over it.
func PageCountOf(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to count pages: %w", err)
	}
	return n, nil
}
