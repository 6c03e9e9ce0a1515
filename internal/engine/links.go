package engine

import (
	"fmt"
	"math"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/OthmaneBlial/pdf-editor-offline/internal/domain/document"
)

// ListLinks returns normalized descriptors for the link annotations on
// a page (1-based). The index refers to the page's full annotation
// array, so it can be used with DeleteAnnotation.
func (d *Document) ListLinks(pageNr int) ([]document.LinkDescriptor, error) {
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

	var links []document.LinkDescriptor
	for i, entry := range annots {
		ad, err := d.annotDict(entry)
		if err != nil {
			continue
		}
		subtype := ad.NameEntry("Subtype")
		if subtype == nil || *subtype != "Link" {
			continue
		}
		link := document.LinkDescriptor{Index: i, Kind: "internal"}
		if rect, ok := rectEntry(d.ctx, ad, "Rect"); ok {
			link.Rect = rect
		}
		if uri := d.linkURI(ad); uri != "" {
			link.Kind = "uri"
			link.URI = uri
		} else if page, ok := d.linkDestPage(ad); ok {
			link.Page = page
		}
		links = append(links, link)
	}
	return links, nil
}

func (d *Document) linkURI(ad types.Dict) string {
	obj, found := ad.Find("A")
	if !found {
		return ""
	}
	resolved, err := d.ctx.Dereference(obj)
	if err != nil {
		return ""
	}
	action, ok := resolved.(types.Dict)
	if !ok {
		return ""
	}
	if s := action.NameEntry("S"); s == nil || *s != "URI" {
		return ""
	}
	return stringEntry(d.ctx, action, "URI")
}

// linkDestPage resolves an explicit destination array to a 1-based page
// number by matching the destination's page reference against the page
// tree.
func (d *Document) linkDestPage(ad types.Dict) (int, bool) {
	obj, found := ad.Find("Dest")
	if !found {
		return 0, false
	}
	resolved, err := d.ctx.Dereference(obj)
	if err != nil {
		return 0, false
	}
	dest, ok := resolved.(types.Array)
	if !ok || len(dest) == 0 {
		return 0, false
	}
	ref, ok := dest[0].(types.IndirectRef)
	if !ok {
		return 0, false
	}
	for pageNr := 1; pageNr <= d.pageCount; pageNr++ {
		_, pageRef, _, err := d.ctx.PageDict(pageNr, false)
		if err != nil || pageRef == nil {
			continue
		}
		if pageRef.ObjectNumber == ref.ObjectNumber {
			return pageNr, true
		}
	}
	return 0, false
}

// AddURILink adds a link annotation opening the given URI.
func (d *Document) AddURILink(pageNr int, rect document.Rect, uri string) (int, error) {
	index := -1
	err := d.withContext(func(ctx *model.Context) error {
		var err error
		index, err = d.appendAnnot(ctx, pageNr, types.Dict{
			"Type":    types.Name("Annot"),
			"Subtype": types.Name("Link"),
			"Rect":    types.NewRectangle(rect.LLX, rect.LLY, rect.URX, rect.URY).Array(),
			"BS":      types.Dict{"W": types.Float(0)},
			"A": types.Dict{
				"S":    types.Name("URI"),
				"Type": types.Name("Action"),
				"URI":  types.StringLiteral(uri),
			},
		})
		return err
	})
	return index, err
}

// AddInternalLink adds a link annotation jumping to destPage (1-based).
func (d *Document) AddInternalLink(pageNr int, rect document.Rect, destPage int) (int, error) {
	index := -1
	err := d.withContext(func(ctx *model.Context) error {
		_, destRef, _, err := ctx.PageDict(destPage, false)
		if err != nil || destRef == nil {
			return fmt.Errorf("failed to resolve destination page %d: %w", destPage, err)
		}
		index, err = d.appendAnnot(ctx, pageNr, types.Dict{
			"Type":    types.Name("Annot"),
			"Subtype": types.Name("Link"),
			"Rect":    types.NewRectangle(rect.LLX, rect.LLY, rect.URX, rect.URY).Array(),
			"BS":      types.Dict{"W": types.Float(0)},
			"Dest":    types.Array{*destRef, types.Name("Fit")},
		})
		return err
	})
	return index, err
}

func (d *Document) appendAnnot(ctx *model.Context, pageNr int, annot types.Dict) (int, error) {
	pd, _, _, err := ctx.PageDict(pageNr, false)
	if err != nil {
		return -1, fmt.Errorf("failed to resolve page %d: %w", pageNr, err)
	}
	annots, err := d.annotationsOf(ctx, pd)
	if err != nil {
		return -1, err
	}
	ref, err := ctx.IndRefForNewObject(annot)
	if err != nil {
		return -1, fmt.Errorf("failed to allocate annotation object: %w", err)
	}
	annots = append(annots, *ref)
	pd["Annots"] = annots
	return len(annots) - 1, nil
}

// RemoveLinkNear deletes the link annotation whose rectangle is closest
// to rect, provided every corner is within tolerance points. Returns
// the removed link's index.
func (d *Document) RemoveLinkNear(pageNr int, rect document.Rect, tolerance float64) (int, error) {
	links, err := d.ListLinks(pageNr)
	if err != nil {
		return -1, err
	}
	best := -1
	bestDist := math.MaxFloat64
	for _, link := range links {
		dist := rectDistance(link.Rect, rect)
		if dist < bestDist {
			bestDist = dist
			best = link.Index
		}
	}
	if best < 0 || bestDist > tolerance {
		return -1, fmt.Errorf("no link found near [%.1f %.1f %.1f %.1f]",
			rect.LLX, rect.LLY, rect.URX, rect.URY)
	}
	if err := d.DeleteAnnotation(pageNr, best); err != nil {
		return -1, err
	}
	return best, nil
}

func rectDistance(a, b document.Rect) float64 {
	return math.Max(
		math.Max(math.Abs(a.LLX-b.LLX), math.Abs(a.LLY-b.LLY)),
		math.Max(math.Abs(a.URX-b.URX), math.Abs(a.URY-b.URY)))
}
