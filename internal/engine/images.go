package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/OthmaneBlial/pdf-editor-offline/internal/domain/document"
)

// ListImages describes every image XObject referenced by a page's
// resource dictionary (1-based page). Index order follows the sorted
// resource names so it is stable across calls.
func (d *Document) ListImages(pageNr int) ([]document.ImageInfo, error) {
	if d.closed {
		return nil, ErrClosed
	}
	pd, _, _, err := d.ctx.PageDict(pageNr, false)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve page %d: %w", pageNr, err)
	}

	xObjects, err := d.pageXObjects(pd)
	if err != nil || xObjects == nil {
		return nil, err
	}

	names := make([]string, 0, len(xObjects))
	for name := range xObjects {
		names = append(names, name)
	}
	sort.Strings(names)

	var infos []document.ImageInfo
	for _, name := range names {
		resolved, err := d.ctx.Dereference(xObjects[name])
		if err != nil {
			continue
		}
		sd, ok := resolved.(types.StreamDict)
		if !ok {
			continue
		}
		if sub := sd.Dict.NameEntry("Subtype"); sub == nil || *sub != "Image" {
			continue
		}
		info := document.ImageInfo{Index: len(infos), Name: name}
		if w := sd.Dict.IntEntry("Width"); w != nil {
			info.Width = *w
		}
		if h := sd.Dict.IntEntry("Height"); h != nil {
			info.Height = *h
		}
		if bpc := sd.Dict.IntEntry("BitsPerComponent"); bpc != nil {
			info.BitsPerComp = *bpc
		}
		info.ColorSpace = d.colorSpaceName(sd.Dict)
		info.Filter = d.filterName(sd.Dict)
		if info.Height > 0 {
			info.AspectRatio = float64(info.Width) / float64(info.Height)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func (d *Document) pageXObjects(pd types.Dict) (types.Dict, error) {
	resObj, found := pd.Find("Resources")
	if !found {
		return nil, nil
	}
	resolved, err := d.ctx.Dereference(resObj)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve page resources: %w", err)
	}
	resources, ok := resolved.(types.Dict)
	if !ok {
		return nil, nil
	}
	xoObj, found := resources.Find("XObject")
	if !found {
		return nil, nil
	}
	resolved, err = d.ctx.Dereference(xoObj)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve XObject dictionary: %w", err)
	}
	xObjects, ok := resolved.(types.Dict)
	if !ok {
		return nil, nil
	}
	return xObjects, nil
}

func (d *Document) colorSpaceName(dict types.Dict) string {
	obj, found := dict.Find("ColorSpace")
	if !found {
		return ""
	}
	resolved, err := d.ctx.Dereference(obj)
	if err != nil {
		return ""
	}
	switch v := resolved.(type) {
	case types.Name:
		return v.Value()
	case types.Array:
		if len(v) > 0 {
			if name, ok := v[0].(types.Name); ok {
				return name.Value()
			}
		}
	}
	return ""
}

func (d *Document) filterName(dict types.Dict) string {
	obj, found := dict.Find("Filter")
	if !found {
		return ""
	}
	resolved, err := d.ctx.Dereference(obj)
	if err != nil {
		return ""
	}
	switch v := resolved.(type) {
	case types.Name:
		return v.Value()
	case types.Array:
		if len(v) > 0 {
			if name, ok := v[0].(types.Name); ok {
				return name.Value()
			}
		}
	}
	return ""
}

// ExtractImages writes every image of a page (1-based) into a fresh
// scratch subdirectory and returns the written file paths sorted by
// name. Callers pick the one they need by index.
func (d *Document) ExtractImages(pageNr int) ([]string, error) {
	if d.closed {
		return nil, ErrClosed
	}
	scratch, err := d.ScratchDir()
	if err != nil {
		return nil, err
	}
	outDir := filepath.Join(scratch, "images-"+uuid.NewString())
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create extraction dir: %w", err)
	}
	if err := api.ExtractImagesFile(d.workPath, outDir, pageSelection([]int{pageNr}), d.conf); err != nil {
		_ = os.RemoveAll(outDir)
		return nil, fmt.Errorf("failed to extract images: %w", err)
	}
	entries, err := os.ReadDir(outDir)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			paths = append(paths, filepath.Join(outDir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
