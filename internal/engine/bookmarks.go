package engine

import (
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"

	"github.com/OthmaneBlial/pdf-editor-offline/internal/domain/document"
)

// ReadTOC returns the document outline flattened into an ordered list
// of (level, title, page) entries. Level starts at 1.
func (d *Document) ReadTOC() ([]document.TOCEntry, error) {
	if d.closed {
		return nil, ErrClosed
	}
	f, err := os.Open(d.workPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	bms, err := api.Bookmarks(f, d.conf)
	if err != nil {
		// Documents without an outline are not an error.
		return nil, nil
	}
	var toc []document.TOCEntry
	flattenBookmarks(bms, 1, &toc)
	return toc, nil
}

func flattenBookmarks(bms []pdfcpu.Bookmark, level int, out *[]document.TOCEntry) {
	for _, bm := range bms {
		*out = append(*out, document.TOCEntry{
			Level: level,
			Title: bm.Title,
			Page:  bm.PageFrom,
		})
		if len(bm.Kids) > 0 {
			flattenBookmarks(bm.Kids, level+1, out)
		}
	}
}

// WriteTOC replaces the entire document outline with the given entries.
// Entries nest by level: an entry with level n+1 becomes a child of the
// most recent entry with level n. Levels deeper than parent+1 are
// clamped.
func (d *Document) WriteTOC(entries []document.TOCEntry) error {
	if d.closed {
		return ErrClosed
	}
	if len(entries) == 0 {
		return d.transform(func(in, out string) error {
			return api.RemoveBookmarksFile(in, out, d.conf)
		})
	}
	bms := nestBookmarks(entries)
	return d.transform(func(in, out string) error {
		return api.AddBookmarksFile(in, out, bms, true, d.conf)
	})
}

func nestBookmarks(entries []document.TOCEntry) []pdfcpu.Bookmark {
	var roots []pdfcpu.Bookmark
	// stack[i] points at the most recent bookmark of level i+1.
	var stack []*pdfcpu.Bookmark
	for _, e := range entries {
		level := e.Level
		if level < 1 {
			level = 1
		}
		if level > len(stack)+1 {
			level = len(stack) + 1
		}
		bm := pdfcpu.Bookmark{Title: e.Title, PageFrom: e.Page}
		if level == 1 {
			roots = append(roots, bm)
			stack = []*pdfcpu.Bookmark{&roots[len(roots)-1]}
			continue
		}
		parent := stack[level-2]
		parent.Kids = append(parent.Kids, bm)
		stack = append(stack[:level-1], &parent.Kids[len(parent.Kids)-1])
	}
	return roots
}
