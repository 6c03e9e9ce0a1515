package editor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/OthmaneBlial/pdf-editor-offline/internal/domain/document"
	"github.com/OthmaneBlial/pdf-editor-offline/internal/engine"
)

// NavigationManager maintains the document outline and link
// annotations. The underlying engine has no incremental bookmark API,
// so every outline mutation reads the whole TOC, edits the in-memory
// list, and writes the whole TOC back. The coordinator's per-session
// lock makes that read-modify-write sequence atomic.
type NavigationManager struct {
	doc *engine.Document
}

// TOC returns the current outline as a flat ordered list.
func (n *NavigationManager) TOC() ([]document.TOCEntry, error) {
	const op = "get_toc"
	if n.doc.Closed() {
		return nil, document.Invalidf(op, "document handle is closed")
	}
	toc, err := n.doc.ReadTOC()
	if err != nil {
		return nil, document.WrapEngine(op, err)
	}
	return toc, nil
}

// SetTOC replaces the outline. Entries whose destination page is out
// of range are skipped; the skipped entries are reported, not fatal.
func (n *NavigationManager) SetTOC(entries []document.TOCEntry) (applied int, skipped []string, err error) {
	const op = "set_toc"
	if n.doc.Closed() {
		return 0, nil, document.Invalidf(op, "document handle is closed")
	}
	count := n.doc.PageCount()
	valid := make([]document.TOCEntry, 0, len(entries))
	for i, e := range entries {
		if e.Page < 1 || e.Page > count {
			skipped = append(skipped, fmt.Sprintf("entry %d (%q): page %d out of range [1, %d]", i, e.Title, e.Page, count))
			continue
		}
		if strings.TrimSpace(e.Title) == "" {
			skipped = append(skipped, fmt.Sprintf("entry %d: empty title", i))
			continue
		}
		if e.Level < 1 {
			e.Level = 1
		}
		valid = append(valid, e)
	}
	if err := n.doc.WriteTOC(valid); err != nil {
		return 0, nil, document.WrapEngine(op, err)
	}
	return len(valid), skipped, nil
}

// AddBookmark appends an entry to the outline and returns its index.
func (n *NavigationManager) AddBookmark(level int, title string, page int) (int, error) {
	const op = "add_bookmark"
	if n.doc.Closed() {
		return 0, document.Invalidf(op, "document handle is closed")
	}
	if strings.TrimSpace(title) == "" {
		return 0, document.Invalidf(op, "title is empty")
	}
	if page < 1 || page > n.doc.PageCount() {
		return 0, document.Invalidf(op, "page %d out of range [1, %d]", page, n.doc.PageCount())
	}
	if level < 1 {
		level = 1
	}
	toc, err := n.doc.ReadTOC()
	if err != nil {
		return 0, document.WrapEngine(op, err)
	}
	toc = append(toc, document.TOCEntry{Level: level, Title: title, Page: page})
	if err := n.doc.WriteTOC(toc); err != nil {
		return 0, document.WrapEngine(op, err)
	}
	return len(toc) - 1, nil
}

// DeleteBookmark removes the outline entry at index and returns it
// along with the remaining entry count.
func (n *NavigationManager) DeleteBookmark(index int) (document.TOCEntry, int, error) {
	const op = "delete_bookmark"
	if n.doc.Closed() {
		return document.TOCEntry{}, 0, document.Invalidf(op, "document handle is closed")
	}
	toc, err := n.doc.ReadTOC()
	if err != nil {
		return document.TOCEntry{}, 0, document.WrapEngine(op, err)
	}
	if index < 0 || index >= len(toc) {
		return document.TOCEntry{}, 0, document.InvalidIndex(op, "bookmark", index, len(toc))
	}
	removed := toc[index]
	toc = append(toc[:index:index], toc[index+1:]...)
	if err := n.doc.WriteTOC(toc); err != nil {
		return document.TOCEntry{}, 0, document.WrapEngine(op, err)
	}
	return removed, len(toc), nil
}

// UpdateBookmark patches the title and/or page of the entry at index.
func (n *NavigationManager) UpdateBookmark(index int, title *string, page *int) (document.TOCEntry, error) {
	const op = "update_bookmark"
	if n.doc.Closed() {
		return document.TOCEntry{}, document.Invalidf(op, "document handle is closed")
	}
	toc, err := n.doc.ReadTOC()
	if err != nil {
		return document.TOCEntry{}, document.WrapEngine(op, err)
	}
	if index < 0 || index >= len(toc) {
		return document.TOCEntry{}, document.InvalidIndex(op, "bookmark", index, len(toc))
	}
	if title != nil {
		if strings.TrimSpace(*title) == "" {
			return document.TOCEntry{}, document.Invalidf(op, "title is empty")
		}
		toc[index].Title = *title
	}
	if page != nil {
		if *page < 1 || *page > n.doc.PageCount() {
			return document.TOCEntry{}, document.Invalidf(op, "page %d out of range [1, %d]", *page, n.doc.PageCount())
		}
		toc[index].Page = *page
	}
	if err := n.doc.WriteTOC(toc); err != nil {
		return document.TOCEntry{}, document.WrapEngine(op, err)
	}
	return toc[index], nil
}

// BookmarksForPage returns the outline entries pointing at a 1-based
// page, keeping their overall indices.
func (n *NavigationManager) BookmarksForPage(page int) ([]int, []document.TOCEntry, error) {
	const op = "bookmarks_for_page"
	if n.doc.Closed() {
		return nil, nil, document.Invalidf(op, "document handle is closed")
	}
	toc, err := n.doc.ReadTOC()
	if err != nil {
		return nil, nil, document.WrapEngine(op, err)
	}
	var indices []int
	var entries []document.TOCEntry
	for i, e := range toc {
		if e.Page == page {
			indices = append(indices, i)
			entries = append(entries, e)
		}
	}
	return indices, entries, nil
}

// Header-size thresholds for TOCFromHeaders, in points.
const (
	headerLevel1Size = 18
	headerLevel2Size = 14
	headerLevel3Size = 12
	headerTitleMax   = 50
)

// TOCFromHeaders scans every page for large text spans and builds an
// outline from them, merged with the existing outline and sorted by
// page. Returns the number of detected headers.
func (n *NavigationManager) TOCFromHeaders() (int, error) {
	const op = "toc_from_headers"
	if n.doc.Closed() {
		return 0, document.Invalidf(op, "document handle is closed")
	}
	var detected []document.TOCEntry
	for p := 1; p <= n.doc.PageCount(); p++ {
		spans, err := n.doc.TextSpans(p)
		if err != nil {
			continue
		}
		for _, s := range spans {
			level := 0
			switch {
			case s.Size >= headerLevel1Size:
				level = 1
			case s.Size >= headerLevel2Size:
				level = 2
			case s.Size >= headerLevel3Size:
				level = 3
			}
			if level == 0 {
				continue
			}
			title := strings.TrimSpace(s.Text)
			if title == "" {
				continue
			}
			if runes := []rune(title); len(runes) > headerTitleMax {
				title = string(runes[:headerTitleMax])
			}
			detected = append(detected, document.TOCEntry{Level: level, Title: title, Page: p})
		}
	}
	if len(detected) == 0 {
		return 0, nil
	}

	existing, err := n.doc.ReadTOC()
	if err != nil {
		return 0, document.WrapEngine(op, err)
	}
	merged := append(existing, detected...)
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Page < merged[j].Page })
	if err := n.doc.WriteTOC(merged); err != nil {
		return 0, document.WrapEngine(op, err)
	}
	return len(detected), nil
}

// Links lists the link annotations on a 0-based page.
func (n *NavigationManager) Links(page int) ([]document.LinkDescriptor, error) {
	const op = "get_links"
	if err := checkPage(op, n.doc, page); err != nil {
		return nil, err
	}
	links, err := n.doc.ListLinks(page + 1)
	if err != nil {
		return nil, document.WrapEngine(op, err)
	}
	return links, nil
}

// AddLink creates a link annotation on a 0-based page. Exactly one of
// uri or destPage must be set; destPage is 1-based.
func (n *NavigationManager) AddLink(page int, rect document.Rect, uri string, destPage int) (document.LinkDescriptor, error) {
	const op = "add_link"
	if err := checkPage(op, n.doc, page); err != nil {
		return document.LinkDescriptor{}, err
	}
	if !rect.Valid() {
		return document.LinkDescriptor{}, document.Invalidf(op, "rect %.1fx%.1f must have positive area", rect.Width(), rect.Height())
	}
	if (uri == "") == (destPage == 0) {
		return document.LinkDescriptor{}, document.Invalidf(op, "exactly one of uri or dest_page is required")
	}
	if uri != "" {
		index, err := n.doc.AddURILink(page+1, rect, uri)
		if err != nil {
			return document.LinkDescriptor{}, document.WrapEngine(op, err)
		}
		return document.LinkDescriptor{Index: index, Kind: "uri", Rect: rect, URI: uri}, nil
	}
	if destPage < 1 || destPage > n.doc.PageCount() {
		return document.LinkDescriptor{}, document.Invalidf(op, "dest_page %d out of range [1, %d]", destPage, n.doc.PageCount())
	}
	index, err := n.doc.AddInternalLink(page+1, rect, destPage)
	if err != nil {
		return document.LinkDescriptor{}, document.WrapEngine(op, err)
	}
	return document.LinkDescriptor{Index: index, Kind: "internal", Rect: rect, Page: destPage}, nil
}

// RemoveLink deletes the link annotation closest to rect on a 0-based
// page, within a one-point tolerance per corner.
func (n *NavigationManager) RemoveLink(page int, rect document.Rect) (int, error) {
	const op = "remove_link"
	if err := checkPage(op, n.doc, page); err != nil {
		return 0, err
	}
	index, err := n.doc.RemoveLinkNear(page+1, rect, 1.0)
	if err != nil {
		return 0, document.Invalidf(op, "%v", err)
	}
	return index, nil
}
