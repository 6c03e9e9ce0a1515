package editor

import (
	"testing"

	"github.com/OthmaneBlial/pdf-editor-offline/internal/domain/document"
)

func TestSetTOC(t *testing.T) {
	t.Parallel()

	suite := newTestSuite(t, "one", "two", "three")
	entries := []document.TOCEntry{
		{Level: 1, Title: "Chapter 1", Page: 1},
		{Level: 2, Title: "Section 1.1", Page: 2},
		{Level: 1, Title: "Chapter 2", Page: 3},
	}
	applied, skipped, err := suite.Nav.SetTOC(entries)
	if err != nil {
		t.Fatalf("SetTOC() error: %v", err)
	}
	if applied != 3 || len(skipped) != 0 {
		t.Fatalf("applied = %d, skipped = %v, want 3 and none", applied, skipped)
	}

	toc, err := suite.Nav.TOC()
	if err != nil {
		t.Fatalf("TOC() error: %v", err)
	}
	if len(toc) != 3 {
		t.Fatalf("len(toc) = %d, want 3", len(toc))
	}
	if toc[1].Title != "Section 1.1" || toc[1].Level != 2 {
		t.Errorf("toc[1] = %+v", toc[1])
	}
}

func TestSetTOC_SkipsInvalidEntries(t *testing.T) {
	t.Parallel()

	suite := newTestSuite(t, "one", "two")
	entries := []document.TOCEntry{
		{Level: 1, Title: "Good", Page: 1},
		{Level: 1, Title: "Bad page", Page: 9},
		{Level: 1, Title: "   ", Page: 2},
	}
	applied, skipped, err := suite.Nav.SetTOC(entries)
	if err != nil {
		t.Fatalf("SetTOC() error: %v", err)
	}
	if applied != 1 {
		t.Errorf("applied = %d, want 1", applied)
	}
	if len(skipped) != 2 {
		t.Errorf("skipped = %v, want 2 entries", skipped)
	}
}

func TestBookmarkLifecycle(t *testing.T) {
	t.Parallel()

	suite := newTestSuite(t, "one", "two", "three")

	index, err := suite.Nav.AddBookmark(1, "Overview", 1)
	if err != nil {
		t.Fatalf("AddBookmark() error: %v", err)
	}
	if index != 0 {
		t.Errorf("first bookmark index = %d, want 0", index)
	}
	if _, err := suite.Nav.AddBookmark(1, "Details", 2); err != nil {
		t.Fatalf("AddBookmark() error: %v", err)
	}

	title := "Summary"
	entry, err := suite.Nav.UpdateBookmark(0, &title, nil)
	if err != nil {
		t.Fatalf("UpdateBookmark() error: %v", err)
	}
	if entry.Title != "Summary" || entry.Page != 1 {
		t.Errorf("updated entry = %+v", entry)
	}

	indices, entries, err := suite.Nav.BookmarksForPage(2)
	if err != nil {
		t.Fatalf("BookmarksForPage() error: %v", err)
	}
	if len(indices) != 1 || entries[0].Title != "Details" {
		t.Errorf("page 2 bookmarks = %v / %+v", indices, entries)
	}

	removed, remaining, err := suite.Nav.DeleteBookmark(0)
	if err != nil {
		t.Fatalf("DeleteBookmark() error: %v", err)
	}
	if removed.Title != "Summary" || remaining != 1 {
		t.Errorf("removed = %+v, remaining = %d", removed, remaining)
	}

	if _, _, err := suite.Nav.DeleteBookmark(5); !isInvalid(err) {
		t.Errorf("DeleteBookmark(5) error = %v, want InvalidOperationError", err)
	}
}

func TestAddBookmark_Validation(t *testing.T) {
	t.Parallel()

	suite := newTestSuite(t, "one")
	if _, err := suite.Nav.AddBookmark(1, "", 1); !isInvalid(err) {
		t.Errorf("empty title error = %v, want InvalidOperationError", err)
	}
	if _, err := suite.Nav.AddBookmark(1, "X", 4); !isInvalid(err) {
		t.Errorf("out-of-range page error = %v, want InvalidOperationError", err)
	}
}

func TestAddLink(t *testing.T) {
	t.Parallel()

	suite := newTestSuite(t, "one", "two")
	rect := document.Rect{LLX: 72, LLY: 700, URX: 200, URY: 720}

	link, err := suite.Nav.AddLink(0, rect, "https://example.com", 0)
	if err != nil {
		t.Fatalf("AddLink() error: %v", err)
	}
	if link.Kind != "uri" || link.URI != "https://example.com" {
		t.Errorf("link = %+v", link)
	}

	internal, err := suite.Nav.AddLink(0, document.Rect{LLX: 72, LLY: 650, URX: 200, URY: 670}, "", 2)
	if err != nil {
		t.Fatalf("AddLink() internal error: %v", err)
	}
	if internal.Kind != "internal" || internal.Page != 2 {
		t.Errorf("internal link = %+v", internal)
	}

	links, err := suite.Nav.Links(0)
	if err != nil {
		t.Fatalf("Links() error: %v", err)
	}
	if len(links) != 2 {
		t.Errorf("len(links) = %d, want 2", len(links))
	}
}

func TestAddLink_Validation(t *testing.T) {
	t.Parallel()

	suite := newTestSuite(t, "one")
	rect := document.Rect{LLX: 0, LLY: 0, URX: 100, URY: 20}

	// Both targets set.
	if _, err := suite.Nav.AddLink(0, rect, "https://example.com", 1); !isInvalid(err) {
		t.Errorf("both targets error = %v, want InvalidOperationError", err)
	}
	// Neither target set.
	if _, err := suite.Nav.AddLink(0, rect, "", 0); !isInvalid(err) {
		t.Errorf("no target error = %v, want InvalidOperationError", err)
	}
	// Internal destination out of range.
	if _, err := suite.Nav.AddLink(0, rect, "", 7); !isInvalid(err) {
		t.Errorf("bad dest_page error = %v, want InvalidOperationError", err)
	}
}

func TestRemoveLink(t *testing.T) {
	t.Parallel()

	suite := newTestSuite(t, "one")
	rect := document.Rect{LLX: 72, LLY: 700, URX: 200, URY: 720}
	if _, err := suite.Nav.AddLink(0, rect, "https://example.com", 0); err != nil {
		t.Fatalf("AddLink() error: %v", err)
	}

	if _, err := suite.Nav.RemoveLink(0, rect); err != nil {
		t.Fatalf("RemoveLink() error: %v", err)
	}
	links, err := suite.Nav.Links(0)
	if err != nil {
		t.Fatalf("Links() error: %v", err)
	}
	if len(links) != 0 {
		t.Errorf("len(links) after remove = %d, want 0", len(links))
	}

	if _, err := suite.Nav.RemoveLink(0, rect); !isInvalid(err) {
		t.Errorf("removing a missing link error = %v, want InvalidOperationError", err)
	}
}
