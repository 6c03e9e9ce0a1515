package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/phpdave11/gofpdf"

	"github.com/OthmaneBlial/pdf-editor-offline/internal/domain/document"
)

// makePDF writes a Letter-sized PDF with the given page texts and
// returns its path.
func makePDF(t *testing.T, dir string, pageTexts ...string) string {
	t.Helper()
	pdf := gofpdf.New("P", "pt", "Letter", "")
	pdf.SetFont("Helvetica", "", 12)
	for _, text := range pageTexts {
		pdf.AddPage()
		if text != "" {
			pdf.Text(72, 72, text)
		}
	}
	path := filepath.Join(dir, "test.pdf")
	if err := pdf.OutputFileAndClose(path); err != nil {
		t.Fatalf("generating test PDF: %v", err)
	}
	return path
}

func openTestDoc(t *testing.T, pageTexts ...string) *Document {
	t.Helper()
	dir := t.TempDir()
	src := makePDF(t, dir, pageTexts...)
	doc, err := Open(src, dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { doc.Close() })
	return doc
}

func TestOpen(t *testing.T) {
	t.Parallel()

	doc := openTestDoc(t, "page one", "page two", "page three")
	if doc.PageCount() != 3 {
		t.Errorf("PageCount() = %d, want 3", doc.PageCount())
	}

	w, h, err := doc.PageDim(1)
	if err != nil {
		t.Fatalf("PageDim() error: %v", err)
	}
	// Letter is 612x792 points.
	if w < 611 || w > 613 || h < 791 || h > 793 {
		t.Errorf("PageDim(1) = %.1fx%.1f, want 612x792", w, h)
	}
}

func TestOpen_InvalidFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "not-a-pdf.pdf")
	if err := os.WriteFile(src, []byte("plain text, no pdf here"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Open(src, dir); err == nil {
		t.Error("Open() of a non-PDF file should fail")
	}
}

func TestDocument_RemovePages(t *testing.T) {
	t.Parallel()

	doc := openTestDoc(t, "one", "two", "three", "four")
	if err := doc.RemovePages([]int{2, 3}); err != nil {
		t.Fatalf("RemovePages() error: %v", err)
	}
	if doc.PageCount() != 2 {
		t.Errorf("PageCount() = %d, want 2", doc.PageCount())
	}
}

func TestDocument_ResizePages(t *testing.T) {
	t.Parallel()

	doc := openTestDoc(t, "one")
	// A4 in points.
	if err := doc.ResizePages([]int{1}, 595.28, 841.89); err != nil {
		t.Fatalf("ResizePages() error: %v", err)
	}

	w, h, err := doc.PageDim(1)
	if err != nil {
		t.Fatalf("PageDim() error: %v", err)
	}
	if w < 594 || w > 597 || h < 840 || h > 843 {
		t.Errorf("PageDim(1) = %.1fx%.1f, want A4", w, h)
	}
}

func TestDocument_SaveTo(t *testing.T) {
	t.Parallel()

	doc := openTestDoc(t, "alpha", "beta")
	dst := filepath.Join(t.TempDir(), "saved.pdf")
	if err := doc.SaveTo(dst); err != nil {
		t.Fatalf("SaveTo() error: %v", err)
	}

	n, err := PageCountOf(dst)
	if err != nil {
		t.Fatalf("PageCountOf() error: %v", err)
	}
	if n != 2 {
		t.Errorf("saved page count = %d, want 2", n)
	}
}

func TestDocument_Close(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := makePDF(t, dir, "single")
	doc, err := Open(src, dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}

	work := doc.WorkPath()
	if err := doc.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if !doc.Closed() {
		t.Error("Closed() = false after Close")
	}
	if _, err := os.Stat(work); !os.IsNotExist(err) {
		t.Errorf("working copy %s should be removed on Close", work)
	}

	// Operations on a closed handle fail.
	if err := doc.RemovePages([]int{1}); err == nil {
		t.Error("RemovePages() on closed handle should fail")
	}
	// Close is idempotent.
	if err := doc.Close(); err != nil {
		t.Errorf("second Close() error: %v", err)
	}
}

func TestDocument_TOCRoundTrip(t *testing.T) {
	t.Parallel()

	doc := openTestDoc(t, "one", "two", "three")

	toc, err := doc.ReadTOC()
	if err != nil {
		t.Fatalf("ReadTOC() error: %v", err)
	}
	if len(toc) != 0 {
		t.Fatalf("fresh document TOC = %+v, want empty", toc)
	}

	want := []document.TOCEntry{
		{Level: 1, Title: "First", Page: 1},
		{Level: 2, Title: "Detail", Page: 2},
		{Level: 1, Title: "Second", Page: 3},
	}
	if err := doc.WriteTOC(want); err != nil {
		t.Fatalf("WriteTOC() error: %v", err)
	}

	got, err := doc.ReadTOC()
	if err != nil {
		t.Fatalf("ReadTOC() error: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("TOC = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("TOC[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestDocument_MetadataRoundTrip(t *testing.T) {
	t.Parallel()

	doc := openTestDoc(t, "one")

	title := "Quarterly Report"
	author := "Finance Team"
	if err := doc.WriteMetadata(document.MetadataUpdate{Title: &title, Author: &author}); err != nil {
		t.Fatalf("WriteMetadata() error: %v", err)
	}

	meta, err := doc.ReadMetadata()
	if err != nil {
		t.Fatalf("ReadMetadata() error: %v", err)
	}
	if meta.Title != title {
		t.Errorf("Title = %q, want %q", meta.Title, title)
	}
	if meta.Author != author {
		t.Errorf("Author = %q, want %q", meta.Author, author)
	}
}

func TestDocument_TextSpans(t *testing.T) {
	t.Parallel()

	doc := openTestDoc(t, "the quick brown fox")
	spans, err := doc.TextSpans(1)
	if err != nil {
		t.Fatalf("TextSpans() error: %v", err)
	}
	if len(spans) == 0 {
		t.Fatal("TextSpans() = empty, want at least one span")
	}

	var all string
	for _, s := range spans {
		all += s.Text
	}
	if all == "" {
		t.Error("extracted text is empty")
	}
}
