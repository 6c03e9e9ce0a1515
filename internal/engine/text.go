package engine

import (
	"fmt"
	"sort"

	ledongthuc "github.com/ledongthuc/pdf"

	"github.com/OthmaneBlial/pdf-editor-offline/internal/domain/document"
)

// TextSpans extracts positioned text runs from a page (1-based).
// Character-level runs sharing font, size, and baseline are merged into
// spans when horizontally contiguous. Runs are returned in reading
// order (top to bottom, left to right).
func (d *Document) TextSpans(pageNr int) ([]document.TextSpan, error) {
	if d.closed {
		return nil, ErrClosed
	}
	f, r, err := ledongthuc.Open(d.workPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open document for extraction: %w", err)
	}
	defer f.Close()

	if pageNr < 1 || pageNr > r.NumPage() {
		return nil, fmt.Errorf("page %d out of range", pageNr)
	}
	page := r.Page(pageNr)
	if page.V.IsNull() {
		return nil, fmt.Errorf("page %d has no content", pageNr)
	}

	texts := page.Content().Text
	sort.SliceStable(texts, func(i, j int) bool {
		if texts[i].Y != texts[j].Y {
			return texts[i].Y > texts[j].Y
		}
		return texts[i].X < texts[j].X
	})

	var spans []document.TextSpan
	var cur *document.TextSpan
	var curEnd float64
	for _, t := range texts {
		joinable := cur != nil &&
			t.Font == cur.Font &&
			t.FontSize == cur.Size &&
			t.Y == cur.Y &&
			t.X-curEnd <= t.FontSize*0.75
		if joinable {
			if t.X-curEnd > t.FontSize*0.2 {
				cur.Text += " "
			}
			cur.Text += t.S
			curEnd = t.X + t.W
			cur.Width = curEnd - cur.X
			continue
		}
		if cur != nil {
			spans = append(spans, *cur)
		}
		cur = &document.TextSpan{
			Text:  t.S,
			Font:  t.Font,
			Size:  t.FontSize,
			X:     t.X,
			Y:     t.Y,
			Width: t.W,
		}
		curEnd = t.X + t.W
	}
	if cur != nil {
		spans = append(spans, *cur)
	}
	return spans, nil
}

// ExtractPageCount reports the page count seen by the extraction layer.
// May differ from PageCount for malformed files.
func (d *Document) ExtractPageCount() (int, error) {
	if d.closed {
		return 0, ErrClosed
	}
	f, r, err := ledongthuc.Open(d.workPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open document for extraction: %w", err)
	}
	defer f.Close()
	return r.NumPage(), nil
}
