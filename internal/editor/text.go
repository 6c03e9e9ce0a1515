package editor

import (
	"strings"

	"github.com/OthmaneBlial/pdf-editor-offline/internal/domain/document"
	"github.com/OthmaneBlial/pdf-editor-offline/internal/engine"
)

// TextProcessor searches and rewrites page text. Replacement is an
// approximation of in-place editing: originals are covered with an
// opaque fill and the new text is drawn at the same baseline in the
// nearest builtin font, so kerning, ligatures, and exact metrics are
// not preserved.
type TextProcessor struct {
	doc *engine.Document
}

// occurrence is one literal match located inside an extracted span.
type occurrence struct {
	span document.TextSpan
	rect document.Rect
}

// Search finds all literal occurrences of term on a page and returns
// their bounding rectangles. An empty result is valid.
func (t *TextProcessor) Search(page int, term string) ([]document.SearchMatch, error) {
	const op = "search_text"
	if err := checkPage(op, t.doc, page); err != nil {
		return nil, err
	}
	if term == "" {
		return nil, document.Invalidf(op, "search term is empty")
	}
	occs, err := t.locate(op, page, term)
	if err != nil {
		return nil, err
	}
	matches := make([]document.SearchMatch, 0, len(occs))
	for _, o := range occs {
		matches = append(matches, document.SearchMatch{Page: page, Text: term, Rect: o.rect})
	}
	return matches, nil
}

func (t *TextProcessor) locate(op string, page int, term string) ([]occurrence, error) {
	spans, err := t.doc.TextSpans(page + 1)
	if err != nil {
		return nil, document.WrapEngine(op, err)
	}
	var occs []occurrence
	for _, span := range spans {
		runes := []rune(span.Text)
		if len(runes) == 0 || span.Width <= 0 {
			continue
		}
		perRune := span.Width / float64(len(runes))
		rest := span.Text
		base := 0
		for {
			i := strings.Index(rest, term)
			if i < 0 {
				break
			}
			startRunes := len([]rune(rest[:i])) + base
			termRunes := len([]rune(term))
			rect := document.Rect{
				LLX: span.X + float64(startRunes)*perRune,
				LLY: span.Y - span.Size*0.2,
				URX: span.X + float64(startRunes+termRunes)*perRune,
				URY: span.Y + span.Size*0.8,
			}
			occs = append(occs, occurrence{span: span, rect: rect})
			consumed := i + len(term)
			base += len([]rune(rest[:consumed]))
			rest = rest[consumed:]
		}
	}
	return occs, nil
}

// ReplaceOptions tunes Replace. Zero value means: sample the font at
// each occurrence and keep its size.
type ReplaceOptions struct {
	// Font forces a builtin font instead of sampling.
	Font string
	// Size forces a text size in points instead of sampling.
	Size float64
}

// Replace substitutes every literal occurrence of search on a page
// with replacement, preserving the sampled font and size per
// occurrence. One font sample is taken per occurrence; occurrences
// spanning multiple fonts are matched on the first. Zero matches is a
// valid result with Count 0.
func (t *TextProcessor) Replace(page int, search, replacement string, opts ReplaceOptions) (document.ReplaceResult, error) {
	const op = "replace_text"
	if err := checkPage(op, t.doc, page); err != nil {
		return document.ReplaceResult{}, err
	}
	if search == "" {
		return document.ReplaceResult{}, document.Invalidf(op, "search term is empty")
	}
	occs, err := t.locate(op, page, search)
	if err != nil {
		return document.ReplaceResult{}, err
	}
	result := document.ReplaceResult{Approximate: true}
	if len(occs) == 0 {
		return result, nil
	}

	err = t.doc.ApplyOverlay(page+1, func(ov *engine.Overlay) error {
		for _, o := range occs {
			font := opts.Font
			if font == "" {
				font = engine.MatchBuiltinFont(o.span.Font)
			}
			size := opts.Size
			if size == 0 {
				size = o.span.Size
			}
			ov.FillRect(o.rect, document.White)
			ov.Text(o.rect.LLX, o.span.Y, font, size, document.Black, replacement)
			result.Count++
			result.Rects = append(result.Rects, o.rect)
			result.FontUsed = font
		}
		return nil
	})
	if err != nil {
		return document.ReplaceResult{}, document.WrapEngine(op, err)
	}
	return result, nil
}

// Properties returns the positioned text spans of a page.
func (t *TextProcessor) Properties(page int) ([]document.TextSpan, error) {
	const op = "text_properties"
	if err := checkPage(op, t.doc, page); err != nil {
		return nil, err
	}
	spans, err := t.doc.TextSpans(page + 1)
	if err != nil {
		return nil, document.WrapEngine(op, err)
	}
	return spans, nil
}

// Fonts counts text spans per font name across the whole document.
func (t *TextProcessor) Fonts() (document.FontUsage, error) {
	const op = "font_usage"
	if t.doc.Closed() {
		return nil, document.Invalidf(op, "document handle is closed")
	}
	usage := document.FontUsage{}
	for p := 1; p <= t.doc.PageCount(); p++ {
		spans, err := t.doc.TextSpans(p)
		if err != nil {
			continue
		}
		for _, s := range spans {
			if s.Font != "" {
				usage[s.Font]++
			}
		}
	}
	return usage, nil
}

// ContextMatch is a search hit with surrounding text.
type ContextMatch struct {
	Match   string `json:"match"`
	Context string `json:"context"`
	Offset  int    `json:"offset"`
}

// SearchContext finds term on a page and returns each hit with up to
// window runes of surrounding text on both sides.
func (t *TextProcessor) SearchContext(page int, term string, window int) ([]ContextMatch, error) {
	const op = "search_text_context"
	if err := checkPage(op, t.doc, page); err != nil {
		return nil, err
	}
	if term == "" {
		return nil, document.Invalidf(op, "search term is empty")
	}
	if window <= 0 {
		window = 50
	}
	spans, err := t.doc.TextSpans(page + 1)
	if err != nil {
		return nil, document.WrapEngine(op, err)
	}
	var b strings.Builder
	for i, s := range spans {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s.Text)
	}
	text := b.String()

	var matches []ContextMatch
	for offset := 0; ; {
		i := strings.Index(text[offset:], term)
		if i < 0 {
			break
		}
		at := offset + i
		start := at - window
		if start < 0 {
			start = 0
		}
		end := at + len(term) + window
		if end > len(text) {
			end = len(text)
		}
		matches = append(matches, ContextMatch{
			Match:   term,
			Context: text[start:end],
			Offset:  at,
		})
		offset = at + len(term)
	}
	return matches, nil
}
