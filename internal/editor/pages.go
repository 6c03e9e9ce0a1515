package editor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/OthmaneBlial/pdf-editor-offline/internal/domain/document"
	"github.com/OthmaneBlial/pdf-editor-offline/internal/engine"
)

// PageSizes maps named page formats to their dimensions in points.
var PageSizes = map[string][2]float64{
	"A3":      {842, 1191},
	"A4":      {595, 842},
	"A5":      {420, 595},
	"Letter":  {612, 792},
	"Legal":   {612, 1008},
	"Tabloid": {792, 1224},
}

// PageManipulator implements structural page operations. All page
// indices are 0-based.
type PageManipulator struct {
	doc *engine.Document
}

// DeletePage removes a page. The last remaining page cannot be
// deleted.
func (m *PageManipulator) DeletePage(page int) error {
	const op = "delete_page"
	if err := checkPage(op, m.doc, page); err != nil {
		return err
	}
	if m.doc.PageCount() == 1 {
		return document.Invalidf(op, "cannot delete the only remaining page")
	}
	return document.WrapEngine(op, m.doc.RemovePages([]int{page + 1}))
}

// RotatePage rotates a page by degrees, which must be a nonzero
// multiple of 90. Negative values rotate counterclockwise.
func (m *PageManipulator) RotatePage(page, degrees int) error {
	const op = "rotate_page"
	if err := checkPage(op, m.doc, page); err != nil {
		return err
	}
	norm := degrees % 360
	if norm < 0 {
		norm += 360
	}
	if norm == 0 || norm%90 != 0 {
		return document.Invalidf(op, "rotation %d is not a nonzero multiple of 90", degrees)
	}
	return document.WrapEngine(op, m.doc.RotatePages([]int{page + 1}, norm))
}

// DuplicatePage copies a page and inserts the copy. insertAt nil
// defaults to page+1; an out-of-range insertAt clamps to append at the
// end. The clamp is an intentional leniency, not an error. Returns the
// 0-based index the copy landed at.
func (m *PageManipulator) DuplicatePage(page int, insertAt *int) (int, error) {
	const op = "duplicate_page"
	if err := checkPage(op, m.doc, page); err != nil {
		return 0, err
	}
	count := m.doc.PageCount()
	at := page + 1
	if insertAt != nil {
		at = *insertAt
	}
	if at < 0 || at > count {
		at = count
	}

	scratch, err := m.doc.ScratchDir()
	if err != nil {
		return 0, document.WrapEngine(op, err)
	}
	single := filepath.Join(scratch, "dup-"+uuid.NewString()+".pdf")
	defer os.Remove(single)
	if err := m.doc.ExtractTo([]int{page + 1}, single); err != nil {
		return 0, document.WrapEngine(op, err)
	}
	if err := m.doc.AppendFile(single); err != nil {
		return 0, document.WrapEngine(op, err)
	}

	// The copy now sits at the end; collect moves it to the target
	// position.
	order := make([]int, 0, count+1)
	for i := 1; i <= at; i++ {
		order = append(order, i)
	}
	order = append(order, count+1)
	for i := at + 1; i <= count; i++ {
		order = append(order, i)
	}
	if err := m.doc.Collect(order); err != nil {
		return 0, document.WrapEngine(op, err)
	}
	return at, nil
}

// ExtractPages writes the given pages into a new PDF in the scratch
// directory and returns its path. The document itself is unchanged.
func (m *PageManipulator) ExtractPages(pages []int) (string, error) {
	const op = "extract_pages"
	if len(pages) == 0 {
		return "", document.Invalidf(op, "no pages selected")
	}
	sel := make([]int, 0, len(pages))
	for _, p := range pages {
		if err := checkPage(op, m.doc, p); err != nil {
			return "", err
		}
		sel = append(sel, p+1)
	}
	scratch, err := m.doc.ScratchDir()
	if err != nil {
		return "", document.WrapEngine(op, err)
	}
	dst := filepath.Join(scratch, "extract-"+uuid.NewString()+".pdf")
	if err := m.doc.ExtractTo(sel, dst); err != nil {
		return "", document.WrapEngine(op, err)
	}
	return dst, nil
}

// InsertFromFile inserts every page of the PDF at path into the
// document. position nil or out of range clamps to append. Returns the
// number of inserted pages and the 0-based position of the first one.
func (m *PageManipulator) InsertFromFile(path string, position *int) (inserted, at int, err error) {
	const op = "insert_pages"
	if m.doc.Closed() {
		return 0, 0, document.Invalidf(op, "document handle is closed")
	}
	other, err := engine.PageCountOf(path)
	if err != nil {
		return 0, 0, document.Invalidf(op, "source file is not a readable PDF")
	}
	count := m.doc.PageCount()
	at = count
	if position != nil && *position >= 0 && *position <= count {
		at = *position
	}

	if err := m.doc.AppendFile(path); err != nil {
		return 0, 0, document.WrapEngine(op, err)
	}
	order := make([]int, 0, count+other)
	for i := 1; i <= at; i++ {
		order = append(order, i)
	}
	for i := count + 1; i <= count+other; i++ {
		order = append(order, i)
	}
	for i := at + 1; i <= count; i++ {
		order = append(order, i)
	}
	if err := m.doc.Collect(order); err != nil {
		return 0, 0, document.WrapEngine(op, err)
	}
	return other, at, nil
}

// ResizePage scales a page to a named format or to explicit custom
// dimensions in points.
func (m *PageManipulator) ResizePage(page int, format string, width, height float64) error {
	const op = "resize_page"
	if err := checkPage(op, m.doc, page); err != nil {
		return err
	}
	if format != "" {
		size, ok := PageSizes[format]
		if !ok {
			return document.Invalidf(op, "unknown page format %q", format)
		}
		width, height = size[0], size[1]
	}
	if width <= 0 || height <= 0 {
		return document.Invalidf(op, "dimensions %.1fx%.1f must be positive", width, height)
	}
	return document.WrapEngine(op, m.doc.ResizePages([]int{page + 1}, width, height))
}

// CropPage shrinks a page's visible area by the given margins in
// points. Fails if the resulting dimensions are not positive.
func (m *PageManipulator) CropPage(page int, left, top, right, bottom float64) error {
	const op = "crop_page"
	if err := checkPage(op, m.doc, page); err != nil {
		return err
	}
	w, h, err := m.doc.PageDim(page + 1)
	if err != nil {
		return document.WrapEngine(op, err)
	}
	newW := w - left - right
	newH := h - top - bottom
	if newW <= 0 || newH <= 0 {
		return document.Invalidf(op,
			"margins (%.1f, %.1f, %.1f, %.1f) leave a %.1fx%.1f page, dimensions must be positive",
			left, top, right, bottom, newW, newH)
	}
	return document.WrapEngine(op, m.doc.CropPages([]int{page + 1}, left, bottom, w-right, h-top))
}

// RemoveBlankPages deletes pages with no extractable text and no
// images. Returns the removed 0-based indices. At least one page is
// always kept. Blankness is an approximation: vector-only content is
// not detected.
func (m *PageManipulator) RemoveBlankPages() ([]int, error) {
	const op = "remove_blank_pages"
	if m.doc.Closed() {
		return nil, document.Invalidf(op, "document handle is closed")
	}
	count := m.doc.PageCount()
	var blank []int
	for p := 0; p < count; p++ {
		if m.pageIsBlank(p) {
			blank = append(blank, p)
		}
	}
	if len(blank) == 0 {
		return nil, nil
	}
	if len(blank) == count {
		blank = blank[1:]
	}
	if len(blank) == 0 {
		return nil, nil
	}
	sel := make([]int, len(blank))
	for i, p := range blank {
		sel[i] = p + 1
	}
	if err := m.doc.RemovePages(sel); err != nil {
		return nil, document.WrapEngine(op, err)
	}
	return blank, nil
}

func (m *PageManipulator) pageIsBlank(page int) bool {
	spans, err := m.doc.TextSpans(page + 1)
	if err == nil {
		for _, s := range spans {
			if strings.TrimSpace(s.Text) != "" {
				return false
			}
		}
	}
	images, err := m.doc.ListImages(page + 1)
	if err != nil {
		// Cannot inspect the page, keep it.
		return false
	}
	return len(images) == 0
}

// NumberingOptions controls AddPageNumbers.
type NumberingOptions struct {
	// Style is arabic, roman, roman_lower, letter, or letter_lower.
	Style string
	// Position is a stamp anchor: bc, bl, br, tc, tl, or tr.
	Position string
	Start    int
	Prefix   string
	Suffix   string
}

var numberPositions = map[string]bool{
	"bc": true, "bl": true, "br": true,
	"tc": true, "tl": true, "tr": true,
}

// AddPageNumbers stamps a formatted page number onto every page.
func (m *PageManipulator) AddPageNumbers(opts NumberingOptions) error {
	const op = "add_page_numbers"
	if m.doc.Closed() {
		return document.Invalidf(op, "document handle is closed")
	}
	if opts.Style == "" {
		opts.Style = "arabic"
	}
	if opts.Position == "" {
		opts.Position = "bc"
	}
	if !numberPositions[opts.Position] {
		return document.Invalidf(op, "unknown position %q", opts.Position)
	}
	if opts.Start == 0 {
		opts.Start = 1
	}

	count := m.doc.PageCount()
	for p := 0; p < count; p++ {
		label, err := formatPageNumber(opts.Style, opts.Start+p)
		if err != nil {
			return document.Invalidf(op, "%v", err)
		}
		text := opts.Prefix + label + opts.Suffix
		if err := m.doc.StampText([]int{p + 1}, text, stampDesc(opts.Position)); err != nil {
			return document.WrapEngine(op, err)
		}
	}
	return nil
}

// AddHeaderFooter stamps header and footer lines onto every page,
// substituting {page} and {total} placeholders.
func (m *PageManipulator) AddHeaderFooter(header, footer string) error {
	const op = "add_header_footer"
	if m.doc.Closed() {
		return document.Invalidf(op, "document handle is closed")
	}
	if header == "" && footer == "" {
		return document.Invalidf(op, "header and footer are both empty")
	}
	count := m.doc.PageCount()
	for p := 0; p < count; p++ {
		repl := strings.NewReplacer(
			"{page}", fmt.Sprint(p+1),
			"{total}", fmt.Sprint(count),
		)
		if header != "" {
			if err := m.doc.StampText([]int{p + 1}, repl.Replace(header), stampDesc("tc")); err != nil {
				return document.WrapEngine(op, err)
			}
		}
		if footer != "" {
			if err := m.doc.StampText([]int{p + 1}, repl.Replace(footer), stampDesc("bc")); err != nil {
				return document.WrapEngine(op, err)
			}
		}
	}
	return nil
}

func stampDesc(pos string) string {
	off := "0 20"
	if strings.HasPrefix(pos, "t") {
		off = "0 -20"
	}
	return fmt.Sprintf(
		"fontname:Helvetica, points:10, scale:1 abs, pos:%s, off:%s, rot:0, op:1, fillcol:#000000",
		pos, off)
}

// formatPageNumber renders n in the requested numbering style.
func formatPageNumber(style string, n int) (string, error) {
	if n < 1 {
		return "", fmt.Errorf("page number %d must be positive", n)
	}
	switch style {
	case "arabic":
		return fmt.Sprint(n), nil
	case "roman":
		return toRoman(n), nil
	case "roman_lower":
		return strings.ToLower(toRoman(n)), nil
	case "letter":
		return toLetters(n), nil
	case "letter_lower":
		return strings.ToLower(toLetters(n)), nil
	default:
		return "", fmt.Errorf("unknown numbering style %q", style)
	}
}

var romanValues = []struct {
	value  int
	symbol string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
	{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

func toRoman(n int) string {
	var b strings.Builder
	for _, rv := range romanValues {
		for n >= rv.value {
			b.WriteString(rv.symbol)
			n -= rv.value
		}
	}
	return b.String()
}

// toLetters renders 1..26 as A..Z, then 27 as AA, spreadsheet style.
func toLetters(n int) string {
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}
