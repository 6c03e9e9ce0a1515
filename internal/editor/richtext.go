package editor

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"

	"github.com/OthmaneBlial/pdf-editor-offline/internal/domain/document"
	"github.com/OthmaneBlial/pdf-editor-offline/internal/engine"
)

// RichTextEditor inserts styled text blocks by drawing overlay pages
// and stamping them onto the target page.
type RichTextEditor struct {
	doc *engine.Document
}

// Fragment is one styled run used by InsertMultiFont.
type Fragment struct {
	Text   string  `json:"text"`
	Font   string  `json:"font"`
	Size   float64 `json:"size"`
	Color  string  `json:"color"`
	Bold   bool    `json:"bold"`
	Italic bool    `json:"italic"`
}

// TextBoxOptions styles InsertTextBox.
type TextBoxOptions struct {
	Font        string
	Size        float64
	TextColor   string
	FillColor   string
	BorderColor string
	BorderWidth float64
	Padding     float64
}

// InsertTextBox draws a filled, bordered box inside rect and lays the
// text out in it with greedy word wrapping. Text that does not fit is
// truncated at the box bottom.
func (r *RichTextEditor) InsertTextBox(page int, rect document.Rect, text string, opts TextBoxOptions) error {
	const op = "insert_textbox"
	if err := checkPage(op, r.doc, page); err != nil {
		return err
	}
	if !rect.Valid() {
		return document.Invalidf(op, "rect %.1fx%.1f must have positive area", rect.Width(), rect.Height())
	}
	if strings.TrimSpace(text) == "" {
		return document.Invalidf(op, "text is empty")
	}
	font := engine.MatchBuiltinFont(opts.Font)
	size := opts.Size
	if size <= 0 {
		size = 11
	}
	padding := opts.Padding
	if padding < 0 {
		padding = 0
	}
	textColor, err := parseColor(opts.TextColor, document.Black)
	if err != nil {
		return document.Invalidf(op, "%v", err)
	}
	fillColor, err := parseColor(opts.FillColor, document.White)
	if err != nil {
		return document.Invalidf(op, "%v", err)
	}
	borderColor, err := parseColor(opts.BorderColor, document.Black)
	if err != nil {
		return document.Invalidf(op, "%v", err)
	}
	borderWidth := opts.BorderWidth
	if borderWidth <= 0 {
		borderWidth = 1
	}

	return document.WrapEngine(op, r.doc.ApplyOverlay(page+1, func(ov *engine.Overlay) error {
		ov.FillRect(rect, fillColor)
		ov.StrokeRect(rect, borderColor, borderWidth)

		maxWidth := rect.Width() - 2*padding
		if maxWidth <= 0 {
			return fmt.Errorf("padding %.1f leaves no room for text", padding)
		}
		lines := wrapText(ov, font, size, text, maxWidth)
		y := rect.URY - padding - size
		for _, line := range lines {
			if y < rect.LLY+padding {
				break
			}
			ov.Text(rect.LLX+padding, y, font, size, textColor, line)
			y -= size * 1.3
		}
		return nil
	}))
}

// InsertMultiFont draws a sequence of styled fragments on one line
// starting at (x, y), advancing x by each fragment's measured width.
func (r *RichTextEditor) InsertMultiFont(page int, x, y float64, fragments []Fragment) error {
	const op = "insert_multifont"
	if err := checkPage(op, r.doc, page); err != nil {
		return err
	}
	if len(fragments) == 0 {
		return document.Invalidf(op, "no fragments given")
	}
	for i, f := range fragments {
		if f.Text == "" {
			return document.Invalidf(op, "fragment %d has empty text", i)
		}
	}

	return document.WrapEngine(op, r.doc.ApplyOverlay(page+1, func(ov *engine.Overlay) error {
		cursor := x
		for _, f := range fragments {
			font := engine.BuiltinVariant(f.Font, f.Bold, f.Italic)
			size := f.Size
			if size <= 0 {
				size = 11
			}
			c, err := parseColor(f.Color, document.Black)
			if err != nil {
				return err
			}
			ov.Text(cursor, y, font, size, c, f.Text)
			cursor += ov.TextWidth(font, size, f.Text)
		}
		return nil
	}))
}

// mdBlock is one renderable block parsed from Markdown.
type mdBlock struct {
	fragments []Fragment
	size      float64
	bold      bool
	bullet    bool
	spacing   float64
}

// InsertMarkdown parses Markdown and renders headings, paragraphs,
// emphasis, and bullet lists into rect, top-down with word wrapping.
func (r *RichTextEditor) InsertMarkdown(page int, rect document.Rect, markdown string) error {
	const op = "insert_markdown"
	if err := checkPage(op, r.doc, page); err != nil {
		return err
	}
	if !rect.Valid() {
		return document.Invalidf(op, "rect %.1fx%.1f must have positive area", rect.Width(), rect.Height())
	}
	if strings.TrimSpace(markdown) == "" {
		return document.Invalidf(op, "markdown is empty")
	}

	blocks := parseMarkdownBlocks([]byte(markdown))
	if len(blocks) == 0 {
		return document.Invalidf(op, "markdown contains no renderable blocks")
	}

	return document.WrapEngine(op, r.doc.ApplyOverlay(page+1, func(ov *engine.Overlay) error {
		y := rect.URY
		for _, b := range blocks {
			y -= b.size
			if y < rect.LLY {
				break
			}
			y = renderBlock(ov, rect, y, b)
			y -= b.spacing
		}
		return nil
	}))
}

func renderBlock(ov *engine.Overlay, rect document.Rect, y float64, b mdBlock) float64 {
	x := rect.LLX
	if b.bullet {
		ov.Text(x, y, "Helvetica", b.size, document.Black, "•")
		x += b.size
	}
	cursor := x
	for _, f := range b.fragments {
		font := engine.BuiltinVariant("helvetica", f.Bold || b.bold, f.Italic)
		words := strings.Fields(f.Text)
		for i, word := range words {
			chunk := word
			if i < len(words)-1 || strings.HasSuffix(f.Text, " ") {
				chunk += " "
			}
			w := ov.TextWidth(font, b.size, chunk)
			if cursor+w > rect.URX && cursor > x {
				cursor = x
				y -= b.size * 1.3
				if y < rect.LLY {
					return y
				}
			}
			ov.Text(cursor, y, font, b.size, document.Black, chunk)
			cursor += w
		}
	}
	return y
}

// wrapText greedily breaks text into lines no wider than maxWidth.
// Newlines in the input force line breaks. A single word wider than
// maxWidth gets its own line rather than being split.
func wrapText(ov *engine.Overlay, font string, size float64, text string, maxWidth float64) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := words[0]
		for _, word := range words[1:] {
			candidate := line + " " + word
			if ov.TextWidth(font, size, candidate) > maxWidth {
				lines = append(lines, line)
				line = word
				continue
			}
			line = candidate
		}
		lines = append(lines, line)
	}
	return lines
}

var headingSizes = map[int]float64{1: 18, 2: 15, 3: 13}

func parseMarkdownBlocks(src []byte) []mdBlock {
	md := goldmark.New()
	root := md.Parser().Parse(gmtext.NewReader(src))

	var blocks []mdBlock
	for node := root.FirstChild(); node != nil; node = node.NextSibling() {
		switch n := node.(type) {
		case *ast.Heading:
			size, ok := headingSizes[n.Level]
			if !ok {
				size = 12
			}
			blocks = append(blocks, mdBlock{
				fragments: inlineFragments(n, src, false, false),
				size:      size,
				bold:      true,
				spacing:   size * 0.6,
			})
		case *ast.Paragraph:
			blocks = append(blocks, mdBlock{
				fragments: inlineFragments(n, src, false, false),
				size:      11,
				spacing:   6,
			})
		case *ast.List:
			for item := n.FirstChild(); item != nil; item = item.NextSibling() {
				blocks = append(blocks, mdBlock{
					fragments: inlineFragments(item, src, false, false),
					size:      11,
					bullet:    true,
					spacing:   3,
				})
			}
		}
	}
	return blocks
}

// inlineFragments flattens an inline tree into styled fragments,
// composing emphasis levels into bold/italic flags.
func inlineFragments(node ast.Node, src []byte, bold, italic bool) []Fragment {
	var frags []Fragment
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch n := child.(type) {
		case *ast.Text:
			s := string(n.Segment.Value(src))
			if s != "" {
				frags = append(frags, Fragment{Text: s + " ", Bold: bold, Italic: italic})
			}
		case *ast.Emphasis:
			b, i := bold, italic
			if n.Level >= 2 {
				b = true
			} else {
				i = true
			}
			frags = append(frags, inlineFragments(n, src, b, i)...)
		default:
			frags = append(frags, inlineFragments(n, src, bold, italic)...)
		}
	}
	return frags
}

// namedColors covers the color names accepted by the rich text and
// annotation endpoints.
var namedColors = map[string]document.Color{
	"black":  {R: 0, G: 0, B: 0},
	"white":  {R: 1, G: 1, B: 1},
	"red":    {R: 1, G: 0, B: 0},
	"green":  {R: 0, G: 0.5, B: 0},
	"blue":   {R: 0, G: 0, B: 1},
	"yellow": {R: 1, G: 1, B: 0},
	"orange": {R: 1, G: 0.65, B: 0},
	"purple": {R: 0.5, G: 0, B: 0.5},
	"gray":   {R: 0.5, G: 0.5, B: 0.5},
	"grey":   {R: 0.5, G: 0.5, B: 0.5},
}

// parseColor accepts a named color, #rgb, or #rrggbb. Empty input
// yields fallback.
func parseColor(s string, fallback document.Color) (document.Color, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return fallback, nil
	}
	if c, ok := namedColors[s]; ok {
		return c, nil
	}
	if !strings.HasPrefix(s, "#") {
		return document.Color{}, fmt.Errorf("unknown color %q", s)
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return document.Color{}, fmt.Errorf("invalid hex color %q", s)
	}
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		return document.Color{}, fmt.Errorf("invalid hex color %q", s)
	}
	return document.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}, nil
}
