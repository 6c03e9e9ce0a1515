package editor

import (
	"strings"
	"testing"

	"github.com/OthmaneBlial/pdf-editor-offline/internal/domain/document"
	"github.com/OthmaneBlial/pdf-editor-offline/internal/engine"
)

func TestParseColor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want document.Color
	}{
		{"red", document.Color{R: 1}},
		{"WHITE", document.Color{R: 1, G: 1, B: 1}},
		{"#000000", document.Color{}},
		{"#ff0000", document.Color{R: 1}},
		{"#f00", document.Color{R: 1}},
		{" blue ", document.Color{B: 1}},
	}
	for _, tt := range tests {
		got, err := parseColor(tt.in, document.Black)
		if err != nil {
			t.Errorf("parseColor(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseColor(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestParseColor_Fallback(t *testing.T) {
	t.Parallel()

	fallback := document.Color{R: 0.2, G: 0.4, B: 0.6}
	got, err := parseColor("", fallback)
	if err != nil {
		t.Fatalf("parseColor(\"\") error: %v", err)
	}
	if got != fallback {
		t.Errorf("parseColor(\"\") = %+v, want fallback %+v", got, fallback)
	}
}

func TestParseColor_Invalid(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"notacolor", "#12", "#12345", "#gghhii"} {
		if _, err := parseColor(in, document.Black); err == nil {
			t.Errorf("parseColor(%q) should fail", in)
		}
	}
}

func TestWrapText(t *testing.T) {
	t.Parallel()

	ov := engine.NewOverlay(612, 792)

	// A generous width keeps everything on one line.
	lines := wrapText(ov, "Helvetica", 12, "hello world", 500)
	if len(lines) != 1 || lines[0] != "hello world" {
		t.Errorf("lines = %q, want one line", lines)
	}

	// A narrow width forces one word per line.
	lines = wrapText(ov, "Helvetica", 12, "alpha beta gamma", 30)
	if len(lines) != 3 {
		t.Errorf("len(lines) = %d, want 3: %q", len(lines), lines)
	}

	// Explicit newlines split paragraphs, empty lines survive.
	lines = wrapText(ov, "Helvetica", 12, "first\n\nsecond", 500)
	if len(lines) != 3 || lines[1] != "" {
		t.Errorf("lines = %q, want [first, empty, second]", lines)
	}
}

func TestParseMarkdownBlocks(t *testing.T) {
	t.Parallel()

	src := "# Title\n\nPlain paragraph with **bold** text.\n\n- first item\n- second item\n"
	blocks := parseMarkdownBlocks([]byte(src))
	if len(blocks) < 3 {
		t.Fatalf("len(blocks) = %d, want at least 3", len(blocks))
	}

	if !blocks[0].bold || blocks[0].size != 18 {
		t.Errorf("blocks[0] = %+v, want a bold level-1 heading block", blocks[0])
	}
	var sawBullet bool
	for _, b := range blocks {
		if b.bullet {
			sawBullet = true
		}
	}
	if !sawBullet {
		t.Error("list items should produce bullet blocks")
	}

	var sawBold bool
	for _, f := range blocks[1].fragments {
		if f.Bold && strings.Contains(f.Text, "bold") {
			sawBold = true
		}
	}
	if !sawBold {
		t.Errorf("paragraph fragments = %+v, want a bold run", blocks[1].fragments)
	}
}

func TestInsertTextBox(t *testing.T) {
	t.Parallel()

	suite := newTestSuite(t, "one")
	rect := document.Rect{LLX: 72, LLY: 500, URX: 400, URY: 700}
	err := suite.Rich.InsertTextBox(0, rect, "boxed content that should wrap over a few lines of output",
		TextBoxOptions{Font: "Helvetica", Size: 12, FillColor: "#eeeeee", Padding: 8})
	if err != nil {
		t.Fatalf("InsertTextBox() error: %v", err)
	}

	if err := suite.Rich.InsertTextBox(0, rect, "   ", TextBoxOptions{}); !isInvalid(err) {
		t.Errorf("empty text error = %v, want InvalidOperationError", err)
	}
}

func TestInsertMultiFont(t *testing.T) {
	t.Parallel()

	suite := newTestSuite(t, "one")
	fragments := []Fragment{
		{Text: "Hello ", Font: "Helvetica", Size: 14},
		{Text: "bold", Font: "Helvetica", Size: 14, Bold: true},
		{Text: " world", Font: "Times-Roman", Size: 14, Color: "red"},
	}
	if err := suite.Rich.InsertMultiFont(0, 72, 600, fragments); err != nil {
		t.Fatalf("InsertMultiFont() error: %v", err)
	}

	if err := suite.Rich.InsertMultiFont(0, 72, 600, nil); !isInvalid(err) {
		t.Errorf("empty fragments error = %v, want InvalidOperationError", err)
	}
}

func TestInsertMarkdown(t *testing.T) {
	t.Parallel()

	suite := newTestSuite(t, "one")
	rect := document.Rect{LLX: 72, LLY: 200, URX: 540, URY: 720}
	md := "# Heading\n\nSome *styled* paragraph.\n\n- point one\n- point two\n"
	if err := suite.Rich.InsertMarkdown(0, rect, md); err != nil {
		t.Fatalf("InsertMarkdown() error: %v", err)
	}
}
