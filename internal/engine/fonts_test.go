package engine

import "testing"

func TestMatchBuiltinFont(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want string
	}{
		{"Helvetica", "Helvetica"},
		{"Times-Roman", "Times-Roman"},
		{"ZapfDingbats", "ZapfDingbats"},
		{"Arial", "Helvetica"},
		{"Arial-BoldMT", "Helvetica-Bold"},
		{"ArialMT-ItalicMT", "Helvetica-Oblique"},
		{"TimesNewRomanPSMT", "Times-Roman"},
		{"TimesNewRomanPS-BoldItalicMT", "Times-BoldItalic"},
		{"ABCDEF+Calibri-Bold", "Helvetica-Bold"},
		{"Consolas", "Courier"},
		{"LiberationMono-Bold", "Courier-Bold"},
		{"Verdana-Italic", "Helvetica-Oblique"},
		{"Georgia", "Times-Roman"},
		{"Symbol", "Symbol"},
		{"SomeUnknownFace", "Helvetica"},
		{"UnknownFace-Black", "Helvetica-Bold"},
	}
	for _, tt := range tests {
		if got := MatchBuiltinFont(tt.name); got != tt.want {
			t.Errorf("MatchBuiltinFont(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestBuiltinVariant(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		bold   bool
		italic bool
		want   string
	}{
		{"Arial-Bold", false, false, "Helvetica"},
		{"Arial", true, true, "Helvetica-BoldOblique"},
		{"TimesNewRoman", true, false, "Times-Bold"},
		{"Times-Italic", false, false, "Times-Roman"},
		{"Courier", false, true, "Courier-Oblique"},
		{"Symbol", true, true, "Symbol"},
	}
	for _, tt := range tests {
		if got := BuiltinVariant(tt.name, tt.bold, tt.italic); got != tt.want {
			t.Errorf("BuiltinVariant(%q, %v, %v) = %q, want %q",
				tt.name, tt.bold, tt.italic, got, tt.want)
		}
	}
}

func TestCoreFont(t *testing.T) {
	t.Parallel()

	tests := []struct {
		builtin    string
		wantFamily string
		wantStyle  string
	}{
		{"Helvetica", "Helvetica", ""},
		{"Helvetica-Bold", "Helvetica", "B"},
		{"Helvetica-BoldOblique", "Helvetica", "BI"},
		{"Times-Roman", "Times", ""},
		{"Times-Italic", "Times", "I"},
		{"Times-BoldItalic", "Times", "BI"},
		{"Courier-Oblique", "Courier", "I"},
		{"ZapfDingbats", "ZapfDingbats", ""},
	}
	for _, tt := range tests {
		family, style := CoreFont(tt.builtin)
		if family != tt.wantFamily || style != tt.wantStyle {
			t.Errorf("CoreFont(%q) = (%q, %q), want (%q, %q)",
				tt.builtin, family, style, tt.wantFamily, tt.wantStyle)
		}
	}
}

func TestNormalizeFontName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want string
	}{
		{"ABCDEF+Arial-BoldMT", "arialboldmt"},
		{"Times New Roman", "timesnewroman"},
		{"Courier_New", "couriernew"},
		{"Helvetica", "helvetica"},
		// A plus sign not at the subset-prefix position is kept.
		{"Odd+Name", "odd+name"},
	}
	for _, tt := range tests {
		if got := normalizeFontName(tt.name); got != tt.want {
			t.Errorf("normalizeFontName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
