package engine

import "strings"

// BuiltinFonts are the 14 standard PDF fonts every viewer must provide.
// Replacement text is always rendered in one of these.
var BuiltinFonts = []string{
	"Times-Roman", "Times-Bold", "Times-Italic", "Times-BoldItalic",
	"Helvetica", "Helvetica-Bold", "Helvetica-Oblique", "Helvetica-BoldOblique",
	"Courier", "Courier-Bold", "Courier-Oblique", "Courier-BoldOblique",
	"Symbol", "ZapfDingbats",
}

// fontFamilies maps lowercase keywords found in embedded font names to
// a builtin family root. Checked in order so serif hints beat the
// sans-serif default.
var fontFamilies = []struct {
	keyword string
	family  string
}{
	{"times", "Times"},
	{"serif", "Times"},
	{"georgia", "Times"},
	{"garamond", "Times"},
	{"book", "Times"},
	{"courier", "Courier"},
	{"mono", "Courier"},
	{"consolas", "Courier"},
	{"helvetica", "Helvetica"},
	{"arial", "Helvetica"},
	{"verdana", "Helvetica"},
	{"tahoma", "Helvetica"},
	{"calibri", "Helvetica"},
	{"sans", "Helvetica"},
	{"symbol", "Symbol"},
	{"dingbat", "ZapfDingbats"},
}

// MatchBuiltinFont maps an arbitrary (usually embedded, often
// subset-prefixed) font name onto the closest builtin font. Exact
// builtin names map to themselves; otherwise the family is picked by
// keyword and bold/italic flags are composed back on. Unknown names
// fall back to Helvetica.
func MatchBuiltinFont(name string) string {
	normalized := normalizeFontName(name)
	for _, builtin := range BuiltinFonts {
		if normalized == normalizeFontName(builtin) {
			return builtin
		}
	}

	bold := strings.Contains(normalized, "bold") || strings.Contains(normalized, "black") ||
		strings.Contains(normalized, "heavy")
	italic := strings.Contains(normalized, "italic") || strings.Contains(normalized, "oblique")

	family := "Helvetica"
	for _, f := range fontFamilies {
		if strings.Contains(normalized, f.keyword) {
			family = f.family
			break
		}
	}
	return composeBuiltin(family, bold, italic)
}

func composeBuiltin(family string, bold, italic bool) string {
	switch family {
	case "Times":
		switch {
		case bold && italic:
			return "Times-BoldItalic"
		case bold:
			return "Times-Bold"
		case italic:
			return "Times-Italic"
		default:
			return "Times-Roman"
		}
	case "Courier", "Helvetica":
		switch {
		case bold && italic:
			return family + "-BoldOblique"
		case bold:
			return family + "-Bold"
		case italic:
			return family + "-Oblique"
		default:
			return family
		}
	case "Symbol", "ZapfDingbats":
		return family
	default:
		return "Helvetica"
	}
}

// normalizeFontName lowercases a font name and strips separators and
// subset prefixes like "ABCDEF+".
func normalizeFontName(name string) string {
	if i := strings.Index(name, "+"); i >= 0 && i == 6 {
		name = name[i+1:]
	}
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "-", "")
	name = strings.ReplaceAll(name, "_", "")
	name = strings.ReplaceAll(name, " ", "")
	return name
}

// BuiltinVariant matches name to a builtin family and re-composes it
// with explicit bold/italic flags, overriding any flags implied by the
// name itself.
func BuiltinVariant(name string, bold, italic bool) string {
	base := MatchBuiltinFont(name)
	family := strings.SplitN(base, "-", 2)[0]
	return composeBuiltin(family, bold, italic)
}

// CoreFont translates a builtin font name into the family and style
// codes the overlay builder understands.
func CoreFont(builtin string) (family, style string) {
	parts := strings.SplitN(builtin, "-", 2)
	family = parts[0]
	if len(parts) == 1 {
		return family, ""
	}
	variant := parts[1]
	switch variant {
	case "Roman":
		return family, ""
	case "Bold":
		return family, "B"
	case "Italic", "Oblique":
		return family, "I"
	case "BoldItalic", "BoldOblique":
		return family, "BI"
	default:
		return family, ""
	}
}
