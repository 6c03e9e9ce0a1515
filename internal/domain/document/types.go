package document

// TOCEntry is one row of the document outline. Level is 1-based nesting
// depth, Page is the 1-based destination page.
type TOCEntry struct {
	Level int    `json:"level"`
	Title string `json:"title"`
	Page  int    `json:"page"`
}

// TextSpan is one positioned run of text as extracted from a page.
// X/Y is the baseline origin of the run.
type TextSpan struct {
	Text  string  `json:"text"`
	Font  string  `json:"font"`
	Size  float64 `json:"size"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Width float64 `json:"width"`
}

// SearchMatch is one occurrence of a search term with its bounding box.
type SearchMatch struct {
	Page int    `json:"page"`
	Text string `json:"text"`
	Rect Rect   `json:"rect"`
}

// ReplaceResult reports the outcome of a text replacement. Count of
// zero is a valid result, not an error.
type ReplaceResult struct {
	Count       int    `json:"count"`
	Rects       []Rect `json:"rects"`
	FontUsed    string `json:"font_used,omitempty"`
	Approximate bool   `json:"approximate"`
}

// AnnotationDescriptor is the normalized view of a page annotation.
// Feature editors never return raw engine objects.
type AnnotationDescriptor struct {
	Index    int     `json:"index"`
	Type     string  `json:"type"`
	Rect     Rect    `json:"rect"`
	Contents string  `json:"contents,omitempty"`
	Opacity  float64 `json:"opacity,omitempty"`
}

// LinkDescriptor is the normalized view of a link annotation.
// Kind is "uri" or "internal".
type LinkDescriptor struct {
	Index int    `json:"index"`
	Kind  string `json:"kind"`
	Rect  Rect   `json:"rect"`
	URI   string `json:"uri,omitempty"`
	Page  int    `json:"page,omitempty"`
}

// ImageInfo describes one image XObject referenced by a page.
type ImageInfo struct {
	Index       int     `json:"index"`
	Name        string  `json:"name"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	BitsPerComp int     `json:"bits_per_component"`
	ColorSpace  string  `json:"color_space"`
	Filter      string  `json:"filter"`
	AspectRatio float64 `json:"aspect_ratio"`
}

// Metadata is the document information dictionary as exposed to callers.
type Metadata struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	Subject  string `json:"subject"`
	Keywords string `json:"keywords"`
	Creator  string `json:"creator,omitempty"`
	Producer string `json:"producer,omitempty"`
}

// MetadataUpdate carries the writable metadata fields. Nil pointers
// leave the corresponding field untouched.
type MetadataUpdate struct {
	Title    *string `json:"title"`
	Author   *string `json:"author"`
	Subject  *string `json:"subject"`
	Keywords *string `json:"keywords"`
}

// OptimizeReport describes the size effect of document optimization,
// measured on the persisted files.
type OptimizeReport struct {
	BytesBefore      int64   `json:"bytes_before"`
	BytesAfter       int64   `json:"bytes_after"`
	ReductionPercent float64 `json:"reduction_percent"`
}

// FontUsage maps a font name to the number of text spans using it.
type FontUsage map[string]int
