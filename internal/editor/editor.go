// Package editor implements the feature editors that mutate a shared
// document handle: page manipulation, text processing, rich text, TOC
// and link navigation, annotations, images, and metadata.
//
// Editors are views over one handle, not copies: a mutation made
// through one editor is immediately visible to the others. They do no
// locking themselves; the session coordinator serializes access.
// Page, annotation, image, and bookmark indices are 0-based at this
// layer and validated against the handle's current extents before any
// mutation touches the document.
package editor

import (
	"github.com/OthmaneBlial/pdf-editor-offline/internal/domain/document"
	"github.com/OthmaneBlial/pdf-editor-offline/internal/engine"
)

// Suite bundles the feature editors bound to one document handle.
// Constructed once per session.
type Suite struct {
	Pages  *PageManipulator
	Text   *TextProcessor
	Rich   *RichTextEditor
	Nav    *NavigationManager
	Annots *AnnotationEnhancer
	Images *ImageProcessor
	Meta   *MetadataEditor
}

// NewSuite builds the editor set over doc. Fails if the handle is
// absent or already closed.
func NewSuite(doc *engine.Document) (*Suite, error) {
	if doc == nil || doc.Closed() {
		return nil, document.Invalidf("editor", "document handle is absent or closed")
	}
	return &Suite{
		Pages:  &PageManipulator{doc: doc},
		Text:   &TextProcessor{doc: doc},
		Rich:   &RichTextEditor{doc: doc},
		Nav:    &NavigationManager{doc: doc},
		Annots: &AnnotationEnhancer{doc: doc},
		Images: &ImageProcessor{doc: doc},
		Meta:   &MetadataEditor{doc: doc},
	}, nil
}

// checkPage validates a 0-based page index against the handle.
func checkPage(op string, doc *engine.Document, page int) error {
	if doc.Closed() {
		return document.Invalidf(op, "document handle is closed")
	}
	if page < 0 || page >= doc.PageCount() {
		return document.InvalidIndex(op, "page", page, doc.PageCount())
	}
	return nil
}
