package editor

import (
	"github.com/OthmaneBlial/pdf-editor-offline/internal/domain/document"
	"github.com/OthmaneBlial/pdf-editor-offline/internal/engine"
)

// MetadataEditor reads and writes the document information dictionary.
type MetadataEditor struct {
	doc *engine.Document
}

// Read returns the current metadata. Missing fields are empty strings.
func (m *MetadataEditor) Read() (document.Metadata, error) {
	const op = "get_metadata"
	if m.doc.Closed() {
		return document.Metadata{}, document.Invalidf(op, "document handle is closed")
	}
	meta, err := m.doc.ReadMetadata()
	if err != nil {
		return document.Metadata{}, document.WrapEngine(op, err)
	}
	return meta, nil
}

// Update applies the non-nil fields of up and returns the resulting
// metadata. An explicit empty string clears a field.
func (m *MetadataEditor) Update(up document.MetadataUpdate) (document.Metadata, error) {
	const op = "update_metadata"
	if m.doc.Closed() {
		return document.Metadata{}, document.Invalidf(op, "document handle is closed")
	}
	if up.Title == nil && up.Author == nil && up.Subject == nil && up.Keywords == nil {
		return document.Metadata{}, document.Invalidf(op, "no metadata fields given")
	}
	if err := m.doc.WriteMetadata(up); err != nil {
		return document.Metadata{}, document.WrapEngine(op, err)
	}
	return m.Read()
}
