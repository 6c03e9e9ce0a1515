package editor

import (
	"testing"

	"github.com/OthmaneBlial/pdf-editor-offline/internal/domain/document"
)

func TestMetadataUpdate(t *testing.T) {
	t.Parallel()

	suite := newTestSuite(t, "one")

	title := "Annual Review"
	subject := "Performance"
	meta, err := suite.Meta.Update(document.MetadataUpdate{Title: &title, Subject: &subject})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if meta.Title != title || meta.Subject != subject {
		t.Errorf("meta = %+v", meta)
	}

	// Nil fields stay untouched.
	author := "HR"
	meta, err = suite.Meta.Update(document.MetadataUpdate{Author: &author})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if meta.Title != title {
		t.Errorf("Title = %q, want unchanged %q", meta.Title, title)
	}
	if meta.Author != author {
		t.Errorf("Author = %q, want %q", meta.Author, author)
	}

	read, err := suite.Meta.Read()
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if read.Title != title || read.Author != author {
		t.Errorf("read = %+v", read)
	}

	if _, err := suite.Meta.Update(document.MetadataUpdate{}); !isInvalid(err) {
		t.Errorf("empty update error = %v, want InvalidOperationError", err)
	}
}
