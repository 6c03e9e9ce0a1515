package engine

import (
	"fmt"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/OthmaneBlial/pdf-editor-offline/internal/domain/document"
)

// ReadMetadata returns the document information dictionary. A missing
// Info dictionary yields empty metadata, not an error.
func (d *Document) ReadMetadata() (document.Metadata, error) {
	if d.closed {
		return document.Metadata{}, ErrClosed
	}
	var meta document.Metadata
	info, err := d.infoDict(d.ctx, false)
	if err != nil || info == nil {
		return meta, err
	}
	meta.Title = stringEntry(d.ctx, info, "Title")
	meta.Author = stringEntry(d.ctx, info, "Author")
	meta.Subject = stringEntry(d.ctx, info, "Subject")
	meta.Keywords = stringEntry(d.ctx, info, "Keywords")
	meta.Creator = stringEntry(d.ctx, info, "Creator")
	meta.Producer = stringEntry(d.ctx, info, "Producer")
	return meta, nil
}

// WriteMetadata applies the non-nil fields of up to the information
// dictionary and refreshes ModDate.
func (d *Document) WriteMetadata(up document.MetadataUpdate) error {
	return d.withContext(func(ctx *model.Context) error {
		info, err := d.infoDict(ctx, true)
		if err != nil {
			return err
		}
		setInfoField(info, "Title", up.Title)
		setInfoField(info, "Author", up.Author)
		setInfoField(info, "Subject", up.Subject)
		setInfoField(info, "Keywords", up.Keywords)
		info["ModDate"] = types.StringLiteral(pdfDate(time.Now().UTC()))
		return nil
	})
}

func setInfoField(info types.Dict, key string, val *string) {
	if val == nil {
		return
	}
	if *val == "" {
		delete(info, key)
		return
	}
	info[key] = types.StringLiteral(*val)
}

// infoDict resolves the trailer's Info dictionary, creating it when
// create is set and the document has none.
func (d *Document) infoDict(ctx *model.Context, create bool) (types.Dict, error) {
	if ctx.Info != nil {
		resolved, err := ctx.Dereference(*ctx.Info)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve info dictionary: %w", err)
		}
		if info, ok := resolved.(types.Dict); ok {
			return info, nil
		}
	}
	if !create {
		return nil, nil
	}
	info := types.NewDict()
	ref, err := ctx.IndRefForNewObject(info)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate info dictionary: %w", err)
	}
	ctx.Info = ref
	return info, nil
}

// pdfDate formats a time as a PDF date string, e.g. D:20240131093000Z.
func pdfDate(t time.Time) string {
	return "D:" + t.Format("20060102150405") + "Z"
}
