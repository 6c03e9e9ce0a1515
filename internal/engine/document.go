// Package engine wraps the pdfcpu library behind a document handle.
//
// A Document owns a working copy of the PDF on disk plus a cached
// pdfcpu context. Mutating operations run file-to-file against the
// working copy and refresh the context afterwards, so the handle and
// the file never diverge. Callers are responsible for serializing
// access; the handle itself is not safe for concurrent mutation.
package engine

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ErrClosed is returned by any operation on a closed handle.
var ErrClosed = errors.New("document handle is closed")

// Document is the live handle for one open PDF.
type Document struct {
	workPath  string
	scratch   string
	conf      *model.Configuration
	ctx       *model.Context
	pageCount int
	closed    bool
}

func newConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// Open validates srcPath as a PDF and opens a handle over a private
// working copy placed in workDir. srcPath itself is never modified.
func Open(srcPath, workDir string) (*Document, error) {
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create work dir: %w", err)
	}
	workPath := filepath.Join(workDir, uuid.NewString()+".pdf")
	if err := copyFile(srcPath, workPath); err != nil {
		return nil, fmt.Errorf("failed to stage working copy: %w", err)
	}

	conf := newConfiguration()
	if err := api.ValidateFile(workPath, conf); err != nil {
		_ = os.Remove(workPath)
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	ctx, err := api.ReadContextFile(workPath)
	if err != nil {
		_ = os.Remove(workPath)
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	return &Document{
		workPath:  workPath,
		scratch:   workPath + ".scratch",
		conf:      conf,
		ctx:       ctx,
		pageCount: ctx.PageCount,
	}, nil
}

// PageCount returns the current page count of the working copy.
func (d *Document) PageCount() int { return d.pageCount }

// WorkPath returns the path of the working copy. The file at this path
// is replaced in place by mutating operations.
func (d *Document) WorkPath() string { return d.workPath }

// ScratchDir returns a per-handle directory for derived artifacts
// (extracted images, extracted page ranges). It is created on first
// use and removed by Close.
func (d *Document) ScratchDir() (string, error) {
	if d.closed {
		return "", ErrClosed
	}
	if err := os.MkdirAll(d.scratch, 0o755); err != nil {
		return "", fmt.Errorf("failed to create scratch dir: %w", err)
	}
	return d.scratch, nil
}

// PageDim returns the media box dimensions of a page (1-based).
func (d *Document) PageDim(pageNr int) (width, height float64, err error) {
	if d.closed {
		return 0, 0, ErrClosed
	}
	dims, err := d.ctx.PageDims()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read page dimensions: %w", err)
	}
	if pageNr < 1 || pageNr > len(dims) {
		return 0, 0, fmt.Errorf("page %d out of range", pageNr)
	}
	return dims[pageNr-1].Width, dims[pageNr-1].Height, nil
}

// Refresh re-reads the working copy and updates the cached context and
// page count. Called after every file-level mutation.
func (d *Document) Refresh() error {
	if d.closed {
		return ErrClosed
	}
	ctx, err := api.ReadContextFile(d.workPath)
	if err != nil {
		return fmt.Errorf("failed to re-read document: %w", err)
	}
	d.ctx = ctx
	d.pageCount = ctx.PageCount
	return nil
}

// transform runs a file-to-file pdfcpu operation against the working
// copy through a temp file, replaces the copy atomically, and refreshes
// the cached context. On failure the working copy is left untouched.
func (d *Document) transform(op func(in, out string) error) error {
	if d.closed {
		return ErrClosed
	}
	out := d.workPath + ".tmp"
	if err := op(d.workPath, out); err != nil {
		_ = os.Remove(out)
		return err
	}
	if err := os.Rename(out, d.workPath); err != nil {
		_ = os.Remove(out)
		return fmt.Errorf("failed to swap working copy: %w", err)
	}
	return d.Refresh()
}

// withContext mutates the cached context in place, writes it back to
// the working copy, and re-reads it so cached state stays consistent.
func (d *Document) withContext(fn func(*model.Context) error) error {
	if d.closed {
		return ErrClosed
	}
	if err := fn(d.ctx); err != nil {
		return err
	}
	out := d.workPath + ".tmp"
	if err := api.WriteContextFile(d.ctx, out); err != nil {
		_ = os.Remove(out)
		return fmt.Errorf("failed to write document: %w", err)
	}
	if err := os.Rename(out, d.workPath); err != nil {
		_ = os.Remove(out)
		return fmt.Errorf("failed to swap working copy: %w", err)
	}
	return d.Refresh()
}

// SaveTo copies the working copy to dst, replacing it atomically.
func (d *Document) SaveTo(dst string) error {
	if d.closed {
		return ErrClosed
	}
	tmp := dst + ".tmp"
	if err := copyFile(d.workPath, tmp); err != nil {
		return fmt.Errorf("failed to persist document: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace persisted file: %w", err)
	}
	return nil
}

// Size returns the byte size of the working copy.
func (d *Document) Size() (int64, error) {
	if d.closed {
		return 0, ErrClosed
	}
	fi, err := os.Stat(d.workPath)
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

// Close releases the handle and removes the working copy and scratch
// artifacts. The handle is unusable afterwards.
func (d *Document) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.ctx = nil
	err := os.Remove(d.workPath)
	if rmErr := os.RemoveAll(d.scratch); rmErr != nil && err == nil {
		err = rmErr
	}
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove working files: %w", err)
	}
	return nil
}

// Closed reports whether the handle has been closed.
func (d *Document) Closed() bool { return d.closed }

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = os.Remove(dst)
		return err
	}
	return out.Close()
}
