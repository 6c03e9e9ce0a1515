package rest

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/OthmaneBlial/pdf-editor-offline/internal/domain/session"
)

// documentInfo is the session view returned by lifecycle endpoints.
type documentInfo struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	PageCount    int       `json:"page_count"`
	CreatedAt    time.Time `json:"created_at"`
	LastModified time.Time `json:"last_modified"`
}

func infoOf(s *session.Session) documentInfo {
	return documentInfo{
		ID:           s.ID,
		Filename:     s.Filename,
		PageCount:    s.PageCount,
		CreatedAt:    s.CreatedAt,
		LastModified: s.LastModified,
	}
}

// handleUpload accepts a multipart PDF upload and opens a session over
// it. The temp file is removed on every failure path; on success its
// ownership transfers to the session as the storage path.
func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds the %d byte limit", h.maxUpload))
			return
		}
		h.respondError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		h.respondError(w, http.StatusBadRequest, "only .pdf files are accepted")
		return
	}

	tempPath, written, err := h.spoolUpload(file)
	if err != nil {
		h.logger.Error("failed to spool upload", "error", err)
		h.respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if written == 0 {
		_ = os.Remove(tempPath)
		h.respondError(w, http.StatusBadRequest, "uploaded file is empty")
		return
	}

	s, err := h.coordinator.Create(r.Context(), tempPath, header.Filename)
	if err != nil {
		// Create removed the temp file on load failure.
		h.respondDomainError(w, err)
		return
	}
	if h.metrics != nil {
		h.metrics.UploadBytes.Observe(float64(written))
	}
	h.respondData(w, http.StatusCreated, infoOf(s))
}

// spoolUpload copies the upload stream to a fresh temp file and
// returns its path and size. The file is removed on copy failure.
func (h *Handler) spoolUpload(src io.Reader) (string, int64, error) {
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return "", 0, err
	}
	path := filepath.Join(h.uploadDir, uuid.NewString()+".pdf")
	dst, err := os.Create(path)
	if err != nil {
		return "", 0, err
	}
	written, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", 0, err
	}
	return path, written, nil
}

// spoolNamedUpload copies the upload stream into a fresh temp
// directory, keeping the original base name. Attachments embed under
// the file's own name, so it must survive spooling.
func (h *Handler) spoolNamedUpload(src io.Reader, filename string) (string, int64, error) {
	dir := filepath.Join(h.uploadDir, uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, err
	}
	path := filepath.Join(dir, filepath.Base(filename))
	dst, err := os.Create(path)
	if err != nil {
		_ = os.RemoveAll(dir)
		return "", 0, err
	}
	written, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.RemoveAll(dir)
		return "", 0, err
	}
	return path, written, nil
}

// handleInfo returns the session descriptor. Counts as an access for
// the idle window.
func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	id := h.pathParam(r, "id")
	var info documentInfo
	err := h.coordinator.Inspect(r.Context(), id, func(s *session.Session) error {
		info = infoOf(s)
		return nil
	})
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondData(w, http.StatusOK, info)
}

// handleDelete destroys the session, closing its handle and removing
// its persisted file.
func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := h.pathParam(r, "id")
	if err := h.coordinator.Delete(r.Context(), id); err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondMessage(w, http.StatusOK, "document session deleted")
}

// handleDownload serves the persisted bytes of the session. Mutations
// persist on completion, so the persisted file always reflects the
// last finished operation. The ETag is the persistence fingerprint.
func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := h.pathParam(r, "id")
	err := h.coordinator.Inspect(r.Context(), id, func(s *session.Session) error {
		f, err := os.Open(s.StoragePath)
		if err != nil {
			return err
		}
		defer f.Close()

		etag := fmt.Sprintf(`"%016x"`, s.Fingerprint)
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return nil
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("ETag", etag)
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", s.Filename))
		if info, err := f.Stat(); err == nil {
			w.Header().Set("Content-Length", fmt.Sprintf("%d", info.Size()))
		}
		w.WriteHeader(http.StatusOK)
		_, err = io.Copy(w, f)
		return err
	})
	if err != nil {
		h.respondDomainError(w, err)
	}
}
