package rest

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/OthmaneBlial/pdf-editor-offline/internal/domain/document"
	"github.com/OthmaneBlial/pdf-editor-offline/internal/domain/session"
)

func (h *Handler) handleImagesList(w http.ResponseWriter, r *http.Request) {
	id := h.pathParam(r, "id")
	page, err := queryInt(r, "page", 0)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var images []document.ImageInfo
	err = h.coordinator.Inspect(r.Context(), id, func(s *session.Session) error {
		var opErr error
		images, opErr = s.Editors.Images.List(page)
		return opErr
	})
	h.recordOp("list_images", err)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	if images == nil {
		images = []document.ImageInfo{}
	}
	h.respondData(w, http.StatusOK, map[string]any{"images": images})
}

// imagePlacement reads the multipart form fields shared by insert and
// replace: page, the target rect corners, and maintain_aspect.
func imagePlacement(r *http.Request) (page int, rect document.Rect, keepAspect bool, err error) {
	page, err = strconv.Atoi(r.FormValue("page"))
	if err != nil {
		return 0, document.Rect{}, false, fmt.Errorf("invalid page field")
	}
	corners := [4]float64{}
	for i, name := range []string{"llx", "lly", "urx", "ury"} {
		corners[i], err = strconv.ParseFloat(r.FormValue(name), 64)
		if err != nil {
			return 0, document.Rect{}, false, fmt.Errorf("invalid %s field", name)
		}
	}
	rect = document.Rect{LLX: corners[0], LLY: corners[1], URX: corners[2], URY: corners[3]}
	keepAspect = r.FormValue("maintain_aspect") != "false"
	return page, rect, keepAspect, nil
}

func (h *Handler) handleImageInsert(w http.ResponseWriter, r *http.Request) {
	h.placeImage(w, r, "insert_image", func(s *session.Session, page int, rect document.Rect, path string, keep bool) (document.Rect, error) {
		return s.Editors.Images.Insert(page, rect, path, keep)
	})
}

// handleImageReplace redacts the target rect before placing the new
// image over it.
func (h *Handler) handleImageReplace(w http.ResponseWriter, r *http.Request) {
	h.placeImage(w, r, "replace_image", func(s *session.Session, page int, rect document.Rect, path string, keep bool) (document.Rect, error) {
		return s.Editors.Images.Replace(page, rect, path, keep)
	})
}

func (h *Handler) placeImage(w http.ResponseWriter, r *http.Request, op string,
	place func(*session.Session, int, document.Rect, string, bool) (document.Rect, error)) {
	id := h.pathParam(r, "id")
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	page, rect, keepAspect, err := imagePlacement(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	tempPath, written, err := h.spoolNamedUpload(file, header.Filename)
	if err != nil {
		h.logger.Error("failed to spool image", "error", err)
		h.respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	defer os.RemoveAll(filepath.Dir(tempPath))
	if written == 0 {
		h.respondError(w, http.StatusBadRequest, "uploaded file is empty")
		return
	}

	var placed document.Rect
	err = h.coordinator.Mutate(r.Context(), id, func(s *session.Session) error {
		var opErr error
		placed, opErr = place(s, page, rect, tempPath, keepAspect)
		return opErr
	})
	h.recordOp(op, err)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondData(w, http.StatusOK, map[string]any{"placed": placed})
}

// handleImageExtract serves one embedded image from a page.
func (h *Handler) handleImageExtract(w http.ResponseWriter, r *http.Request) {
	id := h.pathParam(r, "id")
	index, err := h.pathIndex(r, "index")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	page, err := queryInt(r, "page", 0)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	err = h.coordinator.Inspect(r.Context(), id, func(s *session.Session) error {
		path, opErr := s.Editors.Images.Extract(page, index)
		if opErr != nil {
			return opErr
		}
		defer os.Remove(path)
		return serveImage(w, path)
	})
	h.recordOp("extract_image", err)
	if err != nil {
		h.respondDomainError(w, err)
	}
}

// handleOptimize rewrites the document with duplicate and orphaned
// objects removed, reporting the size effect.
func (h *Handler) handleOptimize(w http.ResponseWriter, r *http.Request) {
	id := h.pathParam(r, "id")
	var report document.OptimizeReport
	err := h.coordinator.Mutate(r.Context(), id, func(s *session.Session) error {
		var opErr error
		report, opErr = s.Editors.Images.Optimize()
		return opErr
	})
	h.recordOp("optimize", err)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondData(w, http.StatusOK, report)
}

// serveImage streams an extracted image with a content type derived
// from its extension.
func serveImage(w http.ResponseWriter, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	ctype := mime.TypeByExtension(filepath.Ext(path))
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ctype)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	if info, err := f.Stat(); err == nil {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", info.Size()))
	}
	w.WriteHeader(http.StatusOK)
	_, err = io.Copy(w, f)
	return err
}
