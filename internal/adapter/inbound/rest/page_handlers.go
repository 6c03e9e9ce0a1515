package rest

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/OthmaneBlial/pdf-editor-offline/internal/domain/document"
	"github.com/OthmaneBlial/pdf-editor-offline/internal/domain/session"
	"github.com/OthmaneBlial/pdf-editor-offline/internal/editor"
)

// pageRangeError reports an out-of-range page index in the same shape
// the editors use.
func pageRangeError(page, bound int) error {
	return document.InvalidIndex("render_preview", "page", page, bound)
}

func (h *Handler) handlePageCount(w http.ResponseWriter, r *http.Request) {
	id := h.pathParam(r, "id")
	var count int
	err := h.coordinator.Inspect(r.Context(), id, func(s *session.Session) error {
		count = s.Doc.PageCount()
		return nil
	})
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondData(w, http.StatusOK, map[string]int{"page_count": count})
}

// handlePagePreview renders one page as PNG. The zoom factor defaults
// to 1 and is capped at the configured maximum.
func (h *Handler) handlePagePreview(w http.ResponseWriter, r *http.Request) {
	id := h.pathParam(r, "id")
	page, err := h.pathIndex(r, "n")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	zoom, err := queryFloat(r, "zoom", 1)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if zoom <= 0 {
		h.respondError(w, http.StatusBadRequest, "zoom must be positive")
		return
	}
	if zoom > h.maxZoom {
		zoom = h.maxZoom
	}

	var png []byte
	err = h.coordinator.Inspect(r.Context(), id, func(s *session.Session) error {
		if page >= s.Doc.PageCount() {
			return pageRangeError(page, s.Doc.PageCount())
		}
		var renderErr error
		png, renderErr = s.Doc.RenderPagePNG(page+1, zoom)
		return renderErr
	})
	h.recordOp("render_preview", err)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(png)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (h *Handler) handlePageDelete(w http.ResponseWriter, r *http.Request) {
	id := h.pathParam(r, "id")
	page, err := h.pathIndex(r, "n")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var remaining int
	err = h.coordinator.Mutate(r.Context(), id, func(s *session.Session) error {
		if err := s.Editors.Pages.DeletePage(page); err != nil {
			return err
		}
		remaining = s.Doc.PageCount()
		return nil
	})
	h.recordOp("delete_page", err)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondData(w, http.StatusOK, map[string]int{"page_count": remaining})
}

type rotateRequest struct {
	Degrees int `json:"degrees" validate:"required"`
}

func (h *Handler) handlePageRotate(w http.ResponseWriter, r *http.Request) {
	id := h.pathParam(r, "id")
	page, err := h.pathIndex(r, "n")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req rotateRequest
	if err := h.readJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	err = h.coordinator.Mutate(r.Context(), id, func(s *session.Session) error {
		return s.Editors.Pages.RotatePage(page, req.Degrees)
	})
	h.recordOp("rotate_page", err)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondMessage(w, http.StatusOK, "page rotated")
}

type duplicateRequest struct {
	InsertAt *int `json:"insert_at"`
}

func (h *Handler) handlePageDuplicate(w http.ResponseWriter, r *http.Request) {
	id := h.pathParam(r, "id")
	page, err := h.pathIndex(r, "n")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req duplicateRequest
	if err := h.readJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var insertedAt, count int
	err = h.coordinator.Mutate(r.Context(), id, func(s *session.Session) error {
		at, err := s.Editors.Pages.DuplicatePage(page, req.InsertAt)
		if err != nil {
			return err
		}
		insertedAt = at
		count = s.Doc.PageCount()
		return nil
	})
	h.recordOp("duplicate_page", err)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondData(w, http.StatusOK, map[string]int{
		"inserted_at": insertedAt,
		"page_count":  count,
	})
}

type resizeRequest struct {
	Format string  `json:"format"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (h *Handler) handlePageResize(w http.ResponseWriter, r *http.Request) {
	id := h.pathParam(r, "id")
	page, err := h.pathIndex(r, "n")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req resizeRequest
	if err := h.readJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	err = h.coordinator.Mutate(r.Context(), id, func(s *session.Session) error {
		return s.Editors.Pages.ResizePage(page, req.Format, req.Width, req.Height)
	})
	h.recordOp("resize_page", err)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondMessage(w, http.StatusOK, "page resized")
}

type cropRequest struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

func (h *Handler) handlePageCrop(w http.ResponseWriter, r *http.Request) {
	id := h.pathParam(r, "id")
	page, err := h.pathIndex(r, "n")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req cropRequest
	if err := h.readJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	err = h.coordinator.Mutate(r.Context(), id, func(s *session.Session) error {
		return s.Editors.Pages.CropPage(page, req.Left, req.Top, req.Right, req.Bottom)
	})
	h.recordOp("crop_page", err)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondMessage(w, http.StatusOK, "page cropped")
}

type extractRequest struct {
	Pages []int `json:"pages" validate:"required,min=1"`
}

// handlePagesExtract builds a new PDF from the requested pages and
// serves it. The source document is not mutated.
func (h *Handler) handlePagesExtract(w http.ResponseWriter, r *http.Request) {
	id := h.pathParam(r, "id")
	var req extractRequest
	if err := h.readJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	err := h.coordinator.Inspect(r.Context(), id, func(s *session.Session) error {
		path, err := s.Editors.Pages.ExtractPages(req.Pages)
		if err != nil {
			return err
		}
		defer os.Remove(path)
		return servePDF(w, path, "extracted.pdf")
	})
	h.recordOp("extract_pages", err)
	if err != nil {
		h.respondDomainError(w, err)
	}
}

// handlePagesInsertFile merges an uploaded PDF into the document at an
// optional position (form field "position"; omitted means append).
func (h *Handler) handlePagesInsertFile(w http.ResponseWriter, r *http.Request) {
	id := h.pathParam(r, "id")
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	var position *int
	if raw := r.FormValue("position"); raw != "" {
		n, convErr := strconv.Atoi(raw)
		if convErr != nil {
			h.respondError(w, http.StatusBadRequest, "invalid position field")
			return
		}
		position = &n
	}

	tempPath, written, err := h.spoolUpload(file)
	if err != nil {
		h.logger.Error("failed to spool upload", "error", err)
		h.respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	defer os.Remove(tempPath)
	if written == 0 {
		h.respondError(w, http.StatusBadRequest, "uploaded file is empty")
		return
	}

	var inserted, at, count int
	err = h.coordinator.Mutate(r.Context(), id, func(s *session.Session) error {
		var opErr error
		inserted, at, opErr = s.Editors.Pages.InsertFromFile(tempPath, position)
		if opErr != nil {
			return opErr
		}
		count = s.Doc.PageCount()
		return nil
	})
	h.recordOp("insert_from_file", err)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondData(w, http.StatusOK, map[string]int{
		"inserted_pages": inserted,
		"inserted_at":    at,
		"page_count":     count,
	})
}

func (h *Handler) handleRemoveBlank(w http.ResponseWriter, r *http.Request) {
	id := h.pathParam(r, "id")
	var removed []int
	var count int
	err := h.coordinator.Mutate(r.Context(), id, func(s *session.Session) error {
		var opErr error
		removed, opErr = s.Editors.Pages.RemoveBlankPages()
		if opErr != nil {
			return opErr
		}
		count = s.Doc.PageCount()
		return nil
	})
	h.recordOp("remove_blank_pages", err)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	if removed == nil {
		removed = []int{}
	}
	h.respondData(w, http.StatusOK, map[string]any{
		"removed_pages": removed,
		"page_count":    count,
	})
}

type numberingRequest struct {
	Style    string `json:"style"`
	Position string `json:"position"`
	Start    int    `json:"start"`
	Prefix   string `json:"prefix"`
	Suffix   string `json:"suffix"`
}

func (h *Handler) handlePageNumbering(w http.ResponseWriter, r *http.Request) {
	id := h.pathParam(r, "id")
	var req numberingRequest
	if err := h.readJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	err := h.coordinator.Mutate(r.Context(), id, func(s *session.Session) error {
		return s.Editors.Pages.AddPageNumbers(editor.NumberingOptions{
			Style:    req.Style,
			Position: req.Position,
			Start:    req.Start,
			Prefix:   req.Prefix,
			Suffix:   req.Suffix,
		})
	})
	h.recordOp("add_page_numbers", err)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondMessage(w, http.StatusOK, "page numbers added")
}

type headerFooterRequest struct {
	Header string `json:"header"`
	Footer string `json:"footer"`
}

func (h *Handler) handleHeaderFooter(w http.ResponseWriter, r *http.Request) {
	id := h.pathParam(r, "id")
	var req headerFooterRequest
	if err := h.readJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	err := h.coordinator.Mutate(r.Context(), id, func(s *session.Session) error {
		return s.Editors.Pages.AddHeaderFooter(req.Header, req.Footer)
	})
	h.recordOp("add_header_footer", err)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondMessage(w, http.StatusOK, "header and footer added")
}

// servePDF streams a PDF file as an attachment.
func servePDF(w http.ResponseWriter, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if info, err := f.Stat(); err == nil {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", info.Size()))
	}
	w.WriteHeader(http.StatusOK)
	_, err = io.Copy(w, f)
	return err
}
