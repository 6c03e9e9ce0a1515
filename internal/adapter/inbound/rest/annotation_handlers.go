package rest

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/OthmaneBlial/pdf-editor-offline/internal/domain/document"
	"github.com/OthmaneBlial/pdf-editor-offline/internal/domain/session"
	"github.com/OthmaneBlial/pdf-editor-offline/internal/editor"
)

func (h *Handler) handleAnnotationsList(w http.ResponseWriter, r *http.Request) {
	id := h.pathParam(r, "id")
	page, err := queryInt(r, "page", 0)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var annots []document.AnnotationDescriptor
	err = h.coordinator.Inspect(r.Context(), id, func(s *session.Session) error {
		var opErr error
		annots, opErr = s.Editors.Annots.List(page)
		return opErr
	})
	h.recordOp("list_annotations", err)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	if annots == nil {
		annots = []document.AnnotationDescriptor{}
	}
	h.respondData(w, http.StatusOK, map[string]any{"annotations": annots})
}

type vertexAnnotationRequest struct {
	Page   *int                `json:"page" validate:"required"`
	Points []document.Point    `json:"points" validate:"required,min=2"`
	Style  editor.StyleOptions `json:"style"`
}

func (h *Handler) handleAnnotationPolygon(w http.ResponseWriter, r *http.Request) {
	h.addVertexAnnotation(w, r, "add_polygon", func(s *session.Session, req *vertexAnnotationRequest) (document.AnnotationDescriptor, error) {
		return s.Editors.Annots.AddPolygon(*req.Page, req.Points, req.Style)
	})
}

func (h *Handler) handleAnnotationPolyline(w http.ResponseWriter, r *http.Request) {
	h.addVertexAnnotation(w, r, "add_polyline", func(s *session.Session, req *vertexAnnotationRequest) (document.AnnotationDescriptor, error) {
		return s.Editors.Annots.AddPolyline(*req.Page, req.Points, req.Style)
	})
}

func (h *Handler) addVertexAnnotation(w http.ResponseWriter, r *http.Request, op string,
	add func(*session.Session, *vertexAnnotationRequest) (document.AnnotationDescriptor, error)) {
	id := h.pathParam(r, "id")
	var req vertexAnnotationRequest
	if err := h.readJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var desc document.AnnotationDescriptor
	err := h.coordinator.Mutate(r.Context(), id, func(s *session.Session) error {
		var opErr error
		desc, opErr = add(s, &req)
		return opErr
	})
	h.recordOp(op, err)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondData(w, http.StatusCreated, desc)
}

type highlightRequest struct {
	Page    *int             `json:"page" validate:"required"`
	Points  []document.Point `json:"points" validate:"required,min=2"`
	Width   float64          `json:"width"`
	Color   string           `json:"color"`
	Opacity float64          `json:"opacity"`
}

// handleAnnotationHighlight builds a freehand highlight from a stroke
// path, one quad per segment.
func (h *Handler) handleAnnotationHighlight(w http.ResponseWriter, r *http.Request) {
	id := h.pathParam(r, "id")
	var req highlightRequest
	if err := h.readJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var desc document.AnnotationDescriptor
	err := h.coordinator.Mutate(r.Context(), id, func(s *session.Session) error {
		var opErr error
		desc, opErr = s.Editors.Annots.AddFreehandHighlight(*req.Page, req.Points, req.Width, req.Color, req.Opacity)
		return opErr
	})
	h.recordOp("add_freehand_highlight", err)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondData(w, http.StatusCreated, desc)
}

type stampRequest struct {
	Page  *int                `json:"page" validate:"required"`
	Rect  document.Rect       `json:"rect"`
	Text  string              `json:"text" validate:"required"`
	Style editor.StyleOptions `json:"style"`
}

func (h *Handler) handleAnnotationStamp(w http.ResponseWriter, r *http.Request) {
	id := h.pathParam(r, "id")
	var req stampRequest
	if err := h.readJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var desc document.AnnotationDescriptor
	err := h.coordinator.Mutate(r.Context(), id, func(s *session.Session) error {
		var opErr error
		desc, opErr = s.Editors.Annots.AddStamp(*req.Page, req.Rect, req.Text, req.Style)
		return opErr
	})
	h.recordOp("add_stamp", err)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondData(w, http.StatusCreated, desc)
}

type noteRequest struct {
	Page *int           `json:"page" validate:"required"`
	At   document.Point `json:"at"`
	Text string         `json:"text" validate:"required"`
	Icon string         `json:"icon"`
}

func (h *Handler) handleAnnotationNote(w http.ResponseWriter, r *http.Request) {
	id := h.pathParam(r, "id")
	var req noteRequest
	if err := h.readJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var desc document.AnnotationDescriptor
	err := h.coordinator.Mutate(r.Context(), id, func(s *session.Session) error {
		var opErr error
		desc, opErr = s.Editors.Annots.AddNote(*req.Page, req.At, req.Text, req.Icon)
		return opErr
	})
	h.recordOp("add_note", err)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondData(w, http.StatusCreated, desc)
}

// handleAnnotationAppearance patches colors, opacity, or border width
// of an existing annotation.
func (h *Handler) handleAnnotationAppearance(w http.ResponseWriter, r *http.Request) {
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
	var patch editor.AppearancePatch
	if err := h.readJSON(r, &patch); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	err = h.coordinator.Mutate(r.Context(), id, func(s *session.Session) error {
		return s.Editors.Annots.SetAppearance(page, index, patch)
	})
	h.recordOp("set_annotation_appearance", err)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondMessage(w, http.StatusOK, "annotation updated")
}

func (h *Handler) handleAnnotationDelete(w http.ResponseWriter, r *http.Request) {
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
	err = h.coordinator.Mutate(r.Context(), id, func(s *session.Session) error {
		return s.Editors.Annots.Delete(page, index)
	})
	h.recordOp("delete_annotation", err)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondMessage(w, http.StatusOK, "annotation deleted")
}

// handleFlattenAnnotations bakes every annotation into page content
// and removes the annotation objects.
func (h *Handler) handleFlattenAnnotations(w http.ResponseWriter, r *http.Request) {
	id := h.pathParam(r, "id")
	flattened := 0
	err := h.coordinator.Mutate(r.Context(), id, func(s *session.Session) error {
		var opErr error
		flattened, opErr = s.Editors.Annots.Flatten()
		return opErr
	})
	h.recordOp("flatten_annotations", err)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondData(w, http.StatusOK, map[string]any{"annotations_flattened": flattened})
}

// handleAttachFile embeds an uploaded file into the document. The
// attachment is document-level, not bound to a page.
func (h *Handler) handleAttachFile(w http.ResponseWriter, r *http.Request) {
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

	tempPath, written, err := h.spoolNamedUpload(file, header.Filename)
	if err != nil {
		h.logger.Error("failed to spool attachment", "error", err)
		h.respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	defer os.RemoveAll(filepath.Dir(tempPath))
	if written == 0 {
		h.respondError(w, http.StatusBadRequest, "uploaded file is empty")
		return
	}

	err = h.coordinator.Mutate(r.Context(), id, func(s *session.Session) error {
		return s.Editors.Annots.AttachFile(tempPath)
	})
	h.recordOp("attach_file", err)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondMessage(w, http.StatusOK, "file attached at document level")
}
