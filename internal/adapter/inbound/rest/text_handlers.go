package rest

import (
	"net/http"

	"github.com/OthmaneBlial/pdf-editor-offline/internal/domain/document"
	"github.com/OthmaneBlial/pdf-editor-offline/internal/domain/session"
	"github.com/OthmaneBlial/pdf-editor-offline/internal/editor"
)

type searchRequest struct {
	Page *int   `json:"page" validate:"required"`
	Term string `json:"term" validate:"required"`
	// Window, when positive, switches to context search and bounds the
	// surrounding text returned with each hit.
	Window int `json:"window"`
}

// handleTextSearch locates a term on one page. With a window it
// returns each hit with surrounding context, otherwise bounding boxes.
func (h *Handler) handleTextSearch(w http.ResponseWriter, r *http.Request) {
	id := h.pathParam(r, "id")
	var req searchRequest
	if err := h.readJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var matches []document.SearchMatch
	var contexts []editor.ContextMatch
	err := h.coordinator.Inspect(r.Context(), id, func(s *session.Session) error {
		var opErr error
		if req.Window > 0 {
			contexts, opErr = s.Editors.Text.SearchContext(*req.Page, req.Term, req.Window)
		} else {
			matches, opErr = s.Editors.Text.Search(*req.Page, req.Term)
		}
		return opErr
	})
	h.recordOp("search_text", err)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	if req.Window > 0 {
		if contexts == nil {
			contexts = []editor.ContextMatch{}
		}
		h.respondData(w, http.StatusOK, map[string]any{"matches": contexts})
		return
	}
	if matches == nil {
		matches = []document.SearchMatch{}
	}
	h.respondData(w, http.StatusOK, map[string]any{"matches": matches})
}

type replaceRequest struct {
	Page    *int    `json:"page" validate:"required"`
	Search  string  `json:"search" validate:"required"`
	Replace string  `json:"replace"`
	Font    string  `json:"font"`
	Size    float64 `json:"size"`
}

// handleTextReplace substitutes every occurrence of a term on a page.
// Zero matches is a success with count 0, not an error.
func (h *Handler) handleTextReplace(w http.ResponseWriter, r *http.Request) {
	id := h.pathParam(r, "id")
	var req replaceRequest
	if err := h.readJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var result document.ReplaceResult
	err := h.coordinator.Mutate(r.Context(), id, func(s *session.Session) error {
		var opErr error
		result, opErr = s.Editors.Text.Replace(*req.Page, req.Search, req.Replace, editor.ReplaceOptions{
			Font: req.Font,
			Size: req.Size,
		})
		return opErr
	})
	h.recordOp("replace_text", err)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondData(w, http.StatusOK, result)
}

// handleTextProperties returns the positioned text spans of one page.
func (h *Handler) handleTextProperties(w http.ResponseWriter, r *http.Request) {
	id := h.pathParam(r, "id")
	page, err := queryInt(r, "page", 0)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var spans []document.TextSpan
	err = h.coordinator.Inspect(r.Context(), id, func(s *session.Session) error {
		var opErr error
		spans, opErr = s.Editors.Text.Properties(page)
		return opErr
	})
	h.recordOp("text_properties", err)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	if spans == nil {
		spans = []document.TextSpan{}
	}
	h.respondData(w, http.StatusOK, map[string]any{"spans": spans})
}

// handleTextFonts returns per-font span counts over the whole document.
func (h *Handler) handleTextFonts(w http.ResponseWriter, r *http.Request) {
	id := h.pathParam(r, "id")
	var usage document.FontUsage
	err := h.coordinator.Inspect(r.Context(), id, func(s *session.Session) error {
		var opErr error
		usage, opErr = s.Editors.Text.Fonts()
		return opErr
	})
	h.recordOp("list_fonts", err)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	if usage == nil {
		usage = document.FontUsage{}
	}
	h.respondData(w, http.StatusOK, map[string]any{"fonts": usage})
}

type markdownRequest struct {
	Page     *int          `json:"page" validate:"required"`
	Rect     document.Rect `json:"rect"`
	Markdown string        `json:"markdown" validate:"required"`
}

func (h *Handler) handleRichMarkdown(w http.ResponseWriter, r *http.Request) {
	id := h.pathParam(r, "id")
	var req markdownRequest
	if err := h.readJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	err := h.coordinator.Mutate(r.Context(), id, func(s *session.Session) error {
		return s.Editors.Rich.InsertMarkdown(*req.Page, req.Rect, req.Markdown)
	})
	h.recordOp("insert_markdown", err)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondMessage(w, http.StatusOK, "markdown inserted")
}

type textBoxRequest struct {
	Page        *int          `json:"page" validate:"required"`
	Rect        document.Rect `json:"rect"`
	Text        string        `json:"text" validate:"required"`
	Font        string        `json:"font"`
	Size        float64       `json:"size"`
	TextColor   string        `json:"text_color"`
	FillColor   string        `json:"fill_color"`
	BorderColor string        `json:"border_color"`
	BorderWidth float64       `json:"border_width"`
	Padding     float64       `json:"padding"`
}

func (h *Handler) handleRichTextBox(w http.ResponseWriter, r *http.Request) {
	id := h.pathParam(r, "id")
	var req textBoxRequest
	if err := h.readJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	err := h.coordinator.Mutate(r.Context(), id, func(s *session.Session) error {
		return s.Editors.Rich.InsertTextBox(*req.Page, req.Rect, req.Text, editor.TextBoxOptions{
			Font:        req.Font,
			Size:        req.Size,
			TextColor:   req.TextColor,
			FillColor:   req.FillColor,
			BorderColor: req.BorderColor,
			BorderWidth: req.BorderWidth,
			Padding:     req.Padding,
		})
	})
	h.recordOp("insert_textbox", err)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondMessage(w, http.StatusOK, "text box inserted")
}

type multiFontRequest struct {
	Page      *int              `json:"page" validate:"required"`
	X         float64           `json:"x"`
	Y         float64           `json:"y"`
	Fragments []editor.Fragment `json:"fragments" validate:"required,min=1"`
}

func (h *Handler) handleRichMultiFont(w http.ResponseWriter, r *http.Request) {
	id := h.pathParam(r, "id")
	var req multiFontRequest
	if err := h.readJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	err := h.coordinator.Mutate(r.Context(), id, func(s *session.Session) error {
		return s.Editors.Rich.InsertMultiFont(*req.Page, req.X, req.Y, req.Fragments)
	})
	h.recordOp("insert_multifont", err)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondMessage(w, http.StatusOK, "styled text inserted")
}
