package rest

import (
	"net/http"

	"github.com/OthmaneBlial/pdf-editor-offline/internal/domain/document"
	"github.com/OthmaneBlial/pdf-editor-offline/internal/domain/session"
)

func (h *Handler) handleTOCGet(w http.ResponseWriter, r *http.Request) {
	id := h.pathParam(r, "id")
	var entries []document.TOCEntry
	err := h.coordinator.Inspect(r.Context(), id, func(s *session.Session) error {
		var opErr error
		entries, opErr = s.Editors.Nav.TOC()
		return opErr
	})
	h.recordOp("get_toc", err)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	if entries == nil {
		entries = []document.TOCEntry{}
	}
	h.respondData(w, http.StatusOK, map[string]any{"entries": entries})
}

type tocSetRequest struct {
	Entries []document.TOCEntry `json:"entries"`
}

// handleTOCSet replaces the whole outline. Entries with invalid pages
// or empty titles are skipped and reported, not fatal.
func (h *Handler) handleTOCSet(w http.ResponseWriter, r *http.Request) {
	id := h.pathParam(r, "id")
	var req tocSetRequest
	if err := h.readJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var applied int
	var skipped []string
	err := h.coordinator.Mutate(r.Context(), id, func(s *session.Session) error {
		var opErr error
		applied, skipped, opErr = s.Editors.Nav.SetTOC(req.Entries)
		return opErr
	})
	h.recordOp("set_toc", err)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	if skipped == nil {
		skipped = []string{}
	}
	h.respondData(w, http.StatusOK, map[string]any{
		"applied": applied,
		"skipped": skipped,
	})
}

// handleTOCFromHeaders infers an outline from large text on each page
// and merges it into the existing one.
func (h *Handler) handleTOCFromHeaders(w http.ResponseWriter, r *http.Request) {
	id := h.pathParam(r, "id")
	var added int
	err := h.coordinator.Mutate(r.Context(), id, func(s *session.Session) error {
		var opErr error
		added, opErr = s.Editors.Nav.TOCFromHeaders()
		return opErr
	})
	h.recordOp("toc_from_headers", err)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondData(w, http.StatusOK, map[string]int{"added": added})
}

// handleBookmarksForPage lists the outline entries targeting one page.
func (h *Handler) handleBookmarksForPage(w http.ResponseWriter, r *http.Request) {
	id := h.pathParam(r, "id")
	page, err := queryInt(r, "page", 0)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var indices []int
	var entries []document.TOCEntry
	err = h.coordinator.Inspect(r.Context(), id, func(s *session.Session) error {
		var opErr error
		indices, entries, opErr = s.Editors.Nav.BookmarksForPage(page)
		return opErr
	})
	h.recordOp("bookmarks_for_page", err)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	if indices == nil {
		indices = []int{}
	}
	if entries == nil {
		entries = []document.TOCEntry{}
	}
	h.respondData(w, http.StatusOK, map[string]any{
		"indices": indices,
		"entries": entries,
	})
}

type bookmarkAddRequest struct {
	Level int    `json:"level"`
	Title string `json:"title" validate:"required"`
	Page  *int   `json:"page" validate:"required"`
}

func (h *Handler) handleBookmarkAdd(w http.ResponseWriter, r *http.Request) {
	id := h.pathParam(r, "id")
	var req bookmarkAddRequest
	if err := h.readJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var index int
	err := h.coordinator.Mutate(r.Context(), id, func(s *session.Session) error {
		var opErr error
		index, opErr = s.Editors.Nav.AddBookmark(req.Level, req.Title, *req.Page)
		return opErr
	})
	h.recordOp("add_bookmark", err)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondData(w, http.StatusCreated, map[string]int{"index": index})
}

type bookmarkUpdateRequest struct {
	Title *string `json:"title"`
	Page  *int    `json:"page"`
}

func (h *Handler) handleBookmarkUpdate(w http.ResponseWriter, r *http.Request) {
	id := h.pathParam(r, "id")
	index, err := h.pathIndex(r, "index")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req bookmarkUpdateRequest
	if err := h.readJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var entry document.TOCEntry
	err = h.coordinator.Mutate(r.Context(), id, func(s *session.Session) error {
		var opErr error
		entry, opErr = s.Editors.Nav.UpdateBookmark(index, req.Title, req.Page)
		return opErr
	})
	h.recordOp("update_bookmark", err)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondData(w, http.StatusOK, entry)
}

func (h *Handler) handleBookmarkDelete(w http.ResponseWriter, r *http.Request) {
	id := h.pathParam(r, "id")
	index, err := h.pathIndex(r, "index")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var removed document.TOCEntry
	var remaining int
	err = h.coordinator.Mutate(r.Context(), id, func(s *session.Session) error {
		var opErr error
		removed, remaining, opErr = s.Editors.Nav.DeleteBookmark(index)
		return opErr
	})
	h.recordOp("delete_bookmark", err)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondData(w, http.StatusOK, map[string]any{
		"removed":   removed,
		"remaining": remaining,
	})
}

func (h *Handler) handleLinksList(w http.ResponseWriter, r *http.Request) {
	id := h.pathParam(r, "id")
	page, err := queryInt(r, "page", 0)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var links []document.LinkDescriptor
	err = h.coordinator.Inspect(r.Context(), id, func(s *session.Session) error {
		var opErr error
		links, opErr = s.Editors.Nav.Links(page)
		return opErr
	})
	h.recordOp("list_links", err)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	if links == nil {
		links = []document.LinkDescriptor{}
	}
	h.respondData(w, http.StatusOK, map[string]any{"links": links})
}

type linkAddRequest struct {
	Page *int          `json:"page" validate:"required"`
	Rect document.Rect `json:"rect"`
	// Exactly one of URI and DestPage must be set. DestPage is the
	// 0-based target page for internal links.
	URI      string `json:"uri"`
	DestPage int    `json:"dest_page"`
}

func (h *Handler) handleLinkAdd(w http.ResponseWriter, r *http.Request) {
	id := h.pathParam(r, "id")
	var req linkAddRequest
	if err := h.readJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var link document.LinkDescriptor
	err := h.coordinator.Mutate(r.Context(), id, func(s *session.Session) error {
		var opErr error
		link, opErr = s.Editors.Nav.AddLink(*req.Page, req.Rect, req.URI, req.DestPage)
		return opErr
	})
	h.recordOp("add_link", err)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondData(w, http.StatusCreated, link)
}

type linkRemoveRequest struct {
	Page *int          `json:"page" validate:"required"`
	Rect document.Rect `json:"rect"`
}

func (h *Handler) handleLinkRemove(w http.ResponseWriter, r *http.Request) {
	id := h.pathParam(r, "id")
	var req linkRemoveRequest
	if err := h.readJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var removed int
	err := h.coordinator.Mutate(r.Context(), id, func(s *session.Session) error {
		var opErr error
		removed, opErr = s.Editors.Nav.RemoveLink(*req.Page, req.Rect)
		return opErr
	})
	h.recordOp("remove_link", err)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondData(w, http.StatusOK, map[string]int{"removed": removed})
}
