package rest

import (
	"net/http"

	"github.com/OthmaneBlial/pdf-editor-offline/internal/domain/document"
	"github.com/OthmaneBlial/pdf-editor-offline/internal/domain/session"
)

func (h *Handler) handleMetadataGet(w http.ResponseWriter, r *http.Request) {
	id := h.pathParam(r, "id")
	var meta document.Metadata
	err := h.coordinator.Inspect(r.Context(), id, func(s *session.Session) error {
		var opErr error
		meta, opErr = s.Editors.Meta.Read()
		return opErr
	})
	h.recordOp("read_metadata", err)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondData(w, http.StatusOK, meta)
}

// handleMetadataUpdate patches the information dictionary. Omitted
// fields stay untouched; empty strings clear their entry.
func (h *Handler) handleMetadataUpdate(w http.ResponseWriter, r *http.Request) {
	id := h.pathParam(r, "id")
	var up document.MetadataUpdate
	if err := h.readJSON(r, &up); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var meta document.Metadata
	err := h.coordinator.Mutate(r.Context(), id, func(s *session.Session) error {
		var opErr error
		meta, opErr = s.Editors.Meta.Update(up)
		return opErr
	})
	h.recordOp("update_metadata", err)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondData(w, http.StatusOK, meta)
}
