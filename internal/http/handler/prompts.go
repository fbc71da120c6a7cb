package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/hlog"

	"promptvault/internal/api"
	"promptvault/internal/auth"
	"promptvault/internal/prompt"
)

type PromptHandler struct {
	Svc *prompt.Service
}

func (h *PromptHandler) List(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())

	rows, err := h.Svc.List(r.Context(), p.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.FromPrompts(rows))
}

func (h *PromptHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())

	var req api.Draft
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}

	row, err := h.Svc.Create(r.Context(), p.ID, req.ToDraft())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	hlog.FromRequest(r).Debug().Str("prompt_id", row.ID.String()).Msg("prompt created")
	writeJSON(w, http.StatusOK, api.FromPrompt(*row))
}

// Get answers 404 for ids the caller does not own.
func (h *PromptHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	row, err := h.Svc.Get(r.Context(), p.ID, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.FromPrompt(*row))
}

func (h *PromptHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	var req api.Patch
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}

	row, err := h.Svc.Update(r.Context(), p.ID, id, req.ToPatch())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.FromPrompt(*row))
}

// Delete reports success whether or not an owned prompt existed. An id that
// is not a uuid cannot name any row, so it is the same no-op.
func (h *PromptHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())

	if id, err := uuid.Parse(chi.URLParam(r, "id")); err == nil {
		if err := h.Svc.Delete(r.Context(), p.ID, id); err != nil {
			writeServiceError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *PromptHandler) Export(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())

	exp, err := h.Svc.Export(r.Context(), p.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="`+prompt.ExportFilename(exp.ExportedAt)+`"`)
	writeJSON(w, http.StatusOK, api.Export{
		ExportedAt: exp.ExportedAt,
		Count:      len(exp.Prompts),
		Prompts:    api.FromPrompts(exp.Prompts),
	})
}
