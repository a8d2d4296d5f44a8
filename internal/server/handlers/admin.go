package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	notestore "github.com/notelink/notelink/internal/notes/store"
)

// AdminListHandler returns stored notes, newest first. Supports ?limit=N
// and ?anonymous=true.
func (h *Handler) AdminListHandler(w http.ResponseWriter, r *http.Request) {
	filter := notestore.ListFilter{}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			h.writeError(w, r, http.StatusBadRequest, errorBody{
				Code: "INVALID_INPUT", Message: "limit must be a non-negative integer.",
			})
			return
		}
		filter.Limit = limit
	}
	if raw := r.URL.Query().Get("anonymous"); raw != "" {
		anonymous, err := strconv.ParseBool(raw)
		if err != nil {
			h.writeError(w, r, http.StatusBadRequest, errorBody{
				Code: "INVALID_INPUT", Message: "anonymous must be a boolean.",
			})
			return
		}
		filter.AnonymousOnly = anonymous
	}

	records, err := h.Records.List(r.Context(), filter)
	if err != nil {
		h.Logger.Error("list notes failed", zap.Error(err))
		h.writeError(w, r, http.StatusInternalServerError, errorBody{
			Code: "DATABASE_ERROR", Message: "The notes could not be loaded.",
		})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"notes": records,
		"count": len(records),
	})
}

// AdminDeleteHandler removes one note by id.
func (h *Handler) AdminDeleteHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		h.writeError(w, r, http.StatusBadRequest, errorBody{
			Code: "INVALID_INPUT", Message: "A note id is required.",
		})
		return
	}

	if err := h.Records.Delete(r.Context(), id); err != nil {
		if errors.Is(err, notestore.ErrNotFound) {
			h.writeError(w, r, http.StatusNotFound, errorBody{
				Code: "NOT_FOUND", Message: "No note with that id exists.",
			})
			return
		}
		h.Logger.Error("delete note failed", zap.String("id", id), zap.Error(err))
		h.writeError(w, r, http.StatusInternalServerError, errorBody{
			Code: "DATABASE_ERROR", Message: "The note could not be deleted.",
		})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
