package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/notelink/notelink/internal/notes"
	servermw "github.com/notelink/notelink/internal/server/middleware"
)

// maxNoteBody bounds the whole submission, audio clip included.
const maxNoteBody = 10 << 20

type noteRequest struct {
	Note        string `json:"note"`
	Name        string `json:"name"`
	IsAnonymous bool   `json:"isAnonymous"`
}

// NoteSubmitHandler runs one submission through the pipeline. It accepts a
// multipart form (fields note, name, isAnonymous, optional audio file) or a
// JSON body for text-only notes.
func (h *Handler) NoteSubmitHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close() // nolint:errcheck // best-effort cleanup

	msg, ok := h.decodeOutboundMessage(w, r)
	if !ok {
		return
	}

	if principal, authed := servermw.PrincipalFromContext(r.Context()); authed {
		msg.UserID = principal.ID
		msg.UserName = principal.Name
		msg.UserEmail = principal.Email
	}

	result, stageErr := h.Submitter.Submit(r.Context(), msg, clientKey(r))
	if stageErr != nil {
		h.writeStageError(w, r, stageErr)
		return
	}

	h.writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) decodeOutboundMessage(w http.ResponseWriter, r *http.Request) (notes.OutboundMessage, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxNoteBody)

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		return h.decodeMultipart(w, r)
	}

	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, errorBody{
			Code: "INVALID_INPUT", Message: "The request body is not valid JSON.",
		})
		return notes.OutboundMessage{}, false
	}

	return notes.OutboundMessage{
		Text:      req.Note,
		Name:      req.Name,
		Anonymous: req.IsAnonymous,
	}, true
}

func (h *Handler) decodeMultipart(w http.ResponseWriter, r *http.Request) (notes.OutboundMessage, bool) {
	if err := r.ParseMultipartForm(maxNoteBody); err != nil {
		h.writeError(w, r, http.StatusBadRequest, errorBody{
			Code: "INVALID_INPUT", Message: "The multipart form could not be parsed.",
		})
		return notes.OutboundMessage{}, false
	}

	anonymous, _ := strconv.ParseBool(r.FormValue("isAnonymous"))
	msg := notes.OutboundMessage{
		Text:      r.FormValue("note"),
		Name:      r.FormValue("name"),
		Anonymous: anonymous,
	}

	file, header, err := r.FormFile("audio")
	if err == nil {
		defer file.Close() // nolint:errcheck // best-effort cleanup
		data, readErr := io.ReadAll(file)
		if readErr != nil {
			h.writeError(w, r, http.StatusBadRequest, errorBody{
				Code: "INVALID_INPUT", Message: "The audio attachment could not be read.",
			})
			return notes.OutboundMessage{}, false
		}
		msg.Audio = data
		msg.AudioContentType = header.Header.Get("Content-Type")
	} else if err != http.ErrMissingFile {
		h.writeError(w, r, http.StatusBadRequest, errorBody{
			Code: "INVALID_INPUT", Message: "The audio attachment could not be read.",
		})
		return notes.OutboundMessage{}, false
	}

	return msg, true
}

// writeStageError maps each pipeline stage failure to its one status and
// user-facing message.
func (h *Handler) writeStageError(w http.ResponseWriter, r *http.Request, stageErr *notes.StageError) {
	switch stageErr.Kind {
	case notes.KindValidation:
		// Silent on the client; the submit control should have been inert.
		h.writeError(w, r, http.StatusUnprocessableEntity, errorBody{
			Code: "VALIDATION_FAILED", Message: "The note does not meet the content or identity rules.",
		})
	case notes.KindRateLimited:
		h.writeError(w, r, http.StatusTooManyRequests, errorBody{
			Code:          "RATE_LIMITED",
			Message:       stageErr.Message,
			RetryNoticeMs: notes.RetryNoticeMs,
		})
	case notes.KindUpload:
		h.writeError(w, r, http.StatusServiceUnavailable, errorBody{
			Code: "UPLOAD_FAILED", Message: stageErr.Message,
		})
	case notes.KindNotify:
		h.writeError(w, r, http.StatusBadGateway, errorBody{
			Code: "NOTIFY_FAILED", Message: stageErr.Message,
		})
	case notes.KindPersist:
		h.writeError(w, r, http.StatusServiceUnavailable, errorBody{
			Code: "PERSIST_FAILED", Message: stageErr.Message,
		})
	default:
		h.writeError(w, r, http.StatusInternalServerError, errorBody{
			Code: "INTERNAL_ERROR", Message: "An internal error occurred.",
		})
	}
}
