package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

const chatAction = "chat_message"

// maxChatBody bounds the request body; the message itself is capped by the
// webhook client.
const maxChatBody = 16 * 1024

type chatRequest struct {
	Message string `json:"message"`
}

// ChatHandler relays one chat message to the assistant webhook and returns
// its typed reply. Failures inside the webhook client degrade to fixed
// replies, so this endpoint only errors on bad input or rate limiting.
func (h *Handler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close() // nolint:errcheck // best-effort cleanup

	var req chatRequest
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxChatBody))
	if err := decoder.Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, errorBody{
			Code: "INVALID_INPUT", Message: "The request body is not valid JSON.",
		})
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		h.writeError(w, r, http.StatusBadRequest, errorBody{
			Code: "INVALID_INPUT", Message: "A message is required.",
		})
		return
	}

	if h.Limiter != nil {
		key := chatAction + ":" + clientKey(r)
		if !h.Limiter.Check(key, h.ChatLimit, h.ChatWindow) {
			h.writeError(w, r, http.StatusTooManyRequests, errorBody{
				Code: "RATE_LIMITED", Message: "Too many messages. Please slow down.",
			})
			return
		}
	}

	reply := h.Chat.SendMessage(r.Context(), req.Message)
	h.writeJSON(w, http.StatusOK, reply)
}
