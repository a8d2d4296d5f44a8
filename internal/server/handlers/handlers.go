// Package handlers implements the HTTP endpoints: the chat relay, note
// submission, the admin note viewer, and the health/version probes.
package handlers

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/notelink/notelink/internal/notes"
	notestore "github.com/notelink/notelink/internal/notes/store"
	"github.com/notelink/notelink/internal/ratelimit"
	servermw "github.com/notelink/notelink/internal/server/middleware"
	"github.com/notelink/notelink/internal/webhook"
)

// ChatClient is the assistant-webhook dependency of the chat endpoint.
type ChatClient interface {
	SendMessage(ctx context.Context, text string) webhook.ChatReply
}

// NoteSubmitter runs the submission pipeline.
type NoteSubmitter interface {
	Submit(ctx context.Context, msg notes.OutboundMessage, clientKey string) (notes.Result, *notes.StageError)
}

// RecordBrowser is the admin viewer's slice of the record store.
type RecordBrowser interface {
	List(ctx context.Context, filter notestore.ListFilter) ([]notes.SubmissionRecord, error)
	Delete(ctx context.Context, id string) error
}

// Pinger reports whether the durable store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler carries the endpoint dependencies.
type Handler struct {
	Chat      ChatClient
	Submitter NoteSubmitter
	Records   RecordBrowser
	Limiter   *ratelimit.Limiter
	Logger    *zap.Logger
	Version   string
	Health    Pinger

	ChatLimit  int
	ChatWindow time.Duration
}

// New returns a handler with sane fallbacks for optional fields.
func New(logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Logger:     logger,
		ChatLimit:  10,
		ChatWindow: time.Minute,
	}
}

type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`

	// RetryNoticeMs is set only on rate-limited responses; the UI clears
	// its notice after this long.
	RetryNoticeMs int `json:"retryNoticeMs,omitempty"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.Logger.Warn("write response failed", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, body errorBody) {
	body.RequestID = servermw.GetRequestID(r.Context())
	h.writeJSON(w, status, map[string]errorBody{"error": body})
}

// clientKey scopes rate gates to the calling client. RealIP middleware runs
// ahead of this, so RemoteAddr reflects the forwarded address.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
