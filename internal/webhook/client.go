// Package webhook talks to the remote assistant and note-notification
// endpoints. Replies are degraded to fixed messages on failure; callers
// never see raw transport errors from the chat path.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// MaxMessageLength is the hard cap on outbound chat messages. Longer input
// is rejected locally, before any network call.
const MaxMessageLength = 2000

// Fixed user-facing replies for the chat path.
const (
	oversizeOutput   = "Message exceeds processing capacity. Please keep it under 2000 characters."
	connectionOutput = "Connection to the assistant lost. Unable to retrieve a reply right now."
	formatOutput     = "Message received, but format was unexpected."
)

// Candidate reply fields for the note-notification response, tried in
// priority order; the first non-empty one wins.
var replyFields = []string{"message", "output", "comment", "response"}

// Legacy GET notifications use the shorter candidate list.
var legacyReplyFields = []string{"message", "output", "comment"}

// ChatReply is the typed result of one chat exchange.
type ChatReply struct {
	Output      string   `json:"output"`
	Suggestions []string `json:"suggestions"`
}

// NoteNotification carries one submitted note to the notification endpoint.
type NoteNotification struct {
	Note      string
	Sender    string
	Email     string
	Anonymous bool
	Kind      string // "text" or "vocal"
	Timestamp time.Time

	Audio            []byte
	AudioContentType string
	AudioURL         string
}

// Client issues single-attempt calls against the configured endpoints.
type Client struct {
	ChatURL    string
	NoteURL    string
	HTTPClient *http.Client
	Timeout    time.Duration

	logger *zap.Logger
}

// NewClient returns a client for the given endpoints.
func NewClient(chatURL, noteURL string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		ChatURL: strings.TrimSpace(chatURL),
		NoteURL: strings.TrimSpace(noteURL),
		logger:  logger,
	}
}

// SendMessage sends one chat message and returns a typed reply. It never
// returns an error: oversize input, transport failures, non-2xx statuses
// and malformed bodies all map to fixed replies.
func (c *Client) SendMessage(ctx context.Context, text string) ChatReply {
	if len(text) > MaxMessageLength {
		return ChatReply{Output: oversizeOutput, Suggestions: []string{}}
	}

	endpoint, err := url.Parse(c.ChatURL)
	if err != nil || c.ChatURL == "" {
		c.logger.Warn("chat webhook endpoint not usable", zap.Error(err))
		return ChatReply{Output: connectionOutput, Suggestions: []string{}}
	}
	query := endpoint.Query()
	query.Set("question", text)
	endpoint.RawQuery = query.Encode()

	body, err := c.do(ctx, http.MethodGet, endpoint.String(), "", nil)
	if err != nil {
		c.logger.Warn("chat webhook call failed", zap.Error(err))
		return ChatReply{Output: connectionOutput, Suggestions: []string{}}
	}

	var parsed struct {
		Output      string   `json:"output"`
		Suggestions []string `json:"suggestions"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		c.logger.Warn("chat webhook reply unreadable", zap.Error(err))
		return ChatReply{Output: connectionOutput, Suggestions: []string{}}
	}

	reply := ChatReply{Output: parsed.Output, Suggestions: parsed.Suggestions}
	if reply.Output == "" {
		reply.Output = formatOutput
	}
	if reply.Suggestions == nil {
		reply.Suggestions = []string{}
	}
	return reply
}

// NotifyNote POSTs a multipart payload describing the note and returns the
// endpoint's reply text. One attempt, no retry; the pipeline maps failures
// to its notify stage error.
func (c *Client) NotifyNote(ctx context.Context, note NoteNotification) (string, error) {
	if c.NoteURL == "" {
		return "", fmt.Errorf("note webhook endpoint is not configured")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fields := map[string]string{
		"note":        note.Note,
		"sender":      note.Sender,
		"email":       note.Email,
		"isAnonymous": strconv.FormatBool(note.Anonymous),
		"type":        note.Kind,
		"timestamp":   note.Timestamp.UTC().Format(time.RFC3339),
	}
	if note.AudioURL != "" {
		fields["audioUrl"] = note.AudioURL
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return "", fmt.Errorf("encode notification field %s: %w", name, err)
		}
	}

	if len(note.Audio) > 0 {
		part, err := writer.CreateFormFile("audioFile", "note-audio")
		if err != nil {
			return "", fmt.Errorf("encode notification attachment: %w", err)
		}
		if _, err := part.Write(note.Audio); err != nil {
			return "", fmt.Errorf("encode notification attachment: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finalize notification payload: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, c.NoteURL, writer.FormDataContentType(), &buf)
	if err != nil {
		return "", err
	}

	return parseReply(body, replyFields), nil
}

// NotifyNoteLegacy is the older GET variant of the note notification: the
// fields travel as query parameters and no attachment is possible.
func (c *Client) NotifyNoteLegacy(ctx context.Context, note NoteNotification) (string, error) {
	if c.NoteURL == "" {
		return "", fmt.Errorf("note webhook endpoint is not configured")
	}

	endpoint, err := url.Parse(c.NoteURL)
	if err != nil {
		return "", fmt.Errorf("note webhook endpoint is not usable: %w", err)
	}
	query := endpoint.Query()
	query.Set("note", note.Note)
	query.Set("sender", note.Sender)
	query.Set("email", note.Email)
	query.Set("isAnonymous", strconv.FormatBool(note.Anonymous))
	endpoint.RawQuery = query.Encode()

	body, err := c.do(ctx, http.MethodGet, endpoint.String(), "", nil)
	if err != nil {
		return "", err
	}

	return parseReply(body, legacyReplyFields), nil
}

func (c *Client) do(ctx context.Context, method, endpoint, contentType string, body io.Reader) ([]byte, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build webhook request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read webhook response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return respBody, nil
}

// parseReply extracts the reply text from a notification response. JSON
// bodies are tried against the candidate fields in priority order; anything
// that is not a JSON object is treated as a raw text reply.
func parseReply(body []byte, candidates []string) string {
	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return strings.TrimSpace(string(body))
	}

	for _, field := range candidates {
		if value, ok := parsed[field].(string); ok {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}
