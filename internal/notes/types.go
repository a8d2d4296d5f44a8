// Package notes implements the note submission pipeline: validation, rate
// gating, sanitization, attachment upload, webhook notification and durable
// persistence, run strictly in that order.
package notes

import (
	"strings"
	"time"
)

// MinTextLength is the minimum trimmed length for a text-only note.
const MinTextLength = 3

// OutboundMessage is the payload a sender composed. It is built once per
// submission attempt and never mutated; a retry constructs a fresh value.
type OutboundMessage struct {
	Text string

	Audio            []byte
	AudioContentType string

	// Name is the display name typed into the form; UserID/UserName/
	// UserEmail come from an authenticated session when present.
	Name      string
	UserID    string
	UserName  string
	UserEmail string
	Anonymous bool
}

// HasAudio reports whether the message carries a recorded clip.
func (m OutboundMessage) HasAudio() bool {
	return len(m.Audio) > 0
}

// Valid reports whether the message satisfies the content-minimum and
// identity rules: enough text or an audio clip, and some way to attribute
// the note (identity, explicit anonymity, or a typed name).
func (m OutboundMessage) Valid() bool {
	hasContent := len(strings.TrimSpace(m.Text)) >= MinTextLength || m.HasAudio()
	hasIdentity := m.UserID != "" || m.Anonymous || strings.TrimSpace(m.Name) != ""
	return hasContent && hasIdentity
}

// SubmissionRecord is the durable artifact stored after a successful run.
// Immutable once inserted, except for administrative deletion.
type SubmissionRecord struct {
	ID            string    `json:"id"`
	Content       string    `json:"content"`
	SenderName    string    `json:"senderName"`
	SenderContact string    `json:"senderContact"`
	WebhookReply  string    `json:"webhookReply,omitempty"`
	AudioURL      string    `json:"audioUrl,omitempty"`
	Anonymous     bool      `json:"isAnonymous"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Result is what a completed submission hands back to the caller. The
// display durations pace the UI (longer when there is a reply to read);
// the server never sleeps on them.
type Result struct {
	RecordID     string `json:"recordId"`
	WebhookReply string `json:"webhookReply,omitempty"`
	AudioURL     string `json:"audioUrl,omitempty"`
	Sent         bool   `json:"isSent"`
	DisplayMs    int    `json:"displayMs"`
}
