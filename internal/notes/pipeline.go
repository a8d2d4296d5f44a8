package notes

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/notelink/notelink/internal/ratelimit"
	"github.com/notelink/notelink/internal/sanitize"
	"github.com/notelink/notelink/internal/storage"
	"github.com/notelink/notelink/internal/webhook"
)

// Submission rate gate defaults: 5 notes per trailing 10 minutes.
const (
	submitAction  = "notes_submission"
	DefaultLimit  = 5
	DefaultWindow = 10 * time.Minute
)

// Result display pacing: longer when there is a reply worth reading.
const (
	displayPlainMs = 3000
	displayReplyMs = 6000
)

// RecordStore is the durable side of the persistence adapter the pipeline
// depends on.
type RecordStore interface {
	Insert(ctx context.Context, record SubmissionRecord) (SubmissionRecord, error)
}

// Notifier delivers the note to the configured webhook and returns its
// reply text.
type Notifier interface {
	NotifyNote(ctx context.Context, note webhook.NoteNotification) (string, error)
	NotifyNoteLegacy(ctx context.Context, note webhook.NoteNotification) (string, error)
}

// Pipeline runs a submission through its stages strictly in sequence. Any
// stage failure aborts the rest and yields that stage's error; there is no
// partial-success ambiguity for the caller.
//
// Known inconsistency, accepted by design: a failure in the notify or
// persist stage can leave behind an uploaded-but-unreferenced attachment,
// and a persist failure happens after the webhook was already told about
// the note. Neither is rolled back or reconciled.
type Pipeline struct {
	limiter  *ratelimit.Limiter
	uploader storage.Uploader
	notifier Notifier
	store    RecordStore
	logger   *zap.Logger

	// Limit and Window configure the rate gate; zero values fall back to
	// the defaults above.
	Limit  int
	Window time.Duration

	// LegacyNotify switches delivery to the GET query-parameter variant
	// (no attachment support).
	LegacyNotify bool

	newID func() string
	now   func() time.Time
}

// NewPipeline wires the pipeline's collaborators.
func NewPipeline(limiter *ratelimit.Limiter, uploader storage.Uploader, notifier Notifier, store RecordStore, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		limiter:  limiter,
		uploader: uploader,
		notifier: notifier,
		store:    store,
		logger:   logger,
		Limit:    DefaultLimit,
		Window:   DefaultWindow,
		newID:    func() string { return uuid.New().String() },
		now:      time.Now,
	}
}

// runState carries intermediate values between stages of one run.
type runState struct {
	msg       OutboundMessage
	clientKey string

	text       string
	senderName string
	contact    string
	audioURL   string
	reply      string
	record     SubmissionRecord
}

type stage struct {
	name string
	run  func(ctx context.Context, s *runState) *StageError
}

// Submit runs one message through the pipeline. clientKey scopes the rate
// gate to the caller (for example the client IP); it may be empty.
// On failure the returned StageError identifies exactly one stage.
func (p *Pipeline) Submit(ctx context.Context, msg OutboundMessage, clientKey string) (Result, *StageError) {
	state := &runState{msg: msg, clientKey: clientKey}

	stages := []stage{
		{"validate", p.validate},
		{"rate_gate", p.rateGate},
		{"sanitize", p.sanitizeFields},
		{"upload_attachment", p.uploadAttachment},
		{"notify_webhook", p.notifyWebhook},
		{"persist", p.persist},
	}

	for _, st := range stages {
		if err := st.run(ctx, state); err != nil {
			if err.Kind != KindValidation && err.Kind != KindRateLimited {
				p.logger.Warn("note submission aborted",
					zap.String("stage", st.name), zap.Error(err))
			}
			return Result{}, err
		}
	}

	return p.complete(state), nil
}

func (p *Pipeline) validate(_ context.Context, s *runState) *StageError {
	if !s.msg.Valid() {
		return validationError()
	}
	return nil
}

func (p *Pipeline) rateGate(_ context.Context, s *runState) *StageError {
	if p.limiter == nil {
		return nil
	}
	key := submitAction
	if s.clientKey != "" {
		key += ":" + s.clientKey
	}
	limit, window := p.Limit, p.Window
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	if !p.limiter.Check(key, limit, window) {
		return rateLimitedError()
	}
	return nil
}

func (p *Pipeline) sanitizeFields(_ context.Context, s *runState) *StageError {
	s.text = sanitize.Input(s.msg.Text)

	switch {
	case s.msg.Anonymous:
		s.senderName = "Anonymous"
	case s.msg.UserName != "":
		// Authenticated names come from the identity provider and are
		// trusted verbatim.
		s.senderName = s.msg.UserName
	default:
		s.senderName = sanitize.Input(s.msg.Name)
	}

	s.contact = s.msg.UserEmail
	if s.contact == "" || s.msg.Anonymous {
		s.contact = "Guest"
	}
	return nil
}

func (p *Pipeline) uploadAttachment(ctx context.Context, s *runState) *StageError {
	if !s.msg.HasAudio() {
		return nil
	}
	if p.uploader == nil {
		return uploadError(errMissingUploader)
	}
	url, err := p.uploader.Upload(ctx, s.msg.Audio, s.msg.AudioContentType)
	if err != nil {
		return uploadError(err)
	}
	s.audioURL = url
	return nil
}

func (p *Pipeline) notifyWebhook(ctx context.Context, s *runState) *StageError {
	if p.notifier == nil {
		return nil
	}

	kind := "text"
	if s.msg.HasAudio() {
		kind = "vocal"
	}
	notification := webhook.NoteNotification{
		Note:             s.text,
		Sender:           s.senderName,
		Email:            s.contact,
		Anonymous:        s.msg.Anonymous,
		Kind:             kind,
		Timestamp:        p.now(),
		Audio:            s.msg.Audio,
		AudioContentType: s.msg.AudioContentType,
		AudioURL:         s.audioURL,
	}

	var (
		reply string
		err   error
	)
	if p.LegacyNotify {
		reply, err = p.notifier.NotifyNoteLegacy(ctx, notification)
	} else {
		reply, err = p.notifier.NotifyNote(ctx, notification)
	}
	if err != nil {
		return notifyError(err)
	}
	s.reply = reply
	return nil
}

func (p *Pipeline) persist(ctx context.Context, s *runState) *StageError {
	if p.store == nil {
		return persistError(errMissingStore)
	}
	record := SubmissionRecord{
		ID:            p.newID(),
		Content:       s.text,
		SenderName:    s.senderName,
		SenderContact: s.contact,
		WebhookReply:  s.reply,
		AudioURL:      s.audioURL,
		Anonymous:     s.msg.Anonymous,
		CreatedAt:     p.now().UTC(),
	}

	inserted, err := p.store.Insert(ctx, record)
	if err != nil {
		return persistError(err)
	}
	s.record = inserted
	return nil
}

func (p *Pipeline) complete(s *runState) Result {
	display := displayPlainMs
	if s.reply != "" {
		display = displayReplyMs
	}
	return Result{
		RecordID:     s.record.ID,
		WebhookReply: s.reply,
		AudioURL:     s.audioURL,
		Sent:         true,
		DisplayMs:    display,
	}
}
