package handlers

import (
	"context"
	"sort"
	"sync"

	"github.com/notelink/notelink/internal/notes"
	notestore "github.com/notelink/notelink/internal/notes/store"
	"github.com/notelink/notelink/internal/webhook"
)

// fakeChat returns a canned reply and records the last message.
type fakeChat struct {
	reply webhook.ChatReply
	last  string
	calls int
}

func (f *fakeChat) SendMessage(_ context.Context, text string) webhook.ChatReply {
	f.calls++
	f.last = text
	return f.reply
}

// fakeSubmitter short-circuits the pipeline with a fixed outcome.
type fakeSubmitter struct {
	result   notes.Result
	stageErr *notes.StageError
	last     notes.OutboundMessage
	lastKey  string
}

func (f *fakeSubmitter) Submit(_ context.Context, msg notes.OutboundMessage, clientKey string) (notes.Result, *notes.StageError) {
	f.last = msg
	f.lastKey = clientKey
	return f.result, f.stageErr
}

// memRecords is an in-memory RecordBrowser and pipeline RecordStore, used
// for end-to-end tests without a cgo database.
type memRecords struct {
	mu      sync.Mutex
	records []notes.SubmissionRecord
	insErr  error
	listErr error
	delErr  error
}

func (m *memRecords) Insert(_ context.Context, record notes.SubmissionRecord) (notes.SubmissionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insErr != nil {
		return notes.SubmissionRecord{}, m.insErr
	}
	m.records = append(m.records, record)
	return record, nil
}

func (m *memRecords) List(_ context.Context, filter notestore.ListFilter) ([]notes.SubmissionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}

	out := make([]notes.SubmissionRecord, 0, len(m.records))
	for _, record := range m.records {
		if filter.AnonymousOnly && !record.Anonymous {
			continue
		}
		out = append(out, record)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *memRecords) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.delErr != nil {
		return m.delErr
	}
	for i, record := range m.records {
		if record.ID == id {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return notestore.ErrNotFound
}
