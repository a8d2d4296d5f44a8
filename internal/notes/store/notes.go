package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/notelink/notelink/internal/notes"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("note not found")

// ListFilter narrows List results. Zero value lists everything.
type ListFilter struct {
	// Limit caps the number of rows returned; 0 means no cap.
	Limit int
	// AnonymousOnly restricts to anonymous submissions.
	AnonymousOnly bool
}

// Insert stores one submission record. The record is immutable afterwards
// except for Delete.
func (s *Store) Insert(ctx context.Context, record notes.SubmissionRecord) (notes.SubmissionRecord, error) {
	if s == nil || s.DB == nil {
		return notes.SubmissionRecord{}, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if strings.TrimSpace(record.ID) == "" {
		return notes.SubmissionRecord{}, errors.New("record id is required")
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO notes (id, content, sender_name, sender_contact, webhook_reply, audio_url, is_anonymous, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		record.ID,
		record.Content,
		record.SenderName,
		record.SenderContact,
		nullable(record.WebhookReply),
		nullable(record.AudioURL),
		boolToInt(record.Anonymous),
		record.CreatedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return notes.SubmissionRecord{}, fmt.Errorf("insert note: %w", err)
	}

	return record, nil
}

// List returns records newest first.
func (s *Store) List(ctx context.Context, filter ListFilter) ([]notes.SubmissionRecord, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	query := `
		SELECT id, content, sender_name, sender_contact, webhook_reply, audio_url, is_anonymous, created_at
		FROM notes`
	args := []any{}
	if filter.AnonymousOnly {
		query += ` WHERE is_anonymous = 1`
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	var records []notes.SubmissionRecord
	for rows.Next() {
		var (
			record    notes.SubmissionRecord
			reply     sql.NullString
			audioURL  sql.NullString
			anonymous int
			createdAt int64
		)
		if err := rows.Scan(&record.ID, &record.Content, &record.SenderName, &record.SenderContact,
			&reply, &audioURL, &anonymous, &createdAt); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		record.WebhookReply = reply.String
		record.AudioURL = audioURL.String
		record.Anonymous = anonymous != 0
		record.CreatedAt = time.UnixMilli(createdAt).UTC()
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	return records, nil
}

// Delete removes one record by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return errors.New("record id is required")
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func nullable(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
