package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/notelink/notelink/internal/notes"
	servermw "github.com/notelink/notelink/internal/server/middleware"
)

func stageError(kind notes.ErrorKind, message string) *notes.StageError {
	return &notes.StageError{Kind: kind, Message: message}
}

func TestNoteSubmitHandlerJSONBody(t *testing.T) {
	submitter := &fakeSubmitter{result: notes.Result{RecordID: "n1", Sent: true, WebhookReply: "thanks", DisplayMs: 6000}}
	h := New(nil)
	h.Submitter = submitter

	body := `{"note":"hello there","name":"Ada","isAnonymous":false}`
	req := httptest.NewRequest(http.MethodPost, "/api/notes", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "10.1.1.1:555"
	rec := httptest.NewRecorder()
	h.NoteSubmitHandler(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "hello there", submitter.last.Text)
	require.Equal(t, "Ada", submitter.last.Name)
	require.Equal(t, "10.1.1.1", submitter.lastKey)

	var result notes.Result
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	require.True(t, result.Sent)
	require.Equal(t, "thanks", result.WebhookReply)
	require.Equal(t, 6000, result.DisplayMs)
}

func TestNoteSubmitHandlerMultipartWithAudio(t *testing.T) {
	submitter := &fakeSubmitter{result: notes.Result{Sent: true}}
	h := New(nil)
	h.Submitter = submitter

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("note", "a vocal note"))
	require.NoError(t, writer.WriteField("isAnonymous", "true"))
	part, err := writer.CreatePart(map[string][]string{
		"Content-Disposition": {`form-data; name="audio"; filename="clip.webm"`},
		"Content-Type":        {"audio/webm"},
	})
	require.NoError(t, err)
	_, err = part.Write([]byte{1, 2, 3})
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/notes", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	h.NoteSubmitHandler(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, []byte{1, 2, 3}, submitter.last.Audio)
	require.Equal(t, "audio/webm", submitter.last.AudioContentType)
	require.True(t, submitter.last.Anonymous)
}

func TestNoteSubmitHandlerAttachesPrincipal(t *testing.T) {
	submitter := &fakeSubmitter{result: notes.Result{Sent: true}}
	h := New(nil)
	h.Submitter = submitter

	req := httptest.NewRequest(http.MethodPost, "/api/notes", strings.NewReader(`{"note":"hello there"}`))
	req.Header.Set("Content-Type", "application/json")
	ctx := servermw.ContextWithPrincipal(req.Context(), servermw.Principal{
		ID: "u1", Name: "Ada", Email: "ada@example.com",
	})
	rec := httptest.NewRecorder()
	h.NoteSubmitHandler(rec, req.WithContext(ctx))

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "u1", submitter.last.UserID)
	require.Equal(t, "Ada", submitter.last.UserName)
	require.Equal(t, "ada@example.com", submitter.last.UserEmail)
}

func TestNoteSubmitHandlerStageErrorMapping(t *testing.T) {
	cases := []struct {
		kind       notes.ErrorKind
		message    string
		wantStatus int
		wantCode   string
	}{
		{notes.KindValidation, "", http.StatusUnprocessableEntity, "VALIDATION_FAILED"},
		{notes.KindRateLimited, "Too many notes sent.", http.StatusTooManyRequests, "RATE_LIMITED"},
		{notes.KindUpload, "Archive connection failed.", http.StatusServiceUnavailable, "UPLOAD_FAILED"},
		{notes.KindNotify, "Neural link disrupted.", http.StatusBadGateway, "NOTIFY_FAILED"},
		{notes.KindPersist, "Archive connection failed.", http.StatusServiceUnavailable, "PERSIST_FAILED"},
	}

	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			h := New(nil)
			h.Submitter = &fakeSubmitter{stageErr: stageError(tc.kind, tc.message)}

			req := httptest.NewRequest(http.MethodPost, "/api/notes", strings.NewReader(`{"note":"hello there","name":"Ada"}`))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			h.NoteSubmitHandler(rec, req)

			require.Equal(t, tc.wantStatus, rec.Code)

			var body struct {
				Error errorBody `json:"error"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			require.Equal(t, tc.wantCode, body.Error.Code)

			if tc.kind == notes.KindRateLimited {
				require.Equal(t, notes.RetryNoticeMs, body.Error.RetryNoticeMs)
			} else {
				require.Zero(t, body.Error.RetryNoticeMs)
			}
		})
	}
}

func TestNoteSubmitHandlerRejectsBadJSON(t *testing.T) {
	h := New(nil)
	h.Submitter = &fakeSubmitter{}

	req := httptest.NewRequest(http.MethodPost, "/api/notes", strings.NewReader(`{`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.NoteSubmitHandler(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
