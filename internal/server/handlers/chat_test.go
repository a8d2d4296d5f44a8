package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/notelink/notelink/internal/clientstate"
	"github.com/notelink/notelink/internal/ratelimit"
	"github.com/notelink/notelink/internal/webhook"
)

func TestChatHandlerRelaysReply(t *testing.T) {
	chat := &fakeChat{reply: webhook.ChatReply{Output: "hi", Suggestions: []string{"a", "b"}}}
	h := New(nil)
	h.Chat = chat

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"hello"}`))
	rec := httptest.NewRecorder()
	h.ChatHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "hello", chat.last)

	var reply webhook.ChatReply
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&reply))
	require.Equal(t, "hi", reply.Output)
	require.Equal(t, []string{"a", "b"}, reply.Suggestions)
}

func TestChatHandlerRejectsEmptyMessage(t *testing.T) {
	h := New(nil)
	h.Chat = &fakeChat{}

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"   "}`))
	rec := httptest.NewRecorder()
	h.ChatHandler(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatHandlerRejectsBadJSON(t *testing.T) {
	h := New(nil)
	h.Chat = &fakeChat{}

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{`))
	rec := httptest.NewRecorder()
	h.ChatHandler(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatHandlerRateLimitsPerClient(t *testing.T) {
	chat := &fakeChat{reply: webhook.ChatReply{Output: "ok"}}
	h := New(nil)
	h.Chat = chat
	h.Limiter = ratelimit.New(clientstate.NewMemStore(), nil)
	h.ChatLimit = 2
	h.ChatWindow = time.Minute

	send := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"hello"}`))
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ChatHandler(rec, req)
		return rec
	}

	require.Equal(t, http.StatusOK, send("10.0.0.1:1111").Code)
	require.Equal(t, http.StatusOK, send("10.0.0.1:2222").Code)
	require.Equal(t, http.StatusTooManyRequests, send("10.0.0.1:3333").Code)

	// A different client is unaffected.
	require.Equal(t, http.StatusOK, send("10.0.0.2:1111").Code)

	// The rejected call never reached the webhook.
	require.Equal(t, 3, chat.calls)
}
