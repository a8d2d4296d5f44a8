package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUploadPostsObjectAndReturnsPublicURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/object/audio-notes/fixed-key.webm", r.URL.Path)
		require.Equal(t, "audio/webm", r.Header.Get("Content-Type"))
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.Equal(t, []byte{1, 2, 3}, body)

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewBucketClient(server.URL, "audio-notes", "secret")
	client.HTTPClient = server.Client()
	client.newKey = func() string { return "fixed-key" }

	url, err := client.Upload(context.Background(), []byte{1, 2, 3}, "audio/webm")
	require.NoError(t, err)
	require.Equal(t, server.URL+"/object/public/audio-notes/fixed-key.webm", url)
}

func TestUploadErrorsOnNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("denied"))
	}))
	defer server.Close()

	client := NewBucketClient(server.URL, "audio-notes", "")
	client.HTTPClient = server.Client()

	_, err := client.Upload(context.Background(), []byte{1}, "audio/webm")
	require.Error(t, err)
	require.Contains(t, err.Error(), "403")
	require.Contains(t, err.Error(), "denied")
}

func TestUploadRejectsEmptyPayload(t *testing.T) {
	client := NewBucketClient("https://store.example.com", "audio-notes", "")
	_, err := client.Upload(context.Background(), nil, "audio/webm")
	require.Error(t, err)
}

func TestUploadRequiresConfiguration(t *testing.T) {
	client := NewBucketClient("", "", "")
	_, err := client.Upload(context.Background(), []byte{1}, "audio/webm")
	require.Error(t, err)
}

func TestExtensionForKnownAudioTypes(t *testing.T) {
	require.Equal(t, ".webm", extensionFor("audio/webm"))
	require.Equal(t, ".mp3", extensionFor("audio/mpeg"))
	require.Equal(t, ".ogg", extensionFor("audio/ogg;codecs=opus"))
	require.Equal(t, "", extensionFor("application/x-unknown"))
}
