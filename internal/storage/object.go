// Package storage uploads binary attachments to the hosted object-storage
// bucket and hands back their public URLs.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Uploader stores a binary blob and returns its public URL. The pipeline
// depends on this contract, not on the hosted backend behind it.
type Uploader interface {
	Upload(ctx context.Context, data []byte, contentType string) (string, error)
}

// BucketClient uploads objects to a storage bucket over its REST API.
// Object keys are generated, never caller-supplied, so uploads cannot
// collide or overwrite.
type BucketClient struct {
	BaseURL    string
	Bucket     string
	APIKey     string
	HTTPClient *http.Client
	Timeout    time.Duration

	newKey func() string
}

// NewBucketClient returns a client for the given bucket.
func NewBucketClient(baseURL, bucket, apiKey string) *BucketClient {
	return &BucketClient{
		BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		Bucket:  strings.TrimSpace(bucket),
		APIKey:  strings.TrimSpace(apiKey),
		newKey:  func() string { return uuid.New().String() },
	}
}

// Upload stores data under a generated unique key and returns the object's
// public URL.
func (c *BucketClient) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	if c.BaseURL == "" || c.Bucket == "" {
		return "", fmt.Errorf("object storage is not configured")
	}
	if len(data) == 0 {
		return "", fmt.Errorf("upload payload is empty")
	}

	key := c.newKey()
	if ext := extensionFor(contentType); ext != "" {
		key += ext
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	endpoint := fmt.Sprintf("%s/object/%s/%s", c.BaseURL, c.Bucket, key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<14))
		return "", fmt.Errorf("upload returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return fmt.Sprintf("%s/object/public/%s/%s", c.BaseURL, c.Bucket, key), nil
}

func extensionFor(contentType string) string {
	base := contentType
	if idx := strings.Index(base, ";"); idx >= 0 {
		base = base[:idx]
	}
	switch strings.TrimSpace(base) {
	case "audio/webm":
		return ".webm"
	case "audio/mpeg":
		return ".mp3"
	case "audio/ogg":
		return ".ogg"
	case "audio/wav", "audio/x-wav":
		return ".wav"
	}
	if exts, err := mime.ExtensionsByType(base); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}
