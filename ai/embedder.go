// Package ai holds the classification primitives: the embedding capability,
// similarity math, text preprocessing, keyword mining and the keyword-based
// priority rules. Everything here is side-effect free except the HTTP
// embedder.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrEmbedderUnavailable is returned when no embedding backend is configured.
// Callers treat it as "no prediction", never as a fatal error.
var ErrEmbedderUnavailable = errors.New("embedding capability unavailable")

// Embedder turns a batch of texts into dense vectors. Vector i corresponds
// to texts[i].
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// HTTPEmbedder calls an external sentence-encoder service:
// POST {"texts": [...]} -> {"embeddings": [[...], ...]}.
type HTTPEmbedder struct {
	url    string
	client *http.Client
}

// NewHTTPEmbedder creates an embedder for the given service URL. An empty
// URL yields an embedder that always reports ErrEmbedderUnavailable.
func NewHTTPEmbedder(url string, timeout time.Duration) *HTTPEmbedder {
	return &HTTPEmbedder{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type embedRequest struct {
	Texts []string `json:"texts"`
}

type embedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

// Embed encodes texts in a single batch call.
func (e *HTTPEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if e.url == "" {
		return nil, ErrEmbedderUnavailable
	}
	if len(texts) == 0 {
		return nil, nil
	}

	payload, err := json.Marshal(embedRequest{Texts: texts})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("embedding service status %d", resp.StatusCode)
	}

	var decoded embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode embed response: %w", err)
	}
	if len(decoded.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding service returned %d vectors for %d texts", len(decoded.Embeddings), len(texts))
	}
	return decoded.Embeddings, nil
}
