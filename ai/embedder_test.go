package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPEmbedder_UnconfiguredIsUnavailable(t *testing.T) {
	embedder := NewHTTPEmbedder("", 5*time.Second)
	_, err := embedder.Embed(context.Background(), []string{"some text"})
	assert.ErrorIs(t, err, ErrEmbedderUnavailable)
}

func TestHTTPEmbedder_BatchRoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Texts []string `json:"texts"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Texts, 2)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"embeddings": [][]float64{{1, 0}, {0, 1}},
		})
	}))
	defer server.Close()

	embedder := NewHTTPEmbedder(server.URL, 5*time.Second)
	vectors, err := embedder.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float64{1, 0}, vectors[0])
}

func TestHTTPEmbedder_CountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"embeddings": [][]float64{{1, 0}},
		})
	}))
	defer server.Close()

	embedder := NewHTTPEmbedder(server.URL, 5*time.Second)
	_, err := embedder.Embed(context.Background(), []string{"a", "b"})
	assert.Error(t, err)
}

func TestHTTPEmbedder_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	embedder := NewHTTPEmbedder(server.URL, 5*time.Second)
	_, err := embedder.Embed(context.Background(), []string{"a"})
	assert.Error(t, err)
}

func TestHTTPEmbedder_EmptyBatch(t *testing.T) {
	embedder := NewHTTPEmbedder("http://unused.invalid", 5*time.Second)
	vectors, err := embedder.Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vectors)
}
