// SPDX-License-Identifier: Apache-2.0

package embedmodel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
)

// OllamaModel calls a local Ollama server's /api/embeddings endpoint.
// Grounded on the teacher's pkg/llm ollamaProvider HTTP client: same
// OLLAMA_HOST/OLLAMA_BASE_URL env var fallback chain, same bare
// net/http.Client with a timeout, no generated SDK.
type OllamaModel struct {
	baseURL string
	model   string
	client  *http.Client

	mu   sync.RWMutex
	dims int
}

// NewOllamaModel constructs an OllamaModel for the given model name. If
// baseURL is empty, it falls back to OLLAMA_HOST, then OLLAMA_BASE_URL,
// then http://localhost:11434.
func NewOllamaModel(model, baseURL string) *OllamaModel {
	if baseURL == "" {
		baseURL = os.Getenv("OLLAMA_HOST")
	}
	if baseURL == "" {
		baseURL = os.Getenv("OLLAMA_BASE_URL")
	}
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "nomic-embed-text"
	}
	return &OllamaModel{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		dims:    768, // nomic-embed-text's native dimensionality; updated on first real call
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (m *OllamaModel) ID() string { return "ollama:" + m.model }

func (m *OllamaModel) Dims() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dims
}

func (m *OllamaModel) Embed(ctx context.Context, text string) ([]float32, error) {
	payload := map[string]any{"model": m.model, "prompt": text}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("ollama embeddings: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ollama embeddings: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama embeddings: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama embeddings: status %d: %s", resp.StatusCode, string(raw))
	}

	var result struct {
		Embedding []float64 `json:"embedding"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("ollama embeddings: decode response: %w", err)
	}

	vec := make([]float32, len(result.Embedding))
	var norm float64
	for i, v := range result.Embedding {
		vec[i] = float32(v)
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}
	m.mu.Lock()
	m.dims = len(vec)
	m.mu.Unlock()
	return vec, nil
}
