// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package embedmodel provides the embedding runtime: a Model interface plus
// a deterministic in-process implementation and an Ollama-backed HTTP
// client, selected by the EMBEDDING_MODEL environment variable the way
// pkg/llm.NewProvider selects an LLM backend from env vars.
package embedmodel

import (
	"context"
	"os"
)

// Model generates embedding vectors for source text.
type Model interface {
	// Embed returns an L2-normalized vector for text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// ID identifies the model (persisted alongside cached vectors so a
	// model swap is detected rather than silently mixing vector spaces).
	ID() string

	// Dims is the fixed output dimensionality of this model.
	Dims() int
}

// FromEnv selects a Model based on EMBEDDING_MODEL ("deterministic" or
// "ollama:<model-name>", default "deterministic").
func FromEnv() Model {
	spec := os.Getenv("EMBEDDING_MODEL")
	return fromSpec(spec)
}

func fromSpec(spec string) Model {
	switch {
	case spec == "" || spec == "deterministic":
		return NewDeterministicModel(256)
	case len(spec) > len("ollama:") && spec[:len("ollama:")] == "ollama:":
		return NewOllamaModel(spec[len("ollama:"):], "")
	default:
		return NewDeterministicModel(256)
	}
}
