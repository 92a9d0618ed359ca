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

// Package config loads and resolves project configuration from
// .cie/project.yaml, the successor of the teacher's CozoDB-era
// bootstrap.ProjectConfig: still a project id plus a data directory, but
// with the CozoDB engine choice replaced by the thresholds and budgets the
// in-memory graph and vector index need (search defaults, algorithm node
// budgets, embedding model selection).
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the config file's name within a project's .cie directory.
const FileName = "project.yaml"

// Config is the on-disk project configuration.
type Config struct {
	ProjectID string `yaml:"project_id"`

	// EmbeddingModel selects the embedmodel.Model, e.g. "deterministic" or
	// "ollama:nomic-embed-text". Empty defers to the EMBEDDING_MODEL env var.
	EmbeddingModel string `yaml:"embedding_model,omitempty"`

	Search    SearchConfig    `yaml:"search,omitempty"`
	Algorithm AlgorithmConfig `yaml:"algorithm,omitempty"`
}

// SearchConfig holds the per-model-tunable retrieval defaults.
type SearchConfig struct {
	SemanticThreshold float64 `yaml:"semantic_threshold,omitempty"`
	HybridThreshold   float64 `yaml:"hybrid_threshold,omitempty"`
	DefaultK          int     `yaml:"default_k,omitempty"`
	MaxExpansionTerms int     `yaml:"max_expansion_terms,omitempty"`
}

// AlgorithmConfig bounds the cost of interactive graph algorithm calls.
type AlgorithmConfig struct {
	BetweennessNodeBudget int `yaml:"betweenness_node_budget,omitempty"`
	MaxPathDepth          int `yaml:"max_path_depth,omitempty"`
	MaxPaths              int `yaml:"max_paths,omitempty"`
}

// Default returns a Config with every documented per-model default filled
// in, per the Open Question decision to expose similarity thresholds as
// config with per-model documented defaults rather than a single constant.
func Default(projectID string) Config {
	return Config{
		ProjectID: projectID,
		Search: SearchConfig{
			SemanticThreshold: 0.20,
			HybridThreshold:   0.15,
			DefaultK:          10,
			MaxExpansionTerms: 8,
		},
		Algorithm: AlgorithmConfig{
			BetweennessNodeBudget: 10000,
			MaxPathDepth:          6,
			MaxPaths:              50,
		},
	}
}

// Dir returns the .cie configuration directory under root.
func Dir(root string) string {
	return filepath.Join(root, ".cie")
}

// Path returns the project.yaml path under root.
func Path(root string) string {
	return filepath.Join(Dir(root), FileName)
}

// Load reads and parses root's project.yaml.
func Load(root string) (*Config, error) {
	raw, err := os.ReadFile(Path(root))
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	fillDefaults(&cfg)
	return &cfg, nil
}

// Save writes cfg to root's project.yaml, creating the .cie directory if
// needed.
func Save(root string, cfg Config) error {
	if err := os.MkdirAll(Dir(root), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(Path(root), raw, 0o644)
}

func fillDefaults(cfg *Config) {
	d := Default(cfg.ProjectID)
	if cfg.Search.SemanticThreshold == 0 {
		cfg.Search.SemanticThreshold = d.Search.SemanticThreshold
	}
	if cfg.Search.HybridThreshold == 0 {
		cfg.Search.HybridThreshold = d.Search.HybridThreshold
	}
	if cfg.Search.DefaultK == 0 {
		cfg.Search.DefaultK = d.Search.DefaultK
	}
	if cfg.Search.MaxExpansionTerms == 0 {
		cfg.Search.MaxExpansionTerms = d.Search.MaxExpansionTerms
	}
	if cfg.Algorithm.BetweennessNodeBudget == 0 {
		cfg.Algorithm.BetweennessNodeBudget = d.Algorithm.BetweennessNodeBudget
	}
	if cfg.Algorithm.MaxPathDepth == 0 {
		cfg.Algorithm.MaxPathDepth = d.Algorithm.MaxPathDepth
	}
	if cfg.Algorithm.MaxPaths == 0 {
		cfg.Algorithm.MaxPaths = d.Algorithm.MaxPaths
	}
}
