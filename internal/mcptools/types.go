// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package mcptools implements the tool surface of §6: one function per MCP
// tool, each a thin adapter between typed arguments and a core operation
// (graph store, vector index, retrieval, graph algorithms, ingest). Every
// tool returns a *ToolResult rather than raising, mirroring the teacher's
// pkg/tools convention of surfacing failures as error-flagged text instead
// of propagating Go errors across the MCP boundary.
package mcptools

import (
	"fmt"

	"github.com/kraklabs/cie-core/internal/config"
	"github.com/kraklabs/cie-core/internal/embedmodel"
	"github.com/kraklabs/cie-core/internal/graph"
	"github.com/kraklabs/cie-core/internal/ingest"
	"github.com/kraklabs/cie-core/internal/langfront"
	"github.com/kraklabs/cie-core/internal/vector"
)

// ToolResult represents the result of a tool execution.
type ToolResult struct {
	Text    string
	IsError bool
}

// NewResult creates a successful tool result.
func NewResult(text string) *ToolResult {
	return &ToolResult{Text: text}
}

// NewError creates an error tool result.
func NewError(text string) *ToolResult {
	return &ToolResult{Text: text, IsError: true}
}

// Errorf is a convenience constructor for a formatted error result.
func Errorf(format string, args ...any) *ToolResult {
	return &ToolResult{Text: fmt.Sprintf(format, args...), IsError: true}
}

// Deps bundles the core components every tool needs. One Deps is built per
// project and shared by every tool call against it.
type Deps struct {
	Store        *graph.Store
	Index        *vector.Index
	Model        embedmodel.Model
	Registry     *langfront.Registry
	Orchestrator *ingest.Orchestrator
	Config       *config.Config
}

// Truncate truncates a string to the specified length, marking the cut.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
