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

// Package langfront defines the plugin boundary between source text and the
// neutral entity records the core graph consumes: one Analyzer per
// supported language, dispatched by file extension. This mirrors the
// teacher's pkg/ingestion.CodeParser interface (ParseFile returning a
// ParseResult) generalized to a {supported_extensions(), analyze(bytes,
// path)} capability set and a registry keyed by extension, rather than a
// single hardcoded multi-language switch.
package langfront

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kraklabs/cie-core/internal/entity"
)

// ModuleRecord is one module-level entity parsed from a file.
type ModuleRecord struct {
	Name    string
	Attrs   entity.Attrs
	Imports []string // imported module names
}

// FunctionRecord is one function-level entity parsed from a file, along
// with the (possibly unresolved) names of functions it calls.
type FunctionRecord struct {
	Module    string
	Name      string
	Arity     int
	Attrs     entity.Attrs
	CallNames []string
}

// AnalyzeResult is everything one Analyzer extracted from a single file.
type AnalyzeResult struct {
	Path      string
	Language  string
	Modules   []ModuleRecord
	Functions []FunctionRecord
}

// Analyzer turns the bytes of one source file into neutral entity records.
type Analyzer interface {
	// Extensions lists the file extensions (with leading dot, e.g. ".go")
	// this analyzer handles.
	Extensions() []string

	// Language is the tag stored on every record this analyzer produces.
	Language() string

	// Analyze parses content from path and extracts modules and functions.
	Analyze(path string, content []byte) (*AnalyzeResult, error)
}

// Registry dispatches files to an Analyzer by extension.
type Registry struct {
	byExt    map[string]Analyzer
	fallback Analyzer
}

// NewRegistry constructs an empty Registry whose fallback Analyzer (e.g.
// PlainText) handles every file no registered extension matches.
func NewRegistry(fallback Analyzer) *Registry {
	return &Registry{byExt: make(map[string]Analyzer), fallback: fallback}
}

// Register associates an Analyzer with all of its declared extensions,
// overwriting any prior registration for the same extension.
func (r *Registry) Register(a Analyzer) {
	for _, ext := range a.Extensions() {
		r.byExt[strings.ToLower(ext)] = a
	}
}

// For returns the Analyzer registered for path's extension, or the
// fallback if none matches.
func (r *Registry) For(path string) Analyzer {
	ext := strings.ToLower(filepath.Ext(path))
	if a, ok := r.byExt[ext]; ok {
		return a
	}
	return r.fallback
}

// FunctionID builds the canonical (module, name, arity) function identity
// string used as NodeKey.ID for function nodes.
func FunctionID(module, name string, arity int) string {
	return module + "." + name + "/" + strconv.Itoa(arity)
}
