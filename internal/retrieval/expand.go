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

// Package retrieval implements hybrid search: query expansion, a dense
// candidate set from the vector index, a lexical/graph candidate set from a
// bleve full-text index plus 1-hop graph neighbors, reciprocal-rank fusion,
// and intent-aware semantic re-ranking.
package retrieval

import "strings"

// Intent is one of a fixed set of query intents that bias re-ranking.
type Intent string

const (
	IntentGeneral  Intent = "general"
	IntentExplain  Intent = "explain"
	IntentRefactor Intent = "refactor"
	IntentDebug    Intent = "debug"
)

// Valid reports whether i is one of the closed set of intents.
func (i Intent) Valid() bool {
	switch i {
	case IntentGeneral, IntentExplain, IntentRefactor, IntentDebug:
		return true
	default:
		return false
	}
}

// constructSynonyms pairs programming-construct vocabulary that shows up
// under different names across codebases.
var constructSynonyms = map[string][]string{
	"map":       {"transform", "iterate"},
	"transform": {"map", "iterate"},
	"iterate":   {"map", "transform"},
	"filter":    {"select", "where"},
	"reduce":    {"fold", "accumulate"},
	"fold":      {"reduce", "accumulate"},
}

// crossLanguageSynonyms pairs near-equivalent concepts across language
// communities so a query written with one community's vocabulary still
// matches code written with another's.
var crossLanguageSynonyms = map[string][]string{
	"promise": {"future", "async task"},
	"future":  {"promise", "async task"},
	"async":   {"promise", "future"},
	"channel": {"queue", "pipe"},
	"struct":  {"record", "dataclass"},
}

// intentTerms are additional terms appended for a given intent, reflecting
// what that intent typically searches for.
var intentTerms = map[Intent][]string{
	IntentExplain:  {"documentation", "overview"},
	IntentRefactor: {"duplicate", "complex"},
	IntentDebug:    {"error", "panic", "exception"},
}

// Expand rewrites query into a bounded set of terms: the original tokens
// plus construct synonyms, cross-language synonyms, and intent-dependent
// terms, in that order, capped at maxTerms.
func Expand(query string, intent Intent, maxTerms int) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(term string) bool {
		term = strings.TrimSpace(strings.ToLower(term))
		if term == "" {
			return false
		}
		if _, ok := seen[term]; ok {
			return false
		}
		if maxTerms > 0 && len(out) >= maxTerms {
			return false
		}
		seen[term] = struct{}{}
		out = append(out, term)
		return true
	}

	tokens := tokenize(query)
	for _, tok := range tokens {
		if !add(tok) {
			return out
		}
	}
	for _, tok := range tokens {
		for _, syn := range constructSynonyms[tok] {
			if !add(syn) {
				return out
			}
		}
		for _, syn := range crossLanguageSynonyms[tok] {
			if !add(syn) {
				return out
			}
		}
	}
	for _, term := range intentTerms[intent] {
		if !add(term) {
			return out
		}
	}
	return out
}

func tokenize(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return false
		default:
			return true
		}
	})
	return fields
}
