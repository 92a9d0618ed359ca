// SPDX-License-Identifier: Apache-2.0

package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpand_IncludesConstructSynonyms(t *testing.T) {
	terms := Expand("map over list", IntentGeneral, 0)
	assert.Contains(t, terms, "map")
	assert.Contains(t, terms, "transform")
	assert.Contains(t, terms, "iterate")
}

func TestExpand_IncludesIntentTerms(t *testing.T) {
	terms := Expand("connection", IntentDebug, 0)
	assert.Contains(t, terms, "error")
	assert.Contains(t, terms, "panic")
}

func TestExpand_BoundedByMaxTerms(t *testing.T) {
	terms := Expand("map transform iterate", IntentDebug, 2)
	assert.Len(t, terms, 2)
}

func TestExpand_DedupesCaseInsensitive(t *testing.T) {
	terms := Expand("Map MAP map", IntentGeneral, 0)
	count := 0
	for _, term := range terms {
		if term == "map" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}
