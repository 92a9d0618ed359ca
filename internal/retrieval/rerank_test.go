// SPDX-License-Identifier: Apache-2.0

package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kraklabs/cie-core/internal/entity"
)

func TestRerank_ExplainPrefersSimplerNodes(t *testing.T) {
	simple := fk("simple")
	complexNode := fk("complex")
	fused := []Fused{{Key: simple, Score: 1.0}, {Key: complexNode, Score: 1.0}}
	attrs := map[entity.NodeKey]entity.Attrs{
		simple:      {Extra: map[string]string{"complexity": "0.1"}},
		complexNode: {Extra: map[string]string{"complexity": "0.9"}},
	}
	ranked := Rerank(fused, attrs, IntentExplain, nil)
	assert.Equal(t, simple, ranked[0].Key)
}

func TestRerank_RefactorPrefersComplexOrImpureNodes(t *testing.T) {
	pureSimple := fk("pure")
	impureComplex := fk("impure")
	fused := []Fused{{Key: pureSimple, Score: 1.0}, {Key: impureComplex, Score: 1.0}}
	attrs := map[entity.NodeKey]entity.Attrs{
		pureSimple:    {Extra: map[string]string{"purity": "1.0", "complexity": "0.1"}},
		impureComplex: {Extra: map[string]string{"purity": "0.0", "complexity": "0.9"}},
	}
	ranked := Rerank(fused, attrs, IntentRefactor, nil)
	assert.Equal(t, impureComplex, ranked[0].Key)
}

func TestRerank_NameMatchBreaksTie(t *testing.T) {
	nameMatch := fk("validate_email")
	noMatch := fk("Validator")
	fused := []Fused{{Key: noMatch, Score: 1.0}, {Key: nameMatch, Score: 1.0}}
	attrs := map[entity.NodeKey]entity.Attrs{
		nameMatch: {Doc: "validates an email address"},
		noMatch:   {Doc: "validates an email address"},
	}
	ranked := Rerank(fused, attrs, IntentGeneral, []string{"email", "validation"})
	assert.Equal(t, nameMatch, ranked[0].Key)
}
