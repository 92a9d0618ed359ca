// SPDX-License-Identifier: Apache-2.0

package embedmodel

import (
	"context"
	"fmt"
	"math"
)

// DeterministicModel derives a stable pseudo-random unit vector from a
// string hash of the input text. It is not semantically meaningful, but
// gives identical text an identical vector run over run without a network
// dependency, which is what tests and offline development need.
type DeterministicModel struct {
	dims int
}

// NewDeterministicModel constructs a DeterministicModel producing vectors of
// the given dimensionality.
func NewDeterministicModel(dims int) *DeterministicModel {
	if dims <= 0 {
		dims = 256
	}
	return &DeterministicModel{dims: dims}
}

func (m *DeterministicModel) ID() string { return fmt.Sprintf("deterministic-%d", m.dims) }
func (m *DeterministicModel) Dims() int  { return m.dims }

func (m *DeterministicModel) Embed(_ context.Context, text string) ([]float32, error) {
	hash := djb2(text)
	vec := make([]float32, m.dims)
	var norm float64
	for i := range vec {
		v := float32((hash+uint64(i)*7919)%10000)/10000.0*2.0 - 1.0
		vec[i] = v
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}
	return vec, nil
}

func djb2(s string) uint64 {
	var hash uint64 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint64(c)
	}
	return hash
}
