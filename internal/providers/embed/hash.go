// Package embed holds the text-to-vector backends: a Gemini REST embedder
// for real runs and a deterministic hash embedder for tests and offline use.
package embed

import (
	"context"
	"hash/fnv"
	"math"
)

const defaultHashDim = 64

// HashEmbedder derives a unit vector from an FNV seed expanded with an LCG.
// Identical texts always embed identically; similarity between different
// texts is meaningless. It exists so the vector store works without any
// network access.
type HashEmbedder struct {
	dim int
}

func NewHashEmbedder(dim int) *HashEmbedder {
	if dim <= 0 {
		dim = defaultHashDim
	}
	return &HashEmbedder{dim: dim}
}

func (e *HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	h := fnv.New64a()
	h.Write([]byte(text))
	state := h.Sum64()

	vec := make([]float64, e.dim)
	var sum float64
	for i := range vec {
		state = state*6364136223846793005 + 1442695040888963407
		v := float64(int64(state)) / float64(math.MaxInt64)
		vec[i] = v
		sum += v * v
	}

	norm := math.Sqrt(sum)
	if norm == 0 {
		vec[0] = 1
		norm = 1
	}

	out := make([]float32, e.dim)
	for i, v := range vec {
		out[i] = float32(v / norm)
	}

	return out, nil
}
