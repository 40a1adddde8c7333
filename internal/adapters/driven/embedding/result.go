package embedding

import (
	"fmt"

	"github.com/custodia-labs/pagecluster/internal/core/domain"
)

// ToFloat32 converts a model vector and checks it against the expected size.
// An empty vector returns domain.ErrEmptyEmbeddingResult. A size mismatch
// returns domain.ErrEmbeddingModel. dimensions <= 0 skips the size check.
func ToFloat32(values []float64, dimensions int) ([]float32, error) {
	if len(values) == 0 {
		return nil, domain.ErrEmptyEmbeddingResult
	}
	if dimensions > 0 && len(values) != dimensions {
		return nil, fmt.Errorf("%w: model returned %d dimensions, expected %d",
			domain.ErrEmbeddingModel, len(values), dimensions)
	}

	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out, nil
}
