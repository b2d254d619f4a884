package plan

import (
	"context"

	"github.com/kailas-cloud/jurex/internal/domain"
)

// Generator is the generative backend used for query classification.
type Generator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResult, error)
}
