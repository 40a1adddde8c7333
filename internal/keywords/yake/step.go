package yake

import (
	"context"
	"errors"
	"strings"

	"github.com/custodia-labs/pagecluster/internal/core/domain"
	"github.com/custodia-labs/pagecluster/internal/core/ports/driven"
)

// StepName identifies the keyword step in pipelines.
const StepName = "keywords"

// Ensure Step implements the interface.
var _ driven.TextStep = (*Step)(nil)

// Step replaces text with its top keywords joined by spaces.
// Text without keywords becomes the empty string.
type Step struct {
	extractor driven.KeywordExtractor
	count     int
}

// NewStep creates a keyword pipeline step keeping count keywords.
func NewStep(extractor driven.KeywordExtractor, count int) *Step {
	return &Step{extractor: extractor, count: count}
}

// Name returns the step name.
func (s *Step) Name() string {
	return StepName
}

// Process extracts keywords from text.
func (s *Step) Process(_ context.Context, text string) (string, error) {
	keywords, err := s.extractor.Extract(text, s.count)
	if errors.Is(err, domain.ErrNoKeywords) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.Join(keywords, " "), nil
}
