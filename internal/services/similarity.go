package services

import (
	"context"
	"fmt"
	"math"
	"strings"
)

// Embedder produces a semantic vector for a text. GeminiService satisfies
// this; tests supply a stub.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// SimilarityService grades a candidate transcript against a reference
// answer as a [0, 100] accuracy percentage.
type SimilarityService interface {
	ScoreSimilarity(ctx context.Context, candidate, reference string) (float64, error)
}

type similarityScorer struct {
	embedder Embedder
}

func NewSimilarityService(embedder Embedder) SimilarityService {
	return &similarityScorer{embedder: embedder}
}

// ScoreSimilarity implements SimilarityService. The raw cosine similarity
// is clamped to [0, 1], rounded to 3 decimals for reproducibility, then
// stretched through ScaleAccuracy. An empty candidate is valid input and
// scores near zero; an empty reference is rejected before any model call.
func (s *similarityScorer) ScoreSimilarity(ctx context.Context, candidate, reference string) (float64, error) {
	if strings.TrimSpace(reference) == "" {
		return 0, ErrEmptyReference
	}

	candidateVec, err := s.embedder.GenerateEmbedding(ctx, candidate)
	if err != nil {
		return 0, fmt.Errorf("%w: embed candidate: %v", ErrComparison, err)
	}

	referenceVec, err := s.embedder.GenerateEmbedding(ctx, reference)
	if err != nil {
		return 0, fmt.Errorf("%w: embed reference: %v", ErrComparison, err)
	}

	raw, err := cosineSimilarity(candidateVec, referenceVec)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrComparison, err)
	}

	if raw < 0 {
		raw = 0
	}
	if raw > 1 {
		raw = 1
	}

	// Rounding the raw score before scaling keeps results reproducible
	// across runs; the 3-decimal point is part of the scoring contract.
	raw = math.Round(raw*1000) / 1000

	return ScaleAccuracy(raw), nil
}

// ScaleAccuracy maps raw semantic similarity onto a [0, 100] percentage.
// Anything at or below the midpoint earns no credit; the upper half
// [0.5, 1.0] is stretched linearly onto [0, 100]. Raw embedding
// similarity rarely reaches 1.0 even for paraphrases, and scores near 0.5
// are noise, so the stretch makes the output usable as a grade.
func ScaleAccuracy(raw float64) float64 {
	if raw < 0.5 {
		return 0.0
	}
	return (raw - 0.5) * 2 * 100
}

func cosineSimilarity(a, b []float32) (float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, fmt.Errorf("empty embedding vector")
	}
	if len(a) != len(b) {
		return 0, fmt.Errorf("embedding dimension mismatch: %d vs %d", len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, fmt.Errorf("zero-magnitude embedding vector")
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
