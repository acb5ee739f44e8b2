package services

import (
	"errors"
	"fmt"
)

// Error taxonomy for the evaluation pipeline. Each sentinel is scoped to
// the adapter that raises it; callers match with errors.Is.
var (
	// ErrTranscription covers speech-to-text failures: unreadable audio or
	// an engine error. An empty transcript is not an error.
	ErrTranscription = errors.New("transcription failed")

	// ErrFeatureExtraction is raised when an audio sample is too short or
	// undecodable for acoustic feature extraction.
	ErrFeatureExtraction = errors.New("feature extraction failed")

	// ErrModelInference covers failures of an external model invocation.
	ErrModelInference = errors.New("model inference failed")

	// ErrComparison is raised when either text cannot be embedded for
	// similarity scoring.
	ErrComparison = errors.New("similarity comparison failed")

	// ErrEmptyReference rejects an empty reference answer before any model
	// call. It is a validation failure, distinct from inference failure,
	// but still matches ErrComparison.
	ErrEmptyReference = fmt.Errorf("%w: empty reference answer", ErrComparison)

	// ErrFrameDecode is raised when a video frame buffer is malformed.
	ErrFrameDecode = errors.New("frame decode failed")
)

// Stage identifies which part of the pipeline a failure came from.
type Stage string

const (
	StageTranscription Stage = "transcription"
	StageEmotion       Stage = "emotion"
	StageSimilarity    Stage = "similarity"
	StageDetection     Stage = "detection"
)

// StageError tags an adapter failure with the pipeline stage it occurred
// in. The whole evaluation call fails with a single StageError; partial
// results are never returned.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
