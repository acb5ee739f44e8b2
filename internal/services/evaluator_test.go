package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubTranscriber struct {
	text   string
	err    error
	called bool
}

func (s *stubTranscriber) Transcribe(_ context.Context, _ string) (string, error) {
	s.called = true
	return s.text, s.err
}

type stubEmotionClassifier struct {
	label  string
	err    error
	called bool
}

func (s *stubEmotionClassifier) ClassifyEmotion(_ context.Context, _ string) (string, error) {
	s.called = true
	return s.label, s.err
}

type stubSimilarityScorer struct {
	score        float64
	err          error
	gotCandidate string
	gotReference string
	called       bool
}

func (s *stubSimilarityScorer) ScoreSimilarity(_ context.Context, candidate, reference string) (float64, error) {
	s.called = true
	s.gotCandidate = candidate
	s.gotReference = reference
	return s.score, s.err
}

type stubDetector struct {
	detections []Detection
	err        error
}

func (s *stubDetector) DetectObjects(_ context.Context, _ []byte) ([]Detection, error) {
	return s.detections, s.err
}

func newTestEvaluator(t TranscriptionService, e EmotionService, s SimilarityService, d DetectionService) ResponseEvaluatorService {
	return NewResponseEvaluatorService(t, e, s, d, 5*time.Second, 0.5)
}

func TestEvaluateResponseAssemblesAllSignals(t *testing.T) {
	transcriber := &stubTranscriber{text: "The capital city of France is Paris."}
	emotions := &stubEmotionClassifier{label: "neutral"}
	similarity := &stubSimilarityScorer{score: 72.5}
	evaluator := newTestEvaluator(transcriber, emotions, similarity, &stubDetector{})

	result, err := evaluator.EvaluateResponse(context.Background(), "/tmp/answer.wav", "Paris is the capital of France.")
	require.NoError(t, err)
	require.Equal(t, "The capital city of France is Paris.", result.Transcript)
	require.Equal(t, "neutral", result.Emotion)
	require.Equal(t, 72.5, result.Similarity)

	// The transcript is the similarity candidate
	require.Equal(t, "The capital city of France is Paris.", similarity.gotCandidate)
	require.Equal(t, "Paris is the capital of France.", similarity.gotReference)
}

func TestEvaluateResponseEmptyTranscriptStillScored(t *testing.T) {
	// Silence is a valid answer: empty transcript, scored against the
	// reference, no error.
	transcriber := &stubTranscriber{text: ""}
	emotions := &stubEmotionClassifier{label: "neutral"}
	similarity := &stubSimilarityScorer{score: 0}
	evaluator := newTestEvaluator(transcriber, emotions, similarity, &stubDetector{})

	result, err := evaluator.EvaluateResponse(context.Background(), "/tmp/silence.wav", "Photosynthesis converts light to chemical energy.")
	require.NoError(t, err)
	require.Empty(t, result.Transcript)
	require.Equal(t, 0.0, result.Similarity)
	require.True(t, similarity.called)
	require.Empty(t, similarity.gotCandidate)
}

func TestEvaluateResponseTranscriptionFailureTagged(t *testing.T) {
	transcriber := &stubTranscriber{err: errors.New("engine exploded")}
	emotions := &stubEmotionClassifier{label: "happy"}
	similarity := &stubSimilarityScorer{}
	evaluator := newTestEvaluator(transcriber, emotions, similarity, &stubDetector{})

	_, err := evaluator.EvaluateResponse(context.Background(), "/tmp/answer.wav", "a reference")
	require.Error(t, err)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	require.Equal(t, StageTranscription, stageErr.Stage)
	require.False(t, similarity.called, "similarity must not run after a failed stage")
}

func TestEvaluateResponseEmotionFailureTagged(t *testing.T) {
	transcriber := &stubTranscriber{text: "an answer"}
	emotions := &stubEmotionClassifier{err: ErrModelInference}
	similarity := &stubSimilarityScorer{}
	evaluator := newTestEvaluator(transcriber, emotions, similarity, &stubDetector{})

	_, err := evaluator.EvaluateResponse(context.Background(), "/tmp/answer.wav", "a reference")

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	require.Equal(t, StageEmotion, stageErr.Stage)
	require.ErrorIs(t, err, ErrModelInference)
}

func TestEvaluateResponseEmptyReferenceRejectedUpFront(t *testing.T) {
	transcriber := &stubTranscriber{text: "an answer"}
	emotions := &stubEmotionClassifier{label: "neutral"}
	evaluator := newTestEvaluator(transcriber, emotions, &stubSimilarityScorer{}, &stubDetector{})

	_, err := evaluator.EvaluateResponse(context.Background(), "/tmp/answer.wav", "")
	require.ErrorIs(t, err, ErrEmptyReference)
	require.False(t, transcriber.called, "no adapter should run for invalid input")
	require.False(t, emotions.called)
}

func TestCheckFrameComposesDetectionAndRule(t *testing.T) {
	detector := &stubDetector{detections: []Detection{
		{ClassName: "person", Confidence: 0.9},
		{ClassName: "cell phone", Confidence: 0.8},
	}}
	evaluator := newTestEvaluator(&stubTranscriber{}, &stubEmotionClassifier{}, &stubSimilarityScorer{}, detector)

	verdict, err := evaluator.CheckFrame(context.Background(), []byte("frame"))
	require.NoError(t, err)
	require.Equal(t, MobilePhoneDetected, verdict)
}

func TestCheckFrameFailsClosed(t *testing.T) {
	// A broken detector must surface as an error, never "all clear".
	detector := &stubDetector{err: ErrModelInference}
	evaluator := newTestEvaluator(&stubTranscriber{}, &stubEmotionClassifier{}, &stubSimilarityScorer{}, detector)

	verdict, err := evaluator.CheckFrame(context.Background(), []byte("frame"))
	require.Error(t, err)
	require.NotEqual(t, NoAnomaly, verdict)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	require.Equal(t, StageDetection, stageErr.Stage)
}
