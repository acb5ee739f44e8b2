package services

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"
)

// ResponseEvaluation is the combined verdict for one spoken answer.
// Immutable once assembled; the orchestrator is its only producer.
type ResponseEvaluation struct {
	Transcript string
	Emotion    string
	Similarity float64
}

// ResponseEvaluatorService fuses the independent model signals into one
// result per call. Audio path: transcription + emotion classification +
// similarity scoring. Video path: object detection + the anomaly rule.
//
// Failure policy: any adapter failure fails the whole call with a
// StageError naming the failed stage. Partial results are never returned,
// and proctoring is fail-closed: a broken detector surfaces as an error,
// never as "all clear".
type ResponseEvaluatorService interface {
	EvaluateResponse(ctx context.Context, audioPath, referenceAnswer string) (*ResponseEvaluation, error)
	CheckFrame(ctx context.Context, frame []byte) (AnomalyVerdict, error)
}

type responseEvaluator struct {
	transcriber         TranscriptionService
	emotions            EmotionService
	similarity          SimilarityService
	detector            DetectionService
	adapterTimeout      time.Duration
	confidenceThreshold float64
}

func NewResponseEvaluatorService(
	transcriber TranscriptionService,
	emotions EmotionService,
	similarity SimilarityService,
	detector DetectionService,
	adapterTimeout time.Duration,
	confidenceThreshold float64,
) ResponseEvaluatorService {
	return &responseEvaluator{
		transcriber:         transcriber,
		emotions:            emotions,
		similarity:          similarity,
		detector:            detector,
		adapterTimeout:      adapterTimeout,
		confidenceThreshold: confidenceThreshold,
	}
}

// EvaluateResponse implements ResponseEvaluatorService. Transcription and
// emotion classification are independent signals and run concurrently,
// each under its own adapter timeout; similarity scoring needs the
// transcript and runs after. An empty transcript (no discernible speech)
// is still scored against the reference answer.
func (e *responseEvaluator) EvaluateResponse(ctx context.Context, audioPath, referenceAnswer string) (*ResponseEvaluation, error) {
	if strings.TrimSpace(referenceAnswer) == "" {
		return nil, &StageError{Stage: StageSimilarity, Err: ErrEmptyReference}
	}

	var (
		wg            sync.WaitGroup
		transcript    string
		emotion       string
		transcribeErr error
		emotionErr    error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		stageCtx, cancel := e.stageContext(ctx)
		defer cancel()
		transcript, transcribeErr = e.transcriber.Transcribe(stageCtx, audioPath)
	}()
	go func() {
		defer wg.Done()
		stageCtx, cancel := e.stageContext(ctx)
		defer cancel()
		emotion, emotionErr = e.emotions.ClassifyEmotion(stageCtx, audioPath)
	}()
	wg.Wait()

	if transcribeErr != nil {
		return nil, &StageError{Stage: StageTranscription, Err: transcribeErr}
	}
	if emotionErr != nil {
		return nil, &StageError{Stage: StageEmotion, Err: emotionErr}
	}

	stageCtx, cancel := e.stageContext(ctx)
	defer cancel()

	similarity, err := e.similarity.ScoreSimilarity(stageCtx, transcript, referenceAnswer)
	if err != nil {
		return nil, &StageError{Stage: StageSimilarity, Err: err}
	}

	log.Printf("🎯 Response evaluated: emotion=%s similarity=%.1f transcript=%d chars\n",
		emotion, similarity, len(transcript))

	return &ResponseEvaluation{
		Transcript: transcript,
		Emotion:    emotion,
		Similarity: similarity,
	}, nil
}

// CheckFrame implements ResponseEvaluatorService.
func (e *responseEvaluator) CheckFrame(ctx context.Context, frame []byte) (AnomalyVerdict, error) {
	stageCtx, cancel := e.stageContext(ctx)
	defer cancel()

	detections, err := e.detector.DetectObjects(stageCtx, frame)
	if err != nil {
		return "", &StageError{Stage: StageDetection, Err: err}
	}

	return EvaluateAnomaly(detections, e.confidenceThreshold), nil
}

func (e *responseEvaluator) stageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.adapterTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.adapterTimeout)
}
