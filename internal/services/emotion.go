package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"prepview/interview-evaluator/internal/config"
)

// EmotionService classifies the dominant vocal emotion of one audio clip.
// It extracts a fixed-length acoustic feature vector locally and sends it
// to an external classifier server; the predicted class index is decoded
// back into a label through the configured label table.
type EmotionService interface {
	ClassifyEmotion(ctx context.Context, audioPath string) (string, error)
}

type emotionPredictRequest struct {
	Features []float32 `json:"features"`
}

type emotionPredictResponse struct {
	PredictedIndex int       `json:"predicted_index"`
	Confidence     float32   `json:"confidence"`
	Scores         []float32 `json:"scores,omitempty"`
}

type httpEmotionClassifier struct {
	client        *http.Client
	url           string
	labels        []string
	featureLength int
}

func NewEmotionService(cfg config.EmotionConfig) (EmotionService, error) {
	if len(cfg.Labels) == 0 {
		return nil, fmt.Errorf("emotion label table is empty")
	}
	if cfg.FeatureLength <= 0 {
		return nil, fmt.Errorf("emotion feature length must be positive")
	}

	return &httpEmotionClassifier{
		client:        &http.Client{Timeout: 60 * time.Second},
		url:           cfg.URL,
		labels:        cfg.Labels,
		featureLength: cfg.FeatureLength,
	}, nil
}

// ClassifyEmotion implements EmotionService.
func (e *httpEmotionClassifier) ClassifyEmotion(ctx context.Context, audioPath string) (string, error) {
	features, err := ExtractAcousticFeatures(audioPath)
	if err != nil {
		return "", err
	}

	features = NormalizeFeatureLength(features, e.featureLength)

	index, err := e.predict(ctx, features)
	if err != nil {
		return "", err
	}

	if index < 0 || index >= len(e.labels) {
		return "", fmt.Errorf("%w: predicted index %d outside label table (%d labels)",
			ErrModelInference, index, len(e.labels))
	}

	return e.labels[index], nil
}

func (e *httpEmotionClassifier) predict(ctx context.Context, features []float32) (int, error) {
	body, err := json.Marshal(emotionPredictRequest{Features: features})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrModelInference, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url+"/predict", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrModelInference, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrModelInference, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("%w: emotion server %s: %s", ErrModelInference, resp.Status, string(msg))
	}

	var out emotionPredictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("%w: decode response: %v", ErrModelInference, err)
	}

	return out.PredictedIndex, nil
}
