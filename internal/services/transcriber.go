package services

import (
	"context"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// TranscriptionService converts one audio clip into plain text. An empty
// transcript means no speech was detected and is a valid result, not an
// error.
type TranscriptionService interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

type whisperTranscriber struct {
	client *openai.Client
	model  string
}

func NewTranscriptionService(apiKey, model string) (TranscriptionService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	if model == "" {
		model = openai.Whisper1
	}

	return &whisperTranscriber{
		client: openai.NewClient(apiKey),
		model:  model,
	}, nil
}

// Transcribe implements TranscriptionService.
func (t *whisperTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	info, err := os.Stat(audioPath)
	if err != nil {
		return "", fmt.Errorf("%w: cannot read audio file: %v", ErrTranscription, err)
	}
	if info.Size() == 0 {
		return "", fmt.Errorf("%w: audio file is empty", ErrTranscription)
	}

	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		FilePath: audioPath,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranscription, err)
	}

	return strings.TrimSpace(resp.Text), nil
}
