package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"prepview/interview-evaluator/internal/models"
	"prepview/interview-evaluator/internal/services"
)

type stubStorage struct {
	dir     string
	deleted []string
}

func (s *stubStorage) SaveFile(file *multipart.FileHeader, fileType string) (string, string, error) {
	filename := fileType + "_" + uuid.New().String()
	path := filepath.Join(s.dir, filename)

	src, err := file.Open()
	if err != nil {
		return "", "", err
	}
	defer src.Close()

	dst, err := os.Create(path)
	if err != nil {
		return "", "", err
	}
	defer dst.Close()

	if _, err := dst.ReadFrom(src); err != nil {
		return "", "", err
	}
	return filename, path, nil
}

func (s *stubStorage) GetFilePath(filename string) string {
	return filepath.Join(s.dir, filename)
}

func (s *stubStorage) DeleteFile(filename string) error {
	s.deleted = append(s.deleted, filename)
	return os.Remove(s.GetFilePath(filename))
}

func (s *stubStorage) EnsureUploadDir() error { return nil }

type stubSetRepo struct {
	questions map[uuid.UUID]*models.QuestionAnswer
}

func (r *stubSetRepo) Create(*models.QuestionSet) error { return nil }

func (r *stubSetRepo) FindByID(uuid.UUID) (*models.QuestionSet, error) {
	return nil, errors.New("not found")
}

func (r *stubSetRepo) FindQuestionByID(id uuid.UUID) (*models.QuestionAnswer, error) {
	qa, ok := r.questions[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return qa, nil
}

func (r *stubSetRepo) UpdateStatus(uuid.UUID, models.QuestionSetStatus) error { return nil }
func (r *stubSetRepo) UpdateError(uuid.UUID, string) error                    { return nil }
func (r *stubSetRepo) SaveQuestions(uuid.UUID, []models.QuestionAnswer) error { return nil }

func (r *stubSetRepo) FindPendingJobs(int) ([]models.QuestionSet, error) { return nil, nil }
func (r *stubSetRepo) FindCompleted() ([]models.QuestionSet, error)      { return nil, nil }

type responseTestEnv struct {
	app       *fiber.App
	evaluator *stubEvaluator
	storage   *stubStorage
}

func newResponseTestEnv(t *testing.T, evaluator *stubEvaluator, repo *stubSetRepo) *responseTestEnv {
	t.Helper()

	if repo == nil {
		repo = &stubSetRepo{}
	}
	storage := &stubStorage{dir: t.TempDir()}

	app := fiber.New()
	handler := NewResponseHandler(evaluator, repo, storage, 10<<20)
	app.Post("/response", handler.HandleEvaluateResponse)

	return &responseTestEnv{app: app, evaluator: evaluator, storage: storage}
}

func postResponseForm(t *testing.T, app *fiber.App, fields map[string]string, withAudio bool) *http.Response {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if withAudio {
		part, err := writer.CreateFormFile("audio", "answer.wav")
		require.NoError(t, err)
		_, err = part.Write([]byte("RIFF fake audio payload"))
		require.NoError(t, err)
	}
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/response", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestHandleEvaluateResponseReturnsEvaluation(t *testing.T) {
	evaluator := &stubEvaluator{
		result: &services.ResponseEvaluation{
			Transcript: "paris is the capital of france",
			Emotion:    "neutral",
			Similarity: 84.5,
		},
	}
	env := newResponseTestEnv(t, evaluator, nil)

	resp := postResponseForm(t, env.app, map[string]string{
		"correct_answer": "The capital of France is Paris.",
	}, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out models.ResponseEvalResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, "paris is the capital of france", out.Text)
	require.Equal(t, "neutral", out.Emotion)
	require.InDelta(t, 84.5, out.Similarity, 1e-9)

	// The saved clip is cleaned up after the evaluation
	require.Len(t, env.storage.deleted, 1)
}

func TestHandleEvaluateResponseResolvesAnswerFromBank(t *testing.T) {
	questionID := uuid.New()
	repo := &stubSetRepo{questions: map[uuid.UUID]*models.QuestionAnswer{
		questionID: {ID: questionID, Question: "Q?", Answer: "Stored answer."},
	}}
	evaluator := &stubEvaluator{
		result: &services.ResponseEvaluation{Transcript: "stored answer", Emotion: "happy", Similarity: 100},
	}
	env := newResponseTestEnv(t, evaluator, repo)

	resp := postResponseForm(t, env.app, map[string]string{
		"question_id": questionID.String(),
	}, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHandleEvaluateResponseMissingAudio(t *testing.T) {
	env := newResponseTestEnv(t, &stubEvaluator{}, nil)

	resp := postResponseForm(t, env.app, map[string]string{
		"correct_answer": "Some answer.",
	}, false)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleEvaluateResponseMissingReference(t *testing.T) {
	env := newResponseTestEnv(t, &stubEvaluator{}, nil)

	resp := postResponseForm(t, env.app, nil, true)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleEvaluateResponseUnknownQuestionID(t *testing.T) {
	env := newResponseTestEnv(t, &stubEvaluator{}, &stubSetRepo{})

	resp := postResponseForm(t, env.app, map[string]string{
		"question_id": uuid.New().String(),
	}, true)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleEvaluateResponseStageErrorMapping(t *testing.T) {
	evaluator := &stubEvaluator{
		evalErr: &services.StageError{Stage: services.StageTranscription, Err: services.ErrTranscription},
	}
	env := newResponseTestEnv(t, evaluator, nil)

	resp := postResponseForm(t, env.app, map[string]string{
		"correct_answer": "Some answer.",
	}, true)
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, "transcription", out["stage"])
}

func TestHandleEvaluateResponseBadAudioIsClientError(t *testing.T) {
	evaluator := &stubEvaluator{
		evalErr: &services.StageError{Stage: services.StageEmotion, Err: services.ErrFeatureExtraction},
	}
	env := newResponseTestEnv(t, evaluator, nil)

	resp := postResponseForm(t, env.app, map[string]string{
		"correct_answer": "Some answer.",
	}, true)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
