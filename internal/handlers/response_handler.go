package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"prepview/interview-evaluator/internal/models"
	"prepview/interview-evaluator/internal/repositories"
	"prepview/interview-evaluator/internal/services"
)

type ResponseHandler struct {
	evaluator      services.ResponseEvaluatorService
	setRepo        repositories.QuestionSetRepository
	storageService services.StorageService
	maxFileSize    int64
}

func NewResponseHandler(
	evaluator services.ResponseEvaluatorService,
	setRepo repositories.QuestionSetRepository,
	storageService services.StorageService,
	maxFileSize int64,
) *ResponseHandler {
	return &ResponseHandler{
		evaluator:      evaluator,
		setRepo:        setRepo,
		storageService: storageService,
		maxFileSize:    maxFileSize,
	}
}

// HandleEvaluateResponse handles POST /response: multipart "audio" plus
// either an explicit "correct_answer" or a "question_id" referencing the
// generated bank. The audio clip is request-scoped and removed once the
// evaluation finishes, on every exit path.
func (h *ResponseHandler) HandleEvaluateResponse(c *fiber.Ctx) error {
	audioFile, err := c.FormFile("audio")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No audio file uploaded. Please upload an 'audio' form file.",
		})
	}

	if audioFile.Size > h.maxFileSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("Audio file too large. Max size: %d bytes", h.maxFileSize),
		})
	}

	referenceAnswer, err := h.resolveReferenceAnswer(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	filename, audioPath, err := h.storageService.SaveFile(audioFile, "audio")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("failed to save audio file: %v", err),
		})
	}
	defer h.storageService.DeleteFile(filename)

	result, err := h.evaluator.EvaluateResponse(c.Context(), audioPath, referenceAnswer)
	if err != nil {
		return evaluationErrorResponse(c, err)
	}

	return c.JSON(models.ResponseEvalResponse{
		Text:       result.Transcript,
		Emotion:    result.Emotion,
		Similarity: result.Similarity,
	})
}

// resolveReferenceAnswer prefers an explicit correct_answer form value and
// falls back to looking the answer up from the question bank.
func (h *ResponseHandler) resolveReferenceAnswer(c *fiber.Ctx) (string, error) {
	if answer := c.FormValue("correct_answer"); answer != "" {
		return answer, nil
	}

	questionIDParam := c.FormValue("question_id")
	if questionIDParam == "" {
		return "", errors.New("either correct_answer or question_id is required")
	}

	questionID, err := uuid.Parse(questionIDParam)
	if err != nil {
		return "", errors.New("invalid question_id format")
	}

	qa, err := h.setRepo.FindQuestionByID(questionID)
	if err != nil {
		return "", errors.New("question not found")
	}

	return qa.Answer, nil
}

func evaluationErrorResponse(c *fiber.Ctx, err error) error {
	var stageErr *services.StageError

	status := fiber.StatusInternalServerError
	stage := ""
	if errors.As(err, &stageErr) {
		stage = string(stageErr.Stage)
	}

	// Validation failures are the caller's to fix
	if errors.Is(err, services.ErrEmptyReference) || errors.Is(err, services.ErrFeatureExtraction) {
		status = fiber.StatusBadRequest
	} else if errors.Is(err, services.ErrModelInference) || errors.Is(err, services.ErrTranscription) {
		status = fiber.StatusBadGateway
	}

	resp := fiber.Map{"error": err.Error()}
	if stage != "" {
		resp["stage"] = stage
	}

	return c.Status(status).JSON(resp)
}
