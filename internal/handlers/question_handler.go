package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"prepview/interview-evaluator/internal/models"
	"prepview/interview-evaluator/internal/repositories"
	"prepview/interview-evaluator/internal/services"
)

type QuestionHandler struct {
	setRepo repositories.QuestionSetRepository
	docRepo repositories.DocumentRepository
	worker  services.Worker
}

func NewQuestionHandler(
	setRepo repositories.QuestionSetRepository,
	docRepo repositories.DocumentRepository,
	worker services.Worker,
) *QuestionHandler {
	return &QuestionHandler{
		setRepo: setRepo,
		docRepo: docRepo,
		worker:  worker,
	}
}

// HandleGenerate handles POST /questions: enqueue a generation job for an
// uploaded document and return the job ID immediately.
func (h *QuestionHandler) HandleGenerate(c *fiber.Ctx) error {
	var req models.GenerateQuestionsRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if req.DocumentID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "document_id is required",
		})
	}

	docID, err := uuid.Parse(req.DocumentID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid document_id format",
		})
	}

	if _, err := h.docRepo.FindByID(docID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Document not found",
		})
	}

	numQuestions := req.NumQuestions
	if numQuestions <= 0 {
		numQuestions = 15
	}
	if numQuestions > 50 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "num_questions must be 50 or fewer",
		})
	}

	set := &models.QuestionSet{
		ID:           uuid.New(),
		DocumentID:   docID,
		NumQuestions: numQuestions,
		Status:       models.StatusQueued,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := h.setRepo.Create(set); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create question generation job",
		})
	}

	h.worker.EnqueueJob(set.ID)

	return c.Status(fiber.StatusAccepted).JSON(models.GenerateQuestionsResponse{
		ID:     set.ID.String(),
		Status: string(models.StatusQueued),
	})
}

// HandleGetQuestions handles GET /questions/:id.
func (h *QuestionHandler) HandleGetQuestions(c *fiber.Ctx) error {
	idParam := c.Params("id")
	setID, err := uuid.Parse(idParam)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid question set ID format",
		})
	}

	set, err := h.setRepo.FindByID(setID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Question set not found",
		})
	}

	response := models.QuestionSetResponse{
		ID:     set.ID.String(),
		Status: string(set.Status),
	}

	if set.Status == models.StatusCompleted {
		for _, qa := range set.Questions {
			response.QAPairs = append(response.QAPairs, models.QuestionAnswerData{
				ID:       qa.ID.String(),
				Question: qa.Question,
				Answer:   qa.Answer,
			})
		}
	}

	if set.Status == models.StatusFailed && set.ErrorMessage != "" {
		response.ErrorMessage = set.ErrorMessage
	}

	return c.JSON(response)
}
