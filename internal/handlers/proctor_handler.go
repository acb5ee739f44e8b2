package handlers

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"prepview/interview-evaluator/internal/models"
	"prepview/interview-evaluator/internal/services"
)

type ProctorHandler struct {
	evaluator services.ResponseEvaluatorService
}

func NewProctorHandler(evaluator services.ResponseEvaluatorService) *ProctorHandler {
	return &ProctorHandler{evaluator: evaluator}
}

// HandleCheckFrame handles POST /proctor: a single webcam snapshot as a
// base64 data URL, answered with the anomaly verdict for that frame.
// Detection failures are reported, never mapped to "all clear".
func (h *ProctorHandler) HandleCheckFrame(c *fiber.Ctx) error {
	var req models.ProctorRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if req.Image == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "image is required",
		})
	}

	frame, err := decodeFrameImage(req.Image)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "image is not valid base64 data",
		})
	}

	verdict, err := h.evaluator.CheckFrame(c.Context(), frame)
	if err != nil {
		if errors.Is(err, services.ErrFrameDecode) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(models.ProctorResponse{
		Anomaly: string(verdict),
	})
}

// decodeFrameImage accepts both a bare base64 payload and a browser data
// URL ("data:image/jpeg;base64,...").
func decodeFrameImage(payload string) ([]byte, error) {
	if idx := strings.Index(payload, ","); idx != -1 && strings.HasPrefix(payload, "data:") {
		payload = payload[idx+1:]
	}
	return base64.StdEncoding.DecodeString(payload)
}
