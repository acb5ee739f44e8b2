package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"prepview/interview-evaluator/internal/models"
	"prepview/interview-evaluator/internal/services"
)

type stubEvaluator struct {
	result     *services.ResponseEvaluation
	evalErr    error
	verdict    services.AnomalyVerdict
	verdictErr error
	gotFrame   []byte
}

func (s *stubEvaluator) EvaluateResponse(_ context.Context, _, _ string) (*services.ResponseEvaluation, error) {
	return s.result, s.evalErr
}

func (s *stubEvaluator) CheckFrame(_ context.Context, frame []byte) (services.AnomalyVerdict, error) {
	s.gotFrame = frame
	return s.verdict, s.verdictErr
}

func newProctorTestApp(evaluator services.ResponseEvaluatorService) *fiber.App {
	app := fiber.New()
	handler := NewProctorHandler(evaluator)
	app.Post("/proctor", handler.HandleCheckFrame)
	return app
}

func postProctorJSON(t *testing.T, app *fiber.App, body interface{}) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/proctor", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestHandleCheckFrameReturnsVerdict(t *testing.T) {
	evaluator := &stubEvaluator{verdict: services.MobilePhoneDetected}
	app := newProctorTestApp(evaluator)

	frame := []byte("fake-jpeg-bytes")
	image := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(frame)

	resp := postProctorJSON(t, app, models.ProctorRequest{Image: image})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out models.ProctorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, "Mobile Phone Detected", out.Anomaly)

	// The data URL prefix must be stripped before decoding
	require.Equal(t, frame, evaluator.gotFrame)
}

func TestHandleCheckFrameAllClear(t *testing.T) {
	evaluator := &stubEvaluator{verdict: services.NoAnomaly}
	app := newProctorTestApp(evaluator)

	image := base64.StdEncoding.EncodeToString([]byte("frame"))

	resp := postProctorJSON(t, app, models.ProctorRequest{Image: image})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out models.ProctorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, "All clear", out.Anomaly)
}

func TestHandleCheckFrameMissingImage(t *testing.T) {
	app := newProctorTestApp(&stubEvaluator{})

	resp := postProctorJSON(t, app, models.ProctorRequest{})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleCheckFrameInvalidBase64(t *testing.T) {
	app := newProctorTestApp(&stubEvaluator{})

	resp := postProctorJSON(t, app, models.ProctorRequest{Image: "%%% not base64 %%%"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleCheckFrameUndecodableFrame(t *testing.T) {
	evaluator := &stubEvaluator{
		verdictErr: &services.StageError{Stage: services.StageDetection, Err: services.ErrFrameDecode},
	}
	app := newProctorTestApp(evaluator)

	image := base64.StdEncoding.EncodeToString([]byte("junk"))

	resp := postProctorJSON(t, app, models.ProctorRequest{Image: image})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleCheckFrameDetectorDownFailsClosed(t *testing.T) {
	// Detector failures must not be reported as "all clear"
	evaluator := &stubEvaluator{
		verdictErr: &services.StageError{Stage: services.StageDetection, Err: services.ErrModelInference},
	}
	app := newProctorTestApp(evaluator)

	image := base64.StdEncoding.EncodeToString([]byte("frame"))

	resp := postProctorJSON(t, app, models.ProctorRequest{Image: image})
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
}
