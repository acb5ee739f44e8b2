package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	_ "image/jpeg"
	_ "image/png"
)

// Detection is one raw object detection from the detector model.
type Detection struct {
	ClassName  string  `json:"class_name"`
	Confidence float64 `json:"confidence"`
}

// DetectionService runs a single object-detection pass over one encoded
// video frame. It returns every raw detection; confidence filtering is
// the caller's concern.
type DetectionService interface {
	DetectObjects(ctx context.Context, frame []byte) ([]Detection, error)
}

type detectResponse struct {
	Detections []Detection `json:"detections"`
}

type httpObjectDetector struct {
	client *http.Client
	url    string
}

func NewDetectionService(url string) DetectionService {
	return &httpObjectDetector{
		client: &http.Client{Timeout: 60 * time.Second},
		url:    url,
	}
}

// DetectObjects implements DetectionService.
func (d *httpObjectDetector) DetectObjects(ctx context.Context, frame []byte) ([]Detection, error) {
	if err := validateFrame(frame); err != nil {
		return nil, err
	}

	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	fw, err := w.CreateFormFile("frame", "frame.jpg")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelInference, err)
	}
	if _, err := fw.Write(frame); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelInference, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelInference, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url+"/detect", &b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelInference, err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelInference, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: detector %s: %s", ErrModelInference, resp.Status, string(msg))
	}

	var out detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrModelInference, err)
	}

	return out.Detections, nil
}

// validateFrame rejects malformed frame buffers before the model server
// is invoked.
func validateFrame(frame []byte) error {
	if len(frame) == 0 {
		return fmt.Errorf("%w: empty frame buffer", ErrFrameDecode)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(frame))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFrameDecode, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("%w: zero-size frame (%dx%d)", ErrFrameDecode, cfg.Width, cfg.Height)
	}

	return nil
}
