package detect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"firewatch-worker-go/internal/config"
	"firewatch-worker-go/internal/models"
)

// FaceAdapter wraps the face recognition service and normalizes its
// matches into presence events.
type FaceAdapter struct {
	cfg    *config.Config
	client *http.Client
	url    string
}

// NewFaceAdapter creates a client for the face recognition service
func NewFaceAdapter(cfg *config.Config) *FaceAdapter {
	return &FaceAdapter{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.FaceTimeout,
		},
		url: cfg.FaceServiceURL + "/recognize-face",
	}
}

// faceMatch mirrors one match in the face service's JSON response.
type faceMatch struct {
	EmployeeID int     `json:"employee_id"`
	Name       string  `json:"employee_name"`
	Similarity float64 `json:"similarity"`
}

type faceResponse struct {
	Success bool        `json:"success"`
	Matches []faceMatch `json:"matches"`
}

// Recognize sends the frame to the face service and returns one
// presence event per identified employee above the match threshold. An
// empty frame yields no events and no error.
func (a *FaceAdapter) Recognize(ctx context.Context, frame *models.RawFrame) ([]models.PresenceEvent, error) {
	if frame.Empty() {
		return nil, nil
	}

	jpeg, err := EncodeJPEG(frame, a.cfg.JPEGQuality)
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "frame.jpg")
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(jpeg); err != nil {
		return nil, fmt.Errorf("failed to write frame data: %w", err)
	}
	_ = writer.WriteField("camera_id", strconv.Itoa(frame.CameraID))
	_ = writer.WriteField("floor_id", strconv.Itoa(frame.FloorID))
	_ = writer.WriteField("room_location", frame.Room)
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("face service call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("face service returned status %d", resp.StatusCode)
	}

	var parsed faceResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode face response: %w", err)
	}
	if !parsed.Success {
		return nil, nil
	}

	events := make([]models.PresenceEvent, 0, len(parsed.Matches))
	for _, match := range parsed.Matches {
		if match.Similarity < a.cfg.FaceMatchThreshold {
			log.Debug().
				Int("camera_id", frame.CameraID).
				Float64("similarity", match.Similarity).
				Msg("Face match below threshold")
			continue
		}
		events = append(events, models.PresenceEvent{
			EmployeeID: match.EmployeeID,
			Name:       match.Name,
			FloorID:    frame.FloorID,
			Room:       frame.Room,
			CameraID:   frame.CameraID,
			Confidence: match.Similarity,
			ObservedAt: frame.Timestamp,
		})
	}
	return events, nil
}
