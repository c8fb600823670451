package alerting

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"firewatch-worker-go/internal/config"
	"firewatch-worker-go/internal/models"
)

// cooldownRecord tracks the last successful alert for one camera.
type cooldownRecord struct {
	lastSentAt     time.Time
	lastConfidence float64
	inFlight       bool
}

// Service converts fire events into deduplicated, severity-routed
// alerts and hands them to the external sinks. Shared by every
// camera's pipeline.
type Service struct {
	cfg       *config.Config
	occupancy models.OccupancyProvider
	sinks     []Sink
	publisher models.MessagePublisher // optional NATS fan-out

	cooldownMu sync.Mutex
	cooldowns  map[int]*cooldownRecord

	// Clock injection for tests
	now func() time.Time
}

// NewService creates a new alerting service
func NewService(cfg *config.Config, occupancy models.OccupancyProvider, sinks []Sink, publisher models.MessagePublisher) (*Service, error) {
	if occupancy == nil {
		return nil, fmt.Errorf("occupancy provider is required")
	}

	s := &Service{
		cfg:       cfg,
		occupancy: occupancy,
		sinks:     sinks,
		publisher: publisher,
		cooldowns: make(map[int]*cooldownRecord),
		now:       time.Now,
	}

	log.Info().
		Dur("cooldown", cfg.AlertCooldown).
		Float64("critical_threshold", cfg.FireCriticalThreshold).
		Bool("escalation_bypass", cfg.EscalationBypass).
		Int("sinks", len(sinks)).
		Msg("Alerting service initialized")

	return s, nil
}

// Handle processes one fire event. Returns nil when the event was
// intentionally dropped by the cooldown; that is not a failure.
func (s *Service) Handle(ctx context.Context, event models.FireEvent) (*models.Alert, error) {
	now := s.now()

	if !s.reserveCooldown(event.CameraID, event.Confidence, now) {
		log.Debug().
			Int("camera_id", event.CameraID).
			Float64("confidence", event.Confidence).
			Msg("Fire event dropped by cooldown")
		return nil, nil
	}

	alert := s.buildAlert(event, now)

	delivered := s.dispatch(ctx, alert)
	s.commitCooldown(event.CameraID, event.Confidence, now, delivered)

	if !delivered {
		return alert, fmt.Errorf("alert %s: no sink accepted delivery", alert.ID)
	}

	log.Info().
		Str("alert_id", alert.ID).
		Str("alert_type", string(alert.AlertType)).
		Int("camera_id", alert.CameraID).
		Int("floor_id", alert.FloorID).
		Int("people_count", alert.PeopleCount).
		Float64("confidence", alert.Confidence).
		Msg("Alert dispatched")

	return alert, nil
}

// reserveCooldown is the single critical section for the per-camera
// cooldown check. Two near-simultaneous events for the same camera can
// never both pass: the first reserves the slot, the second sees the
// reservation and is dropped.
func (s *Service) reserveCooldown(cameraID int, confidence float64, now time.Time) bool {
	s.cooldownMu.Lock()
	defer s.cooldownMu.Unlock()

	rec, ok := s.cooldowns[cameraID]
	if !ok {
		rec = &cooldownRecord{}
		s.cooldowns[cameraID] = rec
	}

	if rec.inFlight {
		return false
	}

	if !rec.lastSentAt.IsZero() && now.Sub(rec.lastSentAt) < s.cfg.AlertCooldown {
		if !s.cfg.EscalationBypass || confidence < rec.lastConfidence+s.cfg.EscalationDelta {
			return false
		}
		log.Warn().
			Int("camera_id", cameraID).
			Float64("previous_confidence", rec.lastConfidence).
			Float64("confidence", confidence).
			Msg("Cooldown bypassed on confidence escalation")
	}

	rec.inFlight = true
	return true
}

// commitCooldown releases the reservation. The cooldown window only
// starts when at least one sink accepted the alert, so a total delivery
// failure does not suppress the next attempt.
func (s *Service) commitCooldown(cameraID int, confidence float64, sentAt time.Time, delivered bool) {
	s.cooldownMu.Lock()
	defer s.cooldownMu.Unlock()

	rec := s.cooldowns[cameraID]
	if rec == nil {
		return
	}
	rec.inFlight = false
	if delivered {
		rec.lastSentAt = sentAt
		rec.lastConfidence = confidence
	}
}

func (s *Service) buildAlert(event models.FireEvent, now time.Time) *models.Alert {
	snapshot := s.occupancy.Occupancy(event.FloorID)

	alertType := models.AlertTypeFireEmergency
	severity := models.AlertSeverityWarning
	priority := "HIGH"

	if event.Confidence >= s.cfg.FireCriticalThreshold {
		severity = models.AlertSeverityCritical
		priority = "CRITICAL"
	}
	if event.Confidence >= s.cfg.FireCriticalThreshold && snapshot.PeopleCount > 0 {
		alertType = models.AlertTypeCriticalEvacuation
		priority = "EMERGENCY"
	}

	message := fmt.Sprintf(
		"FIRE ALERT - Floor %d\nLocation: %s\nCamera: %d\nType: %s\nSeverity: %s\nConfidence: %.1f%%\nPeople on floor: %d\nTime: %s",
		event.FloorID,
		event.Room,
		event.CameraID,
		event.FireType,
		severity,
		event.Confidence*100,
		snapshot.PeopleCount,
		now.Format("2006-01-02 15:04:05"),
	)
	if snapshot.PeopleCount > 0 {
		message += fmt.Sprintf("\n\nEVACUATION REQUIRED - %d people present!", snapshot.PeopleCount)
	}

	return &models.Alert{
		ID:                 uuid.NewString(),
		AlertType:          alertType,
		Severity:           severity,
		FloorID:            event.FloorID,
		CameraID:           event.CameraID,
		Room:               event.Room,
		FireType:           event.FireType,
		Method:             string(event.Method),
		Confidence:         event.Confidence,
		PeopleCount:        snapshot.PeopleCount,
		People:             snapshot.People,
		Message:            message,
		DetectedAt:         event.DetectedAt,
		CreatedAt:          now,
		RequiresEvacuation: snapshot.PeopleCount > 0,
		Priority:           priority,
	}
}

// dispatch delivers the alert to every sink, each retried independently
// with bounded attempts. Returns true when at least one sink succeeded.
func (s *Service) dispatch(ctx context.Context, alert *models.Alert) bool {
	delivered := false

	for _, sink := range s.sinks {
		if err := s.deliverWithRetry(ctx, sink, alert); err != nil {
			log.Error().
				Err(err).
				Str("sink", sink.Name()).
				Str("alert_id", alert.ID).
				Msg("Sink delivery failed after retries")
			continue
		}
		delivered = true
	}

	// NATS fan-out is best-effort and does not count as sink delivery.
	if s.publisher != nil {
		if err := s.publisher.Publish(s.cfg.AlertsSubject, alert); err != nil {
			log.Warn().
				Err(err).
				Str("alert_id", alert.ID).
				Msg("Failed to publish alert to message bus")
		}
	}

	return delivered
}

func (s *Service) deliverWithRetry(ctx context.Context, sink Sink, alert *models.Alert) error {
	var lastErr error
	for attempt := 0; attempt <= s.cfg.SinkRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.cfg.SinkRetryDelay):
			}
		}

		if lastErr = sink.Deliver(ctx, alert); lastErr == nil {
			return nil
		}

		log.Warn().
			Err(lastErr).
			Str("sink", sink.Name()).
			Str("alert_id", alert.ID).
			Int("attempt", attempt+1).
			Msg("Sink delivery attempt failed")
	}
	return lastErr
}

// SendPresenceUpdate pushes a non-emergency occupancy update for one
// floor to the webhook sink.
func (s *Service) SendPresenceUpdate(ctx context.Context, floorID int) error {
	snapshot := s.occupancy.Occupancy(floorID)
	now := s.now()

	alert := &models.Alert{
		ID:          uuid.NewString(),
		AlertType:   models.AlertTypePresenceUpdate,
		Severity:    models.AlertSeverityLow,
		FloorID:     floorID,
		PeopleCount: snapshot.PeopleCount,
		People:      snapshot.People,
		Message: fmt.Sprintf(
			"Floor %d Occupancy Update\nCurrent occupancy: %d people\nTime: %s",
			floorID, snapshot.PeopleCount, now.Format("15:04:05"),
		),
		CreatedAt: now,
		Priority:  "LOW",
	}

	for _, sink := range s.sinks {
		if sink.Name() != "webhook" {
			continue
		}
		return s.deliverWithRetry(ctx, sink, alert)
	}
	return nil
}

// RunPresenceUpdates periodically reports occupancy for every floor
// that has live entries, skipping floors whose count did not change.
func (s *Service) RunPresenceUpdates(ctx context.Context, floors func() []int) {
	if s.cfg.PresenceUpdateInterval <= 0 {
		return
	}

	ticker := time.NewTicker(s.cfg.PresenceUpdateInterval)
	defer ticker.Stop()

	lastCounts := make(map[int]int)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, floorID := range floors() {
				snapshot := s.occupancy.Occupancy(floorID)
				if lastCounts[floorID] == snapshot.PeopleCount {
					continue
				}

				if err := s.SendPresenceUpdate(ctx, floorID); err != nil {
					// Leave the last count untouched so the
					// next tick retries this floor.
					log.Warn().
						Err(err).
						Int("floor_id", floorID).
						Msg("Failed to send presence update")
					continue
				}
				lastCounts[floorID] = snapshot.PeopleCount
			}
		}
	}
}

// CooldownRemaining reports how much of the camera's cooldown window is
// left, for status endpoints.
func (s *Service) CooldownRemaining(cameraID int) time.Duration {
	s.cooldownMu.Lock()
	defer s.cooldownMu.Unlock()

	rec, ok := s.cooldowns[cameraID]
	if !ok || rec.lastSentAt.IsZero() {
		return 0
	}
	remaining := s.cfg.AlertCooldown - s.now().Sub(rec.lastSentAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}
