package alerting

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firewatch-worker-go/internal/config"
	"firewatch-worker-go/internal/models"
)

type fakeOccupancy struct {
	people []models.PresenceEntry
}

func (f *fakeOccupancy) Occupancy(floorID int) models.OccupancySnapshot {
	return models.OccupancySnapshot{
		FloorID:     floorID,
		PeopleCount: len(f.people),
		People:      f.people,
	}
}

type fakeSink struct {
	name  string
	err   error
	delay time.Duration

	mu        sync.Mutex
	delivered []*models.Alert
}

func (f *fakeSink) Name() string { return f.name }

func (f *fakeSink) Deliver(ctx context.Context, alert *models.Alert) error {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.delivered = append(f.delivered, alert)
	return nil
}

func (f *fakeSink) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.delivered)
}

func (f *fakeSink) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func alertingConfig() *config.Config {
	return &config.Config{
		FireConfidenceThreshold: 0.5,
		FireCriticalThreshold:   0.7,
		AlertCooldown:           30 * time.Second,
		SinkRetries:             0,
		SinkRetryDelay:          time.Millisecond,
		EscalationDelta:         0.2,
		AlertsSubject:           "alerts.fire",
	}
}

func fireEvent(cameraID int, confidence float64) models.FireEvent {
	return models.FireEvent{
		CameraID:   cameraID,
		FloorID:    3,
		Room:       "Server Room",
		Confidence: confidence,
		FireType:   models.FireTypeFire,
		Method:     models.MethodML,
		DetectedAt: time.Now(),
	}
}

func people(n int) []models.PresenceEntry {
	entries := make([]models.PresenceEntry, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, models.PresenceEntry{EmployeeID: 100 + i, FloorID: 3})
	}
	return entries
}

func TestHighConfidenceEmptyFloorIsFireEmergency(t *testing.T) {
	sink := &fakeSink{name: "webhook"}
	svc, err := NewService(alertingConfig(), &fakeOccupancy{}, []Sink{sink}, nil)
	require.NoError(t, err)

	alert, err := svc.Handle(context.Background(), fireEvent(1, 0.85))
	require.NoError(t, err)
	require.NotNil(t, alert)

	assert.Equal(t, models.AlertTypeFireEmergency, alert.AlertType)
	assert.Equal(t, models.AlertSeverityCritical, alert.Severity)
	assert.Equal(t, "CRITICAL", alert.Priority)
	assert.False(t, alert.RequiresEvacuation)
	assert.Equal(t, 0, alert.PeopleCount)
	assert.Equal(t, 1, sink.count())
}

func TestHighConfidenceOccupiedFloorIsCriticalEvacuation(t *testing.T) {
	sink := &fakeSink{name: "webhook"}
	svc, err := NewService(alertingConfig(), &fakeOccupancy{people: people(4)}, []Sink{sink}, nil)
	require.NoError(t, err)

	alert, err := svc.Handle(context.Background(), fireEvent(1, 0.85))
	require.NoError(t, err)
	require.NotNil(t, alert)

	assert.Equal(t, models.AlertTypeCriticalEvacuation, alert.AlertType)
	assert.Equal(t, "EMERGENCY", alert.Priority)
	assert.True(t, alert.RequiresEvacuation)
	assert.Equal(t, 4, alert.PeopleCount)
	assert.Contains(t, alert.Message, "FIRE ALERT - Floor 3")
	assert.Contains(t, alert.Message, "EVACUATION REQUIRED - 4 people present!")
}

func TestModerateConfidenceIsWarning(t *testing.T) {
	sink := &fakeSink{name: "webhook"}
	svc, err := NewService(alertingConfig(), &fakeOccupancy{people: people(2)}, []Sink{sink}, nil)
	require.NoError(t, err)

	alert, err := svc.Handle(context.Background(), fireEvent(1, 0.55))
	require.NoError(t, err)
	require.NotNil(t, alert)

	// Below the critical threshold an occupied floor still gets a
	// plain fire emergency, not an evacuation order.
	assert.Equal(t, models.AlertTypeFireEmergency, alert.AlertType)
	assert.Equal(t, models.AlertSeverityWarning, alert.Severity)
	assert.Equal(t, "HIGH", alert.Priority)
}

func TestCooldownSuppressesRepeatEvents(t *testing.T) {
	sink := &fakeSink{name: "webhook"}
	svc, err := NewService(alertingConfig(), &fakeOccupancy{}, []Sink{sink}, nil)
	require.NoError(t, err)

	now := time.Now()
	svc.now = func() time.Time { return now }

	alert, err := svc.Handle(context.Background(), fireEvent(1, 0.8))
	require.NoError(t, err)
	require.NotNil(t, alert)

	// A repeat 5 seconds later is dropped without error.
	now = now.Add(5 * time.Second)
	alert, err = svc.Handle(context.Background(), fireEvent(1, 0.8))
	require.NoError(t, err)
	assert.Nil(t, alert)

	// A different camera is not affected.
	alert, err = svc.Handle(context.Background(), fireEvent(2, 0.8))
	require.NoError(t, err)
	assert.NotNil(t, alert)

	// Past the window the camera alerts again.
	now = now.Add(26 * time.Second)
	alert, err = svc.Handle(context.Background(), fireEvent(1, 0.8))
	require.NoError(t, err)
	assert.NotNil(t, alert)

	assert.Equal(t, 3, sink.count())
}

func TestCooldownNotCommittedWhenAllSinksFail(t *testing.T) {
	sink := &fakeSink{name: "webhook", err: assert.AnError}
	svc, err := NewService(alertingConfig(), &fakeOccupancy{}, []Sink{sink}, nil)
	require.NoError(t, err)

	alert, err := svc.Handle(context.Background(), fireEvent(1, 0.8))
	require.Error(t, err)
	require.NotNil(t, alert)
	assert.Equal(t, 0, sink.count())

	// Delivery failed, so the very next event must go through.
	sink.setErr(nil)
	alert, err = svc.Handle(context.Background(), fireEvent(1, 0.8))
	require.NoError(t, err)
	require.NotNil(t, alert)
	assert.Equal(t, 1, sink.count())
}

func TestEscalationBypass(t *testing.T) {
	cfg := alertingConfig()
	cfg.EscalationBypass = true

	sink := &fakeSink{name: "webhook"}
	svc, err := NewService(cfg, &fakeOccupancy{}, []Sink{sink}, nil)
	require.NoError(t, err)

	now := time.Now()
	svc.now = func() time.Time { return now }

	_, err = svc.Handle(context.Background(), fireEvent(1, 0.5))
	require.NoError(t, err)

	// Inside the window, a small increase stays suppressed.
	now = now.Add(5 * time.Second)
	alert, err := svc.Handle(context.Background(), fireEvent(1, 0.6))
	require.NoError(t, err)
	assert.Nil(t, alert)

	// A jump past the escalation delta breaks through.
	alert, err = svc.Handle(context.Background(), fireEvent(1, 0.75))
	require.NoError(t, err)
	assert.NotNil(t, alert)
}

func TestConcurrentEventsDeliverOneAlert(t *testing.T) {
	sink := &fakeSink{name: "webhook", delay: 50 * time.Millisecond}
	svc, err := NewService(alertingConfig(), &fakeOccupancy{}, []Sink{sink}, nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.Handle(context.Background(), fireEvent(1, 0.8))
		}()
	}
	wg.Wait()

	// The in-flight reservation guarantees a single winner.
	assert.Equal(t, 1, sink.count())
}

func TestSendPresenceUpdateUsesWebhookOnly(t *testing.T) {
	webhook := &fakeSink{name: "webhook"}
	backend := &fakeSink{name: "backend"}
	svc, err := NewService(alertingConfig(), &fakeOccupancy{people: people(3)}, []Sink{webhook, backend}, nil)
	require.NoError(t, err)

	require.NoError(t, svc.SendPresenceUpdate(context.Background(), 3))

	require.Equal(t, 1, webhook.count())
	assert.Equal(t, 0, backend.count())

	alert := webhook.delivered[0]
	assert.Equal(t, models.AlertTypePresenceUpdate, alert.AlertType)
	assert.Equal(t, models.AlertSeverityLow, alert.Severity)
	assert.Equal(t, 3, alert.PeopleCount)
}

func TestRunPresenceUpdatesRetriesFailedDelivery(t *testing.T) {
	webhook := &fakeSink{name: "webhook", err: context.DeadlineExceeded}
	cfg := alertingConfig()
	cfg.PresenceUpdateInterval = 10 * time.Millisecond
	svc, err := NewService(cfg, &fakeOccupancy{people: people(2)}, []Sink{webhook}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.RunPresenceUpdates(ctx, func() []int { return []int{3} })
	}()

	// Let at least one failing tick pass, then recover the sink. The
	// occupancy count never changes, so the update only arrives if the
	// failed tick was not recorded as sent.
	time.Sleep(30 * time.Millisecond)
	webhook.setErr(nil)

	require.Eventually(t, func() bool {
		return webhook.count() >= 1
	}, 2*time.Second, 5*time.Millisecond, "presence update should be retried after a failed delivery")

	cancel()
	<-done
}

func TestCooldownRemaining(t *testing.T) {
	sink := &fakeSink{name: "webhook"}
	svc, err := NewService(alertingConfig(), &fakeOccupancy{}, []Sink{sink}, nil)
	require.NoError(t, err)

	now := time.Now()
	svc.now = func() time.Time { return now }

	assert.Equal(t, time.Duration(0), svc.CooldownRemaining(1))

	_, err = svc.Handle(context.Background(), fireEvent(1, 0.8))
	require.NoError(t, err)

	now = now.Add(10 * time.Second)
	assert.Equal(t, 20*time.Second, svc.CooldownRemaining(1))

	now = now.Add(25 * time.Second)
	assert.Equal(t, time.Duration(0), svc.CooldownRemaining(1))
}

func TestDeliveryRetriesThenSucceeds(t *testing.T) {
	cfg := alertingConfig()
	cfg.SinkRetries = 2

	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg.WebhookURL = server.URL
	cfg.WebhookTimeout = time.Second

	svc, err := NewService(cfg, &fakeOccupancy{}, []Sink{NewWebhookSink(cfg)}, nil)
	require.NoError(t, err)

	alert, err := svc.Handle(context.Background(), fireEvent(1, 0.8))
	require.NoError(t, err)
	require.NotNil(t, alert)
	assert.Equal(t, 3, attempts)
}

func TestBackendSinkPayload(t *testing.T) {
	var payload map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	cfg := alertingConfig()
	cfg.BackendURL = server.URL
	cfg.BackendTimeout = time.Second

	svc, err := NewService(cfg, &fakeOccupancy{}, []Sink{NewBackendSink(cfg)}, nil)
	require.NoError(t, err)

	_, err = svc.Handle(context.Background(), fireEvent(7, 0.82))
	require.NoError(t, err)

	assert.Equal(t, "fire", payload["event_type"])
	assert.Equal(t, float64(7), payload["camera_id"])
	assert.InDelta(t, 82.0, payload["confidence"], 0.001)
}

func TestWebhookSinkRequiresURL(t *testing.T) {
	cfg := alertingConfig()
	sink := NewWebhookSink(cfg)

	err := sink.Deliver(context.Background(), &models.Alert{})
	require.Error(t, err)
}
