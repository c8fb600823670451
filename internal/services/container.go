package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"firewatch-worker-go/internal/config"
	"firewatch-worker-go/internal/models"
	"firewatch-worker-go/internal/services/alerting"
	"firewatch-worker-go/internal/services/camera"
	"firewatch-worker-go/internal/services/detect"
	"firewatch-worker-go/internal/services/messaging"
	"firewatch-worker-go/internal/services/presence"
)

// ServiceContainer holds all services
type ServiceContainer struct {
	Config        *config.Config
	Presence      *presence.Service
	Alerting      *alerting.Service
	Messaging     *messaging.Service
	FaceAdapter   *detect.FaceAdapter
	FireDetector  *detect.FireDetector
	CameraManager *camera.Manager
}

// NewServiceContainer creates and wires all services
func NewServiceContainer(cfg *config.Config) (*ServiceContainer, error) {
	presenceSvc := presence.NewService(cfg)

	var publisher models.MessagePublisher
	var messagingSvc *messaging.Service
	if cfg.NatsEnabled {
		svc, err := messaging.NewService(cfg)
		if err != nil {
			// The worker must keep protecting the building even when the
			// message broker is down. HTTP sinks still deliver alerts.
			log.Warn().Err(err).Msg("NATS unavailable, alerts limited to HTTP sinks")
		} else {
			messagingSvc = svc
			publisher = svc
		}
	}

	sinks := []alerting.Sink{}
	if cfg.WebhookURL != "" {
		sinks = append(sinks, alerting.NewWebhookSink(cfg))
	}
	if cfg.BackendURL != "" {
		sinks = append(sinks, alerting.NewBackendSink(cfg))
	}

	alertingSvc, err := alerting.NewService(cfg, presenceSvc, sinks, publisher)
	if err != nil {
		return nil, err
	}

	faceAdapter := detect.NewFaceAdapter(cfg)
	fireDetector := detect.NewFireDetector(cfg)

	cameraManager := camera.NewManager(cfg, faceAdapter, fireDetector, presenceSvc, alertingSvc)

	return &ServiceContainer{
		Config:        cfg,
		Presence:      presenceSvc,
		Alerting:      alertingSvc,
		Messaging:     messagingSvc,
		FaceAdapter:   faceAdapter,
		FireDetector:  fireDetector,
		CameraManager: cameraManager,
	}, nil
}

// Shutdown gracefully shuts down all services
func (sc *ServiceContainer) Shutdown(ctx context.Context) error {
	if sc.CameraManager != nil {
		if err := sc.CameraManager.Shutdown(ctx); err != nil {
			return err
		}
	}

	if sc.Messaging != nil {
		if err := sc.Messaging.Shutdown(ctx); err != nil {
			return err
		}
	}

	return nil
}
