package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"firewatch-worker-go/internal/config"
)

func NewServiceLogger(cfg *config.Config, service string) zerolog.Logger {
	return log.With().Str("worker_id", cfg.WorkerID).Str("service", service).Logger()
}

func WithCamera(base zerolog.Logger, cameraID int) zerolog.Logger {
	return base.With().Int("camera_id", cameraID).Logger()
}
