package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	// Application
	Version     string
	Environment string
	WorkerID    string
	Port        int
	LogLevel    string

	// Logdy (lightweight web log viewer)
	LogdyEnabled bool
	LogdyHost    string
	LogdyPort    int

	// External Services
	BackendURL     string // persistence API: camera config + alert log sink
	WebhookURL     string // workflow engine webhook (WhatsApp/SMS/voice routing)
	FaceServiceURL string // face recognition service
	FireMLURL      string // ML fire classifier service

	// NATS (for alert fan-out)
	NatsEnabled        bool
	NatsURL            string
	NatsConnectTimeout time.Duration
	NatsReconnectWait  time.Duration
	NatsMaxReconnects  int
	NatsDrainTimeout   time.Duration

	// Streaming Configuration
	MaxCameras           int
	CaptureWidth         int
	CaptureHeight        int
	TargetFPS            int
	MaxConsecutiveErrors int
	ReconnectBackoffMin  time.Duration
	ReconnectBackoffMax  time.Duration
	ReconnectJitterPct   int
	CameraConfigFile     string // local fallback when the backend is unreachable

	// Frame Sampling
	FaceSampleInterval int // dispatch every Nth frame to the face adapter
	FireSampleInterval int // dispatch every Nth frame to the fire detector
	FaceQueueSize      int
	FireQueueSize      int

	// Detection
	FireConfidenceThreshold float64
	FireCriticalThreshold   float64
	MLTimeout               time.Duration
	FaceTimeout             time.Duration
	FaceMatchThreshold      float64
	JPEGQuality             int

	// Presence Tracking
	PresenceTimeout        time.Duration
	SweepInterval          time.Duration
	PresenceUpdateInterval time.Duration // 0 disables periodic PRESENCE_UPDATE alerts

	// Alerting
	AlertCooldown    time.Duration
	WebhookTimeout   time.Duration
	BackendTimeout   time.Duration
	SinkRetries      int
	SinkRetryDelay   time.Duration
	AlertsSubject    string
	EscalationBypass bool    // allow a much stronger fire event to bypass cooldown
	EscalationDelta  float64 // minimum confidence gain required for bypass

	// Graceful Shutdown
	ShutdownTimeout time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("No .env file found, using environment variables and defaults")
	} else {
		log.Info().Msg("Loaded configuration from .env file")
	}

	cfg := &Config{
		// Application
		Version:     getEnv("VERSION", "1.0.0"),
		Environment: getEnv("ENVIRONMENT", "development"),
		WorkerID:    getEnv("WORKER_ID", "firewatch-1"),
		Port:        getEnvInt("PORT", 8000),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// Logdy
		LogdyEnabled: getEnvBool("LOGDY_ENABLED", false),
		LogdyHost:    getEnv("LOGDY_HOST", "localhost"),
		LogdyPort:    getEnvInt("LOGDY_PORT", 8080),

		// External Services
		BackendURL:     getEnv("BACKEND_URL", "http://localhost:8500/api/v1"),
		WebhookURL:     getEnv("WEBHOOK_URL", ""),
		FaceServiceURL: getEnv("FACE_SERVICE_URL", "http://localhost:8001"),
		FireMLURL:      getEnv("FIRE_ML_URL", "http://localhost:8002"),

		// NATS
		NatsEnabled:        getEnvBool("NATS_ENABLED", false),
		NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
		NatsConnectTimeout: getEnvDuration("NATS_CONNECT_TIMEOUT", 10*time.Second),
		NatsReconnectWait:  getEnvDuration("NATS_RECONNECT_WAIT", 2*time.Second),
		NatsMaxReconnects:  getEnvInt("NATS_MAX_RECONNECTS", -1), // -1 = unlimited
		NatsDrainTimeout:   getEnvDuration("NATS_DRAIN_TIMEOUT", 5*time.Second),

		// Streaming Configuration
		MaxCameras:           getEnvInt("MAX_CAMERAS", 10),
		CaptureWidth:         getEnvInt("CAPTURE_WIDTH", 640),
		CaptureHeight:        getEnvInt("CAPTURE_HEIGHT", 480),
		TargetFPS:            getEnvInt("TARGET_FPS", 30),
		MaxConsecutiveErrors: getEnvInt("MAX_CONSECUTIVE_ERRORS", 10),
		ReconnectBackoffMin:  getEnvDuration("RECONNECT_BACKOFF_MIN", 1*time.Second),
		ReconnectBackoffMax:  getEnvDuration("RECONNECT_BACKOFF_MAX", 30*time.Second),
		ReconnectJitterPct:   getEnvInt("RECONNECT_JITTER_PCT", 20),
		CameraConfigFile:     getEnv("CAMERA_CONFIG_FILE", "camera_config.json"),

		// Frame Sampling
		FaceSampleInterval: getEnvInt("FACE_SAMPLE_INTERVAL", 2),
		FireSampleInterval: getEnvInt("FIRE_SAMPLE_INTERVAL", 4),
		FaceQueueSize:      getEnvInt("FACE_QUEUE_SIZE", 8),
		FireQueueSize:      getEnvInt("FIRE_QUEUE_SIZE", 8),

		// Detection
		FireConfidenceThreshold: getEnvFloat("FIRE_CONFIDENCE_THRESHOLD", 0.5),
		FireCriticalThreshold:   getEnvFloat("FIRE_CRITICAL_THRESHOLD", 0.7),
		MLTimeout:               getEnvDuration("ML_TIMEOUT", 2*time.Second),
		FaceTimeout:             getEnvDuration("FACE_TIMEOUT", 2*time.Second),
		FaceMatchThreshold:      getEnvFloat("FACE_MATCH_THRESHOLD", 0.35),
		JPEGQuality:             getEnvInt("JPEG_QUALITY", 85),

		// Presence Tracking
		PresenceTimeout:        getEnvDuration("PRESENCE_TIMEOUT", 60*time.Second),
		SweepInterval:          getEnvDuration("SWEEP_INTERVAL", 30*time.Second),
		PresenceUpdateInterval: getEnvDuration("PRESENCE_UPDATE_INTERVAL", 0),

		// Alerting
		AlertCooldown:    getEnvDuration("ALERT_COOLDOWN", 30*time.Second),
		WebhookTimeout:   getEnvDuration("WEBHOOK_TIMEOUT", 10*time.Second),
		BackendTimeout:   getEnvDuration("BACKEND_TIMEOUT", 5*time.Second),
		SinkRetries:      getEnvInt("SINK_RETRIES", 2),
		SinkRetryDelay:   getEnvDuration("SINK_RETRY_DELAY", 500*time.Millisecond),
		AlertsSubject:    getEnv("ALERTS_SUBJECT", "alerts.fire"),
		EscalationBypass: getEnvBool("ESCALATION_BYPASS", false),
		EscalationDelta:  getEnvFloat("ESCALATION_DELTA", 0.2),

		// Graceful Shutdown
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
	}

	cfg.sanitize()
	return cfg
}

// sanitize replaces values that would break the pipeline (zero frame
// rates, empty queues, negative cadences) with their defaults.
func (c *Config) sanitize() {
	c.TargetFPS = atLeast("TARGET_FPS", c.TargetFPS, 1, 30)
	c.MaxCameras = atLeast("MAX_CAMERAS", c.MaxCameras, 1, 10)
	c.MaxConsecutiveErrors = atLeast("MAX_CONSECUTIVE_ERRORS", c.MaxConsecutiveErrors, 1, 10)
	c.FaceQueueSize = atLeast("FACE_QUEUE_SIZE", c.FaceQueueSize, 1, 8)
	c.FireQueueSize = atLeast("FIRE_QUEUE_SIZE", c.FireQueueSize, 1, 8)
	c.CaptureWidth = atLeast("CAPTURE_WIDTH", c.CaptureWidth, 1, 640)
	c.CaptureHeight = atLeast("CAPTURE_HEIGHT", c.CaptureHeight, 1, 480)

	// Zero disables a detector, so only negative cadences are invalid.
	c.FaceSampleInterval = atLeast("FACE_SAMPLE_INTERVAL", c.FaceSampleInterval, 0, 0)
	c.FireSampleInterval = atLeast("FIRE_SAMPLE_INTERVAL", c.FireSampleInterval, 0, 0)
}

func atLeast(name string, value, min, fallback int) int {
	if value >= min {
		return value
	}
	log.Warn().
		Str("setting", name).
		Int("value", value).
		Int("fallback", fallback).
		Msg("Invalid configuration value, using fallback")
	return fallback
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
