package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Host              string
	Port              int
	ModelPath         string
	LabelsPath        string  // Optional: one class label per line, in model index order
	ModelInputSize    int     // Square input size the network was exported with
	ModelConfidence   float64 // Minimum raw score for the network to report a box
	NMSThreshold      float64
	AlertsDirectory   string
	VideoAlertsSubdir string
	DatabasePath      string // Empty disables the alert index
	LogDirectory      string
	MaxBodyBytes      int64
	AlertFeedBuffer   int
}

// Load reads configuration from the environment, after loading a .env file
// from the working directory if one exists.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Host:              getEnv("HOST", "0.0.0.0"),
		Port:              getEnvAsInt("PORT", 5000),
		ModelPath:         getEnv("MODEL_PATH", filepath.Join(".", "model.onnx")),
		LabelsPath:        getEnv("LABELS_PATH", ""),
		ModelInputSize:    getEnvAsInt("MODEL_INPUT_SIZE", 640),
		ModelConfidence:   getEnvAsFloat("MODEL_CONFIDENCE", 0.25),
		NMSThreshold:      getEnvAsFloat("NMS_THRESHOLD", 0.7),
		AlertsDirectory:   getEnv("ALERTS_DIR", filepath.Join(".", "alerts")),
		VideoAlertsSubdir: getEnv("VIDEO_ALERTS_SUBDIR", "videos"),
		DatabasePath:      getEnv("DB_PATH", filepath.Join(".", "data", "alerts.db")),
		LogDirectory:      getEnv("LOG_DIR", filepath.Join(".", "logs")),
		MaxBodyBytes:      getEnvAsInt64("MAX_BODY_MB", 50) << 20,
		AlertFeedBuffer:   getEnvAsInt("FEED_BUFFER", 32),
	}
}

// VideoAlertsDirectory is the folder for alerts whose source is "video".
func (c *Config) VideoAlertsDirectory() string {
	return filepath.Join(c.AlertsDirectory, c.VideoAlertsSubdir)
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
