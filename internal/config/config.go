package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	Port     string
	LogLevel string
	Model    ModelConfig
	Audit    AuditConfig
	MQTT     MQTTConfig

	ShutdownTimeout time.Duration
}

type ModelConfig struct {
	Path         string
	MetadataPath string
	LibraryPath  string
}

type AuditConfig struct {
	DBPath string
}

type MQTTConfig struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	QoS         int
	TopicPrefix string
}

// Load reads .env (when present) and the process environment. Relative file
// paths are resolved against the project root.
func Load() *Config {
	godotenv.Load()

	root := projectRoot()

	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Model: ModelConfig{
			Path:         resolve(root, getEnv("MODEL_PATH", filepath.Join("models", "fault_classifier.onnx"))),
			MetadataPath: resolve(root, getEnv("MODEL_METADATA_PATH", "")),
			LibraryPath:  getEnv("ONNXRUNTIME_LIB", ""),
		},
		Audit: AuditConfig{
			DBPath: resolve(root, getEnv("AUDIT_DB_PATH", "")),
		},
		MQTT: MQTTConfig{
			Broker:      getEnv("MQTT_BROKER", ""),
			ClientID:    getEnv("MQTT_CLIENT_ID", ""),
			Username:    getEnv("MQTT_USERNAME", ""),
			Password:    getEnv("MQTT_PASSWORD", ""),
			QoS:         getEnvAsInt("MQTT_QOS", 1),
			TopicPrefix: getEnv("MQTT_TOPIC_PREFIX", "faults"),
		},
		ShutdownTimeout: time.Duration(getEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", 10)) * time.Second,
	}
	return cfg
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
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

// projectRoot is the working directory, or two levels up when started from cmd/server.
func projectRoot() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	if filepath.Base(wd) == "server" && filepath.Base(filepath.Dir(wd)) == "cmd" {
		return filepath.Join(wd, "..", "..")
	}
	return wd
}

func resolve(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
