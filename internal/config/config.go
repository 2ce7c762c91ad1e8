package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// EnvConfigPath points to an optional YAML file. Environment variables
// override values read from it.
const EnvConfigPath = "CONFIG_PATH"

type Config struct {
	Server ServerConfig `yaml:"server"`
	Model  ModelConfig  `yaml:"model"`
	Log    LogConfig    `yaml:"log"`
}

type ServerConfig struct {
	Port            string        `yaml:"port" env:"PORT" env-default:"10000"`
	GinMode         string        `yaml:"gin_mode" env:"GIN_MODE" env-default:"release"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" env:"MAX_UPLOAD_BYTES" env-default:"10485760"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
}

type ModelConfig struct {
	Path           string `yaml:"path" env:"MODEL_PATH" env-default:"models/plant_disease.onnx"`
	LibraryPath    string `yaml:"library_path" env:"ONNXRUNTIME_LIB"`
	LoadAttempts   int    `yaml:"load_attempts" env:"MODEL_LOAD_ATTEMPTS" env-default:"3"`
	IntraOpThreads int    `yaml:"intra_op_threads" env:"ONNX_INTRA_OP_THREADS" env-default:"0"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

func New() (*Config, error) {
	cfg := &Config{}

	if path := os.Getenv(EnvConfigPath); path != "" {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	if cfg.Model.LoadAttempts < 1 {
		return nil, fmt.Errorf("MODEL_LOAD_ATTEMPTS must be at least 1, got %d", cfg.Model.LoadAttempts)
	}
	if cfg.Server.MaxUploadBytes < 1 {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", cfg.Server.MaxUploadBytes)
	}

	return cfg, nil
}

func MustNew() *Config {
	cfg, err := New()
	if err != nil {
		panic(err)
	}
	return cfg
}
