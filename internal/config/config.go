package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/gtmaskall/jnp/internal/tasks"
)

type Config struct {
	Number struct {
		StartAt   int    `yaml:"start_at"`
		Separator string `yaml:"separator"`
	} `yaml:"number"`
	Contents struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"contents"`
	Tasks struct {
		Task           string `yaml:"task"`
		Answer         string `yaml:"answer"`
		Question       string `yaml:"question"`
		QuestionAnswer string `yaml:"question_answer"`
	} `yaml:"tasks"`
	Series struct {
		DB string `yaml:"db"`
	} `yaml:"series"`
}

// Default returns the configuration used when no .jnp.yaml is present.
func Default() *Config {
	var cfg Config
	cfg.Number.StartAt = 1
	cfg.Number.Separator = "."
	cfg.Contents.Enabled = true
	cfg.Tasks.Task = tasks.DefaultTask
	cfg.Tasks.Answer = tasks.DefaultAnswer
	cfg.Tasks.Question = tasks.DefaultQuestion
	cfg.Tasks.QuestionAnswer = tasks.DefaultQA
	cfg.Series.DB = "jnp-series.db"
	return &cfg
}

// LoadConfig reads the YAML config at path, falling back to defaults when the
// file does not exist. A .env file and JNP_* environment variables override.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Load YAML config
	file, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	// 3. Override with Environment Variables if present
	if v := os.Getenv("JNP_START_AT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Number.StartAt = n
		}
	}
	if v := os.Getenv("JNP_SEPARATOR"); v != "" {
		cfg.Number.Separator = v
	}
	if v := os.Getenv("JNP_SERIES_DB"); v != "" {
		cfg.Series.DB = v
	}

	return cfg, nil
}
