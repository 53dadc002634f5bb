// Package config loads runtime settings from the environment and optional .env files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Defaults.
const (
	DefaultPort           = ":8080"
	DefaultOutputDir      = "figma-docgen-output"
	DefaultDatabaseDriver = "sqlite"
	DefaultDatabaseFile   = "docgen.db"
	DefaultLLMConcurrency = 3
	DefaultS3Region       = "us-east-1"
	DefaultS3Bucket       = "figma-docgen"
)

// Config is the full runtime configuration.
type Config struct {
	FigmaToken string
	Port       string
	OutputDir  string
	LLM        LLMConfig
	Database   DatabaseConfig
	Artifact   ArtifactConfig
	Log        LogConfig
}

// LLMConfig configures the language model.
type LLMConfig struct {
	APIKey      string
	Model       string
	Concurrency int
}

// DatabaseConfig configures the analyses table. Driver "none" disables it.
type DatabaseConfig struct {
	Driver string
	URL    string
}

// Enabled reports whether analyses are recorded.
func (d DatabaseConfig) Enabled() bool {
	return !strings.EqualFold(d.Driver, "none")
}

// ArtifactConfig configures S3 session storage. When disabled, sessions are kept under OutputDir.
type ArtifactConfig struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// LogConfig configures the structured logger.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads the given .env files (".env" when none are given; a missing default file is not an error)
// and builds the configuration from the environment. Variables already set take precedence over .env values.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		_ = godotenv.Load()
	} else if err := godotenv.Load(files...); err != nil {
		return nil, fmt.Errorf("load env files: %w", err)
	}

	concurrency, err := intEnv("LLM_CONCURRENCY", DefaultLLMConcurrency)
	if err != nil {
		return nil, err
	}
	if concurrency < 1 {
		return nil, fmt.Errorf("LLM_CONCURRENCY must be at least 1, got %d", concurrency)
	}

	outputDir := firstNonEmpty(env("OUTPUT_DIR"), DefaultOutputDir)
	driver := strings.ToLower(firstNonEmpty(env("DATABASE_DRIVER"), DefaultDatabaseDriver))

	dbURL := env("DATABASE_URL")
	if dbURL == "" && driver == DefaultDatabaseDriver {
		dbURL = filepath.Join(outputDir, DefaultDatabaseFile)
	}

	return &Config{
		FigmaToken: env("FIGMA_TOKEN"),
		Port:       NormalizePort(env("PORT")),
		OutputDir:  outputDir,
		LLM: LLMConfig{
			APIKey:      firstNonEmpty(env("GEMINI_API_KEY"), env("GOOGLE_API_KEY")),
			Model:       env("GEMINI_MODEL"),
			Concurrency: concurrency,
		},
		Database: DatabaseConfig{
			Driver: driver,
			URL:    dbURL,
		},
		Artifact: loadArtifactConfig(),
		Log: LogConfig{
			Level:  strings.ToLower(firstNonEmpty(env("LOG_LEVEL"), string(LevelInfo))),
			Format: strings.ToLower(firstNonEmpty(env("LOG_FORMAT"), string(FormatText))),
		},
	}, nil
}

// SetOutputDir changes OutputDir. A SQLite database that lives in the old directory by default moves along.
func (c *Config) SetOutputDir(dir string) {
	if c.Database.Driver == DefaultDatabaseDriver && c.Database.URL == filepath.Join(c.OutputDir, DefaultDatabaseFile) {
		c.Database.URL = filepath.Join(dir, DefaultDatabaseFile)
	}
	c.OutputDir = dir
}

func loadArtifactConfig() ArtifactConfig {
	endpoint := env("ARTIFACT_S3_ENDPOINT")
	return ArtifactConfig{
		Enabled:   endpoint != "",
		Endpoint:  endpoint,
		Region:    firstNonEmpty(env("ARTIFACT_S3_REGION"), DefaultS3Region),
		AccessKey: firstNonEmpty(env("ARTIFACT_S3_ACCESS_KEY"), env("MINIO_ROOT_USER")),
		SecretKey: firstNonEmpty(env("ARTIFACT_S3_SECRET_KEY"), env("MINIO_ROOT_PASSWORD")),
		Bucket:    firstNonEmpty(env("ARTIFACT_S3_BUCKET"), DefaultS3Bucket),
		UseSSL:    boolEnv("ARTIFACT_S3_USE_SSL", true),
	}
}

// NormalizePort turns "8080" into ":8080" and an empty value into DefaultPort.
func NormalizePort(port string) string {
	port = strings.TrimSpace(port)
	if port == "" {
		return DefaultPort
	}
	if strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func intEnv(key string, def int) (int, error) {
	raw := env(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func boolEnv(key string, def bool) bool {
	raw := env(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
