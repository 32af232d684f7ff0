package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Inference InferenceConfig
	Ingestion IngestionConfig
	Analysis  AnalysisConfig
	Progress  ProgressConfig
	Upload    UploadConfig
	CORS      CORSConfig
	S3        S3Config
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ProviderConfig holds settings for a single inference provider.
type ProviderConfig struct {
	Provider             string `mapstructure:"provider"`
	APIKey               string `mapstructure:"api_key"`
	DefaultModel         string `mapstructure:"default_model"`
	Endpoint             string `mapstructure:"endpoint"`
	TimeoutSecs          int    `mapstructure:"timeout_secs"`
	TextThinkingBudget   int    `mapstructure:"text_thinking_budget"`
	BinaryThinkingBudget int    `mapstructure:"binary_thinking_budget"`
}

// InferenceConfig holds the primary provider settings and an optional
// secondary provider used when the primary fails.
type InferenceConfig struct {
	ProviderConfig `mapstructure:",squash"`
	Secondary      ProviderConfig `mapstructure:"secondary"`
}

// PrimaryConfig returns the primary provider config.
func (c *InferenceConfig) PrimaryConfig() *ProviderConfig {
	return &c.ProviderConfig
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (c *InferenceConfig) SecondaryConfig() *ProviderConfig {
	if c.Secondary.Provider != "" {
		return &c.Secondary
	}
	return nil
}

// ThinkingBudget returns the compute budget for binary or text payloads.
func (c *ProviderConfig) ThinkingBudget(binary bool) int {
	if binary {
		return c.BinaryThinkingBudget
	}
	return c.TextThinkingBudget
}

// IngestionConfig holds per-payload-kind size ceilings.
type IngestionConfig struct {
	MaxTextChars   int      `mapstructure:"max_text_chars"`
	MaxBinaryBytes int64    `mapstructure:"max_binary_bytes"`
	BinaryTypes    []string `mapstructure:"binary_types"`
}

// AnalysisConfig holds response validation settings.
type AnalysisConfig struct {
	DistributionPolicy    string  `mapstructure:"distribution_policy"`
	DistributionTolerance float64 `mapstructure:"distribution_tolerance"`
	DistributionDrift     float64 `mapstructure:"distribution_drift"`
}

// ProgressConfig holds cosmetic progress indicator settings.
type ProgressConfig struct {
	StepInterval time.Duration `mapstructure:"step_interval"`
}

// UploadConfig holds HTTP upload limits.
type UploadConfig struct {
	MaxFileSizeMB int64 `mapstructure:"max_file_size_mb"`
	RatePerMinute int   `mapstructure:"rate_per_minute"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// S3Config holds AWS S3 settings for the object document source.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// Load reads configuration from an optional .env file and environment
// variables with the SPENDLENS_ prefix.
func Load() (*Config, error) {
	for _, envFile := range []string{".env", "../.env"} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	v := viper.New()
	v.SetEnvPrefix("SPENDLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Inference defaults
	v.SetDefault("inference.provider", "gemini")
	v.SetDefault("inference.api_key", "")
	v.SetDefault("inference.default_model", "")
	v.SetDefault("inference.endpoint", "")
	v.SetDefault("inference.timeout_secs", 0)
	v.SetDefault("inference.text_thinking_budget", 3000)
	v.SetDefault("inference.binary_thinking_budget", 8000)
	v.SetDefault("inference.secondary.provider", "")
	v.SetDefault("inference.secondary.api_key", "")
	v.SetDefault("inference.secondary.default_model", "")
	v.SetDefault("inference.secondary.endpoint", "")
	v.SetDefault("inference.secondary.timeout_secs", 0)
	v.SetDefault("inference.secondary.text_thinking_budget", 3000)
	v.SetDefault("inference.secondary.binary_thinking_budget", 8000)

	// Ingestion defaults
	v.SetDefault("ingestion.max_text_chars", 30000)
	v.SetDefault("ingestion.max_binary_bytes", 0)
	v.SetDefault("ingestion.binary_types", "application/pdf,image/png,image/jpeg,image/webp")

	// Analysis defaults
	v.SetDefault("analysis.distribution_policy", "reject")
	v.SetDefault("analysis.distribution_tolerance", 0.5)
	v.SetDefault("analysis.distribution_drift", 1.0)

	v.SetDefault("progress.step_interval", "3s")

	v.SetDefault("upload.max_file_size_mb", 20)
	v.SetDefault("upload.rate_per_minute", 30)

	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.endpoint", "")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                                "SPENDLENS_SERVER_PORT",
		"server.read_timeout":                        "SPENDLENS_SERVER_READ_TIMEOUT",
		"server.write_timeout":                       "SPENDLENS_SERVER_WRITE_TIMEOUT",
		"server.environment":                         "SPENDLENS_SERVER_ENVIRONMENT",
		"log.level":                                  "SPENDLENS_LOG_LEVEL",
		"log.format":                                 "SPENDLENS_LOG_FORMAT",
		"inference.provider":                         "SPENDLENS_INFERENCE_PROVIDER",
		"inference.api_key":                          "SPENDLENS_INFERENCE_API_KEY",
		"inference.default_model":                    "SPENDLENS_INFERENCE_DEFAULT_MODEL",
		"inference.endpoint":                         "SPENDLENS_INFERENCE_ENDPOINT",
		"inference.timeout_secs":                     "SPENDLENS_INFERENCE_TIMEOUT_SECS",
		"inference.text_thinking_budget":             "SPENDLENS_INFERENCE_TEXT_THINKING_BUDGET",
		"inference.binary_thinking_budget":           "SPENDLENS_INFERENCE_BINARY_THINKING_BUDGET",
		"inference.secondary.provider":               "SPENDLENS_INFERENCE_SECONDARY_PROVIDER",
		"inference.secondary.api_key":                "SPENDLENS_INFERENCE_SECONDARY_API_KEY",
		"inference.secondary.default_model":          "SPENDLENS_INFERENCE_SECONDARY_DEFAULT_MODEL",
		"inference.secondary.endpoint":               "SPENDLENS_INFERENCE_SECONDARY_ENDPOINT",
		"inference.secondary.timeout_secs":           "SPENDLENS_INFERENCE_SECONDARY_TIMEOUT_SECS",
		"inference.secondary.text_thinking_budget":   "SPENDLENS_INFERENCE_SECONDARY_TEXT_THINKING_BUDGET",
		"inference.secondary.binary_thinking_budget": "SPENDLENS_INFERENCE_SECONDARY_BINARY_THINKING_BUDGET",
		"ingestion.max_text_chars":                   "SPENDLENS_INGESTION_MAX_TEXT_CHARS",
		"ingestion.max_binary_bytes":                 "SPENDLENS_INGESTION_MAX_BINARY_BYTES",
		"ingestion.binary_types":                     "SPENDLENS_INGESTION_BINARY_TYPES",
		"analysis.distribution_policy":               "SPENDLENS_ANALYSIS_DISTRIBUTION_POLICY",
		"analysis.distribution_tolerance":            "SPENDLENS_ANALYSIS_DISTRIBUTION_TOLERANCE",
		"analysis.distribution_drift":                "SPENDLENS_ANALYSIS_DISTRIBUTION_DRIFT",
		"progress.step_interval":                     "SPENDLENS_PROGRESS_STEP_INTERVAL",
		"upload.max_file_size_mb":                    "SPENDLENS_UPLOAD_MAX_FILE_SIZE_MB",
		"upload.rate_per_minute":                     "SPENDLENS_UPLOAD_RATE_PER_MINUTE",
		"cors.allowed_origins":                       "SPENDLENS_CORS_ALLOWED_ORIGINS",
		"s3.region":                                  "SPENDLENS_S3_REGION",
		"s3.endpoint":                                "SPENDLENS_S3_ENDPOINT",
		"s3.access_key":                              "SPENDLENS_S3_ACCESS_KEY",
		"s3.secret_key":                              "SPENDLENS_S3_SECRET_KEY",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if SPENDLENS_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("SPENDLENS_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.Inference = InferenceConfig{
		ProviderConfig: providerConfig(v, "inference"),
		Secondary:      providerConfig(v, "inference.secondary"),
	}
	cfg.Ingestion = IngestionConfig{
		MaxTextChars:   v.GetInt("ingestion.max_text_chars"),
		MaxBinaryBytes: v.GetInt64("ingestion.max_binary_bytes"),
		BinaryTypes:    splitList(v.GetString("ingestion.binary_types")),
	}
	cfg.Analysis = AnalysisConfig{
		DistributionPolicy:    strings.ToLower(v.GetString("analysis.distribution_policy")),
		DistributionTolerance: v.GetFloat64("analysis.distribution_tolerance"),
		DistributionDrift:     v.GetFloat64("analysis.distribution_drift"),
	}
	cfg.Progress = ProgressConfig{
		StepInterval: v.GetDuration("progress.step_interval"),
	}
	cfg.Upload = UploadConfig{
		MaxFileSizeMB: v.GetInt64("upload.max_file_size_mb"),
		RatePerMinute: v.GetInt("upload.rate_per_minute"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}

	return cfg, nil
}

func providerConfig(v *viper.Viper, prefix string) ProviderConfig {
	return ProviderConfig{
		Provider:             strings.ToLower(v.GetString(prefix + ".provider")),
		APIKey:               v.GetString(prefix + ".api_key"),
		DefaultModel:         v.GetString(prefix + ".default_model"),
		Endpoint:             v.GetString(prefix + ".endpoint"),
		TimeoutSecs:          v.GetInt(prefix + ".timeout_secs"),
		TextThinkingBudget:   v.GetInt(prefix + ".text_thinking_budget"),
		BinaryThinkingBudget: v.GetInt(prefix + ".binary_thinking_budget"),
	}
}

// splitList parses a comma-separated string, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
