package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	CORS      CORSConfig
	Judge     JudgeConfig
	Validator ValidatorConfig
	Signature SignatureConfig
	Storage   StorageConfig
	Telemetry TelemetryConfig
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

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// JudgeConfig holds settings for the external semantic judge.
type JudgeConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// ValidatorConfig holds the validation policy: signature minimum, company
// email domain, ordered required-field schema, and the upload size cap.
type ValidatorConfig struct {
	MinSignatures  int      `mapstructure:"min_signatures"`
	EmailDomain    string   `mapstructure:"email_domain"`
	RequiredFields []string `mapstructure:"required_fields"`
	MaxFileSizeMB  int64    `mapstructure:"max_file_size_mb"`
}

// SignatureConfig holds the signature detection heuristic thresholds.
// The defaults are the calibrated values; changing them changes which
// marks count as signatures.
type SignatureConfig struct {
	ResolutionDPI int     `mapstructure:"resolution_dpi"`
	DarkThreshold int     `mapstructure:"dark_threshold"`
	MinArea       int     `mapstructure:"min_area"`
	MaxArea       int     `mapstructure:"max_area"`
	MinWidth      int     `mapstructure:"min_width"`
	MinHeight     int     `mapstructure:"min_height"`
	MinAspect     float64 `mapstructure:"min_aspect"`
	MaxAspect     float64 `mapstructure:"max_aspect"`
}

// StorageConfig holds result archival settings. Provider is one of
// "none", "local", or "s3".
type StorageConfig struct {
	Provider string   `mapstructure:"provider"`
	LocalDir string   `mapstructure:"local_dir"`
	S3       S3Config `mapstructure:"s3"`
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// TelemetryConfig holds Langfuse trace export settings. Telemetry is
// disabled when the keys are empty.
type TelemetryConfig struct {
	PublicKey string `mapstructure:"public_key"`
	SecretKey string `mapstructure:"secret_key"`
	Host      string `mapstructure:"host"`
}

// Enabled reports whether the trace sink is configured.
func (t *TelemetryConfig) Enabled() bool {
	return t.PublicKey != "" && t.SecretKey != ""
}

// DefaultRequiredFields is the ordered schema of the VPN-request form.
var DefaultRequiredFields = []string{
	"NIK", "Name", "Phone", "Email", "Department",
	"Manager", "DateRange", "TimeRange", "ApprovedBy", "VPNUser",
}

// Load reads configuration from environment variables with the VPNVAL_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("VPNVAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.environment", "development")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Judge defaults
	v.SetDefault("judge.provider", "gemini")
	v.SetDefault("judge.api_key", "")
	v.SetDefault("judge.default_model", "gemini-2.0-flash")
	v.SetDefault("judge.max_retries", 1)
	v.SetDefault("judge.timeout_secs", 60)

	// Validator defaults
	v.SetDefault("validator.min_signatures", 3)
	v.SetDefault("validator.email_domain", "@infomedia.co.id")
	v.SetDefault("validator.required_fields", strings.Join(DefaultRequiredFields, ","))
	v.SetDefault("validator.max_file_size_mb", 10)

	// Signature detection defaults
	v.SetDefault("signature.resolution_dpi", 150)
	v.SetDefault("signature.dark_threshold", 100)
	v.SetDefault("signature.min_area", 500)
	v.SetDefault("signature.max_area", 50000)
	v.SetDefault("signature.min_width", 50)
	v.SetDefault("signature.min_height", 20)
	v.SetDefault("signature.min_aspect", 1.5)
	v.SetDefault("signature.max_aspect", 8.0)

	// Storage defaults
	v.SetDefault("storage.provider", "none")
	v.SetDefault("storage.local_dir", "./validation-results")
	v.SetDefault("storage.s3.region", "ap-southeast-1")
	v.SetDefault("storage.s3.bucket", "vpnval-results")
	v.SetDefault("storage.s3.endpoint", "")

	// Telemetry defaults
	v.SetDefault("telemetry.public_key", "")
	v.SetDefault("telemetry.secret_key", "")
	v.SetDefault("telemetry.host", "https://cloud.langfuse.com")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                "VPNVAL_SERVER_PORT",
		"server.read_timeout":        "VPNVAL_SERVER_READ_TIMEOUT",
		"server.write_timeout":       "VPNVAL_SERVER_WRITE_TIMEOUT",
		"server.environment":         "VPNVAL_SERVER_ENVIRONMENT",
		"log.level":                  "VPNVAL_LOG_LEVEL",
		"log.format":                 "VPNVAL_LOG_FORMAT",
		"cors.allowed_origins":       "VPNVAL_CORS_ALLOWED_ORIGINS",
		"judge.provider":             "VPNVAL_JUDGE_PROVIDER",
		"judge.api_key":              "VPNVAL_JUDGE_API_KEY",
		"judge.default_model":        "VPNVAL_JUDGE_DEFAULT_MODEL",
		"judge.max_retries":          "VPNVAL_JUDGE_MAX_RETRIES",
		"judge.timeout_secs":         "VPNVAL_JUDGE_TIMEOUT_SECS",
		"validator.min_signatures":   "VPNVAL_VALIDATOR_MIN_SIGNATURES",
		"validator.email_domain":     "VPNVAL_VALIDATOR_EMAIL_DOMAIN",
		"validator.required_fields":  "VPNVAL_VALIDATOR_REQUIRED_FIELDS",
		"validator.max_file_size_mb": "VPNVAL_VALIDATOR_MAX_FILE_SIZE_MB",
		"signature.resolution_dpi":   "VPNVAL_SIGNATURE_RESOLUTION_DPI",
		"signature.dark_threshold":   "VPNVAL_SIGNATURE_DARK_THRESHOLD",
		"signature.min_area":         "VPNVAL_SIGNATURE_MIN_AREA",
		"signature.max_area":         "VPNVAL_SIGNATURE_MAX_AREA",
		"signature.min_width":        "VPNVAL_SIGNATURE_MIN_WIDTH",
		"signature.min_height":       "VPNVAL_SIGNATURE_MIN_HEIGHT",
		"signature.min_aspect":       "VPNVAL_SIGNATURE_MIN_ASPECT",
		"signature.max_aspect":       "VPNVAL_SIGNATURE_MAX_ASPECT",
		"storage.provider":           "VPNVAL_STORAGE_PROVIDER",
		"storage.local_dir":          "VPNVAL_STORAGE_LOCAL_DIR",
		"storage.s3.region":          "VPNVAL_STORAGE_S3_REGION",
		"storage.s3.bucket":          "VPNVAL_STORAGE_S3_BUCKET",
		"storage.s3.endpoint":        "VPNVAL_STORAGE_S3_ENDPOINT",
		"storage.s3.access_key":      "VPNVAL_STORAGE_S3_ACCESS_KEY",
		"storage.s3.secret_key":      "VPNVAL_STORAGE_S3_SECRET_KEY",
		"telemetry.public_key":       "VPNVAL_TELEMETRY_PUBLIC_KEY",
		"telemetry.secret_key":       "VPNVAL_TELEMETRY_SECRET_KEY",
		"telemetry.host":             "VPNVAL_TELEMETRY_HOST",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if VPNVAL_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("VPNVAL_SERVER_PORT") == "" {
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
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitAndTrim(v.GetString("cors.allowed_origins")),
	}
	cfg.Judge = JudgeConfig{
		Provider:     v.GetString("judge.provider"),
		APIKey:       v.GetString("judge.api_key"),
		DefaultModel: v.GetString("judge.default_model"),
		MaxRetries:   v.GetInt("judge.max_retries"),
		TimeoutSecs:  v.GetInt("judge.timeout_secs"),
	}
	cfg.Validator = ValidatorConfig{
		MinSignatures:  v.GetInt("validator.min_signatures"),
		EmailDomain:    v.GetString("validator.email_domain"),
		RequiredFields: splitAndTrim(v.GetString("validator.required_fields")),
		MaxFileSizeMB:  v.GetInt64("validator.max_file_size_mb"),
	}
	cfg.Signature = SignatureConfig{
		ResolutionDPI: v.GetInt("signature.resolution_dpi"),
		DarkThreshold: v.GetInt("signature.dark_threshold"),
		MinArea:       v.GetInt("signature.min_area"),
		MaxArea:       v.GetInt("signature.max_area"),
		MinWidth:      v.GetInt("signature.min_width"),
		MinHeight:     v.GetInt("signature.min_height"),
		MinAspect:     v.GetFloat64("signature.min_aspect"),
		MaxAspect:     v.GetFloat64("signature.max_aspect"),
	}
	cfg.Storage = StorageConfig{
		Provider: v.GetString("storage.provider"),
		LocalDir: v.GetString("storage.local_dir"),
		S3: S3Config{
			Region:    v.GetString("storage.s3.region"),
			Bucket:    v.GetString("storage.s3.bucket"),
			Endpoint:  v.GetString("storage.s3.endpoint"),
			AccessKey: v.GetString("storage.s3.access_key"),
			SecretKey: v.GetString("storage.s3.secret_key"),
		},
	}
	cfg.Telemetry = TelemetryConfig{
		PublicKey: v.GetString("telemetry.public_key"),
		SecretKey: v.GetString("telemetry.secret_key"),
		Host:      v.GetString("telemetry.host"),
	}

	return cfg, nil
}

// splitAndTrim parses a comma-separated string into a slice, dropping blanks.
func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
