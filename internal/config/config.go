package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Analysis modes accepted by ANALYSIS_MODE.
const (
	AnalysisModeFull = "full"
	AnalysisModeFast = "fast"
)

type Config struct {
	Host                  string
	Port                  string
	GinMode               string
	RequestTimeout        time.Duration
	ImageFetchTimeout     time.Duration
	AnalysisTimeout       time.Duration
	MaxRequestBodySize    int64
	MaxConcurrentAnalyses int

	AnalysisMode         string
	FastModeMaxDimension int
	AutoOrient           bool
	DefaultLocale        string
	AllowedURLHosts      []string

	Log   LogConfig
	Azure AzureConfig
	S3    S3Config
	Kafka KafkaConfig
}

// LogConfig controls the optional rotating log file.
type LogConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type AzureConfig struct {
	AccountName string
	AccountKey  string
}

// Enabled reports whether blob sources can be built.
func (a AzureConfig) Enabled() bool {
	return a.AccountName != "" && a.AccountKey != ""
}

type S3Config struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

// Enabled reports whether s3:// sources can be built. Credentials may come from the AWS default chain.
func (s S3Config) Enabled() bool {
	return s.Region != ""
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("REQUEST_TIMEOUT", 30*time.Second)
	v.SetDefault("IMAGE_FETCH_TIMEOUT", 15*time.Second)
	v.SetDefault("ANALYSIS_TIMEOUT", 20*time.Second)
	v.SetDefault("MAX_REQUEST_BODY_SIZE", 10*1024*1024) // 10MB
	v.SetDefault("MAX_CONCURRENT_ANALYSES", 0)          // 0 = runtime.NumCPU()
	v.SetDefault("ANALYSIS_MODE", AnalysisModeFull)
	v.SetDefault("FAST_MODE_MAX_DIMENSION", 1024)
	v.SetDefault("AUTO_ORIENT", false)
	v.SetDefault("DEFAULT_LOCALE", "en")
	v.SetDefault("ALLOWED_URL_HOSTS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("LOG_MAX_SIZE_MB", 10)
	v.SetDefault("LOG_MAX_BACKUPS", 3)
	v.SetDefault("LOG_MAX_AGE_DAYS", 28)
	v.SetDefault("AZURE_STORAGE_ACCOUNT", "")
	v.SetDefault("AZURE_STORAGE_KEY", "")
	v.SetDefault("S3_REGION", "")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_ACCESS_KEY_ID", "")
	v.SetDefault("S3_SECRET_ACCESS_KEY", "")
	v.SetDefault("S3_USE_PATH_STYLE", false)
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_TOPIC", "design-analysis-events")
}

// LoadFromEnv reads the configuration from environment variables.
func LoadFromEnv() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	return Load(v)
}

// Load builds a Config from an already populated viper instance.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Host:                  v.GetString("HOST"),
		Port:                  v.GetString("PORT"),
		GinMode:               v.GetString("GIN_MODE"),
		RequestTimeout:        v.GetDuration("REQUEST_TIMEOUT"),
		ImageFetchTimeout:     v.GetDuration("IMAGE_FETCH_TIMEOUT"),
		AnalysisTimeout:       v.GetDuration("ANALYSIS_TIMEOUT"),
		MaxRequestBodySize:    v.GetInt64("MAX_REQUEST_BODY_SIZE"),
		MaxConcurrentAnalyses: v.GetInt("MAX_CONCURRENT_ANALYSES"),
		AnalysisMode:          strings.ToLower(strings.TrimSpace(v.GetString("ANALYSIS_MODE"))),
		FastModeMaxDimension:  v.GetInt("FAST_MODE_MAX_DIMENSION"),
		AutoOrient:            v.GetBool("AUTO_ORIENT"),
		DefaultLocale:         strings.TrimSpace(v.GetString("DEFAULT_LOCALE")),
		AllowedURLHosts:       splitList(v.GetString("ALLOWED_URL_HOSTS")),
		Log: LogConfig{
			Level:      strings.ToLower(v.GetString("LOG_LEVEL")),
			File:       v.GetString("LOG_FILE"),
			MaxSizeMB:  v.GetInt("LOG_MAX_SIZE_MB"),
			MaxBackups: v.GetInt("LOG_MAX_BACKUPS"),
			MaxAgeDays: v.GetInt("LOG_MAX_AGE_DAYS"),
		},
		Azure: AzureConfig{
			AccountName: v.GetString("AZURE_STORAGE_ACCOUNT"),
			AccountKey:  v.GetString("AZURE_STORAGE_KEY"),
		},
		S3: S3Config{
			Region:          v.GetString("S3_REGION"),
			Endpoint:        v.GetString("S3_ENDPOINT"),
			AccessKeyID:     v.GetString("S3_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("S3_SECRET_ACCESS_KEY"),
			UsePathStyle:    v.GetBool("S3_USE_PATH_STYLE"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(v.GetString("KAFKA_BROKERS")),
			Topic:   v.GetString("KAFKA_TOPIC"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.MaxRequestBodySize)
	}
	if c.MaxConcurrentAnalyses < 0 {
		return fmt.Errorf("MAX_CONCURRENT_ANALYSES must be >= 0 (got %d)", c.MaxConcurrentAnalyses)
	}
	if c.RequestTimeout <= 0 || c.ImageFetchTimeout <= 0 || c.AnalysisTimeout <= 0 {
		return fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s, analysis=%s)",
			c.RequestTimeout, c.ImageFetchTimeout, c.AnalysisTimeout)
	}
	switch c.AnalysisMode {
	case AnalysisModeFull:
	case AnalysisModeFast:
		if c.FastModeMaxDimension <= 0 {
			return fmt.Errorf("FAST_MODE_MAX_DIMENSION must be > 0 (got %d)", c.FastModeMaxDimension)
		}
	default:
		return fmt.Errorf("invalid ANALYSIS_MODE: %q (want %q or %q)", c.AnalysisMode, AnalysisModeFull, AnalysisModeFast)
	}
	if (c.S3.AccessKeyID == "") != (c.S3.SecretAccessKey == "") {
		return fmt.Errorf("S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY must be set together")
	}
	if c.Kafka.Enabled() && strings.TrimSpace(c.Kafka.Topic) == "" {
		return fmt.Errorf("KAFKA_TOPIC must be set when KAFKA_BROKERS is configured")
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
