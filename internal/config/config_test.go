package config

import (
	"testing"
	"time"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Port)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("Expected request timeout 30s, got %s", cfg.RequestTimeout)
	}
	if cfg.MaxRequestBodySize != 10*1024*1024 {
		t.Errorf("Expected 10MB body limit, got %d", cfg.MaxRequestBodySize)
	}
	if cfg.AnalysisMode != AnalysisModeFull {
		t.Errorf("Expected full analysis mode, got %s", cfg.AnalysisMode)
	}
	if cfg.DefaultLocale != "en" {
		t.Errorf("Expected default locale en, got %s", cfg.DefaultLocale)
	}
	if cfg.Kafka.Enabled() {
		t.Error("Expected Kafka to be disabled by default")
	}
	if cfg.Azure.Enabled() {
		t.Error("Expected Azure to be disabled by default")
	}
	if cfg.S3.Enabled() {
		t.Error("Expected S3 to be disabled by default")
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ANALYSIS_TIMEOUT", "5s")
	t.Setenv("ANALYSIS_MODE", "FAST")
	t.Setenv("FAST_MODE_MAX_DIMENSION", "512")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("ALLOWED_URL_HOSTS", "cdn.example.com")
	t.Setenv("S3_REGION", "eu-central-1")
	t.Setenv("S3_USE_PATH_STYLE", "true")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.ServerAddress() != "0.0.0.0:9090" {
		t.Errorf("Unexpected server address: %s", cfg.ServerAddress())
	}
	if cfg.AnalysisTimeout != 5*time.Second {
		t.Errorf("Expected 5s analysis timeout, got %s", cfg.AnalysisTimeout)
	}
	if cfg.AnalysisMode != AnalysisModeFast || cfg.FastModeMaxDimension != 512 {
		t.Errorf("Expected fast mode with 512px bound, got %s/%d", cfg.AnalysisMode, cfg.FastModeMaxDimension)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "kafka-2:9092" {
		t.Errorf("Unexpected brokers: %v", cfg.Kafka.Brokers)
	}
	if !cfg.S3.Enabled() || !cfg.S3.UsePathStyle {
		t.Errorf("Expected path-style S3 source, got %+v", cfg.S3)
	}
	if len(cfg.AllowedURLHosts) != 1 {
		t.Errorf("Expected one allowed host, got %v", cfg.AllowedURLHosts)
	}
}

func TestLoadFromEnv_Invalid(t *testing.T) {
	testCases := []struct {
		name  string
		key   string
		value string
	}{
		{"Port out of range", "PORT", "70000"},
		{"Non-numeric port", "PORT", "http"},
		{"Zero body size", "MAX_REQUEST_BODY_SIZE", "0"},
		{"Negative concurrency", "MAX_CONCURRENT_ANALYSES", "-1"},
		{"Unknown mode", "ANALYSIS_MODE", "turbo"},
		{"S3 key without secret", "S3_ACCESS_KEY_ID", "AKIA"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			if _, err := LoadFromEnv(); err == nil {
				t.Errorf("Expected error for %s=%s", tc.key, tc.value)
			}
		})
	}
}
