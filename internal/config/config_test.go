package config

import (
	"testing"
	"time"
)

func setBaseEnv(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.example.com")
	t.Setenv("AZURE_STORAGE_ACCOUNT", "scoutlake")
	t.Setenv("AZURE_CONTAINER", "exports")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if !cfg.UseDataLake || !cfg.UseMockFallback {
		t.Error("data lake and mock fallback should default to enabled")
	}
	if cfg.FailureThreshold != 3 {
		t.Errorf("FailureThreshold = %d, want 3", cfg.FailureThreshold)
	}
	if cfg.TableTTL != 15*time.Minute {
		t.Errorf("TableTTL = %s, want 15m", cfg.TableTTL)
	}
	if cfg.UseGemini {
		t.Error("UseGemini should be false without GEMINI_API_KEY")
	}
}

func TestLoadOverrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("USE_DATA_LAKE", "false")
	t.Setenv("FAILURE_THRESHOLD", "5")
	t.Setenv("TABLE_TTL", "1h")
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.UseDataLake {
		t.Error("UseDataLake should be false")
	}
	if cfg.FailureThreshold != 5 {
		t.Errorf("FailureThreshold = %d, want 5", cfg.FailureThreshold)
	}
	if cfg.TableTTL != time.Hour {
		t.Errorf("TableTTL = %s, want 1h", cfg.TableTTL)
	}
	if !cfg.UseGemini {
		t.Error("UseGemini should be true with GEMINI_API_KEY set")
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "missing api base url",
			env:  map[string]string{},
		},
		{
			name: "data lake without storage settings",
			env: map[string]string{
				"API_BASE_URL":  "https://api.example.com",
				"USE_DATA_LAKE": "true",
			},
		},
		{
			name: "zero failure threshold",
			env: map[string]string{
				"API_BASE_URL":          "https://api.example.com",
				"AZURE_STORAGE_ACCOUNT": "scoutlake",
				"AZURE_CONTAINER":       "exports",
				"FAILURE_THRESHOLD":     "0",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("API_BASE_URL", "")
			t.Setenv("AZURE_STORAGE_ACCOUNT", "")
			t.Setenv("AZURE_CONTAINER", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestGCSBucketSatisfiesDataLake(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.example.com")
	t.Setenv("AZURE_STORAGE_ACCOUNT", "")
	t.Setenv("AZURE_CONTAINER", "")
	t.Setenv("GCS_BUCKET", "scout-exports")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GCSBucket != "scout-exports" {
		t.Errorf("GCSBucket = %q", cfg.GCSBucket)
	}
}
