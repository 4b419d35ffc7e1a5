package config

import (
	"testing"
	"time"
)

func TestValidate_ReportsMissingRequired(t *testing.T) {
	c := Config{}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidate_RejectsUnknownEnv(t *testing.T) {
	c := Config{App: AppConfig{Env: "qa", Port: 8080}}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for unknown APP_ENV")
	}
}

func TestValidate_SpeechMustBePaired(t *testing.T) {
	c := Config{
		App:    AppConfig{Env: "local", Port: 8080},
		Speech: SpeechConfig{Endpoint: "https://tts.example.com/v1/synthesize"},
	}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for endpoint without api key")
	}

	c.Speech.APIKey = "k"
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidate_SpeechOptional(t *testing.T) {
	c := Config{App: AppConfig{Env: "production", Port: 8080}}
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error without speech config, got %v", err)
	}
	if c.SpeechEnabled() {
		t.Fatalf("speech should be disabled")
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "local")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("SPEECH_ENDPOINT", "https://tts.example.com/v1/synthesize")
	t.Setenv("SPEECH_API_KEY", "k")
	t.Setenv("SPEECH_TIMEOUT", "5s")

	c, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if c.HTTPAddr() != ":9090" {
		t.Fatalf("unexpected addr %q", c.HTTPAddr())
	}
	if !c.SpeechEnabled() {
		t.Fatalf("speech should be enabled")
	}
	if c.Speech.Timeout != 5*time.Second {
		t.Fatalf("unexpected timeout %v", c.Speech.Timeout)
	}
	if c.IsProduction() {
		t.Fatalf("local is not production")
	}
}
