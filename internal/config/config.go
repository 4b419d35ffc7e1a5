package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration required by the console backend.
// All values come from env (or an env-file loaded by main).
// No business logic should depend on raw environment variables.
type Config struct {
	App    AppConfig
	Speech SpeechConfig
}

type AppConfig struct {
	Env  string
	Port int
}

// SpeechConfig configures the remote TTS backend. All fields are optional:
// without an endpoint and key the console runs with speech disabled.
type SpeechConfig struct {
	Endpoint string
	APIKey   string
	Voice    string
	Timeout  time.Duration
}

func Load() (Config, error) {
	c := Config{}
	var parseErrs []error

	c.App.Env = strings.TrimSpace(os.Getenv("APP_ENV"))
	{
		n, err := mustInt("APP_PORT")
		if err != nil {
			parseErrs = append(parseErrs, err)
		}
		c.App.Port = n
	}

	c.Speech.Endpoint = strings.TrimSpace(os.Getenv("SPEECH_ENDPOINT"))
	c.Speech.APIKey = os.Getenv("SPEECH_API_KEY")
	c.Speech.Voice = strings.TrimSpace(os.Getenv("SPEECH_VOICE"))
	c.Speech.Timeout = optDuration("SPEECH_TIMEOUT")

	if err := joinErrors(parseErrs); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		errs = append(errs, errors.New("APP_ENV is required"))
	} else if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}

	// Speech is optional, but an endpoint without a key (or vice versa) is
	// a misconfiguration worth failing on early.
	if (c.Speech.Endpoint == "") != (c.Speech.APIKey == "") {
		errs = append(errs, errors.New("SPEECH_ENDPOINT and SPEECH_API_KEY must be set together"))
	}
	if c.Speech.Timeout < 0 {
		errs = append(errs, errors.New("SPEECH_TIMEOUT must not be negative"))
	}

	return joinErrors(errs)
}

// SpeechEnabled reports whether a synthesis backend is configured.
func (c Config) SpeechEnabled() bool {
	return c.Speech.Endpoint != "" && c.Speech.APIKey != ""
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

func mustInt(key string) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func optDuration(key string) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0
	}
	return d
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}
