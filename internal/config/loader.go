package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

// EnvPrefix marks environment overrides: COOKIECHECK_HTTP__LISTEN_ADDR -> http.listen_addr
const EnvPrefix = "COOKIECHECK_"

var v = validator.New()

var defaults = map[string]any{
	"http.listen_addr":                 ":8080",
	"http.read_header_timeout":         10 * time.Second,
	"http.write_timeout":               60 * time.Second,
	"http.idle_timeout":                60 * time.Second,
	"verifier.mode":                    "auto",
	"verifier.timeout":                 15 * time.Second,
	"verifier.base_url":                "https://www.linkedin.com",
	"browser.headless":                 true,
	"browser.data_dir":                 os.TempDir(),
	"browser.max_concurrent":           4,
	"browser.poll_interval":            250 * time.Millisecond,
	"browser.settle_snapshots":         4,
	"browser.profile_fallback_timeout": 5 * time.Second,
	"remote.api_header":                "Authorization",
	"remote.timeout":                   15 * time.Second,
	"remote.retry_max":                 1,
	"audit.sink":                       "log",
	"audit.topic":                      "cookiecheck.audit",
	"audit.buffer":                     256,
	"redis.url":                        "redis://localhost:6379/0",
	"cache.backend":                    "memory",
	"cache.ttl":                        time.Duration(0),
	"log.level":                        "info",
}

// legacyEnv maps the variables of earlier deployments onto config keys.
// They sit below the prefixed overrides.
var legacyEnv = map[string]string{
	"LINKEDIN_VERIFIER_MODE":              "verifier.mode",
	"LINKEDIN_COOKIE_VERIFIER_API":        "remote.endpoint",
	"LINKEDIN_COOKIE_VERIFIER_API_KEY":    "remote.api_key",
	"LINKEDIN_COOKIE_VERIFIER_API_HEADER": "remote.api_header",
}

const legacyTimeoutEnv = "LINKEDIN_COOKIE_VERIFIER_TIMEOUT"

// Load merges defaults, .env, the optional YAML file at path and the
// environment, then validates the result.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	k := koanf.New(".")
	for key, val := range defaults {
		if err := k.Set(key, val); err != nil {
			return nil, fmt.Errorf("set default %s: %w", key, err)
		}
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			zap.S().Errorw("config yaml load failed", "file", path, "err", err)
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		zap.S().Debugw("config yaml loaded", "file", path)
	}

	if err := loadLegacyEnv(k); err != nil {
		return nil, err
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		return strings.ToLower(strings.ReplaceAll(s, "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, fmt.Errorf("load env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := v.Struct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, fmt.Errorf("validate config: %w", err)
	}

	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"mode", cfg.Verifier.Mode,
		"remote_configured", cfg.Remote.Configured(),
		"audit_sink", cfg.Audit.Sink,
	)
	return &cfg, nil
}

func loadLegacyEnv(k *koanf.Koanf) error {
	for name, key := range legacyEnv {
		if val := strings.TrimSpace(os.Getenv(name)); val != "" {
			if err := k.Set(key, val); err != nil {
				return fmt.Errorf("set %s: %w", key, err)
			}
		}
	}

	raw := strings.TrimSpace(os.Getenv(legacyTimeoutEnv))
	if raw == "" {
		return nil
	}
	secs, err := strconv.ParseFloat(raw, 64)
	if err != nil || secs <= 0 {
		zap.S().Warnw("ignoring invalid legacy timeout", "env", legacyTimeoutEnv, "value", raw)
		return nil
	}
	timeout := time.Duration(secs * float64(time.Second))
	for _, key := range []string{"verifier.timeout", "remote.timeout"} {
		if err := k.Set(key, timeout); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	}
	return nil
}
