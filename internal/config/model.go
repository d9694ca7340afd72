// Package config holds the typed configuration tree for cookiecheck.
//
// Struct tags use `koanf:"..."`; the loader unmarshals the merged tree
// into Config and validates it before anything else starts.
package config

import "time"

// Config is the root of the configuration tree.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Verifier Verifier `koanf:"verifier"`
	Browser  Browser  `koanf:"browser"`
	Remote   Remote   `koanf:"remote"`
	Audit    Audit    `koanf:"audit"`
	Redis    Redis    `koanf:"redis"`
	Cache    Cache    `koanf:"cache"`
	Log      Log      `koanf:"log"`
}

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr        string        `koanf:"listen_addr"         validate:"required,hostname_port"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout" validate:"gt=0"`
	WriteTimeout      time.Duration `koanf:"write_timeout"       validate:"gt=0"`
	IdleTimeout       time.Duration `koanf:"idle_timeout"        validate:"gt=0"`
}

// Verifier selects the verification strategy and its budget.
type Verifier struct {
	Mode    string        `koanf:"mode"     validate:"required"`
	Timeout time.Duration `koanf:"timeout"  validate:"gt=0"`
	BaseURL string        `koanf:"base_url" validate:"required,url"`
}

// Browser tunes the local headless engine.
type Browser struct {
	Bin                    string        `koanf:"bin"`
	DataDir                string        `koanf:"data_dir"`
	Headless               bool          `koanf:"headless"`
	MaxConcurrent          int64         `koanf:"max_concurrent"           validate:"gte=1"`
	PollInterval           time.Duration `koanf:"poll_interval"            validate:"gt=0"`
	SettleSnapshots        int           `koanf:"settle_snapshots"         validate:"gte=1"`
	ProfileFallbackTimeout time.Duration `koanf:"profile_fallback_timeout" validate:"gte=0"`
	Flags                  []string      `koanf:"flags"`
}

// Remote configures delegation to an external verification API.
type Remote struct {
	Endpoint  string        `koanf:"endpoint"   validate:"omitempty,url"`
	APIKey    string        `koanf:"api_key"`
	APIHeader string        `koanf:"api_header" validate:"required"`
	JWTSecret string        `koanf:"jwt_secret"`
	Timeout   time.Duration `koanf:"timeout"    validate:"gt=0"`
	RetryMax  int           `koanf:"retry_max"  validate:"gte=0"`
}

// Configured reports whether an endpoint is set.
func (r Remote) Configured() bool {
	return r.Endpoint != ""
}

// Audit selects where audit events go.
type Audit struct {
	Sink   string `koanf:"sink"   validate:"oneof=log redis none"`
	Topic  string `koanf:"topic"  validate:"required"`
	Buffer int    `koanf:"buffer" validate:"gte=1"`
}

// Redis is shared by the redis audit sink and the redis outcome cache.
type Redis struct {
	URL string `koanf:"url" validate:"required"`
}

// Cache configures the optional outcome cache. A zero TTL disables it.
type Cache struct {
	Backend string        `koanf:"backend" validate:"oneof=memory redis"`
	TTL     time.Duration `koanf:"ttl"     validate:"gte=0"`
}

// Log configures the process logger.
type Log struct {
	Level   string `koanf:"level"   validate:"oneof=debug info warn error"`
	File    string `koanf:"file"`
	Console bool   `koanf:"console"`
}
