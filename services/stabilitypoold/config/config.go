package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config captures the runtime settings for the Stability Pool service
// daemon.
type Config struct {
	ListenAddress string          `yaml:"listen"`
	Environment   string          `yaml:"environment"`
	DataDir       string          `yaml:"data_dir"`
	Auth          AuthConfig      `yaml:"auth"`
	Issuance      IssuanceConfig  `yaml:"issuance"`
	Pricing       PricingConfig   `yaml:"pricing"`
	Telemetry     TelemetryConfig `yaml:"telemetry"`
	RateLimit     RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig throttles the RPC surface per client address, mirroring
// native/common.Quota's request-count gate. MaxRequestsPerMin of 0 disables
// throttling entirely.
type RateLimitConfig struct {
	MaxRequestsPerMin uint32 `yaml:"max_requests_per_min"`
	EpochSeconds      uint32 `yaml:"epoch_seconds"`
}

// AuthConfig configures JWT verification for the administrative RPC
// surface (offset, and any wiring/admin methods).
type AuthConfig struct {
	JWTSecret string   `yaml:"jwt_secret"`
	Issuer    string   `yaml:"issuer"`
	AdminSubs []string `yaml:"admin_subjects"`
}

// IssuanceConfig seeds the Community Issuance and LOAN engines.
type IssuanceConfig struct {
	DeploymentUnixSeconds int64  `yaml:"deployment_unix_seconds"`
	LOANSupplyCap         string `yaml:"loan_supply_cap"`
}

// PricingConfig configures the placeholder FURFI/FURUSD price source wired
// into the Trove engine. Real oracle integration is out of scope; this is
// the pluggable seam described in the Trove engine's design.
type PricingConfig struct {
	FURFIPriceFURUSD string `yaml:"furfi_price_furusd"`
}

// TelemetryConfig configures OpenTelemetry export.
type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
	Insecure bool   `yaml:"insecure"`
}

// Load reads the YAML configuration from disk, fills in defaults, and
// validates the result.
func Load(path string) (Config, error) {
	cfg := Config{}
	cfg.EnsureDefaults()
	if path == "" {
		return cfg, fmt.Errorf("config path required")
	}
	file, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	cfg.EnsureDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// EnsureDefaults fills in unset fields with safe defaults.
func (cfg *Config) EnsureDefaults() {
	if cfg == nil {
		return
	}
	cfg.ListenAddress = strings.TrimSpace(cfg.ListenAddress)
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = ":8551"
	}
	cfg.DataDir = strings.TrimSpace(cfg.DataDir)
	if cfg.DataDir == "" {
		cfg.DataDir = "./data/stabilitypool"
	}
	cfg.Environment = strings.TrimSpace(cfg.Environment)
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.Issuance.LOANSupplyCap == "" {
		cfg.Issuance.LOANSupplyCap = "100000000000000000000000000"
	}
	cfg.Pricing.FURFIPriceFURUSD = strings.TrimSpace(cfg.Pricing.FURFIPriceFURUSD)
	if cfg.Pricing.FURFIPriceFURUSD == "" {
		cfg.Pricing.FURFIPriceFURUSD = "2000000000000000000000"
	}
	cfg.Auth.normalize()
	cfg.Telemetry.normalize()
	cfg.RateLimit.normalize()
}

// Validate reports whether the configuration is usable.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.ListenAddress) == "" {
		return fmt.Errorf("listen address required")
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		return fmt.Errorf("data_dir required")
	}
	if err := cfg.Auth.validate(); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if cfg.Issuance.DeploymentUnixSeconds < 0 {
		return fmt.Errorf("issuance: deployment_unix_seconds must be non-negative")
	}
	return nil
}

func (cfg *AuthConfig) normalize() {
	if cfg == nil {
		return
	}
	cfg.JWTSecret = strings.TrimSpace(cfg.JWTSecret)
	cfg.Issuer = strings.TrimSpace(cfg.Issuer)
	if cfg.Issuer == "" {
		cfg.Issuer = "stabilitypoold"
	}
	subs := make([]string, 0, len(cfg.AdminSubs))
	for _, sub := range cfg.AdminSubs {
		if trimmed := strings.TrimSpace(sub); trimmed != "" {
			subs = append(subs, trimmed)
		}
	}
	cfg.AdminSubs = subs
}

func (cfg AuthConfig) validate() error {
	if cfg.JWTSecret == "" {
		return fmt.Errorf("jwt_secret required to protect administrative methods")
	}
	if len(cfg.AdminSubs) == 0 {
		return fmt.Errorf("at least one admin_subjects entry is required")
	}
	return nil
}

func (cfg *TelemetryConfig) normalize() {
	if cfg == nil {
		return
	}
	cfg.Endpoint = strings.TrimSpace(cfg.Endpoint)
}

func (cfg *RateLimitConfig) normalize() {
	if cfg == nil {
		return
	}
	if cfg.MaxRequestsPerMin > 0 && cfg.EpochSeconds == 0 {
		cfg.EpochSeconds = 60
	}
}
