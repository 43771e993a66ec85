package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/gyeh/chargeflow/internal/resolve"
	"github.com/gyeh/chargeflow/internal/tebra"
)

// EnvPrefix is prepended to every environment variable, e.g. CHARGEFLOW_DSN.
const EnvPrefix = "CHARGEFLOW"

// Config holds all runtime configuration for a chargeflow run or server.
type Config struct {
	Endpoint       string `mapstructure:"ENDPOINT"`
	CustomerKey    string `mapstructure:"CUSTOMER_KEY"`
	User           string `mapstructure:"USER"`
	Password       string `mapstructure:"PASSWORD"`
	TimeoutSeconds int    `mapstructure:"TIMEOUT_SECONDS"`
	DSN            string `mapstructure:"DSN"`
	Port           string `mapstructure:"PORT"`
	OutputDir      string `mapstructure:"OUTPUT_DIR"`
	S3Bucket       string `mapstructure:"S3_BUCKET"`
	S3Region       string `mapstructure:"S3_REGION"`
	S3Prefix       string `mapstructure:"S3_PREFIX"`
	LogFormat      string `mapstructure:"LOG_FORMAT"` // "text" or "json"
	Progress       string `mapstructure:"PROGRESS"`   // auto, bar, log or none

	// Command-line only.
	FilePath    string `mapstructure:"-"`
	OutPath     string `mapstructure:"-"`
	SummaryPath string `mapstructure:"-"`
	ConfigPath  string `mapstructure:"-"`
	Record      bool   `mapstructure:"-"`

	Matching Matching `mapstructure:"-"`
}

// Matching is the provider matching table loaded from the YAML config file.
type Matching struct {
	ProviderTypes  []string `yaml:"provider_types"`
	StopTokens     []string `yaml:"credential_tokens"`
	FuzzyThreshold float64  `yaml:"fuzzy_threshold"`
}

var envKeys = []string{
	"ENDPOINT", "CUSTOMER_KEY", "USER", "PASSWORD", "TIMEOUT_SECONDS", "DSN",
	"PORT", "OUTPUT_DIR", "S3_BUCKET", "S3_REGION", "S3_PREFIX", "LOG_FORMAT",
	"PROGRESS",
}

// Load reads CHARGEFLOW_* environment variables over the defaults.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("ENDPOINT", tebra.DefaultEndpoint)
	v.SetDefault("TIMEOUT_SECONDS", int(tebra.DefaultTimeout/time.Second))
	v.SetDefault("PORT", "8080")
	v.SetDefault("OUTPUT_DIR", "output")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("PROGRESS", "auto")

	for _, k := range envKeys {
		_ = v.BindEnv(k)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// LoadFromFile reads a YAML matching table and merges it into Config.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var m Matching
	if err := yaml.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	if err := m.validate(); err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}
	c.Matching = m
	return nil
}

func (m *Matching) validate() error {
	if m.FuzzyThreshold < 0 || m.FuzzyThreshold > 1 {
		return fmt.Errorf("fuzzy_threshold %v must be between 0 and 1", m.FuzzyThreshold)
	}
	for i, pt := range m.ProviderTypes {
		pt = strings.ToLower(strings.TrimSpace(pt))
		if pt == "" {
			return fmt.Errorf("provider_types[%d] is blank", i)
		}
		m.ProviderTypes[i] = pt
	}
	for i, tok := range m.StopTokens {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if tok == "" || strings.ContainsAny(tok, " \t") {
			return fmt.Errorf("credential_tokens[%d] must be a single word", i)
		}
		m.StopTokens[i] = tok
	}
	return nil
}

// MatchConfig returns the resolver rules, with unset entries taking the
// defaults.
func (c *Config) MatchConfig() resolve.MatchConfig {
	mc := resolve.DefaultMatchConfig()
	if len(c.Matching.ProviderTypes) > 0 {
		mc.ProviderTypes = c.Matching.ProviderTypes
	}
	if len(c.Matching.StopTokens) > 0 {
		mc.StopTokens = c.Matching.StopTokens
	}
	if c.Matching.FuzzyThreshold > 0 {
		mc.FuzzyThreshold = c.Matching.FuzzyThreshold
	}
	return mc
}

// Credentials returns the SOAP credentials.
func (c *Config) Credentials() tebra.Credentials {
	return tebra.Credentials{CustomerKey: c.CustomerKey, User: c.User, Password: c.Password}
}

// Timeout returns the per-request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Validate checks the input file.
func (c *Config) Validate() error {
	if c.FilePath == "" {
		return fmt.Errorf("--file is required")
	}
	if _, err := os.Stat(c.FilePath); err != nil {
		return fmt.Errorf("file not accessible: %w", err)
	}
	return nil
}

// ValidateForRun checks the input file and the API credentials.
func (c *Config) ValidateForRun() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.CustomerKey == "" || c.User == "" || c.Password == "" {
		return fmt.Errorf("customer key, user and password are required (CHARGEFLOW_CUSTOMER_KEY, CHARGEFLOW_USER, CHARGEFLOW_PASSWORD)")
	}
	if c.Record && c.DSN == "" {
		return fmt.Errorf("--record needs --dsn or CHARGEFLOW_DSN")
	}
	return nil
}
