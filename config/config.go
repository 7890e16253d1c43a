// Package config loads memoctl settings from a file, the environment and defaults.
package config

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/on-the-ground/memoized_go/memoized"
	"github.com/on-the-ground/memoized_go/signature"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	LogLevel  string
	Metrics   bool
	MeterName string
	// Signature is the parameter list described when memoctl describe gets no arguments,
	// in "kind:name[=default]" form.
	Signature []string
}

func Default() *Config {
	return &Config{
		LogLevel:  "info",
		Metrics:   false,
		MeterName: memoized.MeterName,
		Signature: []string{"req:a", "opt:b=10"},
	}
}

func (c *Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, LogLevel, err)
	}
	if c.Metrics && c.MeterName == "" {
		return fmt.Errorf("%w: %s is required when metrics are enabled", ErrInvalidConfig, MetricsMeterName)
	}
	params, err := signature.ParseParams(c.Signature)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, DescribeSignature, err)
	}
	if _, err := signature.Classify(params...); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, DescribeSignature, err)
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	d := Default()
	v.SetDefault(LogLevel, d.LogLevel)
	v.SetDefault(MetricsEnabled, d.Metrics)
	v.SetDefault(MetricsMeterName, d.MeterName)
	v.SetDefault(DescribeSignature, d.Signature)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(delimiter, "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path, if set, and applies environment overrides and defaults.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType(strings.TrimPrefix(filepath.Ext(path), "."))
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return fromViper(v)
}

// LoadFromReader reads configuration of the given type ("yaml", "json", "toml") from r.
func LoadFromReader(r io.Reader, configType string) (*Config, error) {
	v := newViper()
	v.SetConfigType(configType)
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	c := &Config{
		LogLevel:  v.GetString(LogLevel),
		Metrics:   v.GetBool(MetricsEnabled),
		MeterName: v.GetString(MetricsMeterName),
		Signature: v.GetStringSlice(DescribeSignature),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
