// Package config assembles runtime settings from defaults, an optional YAML
// file and RIPPLE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/ripple/pkg/domain"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. RIPPLE_SERVER_ADDR.
const EnvPrefix = "RIPPLE_"

// ErrInvalidConfig is returned when the merged settings fail validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full set of runtime settings.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Animation AnimationConfig `mapstructure:"animation" yaml:"animation"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	Redis     RedisConfig     `mapstructure:"redis" yaml:"redis"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr        string `mapstructure:"addr" yaml:"addr" validate:"required"`
	MetricsPath string `mapstructure:"metrics_path" yaml:"metrics_path" validate:"omitempty,startswith=/"`
	// OriginPatterns lists the browser origins allowed to open a WebSocket.
	// From the environment it is a comma-separated list.
	OriginPatterns []string      `mapstructure:"origin_patterns" yaml:"origin_patterns" validate:"dive,required"`
	Heartbeat      time.Duration `mapstructure:"heartbeat" yaml:"heartbeat" validate:"gt=0"`
}

// AnimationConfig sets the traversal pacing.
type AnimationConfig struct {
	StepPeriod time.Duration `mapstructure:"step_period" yaml:"step_period" validate:"gt=0"`
	SubDelay   time.Duration `mapstructure:"sub_delay" yaml:"sub_delay" validate:"gt=0"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn error DEBUG INFO WARN ERROR"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=text json"`
}

// RedisConfig enables the Redis frame bus when Addr is set.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db" validate:"gte=0"`
	Channel  string `mapstructure:"channel" yaml:"channel" validate:"required"`
}

var validate = validator.New()

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:           ":8080",
			MetricsPath:    "/metrics",
			OriginPatterns: []string{"*"},
			Heartbeat:      15 * time.Second,
		},
		Animation: AnimationConfig{StepPeriod: 2000 * time.Millisecond, SubDelay: 1000 * time.Millisecond},
		Log:       LogConfig{Level: "info", Format: "text"},
		Redis:     RedisConfig{Channel: "ripple:frames"},
	}
}

// Load merges defaults, the YAML file at path (skipped when path is empty)
// and environment overrides, then validates the result.
func Load(path string) (*Config, error) {
	raw := defaultsMap()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		var file map[string]any
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		merge(raw, file)
	}

	applyEnv(raw, "", os.LookupEnv)

	cfg, err := decode(raw)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints and the timing rule
// 0 < SubDelay < StepPeriod.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Animation.SubDelay >= c.Animation.StepPeriod {
		return fmt.Errorf("%w: %w (step_period=%s, sub_delay=%s)",
			ErrInvalidConfig, domain.ErrInvalidTiming, c.Animation.StepPeriod, c.Animation.SubDelay)
	}
	return nil
}

// EnvKeys lists every supported environment variable, sorted.
func EnvKeys() []string {
	var keys []string
	var walk func(m map[string]any, prefix string)
	walk = func(m map[string]any, prefix string) {
		for k, v := range m {
			if sub, ok := v.(map[string]any); ok {
				walk(sub, prefix+k+"_")
				continue
			}
			keys = append(keys, EnvPrefix+strings.ToUpper(prefix+k))
		}
	}
	walk(defaultsMap(), "")
	sort.Strings(keys)
	return keys
}

func defaultsMap() map[string]any {
	d := Default()
	return map[string]any{
		"server": map[string]any{
			"addr":            d.Server.Addr,
			"metrics_path":    d.Server.MetricsPath,
			"origin_patterns": d.Server.OriginPatterns,
			"heartbeat":       d.Server.Heartbeat.String(),
		},
		"animation": map[string]any{
			"step_period": d.Animation.StepPeriod.String(),
			"sub_delay":   d.Animation.SubDelay.String(),
		},
		"log": map[string]any{
			"level":  d.Log.Level,
			"format": d.Log.Format,
		},
		"redis": map[string]any{
			"addr":     d.Redis.Addr,
			"password": d.Redis.Password,
			"db":       d.Redis.DB,
			"channel":  d.Redis.Channel,
		},
	}
}

// merge copies src into dst, descending into nested maps.
func merge(dst, src map[string]any) {
	for k, v := range src {
		if sub, ok := v.(map[string]any); ok {
			if existing, ok := dst[k].(map[string]any); ok {
				merge(existing, sub)
				continue
			}
		}
		dst[k] = v
	}
}

// applyEnv overrides leaf keys of m from the environment. Only keys that
// already exist are considered, so the variable set is closed.
func applyEnv(m map[string]any, prefix string, lookup func(string) (string, bool)) {
	for k, v := range m {
		if sub, ok := v.(map[string]any); ok {
			applyEnv(sub, prefix+k+"_", lookup)
			continue
		}
		if val, ok := lookup(EnvPrefix + strings.ToUpper(prefix+k)); ok {
			m[k] = val
		}
	}
}

func decode(raw map[string]any) (*Config, error) {
	var cfg Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &cfg,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return &cfg, nil
}
