package config

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ConfigLoader handles loading configuration from files.
type ConfigLoader interface {
	Load(path string) (*Config, error)
	LoadWithDefaults(path string) (*Config, error)
}

// viperConfigLoader implements ConfigLoader using Viper.
type viperConfigLoader struct {
	validator ConfigValidator
}

// NewConfigLoader creates a new ConfigLoader instance.
func NewConfigLoader(validator ConfigValidator) ConfigLoader {
	return &viperConfigLoader{
		validator: validator,
	}
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Load loads configuration from the specified file path.
// Keys absent from the file keep their default value, and FRAUDGRAPH_*
// environment variables override both.
// Returns an error if the file doesn't exist or cannot be parsed.
func (l *viperConfigLoader) Load(path string) (*Config, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}

	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return l.decode(v)
}

// LoadWithDefaults loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration with environment overrides applied.
func (l *viperConfigLoader) LoadWithDefaults(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return l.Load(path)
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
	}

	v, err := newViper()
	if err != nil {
		return nil, err
	}
	return l.decode(v)
}

// newViper returns a viper instance seeded with the default configuration.
func newViper() (*viper.Viper, error) {
	base, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to encode default config: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(base)); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v, nil
}

func (l *viperConfigLoader) decode(v *viper.Viper) (*Config, error) {
	settings, ok := interpolateEnvVars(v.AllSettings()).(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected configuration layout")
	}

	var cfg Config
	if err := DecodeMap(settings, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := l.validator.Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// DecodeMap decodes a loosely typed map into out using mapstructure tags.
// Strings are converted to numbers, booleans and durations where the target field requires it,
// so query-string and environment values decode without pre-processing.
func DecodeMap(input map[string]interface{}, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		ErrorUnused:      false,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

// interpolateEnvVars recursively interpolates environment variables in the config map.
// Supports ${VAR_NAME} syntax.
func interpolateEnvVars(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		result := make(map[string]interface{}, len(v))
		for key, value := range v {
			result[key] = interpolateEnvVars(value)
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, value := range v {
			result[i] = interpolateEnvVars(value)
		}
		return result
	case string:
		return interpolateString(v)
	default:
		return v
	}
}

// interpolateString replaces ${VAR_NAME} with environment variable values.
// Unset variables are left as written.
func interpolateString(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		if envValue := os.Getenv(varName); envValue != "" {
			return envValue
		}
		return match
	})
}

// YAML renders cfg for display with the Neo4j password masked.
func (c *Config) YAML() ([]byte, error) {
	shown := *c
	if shown.Neo4j.Password != "" {
		shown.Neo4j.Password = "********"
	}
	return yaml.Marshal(&shown)
}
