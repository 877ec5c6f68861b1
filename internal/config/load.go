package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/util"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "CRANEWATCH"

// LoadOptions controls where Load reads configuration from.
type LoadOptions struct {
	// ConfigFile is an explicit YAML file. When empty, cranewatch.yaml is
	// searched in the working directory and /etc/cranewatch, and a missing
	// file is not an error.
	ConfigFile string

	// EnvFiles are dotenv files loaded into the process environment before
	// reading. Missing files are skipped. Defaults to [".env"]. Variables
	// already set in the environment win.
	EnvFiles []string

	// Flags and FlagKeys bind command-line flags (by name) to config keys.
	// A flag only overrides other sources when it was set explicitly.
	Flags    *pflag.FlagSet
	FlagKeys map[string]string
}

// Load reads, merges and validates configuration.
func Load(opts LoadOptions) (*Config, error) {
	envFiles := opts.EnvFiles
	if envFiles == nil {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error loading env file %s: %w", f, err)
		}
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		v.SetConfigName("cranewatch")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/cranewatch")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	if opts.Flags != nil {
		for name, key := range opts.FlagKeys {
			f := opts.Flags.Lookup(name)
			if f == nil {
				return nil, fmt.Errorf("flag %q bound to %s is not defined", name, key)
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %q: %w", name, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.normalize()

	if errs := cfg.Validate(); len(errs) > 0 {
		msgs := make([]string, 0, len(errs))
		for _, err := range errs {
			msgs = append(msgs, err.Error())
		}
		return nil, fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.Bus.Kind = strings.ToLower(strings.TrimSpace(c.Bus.Kind))
	c.Operator.Display = strings.ToLower(strings.TrimSpace(c.Operator.Display))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Tracing.Protocol = strings.ToLower(strings.TrimSpace(c.Tracing.Protocol))
	c.Server.TLS.Mode = strings.ToLower(strings.TrimSpace(c.Server.TLS.Mode))
	if c.Server.TLS.Mode == "" {
		c.Server.TLS.Mode = "off"
	}
	c.Server.TLS.Hosts = util.CleanList(c.Server.TLS.Hosts)
	c.Broadcast.AllowedOrigins = util.CleanList(c.Broadcast.AllowedOrigins)
	if c.Remediations == nil {
		c.Remediations = map[string]string{}
	}
}
