// Copyright (c) 2026 Toolkit Authors
// Toolkit - course workspace manager
// This source code is licensed under the MIT license found in the LICENSE file.

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/brenoschmidt/toolkit/internal/workspace"
)

// Config is the project configuration loaded from tk/config.toml.
type Config struct {
	Language string `mapstructure:"language" toml:"language"`
	GitHub   struct {
		Core struct {
			User string `mapstructure:"user" toml:"user"`
			Repo string `mapstructure:"repo" toml:"repo"`
		} `mapstructure:"core" toml:"core"`
	} `mapstructure:"github" toml:"github"`
	Database struct {
		Type string `mapstructure:"type" toml:"type"`
		Dsn  string `mapstructure:"dsn" toml:"dsn"`
	} `mapstructure:"database" toml:"database"`
	Dropbox struct {
		Dir string `mapstructure:"dir" toml:"dir"`
	} `mapstructure:"dropbox" toml:"dropbox"`
	Backup struct {
		Dir  string `mapstructure:"dir" toml:"dir"`
		Keep int    `mapstructure:"keep" toml:"keep"`
	} `mapstructure:"backup" toml:"backup"`
	Remote struct {
		Host    string `mapstructure:"host" toml:"host"`
		Port    int    `mapstructure:"port" toml:"port"`
		User    string `mapstructure:"user" toml:"user"`
		Path    string `mapstructure:"path" toml:"path"`
		KeyFile string `mapstructure:"key_file" toml:"key_file"`
		HostKey string `mapstructure:"host_key" toml:"host_key"`
	} `mapstructure:"remote" toml:"remote"`
	Python struct {
		Interpreter string `mapstructure:"interpreter" toml:"interpreter"`
	} `mapstructure:"python" toml:"python"`
	Paths struct {
		Validate bool `mapstructure:"validate" toml:"validate"`
	} `mapstructure:"paths" toml:"paths"`
}

// Defaults returns the default configuration values keyed in viper notation.
func Defaults(p workspace.Paths) map[string]any {
	return map[string]any{
		"language":           "en",
		"github.core.user":   "brenoschmidt",
		"github.core.repo":   "tk_core",
		"database.type":      "sqlite",
		"database.dsn":       p.StateDB(),
		"dropbox.dir":        "",
		"backup.dir":         p.Backups(),
		"backup.keep":        10,
		"remote.host":        "",
		"remote.port":        22,
		"remote.user":        "",
		"remote.path":        "",
		"remote.key_file":    "",
		"remote.host_key":    "",
		"paths.validate":     true,
		"python.interpreter": "",
	}
}

// LoadConfig reads the project configuration with viper. Precedence, highest
// first: bound command flags, TK_* environment variables, the explicit
// --config file, the project's tk/config.toml, defaults.
func LoadConfig[T any](cmd *cobra.Command, p workspace.Paths, defaults map[string]any, explicitFile *string) (T, error) {
	var c T
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName(strings.TrimSuffix(workspace.ConfigName, ".toml"))
	v.SetConfigType("toml")

	// An explicit config file path has the highest precedence for
	// file-based configuration.
	if explicitFile != nil && *explicitFile != "" {
		v.SetConfigFile(*explicitFile)
	}

	v.AddConfigPath(p.Toolkit())
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine, the tool runs on defaults until setup
		// writes one. Other errors are fatal.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return c, err
		}
	}

	v.AutomaticEnv()
	v.AllowEmptyEnv(true)
	v.SetEnvPrefix("tk")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if cmd != nil {
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return c, err
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}

	return c, nil
}

// WriteConfigFile marshals the configuration to TOML and writes it to the
// project's tk/config.toml, creating the toolkit directory if needed.
func WriteConfigFile[T any](c *T, p workspace.Paths) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	dir := p.Toolkit()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("could not create toolkit directory %s: %w", dir, err)
	}

	return os.WriteFile(p.ConfigFile(), data, 0o644)
}

// DefaultConfig builds a Config populated with Defaults for the project,
// without touching the filesystem.
func DefaultConfig(p workspace.Paths) (Config, error) {
	v := viper.New()
	for key, value := range Defaults(p) {
		v.SetDefault(key, value)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	return c, nil
}
