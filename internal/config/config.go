// Package config resolves the connection descriptor and CLI settings from
// flags, the environment, dotenv files and the .dbsimple config file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dbsimple/dbsimple-go/database"
	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

var AppFs = afero.NewOsFs()

const (
	// EnvPrefix prefixes every environment variable read by Load.
	EnvPrefix = "DBSIMPLE"
	// DefaultScheme is used when neither a URL nor a scheme is configured.
	DefaultScheme = "mysql"

	configName = ".dbsimple"
	configType = "yaml"
)

// Config holds the application configuration
type Config struct {
	// Descriptor is the connection the CLI opens.
	Descriptor database.Descriptor
	// Pool tunes the shared handle of persistent connections.
	Pool database.PoolConfig
	// Debug enables debug logging.
	Debug bool
	// File is the config file that was read, if any.
	File string
}

// New returns a viper instance reading the DBSIMPLE_* environment through
// AppFs. Callers bind their flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetFs(AppFs)
	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load loads configuration from various sources.
//
// Precedence, highest first: bound flags, environment, .env.local, .env,
// config file. configFile names an explicit config file; when empty the
// file is searched in ".", $HOME and $HOME/.config/dbsimple and may be
// absent.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if err := loadDotEnv(".env.local", ".env"); err != nil {
		return nil, err
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return nil, fmt.Errorf("failed to find home directory: %w", err)
		}
		v.AddConfigPath(".")
		v.AddConfigPath(home)
		v.AddConfigPath(filepath.Join(home, ".config", "dbsimple"))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	desc, err := descriptor(v)
	if err != nil {
		return nil, err
	}

	return &Config{
		Descriptor: desc,
		Pool:       poolConfig(v),
		Debug:      v.GetBool("debug"),
		File:       v.ConfigFileUsed(),
	}, nil
}

// descriptor starts from the url key (or DATABASE_URL) and lets the
// individual keys override its parts.
func descriptor(v *viper.Viper) (database.Descriptor, error) {
	var desc database.Descriptor

	raw := v.GetString("url")
	if raw == "" {
		raw = os.Getenv("DATABASE_URL")
	}
	if raw != "" {
		d, err := database.ParseURL(raw)
		if err != nil {
			return database.Descriptor{}, fmt.Errorf("failed to parse database url: %w", err)
		}
		desc = d
	}

	setString := func(key string, dst *string) {
		if s := v.GetString(key); s != "" {
			*dst = s
		}
	}
	setString("scheme", &desc.Scheme)
	setString("host", &desc.Host)
	setString("socket", &desc.Socket)
	setString("database", &desc.Database)
	setString("user", &desc.User)
	setString("password", &desc.Password)
	setString("encoding", &desc.Encoding)

	if p := v.GetInt("port"); p != 0 {
		desc.Port = p
	}
	if v.IsSet("persist") {
		desc.Persist = v.GetBool("persist")
	}
	if s := v.GetString("timeout"); s != "" {
		d, err := database.ParseTimeout(s)
		if err != nil {
			return database.Descriptor{}, err
		}
		desc.Timeout = d
	}
	if opts := v.GetStringMapString("options"); len(opts) > 0 {
		if desc.Options == nil {
			desc.Options = make(map[string]string, len(opts))
		}
		for k, val := range opts {
			desc.Options[k] = val
		}
	}

	if desc.Scheme == "" {
		desc.Scheme = DefaultScheme
	}
	return desc, nil
}

// poolConfig reads the pool.* keys over the adapter defaults.
func poolConfig(v *viper.Viper) database.PoolConfig {
	cfg := database.DefaultPoolConfig()
	if v.IsSet("pool.max_idle_conns") {
		cfg.MaxIdleConns = v.GetInt("pool.max_idle_conns")
	}
	if v.IsSet("pool.conn_max_lifetime") {
		cfg.ConnMaxLifetime = v.GetDuration("pool.conn_max_lifetime")
	}
	if v.IsSet("pool.conn_max_idle_time") {
		cfg.ConnMaxIdleTime = v.GetDuration("pool.conn_max_idle_time")
	}
	return cfg
}

// loadDotEnv exports the variables of the given dotenv files that are not
// already set. Earlier files win over later ones.
func loadDotEnv(names ...string) error {
	for _, name := range names {
		data, err := afero.ReadFile(AppFs, name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}

		vars, err := godotenv.Parse(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", name, err)
		}
		for k, val := range vars {
			if _, ok := os.LookupEnv(k); !ok {
				os.Setenv(k, val)
			}
		}
	}
	return nil
}

// Save writes the connection settings to $HOME/.config/dbsimple/.dbsimple.yaml.
// The password is never written.
func Save(desc database.Descriptor) (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("failed to find home directory: %w", err)
	}

	v := viper.New()
	v.SetFs(AppFs)
	v.Set("scheme", desc.Scheme)
	if desc.Host != "" {
		v.Set("host", desc.Host)
	}
	if desc.Port != 0 {
		v.Set("port", desc.Port)
	}
	if desc.Socket != "" {
		v.Set("socket", desc.Socket)
	}
	if desc.Database != "" {
		v.Set("database", desc.Database)
	}
	if desc.User != "" {
		v.Set("user", desc.User)
	}
	if desc.Encoding != "" {
		v.Set("encoding", desc.Encoding)
	}
	if desc.Persist {
		v.Set("persist", true)
	}
	if desc.Timeout > 0 {
		v.Set("timeout", desc.Timeout.String())
	}
	if len(desc.Options) > 0 {
		v.Set("options", desc.Options)
	}

	configPath := filepath.Join(home, ".config", "dbsimple")
	if err := AppFs.MkdirAll(configPath, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := filepath.Join(configPath, configName+"."+configType)
	if err := v.WriteConfigAs(configFile); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return configFile, nil
}
