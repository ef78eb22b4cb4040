// Package config loads the application configuration from config.yaml and
// the environment.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds the configuration for the application.
type Config struct {
	DB struct {
		// Driver selects the store backend: "postgres" or "memory".
		Driver   string `mapstructure:"driver"`
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
		SSLMode  string `mapstructure:"sslmode"`
	} `mapstructure:"db"`
	Templates struct {
		Dir string `mapstructure:"dir"`
	} `mapstructure:"templates"`
	Taxonomy struct {
		// Path to an external category mapping; empty uses the built-in table.
		Path string `mapstructure:"path"`
	} `mapstructure:"taxonomy"`
	Server struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"server"`
	API struct {
		// BaseURL is where the MCP adapter reaches the query API.
		BaseURL   string `mapstructure:"base_url"`
		TimeoutMS int    `mapstructure:"timeout_ms"`
	} `mapstructure:"api"`
	Auth struct {
		// Issuer enables bearer-token verification on /api when set.
		Issuer string `mapstructure:"issuer"`
	} `mapstructure:"auth"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

// LoadConfig loads the configuration from a file and the environment.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("db.driver", "postgres")
	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", 5432)
	viper.SetDefault("db.sslmode", "disable")
	viper.SetDefault("templates.dir", "./templates")
	viper.SetDefault("server.addr", ":8000")
	viper.SetDefault("api.base_url", "http://localhost:8000/api")
	viper.SetDefault("api.timeout_ms", 5000)
	viper.SetDefault("log.level", "info")

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env cover it.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// normalize the issuer url (strip trailing slash if any)
	config.Auth.Issuer = strings.TrimRight(strings.TrimSpace(config.Auth.Issuer), "/")
	return &config, nil
}
