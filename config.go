package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application. Values are read by
// viper from defaults, then a .config.json file if one is present, then
// TWTR_* environment variables.
type Config struct {
	Port     int            `mapstructure:"port"`
	Env      string         `mapstructure:"env"`
	Pepper   string         `mapstructure:"pepper"`
	HMACKey  string         `mapstructure:"hmac_key"`
	CSRFKey  string         `mapstructure:"csrf_key"`
	Server   ServerConfig   `mapstructure:"server"`
	Database PostgresConfig `mapstructure:"database"`
	CORS     CORSConfig     `mapstructure:"cors"`
}

// ServerConfig holds timeouts for the HTTP server.
type ServerConfig struct {
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// CORSConfig holds the origins allowed to call the API from a browser.
// An empty list disables the CORS middleware.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// PostgresConfig holds the database connection parameters.
type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

// ConnectionInfo builds the postgres DSN.
func (pc PostgresConfig) ConnectionInfo() string {
	if pc.Password == "" {
		return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=%s",
			pc.Host, pc.Port, pc.User, pc.Name, pc.SSLMode)
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		pc.Host, pc.Port, pc.User, pc.Password, pc.Name, pc.SSLMode)
}

// IsProd reports whether we're running in production.
func (c Config) IsProd() bool {
	return c.Env == "production"
}

// LoadConfig reads the configuration. In production a .config.json file is
// required and the app panics without one; in development the defaults are
// a working local setup.
func LoadConfig(prodRequired bool) Config {
	v := viper.New()

	v.SetDefault("port", 1111)
	v.SetDefault("env", "dev")
	v.SetDefault("pepper", "secret-random-string")
	v.SetDefault("hmac_key", "secret-hmac-key")
	v.SetDefault("csrf_key", "")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "twtr")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("cors.allowed_origins", []string{})

	v.SetConfigFile(".config.json")
	v.SetEnvPrefix("TWTR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if prodRequired {
			panic(fmt.Errorf("err reading .config.json, required in production: %w", err))
		}
	} else {
		fmt.Println("Successfully loaded .config.json")
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		panic(fmt.Errorf("err unmarshalling config: %w", err))
	}
	return c
}
