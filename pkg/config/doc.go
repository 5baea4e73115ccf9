// Package config loads typed configuration structs from environment
// variables.
//
// Each configuration type is parsed exactly once per process and cached, so
// independently constructed services can call Load for the same type without
// re-reading the environment. A .env file in the working directory is loaded
// on first use when present; missing .env files are not an error.
//
// Struct fields declare their environment binding with `env` tags from
// github.com/caarlos0/env:
//
//	type AuthConfig struct {
//	    SigningKey string        `env:"AUTH_JWT_SIGNING_KEY,required"`
//	    AccessTTL  time.Duration `env:"AUTH_ACCESS_TOKEN_TTL" envDefault:"1h"`
//	}
//
//	var cfg AuthConfig
//	config.MustLoad(&cfg)
package config
