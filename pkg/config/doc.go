// Package config loads configuration structs from environment variables
// and .env files.
//
// Fields are bound with caarlos0/env struct tags:
//
//	type Config struct {
//		APIKey  string        `env:"EMERCURY_API_KEY,required"`
//		Timeout time.Duration `env:"MAILER_HTTP_TIMEOUT" envDefault:"30s"`
//	}
//
// Load reads the process environment plus a .env file in the working
// directory when one exists. Variables already set in the environment are
// never overridden by files. Tests pass WithEnvironment to avoid touching
// the process environment.
package config
