package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultEnvFile is read when present. A missing file is not an error.
const DefaultEnvFile = ".env"

type options struct {
	environ  map[string]string
	envFiles []string
}

// Option configures Load.
type Option func(*options)

// WithEnvironment replaces the process environment with m.
// The default .env file is not read in this mode; files passed with
// WithEnvFiles still are.
func WithEnvironment(m map[string]string) Option {
	return func(o *options) {
		o.environ = maps.Clone(m)
		if o.environ == nil {
			o.environ = map[string]string{}
		}
	}
}

// WithEnvFiles reads additional env files. Every file must exist.
// Earlier files win over later ones, and real environment variables win
// over all files.
func WithEnvFiles(paths ...string) Option {
	return func(o *options) {
		o.envFiles = append(o.envFiles, paths...)
	}
}

// Load parses environment variables into v based on its env struct tags.
//
// Example:
//
//	type SenderConfig struct {
//		APIKey string `env:"EMERCURY_API_KEY,required"`
//		Host   string `env:"EMERCURY_HOST" envDefault:"api.smtp.emercury.net"`
//	}
//
//	var cfg SenderConfig
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
func Load[T any](v *T, opts ...Option) error {
	if v == nil {
		return ErrNilPointer
	}

	o := &options{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	environ := o.environ
	if environ == nil {
		environ = toMap(os.Environ())
		if err := merge(environ, DefaultEnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return errors.Join(ErrLoadingEnvFile, err)
		}
	}

	for _, path := range o.envFiles {
		if err := merge(environ, path); err != nil {
			return errors.Join(ErrLoadingEnvFile, err)
		}
	}

	if err := env.ParseWithOptions(v, env.Options{Environment: environ}); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// MustLoad works like Load but panics if configuration loading fails.
func MustLoad[T any](v *T, opts ...Option) {
	if err := Load(v, opts...); err != nil {
		panic(fmt.Sprintf("Failed to load required configuration: %v", err))
	}
}

// merge adds the variables of an env file that are not already set.
func merge(environ map[string]string, path string) error {
	vars, err := godotenv.Read(path)
	if err != nil {
		return err
	}
	for k, val := range vars {
		if _, ok := environ[k]; !ok {
			environ[k] = val
		}
	}
	return nil
}

func toMap(kvs []string) map[string]string {
	m := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		if k, val, ok := strings.Cut(kv, "="); ok {
			m[k] = val
		}
	}
	return m
}
