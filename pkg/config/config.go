// Package config loads typed configuration structs from environment
// variables.
//
// Fields are described with caarlos0/env struct tags. A .env file in the
// working directory (or the files passed with WithEnvFiles) is applied once
// per process before the first parse; variables already present in the
// environment win over file values.
//
//	type TokenConfig struct {
//	    Secret string        `env:"AUTH_TOKEN_SECRET,required"`
//	    TTL    time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"24h"`
//	}
//
//	cfg, err := config.Load[TokenConfig]()
package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	ErrParsingConfig = errors.New("failed to parse environment variables into config")
	ErrEnvFile       = errors.New("failed to load env file")
)

// Option configures a single Load call.
type Option func(*options)

type options struct {
	prefix   string
	envFiles []string
	environ  map[string]string
}

// WithPrefix prepends prefix to every variable name of the struct.
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// WithEnvFiles loads the given files instead of the default .env. Missing
// files are reported as ErrEnvFile.
func WithEnvFiles(files ...string) Option {
	return func(o *options) { o.envFiles = files }
}

// WithEnvironment parses from the given map instead of the process
// environment. Env files are not read in this mode.
func WithEnvironment(environ map[string]string) Option {
	return func(o *options) { o.environ = environ }
}

var dotenvOnce sync.Once

// Load parses the environment into a new T.
func Load[T any](opts ...Option) (T, error) {
	var zero T
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	if o.environ == nil {
		if len(o.envFiles) > 0 {
			if err := godotenv.Load(o.envFiles...); err != nil {
				return zero, errors.Join(ErrEnvFile, err)
			}
		} else {
			dotenvOnce.Do(func() {
				// the default .env is optional
				_ = godotenv.Load()
			})
		}
	}

	cfg, err := env.ParseAsWithOptions[T](env.Options{
		Prefix:      o.prefix,
		Environment: o.environ,
	})
	if err != nil {
		return zero, errors.Join(ErrParsingConfig, err)
	}
	return cfg, nil
}

// MustLoad works like Load but panics on failure. Intended for process
// bootstrap where a broken configuration must prevent startup.
func MustLoad[T any](opts ...Option) T {
	cfg, err := Load[T](opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
	return cfg
}
