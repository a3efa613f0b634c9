package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variables read before koanf runs.
const (
	EnvPrefix  = "ATTNRISK_"
	EnvConfig  = "ATTNRISK_CONFIG"
	EnvDotfile = "ATTNRISK_ENV_FILE"
)

// Load builds a Config by layering sources. Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if ATTNRISK_CONFIG is set
//  3. env (prefix ATTNRISK_), including values from a .env file
//
// The .env file (ATTNRISK_ENV_FILE, default ".env") never overrides
// variables already set in the process environment.
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	dotfile := os.Getenv(EnvDotfile)
	if dotfile == "" {
		dotfile = ".env"
	}
	if err := godotenv.Load(dotfile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, dotfile, err)
	}

	k := koanf.New(".")

	if path := os.Getenv(EnvConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// ATTNRISK_QUEUE_SIZE -> queue_size. Underscores are kept to match the
	// flat koanf tags.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
