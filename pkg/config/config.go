// Package config resolves runtime defaults from the environment and
// optional .env files. Command line flags override these values.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables
const (
	EnvWorkers  = "POINTCLASS_WORKERS"
	EnvMethod   = "POINTCLASS_METHOD"
	EnvDSN      = "POINTCLASS_DSN"
	EnvTable    = "POINTCLASS_TABLE"
	EnvDecimate = "POINTCLASS_DECIMATE"
)

// DefaultDecimate keeps one point out of every hundred
const DefaultDecimate = 100

// Config holds the values shared by the commands
type Config struct {
	// Workers for exact containment, 0 means one per CPU
	Workers int
	// Method is "bbox" or "exact"
	Method string
	// DSN of the PostGIS database, empty when not used
	DSN string
	// Table is the path of a YAML attribute table, empty for the built-in one
	Table    string
	Decimate int
}

// Default returns the configuration used when nothing is set
func Default() Config {
	return Config{
		Workers:  0,
		Method:   "exact",
		Decimate: DefaultDecimate,
	}
}

// Load reads the given .env files (".env" when none is given) and resolves
// the configuration. Process environment wins over file values and missing
// files are ignored.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}

	fileEnv := map[string]string{}
	for _, f := range files {
		values, err := godotenv.Read(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Config{}, fmt.Errorf("failed to read %s: %w", f, err)
		}
		for k, v := range values {
			fileEnv[k] = v
		}
	}

	lookup := func(key string) string {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v
		}
		return fileEnv[key]
	}

	cfg := Default()
	if v := lookup(EnvMethod); v != "" {
		cfg.Method = v
	}
	cfg.DSN = lookup(EnvDSN)
	cfg.Table = lookup(EnvTable)

	var err error
	if cfg.Workers, err = intValue(lookup(EnvWorkers), cfg.Workers); err != nil {
		return Config{}, fmt.Errorf("invalid %s: %w", EnvWorkers, err)
	}
	if cfg.Decimate, err = intValue(lookup(EnvDecimate), cfg.Decimate); err != nil {
		return Config{}, fmt.Errorf("invalid %s: %w", EnvDecimate, err)
	}

	return cfg, nil
}

func intValue(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("must not be negative: %d", v)
	}
	return v, nil
}
