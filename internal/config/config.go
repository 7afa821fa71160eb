// SPDX-License-Identifier: Apache-2.0

// Package config loads batch settings from a YAML file and CLINICALPDF_*
// environment variables and validates them against a CUE schema.
package config

import (
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/goccy/go-yaml"
)

//go:embed schema.cue
var schemaSource string

const envPrefix = "CLINICALPDF_"

// Config holds all batch settings.
type Config struct {
	OutputDir      string    `yaml:"output_dir" json:"output_dir"`
	Workers        int       `yaml:"workers" json:"workers"`
	MaxFileBytes   int64     `yaml:"max_file_bytes" json:"max_file_bytes"`
	IndexDB        string    `yaml:"index_db" json:"index_db"`
	XLSXReport     string    `yaml:"xlsx_report" json:"xlsx_report"`
	MetricsFile    string    `yaml:"metrics_file" json:"metrics_file"`
	WriteArtifacts bool      `yaml:"write_artifacts" json:"write_artifacts"`
	Log            LogConfig `yaml:"log" json:"log"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		OutputDir:      "clinicalpdf_output",
		Workers:        4,
		MaxFileBytes:   100 << 20,
		WriteArtifacts: true,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.OutputDir = getEnv("OUTPUT_DIR", c.OutputDir)
	c.Workers = getEnvAsInt("WORKERS", c.Workers)
	c.MaxFileBytes = getEnvAsInt64("MAX_FILE_BYTES", c.MaxFileBytes)
	c.IndexDB = getEnv("INDEX_DB", c.IndexDB)
	c.XLSXReport = getEnv("XLSX_REPORT", c.XLSXReport)
	c.MetricsFile = getEnv("METRICS_FILE", c.MetricsFile)
	c.WriteArtifacts = getEnvAsBool("WRITE_ARTIFACTS", c.WriteArtifacts)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
}

// Validate checks the settings against the embedded CUE schema.
func (c *Config) Validate() error {
	cctx := cuecontext.New()
	schema := cctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	v := schema.LookupPath(cue.ParsePath("#Config")).Unify(cctx.Encode(c))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Handler builds the slog handler described by the log settings.
func (l LogConfig) Handler(w io.Writer) slog.Handler {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(l.Format, "json") {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(envPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(envPrefix + key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(envPrefix + key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(envPrefix + key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
