/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package config loads the optional per-user settings file.
// The file is YAML; it is validated against an embedded JSON schema before
// being merged over the defaults, and KV_* environment variables win over both.
// The viewer never writes this file.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON string

type WindowConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type ChartConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	// DefaultFormat is used when an export path has no extension.
	DefaultFormat string `yaml:"default_format"`
	// FallbackLabel names exports and titles when no file is loaded.
	FallbackLabel string `yaml:"fallback_label"`
	JPEGQuality   int    `yaml:"jpeg_quality"`
}

type LoaderConfig struct {
	Encoding string `yaml:"encoding"` // auto | utf-8 | windows-1252 | iso-8859-1
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Window        WindowConfig  `yaml:"window"`
	Chart         ChartConfig   `yaml:"chart"`
	Loader        LoaderConfig  `yaml:"loader"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the built-in configuration.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Window:        WindowConfig{Width: 800, Height: 600},
		Chart:         ChartConfig{Width: 1000, Height: 500, DefaultFormat: "png", FallbackLabel: "chart", JPEGQuality: 92},
		Loader:        LoaderConfig{Encoding: "auto"},
		Logging:       LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvConfigFile    = "KV_CONFIG"
	EnvChartWidth    = "KV_CHART_WIDTH"
	EnvChartHeight   = "KV_CHART_HEIGHT"
	EnvChartFormat   = "KV_CHART_FORMAT"
	EnvFallbackLabel = "KV_FALLBACK_LABEL"
	EnvEncoding      = "KV_ENCODING"
	EnvLogLevel      = "KV_LOG_LEVEL"
	EnvLogFormat     = "KV_LOG_FORMAT"
	EnvLogSource     = "KV_LOG_SOURCE"
	EnvLogFile       = "KV_LOG_FILE"
)

// ErrInvalid is returned (wrapped) when the config file fails schema validation.
var ErrInvalid = errors.New("invalid config file")

// Path returns the per-user config file location. KV_CONFIG overrides it.
func Path() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigFile)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "KistlerView")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "KistlerView")
	default:
		if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
			base = filepath.Join(x, "kistlerview")
		} else if h := os.Getenv("HOME"); h != "" {
			base = filepath.Join(h, ".config", "kistlerview")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the config from Path. A missing file is not an error.
func Load() (AppConfig, error) {
	path, err := Path()
	if err != nil {
		cfg := Defaults()
		applyEnvOverrides(&cfg)
		return cfg, err
	}
	return LoadFile(path)
}

// LoadFile reads path (if it exists), validates and merges it over the
// defaults and applies env overrides. On a read, parse or validation error
// the returned config still holds defaults plus env overrides.
func LoadFile(path string) (AppConfig, error) {
	cfg := Defaults()
	var ferr error
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		fileCfg, perr := parse(data)
		if perr != nil {
			ferr = fmt.Errorf("%s: %w", path, perr)
		} else {
			mergeInto(&cfg, &fileCfg)
		}
	case !errors.Is(err, os.ErrNotExist):
		ferr = fmt.Errorf("read config: %w", err)
	}
	applyEnvOverrides(&cfg)
	return cfg, ferr
}

func parse(data []byte) (AppConfig, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return AppConfig{}, fmt.Errorf("parse yaml: %w", err)
	}
	normalizeDoc(doc)
	if err := Validate(doc); err != nil {
		return AppConfig{}, err
	}
	clean, err := yaml.Marshal(doc)
	if err != nil {
		return AppConfig{}, fmt.Errorf("decode config: %w", err)
	}
	var c AppConfig
	if err := yaml.Unmarshal(clean, &c); err != nil {
		return AppConfig{}, fmt.Errorf("decode config: %w", err)
	}
	return c, nil
}

// keyword fields are matched case-insensitively
var keywordFields = map[string][]string{
	"chart":   {"default_format"},
	"loader":  {"encoding"},
	"logging": {"level", "format"},
}

// normalizeDoc lower-cases and trims the keyword fields of doc in place so
// "SVG" or "UTF-8" validate like their canonical spelling.
func normalizeDoc(doc map[string]any) {
	for section, keys := range keywordFields {
		m, ok := doc[section].(map[string]any)
		if !ok {
			continue
		}
		for _, k := range keys {
			if v, ok := m[k].(string); ok {
				m[k] = norm(v)
			}
		}
	}
}

// Validate checks a decoded YAML document against the embedded schema.
func Validate(doc map[string]any) error {
	if doc == nil {
		return nil
	}
	res, err := gojsonschema.Validate(gojsonschema.NewStringLoader(schemaJSON), gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

func mergeInto(dst, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.Window.Width > 0 {
		dst.Window.Width = src.Window.Width
	}
	if src.Window.Height > 0 {
		dst.Window.Height = src.Window.Height
	}
	if src.Chart.Width > 0 {
		dst.Chart.Width = src.Chart.Width
	}
	if src.Chart.Height > 0 {
		dst.Chart.Height = src.Chart.Height
	}
	if v := norm(src.Chart.DefaultFormat); v != "" {
		dst.Chart.DefaultFormat = v
	}
	if v := strings.TrimSpace(src.Chart.FallbackLabel); v != "" {
		dst.Chart.FallbackLabel = v
	}
	if src.Chart.JPEGQuality > 0 {
		dst.Chart.JPEGQuality = src.Chart.JPEGQuality
	}
	if v := norm(src.Loader.Encoding); v != "" {
		dst.Loader.Encoding = v
	}
	if v := norm(src.Logging.Level); v != "" {
		dst.Logging.Level = v
	}
	if v := norm(src.Logging.Format); v != "" {
		dst.Logging.Format = v
	}
	dst.Logging.Source = src.Logging.Source
	if v := strings.TrimSpace(src.Logging.File); v != "" {
		dst.Logging.File = v
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if n, ok := envInt(EnvChartWidth); ok && n > 0 {
		cfg.Chart.Width = n
	}
	if n, ok := envInt(EnvChartHeight); ok && n > 0 {
		cfg.Chart.Height = n
	}
	if v := norm(os.Getenv(EnvChartFormat)); v != "" {
		cfg.Chart.DefaultFormat = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvFallbackLabel)); v != "" {
		cfg.Chart.FallbackLabel = v
	}
	if v := norm(os.Getenv(EnvEncoding)); v != "" {
		cfg.Loader.Encoding = v
	}
	if v := norm(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = v
	}
	if v := norm(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = v
	}
	if v := norm(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = v == "1" || v == "true" || v == "on" || v == "yes"
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

func envInt(key string) (int, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	return n, err == nil
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
