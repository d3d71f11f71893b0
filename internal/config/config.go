package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// ErrMissingConfiguration reports a required directory or setting that is not available.
var ErrMissingConfiguration = errors.New("missing configuration")

// ErrInvalidConfiguration reports a setting whose value cannot be used.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Config holds directory layout and behaviour settings for all commands.
//
// Values are resolved in order: built-in defaults, the optional YAML file,
// then environment variables (including those loaded from .env).
type Config struct {
	SourceDir       string   `yaml:"source_dir"`
	TranslationDir  string   `yaml:"translation_dir"`
	ObsoleteDir     string   `yaml:"obsolete_dir"`
	BaselineDir     string   `yaml:"baseline_dir"`
	PatchDir        string   `yaml:"patch_dir"`
	MasterFile      string   `yaml:"master_file"`
	MasterDir       string   `yaml:"master_dir"`
	UpstreamRoot    string   `yaml:"upstream_root"`
	TranslationRoot string   `yaml:"translation_root"`
	LuaFile         string   `yaml:"lua_file"`
	DedupDir        string   `yaml:"dedup_dir"`
	PODir           string   `yaml:"po_dir"`
	POLanguage      string   `yaml:"po_language"`
	Destination     string   `yaml:"dst"`
	TablePattern    string   `yaml:"table_pattern"`
	EmptyKeyPolicy  string   `yaml:"empty_key_policy"`
	MetadataRows    int      `yaml:"metadata_rows"`
	Placeholders    []string `yaml:"placeholders"`
	LogLevel        string   `yaml:"log_level"`
	LogFormat       string   `yaml:"log_format"`
}

// Default returns the configuration matching the project's standard layout.
func Default() *Config {
	return &Config{
		SourceDir:       "_upstream/en/text/db",
		TranslationDir:  "translation/text/db",
		ObsoleteDir:     "obsolete",
		BaselineDir:     "_upstream/ru/text/db",
		PatchDir:        "_upstream/uk/text/db",
		MasterFile:      "_upstream/ru/text/localisation.loc.tsv",
		MasterDir:       "_upstream/ru/text/db",
		UpstreamRoot:    "_upstream",
		TranslationRoot: "translation",
		LuaFile:         "translation/campaigns/main_attila/common/mk1212_localisation_lists.lua",
		DedupDir:        "_temp",
		PODir:           "po",
		POLanguage:      "uk",
		TablePattern:    "*.loc.tsv",
		EmptyKeyPolicy:  "drop",
		MetadataRows:    2,
		Placeholders:    []string{"PLACEHOLDER"},
		LogLevel:        "info",
		LogFormat:       "console",
	}
}

// Load reads .env, the optional YAML file named by LOCSYNC_CONFIG
// (default locsync.yaml) and environment overrides.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	cfg := Default()
	if err := cfg.readYAML(getEnv("LOCSYNC_CONFIG", "locsync.yaml")); err != nil {
		return nil, err
	}
	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) validate() error {
	if cfg.MetadataRows < 0 {
		return fmt.Errorf("%w: metadata rows must not be negative, got %d (set METADATA_ROWS or metadata_rows to 0 or more)",
			ErrInvalidConfiguration, cfg.MetadataRows)
	}
	return nil
}

func (cfg *Config) readYAML(path string) error {
	if path == "" {
		return nil
	}

	raw, err := os.ReadFile(path) // #nosec G304 -- only loading a config file
	if errors.Is(err, os.ErrNotExist) {
		log.Debug().Str("path", path).Msg("No YAML configuration file found, skipping")
		return nil
	}
	if err != nil {
		return fmt.Errorf("read configuration file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse YAML from %s: %w", path, err)
	}

	log.Debug().Str("path", path).Msg("Loaded configuration file")
	return nil
}

func (cfg *Config) applyEnv() {
	cfg.SourceDir = getEnv("SOURCE_DIR", cfg.SourceDir)
	cfg.TranslationDir = getEnv("TRANSLATION_DIR", cfg.TranslationDir)
	cfg.ObsoleteDir = getEnv("OBSOLETE_DIR", cfg.ObsoleteDir)
	cfg.BaselineDir = getEnv("BASELINE_DIR", cfg.BaselineDir)
	cfg.PatchDir = getEnv("PATCH_DIR", cfg.PatchDir)
	cfg.MasterFile = getEnv("MASTER_FILE", cfg.MasterFile)
	cfg.MasterDir = getEnv("MASTER_DIR", cfg.MasterDir)
	cfg.UpstreamRoot = getEnv("UPSTREAM_ROOT", cfg.UpstreamRoot)
	cfg.TranslationRoot = getEnv("TRANSLATION_ROOT", cfg.TranslationRoot)
	cfg.LuaFile = getEnv("LUA_FILE", cfg.LuaFile)
	cfg.DedupDir = getEnv("DEDUP_DIR", cfg.DedupDir)
	cfg.PODir = getEnv("PO_DIR", cfg.PODir)
	cfg.POLanguage = getEnv("PO_LANGUAGE", cfg.POLanguage)
	cfg.Destination = getEnv("DST", cfg.Destination)
	cfg.TablePattern = getEnv("TABLE_PATTERN", cfg.TablePattern)
	cfg.EmptyKeyPolicy = getEnv("EMPTY_KEY_POLICY", cfg.EmptyKeyPolicy)
	cfg.MetadataRows = getEnvInt("METADATA_ROWS", cfg.MetadataRows)
	cfg.Placeholders = getEnvList("PLACEHOLDERS", cfg.Placeholders)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)
}

// Require checks that every named setting is non-empty and, when it names a
// directory, that the directory exists. The first failure is returned wrapped
// in ErrMissingConfiguration together with the environment variable to set.
func (cfg *Config) Require(settings ...Setting) error {
	for _, s := range settings {
		value := s.value(cfg)
		if value == "" {
			return fmt.Errorf("%w: %s is not set (set %s in .env or the environment)",
				ErrMissingConfiguration, s.Name, s.Env)
		}
		if !s.Dir {
			continue
		}
		info, err := os.Stat(value)
		if err != nil || !info.IsDir() {
			return fmt.Errorf("%w: %s directory %q does not exist (set %s or create it)",
				ErrMissingConfiguration, s.Name, value, s.Env)
		}
	}
	return nil
}

// Setting names a Config field for Require.
type Setting struct {
	Name  string
	Env   string
	Dir   bool
	value func(*Config) string
}

var (
	SettingSourceDir       = Setting{"source", "SOURCE_DIR", true, func(c *Config) string { return c.SourceDir }}
	SettingTranslationDir  = Setting{"translation", "TRANSLATION_DIR", true, func(c *Config) string { return c.TranslationDir }}
	SettingBaselineDir     = Setting{"baseline", "BASELINE_DIR", true, func(c *Config) string { return c.BaselineDir }}
	SettingPatchDir        = Setting{"patch", "PATCH_DIR", true, func(c *Config) string { return c.PatchDir }}
	SettingUpstreamRoot    = Setting{"upstream root", "UPSTREAM_ROOT", true, func(c *Config) string { return c.UpstreamRoot }}
	SettingTranslationRoot = Setting{"translation root", "TRANSLATION_ROOT", true, func(c *Config) string { return c.TranslationRoot }}
	SettingDestination     = Setting{"destination", "DST", true, func(c *Config) string { return c.Destination }}
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("Invalid integer setting, using default")
		return fallback
	}
	return n
}

// getEnvList splits a comma-separated variable. An explicitly empty list is
// written as a single comma.
func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
