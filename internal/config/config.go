// Package config loads ucsname settings from viper and resolves configured paths.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/ucsname/internal/common"
	"github.com/Veraticus/ucsname/internal/pos"
	"github.com/Veraticus/ucsname/internal/terms"
	"github.com/Veraticus/ucsname/internal/translate"
)

// Config is the complete runtime configuration of ucsname.
type Config struct {
	Logging   LoggingConfig    `mapstructure:"logging"`
	Database  DatabaseConfig   `mapstructure:"database"`
	Data      DataConfig       `mapstructure:"data"`
	Analyzer  AnalyzerConfig   `mapstructure:"analyzer"`
	Matcher   MatcherConfig    `mapstructure:"matcher"`
	Translate translate.Config `mapstructure:"translate"`
	AI        AIConfig         `mapstructure:"ai"`
	Classify  ClassifyConfig   `mapstructure:"classify"`
}

// LoggingConfig controls the global slog handler.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// DataConfig locates the term and rule datasets.
type DataConfig struct {
	Columns    terms.Columns `mapstructure:"columns"`
	TermsFile  string        `mapstructure:"terms_file"`
	TermsSheet string        `mapstructure:"terms_sheet"`
	Delimiter  string        `mapstructure:"delimiter"`
	RulesFile  string        `mapstructure:"rules_file"`
}

// AnalyzerConfig selects the part-of-speech analyzer. Order lists analyzer
// names tried at startup; the first that initializes wins.
type AnalyzerConfig struct {
	Remote  pos.RemoteConfig `mapstructure:"remote"`
	Order   []string         `mapstructure:"order"`
	Weights pos.Weights      `mapstructure:"weights"`
}

// MatcherConfig tunes the term matcher.
type MatcherConfig struct {
	KeywordPatterns []string `mapstructure:"keyword_patterns"`
	CacheSize       int      `mapstructure:"cache_size"`
}

// AIConfig configures the optional AI classifier. It reuses the chat
// provider settings of the translator.
type AIConfig struct {
	translate.Config `mapstructure:",squash"`
	Enabled          bool `mapstructure:"enabled"`
}

// ClassifyConfig holds batch classification defaults.
type ClassifyConfig struct {
	SourceLang string `mapstructure:"source_lang"`
	TargetLang string `mapstructure:"target_lang"`
	Workers    int    `mapstructure:"workers"`
	Record     bool   `mapstructure:"record"`
}

// Analyzer names accepted in analyzer.order.
const (
	AnalyzerRemote    = "remote"
	AnalyzerSegmenter = "segmenter"
	AnalyzerLexicon   = "lexicon"
)

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 3)

	v.SetDefault("database.path", "$HOME/.local/share/ucsname/ucsname.db")

	cols := terms.DefaultColumns()
	v.SetDefault("data.terms_file", "$HOME/.config/ucsname/terms.csv")
	v.SetDefault("data.delimiter", ",")
	v.SetDefault("data.columns.source", cols.Source)
	v.SetDefault("data.columns.target", cols.Target)
	v.SetDefault("data.columns.category_id", cols.CategoryID)
	v.SetDefault("data.columns.category_name", cols.CategoryName)
	v.SetDefault("data.columns.category_name_localized", cols.CategoryNameLocalized)
	v.SetDefault("data.columns.category_short", cols.CategoryShort)
	v.SetDefault("data.columns.synonyms", cols.Synonyms)

	weights := pos.DefaultWeights()
	v.SetDefault("analyzer.order", []string{AnalyzerSegmenter, AnalyzerLexicon})
	v.SetDefault("analyzer.weights.noun", weights.Noun)
	v.SetDefault("analyzer.weights.adjective", weights.Adjective)
	v.SetDefault("analyzer.weights.verb", weights.Verb)
	v.SetDefault("analyzer.weights.adverb", weights.Adverb)
	v.SetDefault("analyzer.weights.other", weights.Other)
	v.SetDefault("analyzer.remote.timeout", 3*time.Second)

	v.SetDefault("matcher.cache_size", 1024)

	v.SetDefault("translate.provider", translate.ProviderNone)
	v.SetDefault("translate.timeout", 30*time.Second)
	v.SetDefault("translate.rate_limit", 60)
	v.SetDefault("translate.cache_size", 512)
	v.SetDefault("translate.cache_ttl", 24*time.Hour)

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.provider", translate.ProviderOpenAI)
	v.SetDefault("ai.timeout", 30*time.Second)
	v.SetDefault("ai.cache_size", 512)
	v.SetDefault("ai.cache_ttl", 24*time.Hour)

	v.SetDefault("classify.workers", 4)
	v.SetDefault("classify.source_lang", "auto")
	v.SetDefault("classify.target_lang", "en")
	v.SetDefault("classify.record", true)
}

// Load decodes the configuration held by v. Precedence follows viper:
// flags, UCSNAME_ environment variables, the config file, then defaults.
// Provider API keys fall back to the conventional environment variables
// when neither the file nor UCSNAME_ variables set them.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	cfg.Database.Path = ExpandPath(cfg.Database.Path)
	cfg.Logging.File = ExpandPath(cfg.Logging.File)
	cfg.Data.TermsFile = ExpandPath(cfg.Data.TermsFile)
	cfg.Data.RulesFile = ExpandPath(cfg.Data.RulesFile)
	cfg.Translate.CredentialsFile = ExpandPath(cfg.Translate.CredentialsFile)

	if cfg.Translate.APIKey == "" {
		cfg.Translate.APIKey = providerKeyFromEnv(cfg.Translate.Provider)
	}
	if cfg.AI.APIKey == "" {
		cfg.AI.APIKey = providerKeyFromEnv(cfg.AI.Provider)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values viper cannot type-check.
func (c *Config) Validate() error {
	if _, err := common.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	if _, err := c.Delimiter(); err != nil {
		return err
	}
	for _, name := range c.Analyzer.Order {
		switch name {
		case AnalyzerRemote, AnalyzerSegmenter, AnalyzerLexicon:
		default:
			return fmt.Errorf("%w: unknown analyzer %q", common.ErrInvalidConfig, name)
		}
	}
	if c.Classify.Workers < 1 {
		return fmt.Errorf("%w: classify.workers must be at least 1", common.ErrInvalidConfig)
	}
	if c.Matcher.CacheSize < 0 {
		return fmt.Errorf("%w: matcher.cache_size must not be negative", common.ErrInvalidConfig)
	}
	return nil
}

// Delimiter returns the CSV field separator of the term dataset.
func (c *Config) Delimiter() (rune, error) {
	d := c.Data.Delimiter
	switch {
	case d == "":
		return ',', nil
	case d == `\t` || strings.EqualFold(d, "tab"):
		return '\t', nil
	case len([]rune(d)) == 1:
		return []rune(d)[0], nil
	default:
		return 0, fmt.Errorf("%w: data.delimiter must be a single character, got %q", common.ErrInvalidConfig, d)
	}
}

func providerKeyFromEnv(provider string) string {
	var names []string
	switch strings.ToLower(provider) {
	case translate.ProviderGoogle:
		names = []string{"GOOGLE_TRANSLATE_API_KEY", "GOOGLE_API_KEY"}
	case translate.ProviderLibre:
		names = []string{"LIBRETRANSLATE_API_KEY"}
	case translate.ProviderOpenAI:
		names = []string{"OPENAI_API_KEY"}
	case translate.ProviderZhipu:
		names = []string{"ZHIPU_API_KEY", "ZHIPUAI_API_KEY"}
	case translate.ProviderOpenRouter:
		names = []string{"OPENROUTER_API_KEY"}
	}
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}
