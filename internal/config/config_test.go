package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/ucsname/internal/common"
	"github.com/Veraticus/ucsname/internal/translate"
)

func newViper(t *testing.T, yaml string) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	if yaml != "" {
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(strings.NewReader(yaml)))
	}
	return v
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", "/home/test")
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := Load(newViper(t, ""))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, filepath.Join("/home/test", ".local/share/ucsname/ucsname.db"), cfg.Database.Path)
	assert.Equal(t, "SubCategory", cfg.Data.Columns.Source)
	assert.Equal(t, "CatID", cfg.Data.Columns.CategoryID)
	assert.Equal(t, []string{AnalyzerSegmenter, AnalyzerLexicon}, cfg.Analyzer.Order)
	assert.InDelta(t, 100, cfg.Analyzer.Weights.Noun, 0.001)
	assert.InDelta(t, 20, cfg.Analyzer.Weights.Other, 0.001)
	assert.Equal(t, 1024, cfg.Matcher.CacheSize)
	assert.Equal(t, translate.ProviderNone, cfg.Translate.Provider)
	assert.Equal(t, 24*time.Hour, cfg.Translate.CacheTTL)
	assert.False(t, cfg.AI.Enabled)
	assert.Equal(t, translate.ProviderOpenAI, cfg.AI.Provider)
	assert.Equal(t, 4, cfg.Classify.Workers)
	assert.True(t, cfg.Classify.Record)
}

func TestLoad_FileOverrides(t *testing.T) {
	cfg, err := Load(newViper(t, `
data:
  terms_file: /data/ucs.xlsx
  terms_sheet: UCS
  delimiter: ";"
  columns:
    source: EN
analyzer:
  order: [remote, lexicon]
  remote:
    endpoint: http://localhost:9000/tag
    timeout: 5s
matcher:
  cache_size: 0
  keyword_patterns: ["boom+"]
translate:
  provider: libre
  base_url: http://localhost:5000
  rate_limit: 10
ai:
  enabled: true
  provider: zhipu
  api_key: zk
  model: glm-4-flash
classify:
  workers: 8
`))
	require.NoError(t, err)

	assert.Equal(t, "/data/ucs.xlsx", cfg.Data.TermsFile)
	assert.Equal(t, "UCS", cfg.Data.TermsSheet)
	assert.Equal(t, "EN", cfg.Data.Columns.Source)
	assert.Equal(t, "SubCategory_zh", cfg.Data.Columns.Target)
	assert.Equal(t, []string{AnalyzerRemote, AnalyzerLexicon}, cfg.Analyzer.Order)
	assert.Equal(t, "http://localhost:9000/tag", cfg.Analyzer.Remote.Endpoint)
	assert.Equal(t, 5*time.Second, cfg.Analyzer.Remote.Timeout)
	assert.Equal(t, 0, cfg.Matcher.CacheSize)
	assert.Equal(t, []string{"boom+"}, cfg.Matcher.KeywordPatterns)
	assert.Equal(t, translate.ProviderLibre, cfg.Translate.Provider)
	assert.Equal(t, 10, cfg.Translate.RateLimit)
	assert.True(t, cfg.AI.Enabled)
	assert.Equal(t, translate.ProviderZhipu, cfg.AI.Provider)
	assert.Equal(t, "zk", cfg.AI.APIKey)
	assert.Equal(t, "glm-4-flash", cfg.AI.Model)
	assert.Equal(t, 8, cfg.Classify.Workers)

	d, err := cfg.Delimiter()
	require.NoError(t, err)
	assert.Equal(t, ';', d)
}

func TestLoad_ProviderKeyFromEnv(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "or-key")
	t.Setenv("GOOGLE_TRANSLATE_API_KEY", "g-key")

	cfg, err := Load(newViper(t, `
translate:
  provider: google
ai:
  provider: openrouter
`))
	require.NoError(t, err)
	assert.Equal(t, "g-key", cfg.Translate.APIKey)
	assert.Equal(t, "or-key", cfg.AI.APIKey)
}

func TestLoad_ExplicitKeyWins(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-key")

	cfg, err := Load(newViper(t, `
ai:
  api_key: file-key
`))
	require.NoError(t, err)
	assert.Equal(t, "file-key", cfg.AI.APIKey)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "log level", yaml: "logging:\n  level: loud\n"},
		{name: "delimiter", yaml: "data:\n  delimiter: \"::\"\n"},
		{name: "analyzer", yaml: "analyzer:\n  order: [spacy]\n"},
		{name: "workers", yaml: "classify:\n  workers: 0\n"},
		{name: "cache size", yaml: "matcher:\n  cache_size: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(newViper(t, tt.yaml))
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrInvalidConfig)
		})
	}
}

func TestDelimiter(t *testing.T) {
	tests := []struct {
		in   string
		want rune
	}{
		{in: "", want: ','},
		{in: ",", want: ','},
		{in: "\t", want: '\t'},
		{in: `\t`, want: '\t'},
		{in: "TAB", want: '\t'},
		{in: "|", want: '|'},
	}

	for _, tt := range tests {
		cfg := Config{Data: DataConfig{Delimiter: tt.in}}
		got, err := cfg.Delimiter()
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("UCSNAME_TEST_DIR", "/srv/sounds")
	t.Setenv("UCSNAME_TEST_HOME_DIR", "~/library")

	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "~", want: home},
		{in: "~/terms.csv", want: filepath.Join(home, "terms.csv")},
		{in: "$UCSNAME_TEST_DIR/rules.json", want: "/srv/sounds/rules.json"},
		{in: "/abs/path.db", want: "/abs/path.db"},
		{in: "$UCSNAME_TEST_HOME_DIR/terms.csv", want: filepath.Join(home, "library", "terms.csv")},
		{in: " /srv//sounds/../rules.json ", want: "/srv/rules.json"},
		{in: "$UCSNAME_TEST_UNSET", want: ""},
		{in: "~user/terms.csv", want: "~user/terms.csv"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ExpandPath(tt.in), tt.in)
	}
}
