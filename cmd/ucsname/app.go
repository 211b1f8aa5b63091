package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/Veraticus/ucsname/internal/classifier"
	"github.com/Veraticus/ucsname/internal/common"
	"github.com/Veraticus/ucsname/internal/config"
	"github.com/Veraticus/ucsname/internal/matcher"
	"github.com/Veraticus/ucsname/internal/pos"
	"github.com/Veraticus/ucsname/internal/rules"
	"github.com/Veraticus/ucsname/internal/storage"
	"github.com/Veraticus/ucsname/internal/strategy"
	"github.com/Veraticus/ucsname/internal/terms"
	"github.com/Veraticus/ucsname/internal/translate"
)

var envKeyReplacer = strings.NewReplacer(".", "_")

// loadConfig decodes the global viper state.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, common.NewUserError("Invalid configuration", err)
	}
	return cfg, nil
}

// initStorage opens the database and runs migrations.
func initStorage(ctx context.Context, cfg *config.Config) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("Failed to close database", "error", closeErr)
		}
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}

func closeStorage(store *storage.SQLiteStorage) {
	if err := store.Close(); err != nil {
		slog.Error("Failed to close database", "error", err)
	}
}

// loadRegistry restores persisted strategy settings. When nothing has been
// persisted yet the rule dataset's multiMatchStrategy setting applies.
func loadRegistry(ctx context.Context, store strategy.Store, ruleTable *rules.Table) (*strategy.Registry, error) {
	registry := strategy.NewRegistry()

	persisted, err := store.LoadSettings(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load strategy settings: %w", err)
	}
	if len(persisted) > 0 {
		if err := registry.Restore(persisted); err != nil {
			slog.Warn("Ignoring malformed strategy settings", "error", err)
		}
		return registry, nil
	}

	if ruleTable != nil {
		if s := ruleTable.Settings().MultiMatchStrategy; s != "" {
			if !registry.SetMultiMatchStrategy(strategy.MultiMatchStrategy(s)) {
				slog.Warn("Ignoring unknown multiMatchStrategy in rule dataset", "value", s)
			}
		}
	}
	return registry, nil
}

// loadTermTable reads the term dataset. Workbooks are recognized by their
// .xlsx extension; anything else is delimited text.
func loadTermTable(cfg *config.Config) (*terms.Table, error) {
	path := cfg.Data.TermsFile
	if path == "" {
		return nil, common.NewUserError("No term dataset configured", common.ErrMissingConfig)
	}

	delim, err := cfg.Delimiter()
	if err != nil {
		return nil, err
	}
	table := terms.NewTable(terms.WithColumns(cfg.Data.Columns), terms.WithDelimiter(delim))

	f, err := os.Open(path) //nolint:gosec // Path comes from user configuration
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("Cannot open term dataset %s", path), err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Error("Failed to close term dataset", "error", closeErr)
		}
	}()

	var records int
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		loaded, loadErr := table.LoadXLSX(f, cfg.Data.TermsSheet)
		if loadErr != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, loadErr)
		}
		records = len(loaded)
	} else {
		raw, readErr := io.ReadAll(f)
		if readErr != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, readErr)
		}
		loaded, loadErr := table.Load(string(raw))
		if loadErr != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, loadErr)
		}
		records = len(loaded)
	}

	slog.Debug("Loaded term table", "path", path, "records", records)
	return table, nil
}

// loadRuleTable reads the optional rule dataset. Without one, the table
// stays empty and the rules strategy never matches.
func loadRuleTable(cfg *config.Config) (*rules.Table, error) {
	table := rules.NewTable()
	path := cfg.Data.RulesFile
	if path == "" {
		return table, nil
	}

	raw, err := os.ReadFile(path) //nolint:gosec // Path comes from user configuration
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("Cannot read rule dataset %s", path), err)
	}
	loaded, err := table.Load(string(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	slog.Debug("Loaded rule table", "path", path, "rules", len(loaded))
	return table, nil
}

// newAnalyzer walks analyzer.order and keeps the first analyzer that
// initializes.
func newAnalyzer(ctx context.Context, cfg *config.Config) (pos.Analyzer, string) {
	weights := cfg.Analyzer.Weights
	factories := make([]pos.Factory, 0, len(cfg.Analyzer.Order))
	for _, name := range cfg.Analyzer.Order {
		switch name {
		case config.AnalyzerRemote:
			factories = append(factories, pos.Factory{
				Name: name,
				New: func() (pos.Analyzer, error) {
					return pos.NewRemoteAnalyzer(ctx, cfg.Analyzer.Remote, weights)
				},
			})
		case config.AnalyzerSegmenter:
			factories = append(factories, pos.Factory{
				Name: name,
				New: func() (pos.Analyzer, error) {
					return pos.NewSegmenterAnalyzer(pos.NewLexicon(nil), weights), nil
				},
			})
		case config.AnalyzerLexicon:
			factories = append(factories, pos.Factory{
				Name: name,
				New: func() (pos.Analyzer, error) {
					return pos.NewLexiconAnalyzer(nil, weights), nil
				},
			})
		}
	}
	return pos.Select(weights, factories...)
}

// app bundles everything a classification needs.
type app struct {
	cfg          *config.Config
	store        *storage.SQLiteStorage
	terms        *terms.Table
	rules        *rules.Table
	registry     *strategy.Registry
	matcher      *matcher.TermMatcher
	classifier   *classifier.Classifier
	translator   translate.Translator
	ai           *translate.AIClassifier
	analyzerName string
}

type appOptions struct {
	translate bool
	ai        bool
}

// newApp loads datasets, restores the registry and wires the pipeline.
// Translation and AI are built only when asked for.
func newApp(ctx context.Context, cfg *config.Config, opts appOptions) (*app, error) {
	termTable, err := loadTermTable(cfg)
	if err != nil {
		return nil, err
	}
	ruleTable, err := loadRuleTable(cfg)
	if err != nil {
		return nil, err
	}

	store, err := initStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	registry, err := loadRegistry(ctx, store, ruleTable)
	if err != nil {
		closeStorage(store)
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		store:    store,
		terms:    termTable,
		rules:    ruleTable,
		registry: registry,
	}

	a.matcher = matcher.New(termTable, ruleTable, registry,
		matcher.WithCacheSize(cfg.Matcher.CacheSize),
		matcher.WithKeywordPatterns(cfg.Matcher.KeywordPatterns...),
	)

	var analyzer pos.Analyzer
	analyzer, a.analyzerName = newAnalyzer(ctx, cfg)
	a.classifier = classifier.New(termTable, a.matcher, analyzer)

	if opts.translate {
		a.translator, err = translate.New(ctx, cfg.Translate)
		if err != nil {
			a.close()
			return nil, common.NewUserError("Cannot set up translation", err)
		}
	}
	if opts.ai {
		a.ai, err = translate.NewAIClassifier(cfg.AI.Config, termTable.Categories())
		if err != nil {
			a.close()
			return nil, common.NewUserError("Cannot set up AI classification", err)
		}
	}

	slog.Debug("Classification pipeline ready",
		"terms", termTable.Len(),
		"rules", len(ruleTable.Rules()),
		"analyzer", a.analyzerName,
	)
	return a, nil
}

func (a *app) close() {
	if a.store != nil {
		closeStorage(a.store)
	}
}
