package strategy

import (
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"

	"github.com/Veraticus/ucsname/internal/common"
	"github.com/Veraticus/ucsname/internal/model"
)

type tomlDocument struct {
	MultiMatchStrategy MultiMatchStrategy     `toml:"multi_match_strategy"`
	MultiWordMode      MultiWordMode          `toml:"multi_word_mode"`
	Strategies         []model.StrategyConfig `toml:"strategy"`
}

// ExportTOML writes the registry as a TOML document.
func (r *Registry) ExportTOML(w io.Writer) error {
	doc := tomlDocument{
		MultiMatchStrategy: r.MultiMatchStrategy(),
		MultiWordMode:      r.MultiWordMode(),
		Strategies:         r.All(),
	}
	enc := toml.NewEncoder(w)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode strategies: %w", err)
	}
	return nil
}

// ImportTOML replaces the registry with the document read from rd, applied
// on top of the defaults. Entries for unknown strategies are skipped.
func (r *Registry) ImportTOML(rd io.Reader) error {
	var doc tomlDocument
	if err := toml.NewDecoder(rd).Decode(&doc); err != nil {
		return fmt.Errorf("decode strategies: %w", err)
	}

	if doc.MultiMatchStrategy != "" && !doc.MultiMatchStrategy.Valid() {
		return fmt.Errorf("%w: multi_match_strategy %q", common.ErrInvalidConfig, doc.MultiMatchStrategy)
	}
	if doc.MultiWordMode != "" && !doc.MultiWordMode.Valid() {
		return fmt.Errorf("%w: multi_word_mode %q", common.ErrInvalidConfig, doc.MultiWordMode)
	}

	next := NewRegistry()
	if doc.MultiMatchStrategy != "" {
		next.SetMultiMatchStrategy(doc.MultiMatchStrategy)
	}
	if doc.MultiWordMode != "" {
		next.SetMultiWordMode(doc.MultiWordMode)
	}
	for _, s := range doc.Strategies {
		if _, ok := next.Get(s.Key); !ok {
			common.LogWarn("Skipping unknown strategy in import", common.Fields{"key": s.Key})
			continue
		}
		next.SetEnabled(s.Key, s.Enabled)
		next.SetPriority(s.Key, s.Priority)
		next.SetThreshold(s.Key, s.Threshold)
		for name, v := range s.Params {
			next.SetParam(s.Key, name, v)
		}
	}

	return r.Restore(next.Snapshot())
}
