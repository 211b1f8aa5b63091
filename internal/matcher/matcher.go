// Package matcher finds the UCS term that best describes a piece of text.
package matcher

import (
	"regexp"
	"strconv"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Veraticus/ucsname/internal/common"
	"github.com/Veraticus/ucsname/internal/model"
	"github.com/Veraticus/ucsname/internal/rules"
	"github.com/Veraticus/ucsname/internal/strategy"
	"github.com/Veraticus/ucsname/internal/terms"
)

// DefaultCacheSize bounds the candidate cache when no size is configured.
const DefaultCacheSize = 1024

// Option customizes a TermMatcher.
type Option func(*TermMatcher)

// WithCacheSize sets the capacity of the candidate cache. Zero disables it.
func WithCacheSize(size int) Option {
	return func(m *TermMatcher) {
		m.cacheSize = size
	}
}

// WithKeywordPatterns adds user keyword regexes to the keyword-set method.
// Patterns that do not compile are skipped.
func WithKeywordPatterns(patterns ...string) Option {
	return func(m *TermMatcher) {
		m.userPatterns = append(m.userPatterns, patterns...)
	}
}

// TermMatcher collects scored candidates from every enabled matcher method
// and resolves them with the registry's multi-match strategy.
type TermMatcher struct {
	terms        *terms.Table
	rules        *rules.Table
	registry     *strategy.Registry
	cache        *lru.Cache[string, model.MatchCandidates]
	index        *termIndex
	keywords     *keywordSet
	userPatterns []string
	userRegexes  []*regexp.Regexp
	cacheSize    int
	mu           sync.Mutex
}

// New creates a matcher. The rule table may be nil.
func New(termTable *terms.Table, ruleTable *rules.Table, registry *strategy.Registry, opts ...Option) *TermMatcher {
	m := &TermMatcher{
		terms:     termTable,
		rules:     ruleTable,
		registry:  registry,
		cacheSize: DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = strategy.NewRegistry()
	}

	if m.cacheSize > 0 {
		cache, err := lru.New[string, model.MatchCandidates](m.cacheSize)
		if err != nil {
			common.LogError(err, "Failed to create match cache", common.Fields{"size": m.cacheSize})
		} else {
			m.cache = cache
		}
	}

	for _, p := range m.userPatterns {
		re, err := common.CompileInsensitive(p, "keyword pattern")
		if err != nil {
			common.LogWarn("Skipping keyword pattern", common.Fields{"pattern": p, "error": err.Error()})
			continue
		}
		m.userRegexes = append(m.userRegexes, re)
	}

	return m
}

// Registry returns the registry the matcher reads its configuration from.
func (m *TermMatcher) Registry() *strategy.Registry {
	return m.registry
}

// FindMatch returns the single best term for text, or nil when nothing
// matches. Under the allMatches strategy the best-scored term is returned.
func (m *TermMatcher) FindMatch(text string) *model.TermRecord {
	matches := m.FindMatches(text)
	if len(matches) == 0 {
		return nil
	}
	return &matches[0]
}

// FindMatches resolves the candidates for text with the configured
// multi-match strategy. firstMatch and highestPriority yield at most one
// term; allMatches yields every distinct term ranked by score.
func (m *TermMatcher) FindMatches(text string) []model.TermRecord {
	candidates := m.Candidates(text)
	if len(candidates) == 0 {
		return nil
	}

	switch m.registry.MultiMatchStrategy() {
	case strategy.FirstMatch:
		return []model.TermRecord{candidates[0].Term}
	case strategy.AllMatches:
		return candidates.AboveThreshold(0).Terms()
	default:
		return []model.TermRecord{candidates.Top().Term}
	}
}

// Candidates returns every candidate in collection order. The registry is
// read once at entry, so a concurrent configuration change applies to the
// next call.
func (m *TermMatcher) Candidates(text string) model.MatchCandidates {
	if m == nil || m.terms == nil || !m.terms.Loaded() {
		return nil
	}
	normalized := Normalize(text)
	if normalized == "" {
		return nil
	}

	version := m.registry.Version()
	methods := m.registry.EnabledInStage(model.StageMatcher)
	mode := m.registry.MultiWordMode()
	idx := m.currentIndex()

	cacheKey := strconv.FormatUint(version, 10) + "/" + strconv.FormatUint(idx.generation, 10) + "/" + normalized
	if m.cache != nil {
		if cached, ok := m.cache.Get(cacheKey); ok {
			return clone(cached)
		}
	}

	exactScore := 100.0
	if cfg, ok := m.registry.Get(strategy.KeyExact); ok {
		exactScore = cfg.Param("score", exactScore)
	}

	run := &matchRun{
		idx:        idx,
		text:       normalized,
		words:      words(normalized),
		exactScore: exactScore,
	}
	for _, cfg := range methods {
		if cfg.Key == strategy.KeyExact {
			run.exactEnabled = true
		}
	}

	var collected model.MatchCandidates
	for _, cfg := range methods {
		var found model.MatchCandidates
		switch cfg.Key {
		case strategy.KeyRules:
			found = run.ruleCandidates(m.rules, cfg)
		case strategy.KeyMultiWord:
			found = run.multiWordCandidates(cfg, mode)
		case strategy.KeyExact:
			found = run.exactCandidates(cfg)
		case strategy.KeyContains:
			found = run.containsCandidates(cfg)
		case strategy.KeySynonym:
			found = run.synonymCandidates(cfg)
		case strategy.KeyKeywordRegex:
			found = run.keywordCandidates(cfg, m.keywordSet(idx, cfg), m.userRegexes)
		default:
			continue
		}
		for _, c := range found {
			if err := c.Validate(); err != nil {
				common.LogWarn("Dropping invalid term candidate", common.Fields{
					"method": cfg.Key,
					"error":  err.Error(),
				})
				continue
			}
			if c.Score >= cfg.Threshold {
				collected = append(collected, c)
			}
		}
	}

	if m.cache != nil && m.registry.Version() == version {
		m.cache.Add(cacheKey, clone(collected))
	}

	common.LogDebug("Collected term candidates", common.Fields{
		"text":       text,
		"candidates": len(collected),
	})
	return collected
}

func (m *TermMatcher) currentIndex() *termIndex {
	generation := m.terms.Generation()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.index == nil || m.index.generation != generation {
		m.index = buildIndex(m.terms)
		m.keywords = nil
	}
	return m.index
}

func clone(c model.MatchCandidates) model.MatchCandidates {
	if c == nil {
		return nil
	}
	out := make(model.MatchCandidates, len(c))
	copy(out, c)
	return out
}
