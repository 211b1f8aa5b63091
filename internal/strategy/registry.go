package strategy

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/Veraticus/ucsname/internal/model"
)

// Registry holds the enabled state, priority order and tunables of every
// matching strategy. It is safe for concurrent use; readers take snapshots.
type Registry struct {
	entries            []model.StrategyConfig
	index              map[string]int
	multiMatchStrategy MultiMatchStrategy
	multiWordMode      MultiWordMode
	version            uint64
	mu                 sync.RWMutex
}

// NewRegistry creates a registry populated with the defaults.
func NewRegistry() *Registry {
	r := &Registry{}
	r.ResetToDefaults()
	return r
}

// ResetToDefaults replaces every entry with the built-in defaults.
func (r *Registry) ResetToDefaults() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = Defaults()
	r.reindex()
	r.multiMatchStrategy = HighestPriority
	r.multiWordMode = MultiWordSemantic
	r.version++
}

func (r *Registry) reindex() {
	r.index = make(map[string]int, len(r.entries))
	for i, e := range r.entries {
		r.index[e.Key] = i
	}
}

// Version increases on every mutation. Caches key on it.
func (r *Registry) Version() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// Get returns a copy of the entry for key.
func (r *Registry) Get(key string) (model.StrategyConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[key]
	if !ok {
		return model.StrategyConfig{}, false
	}
	return r.entries[i].Clone(), true
}

// All returns copies of every entry in declaration order.
func (r *Registry) All() []model.StrategyConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.StrategyConfig, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Clone()
	}
	return out
}

// EnabledInOrder returns the enabled entries sorted ascending by priority.
// Ties keep declaration order.
func (r *Registry) EnabledInOrder() []model.StrategyConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.StrategyConfig, 0, len(r.entries))
	for _, e := range r.entries {
		if e.Enabled {
			out = append(out, e.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority < out[j].Priority
	})
	return out
}

// EnabledInStage returns the enabled entries of one stage in priority order.
func (r *Registry) EnabledInStage(stage model.StrategyStage) []model.StrategyConfig {
	all := r.EnabledInOrder()
	out := all[:0]
	for _, e := range all {
		if e.Stage == stage {
			out = append(out, e)
		}
	}
	return out
}

// MultiMatchStrategy returns the candidate resolution policy.
func (r *Registry) MultiMatchStrategy() MultiMatchStrategy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.multiMatchStrategy
}

// MultiWordMode returns the multi-word testing mode.
func (r *Registry) MultiWordMode() MultiWordMode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.multiWordMode
}

// SetMultiMatchStrategy changes the resolution policy. Unknown values are
// rejected.
func (r *Registry) SetMultiMatchStrategy(s MultiMatchStrategy) bool {
	if !s.Valid() {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.multiMatchStrategy = s
	r.version++
	return true
}

// SetMultiWordMode changes the multi-word mode. Unknown values are rejected.
func (r *Registry) SetMultiWordMode(m MultiWordMode) bool {
	if !m.Valid() {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.multiWordMode = m
	r.version++
	return true
}

// SetEnabled toggles a strategy. It returns false for unknown keys.
func (r *Registry) SetEnabled(key string, enabled bool) bool {
	return r.update(key, func(e *model.StrategyConfig) {
		e.Enabled = enabled
	})
}

// SetPriority changes where a strategy sits in the order. It returns false
// for unknown keys.
func (r *Registry) SetPriority(key string, priority int) bool {
	return r.update(key, func(e *model.StrategyConfig) {
		e.Priority = priority
	})
}

// SetThreshold changes the minimum accepted score. It returns false for
// unknown keys.
func (r *Registry) SetThreshold(key string, threshold float64) bool {
	return r.update(key, func(e *model.StrategyConfig) {
		e.Threshold = threshold
	})
}

// SetParam sets a strategy-specific parameter. It returns false for unknown
// keys.
func (r *Registry) SetParam(key, name string, value float64) bool {
	if name == "" {
		return false
	}
	return r.update(key, func(e *model.StrategyConfig) {
		if e.Params == nil {
			e.Params = make(map[string]float64)
		}
		e.Params[name] = value
	})
}

func (r *Registry) update(key string, fn func(*model.StrategyConfig)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[key]
	if !ok {
		return false
	}
	fn(&r.entries[i])
	r.version++
	return true
}

const (
	snapshotPrefix          = "strategy."
	snapshotMultiMatch      = "multiMatchStrategy"
	snapshotMultiWordMode   = "multiWordMode"
	snapshotFieldEnabled    = "enabled"
	snapshotFieldPriority   = "priority"
	snapshotFieldThreshold  = "threshold"
	snapshotFieldParamInfix = "param."
)

// Snapshot flattens the registry into a string record suitable for a
// key/value store.
func (r *Registry) Snapshot() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]string, len(r.entries)*4+2)
	out[snapshotMultiMatch] = string(r.multiMatchStrategy)
	out[snapshotMultiWordMode] = string(r.multiWordMode)
	for _, e := range r.entries {
		base := snapshotPrefix + e.Key + "."
		out[base+snapshotFieldEnabled] = strconv.FormatBool(e.Enabled)
		out[base+snapshotFieldPriority] = strconv.Itoa(e.Priority)
		out[base+snapshotFieldThreshold] = strconv.FormatFloat(e.Threshold, 'g', -1, 64)
		for name, v := range e.Params {
			out[base+snapshotFieldParamInfix+name] = strconv.FormatFloat(v, 'g', -1, 64)
		}
	}
	return out
}

// Restore applies a snapshot on top of the defaults. Keys for unknown
// strategies are ignored; malformed values are reported.
func (r *Registry) Restore(snapshot map[string]string) error {
	restored := &Registry{}
	restored.ResetToDefaults()

	var problems []string
	for k, v := range snapshot {
		if err := restored.applyFlat(k, v); err != nil {
			problems = append(problems, err.Error())
		}
	}

	r.mu.Lock()
	r.entries = restored.entries
	r.reindex()
	r.multiMatchStrategy = restored.multiMatchStrategy
	r.multiWordMode = restored.multiWordMode
	r.version++
	r.mu.Unlock()

	if len(problems) > 0 {
		sort.Strings(problems)
		return fmt.Errorf("restore strategy registry: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (r *Registry) applyFlat(k, v string) error {
	switch k {
	case snapshotMultiMatch:
		if !r.SetMultiMatchStrategy(MultiMatchStrategy(v)) {
			return fmt.Errorf("%s: unknown value %q", k, v)
		}
		return nil
	case snapshotMultiWordMode:
		if !r.SetMultiWordMode(MultiWordMode(v)) {
			return fmt.Errorf("%s: unknown value %q", k, v)
		}
		return nil
	}

	rest, ok := strings.CutPrefix(k, snapshotPrefix)
	if !ok {
		return nil
	}
	key, field, ok := strings.Cut(rest, ".")
	if !ok {
		return fmt.Errorf("%s: malformed key", k)
	}
	if _, known := r.Get(key); !known {
		return nil
	}

	switch {
	case field == snapshotFieldEnabled:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
		r.SetEnabled(key, b)
	case field == snapshotFieldPriority:
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
		r.SetPriority(key, n)
	case field == snapshotFieldThreshold:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
		r.SetThreshold(key, f)
	case strings.HasPrefix(field, snapshotFieldParamInfix):
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
		r.SetParam(key, strings.TrimPrefix(field, snapshotFieldParamInfix), f)
	default:
		return fmt.Errorf("%s: unknown field", k)
	}
	return nil
}
