package strategy

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/ucsname/internal/model"
)

func keys(entries []model.StrategyConfig) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Key
	}
	return out
}

func TestRegistry_DefaultOrder(t *testing.T) {
	r := NewRegistry()

	assert.Equal(t, []string{
		KeyAI, KeyBilingual, KeyPartOfSpeech, KeyTranslatedText, KeyMultiWordCombination, KeyKeyword,
	}, keys(r.EnabledInStage(model.StageClassifier)))
	assert.Equal(t, []string{
		KeyRules, KeyMultiWord, KeyExact, KeyContains, KeySynonym, KeyKeywordRegex,
	}, keys(r.EnabledInStage(model.StageMatcher)))

	assert.Equal(t, HighestPriority, r.MultiMatchStrategy())
	assert.Equal(t, MultiWordSemantic, r.MultiWordMode())
}

func TestRegistry_EnabledInOrderIsStable(t *testing.T) {
	r := NewRegistry()
	require.True(t, r.SetPriority(KeyKeyword, 1))

	got := keys(r.EnabledInStage(model.StageClassifier))
	// ai and keyword share priority 1; declaration order breaks the tie.
	assert.Equal(t, []string{KeyAI, KeyKeyword, KeyBilingual}, got[:3])
}

func TestRegistry_Mutators(t *testing.T) {
	tests := []struct {
		name  string
		apply func(r *Registry) bool
		check func(t *testing.T, r *Registry)
		want  bool
	}{
		{
			name:  "disable",
			apply: func(r *Registry) bool { return r.SetEnabled(KeyBilingual, false) },
			check: func(t *testing.T, r *Registry) {
				assert.NotContains(t, keys(r.EnabledInOrder()), KeyBilingual)
			},
			want: true,
		},
		{
			name:  "threshold",
			apply: func(r *Registry) bool { return r.SetThreshold(KeyKeyword, 12.5) },
			check: func(t *testing.T, r *Registry) {
				e, ok := r.Get(KeyKeyword)
				require.True(t, ok)
				assert.InDelta(t, 12.5, e.Threshold, 0.0001)
			},
			want: true,
		},
		{
			name:  "param on entry without params",
			apply: func(r *Registry) bool { return r.SetParam(KeyAI, "weight", 3) },
			check: func(t *testing.T, r *Registry) {
				e, _ := r.Get(KeyAI)
				assert.InDelta(t, 3.0, e.Param("weight", 0), 0.0001)
			},
			want: true,
		},
		{
			name:  "unknown key",
			apply: func(r *Registry) bool { return r.SetEnabled("nope", false) },
			check: func(t *testing.T, r *Registry) {
				assert.Len(t, r.EnabledInOrder(), len(Defaults()))
			},
			want: false,
		},
		{
			name:  "empty param name",
			apply: func(r *Registry) bool { return r.SetParam(KeyExact, "", 1) },
			check: func(t *testing.T, r *Registry) {},
			want:  false,
		},
		{
			name:  "invalid multi-match strategy",
			apply: func(r *Registry) bool { return r.SetMultiMatchStrategy("sometimes") },
			check: func(t *testing.T, r *Registry) {
				assert.Equal(t, HighestPriority, r.MultiMatchStrategy())
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			before := r.Version()
			got := tt.apply(r)
			assert.Equal(t, tt.want, got)
			if got {
				assert.Greater(t, r.Version(), before)
			} else {
				assert.Equal(t, before, r.Version())
			}
			tt.check(t, r)
		})
	}
}

func TestRegistry_GetReturnsCopy(t *testing.T) {
	r := NewRegistry()
	e, ok := r.Get(KeyExact)
	require.True(t, ok)
	e.Params["score"] = 1

	again, _ := r.Get(KeyExact)
	assert.InDelta(t, 100.0, again.Param("score", 0), 0.0001)
}

func TestRegistry_ResetToDefaults(t *testing.T) {
	r := NewRegistry()
	r.SetEnabled(KeyExact, false)
	r.SetMultiWordMode(MultiWordFuzzy)

	r.ResetToDefaults()

	e, _ := r.Get(KeyExact)
	assert.True(t, e.Enabled)
	assert.Equal(t, MultiWordSemantic, r.MultiWordMode())
}

func TestRegistry_SnapshotRestore(t *testing.T) {
	r := NewRegistry()
	r.SetEnabled(KeyContains, false)
	r.SetPriority(KeyKeyword, 0)
	r.SetThreshold(KeyPartOfSpeech, 55)
	r.SetParam(KeyMultiWord, "contextWindow", 4)
	r.SetMultiMatchStrategy(AllMatches)

	snap := r.Snapshot()
	assert.Equal(t, "false", snap["strategy.contains.enabled"])
	assert.Equal(t, "0", snap["strategy.keyword.priority"])
	assert.Equal(t, "55", snap["strategy.partOfSpeech.threshold"])
	assert.Equal(t, "4", snap["strategy.multiWord.param.contextWindow"])
	assert.Equal(t, "allMatches", snap["multiMatchStrategy"])

	restored := NewRegistry()
	require.NoError(t, restored.Restore(snap))
	assert.Equal(t, r.Snapshot(), restored.Snapshot())
	assert.Equal(t, keys(r.EnabledInOrder()), keys(restored.EnabledInOrder()))
}

func TestRegistry_RestoreReportsMalformedValues(t *testing.T) {
	r := NewRegistry()
	err := r.Restore(map[string]string{
		"strategy.exact.enabled":   "maybe",
		"strategy.keyword.weight":  "1",
		"strategy.unknown.enabled": "false",
		"strategy.synonym.enabled": "false",
		"unrelated":                "x",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "strategy.exact.enabled")
	assert.Contains(t, err.Error(), "strategy.keyword.weight")
	assert.NotContains(t, err.Error(), "strategy.unknown")

	// Valid keys still apply.
	e, _ := r.Get(KeySynonym)
	assert.False(t, e.Enabled)
}

func TestRegistry_TOMLRoundTrip(t *testing.T) {
	r := NewRegistry()
	r.SetEnabled(KeyAI, false)
	r.SetParam(KeyBilingual, "originalWeight", 0.7)
	r.SetMultiWordMode(MultiWordPartial)

	var buf bytes.Buffer
	require.NoError(t, r.ExportTOML(&buf))
	assert.Contains(t, buf.String(), "multi_word_mode")
	assert.Contains(t, buf.String(), "partial")

	imported := NewRegistry()
	require.NoError(t, imported.ImportTOML(&buf))
	assert.Equal(t, r.Snapshot(), imported.Snapshot())
}

func TestRegistry_ImportTOMLErrors(t *testing.T) {
	r := NewRegistry()

	err := r.ImportTOML(strings.NewReader("not = [valid"))
	require.Error(t, err)

	err = r.ImportTOML(strings.NewReader("multi_word_mode = 'loose'\n"))
	require.Error(t, err)

	err = r.ImportTOML(strings.NewReader(`
[[strategy]]
key = 'mystery'
enabled = false

[[strategy]]
key = 'keyword'
stage = 'classifier'
enabled = false
priority = 6
threshold = 30.0
`))
	require.NoError(t, err)
	e, _ := r.Get(KeyKeyword)
	assert.False(t, e.Enabled)
}

type memoryStore struct {
	data map[string]string
	mu   sync.Mutex
}

func (m *memoryStore) LoadSettings(_ context.Context, prefix string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string)
	for k, v := range m.data {
		if strings.HasPrefix(k, prefix) {
			out[k] = v
		}
	}
	return out, nil
}

func (m *memoryStore) SaveSettings(_ context.Context, settings map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = make(map[string]string)
	}
	for k, v := range settings {
		m.data[k] = v
	}
	return nil
}

func (m *memoryStore) DeleteSettings(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
		}
	}
	return nil
}

func TestRegistry_StoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{}

	fresh := NewRegistry()
	require.NoError(t, fresh.Load(ctx, store))
	assert.Equal(t, NewRegistry().Snapshot(), fresh.Snapshot())

	r := NewRegistry()
	r.SetThreshold(KeyKeyword, 10)
	require.NoError(t, r.Save(ctx, store))

	loaded := NewRegistry()
	require.NoError(t, loaded.Load(ctx, store))
	e, _ := loaded.Get(KeyKeyword)
	assert.InDelta(t, 10.0, e.Threshold, 0.0001)
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			r.SetPriority(KeyKeyword, i)
		}(i)
		go func() {
			defer wg.Done()
			_ = r.EnabledInOrder()
			_ = r.Snapshot()
		}()
	}
	wg.Wait()
	assert.Len(t, r.EnabledInOrder(), len(Defaults()))
}
