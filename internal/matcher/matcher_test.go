package matcher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/ucsname/internal/model"
	"github.com/Veraticus/ucsname/internal/rules"
	"github.com/Veraticus/ucsname/internal/strategy"
	"github.com/Veraticus/ucsname/internal/terms"
)

func fixtureTerms() *terms.Table {
	return terms.NewTableFromRecords([]model.TermRecord{
		{Source: "door slam", Target: "关门", CategoryID: "OBJImpt"},
		{Source: "metal", Target: "金属", CategoryID: "METLImpt"},
		{Source: "tape", Target: "磁带", CategoryID: "TOOLTape"},
		{Source: "cassette tape", Target: "盒式磁带", CategoryID: "MACHTape"},
		{Source: "键盘", Target: "typing keyboard", CategoryID: "OBJKbrd"},
		{Source: "glitch", Target: "故障", CategoryID: "SCIMisc"},
		{Source: "footsteps", Target: "脚步", CategoryID: "FOOTStep", Synonyms: []string{"walking", "steps"}},
		{Source: "walking", Target: "行走", CategoryID: "MOVEWalk"},
		{Source: "thunder", Target: "雷声", CategoryID: "WTHRThun", Synonyms: []string{"lightning strike"}},
	})
}

const fixtureRules = `{
  "settings": {"defaultPriority": 5},
  "specialPatterns": [
    {"id": "glitch", "matchType": "contains", "pattern": "glitch", "result": {"categoryId": "DSGNRythm"}},
    {"id": "feet", "matchType": "equals", "pattern": "footsteps", "priority": 9,
     "result": [{"source": "feet", "target": "脚", "categoryId": "FOOTMisc"}]}
  ]
}`

func newFixtureMatcher(t *testing.T, opts ...Option) *TermMatcher {
	t.Helper()
	ruleTable := rules.NewTable()
	_, err := ruleTable.Load(fixtureRules)
	require.NoError(t, err)
	return New(fixtureTerms(), ruleTable, strategy.NewRegistry(), opts...)
}

// only leaves the named matcher methods enabled.
func only(r *strategy.Registry, keys ...string) {
	keep := make(map[string]bool, len(keys))
	for _, k := range keys {
		keep[k] = true
	}
	for _, e := range r.EnabledInStage(model.StageMatcher) {
		r.SetEnabled(e.Key, keep[e.Key])
	}
}

func categoryOf(term *model.TermRecord) string {
	if term == nil {
		return ""
	}
	return term.CategoryID
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Door Slam", "door slam"},
		{"ＤＯＯＲ　ＳＬＡＭ", "door slam"},
		{"  Metal ", "metal"},
		{"键盘", "键盘"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), tt.in)
	}
}

func TestFindMatch_Scenarios(t *testing.T) {
	m := newFixtureMatcher(t)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trailing take number is ignored", "Metal Door Slam 03", "OBJImpt"},
		{"chinese source without translation", "键盘打字", "OBJKbrd"},
		{"rule outranks term", "glitchy robot sound", "DSGNRythm"},
		{"longest substring wins", "old cassette tape hiss", "MACHTape"},
		{"exact match", "thunder", "WTHRThun"},
		{"exact outranks synonym", "walking", "MOVEWalk"},
		{"synonym", "distant lightning strike", "WTHRThun"},
		{"rule equals term source", "Footsteps", "FOOTMisc"},
		{"no plausible match", "xyzxyzxyz123", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, categoryOf(m.FindMatch(tt.input)))
		})
	}
}

func TestFindMatch_SubstringOnly(t *testing.T) {
	m := newFixtureMatcher(t)
	only(m.Registry(), strategy.KeyContains)

	got := m.FindMatch("Metal Door Slam 03")
	require.NotNil(t, got)
	assert.Equal(t, "door slam", got.Source)

	got = m.FindMatch("old cassette tape hiss")
	require.NotNil(t, got)
	assert.Equal(t, "cassette tape", got.Source)
}

func TestFindMatch_Idempotent(t *testing.T) {
	for _, size := range []int{0, 16} {
		m := newFixtureMatcher(t, WithCacheSize(size))
		for _, in := range []string{"Metal Door Slam 03", "glitchy robot sound", "键盘打字", "nothing here"} {
			first := m.FindMatch(in)
			second := m.FindMatch(in)
			assert.Equal(t, first, second, in)
		}
	}
}

func TestFindMatch_CaseInvariant(t *testing.T) {
	m := newFixtureMatcher(t)
	for _, in := range []string{"Metal Door Slam 03", "Old Cassette Tape Hiss", "Glitchy Robot", "ThUnDeR"} {
		want := m.FindMatch(in)
		assert.Equal(t, want, m.FindMatch(strings.ToUpper(in)), in)
		assert.Equal(t, want, m.FindMatch(strings.ToLower(in)), in)
	}
}

func TestFindMatch_EmptyAndUnloaded(t *testing.T) {
	m := newFixtureMatcher(t)
	assert.Nil(t, m.FindMatch(""))
	assert.Nil(t, m.FindMatch("   "))
	assert.Nil(t, m.FindMatches(""))

	var nilMatcher *TermMatcher
	assert.Nil(t, nilMatcher.FindMatch("door slam"))

	unloaded := New(terms.NewTable(), nil, nil)
	assert.Nil(t, unloaded.FindMatch("door slam"))

	failed := terms.NewTable()
	_, err := failed.Load("name,other\nx,y\n")
	require.Error(t, err)
	assert.Nil(t, New(failed, nil, nil).FindMatch("door slam"))
}

func TestFindMatches_Strategies(t *testing.T) {
	m := newFixtureMatcher(t)
	reg := m.Registry()

	// Keyword hits are collected first and "metal" is the leftmost keyword.
	reg.SetPriority(strategy.KeyKeywordRegex, 1)

	assert.Equal(t, "OBJImpt", categoryOf(m.FindMatch("Metal Door Slam 03")))

	require.True(t, reg.SetMultiMatchStrategy(strategy.FirstMatch))
	assert.Equal(t, "METLImpt", categoryOf(m.FindMatch("Metal Door Slam 03")))

	require.True(t, reg.SetMultiMatchStrategy(strategy.AllMatches))
	all := m.FindMatches("Metal Door Slam 03")
	require.Len(t, all, 2)
	assert.Equal(t, "OBJImpt", all[0].CategoryID)
	assert.Equal(t, "METLImpt", all[1].CategoryID)
	assert.Equal(t, "OBJImpt", categoryOf(m.FindMatch("Metal Door Slam 03")))
}

func TestCandidates_MultiWordModes(t *testing.T) {
	tests := []struct {
		name     string
		mode     strategy.MultiWordMode
		input    string
		wantType string
		want     float64
	}{
		{"exact phrase", strategy.MultiWordExact, "big door slam", model.MatchTypeMultiWordExact, 70},
		{"exact mode rejects gaps", strategy.MultiWordExact, "door big slam", "", 0},
		{"partial allows gaps", strategy.MultiWordPartial, "door big slam", model.MatchTypeMultiWordPartial, 20},
		{"partial rejects reorder", strategy.MultiWordPartial, "slam door", "", 0},
		{"fuzzy reorder", strategy.MultiWordFuzzy, "slam door", model.MatchTypeMultiWordFuzzy, 25},
		{"fuzzy typo", strategy.MultiWordFuzzy, "dor slam", model.MatchTypeMultiWordFuzzy, 25},
		{"semantic prefers adjacent context", strategy.MultiWordSemantic, "slam door", model.MatchTypeMultiWordContext, 52},
		{"semantic keeps exact", strategy.MultiWordSemantic, "door slam loud", model.MatchTypeMultiWordExact, 70},
		{"semantic typo", strategy.MultiWordSemantic, "dor slam", model.MatchTypeMultiWordFuzzy, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newFixtureMatcher(t, WithCacheSize(0))
			only(m.Registry(), strategy.KeyMultiWord)
			require.True(t, m.Registry().SetMultiWordMode(tt.mode))

			var hit *model.MatchCandidate
			cands := m.Candidates(tt.input)
			for i := range cands {
				if cands[i].Term.CategoryID == "OBJImpt" {
					hit = &cands[i]
				}
			}
			if tt.wantType == "" {
				assert.Nil(t, hit)
				return
			}
			require.NotNil(t, hit)
			assert.Equal(t, tt.wantType, hit.MatchType)
			assert.InDelta(t, tt.want, hit.Score, 0.01)
		})
	}
}

func TestCandidates_MultiWordStageOrder(t *testing.T) {
	multiWordScore := func(t *testing.T, input string) (string, float64) {
		t.Helper()
		m := newFixtureMatcher(t, WithCacheSize(0))
		only(m.Registry(), strategy.KeyMultiWord)
		require.True(t, m.Registry().SetMultiWordMode(strategy.MultiWordSemantic))
		cands := m.Candidates(input)
		require.Len(t, cands, 1)
		return cands[0].MatchType, cands[0].Score
	}

	exactType, exact := multiWordScore(t, "door slam")
	contextType, context := multiWordScore(t, "slam big door")
	fuzzyType, fuzzy := multiWordScore(t, "dor slam")
	assert.Equal(t, model.MatchTypeMultiWordExact, exactType)
	assert.Equal(t, model.MatchTypeMultiWordContext, contextType)
	assert.Equal(t, model.MatchTypeMultiWordFuzzy, fuzzyType)
	assert.Greater(t, exact, context)
	assert.Greater(t, context, fuzzy)

	partialOnly := newFixtureMatcher(t, WithCacheSize(0))
	only(partialOnly.Registry(), strategy.KeyMultiWord)
	require.True(t, partialOnly.Registry().SetMultiWordMode(strategy.MultiWordPartial))
	cands := partialOnly.Candidates("door big slam")
	require.Len(t, cands, 1)
	assert.Greater(t, fuzzy, cands[0].Score)

	// A gapped phrase must not outrank a plain substring hit on another term.
	table := terms.NewTableFromRecords([]model.TermRecord{
		{Source: "car door", Target: "车门", CategoryID: "VEHDoor"},
		{Source: "squeaky", Target: "吱吱声", CategoryID: "SQKMisc"},
	})
	m := New(table, nil, strategy.NewRegistry(), WithCacheSize(0))
	require.True(t, m.Registry().SetMultiWordMode(strategy.MultiWordPartial))

	var partial, contains float64
	for _, c := range m.Candidates("car squeaky door") {
		switch c.MatchType {
		case model.MatchTypeMultiWordPartial:
			partial = c.Score
		case model.MatchTypeContains:
			contains = c.Score
		}
	}
	assert.InDelta(t, 20, partial, 0.0001)
	assert.InDelta(t, 60*7.0/16, contains, 0.0001)
	assert.Equal(t, "SQKMisc", categoryOf(m.FindMatch("car squeaky door")))
}

func TestCandidates_EditDistance(t *testing.T) {
	m := newFixtureMatcher(t)
	only(m.Registry(), strategy.KeyMultiWord)
	// With no per-word tolerance only the whole-phrase comparison can pass.
	m.Registry().SetParam(strategy.KeyMultiWord, "fuzzyDistance", 0)

	cands := m.Candidates("dorr slsm")
	require.Len(t, cands, 1)
	assert.Equal(t, "OBJImpt", cands[0].Term.CategoryID)
	assert.Equal(t, model.MatchTypeMultiWordEdit, cands[0].MatchType)
	assert.InDelta(t, 25*(1-2.0/9), cands[0].Score, 0.0001)

	m.Registry().SetMultiWordMode(strategy.MultiWordFuzzy)
	assert.Empty(t, m.Candidates("dorr slsm"))
}

func TestCandidates_SimilarityWindow(t *testing.T) {
	assert.InDelta(t, 1.0, similarity("door slam", "door slam"), 0.0001)
	assert.InDelta(t, 1-1.0/9, similarity("dor slam", "door slam"), 0.0001)
	assert.True(t, fuzzyWordMatch("door", "dor", 2))
	assert.True(t, fuzzyWordMatch("foot", "footsteps", 2))
	assert.False(t, fuzzyWordMatch("ab", "xy", 2))
}

func TestCandidates_ContainsScoring(t *testing.T) {
	m := newFixtureMatcher(t)
	only(m.Registry(), strategy.KeyContains, strategy.KeyExact)

	cands := m.Candidates("old cassette tape hiss")
	require.Len(t, cands, 2)
	assert.Equal(t, "cassette tape", cands[0].Term.Source)
	assert.InDelta(t, 60*13.0/22, cands[0].Score, 0.0001)
	assert.Equal(t, "tape", cands[1].Term.Source)

	// An exact hit is not scored a second time as a substring.
	cands = m.Candidates("tape")
	require.Len(t, cands, 1)
	assert.Equal(t, model.MatchTypeExact, cands[0].MatchType)
}

func TestCandidates_Threshold(t *testing.T) {
	m := newFixtureMatcher(t)
	only(m.Registry(), strategy.KeyContains)
	require.True(t, m.Registry().SetThreshold(strategy.KeyContains, 50))

	assert.Nil(t, m.FindMatch("old cassette tape hiss"))
	assert.Equal(t, "WTHRThun", categoryOf(m.FindMatch("thunder!")))
}

func TestCandidates_DropsInvalid(t *testing.T) {
	ruleTable := rules.NewTable()
	_, err := ruleTable.Load(`{"specialPatterns": [
	  {"id": "blank", "matchType": "contains", "pattern": "hum", "result": {"target": "嗡"}},
	  {"id": "drone", "matchType": "contains", "pattern": "hum", "result": {"categoryId": "AMBDrone"}}
	]}`)
	require.NoError(t, err)

	m := New(fixtureTerms(), ruleTable, strategy.NewRegistry())
	only(m.Registry(), strategy.KeyRules)
	cands := m.Candidates("low hum")
	require.Len(t, cands, 1)
	assert.Equal(t, "AMBDrone", cands[0].Term.CategoryID)

	// A negative score fails validation too.
	only(m.Registry(), strategy.KeyContains)
	m.Registry().SetParam(strategy.KeyContains, "score", -60)
	assert.Empty(t, m.Candidates("heavy thunder"))
}

func TestCandidates_KeywordPatterns(t *testing.T) {
	plain := newFixtureMatcher(t)
	only(plain.Registry(), strategy.KeyKeywordRegex)
	assert.Nil(t, plain.FindMatch("键盘打字"))
	assert.Nil(t, plain.FindMatch("ambience v2.1"))
	assert.Equal(t, "WTHRThun", categoryOf(plain.FindMatch("thunderous roll")))

	custom := newFixtureMatcher(t, WithKeywordPatterns(`键盘\S*`, `([unclosed`))
	only(custom.Registry(), strategy.KeyKeywordRegex)
	got := custom.FindMatch("键盘打字")
	require.NotNil(t, got)
	assert.Equal(t, "OBJKbrd", got.CategoryID)
	assert.Len(t, custom.userRegexes, 1)

	// Sample only "door slam" so the hit can come from the user pattern alone.
	grouped := newFixtureMatcher(t, WithKeywordPatterns(`(?:Cassette|Reel)\s+\w+`))
	only(grouped.Registry(), strategy.KeyKeywordRegex)
	grouped.Registry().SetParam(strategy.KeyKeywordRegex, "sampleSize", 1)
	only(plain.Registry(), strategy.KeyKeywordRegex)
	plain.Registry().SetParam(strategy.KeyKeywordRegex, "sampleSize", 1)
	assert.Nil(t, plain.FindMatch("Old Cassette Tape Hiss"))
	got = grouped.FindMatch("Old Cassette Tape Hiss")
	require.NotNil(t, got)
	assert.Equal(t, "MACHTape", got.CategoryID)
}

func TestCandidates_RegistryChangeInvalidatesCache(t *testing.T) {
	m := newFixtureMatcher(t)
	assert.Equal(t, "DSGNRythm", categoryOf(m.FindMatch("glitchy robot sound")))

	m.Registry().SetEnabled(strategy.KeyRules, false)
	assert.Equal(t, "SCIMisc", categoryOf(m.FindMatch("glitchy robot sound")))
}

func TestCandidates_TableReload(t *testing.T) {
	table := terms.NewTable()
	_, err := table.Load("SubCategory,SubCategory_zh,CatID\nwind,风,WINDGust\n")
	require.NoError(t, err)

	m := New(table, nil, strategy.NewRegistry())
	assert.Equal(t, "WINDGust", categoryOf(m.FindMatch("strong wind")))

	_, err = table.Load("SubCategory,SubCategory_zh,CatID\nrain,雨,RAINHvy\n")
	require.NoError(t, err)
	assert.Nil(t, m.FindMatch("strong wind"))
	assert.Equal(t, "RAINHvy", categoryOf(m.FindMatch("heavy rain")))
}
