package pos

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/ucsname/internal/model"
)

func wordsOf(ws []model.WeightedWord) []string {
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.Word)
	}
	return out
}

func TestFinalize(t *testing.T) {
	in := []model.WeightedWord{
		{Word: "slam", PartOfSpeech: model.Verb, Weight: 60},
		{Word: "door", PartOfSpeech: model.Noun, Weight: 100},
		{Word: "slam", PartOfSpeech: model.Noun, Weight: 100},
		{Word: "metal", PartOfSpeech: model.Noun, Weight: 100},
		{Word: "", Weight: 100},
	}
	out := Finalize(in)
	assert.Equal(t, []string{"door", "metal", "slam"}, wordsOf(out))
	assert.Equal(t, model.Verb, out[2].PartOfSpeech, "first occurrence wins")
}

func TestWeights(t *testing.T) {
	w := DefaultWeights()
	assert.Equal(t, 100.0, w.For(model.Noun))
	assert.Equal(t, 80.0, w.For(model.Adjective))
	assert.Equal(t, 60.0, w.For(model.Verb))
	assert.Equal(t, 40.0, w.For(model.Adverb))
	assert.Equal(t, 20.0, w.For(model.Other))
	assert.Equal(t, 20.0, w.For("unknown"))
}

func TestLexiconAnalyzer(t *testing.T) {
	a := NewLexiconAnalyzer(nil, DefaultWeights())

	tests := []struct {
		name  string
		text  string
		want  []string
		first model.PartOfSpeech
	}{
		{
			name:  "english filename",
			text:  "Metal Door Slam 03",
			want:  []string{"metal", "door", "slam"},
			first: model.Noun,
		},
		{
			name:  "camel case and separators",
			text:  "HeavyDoor_Slams.wav",
			want:  []string{"door", "heavy", "slams", "wav"},
			first: model.Noun,
		},
		{
			name:  "chinese",
			text:  "键盘打字",
			want:  []string{"键盘", "打字"},
			first: model.Noun,
		},
		{
			name:  "stop words and digits removed",
			text:  "the sound of a 123",
			want:  []string{"sound"},
			first: model.Other,
		},
		{
			name: "empty",
			text: "",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.Analyze(tt.text)
			assert.Equal(t, tt.want, wordsOf(got))
			if len(got) > 0 {
				assert.Equal(t, tt.first, got[0].PartOfSpeech)
			}
		})
	}
}

func TestLexicon_Tag(t *testing.T) {
	lex := NewLexicon(map[string]model.PartOfSpeech{"foley": model.Verb})

	assert.Equal(t, model.Noun, lex.Tag("door"))
	assert.Equal(t, model.Verb, lex.Tag("slamming"), "stem lookup")
	assert.Equal(t, model.Adverb, lex.Tag("gradually"), "suffix heuristic")
	assert.Equal(t, model.Verb, lex.Tag("foley"), "extra entries override")
	assert.Equal(t, model.Other, lex.Tag("zzq"))
	assert.Equal(t, model.Noun, lex.Tag("键盘"))
	assert.Equal(t, model.Other, lex.Tag("奇"))
}

func TestLexicon_SegmentHan(t *testing.T) {
	lex := NewLexicon(nil)
	assert.Equal(t, []string{"机器人", "走", "奇"}, lex.SegmentHan("机器人走奇"))
	assert.Equal(t, []string{"关门"}, lex.SegmentHan("关门"))
}

func TestSegmenterAnalyzer(t *testing.T) {
	a := NewSegmenterAnalyzer(nil, DefaultWeights())

	got := a.Analyze("Metal door_slam, 键盘打字!")
	assert.ElementsMatch(t, []string{"metal", "door", "slam", "键盘", "打字"}, wordsOf(got))
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Weight, got[i].Weight)
	}

	assert.Empty(t, a.Analyze("  ...  "))
}

type panicky struct{}

func (panicky) Analyze(string) []model.WeightedWord { panic("boom") }

func TestGuard(t *testing.T) {
	g := Guard(panicky{})
	assert.NotPanics(t, func() {
		assert.Empty(t, g.Analyze("door"))
	})
	assert.Equal(t, g, Guard(g))
}

func TestSelect(t *testing.T) {
	failing := Factory{Name: "broken", New: func() (Analyzer, error) { return nil, errors.New("no backend") }}
	segmenter := Factory{Name: "segmenter", New: func() (Analyzer, error) {
		return NewSegmenterAnalyzer(nil, DefaultWeights()), nil
	}}

	a, name := Select(DefaultWeights(), failing, segmenter)
	assert.Equal(t, "segmenter", name)
	assert.NotEmpty(t, a.Analyze("door"))

	a, name = Select(DefaultWeights(), failing)
	assert.Equal(t, "lexicon", name)
	assert.NotEmpty(t, a.Analyze("door"))
}

func TestParseTag(t *testing.T) {
	assert.Equal(t, model.Noun, ParseTag("NNS"))
	assert.Equal(t, model.Noun, ParseTag("noun"))
	assert.Equal(t, model.Verb, ParseTag("VBD"))
	assert.Equal(t, model.Adjective, ParseTag("ADJ"))
	assert.Equal(t, model.Adverb, ParseTag("RB"))
	assert.Equal(t, model.Other, ParseTag("PUNCT"))
}

func TestRemoteAnalyzer(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var req map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")
		if req["text"] == "test" {
			_, _ = w.Write([]byte(`{"words": []}`))
			return
		}
		_, _ = w.Write([]byte(`{"words": [
			{"word": "Slam", "pos": "VERB"},
			{"word": "door", "pos": "NOUN"},
			{"word": "door", "pos": "NOUN"}
		]}`))
	}))
	defer server.Close()

	a, err := NewRemoteAnalyzer(context.Background(), RemoteConfig{Endpoint: server.URL}, DefaultWeights())
	require.NoError(t, err)

	got := a.Analyze("door slam")
	assert.Equal(t, []string{"door", "slam"}, wordsOf(got))
	assert.Equal(t, int32(2), calls.Load())
}

func TestRemoteAnalyzer_Unavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewRemoteAnalyzer(context.Background(), RemoteConfig{Endpoint: server.URL}, DefaultWeights())
	require.Error(t, err)

	_, err = NewRemoteAnalyzer(context.Background(), RemoteConfig{}, DefaultWeights())
	require.Error(t, err)
}

func TestRemoteAnalyzer_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// Probe succeeds, the next call fails once.
		if calls.Add(1) == 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"words": [{"word": "door", "pos": "NOUN"}]}`))
	}))
	defer server.Close()

	a, err := NewRemoteAnalyzer(context.Background(), RemoteConfig{Endpoint: server.URL}, DefaultWeights())
	require.NoError(t, err)

	assert.Equal(t, []string{"door"}, wordsOf(a.Analyze("door")))
	assert.Equal(t, int32(3), calls.Load())
}

func TestRemoteAnalyzer_DegradesToEmpty(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if healthy.Load() {
			_, _ = w.Write([]byte(`{"words": []}`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	a, err := NewRemoteAnalyzer(context.Background(), RemoteConfig{
		Endpoint:         server.URL,
		FailureThreshold: 1,
		OpenTimeout:      time.Minute,
	}, DefaultWeights())
	require.NoError(t, err)

	healthy.Store(false)
	assert.Empty(t, a.Analyze("door"))
	// Breaker is open now; the call short-circuits and still degrades.
	assert.Empty(t, a.Analyze("door"))
}
