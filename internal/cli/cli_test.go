package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/ucsname/internal/model"
)

func TestConfirm(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		defaultYes bool
		want       bool
		wantErr    error
	}{
		{name: "yes", input: "y\n", want: true},
		{name: "no", input: "no\n", want: false},
		{name: "empty takes default yes", input: "\n", defaultYes: true, want: true},
		{name: "empty takes default no", input: "\n", want: false},
		{name: "retry after invalid", input: "maybe\nYES\n", want: true},
		{name: "answer without newline", input: "y", want: true},
		{name: "eof", input: "", wantErr: ErrInputTerminated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := Confirm(context.Background(), NewNonBlockingReader(strings.NewReader(tt.input)), &out, "Reset?", tt.defaultYes)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "Reset?")
		})
	}
}

func TestConfirm_RepromptsOnInvalid(t *testing.T) {
	var out bytes.Buffer
	_, err := Confirm(context.Background(), NewNonBlockingReader(strings.NewReader("x\nn\n")), &out, "Clear?", false)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out.String(), "Clear?"))
	assert.Contains(t, out.String(), "Please answer y or n.")
}

func TestReporter(t *testing.T) {
	var out bytes.Buffer
	r := NewReporter(&out, 4, false)

	var wg sync.WaitGroup
	results := []*model.ClassificationResult{
		{CategoryID: "OBJImpt", Strategy: "partOfSpeech"},
		{CategoryID: "METLImpt", Strategy: "keyword"},
		{CategoryID: "OBJImpt", Strategy: "partOfSpeech"},
	}
	for _, res := range results {
		wg.Add(1)
		go func(res *model.ClassificationResult) {
			defer wg.Done()
			r.Record(res, nil)
		}(res)
	}
	wg.Wait()
	r.Record(nil, nil)

	stats := r.Stats()
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 3, stats.Classified)
	assert.Equal(t, 1, stats.Unmatched)
	assert.Equal(t, 0, stats.Failed)
	assert.Equal(t, map[string]int{"partOfSpeech": 2, "keyword": 1}, stats.ByStrategy)

	r.ShowCompletion()
	summary := out.String()
	assert.Contains(t, summary, "Classification Complete")
	assert.Contains(t, summary, "Classified: 3 (75.0%)")
	assert.Contains(t, summary, "partOfSpeech: 2")
	assert.NotContains(t, summary, "Failed")
}

func TestReporter_Failures(t *testing.T) {
	var out bytes.Buffer
	r := NewReporter(&out, 1, true)
	r.Record(nil, errors.New("boom"))
	r.ShowCompletion()

	assert.Equal(t, 1, r.Stats().Failed)
	assert.Contains(t, out.String(), "Failed: 1")
}

func TestReporter_StatsIsCopy(t *testing.T) {
	r := NewReporter(&bytes.Buffer{}, 1, false)
	r.Record(&model.ClassificationResult{Strategy: "exact"}, nil)

	stats := r.Stats()
	stats.ByStrategy["exact"] = 99
	assert.Equal(t, 1, r.Stats().ByStrategy["exact"])
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(
		[]string{"File", "CatID"},
		[][]string{{"door.wav", "OBJImpt"}, {"键盘.wav", "OBJKbrd"}},
	)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Contains(t, out, "File")
	assert.Contains(t, out, "door.wav")
	assert.Contains(t, out, "OBJKbrd")
}

func TestFormatResult(t *testing.T) {
	res := &model.ClassificationResult{
		CategoryID:           "OBJImpt",
		SubCategory:          "IMPACT",
		SubCategoryLocalized: "撞击",
		Strategy:             "partOfSpeech",
		Score:                70,
	}
	line := FormatResult("door.wav", res)
	assert.Contains(t, line, "door.wav")
	assert.Contains(t, line, "OBJImpt")
	assert.Contains(t, line, "IMPACT / 撞击")
	assert.Contains(t, line, "partOfSpeech 70")

	assert.Contains(t, FormatResult("x.wav", nil), "no match")

	row := ResultRow("door.wav", res)
	assert.Equal(t, []string{"door.wav", "OBJImpt", " / IMPACT", "partOfSpeech", "70.0"}, row)
}
