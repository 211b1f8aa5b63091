package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/ucsname/internal/model"
	"github.com/Veraticus/ucsname/internal/terms"
)

func TestSetupTestDBWithOptions(t *testing.T) {
	ctx := context.Background()
	store := SetupTestDBWithOptions(t, TestDBOptions{
		Settings: map[string]string{"strategy.exact.enabled": "false"},
		History: []*model.HistoryEntry{
			{Filename: "door slam.wav", Result: &model.ClassificationResult{CategoryID: "OBJImpt", Score: 100}},
		},
	})

	settings, err := store.LoadSettings(ctx, "strategy.")
	require.NoError(t, err)
	assert.Equal(t, "false", settings["strategy.exact.enabled"])

	entries, err := store.ListHistory(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "door slam.wav", entries[0].Filename)
}

func TestTermBuilder(t *testing.T) {
	b := NewTermBuilder(t).WithBasicTerms()

	table := b.Table()
	assert.Equal(t, 5, table.Len())
	assert.Equal(t, []string{"OBJImpt", "METLImpt", "OBJKbrd", "WTHRThun"}, table.Categories())

	loaded := terms.NewTable()
	records, err := loaded.Load(b.CSV())
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, "OBJ", records[0].CategoryName)
	assert.Equal(t, []string{"lightning strike", "rumble"}, records[4].Synonyms)
}
