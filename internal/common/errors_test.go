package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatError(t *testing.T) {
	err := NewFormatError("term table", ErrMissingColumn, "catid")
	assert.Equal(t, "term table: missing required column: catid", err.Error())
	assert.True(t, errors.Is(err, ErrMissingColumn))

	wrapped := fmt.Errorf("load: %w", err)
	assert.True(t, IsFormatError(wrapped))
	assert.False(t, IsFormatError(ErrNotFound))
}

func TestCompileInsensitive(t *testing.T) {
	tests := []struct {
		pattern string
		text    string
		want    bool
	}{
		{pattern: "GLITCH", text: "glitchy robot", want: true},
		{pattern: "(?:Glitch|Stutter)", text: "glitchy robot", want: true},
		{pattern: "(?P<kind>Whoosh)_\\d+", text: "whoosh_12", want: true},
		{pattern: "(?s)Door.Slam", text: "door\nslam", want: true},
		{pattern: "(?-i)Glitch", text: "glitchy robot", want: false},
	}
	for _, tt := range tests {
		re, err := CompileInsensitive(tt.pattern, "test")
		require.NoError(t, err, tt.pattern)
		assert.Equal(t, tt.want, re.MatchString(tt.text), tt.pattern)
	}

	_, err := CompileInsensitive("([a-z", "rule r1")
	require.Error(t, err)
	var pe *PatternError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "rule r1", pe.Source)
}

func TestUserError(t *testing.T) {
	err := NewUserError("could not classify", ErrNotLoaded)
	assert.Equal(t, "could not classify: table not loaded", err.Error())
	assert.ErrorIs(t, err, ErrNotLoaded)
	assert.Equal(t, "plain", NewUserError("plain", nil).Error())
}

func TestParseLevel(t *testing.T) {
	_, err := ParseLevel("loud")
	assert.Error(t, err)
	lvl, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", lvl.String())
}
