package bst

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in   string
		want Version
	}{
		{"1.4.3\n", Version{1, 4}},
		{"1.93.4", Version{1, 93}},
		{"bst, version 2.2.1", Version{2, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, err := ParseVersion(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}

	for _, bad := range []string{"", "dev", "x.y", "2"} {
		_, err := ParseVersion(bad)
		assert.Error(t, err, bad)
	}
}

func TestCommandsFor(t *testing.T) {
	v1, err := commandsFor(Version{1, 4})
	require.NoError(t, err)
	assert.True(t, v1.workspace)
	assert.Equal(t, []string{"track", "--deps", "none"}, v1.track)
	assert.Equal(t, []string{"--on-error", "continue", "fetch", "--deps", "none"}, v1.fetch)

	for _, v := range []Version{{1, 93}, {2, 0}, {2, 4}} {
		cmds, err := commandsFor(v)
		require.NoError(t, err, v.String())
		assert.False(t, cmds.workspace)
		assert.Equal(t, []string{"source", "track", "--deps", "none"}, cmds.track)
		assert.Equal(t, []string{"--on-error", "continue", "source", "fetch", "--deps", "none"}, cmds.fetch)
	}

	for _, v := range []Version{{1, 91}, {0, 9}, {3, 0}} {
		_, err := commandsFor(v)
		assert.Error(t, err, v.String())
	}
}
