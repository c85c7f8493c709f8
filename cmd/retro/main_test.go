package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/bodgit/retro"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSplit(t *testing.T) {
	tests := []struct {
		in    string
		split retro.Split
		ok    bool
	}{
		{"120:4", retro.Split{Line: 120, ScrollX: 4}, true},
		{"0:-2.5", retro.Split{Line: 0, ScrollX: -2.5}, true},
		{"120", retro.Split{}, false},
		{"x:4", retro.Split{}, false},
		{"120:y", retro.Split{}, false},
	}

	for _, test := range tests {
		t.Run(test.in, func(t *testing.T) {
			split, err := parseSplit(test.in)
			if !test.ok {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, test.split, split)
		})
	}
}

func TestShortFlags(t *testing.T) {
	dir := t.TempDir()

	app := newApp(dir)
	buf := new(bytes.Buffer)
	app.Writer = buf
	require.NoError(t, app.Run([]string{"retro", "-V"}))
	assert.Contains(t, buf.String(), app.Version)

	app = newApp(dir)
	app.Writer = new(bytes.Buffer)
	assert.NoError(t, app.Run([]string{"retro", "-v", "--db", filepath.Join(dir, "retro.db"), "batch", dir}))
}
