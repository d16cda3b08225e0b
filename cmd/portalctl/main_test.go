package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunRejectsUnknownCommand(t *testing.T) {
	var out bytes.Buffer
	assert.ErrorIs(t, run(context.Background(), nil, &out), errUsage)
	assert.ErrorIs(t, run(context.Background(), []string{"frobnicate"}, &out), errUsage)
	assert.ErrorIs(t, run(context.Background(), []string{"jobs"}, &out), errUsage)
}

func TestRunExportsFromMemoryStore(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	path := filepath.Join(t.TempDir(), "out.xlsx")
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"export-curriculum", "--out", path}, &out))
	assert.Equal(t, "wrote 8 entries to "+path+"\n", out.String())
	assert.FileExists(t, path)
}
