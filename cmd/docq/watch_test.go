package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thisisjab/docq/config"
)

func TestWatchRunsInitialQuery(t *testing.T) {
	chdir(t, t.TempDir())
	path := seedStore(t)

	cfg := config.Default()
	cfg.Database.Path = path
	cfg.Output.Pretty = false

	// A cancelled context stops the loop right after the initial run.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout bytes.Buffer
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	require.NoError(t, runWatch(ctx, cfg, logger, &stdout, "age >= 21"))

	docs := decodeDocs(t, stdout.String())
	require.Len(t, docs, 1)
	assert.Equal(t, "B", docs[0]["name"])
}

func TestWatchRejectsBadExpression(t *testing.T) {
	chdir(t, t.TempDir())

	cfg := config.Default()
	err := runWatch(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), io.Discard, "age >")
	assert.Error(t, err)
}
