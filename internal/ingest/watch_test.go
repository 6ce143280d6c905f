package ingest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadigraph/cadigraph/internal/config"
	"github.com/cadigraph/cadigraph/internal/graphstore"
)

func TestWatcherReingestsOnFileChange(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.go", "package p\nfunc A() {}\n")

	store, err := graphstore.Open(filepath.Join(t.TempDir(), "graph.db"))
	require.NoError(t, err)
	defer store.Close()

	cfg := *config.DefaultConfig()
	_, err = Run(context.Background(), dir, store, cfg)
	require.NoError(t, err)

	reingested := make(chan Result, 1)
	w, err := NewWatcher(dir, store, cfg, func(result Result, err error) {
		if err == nil {
			reingested <- result
		}
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer w.Stop()

	writeFile(t, dir, "b.go", "package p\nfunc B() {}\n")

	select {
	case result := <-reingested:
		assert.GreaterOrEqual(t, result.FilesScanned, 2)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for watcher re-ingest")
	}
}
