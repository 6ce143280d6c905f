package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cadigraph/cadigraph/internal/config"
	"github.com/cadigraph/cadigraph/internal/graphstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(filepath.Join(dir, name)), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestWalkSkipsHiddenDirsAndIgnoreGlobs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.go", "package main\nfunc main() {}\n")
	writeFile(t, dir, ".git/config", "ignored")
	writeFile(t, dir, "vendor/lib.go", "package lib\n")
	writeFile(t, dir, "README.md", "not atomizable")

	cfg := config.DefaultAtomizerConfig()
	files, err := Walk(context.Background(), dir, cfg)
	require.NoError(t, err)

	var paths []string
	for _, f := range files {
		paths = append(paths, filepath.Base(f.Path))
	}
	assert.Contains(t, paths, "main.go")
	assert.NotContains(t, paths, "config")
	assert.NotContains(t, paths, "lib.go")
	assert.NotContains(t, paths, "README.md")
}

func TestRunIngestsFilesAndResolvesImports(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.go", `package p

import "fmt"

func A() {
	fmt.Println("hi")
}
`)

	store, err := graphstore.Open(filepath.Join(t.TempDir(), "graph.db"))
	require.NoError(t, err)
	defer store.Close()

	cfg := *config.DefaultConfig()
	result, err := Run(context.Background(), dir, store, cfg)
	require.NoError(t, err)

	assert.Equal(t, 1, result.FilesScanned)
	assert.Greater(t, result.AtomsWritten, 0)
	assert.Empty(t, result.Errors)

	nodes, err := store.ListNodes()
	require.NoError(t, err)
	assert.NotEmpty(t, nodes)
}
