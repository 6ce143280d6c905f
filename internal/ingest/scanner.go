// Package ingest walks a source tree, atomizes every recognized file, and
// populates a graphstore.Store with the resulting nodes and edges. The
// directory-walk shape (bounded worker pool via a semaphore channel, hidden
// directory allow-list, language detection by extension) is adapted from
// internal/world/fs.go's Scanner.ScanDirectory, with the Mangle fact
// emission and the teacher's FileCache layer dropped — this package target
// model.Atom output, not core.Fact, and the FileCache type it would have
// reused no longer exists anywhere in this tree.
package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cadigraph/cadigraph/internal/atomizer"
	"github.com/cadigraph/cadigraph/internal/config"
	"github.com/cadigraph/cadigraph/internal/logging"
)

// allowedHiddenDirs mirrors fs.go's "blind spot" allow-list: most
// dot-directories are skipped, but a few carry source worth indexing.
var allowedHiddenDirs = map[string]bool{
	".github":   true,
	".circleci": true,
	".config":   true,
}

// scannedFile is one file discovered by Walk, ready for atomization.
type scannedFile struct {
	Path     string
	Language string
	Content  []byte
}

// Walk discovers every atomizable file under root, skipping ignored globs
// and oversized files per cfg. Files are read and returned in Walk's
// goroutine pool, bounded at 20 concurrent reads.
func Walk(ctx context.Context, root string, cfg config.AtomizerConfig) ([]scannedFile, error) {
	timer := logging.StartTimer(logging.CategoryAtomizer, "Walk:"+root)
	defer timer.Stop()

	var (
		mu      sync.Mutex
		results []scannedFile
		wg      sync.WaitGroup
	)
	sem := make(chan struct{}, 20)

	walkErr := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err != nil {
			logging.AtomizerWarn("walk error at %s: %v", path, err)
			return nil
		}

		if info.IsDir() {
			name := info.Name()
			if strings.HasPrefix(name, ".") && name != "." && !allowedHiddenDirs[name] {
				return filepath.SkipDir
			}
			if matchesIgnoreGlob(path, cfg.IgnoreGlobs) {
				return filepath.SkipDir
			}
			return nil
		}

		if cfg.MaxFileSizeBytes > 0 && info.Size() > cfg.MaxFileSizeBytes {
			logging.AtomizerDebug("skipping oversized file: %s (%d bytes)", path, info.Size())
			return nil
		}
		if matchesIgnoreGlob(path, cfg.IgnoreGlobs) {
			return nil
		}

		language, ok := atomizer.LanguageForPath(path)
		if !ok {
			return nil
		}

		wg.Add(1)
		go func(path, language string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			content, err := os.ReadFile(path)
			if err != nil {
				logging.AtomizerWarn("failed to read %s: %v", path, err)
				return
			}

			mu.Lock()
			results = append(results, scannedFile{Path: path, Language: language, Content: content})
			mu.Unlock()
		}(path, language)

		return nil
	})

	wg.Wait()
	if walkErr != nil {
		return nil, walkErr
	}
	return results, nil
}

// matchesIgnoreGlob reports whether path matches any of the given
// filepath.Match-style glob patterns, checked against every path
// component boundary (so "vendor/**" matches "repo/vendor/x/y.go").
func matchesIgnoreGlob(path string, globs []string) bool {
	slashPath := filepath.ToSlash(path)
	for _, glob := range globs {
		glob = strings.TrimSuffix(glob, "/**")
		if strings.Contains(slashPath, "/"+glob+"/") || strings.HasPrefix(slashPath, glob+"/") {
			return true
		}
		if ok, _ := filepath.Match(glob, filepath.Base(path)); ok {
			return true
		}
	}
	return false
}
