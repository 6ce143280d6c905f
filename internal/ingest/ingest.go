package ingest

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/cadigraph/cadigraph/internal/atomerr"
	"github.com/cadigraph/cadigraph/internal/atomizer"
	"github.com/cadigraph/cadigraph/internal/config"
	"github.com/cadigraph/cadigraph/internal/graphstore"
	"github.com/cadigraph/cadigraph/internal/logging"
	"github.com/cadigraph/cadigraph/internal/model"
)

// Result summarizes one Run call.
type Result struct {
	FilesScanned int
	AtomsWritten int
	EdgesWritten int
	Errors       []error
}

// Run walks root, atomizes every recognized file concurrently (bounded by
// cfg.Ingest.Workers via golang.org/x/sync/errgroup, mirroring the
// teacher's own worker-pool idiom for CPU-bound fan-out), builds a
// module-wide symbol index, resolves import edges against it, and writes
// every atom into store.
func Run(ctx context.Context, root string, store *graphstore.Store, cfg config.Config) (Result, error) {
	timer := logging.StartTimer(logging.CategoryAtomizer, "Run:"+root)
	defer timer.Stop()

	files, err := Walk(ctx, root, cfg.Atomizer)
	if err != nil {
		return Result{}, err
	}

	type extraction struct {
		file  scannedFile
		atoms []model.Atom
		err   error
	}
	extracted := make([]extraction, len(files))

	workers := cfg.Ingest.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	a := atomizer.New()

	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			atoms, err := a.Extract(f.Path, f.Language, f.Content)
			extracted[i] = extraction{file: f, atoms: atoms, err: err}
			return nil
		})
	}
	_ = g.Wait()

	symbolIndex := make(map[string]string)
	var allAtoms []model.Atom
	var errs []error

	for _, e := range extracted {
		if e.err != nil {
			logging.AtomizerWarn("extraction failed for %s: %v", e.file.Path, e.err)
			errs = append(errs, e.err)
			continue
		}
		for _, atom := range e.atoms {
			for _, sym := range atom.SymbolsDefined {
				symbolIndex[sym] = atom.ChunkID
			}
			allAtoms = append(allAtoms, atom)
		}
	}

	var imports []model.Atom
	var bodies []model.Atom
	for _, atom := range allAtoms {
		if atom.Granularity == model.GranularityImport || atom.Granularity == model.GranularityHeader {
			imports = append(imports, atom)
		} else {
			bodies = append(bodies, atom)
		}
	}
	a.ResolveImports(imports, symbolIndex)

	allAtoms = append(bodies, imports...)

	result := Result{FilesScanned: len(files), Errors: errs}
	for _, atom := range allAtoms {
		content, _, _ := contentForAtom(files, atom)
		if err := store.InsertNode(atom, content); err != nil {
			result.Errors = append(result.Errors, atomerr.Wrap(atomerr.KindStorageError, "insert "+atom.ChunkID, err))
			continue
		}
		result.AtomsWritten++
		for _, edge := range atom.OutgoingEdges {
			if err := store.AddDependency(atom.ChunkID, edge.Type, edge.ID); err != nil {
				result.Errors = append(result.Errors, err)
				continue
			}
			result.EdgesWritten++
		}
	}

	return result, nil
}

// contentForAtom re-slices the owning file's bytes for an atom's source
// line range, so the graph store's content partition holds exactly the
// bytes the atomizer extracted rather than the whole file.
func contentForAtom(files []scannedFile, atom model.Atom) ([]byte, bool, error) {
	for _, f := range files {
		if f.Path != atom.SourceFile {
			continue
		}
		if atom.SourceLines == nil {
			return f.Content, true, nil
		}
		lines := splitLines(f.Content)
		start, end := atom.SourceLines.Start-1, atom.SourceLines.End
		if start < 0 {
			start = 0
		}
		if end > len(lines) {
			end = len(lines)
		}
		if start >= end {
			return f.Content, true, nil
		}
		return joinLines(lines[start:end]), true, nil
	}
	return nil, false, nil
}

func splitLines(content []byte) [][]byte {
	var lines [][]byte
	start := 0
	for i, b := range content {
		if b == '\n' {
			lines = append(lines, content[start:i])
			start = i + 1
		}
	}
	lines = append(lines, content[start:])
	return lines
}

func joinLines(lines [][]byte) []byte {
	var out []byte
	for i, l := range lines {
		if i > 0 {
			out = append(out, '\n')
		}
		out = append(out, l...)
	}
	return out
}
