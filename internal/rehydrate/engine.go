package rehydrate

import (
	"sort"
	"strings"

	"github.com/cadigraph/cadigraph/internal/atomerr"
	"github.com/cadigraph/cadigraph/internal/graphstore"
	"github.com/cadigraph/cadigraph/internal/logging"
	"github.com/cadigraph/cadigraph/internal/model"
)

// Engine assembles VirtualViews from a graphstore.Store. It holds no state
// of its own beyond the store reference — every create_view call is
// independent, matching §4.4's "no user-visible cancellation inside a
// single ... view call" scheduling note.
type Engine struct {
	store *graphstore.Store
}

// New builds a rehydration Engine over store.
func New(store *graphstore.Store) *Engine {
	return &Engine{store: store}
}

// expand implements §4.4's expansion algorithm: BFS from seedIDs across
// edges whose type is AutoExpand(), up to config.ExpansionDepth hops.
// Returns the ghost ids in discovery order (not the seed ∪ ghost union —
// callers combine that themselves per §4.4's "all_atoms = seeds ∪ ghost").
func (e *Engine) expand(seedIDs []string, depth int) ([]string, error) {
	if depth <= 0 {
		return nil, nil
	}

	visited := make(map[string]bool, len(seedIDs))
	for _, id := range seedIDs {
		visited[id] = true
	}

	var ghost []string
	frontier := append([]string(nil), seedIDs...)

	for d := 0; d < depth; d++ {
		var next []string
		for _, cur := range frontier {
			deps, err := e.store.GetDependencies(cur, "")
			if err != nil {
				return nil, err
			}
			for _, edge := range deps {
				if !edge.Type.AutoExpand() {
					continue
				}
				if visited[edge.ID] {
					continue
				}
				visited[edge.ID] = true
				ghost = append(ghost, edge.ID)
				next = append(next, edge.ID)
			}
		}
		frontier = next
		if len(frontier) == 0 {
			break
		}
	}

	return ghost, nil
}

// fetched pairs a resolved node with its content blob, tagged with why it's
// in the view.
type fetched struct {
	atom    model.Atom
	content []byte
	reason  InclusionReason
}

// CreateView implements §4.4 create_view.
func (e *Engine) CreateView(seedIDs []string, config ViewConfig) (VirtualView, error) {
	timer := logging.StartTimer(logging.CategoryRehydration, "CreateView")
	defer timer.Stop()

	if config.MaxTokens <= 0 {
		config.MaxTokens = 1
	}
	if config.Format == "" {
		config.Format = FormatSource
	}

	if len(seedIDs) == 0 {
		return VirtualView{Fragments: []Fragment{}, SymbolLocations: map[string]int{}, Explanation: buildExplanation(0, 0)}, nil
	}

	ghostIDs, err := e.expand(seedIDs, config.ExpansionDepth)
	if err != nil {
		return VirtualView{}, err
	}

	var items []fetched
	resolvedAny := false
	for _, id := range seedIDs {
		node, ok, err := e.store.GetNode(id)
		if err != nil {
			return VirtualView{}, err
		}
		if !ok {
			continue
		}
		resolvedAny = true
		content, _, err := e.store.GetContent(id)
		if err != nil {
			return VirtualView{}, err
		}
		items = append(items, fetched{atom: *node, content: content, reason: ReasonRequested})
	}
	if !resolvedAny {
		if len(seedIDs) == 1 {
			return VirtualView{}, atomerr.ChunkNotFound(seedIDs[0])
		}
		return VirtualView{}, atomerr.ChunkNotFound(strings.Join(seedIDs, ","))
	}

	for _, id := range ghostIDs {
		node, ok, err := e.store.GetNode(id)
		if err != nil {
			return VirtualView{}, err
		}
		if !ok {
			continue // missing ghosts are skipped per §4.4 Failure
		}
		content, _, err := e.store.GetContent(id)
		if err != nil {
			return VirtualView{}, err
		}
		items = append(items, fetched{atom: *node, content: content, reason: ReasonGhostImport})
	}

	language := ""
	if len(items) > 0 {
		language = items[0].atom.Language
	}

	if config.SortByType {
		sort.SliceStable(items, func(i, j int) bool {
			return priorityOf(items[i].atom.Granularity) < priorityOf(items[j].atom.Granularity)
		})
	}

	return assemble(items, config, language)
}

const separatorTag = "chunk"

func assemble(items []fetched, config ViewConfig, language string) (VirtualView, error) {
	var sb strings.Builder
	var atoms, ghostAtoms []string
	var fragments []Fragment
	symbolLocations := make(map[string]int)
	currentLine := 0
	totalTokens := 0
	truncated := false
	requestedCount, ghostCount := 0, 0

	for i, it := range items {
		tokenCount := it.atom.TokenEstimate
		if totalTokens+tokenCount > config.MaxTokens {
			truncated = true
			break
		}

		body := string(it.content)
		if config.Format != FormatJSON {
			body = applyFormat(config.Format, language, body)
		}

		if config.AddSeparators && i > 0 {
			sep := commentPrefixFor(language) + " " + separatorTag + ":" + it.atom.PrimaryAlias + "\n"
			sb.WriteString(sep)
			currentLine++
		}

		startLine := currentLine + 1
		sb.WriteString(body)
		if !strings.HasSuffix(body, "\n") {
			sb.WriteString("\n")
		}
		lineCount := strings.Count(body, "\n")
		if !strings.HasSuffix(body, "\n") {
			lineCount++
		}
		currentLine += lineCount
		endLine := currentLine

		atoms = append(atoms, it.atom.ChunkID)
		if it.reason == ReasonGhostImport {
			ghostAtoms = append(ghostAtoms, it.atom.ChunkID)
			ghostCount++
		} else {
			requestedCount++
		}

		fragments = append(fragments, Fragment{
			ChunkID:         it.atom.ChunkID,
			Alias:           it.atom.PrimaryAlias,
			StartLine:       startLine,
			EndLine:         endLine,
			TokenCount:      tokenCount,
			InclusionReason: it.reason,
			Defines:         it.atom.SymbolsDefined,
		})

		for _, sym := range it.atom.SymbolsDefined {
			symbolLocations[sym] = startLine
		}

		totalTokens += tokenCount
	}

	return VirtualView{
		Source:          sb.String(),
		Atoms:           atoms,
		GhostAtoms:      ghostAtoms,
		Language:        language,
		TokenEstimate:   totalTokens,
		SymbolLocations: symbolLocations,
		Fragments:       fragments,
		Truncated:       truncated,
		Explanation:     buildExplanation(requestedCount, ghostCount),
	}, nil
}

// SignaturesView is the convenience wrapper that forces format=signatures
// regardless of the caller's config.Format (§4.4 Operations).
func (e *Engine) SignaturesView(seedIDs []string, config ViewConfig) (VirtualView, error) {
	config.Format = FormatSignatures
	return e.CreateView(seedIDs, config)
}

// ViewForSymbol resolves identifier via find_symbol (falling back to
// resolve_alias) and builds a view over the resulting chunk id.
func (e *Engine) ViewForSymbol(identifier string, config ViewConfig) (VirtualView, error) {
	chunkID, ok, err := e.store.FindSymbol(identifier)
	if err != nil {
		return VirtualView{}, err
	}
	if !ok {
		chunkID, ok, err = e.store.ResolveAlias(identifier)
		if err != nil {
			return VirtualView{}, err
		}
	}
	if !ok {
		return VirtualView{}, atomerr.ChunkNotFound(identifier)
	}
	return e.CreateView([]string{chunkID}, config)
}

// EstimateTokens implements §4.4 estimate_tokens: the sum of token_estimate
// across the given ids, skipping any that don't resolve.
func (e *Engine) EstimateTokens(ids []string) (int, error) {
	total := 0
	for _, id := range ids {
		node, ok, err := e.store.GetNode(id)
		if err != nil {
			return 0, err
		}
		if !ok {
			continue
		}
		total += node.TokenEstimate
	}
	return total, nil
}
