package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/cadigraph/cadigraph/internal/rehydrate"
)

var (
	viewDepth      int
	viewMaxTokens  int
	viewFormat     string
	viewSortByType bool
	viewSeparators bool
	viewSymbol     string
	viewReport     bool
)

var viewCmd = &cobra.Command{
	Use:   "view <chunk-id>...",
	Short: "Assemble a virtual view from one or more seed atom ids",
	RunE:  runView,
}

func init() {
	viewCmd.Flags().IntVar(&viewDepth, "depth", 1, "ghost-import expansion depth")
	viewCmd.Flags().IntVar(&viewMaxTokens, "max-tokens", 8000, "token budget")
	viewCmd.Flags().StringVar(&viewFormat, "format", "source", "source|minimal|documented|signatures|json")
	viewCmd.Flags().BoolVar(&viewSortByType, "sort-by-type", true, "reorder atoms by declaration kind before emission")
	viewCmd.Flags().BoolVar(&viewSeparators, "separators", true, "inject a comment separator between atoms")
	viewCmd.Flags().StringVar(&viewSymbol, "symbol", "", "resolve a symbol/alias instead of passing chunk ids")
	viewCmd.Flags().BoolVar(&viewReport, "report", false, "render a markdown fragment report above the source, via glamour")
}

var viewHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A"))

func runView(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return fmt.Errorf("open graph store: %w", err)
	}
	defer store.Close()

	engine := rehydrate.New(store)
	viewCfg := rehydrate.ViewConfig{
		ExpansionDepth: viewDepth,
		MaxTokens:      viewMaxTokens,
		Format:         rehydrate.Format(viewFormat),
		SortByType:     viewSortByType,
		AddSeparators:  viewSeparators,
	}

	var result rehydrate.VirtualView
	if viewSymbol != "" {
		result, err = engine.ViewForSymbol(viewSymbol, viewCfg)
	} else {
		if len(args) == 0 {
			return fmt.Errorf("pass at least one chunk id, or --symbol <name>")
		}
		result, err = engine.CreateView(args, viewCfg)
	}
	if err != nil {
		return err
	}

	fmt.Println(viewHeaderStyle.Render(fmt.Sprintf("view: %s", result.Explanation)))
	fmt.Printf("language=%s tokens=%d truncated=%v atoms=%d ghosts=%d\n",
		result.Language, result.TokenEstimate, result.Truncated, len(result.Atoms), len(result.GhostAtoms))

	if viewReport {
		rendered, err := renderFragmentReport(result)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: render fragment report: %v\n", err)
		} else {
			fmt.Println(rendered)
		}
	}

	fmt.Println(strings.Repeat("-", 60))
	fmt.Println(result.Source)
	return nil
}

// renderFragmentReport builds a small markdown table of the view's
// fragments (chunk id, inclusion reason, line range, token count) and
// renders it through glamour for readable terminal output, grounded on
// the teacher's cmd/nerd/chat.go use of glamour.NewTermRenderer for
// rendering assistant markdown replies.
func renderFragmentReport(view rehydrate.VirtualView) (string, error) {
	var md strings.Builder
	md.WriteString("| chunk | reason | lines | tokens |\n")
	md.WriteString("|---|---|---|---|\n")
	for _, f := range view.Fragments {
		fmt.Fprintf(&md, "| %s | %s | %d-%d | %d |\n",
			f.Alias, f.InclusionReason, f.StartLine, f.EndLine, f.TokenCount)
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(md.String())
}
