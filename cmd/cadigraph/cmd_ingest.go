package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cadigraph/cadigraph/internal/graphstore"
	"github.com/cadigraph/cadigraph/internal/ingest"
	"github.com/cadigraph/cadigraph/internal/logging"
)

var ingestWatch bool

var ingestCmd = &cobra.Command{
	Use:   "ingest <path>",
	Short: "Atomize a source tree and write it into the graph store",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestWatch, "watch", false, "keep running, re-ingesting on file changes (Ctrl-C to stop)")
}

func runIngest(cmd *cobra.Command, args []string) error {
	root := args[0]
	reqLog := logging.WithRequestID(logging.CategoryCLI, uuid.NewString())
	reqLog.Info("starting ingest of %s", root)

	store, err := openStore()
	if err != nil {
		return fmt.Errorf("open graph store: %w", err)
	}
	defer store.Close()

	result, err := ingest.Run(context.Background(), root, store, *cfg)
	if err != nil {
		reqLog.Error("ingest of %s failed: %v", root, err)
		return fmt.Errorf("ingest %s: %w", root, err)
	}
	reqLog.Info("ingest of %s complete: %d file(s), %d atom(s), %d edge(s)",
		root, result.FilesScanned, result.AtomsWritten, result.EdgesWritten)

	printResult(result)
	if err := store.Flush(); err != nil {
		return err
	}

	if !ingestWatch {
		return nil
	}
	return watchAndReingest(root, store)
}

func printResult(result ingest.Result) {
	fmt.Printf("scanned %d file(s), wrote %d atom(s) and %d edge(s)\n",
		result.FilesScanned, result.AtomsWritten, result.EdgesWritten)
	for _, e := range result.Errors {
		fmt.Printf("  warning: %v\n", e)
	}
}

func watchAndReingest(root string, store *graphstore.Store) error {
	w, err := ingest.NewWatcher(root, store, *cfg, func(result ingest.Result, err error) {
		if err != nil {
			fmt.Printf("re-ingest failed: %v\n", err)
			return
		}
		fmt.Printf("re-ingested: ")
		printResult(result)
	})
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	w.Start(ctx)
	<-ctx.Done()
	w.Stop()
	return nil
}
