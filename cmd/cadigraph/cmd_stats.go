package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print row counts across the graph store's partitions",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return fmt.Errorf("open graph store: %w", err)
	}
	defer store.Close()

	stats, err := store.Stats()
	if err != nil {
		return err
	}

	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%-14s %d\n", name, stats[name])
	}
	return nil
}
