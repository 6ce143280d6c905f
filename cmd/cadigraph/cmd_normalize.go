package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cadigraph/cadigraph/internal/normalizer"
)

var (
	normalizeLanguage string
	normalizeShowHash bool
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize [file]",
	Short: "Run the semantic normalizer standalone (reads stdin when file is omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runNormalize,
}

func init() {
	normalizeCmd.Flags().StringVar(&normalizeLanguage, "language", "", "language tag (see normalizer.SupportedLanguages)")
	normalizeCmd.Flags().BoolVar(&normalizeShowHash, "hash-only", false, "print only the semantic hash")
	normalizeCmd.MarkFlagRequired("language")
}

func runNormalize(cmd *cobra.Command, args []string) error {
	var src []byte
	var err error
	if len(args) == 1 {
		src, err = os.ReadFile(args[0])
	} else {
		src, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}

	result, err := normalizer.Normalize(string(src), normalizeLanguage)
	if err != nil {
		return err
	}

	if normalizeShowHash {
		fmt.Println(result.Hash)
		return nil
	}

	fmt.Println("--- alpha-renamed ---")
	fmt.Println(result.AlphaRenamed)
	fmt.Println("--- canonical ---")
	fmt.Println(result.Canonical)
	fmt.Println("--- hash ---")
	fmt.Println(result.Hash)
	return nil
}
