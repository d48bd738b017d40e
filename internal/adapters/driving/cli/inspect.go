package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/internrec/internal/core/domain"
)

var inspectJSON bool

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show information about the bundle",
	Long: `Prints the bundle's id, creation time, distance metric, vocabulary size,
listing count and columns without building the pipeline.`,
	Args: cobra.NoArgs,
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, _ []string) error {
	if bundleService == nil {
		return errors.New("bundle service not configured")
	}

	info, err := bundleService.Inspect(context.Background())
	if err != nil {
		return fmt.Errorf("inspect failed: %w", err)
	}

	if inspectJSON {
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal bundle info: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	printBundleInfo(cmd.OutOrStdout(), info)
	return nil
}

func printBundleInfo(w io.Writer, info *domain.BundleInfo) {
	fmt.Fprintln(w, "Bundle")
	fmt.Fprintln(w, "======")
	fmt.Fprintf(w, "  Path:       %s\n", info.Path)
	fmt.Fprintf(w, "  ID:         %s\n", info.ID)
	fmt.Fprintf(w, "  Created:    %s\n", info.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "  Format:     v%d\n", info.FormatVersion)
	fmt.Fprintf(w, "  Metric:     %s\n", info.Metric)
	fmt.Fprintf(w, "  Norm:       %s\n", info.Norm)
	fmt.Fprintf(w, "  Vocabulary: %d terms\n", info.VocabularySize)
	fmt.Fprintf(w, "  Listings:   %d\n", info.ListingCount)
	fmt.Fprintf(w, "  Columns:    %s\n", strings.Join(info.Columns, ", "))
}
