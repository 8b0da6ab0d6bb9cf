package commands

import (
	"log/slog"
	"strings"
	"timesales-scraper/internal/dedup"
	"timesales-scraper/lib/serviceutil"

	"github.com/spf13/cobra"
)

// defaultDatasets covers the scraper outputs plus the copies the
// dashboard serves.
var defaultDatasets = map[string]dedup.Kind{
	"trades.json":                       dedup.KindTrades,
	"depth_chart.json":                  dedup.KindDepthRows,
	"dashboard/public/trades.json":      dedup.KindTrades,
	"dashboard/public/depth_chart.json": dedup.KindDepthRows,
}

var dedupFiles *[]string

func init() {
	dedupFiles = dedupCmd.Flags().StringSlice("file", nil,
		"Dataset file to deduplicate, repeatable. Defaults to the standard output files.")
	rootCmd.AddCommand(dedupCmd)
}

func kindForFile(filename string) dedup.Kind {
	if kind, ok := defaultDatasets[filename]; ok {
		return kind
	}
	if strings.Contains(filename, "depth") {
		return dedup.KindDepthRows
	}
	return dedup.KindTrades
}

var dedupCmd = &cobra.Command{
	Use:   "dedup [dataset.json ...]",
	Short: "Removes duplicate records from the dataset files in place.",
	Example: `  timesales-cli dedup
  timesales-cli dedup trades.json`,
	Run: func(cmd *cobra.Command, args []string) {
		files := append(args, *dedupFiles...)
		if len(files) == 0 {
			for f := range defaultDatasets {
				files = append(files, f)
			}
		}

		total := 0
		for _, f := range files {
			removed, err := dedup.Run(f, kindForFile(f))
			if err != nil {
				serviceutil.Fatal("failed to deduplicate "+f, err)
			}
			total += removed
		}
		slog.Info("deduplication complete", "files", len(files), "removed", total)
	},
}
