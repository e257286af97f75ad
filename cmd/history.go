package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/kayz/scout/internal/config"
	"github.com/kayz/scout/internal/history"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [id or keyword]",
	Short: "Browse past research runs",
	Long: `Without arguments, lists recent research runs. With an argument,
shows the run with that id in full, or falls back to a keyword search
over queries and summaries.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		store, err := history.Open(cfg.DatabasePath())
		if err != nil {
			return fmt.Errorf("open history store: %w", err)
		}
		defer store.Close()

		ctx := context.Background()

		var records []history.Record
		if len(args) == 1 {
			rec, err := store.Get(ctx, args[0])
			if err != nil {
				return err
			}
			if rec != nil {
				fmt.Print(renderRecord(*rec))
				return nil
			}
			records, err = store.Search(ctx, args[0], historyLimit)
			if err != nil {
				return err
			}
		} else {
			records, err = store.Recent(ctx, historyLimit)
			if err != nil {
				return err
			}
		}

		if len(records) == 0 {
			fmt.Println("No research runs recorded.")
			return nil
		}

		for _, rec := range records {
			fmt.Printf("%s  %s  [%s]  %s\n", rec.ID, rec.CreatedAt.Format("2006-01-02 15:04"), rec.Provider, rec.Query)
			if rec.Summary != "" {
				fmt.Printf("    %s\n", firstLine(rec.Summary))
			}
		}
		return nil
	},
}

// renderRecord formats one stored run in full, findings and sources
// included.
func renderRecord(rec history.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Research Query: %s\n", rec.Query)
	fmt.Fprintf(&b, "Run: %s (%s, %s)\n\n", rec.ID, rec.Provider, rec.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Summary: %s\n\n", rec.Summary)
	b.WriteString("Key Findings:\n")
	for i, finding := range rec.KeyFindings {
		fmt.Fprintf(&b, "%d. %s\n", i+1, finding)
	}
	fmt.Fprintf(&b, "\nSources: %s\n", strings.Join(rec.Sources, ", "))
	return b.String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i != -1 {
		return s[:i]
	}
	return s
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to show")
	rootCmd.AddCommand(historyCmd)
}
