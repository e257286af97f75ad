package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/kayz/scout/internal/agent"
	"github.com/kayz/scout/internal/config"
	"github.com/spf13/cobra"
)

var (
	researchJSON       bool
	researchMaxResults int
	researchQuick      bool
)

var researchCmd = &cobra.Command{
	Use:   "research <query>",
	Short: "Run a one-shot research pass for a query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		a, err := agent.New(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := context.Background()

		if researchQuick {
			report, err := a.QuickSearch(ctx, query)
			if err != nil {
				return err
			}
			fmt.Println(report)
			return nil
		}

		findings, err := a.Research(ctx, query, researchMaxResults)
		if err != nil {
			return err
		}

		if researchJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(findings)
		}

		fmt.Println(findings.Render())
		return nil
	},
}

func init() {
	researchCmd.Flags().BoolVar(&researchJSON, "json", false, "Emit findings as JSON")
	researchCmd.Flags().IntVar(&researchMaxResults, "max-results", 0, "Maximum search results per tool call (0 uses the configured default)")
	researchCmd.Flags().BoolVar(&researchQuick, "quick", false, "Fast pass with fewer results and a plain text report")
	rootCmd.AddCommand(researchCmd)
}
