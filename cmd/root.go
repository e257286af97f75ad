package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kayz/scout/internal/agent"
	"github.com/kayz/scout/internal/config"
	"github.com/kayz/scout/internal/logger"
	"github.com/spf13/cobra"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "scout",
	Short: "scout web research assistant",
	Long: `scout researches topics for you: it searches the web, fetches pages
and asks an AI backend to synthesize structured findings.

Modes:
  scout             Interactive research session (default)
  scout research    One-shot research for a query
  scout history     Browse past research runs
  scout serve       Expose search tools over MCP`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	RunE: runInteractive,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logger.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		logger.SetLevel(level)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info",
		"Log level: trace, debug, info, warn, error, fatal, panic")
}

// researcher is the agent surface the interactive session needs.
type researcher interface {
	Research(ctx context.Context, query string, maxResults int) (agent.ResearchFindings, error)
	QuickSearch(ctx context.Context, query string) (string, error)
}

func runInteractive(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	a, err := agent.New(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	return runSession(a, os.Stdin, os.Stdout, os.Stderr)
}

func runSession(a researcher, in io.Reader, out, errOut io.Writer) error {
	fmt.Fprintln(out, "scout interactive research session")
	fmt.Fprintln(out, "Type a query to research it, 'quick <query>' for a fast pass, or 'exit' to leave.")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\n> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		ctx := context.Background()
		if rest, ok := strings.CutPrefix(line, "quick "); ok {
			report, err := a.QuickSearch(ctx, strings.TrimSpace(rest))
			if err != nil {
				fmt.Fprintf(errOut, "research failed: %v\n", err)
				continue
			}
			fmt.Fprintln(out, report)
			continue
		}

		for {
			findings, err := a.Research(ctx, line, 0)
			if err == nil {
				fmt.Fprintln(out, findings.Render())
				break
			}

			fmt.Fprintf(errOut, "research failed: %v\n", err)
			fmt.Fprint(out, "Try again? (y/n): ")
			if !scanner.Scan() {
				return scanner.Err()
			}
			answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
			if answer != "y" && answer != "yes" {
				break
			}
		}
	}

	return scanner.Err()
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
