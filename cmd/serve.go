package cmd

import (
	"github.com/kayz/scout/internal/tools"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose web search and fetch tools over MCP stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := server.NewMCPServer("scout", serverVersion,
			server.WithToolCapabilities(false),
		)

		s.AddTool(mcp.NewTool("web_search",
			mcp.WithDescription("Search the web and return titles, URLs and snippets"),
			mcp.WithString("query",
				mcp.Required(),
				mcp.Description("The search query"),
			),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of results (default 5)"),
			),
		), tools.WebSearch)

		s.AddTool(mcp.NewTool("web_fetch",
			mcp.WithDescription("Fetch the readable text content of a web page"),
			mcp.WithString("url",
				mcp.Required(),
				mcp.Description("The URL to fetch"),
			),
		), tools.WebFetch)

		return server.ServeStdio(s)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
