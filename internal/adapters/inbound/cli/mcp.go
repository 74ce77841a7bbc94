package cli

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	mcpadapter "github.com/bst-license-checker/bst-license-checker/internal/adapters/inbound/mcp"
	"github.com/bst-license-checker/bst-license-checker/internal/adapters/outbound/cache"
	"github.com/bst-license-checker/bst-license-checker/internal/domain"
)

func newMCPCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  "Commands for running the bst-license-checker MCP (Model Context Protocol) server.",
	}
	cmd.AddCommand(newMCPServeCmd(g))
	return cmd
}

func newMCPServeCmd(g *globalFlags) *cobra.Command {
	var work, output string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the bst-license-checker MCP server (stdio)",
		Long: `Start an MCP server on stdio. Assistants can look up cached license results
in the work directory and read the last report from the output directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if work == "" {
				return domain.ConfigErrorf("--work is required")
			}
			log := g.logger(cmd)
			s := mcpadapter.NewLicenseMCPServer(cache.New(work, log), output, version)
			return server.ServeStdio(s)
		},
	}

	cmd.Flags().StringVarP(&work, "work", "w", "", "Work directory holding the scan cache")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory of a finished run (enables license_report)")
	return cmd
}
