// Package cli implements claimctl, the offline admin tool for checklist
// catalogs and completeness checks.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/insurdesk/claims-desk/internal/domain/checklist"
)

// Version is stamped at build time
var Version = "dev"

// NewRootCommand builds the claimctl command tree
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "claimctl",
		Short: "claimctl - claim document checklist tooling",
		Long: `claimctl inspects and validates checklist catalogs and evaluates
claim completeness offline, without a running claims desk server.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.AddCommand(newVersionCommand())
	root.AddCommand(newCatalogCommand())
	root.AddCommand(newChecklistCommand())
	return root
}

// Execute runs the root command
func Execute() error {
	return NewRootCommand().Execute()
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "claimctl %s\n", Version)
		},
	}
}

// loadCatalog reads path, or the built-in catalog when path is empty
func loadCatalog(path string) (*checklist.Catalog, error) {
	if path == "" {
		return checklist.Default()
	}
	return checklist.LoadFile(path)
}
