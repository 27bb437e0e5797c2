package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/insurdesk/claims-desk/internal/domain/checklist"
)

func newCatalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and validate checklist catalogs",
	}
	cmd.AddCommand(newCatalogShowCommand())
	cmd.AddCommand(newCatalogValidateCommand())
	return cmd
}

func newCatalogShowCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a catalog as YAML",
		Long:  `Print the version, sections, mandatory and intake documents of a catalog. Without --file the built-in catalog is shown.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := loadCatalog(file)
			if err != nil {
				return err
			}
			doc, err := catalog.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(doc)
			return err
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "catalog YAML file (default: built-in catalog)")
	return cmd
}

func newCatalogValidateCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a catalog file",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := checklist.LoadFile(file)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "catalog %s is valid\n", catalog.Version())
			for _, t := range catalog.ClaimTypes() {
				fmt.Fprintf(out, "  %s: %d documents, %d mandatory, %d intake\n",
					t, len(catalog.Labels(t)), len(catalog.MandatoryFor(t)), len(catalog.IntakeFor(t)))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "catalog YAML file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
