package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/insurdesk/claims-desk/internal/domain/completeness"
	"github.com/insurdesk/claims-desk/internal/domain/entity"
	"github.com/insurdesk/claims-desk/internal/domain/workflow"
	"github.com/insurdesk/claims-desk/internal/infrastructure/export"
)

type checklistOptions struct {
	catalogFile string
	claimType   string
	claimID     string
	evidence    []string
	format      string
	out         string
}

func newChecklistCommand() *cobra.Command {
	opts := &checklistOptions{}

	cmd := &cobra.Command{
		Use:   "checklist",
		Short: "Evaluate evidence file names against a checklist",
		Long: `Evaluate a set of evidence file names against the checklist of a claim
type and render the result. The claim is not stored anywhere.

Example:
  claimctl checklist --type ACCIDENTAL --evidence death_certificate.pdf,fir.pdf --format pdf --out fir.pdf`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChecklist(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.catalogFile, "catalog", "", "catalog YAML file (default: built-in catalog)")
	cmd.Flags().StringVarP(&opts.claimType, "type", "t", "", "claim type (NORMAL or ACCIDENTAL)")
	cmd.Flags().StringVar(&opts.claimID, "id", "OFFLINE", "claim id printed on the checklist")
	cmd.Flags().StringSliceVarP(&opts.evidence, "evidence", "e", nil, "comma-separated evidence file names")
	cmd.Flags().StringVar(&opts.format, "format", "txt", "output format: txt, csv, xlsx or pdf")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output file (default: stdout)")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func runChecklist(stdout io.Writer, opts *checklistOptions) error {
	claimType, err := entity.ParseClaimType(opts.claimType)
	if err != nil {
		return err
	}

	catalog, err := loadCatalog(opts.catalogFile)
	if err != nil {
		return err
	}

	exporter, err := export.DefaultRegistry().Get(opts.format)
	if err != nil {
		return err
	}

	claim := &entity.Claim{
		ClaimID:   opts.claimID,
		ClaimType: claimType,
		Status:    workflow.StateSubmitted,
	}
	for _, name := range opts.evidence {
		if name = strings.TrimSpace(name); name != "" {
			claim.Evidence = append(claim.Evidence, entity.Evidence{DisplayName: name})
		}
	}

	doc, err := completeness.NewEvaluator(catalog).RenderChecklistReport(claim)
	if err != nil {
		return err
	}
	content, err := exporter.Export(doc)
	if err != nil {
		return fmt.Errorf("render %s: %w", exporter.Format(), err)
	}

	if opts.out == "" {
		_, err = stdout.Write(content)
		return err
	}
	if err := os.WriteFile(opts.out, content, 0644); err != nil {
		return fmt.Errorf("write %s: %w", opts.out, err)
	}
	fmt.Fprintf(stdout, "wrote %s (%d bytes)\n", opts.out, len(content))
	return nil
}
