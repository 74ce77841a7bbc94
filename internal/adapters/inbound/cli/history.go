package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bst-license-checker/bst-license-checker/internal/adapters/outbound/history"
	"github.com/bst-license-checker/bst-license-checker/internal/adapters/outbound/tui"
	"github.com/bst-license-checker/bst-license-checker/internal/domain"
)

func newHistoryCmd() *cobra.Command {
	var work string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the runs recorded in a work directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if work == "" {
				return domain.ConfigErrorf("--work is required")
			}
			entries, err := history.New().Load(work)
			if err != nil {
				return fmt.Errorf("loading history: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderHistory(entries))
			return nil
		},
	}
	cmd.Flags().StringVarP(&work, "work", "w", "", "Work directory holding the scan cache")
	return cmd
}
