package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bst-license-checker/bst-license-checker/internal/adapters/outbound/bst"
	"github.com/bst-license-checker/bst-license-checker/internal/adapters/outbound/cache"
	"github.com/bst-license-checker/bst-license-checker/internal/adapters/outbound/config"
	"github.com/bst-license-checker/bst-license-checker/internal/adapters/outbound/tui"
	"github.com/bst-license-checker/bst-license-checker/internal/application"
	"github.com/bst-license-checker/bst-license-checker/internal/domain"
)

func newCacheCmd(g *globalFlags) *cobra.Command {
	var work string

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the scan cache in a work directory",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := g.validate(); err != nil {
				return err
			}
			if work == "" {
				return domain.ConfigErrorf("--work is required")
			}
			info, err := os.Stat(work)
			if err != nil || !info.IsDir() {
				return domain.ConfigErrorf("work directory %s does not exist", work)
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVarP(&work, "work", "w", "", "Work directory holding the scan cache")

	cmd.AddCommand(&cobra.Command{
		Use:   "list ELEMENT",
		Short: "List every cached key of an element",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := domain.ElementRef(args[0])
			entries, err := cache.New(work, g.logger(cmd)).List(ref)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderCacheEntries(ref, entries))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show ELEMENT [KEY]",
		Short: "Print the cached outcome of an element",
		Long: `Print the cache entry of ELEMENT at KEY as JSON, followed by the location of
its raw licensecheck output. Without KEY the element's current full key is
asked from bst, run from the current directory.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := g.logger(cmd)
			ref := domain.ElementRef(args[0])

			var key domain.ContentKey
			if len(args) == 2 {
				key = domain.ContentKey(args[1])
			} else {
				cfg, err := config.New().Load(g.configPath)
				if err != nil {
					return err
				}
				projectDir, err := os.Getwd()
				if err != nil {
					return domain.ConfigError("project directory", err)
				}
				client, err := bst.New(cmd.Context(), cfg.BST, projectDir, log)
				if err != nil {
					return err
				}
				catalog := application.NewElementCatalog(client, domain.IgnoreSet{}, log)
				if key, err = catalog.ContentKeyOf(cmd.Context(), ref); err != nil {
					return err
				}
			}

			store := cache.New(work, log)
			entry, err := store.Lookup(ref, key)
			if err != nil {
				return err
			}
			if entry == nil {
				return fmt.Errorf("no cache entry for %s at %s", ref, key)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(entry); err != nil {
				return err
			}
			if p := store.PayloadPath(entry); p != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "output: %s\n", p)
			}
			return nil
		},
	})
	return cmd
}
