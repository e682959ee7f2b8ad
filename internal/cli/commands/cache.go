package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/entitymeta/internal/cli/ui"
)

func newCacheCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the metadata cache",
		Long: `Manage the metadata cache configured under cache: in entitymeta.yaml.

The memory backend lives for a single command, so these commands are
mostly useful with the redis backend.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "warm [name...]",
		Short: "Build and cache the metadata of entities",
		RunE: func(cmd *cobra.Command, args []string) error {
			classes, err := a.classes(args)
			if err != nil {
				return err
			}

			refs := make([]any, 0, len(classes))
			for _, class := range classes {
				refs = append(refs, class.Name)
			}
			if err := a.factory.Preload(cmd.Context(), refs...); err != nil {
				return err
			}

			ui.WriteSuccess(cmd.OutOrStdout(), fmt.Sprintf("Cached %d entities", len(refs)), a.opts.noColor)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear [name...]",
		Short: "Drop cached metadata",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				if err := a.cache.Clear(cmd.Context()); err != nil {
					return err
				}
				ui.WriteSuccess(cmd.OutOrStdout(), "Cache cleared", a.opts.noColor)
				return nil
			}

			classes, err := a.classes(args)
			if err != nil {
				return err
			}
			for _, class := range classes {
				if err := a.factory.Invalidate(cmd.Context(), class.Name); err != nil {
					return err
				}
			}
			ui.WriteSuccess(cmd.OutOrStdout(), fmt.Sprintf("Dropped %d entries", len(classes)), a.opts.noColor)
			return nil
		},
	})

	return cmd
}
