package commands

import (
	"fmt"
	"go/token"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/entitymeta/internal/cli/ui"
	"github.com/conduit-lang/entitymeta/internal/orm/codegen"
)

func newGenerateCommand(a *app) *cobra.Command {
	var (
		pkg string
		out string
	)

	cmd := &cobra.Command{
		Use:   "generate [name...]",
		Short: "Generate Go code holding precomputed metadata",
		Long: `Generate a Go file declaring

  func Entities() map[string]*metadata.EntityMetadata

built from the metadata of the named entities, or of every registered
entity when no name is given. Programs can load it without reflection.

Examples:
  entitymeta generate
  entitymeta generate Product --package shopmeta --out internal/shopmeta/entities_gen.go`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !token.IsIdentifier(pkg) {
				return fmt.Errorf("invalid package name %q", pkg)
			}

			classes, err := a.classes(args)
			if err != nil {
				return err
			}
			metas, err := a.metadata(cmd.Context(), classes)
			if err != nil {
				return err
			}

			if err := codegen.WriteMetadataFile(out, pkg, metas); err != nil {
				return err
			}

			ui.WriteSuccess(cmd.OutOrStdout(), fmt.Sprintf("Generated %s (%d entities)", out, len(metas)), a.opts.noColor)
			return nil
		},
	}

	cmd.Flags().StringVar(&pkg, "package", "entities", "Package name of the generated file")
	cmd.Flags().StringVarP(&out, "out", "o", "entities_gen.go", "Output file")

	return cmd
}
