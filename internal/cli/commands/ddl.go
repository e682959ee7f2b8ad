package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/entitymeta/internal/cli/ui"
	"github.com/conduit-lang/entitymeta/internal/orm/codegen"
)

type ddlEntry struct {
	Entity  string `json:"entity" yaml:"entity"`
	Table   string `json:"table" yaml:"table"`
	Dialect string `json:"dialect" yaml:"dialect"`
	DDL     string `json:"ddl" yaml:"ddl"`
}

func newDDLCommand(a *app) *cobra.Command {
	var (
		dialectName string
		withDrop    bool
	)

	cmd := &cobra.Command{
		Use:   "ddl [name...]",
		Short: "Print CREATE TABLE statements for entities",
		Long: `Print a CREATE TABLE statement for each named entity, or for every
registered entity when no name is given.

Examples:
  entitymeta ddl Product
  entitymeta ddl --dialect sqlite
  entitymeta ddl Product Payment --drop`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dialect, err := codegen.ParseDialect(dialectName)
			if err != nil {
				return err
			}

			classes, err := a.classes(args)
			if err != nil {
				return err
			}
			metas, err := a.metadata(cmd.Context(), classes)
			if err != nil {
				return err
			}

			gen := codegen.NewDDLGenerator()
			out := cmd.OutOrStdout()

			if a.format != ui.FormatTable {
				entries := make([]ddlEntry, 0, len(metas))
				for _, meta := range metas {
					stmt, err := gen.GenerateCreateTable(meta, dialect)
					if err != nil {
						return err
					}
					entries = append(entries, ddlEntry{
						Entity:  meta.Entity(),
						Table:   gen.TableName(meta),
						Dialect: string(dialect),
						DDL:     stmt,
					})
				}
				return ui.Encode(out, a.format, entries)
			}

			if withDrop {
				for _, meta := range metas {
					fmt.Fprintln(out, gen.GenerateDropTable(meta, dialect))
				}
				fmt.Fprintln(out)
			}

			schema, err := gen.GenerateSchema(metas, dialect)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, schema)
			return nil
		},
	}

	cmd.Flags().StringVar(&dialectName, "dialect", string(codegen.Postgres), "SQL dialect: postgres or sqlite")
	cmd.Flags().BoolVar(&withDrop, "drop", false, "Prefix the schema with DROP TABLE statements")

	return cmd
}
