package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/entitymeta/internal/cli/ui"
)

type listEntry struct {
	Name        string `json:"name" yaml:"name"`
	ShortName   string `json:"short_name" yaml:"short_name"`
	Polymorphic bool   `json:"polymorphic" yaml:"polymorphic"`
	Fields      int    `json:"fields" yaml:"fields"`
	Error       string `json:"error,omitempty" yaml:"error,omitempty"`
}

func newListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered entities",
		Long: `List every registered entity with its field count.

Entities whose metadata cannot be built are listed with the error.

Examples:
  entitymeta list
  entitymeta list --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			classes, err := a.classes(nil)
			if err != nil {
				return err
			}

			entries := make([]listEntry, 0, len(classes))
			for _, class := range classes {
				entry := listEntry{
					Name:        class.Name,
					ShortName:   class.ShortName(),
					Polymorphic: class.Discriminator != nil,
				}
				meta, err := a.factory.CreateMetadataContext(cmd.Context(), class.Name)
				if err != nil {
					entry.Error = err.Error()
				} else {
					entry.Fields = meta.Count()
				}
				entries = append(entries, entry)
			}

			out := cmd.OutOrStdout()
			if a.format != ui.FormatTable {
				return ui.Encode(out, a.format, entries)
			}

			table := ui.NewTable(out, a.opts.noColor, "ENTITY", "FIELDS", "POLYMORPHIC", "CLASS")
			for _, e := range entries {
				fields := strconv.Itoa(e.Fields)
				if e.Error != "" {
					fields = "error"
				}
				polymorphic := ""
				if e.Polymorphic {
					polymorphic = "yes"
				}
				table.AddRow(e.ShortName, fields, polymorphic, e.Name)
			}
			table.Render()
			return nil
		},
	}
}
