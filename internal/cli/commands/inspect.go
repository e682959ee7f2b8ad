package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/entitymeta/internal/cli/ui"
	"github.com/conduit-lang/entitymeta/internal/orm/introspect"
)

// Replaced in tests
var (
	isInteractive = func() bool {
		fd := os.Stdin.Fd()
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}

	selectEntity = func(options []string) (string, error) {
		var answer string
		prompt := &survey.Select{
			Message: "Entity:",
			Options: options,
		}
		if err := survey.AskOne(prompt, &answer); err != nil {
			return "", err
		}
		return answer, nil
	}
)

func newInspectCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [name]",
		Short: "Show the field metadata of an entity",
		Long: `Show the detected fields of an entity with their storage type and
accessor methods.

The name is a short type name or a qualified class name. Without a name
the entity is picked from a list when running in a terminal.

Examples:
  entitymeta inspect Product
  entitymeta inspect github.com/acme/shop/catalog.Product --format yaml
  entitymeta inspect`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			switch {
			case len(args) == 1:
				name = args[0]
			case isInteractive():
				picked, err := selectEntity(a.shortNames())
				if err != nil {
					return err
				}
				name = picked
			default:
				return fmt.Errorf("entity name required\n\nUsage: entitymeta inspect <name>")
			}

			class, err := a.find(name)
			if err != nil {
				return err
			}
			metas, err := a.metadata(cmd.Context(), []*introspect.Class{class})
			if err != nil {
				return err
			}
			meta := metas[0]

			out := cmd.OutOrStdout()
			if a.format != ui.FormatTable {
				return ui.Encode(out, a.format, meta)
			}

			ui.Header(out, class.ShortName(), a.opts.noColor)
			kv := ui.NewKeyValueTable(out, a.opts.noColor)
			kv.AddRow("Class", meta.Entity())
			kv.AddRow("Fields", strconv.Itoa(meta.Count()))
			if class.Discriminator != nil {
				kv.AddRow("Subclasses", strconv.Itoa(len(class.Discriminator.Map)))
			}
			kv.Render()
			fmt.Fprintln(out)

			table := ui.NewTable(out, a.opts.noColor, "FIELD", "TYPE", "GETTER", "SETTER", "ADDER")
			for _, name := range meta.FieldNames() {
				field, _ := meta.Field(name)
				table.AddRow(name, string(field.Type), field.Getter, field.Setter, field.Adder)
			}
			table.Render()
			return nil
		},
	}
}
