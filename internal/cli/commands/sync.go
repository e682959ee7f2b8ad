package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/entitymeta/internal/cli/ui"
	"github.com/conduit-lang/entitymeta/internal/orm/migrate"
)

func newSyncCommand(a *app) *cobra.Command {
	var (
		url     string
		history bool
	)

	cmd := &cobra.Command{
		Use:   "sync [name...]",
		Short: "Create entity tables in a database",
		Long: `Create the table of each named entity, or of every registered entity,
in one transaction, and record the run in the entity_schema_syncs table.
Existing tables are left untouched.

The database URL comes from --url, then DATABASE_URL, then database.url in
the config file. postgres:// URLs use pgx; sqlite://, file: and *.db use
SQLite.

Examples:
  entitymeta sync --url sqlite://shop.db
  DATABASE_URL=postgres://localhost/shop entitymeta sync Product
  entitymeta sync --history`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if url == "" {
				url = a.config.DatabaseURL()
			}

			db, dialect, err := migrate.Open(url)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := cmd.Context()
			syncer := migrate.NewSyncer(db, dialect, a.logger)
			if err := syncer.Initialize(ctx); err != nil {
				return err
			}

			var records []migrate.SyncRecord
			if history {
				records, err = syncer.History(ctx)
				if err != nil {
					return err
				}
			} else {
				classes, err := a.classes(args)
				if err != nil {
					return err
				}
				metas, err := a.metadata(ctx, classes)
				if err != nil {
					return err
				}
				records, err = syncer.Sync(ctx, metas)
				if err != nil {
					return err
				}
				a.logger.Info("schema synced", zap.Int("tables", len(records)), zap.String("dialect", string(dialect)))
			}

			out := cmd.OutOrStdout()
			if a.format != ui.FormatTable {
				return ui.Encode(out, a.format, records)
			}

			table := ui.NewTable(out, a.opts.noColor, "TABLE", "COLUMNS", "SYNCED AT", "ID")
			for _, r := range records {
				table.AddRow(r.Table, strings.Join(r.Columns, ", "), r.SyncedAt.Format(time.RFC3339), r.ID)
			}
			table.Render()

			if !history {
				fmt.Fprintln(out)
				ui.WriteSuccess(out, fmt.Sprintf("Synced %d tables", len(records)), a.opts.noColor)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "Database URL")
	cmd.Flags().BoolVar(&history, "history", false, "Show previous sync runs instead of syncing")

	return cmd
}
