// AngelaMos | 2026
// migrate.go

package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/carterperez-dev/projectboard/internal/core"
	"github.com/carterperez-dev/projectboard/internal/migrate"
)

func migrateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(migrateUpCmd(opts))
	cmd.AddCommand(migrateListCmd())
	return cmd
}

func migrateUpCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			db, err := core.NewDatabase(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close() //nolint:errcheck // process exits right after

			version, err := migrate.Up(cmd.Context(), db.DB)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", version)
			return nil
		},
	}
}

func migrateListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List embedded migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			migrations, err := migrate.Load()
			if err != nil {
				return err
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(cmd.OutOrStdout())
			tw.AppendHeader(table.Row{"Version", "Name"})
			for _, m := range migrations {
				tw.AppendRow(table.Row{m.Version, m.Name})
			}
			tw.Render()
			return nil
		},
	}
}
