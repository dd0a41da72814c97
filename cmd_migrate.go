package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bikebuild/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		conn, err := db.Open(cmd.Context(), cfg.Database)
		if err != nil {
			return err
		}
		defer conn.Close()

		before, err := conn.SchemaVersion(cmd.Context())
		if err != nil {
			return err
		}
		applied, err := conn.Migrate(cmd.Context(), logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "schema version %d -> %d (%d applied)\n", before, db.CurrentVersion(), applied)
		return nil
	},
}
