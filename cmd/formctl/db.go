package main

import (
	"github.com/spf13/cobra"

	dbcmd "github.com/formdeck/formd/cmd/formctl/db"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "db", Short: "Database management"}
	cmd.AddCommand(dbcmd.NewMigrateCmd())
	return cmd
}
