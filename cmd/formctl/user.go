package main

import (
	"github.com/spf13/cobra"

	usercmd "github.com/formdeck/formd/cmd/formctl/user"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "user", Short: "Manage users"}
	cmd.AddCommand(usercmd.NewCreateCmd())
	cmd.AddCommand(usercmd.NewListCmd())
	cmd.AddCommand(usercmd.NewDeleteCmd())
	return cmd
}
