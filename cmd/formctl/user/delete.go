package usercmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/faciam-dev/goquent/orm/query"

	dbcmd "github.com/formdeck/formd/cmd/formctl/db"
	"github.com/formdeck/formd/internal/config"
	"github.com/formdeck/formd/pkg/util"
)

// NewDeleteCmd creates the user delete subcommand.
func NewDeleteCmd() *cobra.Command {
	var flags dbcmd.DBFlags
	var id uint64

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.DSN == "" {
				return fmt.Errorf("--db is required")
			}
			if id == 0 {
				return fmt.Errorf("--id is required")
			}
			if flags.Driver == "" {
				d, err := util.DetectDriver(flags.DSN)
				if err != nil {
					return err
				}
				flags.Driver = d
			}
			db, err := dbcmd.Open(flags)
			if err != nil {
				return err
			}
			defer db.Close()

			prefix := flags.TablePrefix
			if prefix == "" {
				prefix = "formd_"
			}
			cfg := config.Config{TablePrefix: prefix}
			_, err = query.New(db, cfg.T("users"), util.DialectFromDriver(flags.Driver)).
				Where("id", id).
				WithContext(cmd.Context()).
				Delete()
			return err
		},
	}
	flags.AddFlags(cmd)
	cmd.Flags().Uint64Var(&id, "id", 0, "user id")
	cobra.CheckErr(cmd.MarkFlagRequired("db"))
	cobra.CheckErr(cmd.MarkFlagRequired("id"))
	return cmd
}
