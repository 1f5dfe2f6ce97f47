package usercmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	dbcmd "github.com/formdeck/formd/cmd/formctl/db"
	"github.com/formdeck/formd/pkg/util"
)

// NewCreateCmd creates the user create subcommand.
func NewCreateCmd() *cobra.Command {
	var flags dbcmd.DBFlags
	var username, password, role string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.DSN == "" {
				return fmt.Errorf("--db is required")
			}
			if username == "" || password == "" || role == "" {
				return fmt.Errorf("--username, --password and --role are required")
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

			hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
			if err != nil {
				return err
			}
			users := flags.TablePrefix + "users"
			var q string
			switch flags.Driver {
			case "postgres":
				q = fmt.Sprintf("INSERT INTO %s (username,password_hash,role) VALUES ($1,$2,$3)", users)
			default:
				q = fmt.Sprintf("INSERT INTO %s (username,password_hash,role) VALUES (?,?,?)", users)
			}
			_, err = db.ExecContext(cmd.Context(), q, username, string(hash), role)
			return err
		},
	}
	flags.AddFlags(cmd)
	cmd.Flags().StringVar(&username, "username", "", "username")
	cmd.Flags().StringVar(&password, "password", "", "password")
	cmd.Flags().StringVar(&role, "role", "", "role")
	cobra.CheckErr(cmd.MarkFlagRequired("db"))
	cobra.CheckErr(cmd.MarkFlagRequired("username"))
	cobra.CheckErr(cmd.MarkFlagRequired("password"))
	cobra.CheckErr(cmd.MarkFlagRequired("role"))
	return cmd
}
