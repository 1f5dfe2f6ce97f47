package dbcmd

import (
	"database/sql"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"github.com/spf13/cobra"

	"github.com/formdeck/formd/pkg/util"
)

// DBFlags defines common database flags.
type DBFlags struct {
	Driver      string
	DSN         string
	TablePrefix string
}

// AddFlags attaches the DB flags to the command.
func (f *DBFlags) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.DSN, "db", "", "database DSN")
	cmd.Flags().StringVar(&f.Driver, "driver", "", "database driver")
	cmd.Flags().StringVar(&f.TablePrefix, "table-prefix", util.GetEnv("TABLE_PREFIX", "formd_"), "table name prefix")
}

// Open opens a database connection using the flags.
func Open(f DBFlags) (*sql.DB, error) {
	return sql.Open(f.Driver, f.DSN)
}
