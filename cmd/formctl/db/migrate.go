package dbcmd

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strconv"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/formdeck/formd/pkg/migrator"
	"github.com/formdeck/formd/pkg/util"
)

// NewMigrateCmd creates the db migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	var flags DBFlags
	var to string
	var down bool
	var seed bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run DB migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.DSN == "" {
				return fmt.Errorf("--db is required")
			}
			if flags.Driver == "" {
				d, err := util.DetectDriver(flags.DSN)
				if err != nil {
					return err
				}
				flags.Driver = d
			}
			m := migrator.New(flags.Driver, flags.TablePrefix)
			target := 0
			if to != "" && to != "latest" {
				if v, err := strconv.Atoi(to); err == nil {
					target = v
				} else {
					v, err := parseSemVerTarget(m, to)
					if err != nil {
						return err
					}
					target = v
				}
			}
			db, err := Open(flags)
			if err != nil {
				return err
			}
			defer db.Close()
			ctx := cmd.Context()
			if down {
				if err := m.Down(ctx, db, target); err != nil {
					return err
				}
			} else if err := m.Up(ctx, db, target); err != nil {
				return err
			}
			cur, err := m.Current(ctx, db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d (%s)\n", cur, m.SemVer(cur))
			if seed {
				return seedAdmin(ctx, flags, db, cmd.OutOrStdout())
			}
			return nil
		},
	}
	flags.AddFlags(cmd)
	cmd.Flags().StringVar(&to, "to", "latest", "target version (number, semver or latest)")
	cmd.Flags().BoolVar(&down, "down", false, "migrate down to the target version")
	cmd.Flags().BoolVar(&seed, "seed", false, "seed admin user")
	cobra.CheckErr(cmd.MarkFlagRequired("db"))
	return cmd
}

// parseSemVerTarget resolves a semver flag value to a migration version.
// Short forms like "0.1" are accepted.
func parseSemVerTarget(m *migrator.Migrator, to string) (int, error) {
	want, err := semver.NewVersion(to)
	if err != nil {
		return 0, fmt.Errorf("invalid --to: %q", to)
	}
	if v, ok := m.SemVerToInt(to); ok {
		return v, nil
	}
	if v, ok := m.SemVerToInt(fmt.Sprintf("%d.%d", want.Major(), want.Minor())); ok {
		return v, nil
	}
	return 0, fmt.Errorf("no migration matches --to %q", to)
}

func seedAdmin(ctx context.Context, f DBFlags, db *sql.DB, out io.Writer) error {
	users := f.TablePrefix + "users"
	var count int
	row := db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE username='admin'", users))
	if err := row.Scan(&count); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), 12)
	if err != nil {
		return err
	}
	var q string
	switch f.Driver {
	case "postgres":
		if count > 0 {
			q = fmt.Sprintf("UPDATE %s SET password_hash=$1 WHERE username='admin'", users)
		} else {
			q = fmt.Sprintf("INSERT INTO %s (username,password_hash,role) VALUES ('admin',$1,'admin')", users)
		}
	default:
		if count > 0 {
			q = fmt.Sprintf("UPDATE %s SET password_hash=? WHERE username='admin'", users)
		} else {
			q = fmt.Sprintf("INSERT INTO %s (username,password_hash,role) VALUES ('admin',?,'admin')", users)
		}
	}
	if _, err := db.ExecContext(ctx, q, string(hash)); err != nil {
		return err
	}
	if count > 0 {
		fmt.Fprintln(out, "updated admin password: admin / admin123")
	} else {
		fmt.Fprintln(out, "created admin user: admin / admin123")
	}
	return nil
}
