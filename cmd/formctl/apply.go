package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	dbcmd "github.com/formdeck/formd/cmd/formctl/db"
	"github.com/formdeck/formd/internal/formdef"
	"github.com/formdeck/formd/internal/formdef/codec"
	"github.com/formdeck/formd/pkg/util"
)

func newApplyCmd() *cobra.Command {
	var (
		flags  dbcmd.DBFlags
		file   string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply a forms YAML file to the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return errors.New("--file is required")
			}
			if flags.DSN == "" {
				return errors.New("--db is required")
			}
			data, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			defs, err := codec.DecodeYAML(data)
			if err != nil {
				return err
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
			repo := &formdef.SQLRepo{DB: db, Dialect: util.DialectFromDriver(flags.Driver), TablePrefix: flags.TablePrefix}
			ctx := cmd.Context()
			created, updated := 0, 0
			for _, def := range defs {
				if dryRun {
					fmt.Fprintf(cmd.OutOrStdout(), "would apply %q (id=%d)\n", def.Title, def.ID)
					continue
				}
				if def.ID != 0 {
					if _, err := repo.Update(ctx, def.ID, def); err == nil {
						updated++
						continue
					} else if !errors.Is(err, formdef.ErrNotFound) {
						return err
					}
				}
				if _, err := repo.Create(ctx, def); err != nil {
					return err
				}
				created++
			}
			if !dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "+%d/±%d applied\n", created, updated)
			}
			return nil
		},
	}
	flags.AddFlags(cmd)
	cmd.Flags().StringVar(&file, "file", "forms.yaml", "input file")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would change without applying")
	mustFlag(cmd, "db")
	return cmd
}
