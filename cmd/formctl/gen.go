package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	dbcmd "github.com/formdeck/formd/cmd/formctl/db"
	"github.com/formdeck/formd/internal/formdef"
	"github.com/formdeck/formd/internal/generator"
	"github.com/formdeck/formd/pkg/util"
)

func newGenCmd() *cobra.Command {
	var (
		flags   dbcmd.DBFlags
		id      int64
		pkg     string
		name    string
		outFile string
	)
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate a Go struct from a form definition",
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.DSN == "" {
				return errors.New("--db is required")
			}
			if id == 0 {
				return errors.New("--id is required")
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
			def, err := repo.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			src, err := generator.GenerateStruct(def, generator.StructOptions{Package: pkg, Name: name})
			if err != nil {
				return err
			}
			if outFile == "" {
				fmt.Fprint(cmd.OutOrStdout(), string(src))
				return nil
			}
			return os.WriteFile(outFile, src, 0o644)
		},
	}
	flags.AddFlags(cmd)
	cmd.Flags().Int64Var(&id, "id", 0, "form id")
	cmd.Flags().StringVar(&pkg, "package", "forms", "package name for generated code")
	cmd.Flags().StringVar(&name, "name", "", "struct name (derived from title when empty)")
	cmd.Flags().StringVar(&outFile, "out", "", "output file (stdout when empty)")
	mustFlag(cmd, "db")
	mustFlag(cmd, "id")
	return cmd
}
