package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	dbcmd "github.com/formdeck/formd/cmd/formctl/db"
	"github.com/formdeck/formd/internal/formdef"
	"github.com/formdeck/formd/internal/formdef/snapshot"
	"github.com/formdeck/formd/pkg/util"
)

func newExportCmd() *cobra.Command {
	var (
		flags    dbcmd.DBFlags
		outDir   string
		s3Bucket string
		s3Prefix string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export form definitions to YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.DSN == "" {
				return errors.New("--db is required")
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
			var dest snapshot.Dest
			if s3Bucket != "" {
				s3d, err := snapshot.NewS3(ctx, s3Bucket, s3Prefix)
				if err != nil {
					return err
				}
				dest = s3d
			} else {
				if outDir == "" {
					outDir, _ = os.Getwd()
				}
				dest = snapshot.LocalDir{Path: outDir}
			}
			if err := snapshot.Export(ctx, repo, dest); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "exported forms")
			return nil
		},
	}
	flags.AddFlags(cmd)
	cmd.Flags().StringVar(&outDir, "out", "", "output directory (default cwd)")
	cmd.Flags().StringVar(&s3Bucket, "s3-bucket", "", "upload to this S3 bucket instead of a local directory")
	cmd.Flags().StringVar(&s3Prefix, "s3-prefix", "forms", "S3 key prefix")
	mustFlag(cmd, "db")
	return cmd
}
