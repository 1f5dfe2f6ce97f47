package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/formdeck/formd/internal/formdef"
	"github.com/formdeck/formd/pkg/client"
	"github.com/formdeck/formd/pkg/config"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List form definitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := config.Resolve(cmd)
			if err != nil {
				return err
			}
			cli := client.NewHTTP(r.APIURL, client.WithToken(r.Token))
			defs, err := cli.List(cmd.Context())
			if err != nil {
				return err
			}
			return printForms(cmd, defs)
		},
	}
}

func printForms(cmd *cobra.Command, defs []formdef.FormDefinition) error {
	format, err := cmd.Root().PersistentFlags().GetString("output")
	if err != nil {
		return err
	}
	if format == "json" {
		b, err := json.MarshalIndent(defs, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	}
	tw := tablewriter.NewWriter(os.Stdout)
	tw.SetHeader([]string{"ID", "Title", "Method", "Action", "Fields", "Active"})
	for _, d := range defs {
		tw.Append([]string{
			strconv.FormatInt(d.ID, 10),
			d.Title,
			d.Method,
			d.Action,
			strconv.Itoa(len(d.Fields)),
			strconv.FormatBool(d.IsActive),
		})
	}
	tw.Render()
	return nil
}
