package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-brains/pkg/brains"
)

func newBrainsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "brains",
		Short: "List the built-in brains",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := brains.List()
			if asJSON {
				out := make([]map[string]string, 0, len(names))
				for _, n := range names {
					out = append(out, map[string]string{
						"name":        n,
						"description": brains.Default.Describe(n),
					})
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, n := range names {
				fmt.Fprintf(tw, "%s\t%s\n", n, brains.Default.Describe(n))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
