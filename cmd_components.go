package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"bikebuild/taxonomy"
)

var componentsFormat string

var componentsCmd = &cobra.Command{
	Use:   "components",
	Short: "Print the component taxonomy",
	// static data; needs neither config nor database
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	RunE: func(cmd *cobra.Command, _ []string) error {
		comps := taxonomy.Components()
		out := cmd.OutOrStdout()
		switch componentsFormat {
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(comps)
		case "yaml":
			return yaml.NewEncoder(out).Encode(comps)
		case "table":
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "GROUP\tKEY\tLABEL\tCOMPOSITE")
			for _, c := range comps {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Group, c.Key, c.Label, c.CompositeGroup)
			}
			for _, g := range taxonomy.Groups() {
				key, _ := taxonomy.CustomBucketKey(g)
				fmt.Fprintf(tw, "%s\t%s\t%s\t\n", g, key, "(custom)")
			}
			return tw.Flush()
		default:
			return fmt.Errorf("unknown format %q (want table, json or yaml)", componentsFormat)
		}
	},
}

func init() {
	componentsCmd.Flags().StringVarP(&componentsFormat, "format", "f", "table", "output format: table, json or yaml")
}
