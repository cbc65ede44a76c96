package cmd

import (
	"encoding/json"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/lukman83/ammo-bundler/internal/ammoseek"
	"github.com/spf13/cobra"
)

var calibersCmd = &cobra.Command{
	Use:   "calibers",
	Short: "List known caliber names and their AmmoSeek slugs",
	RunE:  runCalibers,
}

func init() {
	calibersCmd.Flags().String("format", "table", "Output format: json, table")
	rootCmd.AddCommand(calibersCmd)
}

func runCalibers(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	calibers := ammoseek.Calibers()

	switch format {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(calibers)
	default:
		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Name", "Slug"})
		for _, c := range calibers {
			t.AppendRow(table.Row{c.Name, c.Slug})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
		return nil
	}
}
