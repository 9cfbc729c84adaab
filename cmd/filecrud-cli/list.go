package main

import (
	"os"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List resources, newest first",
	Long: `List every resource on the server, newest upload first.

Examples:
  filecrud-cli list
  filecrud-cli list -q
  filecrud-cli list --json | jq '.items[].title'`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func runList(cmd *cobra.Command, _ []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	result, err := client.List(cmd.Context())
	if err != nil {
		return err
	}

	return getFormatter().FormatList(os.Stdout, result)
}
