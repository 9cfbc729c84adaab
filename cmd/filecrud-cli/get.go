package main

import (
	"os"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one resource",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	resource, err := client.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	return getFormatter().FormatResource(os.Stdout, resource)
}
