package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Yashchauhan008/file-crud/clientcli"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <id> [id...]",
	Aliases: []string{"rm"},
	Short:   "Delete resources",
	Long: `Delete one or more resources and their files.

Every ID is attempted; the exit status is non-zero if any failed.

Examples:
  filecrud-cli delete 3f2c...
  filecrud-cli list -q | xargs filecrud-cli delete -q`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	results, err := client.Delete(cmd.Context(), clientcli.DeleteOptions{IDs: args})
	if err != nil {
		return err
	}

	if err := getFormatter().FormatDelete(os.Stdout, results); err != nil {
		return err
	}

	if clientcli.HasDeleteErrors(results) {
		return &exitError{code: 1}
	}
	return nil
}
