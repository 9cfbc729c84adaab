package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Yashchauhan008/file-crud/clientcli"
)

var (
	downloadOutput string
	downloadStdout bool
)

var downloadCmd = &cobra.Command{
	Use:   "download <id> [local-path]",
	Short: "Download a resource's file",
	Long: `Download the file behind a resource from its file URL.

Without a local path the file is saved under its original name in the
current directory.

Examples:
  filecrud-cli download 3f2c...
  filecrud-cli download 3f2c... ./slides/algebra.pptx
  filecrud-cli download --stdout 3f2c... > algebra.pptx`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().StringVarP(&downloadOutput, "output", "o", "", "output file path")
	downloadCmd.Flags().BoolVar(&downloadStdout, "stdout", false, "write to stdout")
	downloadCmd.MarkFlagsMutuallyExclusive("output", "stdout")
}

func runDownload(cmd *cobra.Command, args []string) error {
	var localPath string
	switch {
	case downloadStdout:
		localPath = "-"
	case downloadOutput != "":
		localPath = downloadOutput
	case len(args) > 1:
		localPath = args[1]
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	result, reader, err := client.Download(cmd.Context(), clientcli.DownloadOptions{
		ID:        args[0],
		LocalPath: localPath,
	})
	if err != nil {
		return err
	}

	if reader == nil {
		return getFormatter().FormatDownload(cmd.OutOrStdout(), result)
	}

	defer func() { _ = reader.Close() }()
	if _, err := io.Copy(cmd.OutOrStdout(), reader); err != nil {
		return fmt.Errorf("write stdout: %w", err)
	}
	// The file owns stdout; JSON metadata goes to stderr.
	if jsonOutput {
		return getFormatter().FormatDownload(cmd.ErrOrStderr(), result)
	}
	return nil
}
