package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Yashchauhan008/file-crud/clientcli"
)

var (
	uploadTopic       string
	uploadTitle       string
	uploadDescription string
	uploadContentType string
)

var uploadCmd = &cobra.Command{
	Use:   "upload <local-path>",
	Short: "Upload a resource",
	Long: `Upload a zip, docx or pptx file together with its metadata.

The content type is taken from the file extension, falling back to
content sniffing; --content-type overrides both.

Examples:
  filecrud-cli upload ./notes.pptx --topic math --title "Algebra Notes" --description "chapter 1"
  filecrud-cli upload -q ./bundle.zip -t physics -T Labs -d "all labs" | xargs filecrud-cli get`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadTopic, "topic", "t", "", "resource topic (required)")
	uploadCmd.Flags().StringVarP(&uploadTitle, "title", "T", "", "resource title (required)")
	uploadCmd.Flags().StringVarP(&uploadDescription, "description", "d", "", "resource description (required)")
	uploadCmd.Flags().StringVar(&uploadContentType, "content-type", "", "override content-type")

	_ = uploadCmd.MarkFlagRequired("topic")
	_ = uploadCmd.MarkFlagRequired("title")
	_ = uploadCmd.MarkFlagRequired("description")
}

func runUpload(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	resource, err := client.Upload(cmd.Context(), clientcli.UploadOptions{
		LocalPath:   args[0],
		Topic:       uploadTopic,
		Title:       uploadTitle,
		Description: uploadDescription,
		ContentType: uploadContentType,
	})
	if err != nil {
		return err
	}

	return getFormatter().FormatUpload(os.Stdout, resource)
}
