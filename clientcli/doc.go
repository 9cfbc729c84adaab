// Package clientcli is the Go client for the filecrud resource API and the
// support code behind the filecrud-cli command.
//
// A Client wraps the JSON envelope the server returns and maps failures to
// *APIError values, which match ErrNotFound, ErrBadRequest and ErrServer
// through errors.Is:
//
//	client, err := clientcli.New(&clientcli.Config{Endpoint: "http://localhost:5000"})
//	if err != nil {
//		return err
//	}
//
//	res, err := client.Upload(ctx, clientcli.UploadOptions{
//		LocalPath:   "slides.pptx",
//		Topic:       "math",
//		Title:       "Algebra",
//		Description: "week 1",
//	})
//	if err != nil {
//		return err
//	}
//
//	_, _, err = client.Download(ctx, clientcli.DownloadOptions{ID: res.ID, LocalPath: "copy.pptx"})
//	if errors.Is(err, clientcli.ErrNotFound) {
//		// deleted in the meantime
//	}
//
// Endpoints can be kept as named profiles in ~/.filecrud/config.yaml; see
// ConfigFile. MergeConfig layers a profile, the FILECRUD_* environment and
// flags, later values winning. Formatter renders results for a terminal or
// as JSON.
package clientcli
