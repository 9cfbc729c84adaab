package clientcli

import (
	filecrud "github.com/Yashchauhan008/file-crud"
)

// UploadOptions configures an upload operation.
type UploadOptions struct {
	LocalPath   string
	Topic       string
	Title       string
	Description string
	ContentType string // optional, detected from the extension or content if empty
}

// DownloadOptions configures a download operation.
type DownloadOptions struct {
	ID        string
	LocalPath string // empty = original file name, "-" = stdout
}

// DownloadResult represents the result of downloading a resource's file.
type DownloadResult struct {
	ID          string `json:"id"`
	FileName    string `json:"file_name"`
	LocalPath   string `json:"local_path"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size_bytes"`
}

// DeleteOptions configures a delete operation.
type DeleteOptions struct {
	IDs []string
}

// DeleteResult represents the result of deleting a single resource.
type DeleteResult struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
	Err     error  `json:"-"` // nil on success
}

// ListResult holds every resource returned by the server, newest first.
type ListResult struct {
	Items []filecrud.Resource `json:"items"`
}

// TotalSize calculates the total size of all items in bytes.
func (r *ListResult) TotalSize() int64 {
	var total int64
	for i := range r.Items {
		total += r.Items[i].Size
	}
	return total
}
