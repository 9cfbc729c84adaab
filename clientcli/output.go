package clientcli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	filecrud "github.com/Yashchauhan008/file-crud"
)

// Formatter formats results for output.
type Formatter interface {
	FormatUpload(w io.Writer, resource *filecrud.Resource) error
	FormatResource(w io.Writer, resource *filecrud.Resource) error
	FormatDownload(w io.Writer, result *DownloadResult) error
	FormatDelete(w io.Writer, results []DeleteResult) error
	FormatList(w io.Writer, result *ListResult) error
	FormatError(w io.Writer, err error) error
	FormatProfileList(w io.Writer, profiles []Profile, defaultName string) error
	FormatProfileShow(w io.Writer, profile Profile, isDefault bool) error
}

// NewFormatter returns the appropriate formatter based on flags.
func NewFormatter(jsonOutput, quiet bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &HumanFormatter{Quiet: quiet}
}

// HumanFormatter outputs human-readable text.
type HumanFormatter struct {
	Quiet bool
	// Now is used for relative times; defaults to time.Now.
	Now func() time.Time
}

func (f *HumanFormatter) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}

// FormatUpload prints the created resource. In quiet mode only its ID is printed.
func (f *HumanFormatter) FormatUpload(w io.Writer, resource *filecrud.Resource) error {
	if f.Quiet {
		_, _ = fmt.Fprintln(w, resource.ID)
		return nil
	}
	_, _ = fmt.Fprintf(w, "Uploaded: %s (%s)\n", resource.FileName, humanize.IBytes(uint64(resource.Size)))
	_, _ = fmt.Fprintf(w, "  ID:  %s\n", resource.ID)
	_, _ = fmt.Fprintf(w, "  URL: %s\n", resource.FileURL)
	return nil
}

// FormatResource prints every field of a resource.
func (f *HumanFormatter) FormatResource(w io.Writer, r *filecrud.Resource) error {
	_, _ = fmt.Fprintf(w, "ID:          %s\n", r.ID)
	_, _ = fmt.Fprintf(w, "Topic:       %s\n", r.Topic)
	_, _ = fmt.Fprintf(w, "Title:       %s\n", r.Title)
	_, _ = fmt.Fprintf(w, "Description: %s\n", r.Description)
	_, _ = fmt.Fprintf(w, "File:        %s (%s, %s)\n", r.FileName, r.FileType, humanize.IBytes(uint64(r.Size)))
	_, _ = fmt.Fprintf(w, "URL:         %s\n", r.FileURL)
	_, _ = fmt.Fprintf(w, "Uploaded:    %s (%s)\n", r.UploadedAt.Format(time.RFC3339), humanize.RelTime(r.UploadedAt, f.now(), "ago", "from now"))
	return nil
}

// FormatDownload formats download result as human-readable text.
func (f *HumanFormatter) FormatDownload(w io.Writer, result *DownloadResult) error {
	if f.Quiet {
		return nil
	}
	if result.LocalPath == "-" {
		_, _ = fmt.Fprintf(w, "Downloaded: %s (%s)\n", result.FileName, humanize.IBytes(uint64(max(result.Size, 0))))
	} else {
		_, _ = fmt.Fprintf(w, "Downloaded: %s -> %s (%s)\n", result.FileName, result.LocalPath, humanize.IBytes(uint64(max(result.Size, 0))))
	}
	return nil
}

// FormatDelete formats delete results as human-readable text.
func (f *HumanFormatter) FormatDelete(w io.Writer, results []DeleteResult) error {
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			_, _ = fmt.Fprintf(w, "Error: %s - %v\n", r.ID, r.Err)
			continue
		}
		if !f.Quiet {
			_, _ = fmt.Fprintf(w, "Deleted: %s\n", r.ID)
		}
	}
	return nil
}

// FormatList prints one table row per resource followed by a count and the
// total size. Long topics and titles are truncated.
func (f *HumanFormatter) FormatList(w io.Writer, result *ListResult) error {
	if len(result.Items) == 0 {
		_, err := fmt.Fprintln(w, "No resources found")
		return err
	}

	if f.Quiet {
		for _, r := range result.Items {
			if _, err := fmt.Fprintln(w, r.ID); err != nil {
				return err
			}
		}
		return nil
	}

	table := newTable(w)
	table.SetHeader([]string{"ID", "Topic", "Title", "Size", "Uploaded"})
	now := f.now()
	for _, r := range result.Items {
		table.Append([]string{
			r.ID,
			truncate(r.Topic, maxTopicWidth),
			truncate(r.Title, maxTitleWidth),
			humanize.IBytes(uint64(r.Size)),
			humanize.RelTime(r.UploadedAt, now, "ago", "from now"),
		})
	}
	table.Render()

	_, err := fmt.Fprintf(w, "\n%s resource(s) (%s total)\n", humanize.Comma(int64(len(result.Items))), humanize.IBytes(uint64(result.TotalSize())))
	return err
}

const (
	maxTopicWidth = 20
	maxTitleWidth = 40
)

// newTable returns a borderless, left-aligned table in the style of
// kubectl get.
func newTable(w io.Writer) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetAutoWrapText(false)
	t.SetAutoFormatHeaders(true)
	t.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	t.SetBorder(false)
	t.SetCenterSeparator("")
	t.SetColumnSeparator("")
	t.SetRowSeparator("")
	t.SetHeaderLine(false)
	t.SetTablePadding("  ")
	t.SetNoWhiteSpace(true)
	return t
}

// FormatError formats an error as human-readable text.
func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

// FormatProfileList formats a list of profiles as human-readable text.
func (f *HumanFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string) error {
	maxNameLen := 4 // "NAME"
	for i := range profiles {
		maxNameLen = max(maxNameLen, len(profiles[i].Name))
	}
	maxNameLen = min(maxNameLen, 20)

	_, _ = fmt.Fprintf(w, "  %-*s  %s\n", maxNameLen, "NAME", "ENDPOINT")
	_, _ = fmt.Fprintf(w, "  %s  %s\n", strings.Repeat("-", maxNameLen), strings.Repeat("-", 30))

	for i := range profiles {
		p := &profiles[i]
		marker := " "
		if p.Name == defaultName {
			marker = "*"
		}
		_, _ = fmt.Fprintf(w, "%s %-*s  %s\n", marker, maxNameLen, truncate(p.Name, maxNameLen), p.Endpoint)
	}

	return nil
}

// FormatProfileShow formats a single profile as human-readable text.
func (f *HumanFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault bool) error {
	_, _ = fmt.Fprintf(w, "Name:     %s", profile.Name)
	if isDefault {
		_, _ = fmt.Fprintf(w, " (default)")
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Endpoint: %s\n", profile.Endpoint)
	return nil
}

// JSONFormatter outputs JSON.
type JSONFormatter struct{}

// FormatUpload formats the created resource as JSON.
func (f *JSONFormatter) FormatUpload(w io.Writer, resource *filecrud.Resource) error {
	return writeJSON(w, resource)
}

// FormatResource formats a resource as JSON.
func (f *JSONFormatter) FormatResource(w io.Writer, resource *filecrud.Resource) error {
	return writeJSON(w, resource)
}

// FormatDownload formats download result as JSON.
func (f *JSONFormatter) FormatDownload(w io.Writer, result *DownloadResult) error {
	return writeJSON(w, result)
}

type deleteJSON struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
	Error   string `json:"error,omitempty"`
}

// FormatDelete reports each result with its error flattened to a string.
func (f *JSONFormatter) FormatDelete(w io.Writer, results []DeleteResult) error {
	out := make([]deleteJSON, 0, len(results))
	for _, r := range results {
		d := deleteJSON{ID: r.ID, Deleted: r.Deleted}
		if r.Err != nil {
			d.Error = r.Err.Error()
		}
		out = append(out, d)
	}
	return writeJSON(w, map[string][]deleteJSON{"results": out})
}

// FormatList formats list results as JSON.
func (f *JSONFormatter) FormatList(w io.Writer, result *ListResult) error {
	return writeJSON(w, result)
}

func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	return writeJSON(w, map[string]string{"error": err.Error()})
}

type profileJSON struct {
	Name     string `json:"name"`
	Endpoint string `json:"endpoint"`
	Default  bool   `json:"default"`
}

func (f *JSONFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string) error {
	out := make([]profileJSON, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, profileJSON{Name: p.Name, Endpoint: p.Endpoint, Default: p.Name == defaultName})
	}
	return writeJSON(w, map[string][]profileJSON{"profiles": out})
}

func (f *JSONFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault bool) error {
	return writeJSON(w, profileJSON{Name: profile.Name, Endpoint: profile.Endpoint, Default: isDefault})
}

// writeJSON writes a value as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
