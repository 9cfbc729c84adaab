package clientcli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	filecrud "github.com/Yashchauhan008/file-crud"
)

// DefaultTimeout is the default HTTP client timeout.
const DefaultTimeout = 30 * time.Second

// Client performs operations against a filecrud server.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// New creates a new Client with the given config and options.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	cfg = cfg.WithDefaults()
	if _, err := url.ParseRequestURI(cfg.Endpoint); err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", cfg.Endpoint, err)
	}

	c := &Client{
		endpoint:   strings.TrimSuffix(cfg.Endpoint, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// envelope mirrors the JSON wrapper every API response uses.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

// Upload sends a file with its topic, title and description and returns the
// created resource.
func (c *Client) Upload(ctx context.Context, opts UploadOptions) (*filecrud.Resource, error) {
	if opts.LocalPath == "" {
		return nil, fmt.Errorf("upload: %w", ErrEmptyPath)
	}
	if strings.TrimSpace(opts.Topic) == "" || strings.TrimSpace(opts.Title) == "" || strings.TrimSpace(opts.Description) == "" {
		return nil, fmt.Errorf("upload: %w", ErrMissingField)
	}

	file, err := os.Open(opts.LocalPath) //#nosec G304 -- localPath is user-provided input
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	contentType := opts.ContentType
	if contentType == "" {
		contentType = detectContentType(opts.LocalPath)
	}

	// Stream the multipart body instead of buffering the whole file.
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeUploadBody(mw, file, filepath.Base(opts.LocalPath), contentType, opts))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/api/resources/upload", pr)
	if err != nil {
		_ = pr.Close()
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var resource filecrud.Resource
	if err := c.do(req, http.StatusCreated, &resource); err != nil {
		_ = pr.Close()
		return nil, err
	}

	return &resource, nil
}

func writeUploadBody(mw *multipart.Writer, file io.Reader, fileName, contentType string, opts UploadOptions) error {
	fields := [][2]string{
		{"topic", opts.Topic},
		{"title", opts.Title},
		{"description", opts.Description},
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return fmt.Errorf("write field %s: %w", f[0], err)
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("copy file: %w", err)
	}

	return mw.Close()
}

// List returns every resource, newest first.
func (c *Client) List(ctx context.Context) (*ListResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/api/resources", http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	var items []filecrud.Resource
	if err := c.do(req, http.StatusOK, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []filecrud.Resource{}
	}

	return &ListResult{Items: items}, nil
}

// Get returns a single resource.
func (c *Client) Get(ctx context.Context, id string) (*filecrud.Resource, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("get: %w", ErrEmptyID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resourceURL(id), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	var resource filecrud.Resource
	if err := c.do(req, http.StatusOK, &resource); err != nil {
		return nil, err
	}

	return &resource, nil
}

// Download fetches a resource's file from its fileUrl.
// If opts.LocalPath is "-", the content is returned via the io.ReadCloser and must be closed by the caller.
// Otherwise, the content is written to the file and the io.ReadCloser is nil.
func (c *Client) Download(ctx context.Context, opts DownloadOptions) (*DownloadResult, io.ReadCloser, error) {
	resource, err := c.Get(ctx, opts.ID)
	if err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resource.FileURL, http.NoBody)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, nil, parseServerError(resp.StatusCode, body)
	}

	result := &DownloadResult{
		ID:          resource.ID,
		FileName:    resource.FileName,
		ContentType: resource.FileType,
		Size:        resp.ContentLength,
	}

	if opts.LocalPath == "-" {
		result.LocalPath = "-"
		return result, resp.Body, nil
	}

	defer func() { _ = resp.Body.Close() }()

	result.LocalPath = opts.LocalPath
	if result.LocalPath == "" {
		result.LocalPath = filepath.Base(resource.FileName)
	}

	result.Size, err = saveTo(result.LocalPath, resp.Body)
	if err != nil {
		return nil, nil, err
	}
	return result, nil, nil
}

// saveTo streams r into a temp file beside path and renames it into place,
// so an interrupted download never leaves a truncated file at path.
func saveTo(path string, r io.Reader) (int64, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return 0, fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return 0, fmt.Errorf("create file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	n, err := io.Copy(tmp, r)
	if err == nil {
		err = tmp.Chmod(0o644)
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return 0, fmt.Errorf("write file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, fmt.Errorf("move file into place: %w", err)
	}
	return n, nil
}

// Delete deletes one or more resources.
// Continues on error, collecting results for all IDs.
func (c *Client) Delete(ctx context.Context, opts DeleteOptions) ([]DeleteResult, error) {
	if len(opts.IDs) == 0 {
		return nil, ErrNoIDs
	}

	results := make([]DeleteResult, 0, len(opts.IDs))

	for _, id := range opts.IDs {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		results = append(results, c.deleteSingle(ctx, id))
	}

	return results, nil
}

func (c *Client) deleteSingle(ctx context.Context, id string) DeleteResult {
	if strings.TrimSpace(id) == "" {
		return DeleteResult{ID: id, Err: ErrEmptyID}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.resourceURL(id), http.NoBody)
	if err != nil {
		return DeleteResult{ID: id, Err: fmt.Errorf("create request: %w", err)}
	}

	if err := c.do(req, http.StatusOK, nil); err != nil {
		return DeleteResult{ID: id, Err: err}
	}

	return DeleteResult{ID: id, Deleted: true}
}

// HasDeleteErrors returns true if any delete operation failed.
func HasDeleteErrors(results []DeleteResult) bool {
	for _, r := range results {
		if r.Err != nil {
			return true
		}
	}
	return false
}

// Health reports whether the server answers its liveness probe.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/healthz", http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, http.StatusOK, nil)
}

func (c *Client) resourceURL(id string) string {
	return c.endpoint + "/api/resources/" + url.PathEscape(id)
}

// do executes req, checks the status and decodes the envelope's data into
// out when out is non-nil.
func (c *Client) do(req *http.Request, wantStatus int, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != wantStatus {
		return parseServerError(resp.StatusCode, body)
	}

	if out == nil {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	if !env.Success {
		return parseServerError(resp.StatusCode, body)
	}
	if len(env.Data) == 0 {
		return errors.New("parse response: missing data")
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("parse response data: %w", err)
	}

	return nil
}

// detectContentType returns the MIME type for an upload. The accepted
// office formats are recognised by extension; anything else is sniffed.
func detectContentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip":
		return filecrud.MIMETypeZip
	case ".docx":
		return filecrud.MIMETypeDOCX
	case ".pptx":
		return filecrud.MIMETypePPTX
	}

	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return "application/octet-stream"
	}
	return filecrud.NormalizeMIMEType(mt.String())
}

// parseServerError extracts the error code and message from an error
// envelope, falling back to the raw body.
func parseServerError(statusCode int, body []byte) error {
	apiErr := &APIError{
		StatusCode: statusCode,
		Body:       string(body),
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err == nil {
		apiErr.Code = env.Error
		apiErr.Message = env.Message
	}

	return apiErr
}

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return "server error: " + strconv.Itoa(e.StatusCode) + " - " + e.Message
	}
	return "server error: " + strconv.Itoa(e.StatusCode) + " - " + e.Body
}

// Is reports whether target matches this error.
// It matches if target is an *APIError with the same StatusCode.
func (e *APIError) Is(target error) bool {
	var t *APIError
	ok := errors.As(target, &t)
	if !ok {
		return false
	}
	return t.StatusCode == e.StatusCode
}

// IsNotFound returns true if the error is a 404.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// Sentinel errors for common API error conditions.
// Use errors.Is() to check for these conditions.
var (
	// ErrNotFound is returned when the requested resource does not exist (404).
	ErrNotFound = &APIError{StatusCode: http.StatusNotFound}

	// ErrBadRequest is returned when the server rejects the input (400).
	ErrBadRequest = &APIError{StatusCode: http.StatusBadRequest}

	// ErrServer is returned when a store behind the server failed (500).
	ErrServer = &APIError{StatusCode: http.StatusInternalServerError}
)
