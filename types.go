package filecrud

import (
	"errors"
	"fmt"
	"mime"
	"regexp"
	"strings"
	"time"
)

// Resource is the metadata record for one uploaded file.
type Resource struct {
	ID          string    `json:"id"`
	Topic       string    `json:"topic"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	FileName    string    `json:"fileName"`
	FileURL     string    `json:"fileUrl"`
	BlobID      string    `json:"blobId"`
	FileType    string    `json:"fileType"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// CreateResource is the input to ResourceService.Create. LocalPath points at
// a staged copy of the upload that the service removes once the resource is
// durably created.
type CreateResource struct {
	LocalPath   string `validate:"required"`
	FileName    string `validate:"required,notblank"`
	FileType    string `validate:"required,notblank"`
	Size        int64  `validate:"required,gt=0"`
	Topic       string `validate:"required,notblank"`
	Title       string `validate:"required,notblank"`
	Description string `validate:"required,notblank"`
}

// BlobRef addresses an uploaded blob.
type BlobRef struct {
	ID  string
	URL string
}

// BlobInfo describes a blob found while listing a folder.
type BlobInfo struct {
	ID   string
	Size int64
}

// ReconcileOptions controls ResourceService.Reconcile.
type ReconcileOptions struct {
	// Fix removes orphaned blobs and dangling records instead of only reporting them.
	Fix bool
}

// ReconcileReport is the result of comparing the metadata store with the blob store.
type ReconcileReport struct {
	Records         int      `json:"records"`
	Blobs           int      `json:"blobs"`
	OrphanedBlobs   []string `json:"orphaned_blobs"`
	DanglingRecords []string `json:"dangling_records"`
	Removed         int      `json:"removed"`
}

// Consistent reports whether no orphaned blobs or dangling records were found.
func (r ReconcileReport) Consistent() bool {
	return len(r.OrphanedBlobs) == 0 && len(r.DanglingRecords) == 0
}

// MaxUploadSize is the default upload limit (10 MiB).
const MaxUploadSize int64 = 10 << 20

// DefaultFolder is the blob store folder resources are uploaded under.
const DefaultFolder = "resources"

const (
	MIMETypeZip  = "application/zip"
	MIMETypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMETypePPTX = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
)

// AllowedMIMETypes is the upload allow-list.
var AllowedMIMETypes = []string{MIMETypeZip, MIMETypeDOCX, MIMETypePPTX}

var mimeAliases = map[string]string{
	"application/x-zip-compressed": MIMETypeZip,
	"application/x-zip":            MIMETypeZip,
	"multipart/x-zip":              MIMETypeZip,
}

// NormalizeMIMEType strips parameters, lowercases and maps known aliases onto
// their canonical type. Unparseable input is returned as "".
func NormalizeMIMEType(contentType string) string {
	if strings.TrimSpace(contentType) == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	mediaType = strings.ToLower(mediaType)
	if canonical, ok := mimeAliases[mediaType]; ok {
		return canonical
	}
	return mediaType
}

// IsAllowedMIMEType reports whether contentType normalises to a member of AllowedMIMETypes.
func IsAllowedMIMEType(contentType string) bool {
	normalized := NormalizeMIMEType(contentType)
	for _, allowed := range AllowedMIMETypes {
		if normalized == allowed {
			return true
		}
	}
	return false
}

// Env is the runtime mode. Outside production, error responses carry the
// full error chain.
type Env string

const (
	EnvDevelopment Env = "development"
	EnvProduction  Env = "production"
)

func (e Env) IsValid() bool {
	switch e {
	case EnvDevelopment, EnvProduction:
		return true
	default:
		return false
	}
}

func (e Env) IsProduction() bool {
	return e == EnvProduction
}

// ParseEnv accepts the canonical names plus the short forms "dev" and "prod".
func ParseEnv(s string) (Env, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "development", "dev":
		return EnvDevelopment, nil
	case "production", "prod":
		return EnvProduction, nil
	default:
		return "", fmt.Errorf("invalid env: %s (valid: development, production)", s)
	}
}

// Tables holds configurable table names for the SQL metadata backends.
type Tables struct {
	Resources string `mapstructure:"resources"`
}

var validTableNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// IsValidTableName checks if a table name is valid (lowercase, alphanumeric with underscores, max 63 chars).
func IsValidTableName(name string) bool {
	return validTableNameRegex.MatchString(name) && len(name) <= 63
}

// Validate checks that all required table names are set and valid.
func (t Tables) Validate() error {
	if t.Resources == "" {
		return errors.New("validate tables: resources table name cannot be empty")
	}

	if !IsValidTableName(t.Resources) {
		return fmt.Errorf("validate tables: invalid resources table name: %s (must match ^[a-z_][a-z0-9_]*$ and be <= 63 chars)", t.Resources)
	}

	return nil
}
