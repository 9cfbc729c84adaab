package filecrud

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// ResourceRepo defines the interface for resource metadata persistence.
// Implementations must be safe for concurrent use.
type ResourceRepo interface {
	// Insert stores a new record and returns it with its generated ID.
	// All other fields are persisted as given.
	Insert(ctx context.Context, r Resource) (Resource, error)

	// Get returns the record with the given ID, or ErrNotFound.
	// Malformed IDs are reported as ErrNotFound.
	Get(ctx context.Context, id string) (Resource, error)

	// List returns every record ordered by UploadedAt descending, ties broken
	// by insertion order (later first). It returns an empty slice, not nil,
	// when there are no records.
	List(ctx context.Context) ([]Resource, error)

	// Delete removes the record with the given ID, or returns ErrNotFound.
	Delete(ctx context.Context, id string) error
}

// BlobStore defines the interface for object storage of uploaded files.
//
// Implementations return a BlobRef whose URL can be resolved by clients
// without going through the resource API.
type BlobStore interface {
	// Upload stores the file at localPath under folder and returns its
	// identifier and public URL. The local file is not modified.
	Upload(ctx context.Context, localPath, folder, contentType string) (BlobRef, error)

	// Delete removes the blob. Returns ErrNotFound if the backend can tell
	// the blob does not exist.
	Delete(ctx context.Context, blobID string) error

	// List returns every blob stored under folder.
	List(ctx context.Context, folder string) ([]BlobInfo, error)
}

// ServiceConfig holds configuration options for ResourceService.
type ServiceConfig struct {
	Folder            string        // blob store folder (default: DefaultFolder)
	CleanupTimeout    time.Duration // timeout for compensating deletes (default: 30s)
	CompensateOrphans bool          // delete the uploaded blob when the metadata insert fails
}

// ResourceService keeps the blob store and the metadata store paired across
// create, list, get and delete. It holds no mutable state of its own and is
// safe for concurrent use.
type ResourceService struct {
	repo              ResourceRepo
	blobs             BlobStore
	folder            string
	cleanupTimeout    time.Duration
	compensateOrphans bool
	validate          *validator.Validate
	now               func() time.Time
}

func NewResourceService(repo ResourceRepo, blobs BlobStore, cfg ServiceConfig) (*ResourceService, error) {
	if repo == nil {
		return nil, errors.New("new resource service: repo is required")
	}
	if blobs == nil {
		return nil, errors.New("new resource service: blob store is required")
	}

	folder := strings.Trim(cfg.Folder, "/")
	if folder == "" {
		folder = DefaultFolder
	}
	if !IsValidPath(folder) {
		return nil, fmt.Errorf("new resource service: invalid folder: %s", cfg.Folder)
	}

	cleanupTimeout := cfg.CleanupTimeout
	if cleanupTimeout <= 0 {
		cleanupTimeout = 30 * time.Second
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.RegisterValidation("notblank", validators.NotBlank); err != nil {
		return nil, fmt.Errorf("new resource service: %w", err)
	}

	return &ResourceService{
		repo:              repo,
		blobs:             blobs,
		folder:            folder,
		cleanupTimeout:    cleanupTimeout,
		compensateOrphans: cfg.CompensateOrphans,
		validate:          validate,
		now:               time.Now,
	}, nil
}

// Create uploads the staged file to the blob store and then records its
// metadata.
//
// The method performs the following steps:
//  1. Validates that every required field is present
//  2. Uploads the file at in.LocalPath to the blob store
//  3. Inserts the metadata record
//  4. Removes the staged local file (best effort, failures are logged)
//
// If the upload fails nothing is recorded and the staged file is left in
// place for the caller. If the insert fails the uploaded blob is orphaned;
// with CompensateOrphans it is deleted on a background context bounded by
// the cleanup timeout, and a failed compensation is joined into the error.
//
// Error types returned:
//   - ErrValidation: a required field is missing or blank
//   - ErrUpstream: the blob upload or the metadata insert failed
//   - context.Canceled or context.DeadlineExceeded: ctx was done before starting
func (s *ResourceService) Create(ctx context.Context, in CreateResource) (Resource, error) {
	if err := ctx.Err(); err != nil {
		return Resource{}, fmt.Errorf("create resource: %w", err)
	}

	if err := s.validate.Struct(in); err != nil {
		return Resource{}, fmt.Errorf("create resource: %w", validationError(err))
	}

	ref, err := s.blobs.Upload(ctx, in.LocalPath, s.folder, in.FileType)
	if err != nil {
		return Resource{}, fmt.Errorf("create resource: upload blob: %w: %w", ErrUpstream, err)
	}

	record := Resource{
		Topic:       in.Topic,
		Title:       in.Title,
		Description: in.Description,
		FileName:    in.FileName,
		FileURL:     ref.URL,
		BlobID:      ref.ID,
		FileType:    in.FileType,
		Size:        in.Size,
		// Millisecond precision is the coarsest any backend stores.
		UploadedAt: s.now().UTC().Truncate(time.Millisecond),
	}

	created, err := s.repo.Insert(ctx, record)
	if err != nil {
		insertErr := fmt.Errorf("create resource: insert metadata: %w: %w", ErrUpstream, err)
		if !s.compensateOrphans {
			slog.Warn("blob orphaned by failed metadata insert", "blob_id", ref.ID, "err", err)
			return Resource{}, insertErr
		}

		cleanupCtx, cancel := context.WithTimeout(context.Background(), s.cleanupTimeout)
		defer cancel()

		if delErr := s.blobs.Delete(cleanupCtx, ref.ID); delErr != nil {
			return Resource{}, errors.Join(insertErr, fmt.Errorf("compensating blob delete %s: %w", ref.ID, delErr))
		}
		return Resource{}, insertErr
	}

	if rmErr := os.Remove(in.LocalPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
		slog.Warn("failed to remove staged upload", "path", in.LocalPath, "err", rmErr)
	}

	return created, nil
}

// List returns every resource, most recently uploaded first.
func (s *ResourceService) List(ctx context.Context) ([]Resource, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}

	resources, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w: %w", ErrUpstream, err)
	}
	if resources == nil {
		resources = []Resource{}
	}

	return resources, nil
}

// Get returns the resource with the given ID, or ErrNotFound.
func (s *ResourceService) Get(ctx context.Context, id string) (Resource, error) {
	if err := ctx.Err(); err != nil {
		return Resource{}, fmt.Errorf("get resource: %w", err)
	}

	if strings.TrimSpace(id) == "" {
		return Resource{}, fmt.Errorf("get resource: %w", ErrNotFound)
	}

	r, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Resource{}, fmt.Errorf("get resource %s: %w", id, ErrNotFound)
		}
		return Resource{}, fmt.Errorf("get resource %s: %w: %w", id, ErrUpstream, err)
	}

	return r, nil
}

// Delete removes the resource's blob and then its metadata record.
//
// An unknown ID fails with ErrNotFound before anything is touched. If the
// blob delete fails the record is left intact. If the record delete fails
// after the blob is gone, the error is returned and the record dangles
// until Reconcile removes it. A blob that is already missing does not stop
// the record from being deleted.
func (s *ResourceService) Delete(ctx context.Context, id string) error {
	r, err := s.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("delete resource: %w", err)
	}

	if err := s.blobs.Delete(ctx, r.BlobID); err != nil {
		if !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("delete resource %s: delete blob: %w: %w", id, ErrUpstream, err)
		}
		slog.Warn("blob already missing, deleting record", "id", id, "blob_id", r.BlobID)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("delete resource %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("delete resource %s: delete metadata: %w: %w", id, ErrUpstream, err)
	}

	return nil
}

// Reconcile compares every metadata record with every blob in the service
// folder. Orphaned blobs have no record; dangling records point at a blob
// in the folder that does not exist. Records whose blob lies outside the
// folder are left alone. With opts.Fix both are removed; processing stops at
// the first store error and the report reflects what was removed so far.
//
// Reconcile is not atomic with concurrent creates: a blob uploaded by a
// Create whose insert has not yet committed is reported as orphaned.
func (s *ResourceService) Reconcile(ctx context.Context, opts ReconcileOptions) (ReconcileReport, error) {
	if err := ctx.Err(); err != nil {
		return ReconcileReport{}, fmt.Errorf("reconcile: %w", err)
	}

	records, err := s.repo.List(ctx)
	if err != nil {
		return ReconcileReport{}, fmt.Errorf("reconcile: list records: %w: %w", ErrUpstream, err)
	}

	blobs, err := s.blobs.List(ctx, s.folder)
	if err != nil {
		return ReconcileReport{}, fmt.Errorf("reconcile: list blobs: %w: %w", ErrUpstream, err)
	}

	report := ReconcileReport{
		Records:         len(records),
		Blobs:           len(blobs),
		OrphanedBlobs:   []string{},
		DanglingRecords: []string{},
	}

	live := make(map[string]struct{}, len(blobs))
	for _, b := range blobs {
		live[b.ID] = struct{}{}
	}

	// Only blobs under the folder were listed, so a record pointing
	// elsewhere (written under an earlier folder setting) cannot be judged.
	prefix := s.folder + "/"
	referenced := make(map[string]struct{}, len(records))
	outside := 0
	for _, r := range records {
		referenced[r.BlobID] = struct{}{}
		if !strings.HasPrefix(r.BlobID, prefix) {
			outside++
			continue
		}
		if _, ok := live[r.BlobID]; !ok {
			report.DanglingRecords = append(report.DanglingRecords, r.ID)
		}
	}
	if outside > 0 {
		slog.Info("reconcile skipped records outside the blob folder", "folder", s.folder, "count", outside)
	}

	for _, b := range blobs {
		if _, ok := referenced[b.ID]; !ok {
			report.OrphanedBlobs = append(report.OrphanedBlobs, b.ID)
		}
	}

	if !opts.Fix {
		return report, nil
	}

	for _, blobID := range report.OrphanedBlobs {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("reconcile: %w", err)
		}
		if err := s.blobs.Delete(ctx, blobID); err != nil && !errors.Is(err, ErrNotFound) {
			return report, fmt.Errorf("reconcile: delete orphaned blob %s: %w: %w", blobID, ErrUpstream, err)
		}
		report.Removed++
	}

	for _, id := range report.DanglingRecords {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("reconcile: %w", err)
		}
		if err := s.repo.Delete(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
			return report, fmt.Errorf("reconcile: delete dangling record %s: %w: %w", id, ErrUpstream, err)
		}
		report.Removed++
	}

	return report, nil
}

// validationError turns validator output into an ErrValidation that names
// the offending fields.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fieldName(fe.Field()))
	}

	msg := strings.Join(fields, ", ") + " required"
	return Operational(fmt.Errorf("%w: %s", ErrValidation, msg), msg)
}

// fieldName converts a Go field name into its JSON name.
func fieldName(field string) string {
	switch field {
	case "LocalPath":
		return "file"
	case "FileURL":
		return "fileUrl"
	case "":
		return field
	default:
		return strings.ToLower(field[:1]) + field[1:]
	}
}
