// Package filecrud provides the resource lifecycle for a small
// resource-sharing service: uploaded files tagged with a topic, title and
// description, stored in a blob store and indexed in a metadata store.
//
// # Key Components
//
//   - ResourceService: orchestrates create, get, list, delete and reconcile
//     across the two stores
//   - ResourceRepo: metadata persistence (MongoDB, PostgreSQL, SQLite)
//   - BlobStore: object storage (MinIO, S3, local filesystem)
//
// # Consistency
//
// A resource is created by uploading its blob and then inserting its
// metadata record, and destroyed by deleting its blob and then its record.
// A failure between the two steps is reported to the caller and leaves
// either an orphaned blob (create) or a dangling record (delete). Neither
// is rolled back automatically unless ServiceConfig.CompensateOrphans is set;
// ResourceService.Reconcile finds and optionally removes both.
//
// # Example Usage
//
//	service, err := filecrud.NewResourceService(repo, blobs, filecrud.ServiceConfig{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := service.Create(ctx, filecrud.CreateResource{
//	    LocalPath:   "/tmp/staging/upload-123.pptx",
//	    FileName:    "notes.pptx",
//	    FileType:    filecrud.MIMETypePPTX,
//	    Size:        2048,
//	    Topic:       "math",
//	    Title:       "Algebra Notes",
//	    Description: "chapter 1",
//	})
//
// See the http package for the REST API and the database and blobstore
// packages for backend implementations.
package filecrud
