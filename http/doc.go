// Package http provides the REST API for file-crud resources.
//
// # Routes
//
//	POST   /api/resources/upload   multipart upload: file, topic, title, description
//	GET    /api/resources          list, most recent first
//	GET    /api/resources/{id}     fetch one resource
//	DELETE /api/resources/{id}     delete the resource and its blob
//	GET    /files/*                blob bytes (filesystem blob store only)
//	GET    /healthz                liveness
//
// Successful responses use the envelope
//
//	{"success": true, "message": "...", "data": ...}
//
// and failures
//
//	{"success": false, "error": "not_found", "message": "...", "stack": "..."}
//
// where stack holds the wrapped error chain and is only sent outside
// production.
//
// # Upload Validation
//
// Uploads are rejected with 400 before the service is called when the body
// exceeds the size limit, the file part is missing, its type is not zip,
// docx or pptx, or a text field is blank. The declared part type is used
// unless it is absent or application/octet-stream, in which case the content
// is sniffed.
//
// The allow-list holds exactly three canonical types: application/zip and
// the docx and pptx OpenXML types. The zip aliases
// application/x-zip-compressed, application/x-zip and multipart/x-zip, which
// some browsers and Windows clients send for .zip files, are normalised to
// application/zip before the check, so stored records only ever carry one
// of the three canonical types. Accepted files are staged in HandlerConfig.StagingDir and the
// staged copy is removed when the request ends.
//
// # Usage
//
//	handler := http.NewHandler(&http.HandlerConfig{
//	    Env:           filecrud.EnvProduction,
//	    MaxUploadSize: filecrud.MaxUploadSize,
//	    Files:         fsStore, // nil for minio or s3
//	}, service)
//	server := &nethttp.Server{Addr: ":5000", Handler: handler.Router()}
//
// The service parameter must implement the Service interface with Create,
// List, Get and Delete methods; *filecrud.ResourceService does.
package http
