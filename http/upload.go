package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	filecrud "github.com/Yashchauhan008/file-crud"
	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/google/uuid"
)

const (
	// multipartOverhead is the body allowance on top of the file for
	// boundaries, part headers and the text fields.
	multipartOverhead = 1 << 20
	// multipartMemory is how much of the form is held in memory before
	// parts spill to disk.
	multipartMemory = 8 << 20
)

// uploadForm holds the text fields of an upload request.
type uploadForm struct {
	Topic       string `validate:"required,notblank"`
	Title       string `validate:"required,notblank"`
	Description string `validate:"required,notblank"`
}

var formValidator = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}()

// handleUpload validates a multipart upload, stages the file on disk and
// hands it to the service. Nothing reaches the service unless the file and
// every text field pass validation.
func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadSize+multipartOverhead)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.handleError(w, h.tooLarge())
			return
		}
		h.handleError(w, badRequest("Invalid multipart form", err))
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			slog.Warn("failed to remove multipart temp files", "error", err)
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			h.handleError(w, badRequest("No file uploaded", err))
			return
		}
		h.handleError(w, badRequest("Invalid file part", err))
		return
	}
	defer func() { _ = file.Close() }()

	if header.Size > h.config.MaxUploadSize {
		h.handleError(w, h.tooLarge())
		return
	}
	if header.Size == 0 {
		h.handleError(w, badRequest("Uploaded file is empty", nil))
		return
	}

	form := uploadForm{
		Topic:       r.FormValue("topic"),
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
	}
	if err := formValidator.Struct(form); err != nil {
		h.handleError(w, formError(err))
		return
	}

	contentType, err := detectContentType(file, header)
	if err != nil {
		h.handleError(w, badRequest("Unable to read uploaded file", err))
		return
	}
	if !filecrud.IsAllowedMIMEType(contentType) {
		h.handleError(w, badRequest("File type not allowed. Only zip, docx and pptx are accepted", fmt.Errorf("content type %q", contentType)))
		return
	}

	localPath, size, err := h.stage(file, header.Filename)
	if err != nil {
		h.handleError(w, fmt.Errorf("stage upload: %w: %w", filecrud.ErrInternal, err))
		return
	}
	// The service removes the staged file once the resource is created.
	defer func() {
		if err := os.Remove(localPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("failed to remove staged upload", "path", localPath, "error", err)
		}
	}()

	resource, err := h.service.Create(r.Context(), filecrud.CreateResource{
		LocalPath:   localPath,
		FileName:    header.Filename,
		FileType:    contentType,
		Size:        size,
		Topic:       form.Topic,
		Title:       form.Title,
		Description: form.Description,
	})
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Resource uploaded successfully",
		Data:    resource,
	})
}

// stage copies the upload into the staging directory and returns its path
// and size.
func (h *Handler) stage(src io.Reader, fileName string) (string, int64, error) {
	if err := os.MkdirAll(h.config.StagingDir, 0o750); err != nil {
		return "", 0, fmt.Errorf("create staging dir: %w", err)
	}

	localPath := filepath.Join(h.config.StagingDir, "upload-"+uuid.NewString()+filecrud.FileExt(fileName))
	dst, err := os.OpenFile(localPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", 0, fmt.Errorf("create staged file: %w", err)
	}

	n, err := io.Copy(dst, src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(localPath)
		return "", 0, fmt.Errorf("write staged file: %w", err)
	}

	return localPath, n, nil
}

// detectContentType trusts the part's declared type unless it is missing or
// generic, in which case the content is sniffed.
func detectContentType(file multipart.File, header *multipart.FileHeader) (string, error) {
	declared := filecrud.NormalizeMIMEType(header.Header.Get("Content-Type"))
	if declared != "" && declared != "application/octet-stream" {
		return declared, nil
	}

	mt, err := mimetype.DetectReader(file)
	if err != nil {
		return "", err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	return filecrud.NormalizeMIMEType(mt.String()), nil
}

func (h *Handler) tooLarge() error {
	msg := "File too large. Maximum size is " + humanize.IBytes(uint64(h.config.MaxUploadSize))
	return badRequest(msg, nil)
}

// badRequest builds a validation error whose message is shown to the client.
func badRequest(message string, cause error) error {
	err := fmt.Errorf("%w: %s", filecrud.ErrValidation, message)
	if cause != nil {
		err = fmt.Errorf("%w: %w", err, cause)
	}
	return filecrud.Operational(err, message)
}

func formError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return badRequest("Invalid form fields", err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, strings.ToLower(fe.Field()))
	}

	return badRequest("Missing required fields: "+strings.Join(fields, ", "), err)
}
