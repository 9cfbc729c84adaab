// Package filesystem stores blobs under a local directory and serves them
// over HTTP. Writes go through a temp file and rename, so a blob is either
// fully present or absent.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	filecrud "github.com/Yashchauhan008/file-crud"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// Store provides file system blob storage.
type Store struct {
	root    *os.Root
	baseURL string
}

// NewStore creates a Store on root. Blob URLs are baseURL joined with the
// blob key, so baseURL should point at wherever Store is mounted as an
// http.Handler.
func NewStore(root *os.Root, baseURL string) *Store {
	return &Store{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

// Open creates dir if needed and opens a Store rooted there.
func Open(dir, baseURL string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("open filesystem store: %w", err)
	}

	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("open filesystem store: %w", err)
	}

	return NewStore(root, baseURL), nil
}

// URL returns the public URL of key.
func (s *Store) URL(key string) string {
	return s.baseURL + "/" + key
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// Upload copies the file at localPath to a fresh key under folder.
func (s *Store) Upload(ctx context.Context, localPath, folder, _ string) (filecrud.BlobRef, error) {
	if err := ctx.Err(); err != nil {
		return filecrud.BlobRef{}, err
	}

	if !filecrud.IsValidPath(folder) {
		return filecrud.BlobRef{}, fmt.Errorf("upload: invalid folder: %s", folder)
	}

	src, err := os.Open(localPath)
	if err != nil {
		return filecrud.BlobRef{}, fmt.Errorf("upload: open source: %w", err)
	}
	defer func() { _ = src.Close() }()

	key := filecrud.NewBlobKey(folder, localPath)
	if err := s.write(ctx, key, src); err != nil {
		return filecrud.BlobRef{}, fmt.Errorf("upload: %w", err)
	}

	return filecrud.BlobRef{ID: key, URL: s.URL(key)}, nil
}

func (s *Store) write(ctx context.Context, key string, content io.Reader) error {
	tmpFile := tmpFileName()
	t, err := s.root.Create(tmpFile)
	if err != nil {
		return fmt.Errorf("could not open temp file: %w", err)
	}

	success := false
	defer func() {
		if closeErr := t.Close(); closeErr != nil {
			slog.Warn("failed to close tmp file", "err", closeErr)
		}
		if !success {
			if rmErr := s.root.Remove(tmpFile); rmErr != nil {
				slog.Warn("failed to remove tmp file", "err", rmErr)
			}
		}
	}()

	if _, err := io.Copy(t, &ctxReader{ctx: ctx, r: content}); err != nil {
		return fmt.Errorf("could not copy file contents: %w", err)
	}

	if err := t.Sync(); err != nil {
		return fmt.Errorf("could not sync written file: %w", err)
	}

	dest := filepath.FromSlash(key)
	if dir := filepath.Dir(dest); dir != "." {
		if err := s.root.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("could not create intermediate directories: %w", err)
		}
	}

	if err := s.root.Rename(tmpFile, dest); err != nil {
		return fmt.Errorf("failed to rename file: %w", err)
	}

	success = true
	return nil
}

// Get opens a blob for reading. Returns filecrud.ErrNotFound if it does not exist.
func (s *Store) Get(ctx context.Context, key string) (*os.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !filecrud.IsValidPath(key) || isTmpFile(key) {
		return nil, filecrud.ErrNotFound
	}

	f, err := s.root.Open(filepath.FromSlash(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, filecrud.ErrNotFound
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, filecrud.ErrNotFound
	}

	return f, nil
}

// Delete removes a blob. Returns filecrud.ErrNotFound if it does not exist.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if !filecrud.IsValidPath(key) {
		return filecrud.ErrNotFound
	}

	if err := s.root.Remove(filepath.FromSlash(key)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return filecrud.ErrNotFound
		}
		return fmt.Errorf("could not delete file: %w", err)
	}
	return nil
}

// List walks folder and returns every blob in it. A folder that does not
// exist yet has no blobs.
func (s *Store) List(ctx context.Context, folder string) ([]filecrud.BlobInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !filecrud.IsValidPath(folder) {
		return nil, fmt.Errorf("list: invalid folder: %s", folder)
	}

	blobs := []filecrud.BlobInfo{}
	err := fs.WalkDir(s.root.FS(), folder, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == folder && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || isTmpFile(p) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		blobs = append(blobs, filecrud.BlobInfo{ID: p, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}

	return blobs, nil
}

// Close releases the root directory handle.
func (s *Store) Close() error {
	return s.root.Close()
}

// ServeHTTP serves the blob named by the request path, which should already
// have the mount prefix stripped.
func (s *Store) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	key := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")

	f, err := s.Get(r.Context(), key)
	if err != nil {
		if errors.Is(err, filecrud.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.Error("serve blob", "key", key, "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if mt, err := mimetype.DetectReader(f); err == nil {
		w.Header().Set("Content-Type", mt.String())
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	http.ServeContent(w, r, path.Base(key), info.ModTime(), f)
}

const tmpPrefix = ".t"

func tmpFileName() string {
	return tmpPrefix + uuid.New().String()
}

func isTmpFile(p string) bool {
	return strings.HasPrefix(path.Base(p), tmpPrefix)
}
