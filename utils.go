package filecrud

import (
	"path"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

// IsValidPath reports whether p is usable as a blob folder or blob key.
// A valid path:
//   - is not empty, ".", or "/"
//   - is relative and does not end with "/"
//   - contains no ".." and no empty or "." segments
//   - contains none of \ ? # ~
//   - is valid UTF-8 without control characters or whitespace
func IsValidPath(p string) bool {
	if p == "" || p == "/" || p == "." {
		return false
	}

	if p[0] == '/' || strings.HasSuffix(p, "/") {
		return false
	}

	if strings.Contains(p, "..") || strings.Contains(p, "//") {
		return false
	}

	if strings.ContainsAny(p, `\?#~`) {
		return false
	}

	if !utf8.ValidString(p) {
		return false
	}

	if strings.HasPrefix(p, "./") || strings.Contains(p, "/./") || strings.HasSuffix(p, "/.") {
		return false
	}

	for _, r := range p {
		if r < 0x20 || r == 0x7f || unicode.IsSpace(r) {
			return false
		}
	}

	return true
}

// FileExt returns the lowercased extension of name, or "" when the
// extension would not form a valid path segment.
func FileExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if len(ext) < 2 || !IsValidPath("x"+ext) {
		return ""
	}
	return ext
}

// NewBlobKey returns a fresh key under folder that keeps the extension of
// fileName, e.g. "resources/3f1c...9a.pptx".
func NewBlobKey(folder, fileName string) string {
	return path.Join(folder, uuid.NewString()+FileExt(fileName))
}
