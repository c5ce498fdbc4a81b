// Package preview exposes a read-only, limit-bounded view into a task's
// working folder: a shallow file listing and single-file reads, both
// defended against path escape and symlink tricks.
package preview

import (
	"encoding/base64"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/cuemby/warren-vm/pkg/apperr"
	"github.com/cuemby/warren-vm/pkg/types"
)

const (
	maxDepth     = 6
	maxFiles     = 300
	maxReadBytes = 256 * 1024
)

// TaskResolver resolves a task id to its canonical working folder. In
// production this is backed by a taskstore.Store; tests can supply a
// func-based fake.
type TaskResolver interface {
	WorkingFolder(taskID string) (string, error)
}

// ResolverFunc adapts a plain function to TaskResolver.
type ResolverFunc func(taskID string) (string, error)

// WorkingFolder implements TaskResolver.
func (f ResolverFunc) WorkingFolder(taskID string) (string, error) { return f(taskID) }

// Facade is the preview entry point, scoped to a TaskResolver.
type Facade struct {
	resolver TaskResolver
}

// New returns a Facade backed by resolver.
func New(resolver TaskResolver) *Facade {
	return &Facade{resolver: resolver}
}

// List performs a depth-limited, count-limited traversal of taskID's
// working folder, returning only regular files and skipping symlinks at
// every level.
func (f *Facade) List(taskID string) (types.PreviewListing, error) {
	root, err := f.resolveFolder(taskID)
	if err != nil {
		return types.PreviewListing{}, err
	}

	listing := types.PreviewListing{Root: root}
	err = walk(root, root, 0, &listing)
	if err != nil {
		return types.PreviewListing{}, err
	}

	sort.Slice(listing.Files, func(i, j int) bool {
		return listing.Files[i].RelativePath < listing.Files[j].RelativePath
	})

	return listing, nil
}

func walk(root, dir string, depth int, listing *types.PreviewListing) error {
	if depth > maxDepth {
		return nil
	}
	if len(listing.Files) >= maxFiles {
		listing.Truncated = true
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return apperr.Wrap(apperr.IO, err, "read dir %s", dir)
	}

	for _, entry := range entries {
		if len(listing.Files) >= maxFiles {
			listing.Truncated = true
			return nil
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.Mode()&os.ModeSymlink != 0 {
			continue
		}

		full := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			if err := walk(root, full, depth+1, listing); err != nil {
				return err
			}
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}

		rel, err := filepath.Rel(root, full)
		if err != nil {
			continue
		}

		listing.Files = append(listing.Files, types.PreviewFile{
			RelativePath: filepath.ToSlash(rel),
			SizeBytes:    info.Size(),
			ModifiedUnix: info.ModTime().Unix(),
		})
	}

	return nil
}

// Read validates relativePath, verifies it resolves to a regular file
// inside taskID's working folder, and returns up to 256 KiB of its
// content.
func (f *Facade) Read(taskID, relativePath string) (types.PreviewRead, error) {
	root, err := f.resolveFolder(taskID)
	if err != nil {
		return types.PreviewRead{}, err
	}

	if err := validateRelativePath(relativePath); err != nil {
		return types.PreviewRead{}, err
	}

	full := filepath.Join(root, filepath.FromSlash(relativePath))

	info, err := os.Lstat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return types.PreviewRead{}, apperr.New(apperr.NotFound, "file %s not found", relativePath)
		}
		return types.PreviewRead{}, apperr.Wrap(apperr.IO, err, "stat %s", relativePath)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return types.PreviewRead{}, apperr.New(apperr.Validation, "symlinks are not allowed: %s", relativePath)
	}
	if !info.Mode().IsRegular() {
		return types.PreviewRead{}, apperr.New(apperr.Validation, "not a regular file: %s", relativePath)
	}

	canonicalRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return types.PreviewRead{}, apperr.Wrap(apperr.IO, err, "resolve working folder %s", root)
	}
	canonicalFull, err := filepath.EvalSymlinks(full)
	if err != nil {
		return types.PreviewRead{}, apperr.Wrap(apperr.IO, err, "resolve %s", relativePath)
	}
	if !withinDir(canonicalRoot, canonicalFull) {
		return types.PreviewRead{}, apperr.New(apperr.Validation, "path escapes working folder: %s", relativePath)
	}

	data, truncated, size, err := readCapped(full, maxReadBytes)
	if err != nil {
		return types.PreviewRead{}, err
	}

	mime := mimeType(relativePath)
	encoding, content := encode(mime, data)

	return types.PreviewRead{
		Path:      filepath.ToSlash(relativePath),
		MimeType:  mime,
		Encoding:  encoding,
		Content:   content,
		Truncated: truncated,
		Size:      size,
	}, nil
}

func (f *Facade) resolveFolder(taskID string) (string, error) {
	folder, err := f.resolver.WorkingFolder(taskID)
	if err != nil {
		return "", err
	}
	if folder == "" {
		return "", apperr.New(apperr.NotFound, "task %s has no working folder", taskID)
	}
	return folder, nil
}

func validateRelativePath(p string) error {
	if p == "" {
		return apperr.New(apperr.Validation, "path must not be empty")
	}
	if strings.ContainsRune(p, 0) {
		return apperr.New(apperr.Validation, "path must not contain null bytes")
	}
	if strings.Contains(p, "\\") {
		return apperr.New(apperr.Validation, "path must use / separators")
	}
	if path.IsAbs(p) || strings.HasPrefix(p, "/") {
		return apperr.New(apperr.Validation, "path must be relative")
	}
	for _, segment := range strings.Split(p, "/") {
		if segment == ".." {
			return apperr.New(apperr.Validation, "path must not contain .. segments")
		}
	}
	return nil
}

func withinDir(root, candidate string) bool {
	rel, err := filepath.Rel(root, candidate)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func readCapped(path string, limit int64) (data []byte, truncated bool, size int64, err error) {
	info, statErr := os.Stat(path)
	if statErr != nil {
		return nil, false, 0, apperr.Wrap(apperr.IO, statErr, "stat %s", path)
	}
	size = info.Size()

	file, openErr := os.Open(path)
	if openErr != nil {
		return nil, false, 0, apperr.Wrap(apperr.IO, openErr, "open %s", path)
	}
	defer file.Close()

	buf := make([]byte, limit+1)
	n, readErr := io.ReadFull(file, buf)
	if readErr != nil && readErr != io.ErrUnexpectedEOF && readErr != io.EOF {
		return nil, false, 0, apperr.Wrap(apperr.IO, readErr, "read %s", path)
	}

	if int64(n) > limit {
		return buf[:limit], true, size, nil
	}
	return buf[:n], false, size, nil
}

var extMime = map[string]string{
	"md": "text/plain", "txt": "text/plain", "rs": "text/plain", "ts": "text/plain",
	"tsx": "text/plain", "js": "text/plain", "jsx": "text/plain", "toml": "text/plain",
	"yaml": "text/plain", "yml": "text/plain", "css": "text/plain", "svelte": "text/plain",
	"sh": "text/plain",
	"json":  "application/json",
	"csv":   "text/csv",
	"html":  "text/html",
	"htm":   "text/html",
	"png":   "image/png",
	"jpg":   "image/jpeg",
	"jpeg":  "image/jpeg",
	"gif":   "image/gif",
	"webp":  "image/webp",
	"svg":   "image/svg+xml",
}

func mimeType(relativePath string) string {
	ext := strings.TrimPrefix(filepath.Ext(relativePath), ".")
	if mime, ok := extMime[strings.ToLower(ext)]; ok {
		return mime
	}
	return "application/octet-stream"
}

func encode(mime string, data []byte) (encoding, content string) {
	isImage := strings.HasPrefix(mime, "image/")
	if !isImage && utf8.Valid(data) && !containsNUL(data) {
		return "utf8", string(data)
	}
	return "base64", base64.StdEncoding.EncodeToString(data)
}

func containsNUL(data []byte) bool {
	for _, b := range data {
		if b == 0 {
			return true
		}
	}
	return false
}
