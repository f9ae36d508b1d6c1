// Package upload handles image intake for posts and avatars.
//
// The actual crop/resize work belongs to an external image service; this
// package only validates the incoming multipart file, persists it, and
// hands back the URL path it will be served under. The target bounds the
// external service applies are recorded here as the Kind constants so the
// contract lives in one place.
package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/xid"
	"github.com/sakif/socialhub/internal/apperror"
)

// MaxFileSize caps uploads at 5 MB, matching the limit the frontend
// enforces before submitting.
const MaxFileSize = 5 << 20

// Kind selects the transform profile the external image service applies.
type Kind string

const (
	// KindPost is bounded to 1200x630 (limit — never upscaled).
	KindPost Kind = "post"
	// KindAvatar is cropped to 500x500, centered on the detected face.
	KindAvatar Kind = "avatar"
)

// extensions maps accepted image content types to the stored extension.
// Anything outside this map is rejected before it touches disk.
var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Store persists uploaded images on the local filesystem and serves them
// under /uploads/. It satisfies the same role Cloudinary-style storage
// would in production: Save in, URL out.
type Store struct {
	dir string
}

// NewStore creates the upload directory if needed and returns a Store
// rooted there.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("upload: creating directory %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory files are stored under, for wiring the static
// file server.
func (s *Store) Dir() string {
	return s.dir
}

// Save validates and persists one multipart image file, returning the URL
// path it is served at. The multipart temp file is released when the
// caller closes the form; nothing lingers on disk but the stored copy.
func (s *Store) Save(fh *multipart.FileHeader, kind Kind) (string, error) {
	if fh.Size > MaxFileSize {
		return "", apperror.ValidationFailed("image", "Image must be 5MB or smaller")
	}

	contentType := strings.ToLower(fh.Header.Get("Content-Type"))
	ext, ok := extensions[contentType]
	if !ok {
		return "", apperror.ValidationFailed("image", "Image must be JPEG, PNG, GIF, or WebP")
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("upload: opening form file: %w", err)
	}
	defer src.Close()

	// xid filenames are unguessable enough to avoid collisions and carry
	// the upload kind as a prefix for operability (easy to find all
	// avatars on disk).
	name := string(kind) + "-" + xid.New().String() + ext
	path := filepath.Join(s.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("upload: creating %s: %w", path, err)
	}
	defer dst.Close()

	// io.LimitReader backs up the size check: fh.Size comes from the
	// client's framing, the copy limit is what we actually enforce.
	if _, err := io.Copy(dst, io.LimitReader(src, MaxFileSize+1)); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("upload: writing %s: %w", path, err)
	}

	info, err := dst.Stat()
	if err == nil && info.Size() > MaxFileSize {
		os.Remove(path)
		return "", apperror.ValidationFailed("image", "Image must be 5MB or smaller")
	}

	return "/uploads/" + name, nil
}

// Remove deletes a previously stored file given its URL path. Used when a
// replaced avatar should not linger. Unknown paths are ignored.
func (s *Store) Remove(urlPath string) error {
	name := strings.TrimPrefix(urlPath, "/uploads/")
	if name == "" || strings.Contains(name, "/") || strings.Contains(name, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("upload: removing %s: %w", name, err)
	}
	return nil
}
