package services

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yeremiapane/pc-cafe/utils"
)

// AllowedImageExts lists the accepted upload extensions.
var AllowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// AssetStore saves menu images on local disk. Stored paths are relative and
// always start with PublicPrefix.
type AssetStore struct {
	Dir          string
	PublicPrefix string
}

func NewAssetStore(dir string) *AssetStore {
	return &AssetStore{Dir: dir, PublicPrefix: "uploads"}
}

// Save writes the upload and returns its relative path, e.g. uploads/<file>.
func (s *AssetStore) Save(fh *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !AllowedImageExts[ext] {
		return "", utils.BadRequest("image must be jpg, jpeg, png, gif or webp")
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", utils.Internal("failed to store image", err)
	}

	name := fmt.Sprintf("%d-%s-%s", time.Now().UnixNano(), uuid.NewString()[:8], sanitizeFilename(fh.Filename))

	src, err := fh.Open()
	if err != nil {
		return "", utils.Internal("failed to read image", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return "", utils.Internal("failed to store image", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", utils.Internal("failed to store image", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return "", utils.Internal("failed to store image", err)
	}

	return path.Join(s.PublicPrefix, name), nil
}

// Remove deletes a previously saved asset. A missing file is not an error.
func (s *AssetStore) Remove(rel string) error {
	if rel == "" {
		return nil
	}
	name := path.Base(rel)
	if name == "." || name == "/" {
		return nil
	}
	err := os.Remove(filepath.Join(s.Dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// URL joins the public base URL and a stored path.
func (s *AssetStore) URL(baseURL string, rel *string) *string {
	if rel == nil || *rel == "" {
		return nil
	}
	u := strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(*rel, "/")
	return &u
}

func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := b.String()
	if out == "" || out == "." {
		return "image"
	}
	return out
}
