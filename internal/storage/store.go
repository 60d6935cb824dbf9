package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store persists uploaded post media and resolves stored paths to public
// URLs. Posts keep the returned path list, never the bytes.
type Store interface {
	// Save writes the file and returns its storage path under the posts/ prefix.
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
	// URL turns a stored path into a public URL.
	URL(storedPath string) string
}

// NormalizePath converts legacy backslash-separated stored paths to forward
// slashes. Rows written on Windows hosts carry backslashes; URLs must not.
func NormalizePath(storedPath string) string {
	return strings.ReplaceAll(storedPath, `\`, "/")
}

// DiskStore writes media under a local root directory, served at
// baseURL/storage/.
type DiskStore struct {
	root    string
	baseURL string
}

func NewDiskStore(root, baseURL string) *DiskStore {
	return &DiskStore{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *DiskStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	stored := path.Join("posts", uuid.New().String()+strings.ToLower(path.Ext(filename)))

	dst := filepath.Join(s.root, filepath.FromSlash(stored))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("creating media dir: %w", err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("creating media file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("writing media file: %w", err)
	}

	return stored, nil
}

func (s *DiskStore) URL(storedPath string) string {
	return s.baseURL + "/storage/" + NormalizePath(storedPath)
}

// Root returns the directory media is written to, for serving static files.
func (s *DiskStore) Root() string {
	return s.root
}
