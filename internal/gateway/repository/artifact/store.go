// Package artifact stores exported copies of generated artifacts.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

// Store persists exported artifact files, grouped by export id.
type Store interface {
	Put(ctx context.Context, exportID, path string, content []byte) error
	Get(ctx context.Context, exportID, path string) ([]byte, error)
	// GetURL returns a download link, or "" when the backend has none.
	GetURL(ctx context.Context, exportID, path string) (string, error)
	List(ctx context.Context, exportID string) ([]string, error)
}

var (
	ErrNotFound = errors.New("artifact not found")
	// ErrInvalidKey rejects an empty export id or a path that is not clean.
	ErrInvalidKey = errors.New("invalid artifact key")
)

func normalizeKey(exportID, p string) (string, string, error) {
	exportID = strings.TrimSpace(exportID)
	p = strings.TrimLeft(strings.TrimSpace(p), "/")
	if exportID == "" {
		return "", "", fmt.Errorf("%w: export_id is required", ErrInvalidKey)
	}
	if strings.Contains(exportID, "/") {
		return "", "", fmt.Errorf("%w: export_id %q contains a slash", ErrInvalidKey, exportID)
	}
	if p == "" {
		return "", "", fmt.Errorf("%w: path is required", ErrInvalidKey)
	}
	if clean := path.Clean(p); clean != p || strings.HasPrefix(clean, "..") {
		return "", "", fmt.Errorf("%w: path %q is not clean", ErrInvalidKey, p)
	}
	return exportID, p, nil
}

func normalizeExportID(exportID string) (string, error) {
	exportID = strings.TrimSpace(exportID)
	if exportID == "" || strings.Contains(exportID, "/") {
		return "", fmt.Errorf("%w: export_id %q", ErrInvalidKey, exportID)
	}
	return exportID, nil
}

func objectKey(exportID, p string) string {
	return exportID + "/" + p
}

// contentType picks a text content type for the known artifact extensions.
func contentType(p string) string {
	switch path.Ext(p) {
	case ".rs":
		return "text/x-rust; charset=utf-8"
	case ".toml":
		return "application/toml; charset=utf-8"
	case ".md":
		return "text/markdown; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}
