package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Metadata describes an uploaded file for path construction.
type Metadata struct {
	OrgID    string
	UserID   string
	Kind     string // e.g. "selfies"
	Filename string
}

// FileStore persists uploaded bytes and returns a stable reference.
type FileStore interface {
	Store(ctx context.Context, data []byte, meta Metadata) (string, error)
}

// DiskStore writes uploads under a base directory, one subtree per kind and
// organization.
type DiskStore struct {
	baseDir string
}

func NewDisk(baseDir string) *DiskStore {
	return &DiskStore{baseDir: baseDir}
}

func (s *DiskStore) Store(ctx context.Context, data []byte, meta Metadata) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", errors.New("empty file")
	}

	kind := meta.Kind
	if kind == "" {
		kind = "files"
	}
	dir := filepath.Join(s.baseDir, kind, meta.OrgID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s-%d%s", meta.UserID, time.Now().UnixNano(), sanitizeExt(meta.Filename))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func sanitizeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
		return ext
	default:
		return ".jpg"
	}
}
