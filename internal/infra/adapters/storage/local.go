package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"carbusiness-backend/internal/domain/ports/adapter"
)

var _ adapter.FileStorage = (*LocalStorage)(nil)

// LocalStorage writes proofs to a directory on disk. Dev-mode stand-in for
// the Cloudinary adapter; the returned URL is a file path, good enough for
// eyeballing uploads locally.
type LocalStorage struct {
	root string
}

func NewLocalStorage(root string) *LocalStorage {
	return &LocalStorage{root: root}
}

func (s *LocalStorage) UploadProof(ctx context.Context, userID, filename string, r io.Reader) (string, error) {
	dir := filepath.Join(s.root, "payment-proofs", userID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("local storage mkdir: %w", err)
	}
	dst := filepath.Join(dir, fmt.Sprintf("%d-%s", time.Now().Unix(), filepath.Base(filename)))
	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("local storage create: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("local storage write: %w", err)
	}
	return "file://" + dst, nil
}
