package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"smartcloset/internal/closet"
)

// Store persists uploaded images: raw bytes land in the upload directory
// under a collision-free name, processed cutouts move into the
// category-keyed wardrobe tree.
type Store struct {
	uploadDir    string
	wardrobeRoot string
}

// New creates the upload directory and one wardrobe folder per category.
func New(uploadDir, wardrobeRoot string) (*Store, error) {
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir failed: %w", err)
	}
	for _, category := range closet.Categories {
		if err := os.MkdirAll(filepath.Join(wardrobeRoot, category), 0o755); err != nil {
			return nil, fmt.Errorf("create wardrobe folder %s failed: %w", category, err)
		}
	}
	return &Store{uploadDir: uploadDir, wardrobeRoot: wardrobeRoot}, nil
}

func (s *Store) UploadDir() string    { return s.uploadDir }
func (s *Store) WardrobeRoot() string { return s.wardrobeRoot }

// SaveUpload writes the raw upload to a random unique name that keeps the
// original extension, and returns the temp file path.
func (s *Store) SaveUpload(r io.Reader, originalName string) (string, error) {
	name := uuid.New().String() + filepath.Ext(originalName)
	path := filepath.Join(s.uploadDir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file failed: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write upload file failed: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close upload file failed: %w", err)
	}
	return path, nil
}

// MoveToCategory relocates a processed cutout into the folder derived from
// the classified category and returns its wardrobe-relative path.
func (s *Store) MoveToCategory(processedPath, category string) (string, error) {
	folder := closet.CategoryFolder(category)
	base := filepath.Base(processedPath)
	dest := filepath.Join(s.wardrobeRoot, folder, base)

	if err := os.Rename(processedPath, dest); err != nil {
		// Rename fails across filesystems; fall back to copy + remove.
		if copyErr := copyFile(processedPath, dest); copyErr != nil {
			os.Remove(dest)
			return "", fmt.Errorf("move processed file failed: %w", copyErr)
		}
		os.Remove(processedPath)
	}
	return filepath.ToSlash(filepath.Join(folder, base)), nil
}

// WardrobePath resolves a stored relative path back to the filesystem.
func (s *Store) WardrobePath(relPath string) string {
	return filepath.Join(s.wardrobeRoot, filepath.FromSlash(relPath))
}

// Remove deletes the file at path, ignoring already-gone files.
func (s *Store) Remove(path string) {
	if path == "" {
		return
	}
	_ = os.Remove(path)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
