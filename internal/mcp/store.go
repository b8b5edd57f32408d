package mcp

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bornholm/fieldwork/internal/format"
	"github.com/bornholm/fieldwork/internal/model"
)

// ExportExt is the extension of history exports
const ExportExt = ".xlsx"

// ChrootedStore writes exports restricted to a specific directory
type ChrootedStore struct {
	root *os.Root
}

// NewChrootedStore creates a new store restricted to the given directory
func NewChrootedStore(dir string) (*ChrootedStore, error) {
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open root directory: %w", err)
	}

	return &ChrootedStore{
		root: root,
	}, nil
}

// Close closes the root directory
func (s *ChrootedStore) Close() error {
	return s.root.Close()
}

// SaveHistoryXLSX writes a history workbook within the chrooted directory
func (s *ChrootedStore) SaveHistoryXLSX(path string, records []*model.HistoryRecord) error {
	if !strings.EqualFold(filepath.Ext(path), ExportExt) {
		return fmt.Errorf("export path '%s' must end with %s", path, ExportExt)
	}

	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := s.root.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	f, err := s.root.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return format.WriteHistoryXLSX(f, records)
}

// ListExports lists the history exports in a directory
func (s *ChrootedStore) ListExports(dir string) ([]string, error) {
	entries, err := fs.ReadDir(s.root.FS(), dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	files := []string{}
	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), ExportExt) {
			files = append(files, entry.Name())
		}
	}

	return files, nil
}
