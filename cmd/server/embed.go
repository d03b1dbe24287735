package main

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"path"
)

//go:embed embed/sql
var embeddedSQLFS embed.FS

// sqlFiles reads the setup files in the sql directory of the file system, in name order.
func sqlFiles(fsys fs.FS) ([]io.Reader, error) {
	const dir = "embed/sql"
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading sql directory: %w", err)
	}
	var files []io.Reader
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".sql" {
			continue
		}
		b, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading sql file: %w", err)
		}
		files = append(files, bytes.NewReader(b))
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no sql files in %v", dir)
	}
	return files, nil
}
