package main

import (
	"fmt"
	"os"

	"github.com/q-jackboylan/skweak/storage"
	"github.com/q-jackboylan/skweak/storage/filesystem"
	"github.com/q-jackboylan/skweak/storage/sqlite/zombiezen"
)

func NewDocRepository(p *Pool, path string) (storage.DocRepository, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("repository not found: %s", path)
	}

	if info.IsDir() {
		fs, err := filesystem.NewDocStore(path)
		if err != nil {
			return nil, err
		}
		if err := fs.LoadList(); err != nil {
			return nil, err
		}
		return fs, nil
	}

	pool, err := p.Open(path)
	if err != nil {
		return nil, err
	}
	return zombiezen.NewDocStore(pool), nil
}

func NewFormRepository(p *Pool, path string) (storage.FormRepository, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("repository not found: %s", path)
	}

	if !info.IsDir() && isSQLite(path) {
		pool, err := p.Open(path)
		if err != nil {
			return nil, err
		}
		return zombiezen.NewFormStore(pool), nil
	}

	return filesystem.NewFormStore(path), nil
}

// isSQLite reports whether the file starts with the SQLite magic header.
func isSQLite(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	header := make([]byte, 16)
	if _, err := f.Read(header); err != nil {
		return false
	}
	return string(header[:15]) == "SQLite format 3"
}
