package dataset

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	apperrors "github.com/kbukum/dbunit/errors"
)

// Loader parses a fixture file into a DataSet.
type Loader func(path string) (DataSet, error)

var (
	loadersMu sync.RWMutex
	loaders   = make(map[string]Loader)
)

// RegisterLoader makes a fixture format available to every Builder under a
// file extension such as ".xml". Format packages call it from init, so
// importing them for side effects is enough:
//
//	import _ "github.com/kbukum/dbunit/dataset/flatxml"
func RegisterLoader(ext string, fn Loader) {
	loadersMu.Lock()
	defer loadersMu.Unlock()
	loaders[normalizeExt(ext)] = fn
}

func registeredLoader(ext string) (Loader, bool) {
	loadersMu.RLock()
	defer loadersMu.RUnlock()
	fn, ok := loaders[normalizeExt(ext)]
	return fn, ok
}

// LoadFile parses path with the loader registered for its extension.
func LoadFile(path string) (DataSet, error) {
	return loadFile(path, nil)
}

func loadFile(path string, local map[string]Loader) (DataSet, error) {
	ext := normalizeExt(filepath.Ext(path))
	fn, ok := local[ext]
	if !ok {
		fn, ok = registeredLoader(ext)
	}
	if !ok {
		return nil, apperrors.InvalidInput("source",
			fmt.Sprintf("no fixture loader registered for %q (file %s)", ext, path))
	}
	return fn(path)
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
