// Package storage provides sinks for the output tables of a run.
package storage

import (
	"context"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
)

// Local writes blobs as files under a root directory
type Local struct {
	root string
}

// NewLocal creates a local store rooted at dir
func NewLocal(dir string) *Local {
	return &Local{root: dir}
}

// Path returns the file path of key
func (x *Local) Path(key string) string {
	return filepath.Join(x.root, filepath.FromSlash(key))
}

// Put writes data to <root>/<key>, replacing any existing file
func (x *Local) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return goerr.Wrap(err, "context done before write")
	}

	path := x.Path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return goerr.Wrap(err, "failed to create output directory", goerr.V("path", path))
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return goerr.Wrap(err, "failed to create temporary file", goerr.V("path", path))
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return goerr.Wrap(err, "failed to write file", goerr.V("path", path))
	}
	if err := tmp.Close(); err != nil {
		return goerr.Wrap(err, "failed to close file", goerr.V("path", path))
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return goerr.Wrap(err, "failed to replace file", goerr.V("path", path))
	}

	return nil
}

// Get reads the blob stored under key
func (x *Local) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(x.Path(key))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read file", goerr.V("path", x.Path(key)))
	}
	return data, nil
}

// URI returns the file path of key
func (x *Local) URI(key string) string {
	return x.Path(key)
}
