// Package storage persists uploaded files on local disk.
package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/rs/xid"
)

// Disk stores files in Dir and addresses them by a public path made of
// Prefix and the generated file name, e.g. "uploads/cv37rs3pp9olc6atsptg.png".
// The HTTP layer serves Dir under "/"+Prefix.
type Disk struct {
	dir    string
	prefix string
}

// NewDisk creates the directory if needed.
func NewDisk(dir, prefix string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: creating upload dir: %w", err)
	}
	return &Disk{dir: dir, prefix: prefix}, nil
}

// Dir returns the directory files are written to.
func (d *Disk) Dir() string { return d.dir }

// Prefix returns the public path prefix.
func (d *Disk) Prefix() string { return d.prefix }

// Save writes data under a fresh name with the given extension (".png") and
// returns the public path. xid names are unique and sortable by creation time,
// so a client-supplied file name never reaches the filesystem.
func (d *Disk) Save(ctx context.Context, ext string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := xid.New().String() + ext
	f, err := os.OpenFile(filepath.Join(d.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("storage: creating %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("storage: writing %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("storage: closing %s: %w", name, err)
	}

	return path.Join(d.prefix, name), nil
}

// Remove deletes a file previously returned by Save. Used to roll back when
// recording the upload fails.
func (d *Disk) Remove(publicPath string) error {
	name := path.Base(publicPath)
	if err := os.Remove(filepath.Join(d.dir, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: removing %s: %w", name, err)
	}
	return nil
}
