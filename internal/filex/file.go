// Package filex implements the client-local save action for downloaded
// files: the payload is staged in a transient temporary file (the reference),
// copied into the download directory under its display name and released.
package filex

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Blob is an in-memory binary payload.
type Blob struct {
	Data []byte
}

// Ref is a transient handle to a staged Blob. It must be released exactly once.
type Ref struct {
	path string
}

// Path returns the location of the staged payload.
func (r Ref) Path() string { return r.path }

// Saver stages blobs and turns them into saved files.
type Saver interface {
	// Acquire stages the blob and returns a transient reference to it.
	Acquire(b Blob) (Ref, error)
	// Save stores the referenced payload under the suggested name and returns
	// the final location.
	Save(ref Ref, name string) (string, error)
	// Release frees the transient reference.
	Release(ref Ref) error
}

// DiskSaver saves files into Dir, staging payloads in TempDir (os.TempDir
// when empty).
type DiskSaver struct {
	Dir     string
	TempDir string
}

func NewDiskSaver(dir string) *DiskSaver {
	return &DiskSaver{Dir: dir}
}

func (s *DiskSaver) Acquire(b Blob) (Ref, error) {
	f, err := os.CreateTemp(s.TempDir, "clouddrive-*.part")
	if err != nil {
		return Ref{}, fmt.Errorf("create temp file: %w", err)
	}
	ref := Ref{path: f.Name()}

	if _, err := f.Write(b.Data); err != nil {
		_ = f.Close()
		_ = os.Remove(ref.path)
		return Ref{}, fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(ref.path)
		return Ref{}, fmt.Errorf("close temp file: %w", err)
	}
	return ref, nil
}

func (s *DiskSaver) Save(ref Ref, name string) (string, error) {
	dir, err := EnsureDir(s.Dir)
	if err != nil {
		return "", err
	}

	dst := filepath.Join(dir, SafeName(name))

	in, err := os.Open(ref.path)
	if err != nil {
		return "", fmt.Errorf("open staged file: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o640)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return "", fmt.Errorf("write %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", dst, err)
	}
	return dst, nil
}

func (s *DiskSaver) Release(ref Ref) error {
	if ref.path == "" {
		return nil
	}
	if err := os.Remove(ref.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove staged file: %w", err)
	}
	return nil
}

// SafeName strips any directory part from a server supplied name so a save
// never escapes the download directory.
func SafeName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	switch base {
	case "", ".", "..", "/":
		return "download"
	}
	return base
}

// EnsureDir creates dir (relative paths are resolved against the working
// directory) and returns its absolute path.
func EnsureDir(dir string) (string, error) {
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		dir = filepath.Join(cwd, dir)
	}

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}
