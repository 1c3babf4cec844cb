// Package filequeue is the set of data files waiting to be uploaded: every
// regular file in one directory, minus hidden files and files still being
// written (*.tmp).
package filequeue

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dmitrijs2005/beiwe-client/internal/filex"
)

const tmpSuffix = ".tmp"

// Item is one queued file.
type Item struct {
	Name string
	Size int64
}

// Queue is a directory of uploadable files.
type Queue struct {
	dir string
}

// New opens the queue at dir, creating it if missing.
func New(dir string) (*Queue, error) {
	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, err
	}
	return &Queue{dir: abs}, nil
}

func (q *Queue) Dir() string { return q.dir }

// List returns the uploadable files sorted by name.
func (q *Queue) List() ([]Item, error) {
	entries, err := os.ReadDir(q.dir)
	if err != nil {
		return nil, fmt.Errorf("read queue dir: %w", err)
	}

	var items []Item
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || strings.HasPrefix(name, ".") || strings.HasSuffix(name, tmpSuffix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}
		items = append(items, Item{Name: name, Size: info.Size()})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

// Open returns a reader over the named file and its current size.
func (q *Queue) Open(name string) (io.ReadCloser, int64, error) {
	p, err := q.path(name)
	if err != nil {
		return nil, 0, err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, err
	}
	return f, info.Size(), nil
}

// Delete removes the named file. A file that is already gone is not an error.
func (q *Queue) Delete(name string) error {
	p, err := q.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	return nil
}

// Add copies r into the queue as name. The file only becomes visible to
// List once it is complete.
func (q *Queue) Add(name string, r io.Reader) error {
	p, err := q.path(name)
	if err != nil {
		return err
	}
	tmp := p + tmpSuffix
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close %s: %w", name, err)
	}
	return os.Rename(tmp, p)
}

func (q *Queue) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid queue file name %q", name)
	}
	return filepath.Join(q.dir, name), nil
}
