package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// FSStore хранит блобы в дереве <root>/<owner>/<name>.
type FSStore struct {
	root string
}

var _ BlobStore = (*FSStore)(nil)

// NewFSStore создаёт корневой каталог при необходимости.
func NewFSStore(root string) (*FSStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", root, err)
	}
	if err := os.MkdirAll(abs, 0o770); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", abs, err)
	}
	return &FSStore{root: abs}, nil
}

// Root возвращает абсолютный путь корня.
func (s *FSStore) Root() string { return s.root }

func (s *FSStore) ownerDir(owner string) (string, error) {
	if !ValidOwner(owner) {
		return "", ErrInvalidName
	}
	return filepath.Join(s.root, owner), nil
}

func (s *FSStore) path(owner, name string) (string, error) {
	if err := checkKey(owner, name); err != nil {
		return "", err
	}
	return filepath.Join(s.root, owner, name), nil
}

// Put пишет во временный файл и переименовывает его, чтобы читатели не видели частичной записи.
func (s *FSStore) Put(ctx context.Context, owner, name string, r io.Reader) (int64, error) {
	dst, err := s.path(owner, name)
	if err != nil {
		return 0, err
	}
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return 0, fmt.Errorf("mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	n, err := io.Copy(tmp, readerWithContext(ctx, r))
	if err != nil {
		_ = tmp.Close()
		return 0, fmt.Errorf("write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("close blob: %w", err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		return 0, fmt.Errorf("rename blob: %w", err)
	}
	return n, nil
}

func (s *FSStore) Open(_ context.Context, owner, name string) (io.ReadCloser, error) {
	p, err := s.path(owner, name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if !st.Mode().IsRegular() {
		_ = f.Close()
		return nil, ErrNotFound
	}
	return f, nil
}

func (s *FSStore) Remove(_ context.Context, owner, name string) error {
	p, err := s.path(owner, name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Usage суммирует размеры обычных файлов в каталоге владельца (без временных).
func (s *FSStore) Usage(_ context.Context, owner string) (int64, error) {
	dir, err := s.ownerDir(owner)
	if err != nil {
		return 0, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	var total int64
	for _, e := range entries {
		if !e.Type().IsRegular() || e.Name()[0] == '.' {
			continue
		}
		info, err := e.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return 0, err
		}
		total += info.Size()
	}
	return total, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return ctxReader{ctx: ctx, r: r}
}
