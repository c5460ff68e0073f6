package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/dmitrymomot/mailroom/pkg/storage"
)

// Source is a backend that stores raw template text.
// Read must return an error matching fs.ErrNotExist when name is absent.
type Source interface {
	Name() string
	Read(ctx context.Context, name string) ([]byte, error)
}

// FSSource reads templates from an fs.FS such as an embed.FS or os.DirFS.
type FSSource struct {
	fsys fs.FS
	name string
}

// NewFSSource creates a source named name over fsys.
func NewFSSource(name string, fsys fs.FS) *FSSource {
	return &FSSource{name: name, fsys: fsys}
}

// Name returns the source name used in logs and Template.Source.
func (s *FSSource) Name() string { return s.name }

// Read returns the content of the file called name.
func (s *FSSource) Read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// ObjectReader reads template objects by name.
// It is implemented by *storage.Bucket.
type ObjectReader interface {
	Read(ctx context.Context, name string) ([]byte, error)
}

// StorageSource reads templates from object storage.
type StorageSource struct {
	objects ObjectReader
	name    string
}

// NewStorageSource creates a source named name over objects.
func NewStorageSource(name string, objects ObjectReader) *StorageSource {
	return &StorageSource{name: name, objects: objects}
}

// Name returns the source name used in logs and Template.Source.
func (s *StorageSource) Name() string { return s.name }

// Read returns the content of the object called name. Missing objects are
// reported as fs.ErrNotExist.
func (s *StorageSource) Read(ctx context.Context, name string) ([]byte, error) {
	data, err := s.objects.Read(ctx, name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", fs.ErrNotExist, err)
		}
		return nil, err
	}
	return data, nil
}

var (
	_ Source       = (*FSSource)(nil)
	_ Source       = (*StorageSource)(nil)
	_ ObjectReader = (*storage.Bucket)(nil)
)
