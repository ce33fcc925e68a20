// Package objectstore stores uploaded media in a waffle storage backend
// and removes it again. It owns key layout and asset classification; the
// backend (S3, local filesystem or memory) is any storage.Store.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/bemyforce/bemyforce/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// File is one uploaded file held in memory.
type File struct {
	Name        string
	ContentType string
	Data        []byte
	Size        int64
}

// Result describes a stored object.
type Result struct {
	URL       string
	PublicID  string
	AssetType models.AssetType
}

// Store uploads media files into a storage backend. PublicID is the
// backend key and is what Delete expects.
type Store struct {
	backend storage.Store
}

// New wraps a storage backend.
func New(backend storage.Store) *Store {
	return &Store{backend: backend}
}

// Backend returns the underlying storage backend.
func (s *Store) Backend() storage.Store { return s.backend }

// ErrEmptyFile is returned when a file has no content.
var ErrEmptyFile = errors.New("objectstore: empty file")

// maxParallel bounds concurrent transfers for one request.
const maxParallel = 4

// Classify maps a MIME type to an asset type. Anything that is not a
// video is stored as an image.
func Classify(contentType string) models.AssetType {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "video/") {
		return models.AssetVideo
	}
	return models.AssetImage
}

// Key builds a unique object key under folder, keeping the file extension.
func Key(folder, name string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	if len(ext) > 10 {
		ext = ""
	}
	folder = strings.Trim(path.Clean("/"+filepath.ToSlash(folder)), "/")
	if folder == "" {
		return uuid.NewString() + ext
	}
	return folder + "/" + uuid.NewString() + ext
}

// Upload stores f under a fresh key in folder.
func (s *Store) Upload(ctx context.Context, f File, folder string) (Result, error) {
	if len(f.Data) == 0 {
		return Result{}, ErrEmptyFile
	}
	key := Key(folder, f.Name)
	contentType := f.ContentType
	if contentType == "" {
		contentType = storage.DetectContentType(f.Name, f.Data)
	}
	if err := s.backend.PutBytes(ctx, key, f.Data, &storage.PutOptions{ContentType: contentType}); err != nil {
		return Result{}, fmt.Errorf("%s storage upload %s: %w", s.backend.Backend(), key, err)
	}
	return Result{
		URL:       s.backend.URL(key),
		PublicID:  key,
		AssetType: Classify(contentType),
	}, nil
}

// Delete removes one object. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, publicID string) error {
	if err := s.backend.Delete(ctx, publicID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%s storage delete %s: %w", s.backend.Backend(), publicID, err)
	}
	return nil
}

// UploadMany uploads files in parallel and returns results in input order.
// If any upload fails, objects already stored by this call are deleted
// before the error is returned.
func (s *Store) UploadMany(ctx context.Context, files []File, folder string) ([]Result, error) {
	results := make([]Result, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for i := range files {
		i := i
		g.Go(func() error {
			res, err := s.Upload(gctx, files[i], folder)
			if err != nil {
				return fmt.Errorf("upload %d of %d: %w", i+1, len(files), err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		var done []string
		for _, r := range results {
			if r.PublicID != "" {
				done = append(done, r.PublicID)
			}
		}
		_ = s.DeleteMany(context.WithoutCancel(ctx), done)
		return nil, err
	}
	return results, nil
}

// DeleteMany removes every object in ids with one backend call. Missing
// keys are skipped.
func (s *Store) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := s.backend.DeleteMany(ctx, ids); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%s storage delete %d objects: %w", s.backend.Backend(), len(ids), err)
	}
	return nil
}
