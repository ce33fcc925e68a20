// Package attachments uploads media to object storage and records one
// Asset per stored object, linked to the entity that owns it.
package attachments

import (
	"context"
	"errors"

	assetstore "github.com/bemyforce/bemyforce/internal/app/store/assets"
	"github.com/bemyforce/bemyforce/internal/app/system/apierr"
	"github.com/bemyforce/bemyforce/internal/app/system/metrics"
	"github.com/bemyforce/bemyforce/internal/app/system/objectstore"
	"github.com/bemyforce/bemyforce/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Target identifies who owns new assets and where they are stored.
type Target struct {
	User         primitive.ObjectID
	RelatedModel models.RelatedModel
	RelatedID    primitive.ObjectID
	Folder       string
}

// CreateParams describes a single upload. Duration is attached only when
// the stored object is a video.
type CreateParams struct {
	Target
	File     objectstore.File
	Duration *int
}

// CreateManyParams describes a batch upload. VideoDuration is attached to
// every asset classified as video; callers allow at most one.
type CreateManyParams struct {
	Target
	Files         []objectstore.File
	VideoDuration *int
}

// Service coordinates object storage and the assets collection.
type Service struct {
	assets  *assetstore.Store
	storage *objectstore.Store
	metrics *metrics.Metrics
	log     *zap.Logger
}

// New builds a Service. m may be nil.
func New(assets *assetstore.Store, storage *objectstore.Store, m *metrics.Metrics, logger *zap.Logger) *Service {
	return &Service{assets: assets, storage: storage, metrics: m, log: logger}
}

// Create uploads one file and records it.
func (s *Service) Create(ctx context.Context, p CreateParams) (models.Asset, error) {
	out, err := s.CreateMany(ctx, CreateManyParams{
		Target:        p.Target,
		Files:         []objectstore.File{p.File},
		VideoDuration: p.Duration,
	})
	if err != nil {
		return models.Asset{}, err
	}
	return out[0], nil
}

// CreateMany uploads every file, then records them in one bulk insert.
// An upload failure aborts before anything is written to the database.
// If the insert fails, the stored objects are removed again.
func (s *Service) CreateMany(ctx context.Context, p CreateManyParams) ([]models.Asset, error) {
	if len(p.Files) == 0 {
		return []models.Asset{}, nil
	}

	results, err := s.storage.UploadMany(ctx, p.Files, p.Folder)
	if err != nil {
		for _, f := range p.Files {
			s.metrics.Upload(string(objectstore.Classify(f.ContentType)), false, 0)
		}
		s.log.Error("asset upload failed",
			zap.String("related_model", string(p.RelatedModel)),
			zap.String("related_id", p.RelatedID.Hex()),
			zap.Error(err))
		return nil, apierr.Upstream(0, "File upload failed", err)
	}

	docs := make([]models.Asset, len(results))
	for i, r := range results {
		a := models.Asset{
			User:         p.User,
			URL:          r.URL,
			PublicID:     r.PublicID,
			AssetType:    r.AssetType,
			RelatedModel: p.RelatedModel,
			RelatedID:    p.RelatedID,
			Size:         sizeOf(p.Files[i]),
		}
		if r.AssetType == models.AssetVideo && p.VideoDuration != nil && *p.VideoDuration > 0 {
			d := *p.VideoDuration
			a.Duration = &d
		}
		docs[i] = a
	}

	saved, err := s.assets.InsertMany(ctx, docs)
	if err != nil {
		s.discard(ctx, results)
		return nil, mapStoreError(err)
	}

	for _, a := range saved {
		s.metrics.Upload(string(a.AssetType), true, a.Size)
	}
	return saved, nil
}

// discard removes stored objects whose records could not be written.
// Failures are logged; the insert error is what the caller sees.
func (s *Service) discard(ctx context.Context, results []objectstore.Result) {
	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.PublicID)
	}
	if err := s.storage.DeleteMany(context.WithoutCancel(ctx), ids); err != nil {
		s.log.Warn("orphaned objects after failed asset insert",
			zap.Strings("public_ids", ids), zap.Error(err))
	}
}

// Delete removes one asset from storage and then its record.
func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) error {
	a, err := s.assets.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apierr.NotFound("Asset not found")
	}
	if err != nil {
		return err
	}
	return s.deleteAll(ctx, []models.Asset{a}, func(ctx context.Context) error {
		_, err := s.assets.DeleteByID(ctx, a.ID)
		return err
	})
}

// DeleteForUser removes every asset the user owns. It is a no-op when the
// user has none.
func (s *Service) DeleteForUser(ctx context.Context, userID primitive.ObjectID) (int, error) {
	list, err := s.assets.ByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	if len(list) == 0 {
		return 0, nil
	}
	err = s.deleteAll(ctx, list, func(ctx context.Context) error {
		_, err := s.assets.DeleteByUser(ctx, userID)
		return err
	})
	if err != nil {
		return 0, err
	}
	return len(list), nil
}

// DeleteForEntity removes the assets attached to one entity.
func (s *Service) DeleteForEntity(ctx context.Context, model models.RelatedModel, id primitive.ObjectID) error {
	list, err := s.assets.ByRelated(ctx, model, id)
	if err != nil || len(list) == 0 {
		return err
	}
	return s.deleteAll(ctx, list, func(ctx context.Context) error {
		_, err := s.assets.DeleteByRelated(ctx, model, id)
		return err
	})
}

// deleteAll removes the objects from storage first; records are only
// deleted once storage has let go of every object.
func (s *Service) deleteAll(ctx context.Context, list []models.Asset, deleteRecords func(context.Context) error) error {
	ids := make([]string, len(list))
	for i, a := range list {
		ids[i] = a.PublicID
	}
	if err := s.storage.DeleteMany(ctx, ids); err != nil {
		s.log.Error("asset storage delete failed", zap.Int("count", len(ids)), zap.Error(err))
		return apierr.Upstream(0, "File delete failed", err)
	}
	return deleteRecords(ctx)
}

func sizeOf(f objectstore.File) int64 {
	if f.Size > 0 {
		return f.Size
	}
	return int64(len(f.Data))
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, assetstore.ErrVideoTooLong),
		errors.Is(err, assetstore.ErrTotalSizeExceeded),
		errors.Is(err, assetstore.ErrTooManyVideos):
		return apierr.LimitExceeded(err.Error())
	}
	return err
}
