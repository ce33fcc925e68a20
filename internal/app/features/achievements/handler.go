// internal/app/features/achievements/handler.go
package achievements

import (
	achievementstore "github.com/bemyforce/bemyforce/internal/app/store/achievements"
	"github.com/bemyforce/bemyforce/internal/app/store/queries/feedqueries"
	userstore "github.com/bemyforce/bemyforce/internal/app/store/users"
	"github.com/bemyforce/bemyforce/internal/app/system/attachments"
	"github.com/bemyforce/bemyforce/internal/app/system/auditlog"
	"github.com/bemyforce/bemyforce/internal/app/system/metrics"
	"github.com/bemyforce/bemyforce/internal/app/system/respond"
	"github.com/bemyforce/bemyforce/internal/app/system/videoproc"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the achievement feed, creation, moderation and deletion.
type Handler struct {
	Achievements *achievementstore.Store
	Users        *userstore.Store
	Feed         *feedqueries.Populator
	Attach       *attachments.Service
	Video        videoproc.Normalizer
	Metrics      *metrics.Metrics
	Audit        *auditlog.Logger // optional
	Resp         *respond.Responder
	Log          *zap.Logger

	// MaxMemory bounds the in-memory part of multipart bodies.
	MaxMemory int64
}

// NewHandler wires a Handler to db and the shared services.
func NewHandler(db *mongo.Database, attach *attachments.Service, video videoproc.Normalizer, m *metrics.Metrics, resp *respond.Responder, logger *zap.Logger) *Handler {
	return &Handler{
		Achievements: achievementstore.New(db),
		Users:        userstore.New(db),
		Feed:         feedqueries.New(db),
		Attach:       attach,
		Video:        video,
		Metrics:      m,
		Resp:         resp,
		Log:          logger,
	}
}
