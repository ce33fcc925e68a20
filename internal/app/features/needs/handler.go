// internal/app/features/needs/handler.go
package needs

import (
	needstore "github.com/bemyforce/bemyforce/internal/app/store/needs"
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

// Handler serves need posts: creation, the feed, moderation, fulfillment
// and deletion.
type Handler struct {
	Needs   *needstore.Store
	Users   *userstore.Store
	Feed    *feedqueries.Populator
	Attach  *attachments.Service
	Video   videoproc.Normalizer
	Metrics *metrics.Metrics
	Audit   *auditlog.Logger // optional
	Resp    *respond.Responder
	Log     *zap.Logger

	MaxMemory int64
}

func NewHandler(db *mongo.Database, attach *attachments.Service, video videoproc.Normalizer, m *metrics.Metrics, resp *respond.Responder, logger *zap.Logger) *Handler {
	return &Handler{
		Needs:   needstore.New(db),
		Users:   userstore.New(db),
		Feed:    feedqueries.New(db),
		Attach:  attach,
		Video:   video,
		Metrics: m,
		Resp:    resp,
		Log:     logger,
	}
}
