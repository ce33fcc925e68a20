// internal/app/features/auditlog/handler.go
package auditlog

import (
	"github.com/bemyforce/bemyforce/internal/app/store/audit"
	userstore "github.com/bemyforce/bemyforce/internal/app/store/users"
	"github.com/bemyforce/bemyforce/internal/app/system/respond"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the moderation and content audit trail to admins.
type Handler struct {
	Events *audit.Store
	Users  *userstore.Store
	Resp   *respond.Responder
	Log    *zap.Logger
}

func NewHandler(db *mongo.Database, resp *respond.Responder, logger *zap.Logger) *Handler {
	return &Handler{
		Events: audit.New(db),
		Users:  userstore.New(db),
		Resp:   resp,
		Log:    logger,
	}
}
