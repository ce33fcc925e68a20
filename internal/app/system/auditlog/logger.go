// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/bemyforce/bemyforce/internal/app/store/audit"
	"github.com/bemyforce/bemyforce/internal/app/system/ratelimit"
	"github.com/bemyforce/bemyforce/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destinations accepted by Config fields.
const (
	DestAll = "all" // MongoDB + zap
	DestDB  = "db"
	DestLog = "log"
	DestOff = "off"
)

// Config holds audit logging configuration.
type Config struct {
	// Moderation controls approve/reject events.
	Moderation string
	// Content controls fulfillment, expiry and deletion events.
	Content string
}

// Logger records audit events to MongoDB and structured logs.
// A nil *Logger is a no-op.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.OwnerID != nil {
		fields = append(fields, zap.String("owner_id", event.OwnerID.Hex()))
	}
	if event.EntityID != nil {
		fields = append(fields,
			zap.String("entity_model", event.EntityModel),
			zap.String("entity_id", event.EntityID.Hex()))
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}
	l.zapLog.Info("audit event", fields...)
}

// Log records event according to the destination configured for its
// category. Store failures are logged, never returned.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryModeration:
		setting = l.config.Moderation
	case audit.CategoryContent:
		setting = l.config.Content
	}
	if setting == "" {
		setting = DestAll
	}
	if setting == DestOff {
		return
	}

	if setting == DestAll || setting == DestLog {
		l.logToZap(event)
	}
	if setting == DestAll || setting == DestDB {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func ptr(id primitive.ObjectID) *primitive.ObjectID {
	if id.IsZero() {
		return nil
	}
	return &id
}

func ip(r *http.Request) string {
	if r == nil {
		return ""
	}
	return ratelimit.ClientIP(r)
}

// --- Moderation ---

// AchievementModerated records an approve or reject decision.
func (l *Logger) AchievementModerated(ctx context.Context, r *http.Request, actorID primitive.ObjectID, a models.Achievement) {
	ev := audit.EventAchievementApproved
	if a.Status == models.AchievementRejected {
		ev = audit.EventAchievementRejected
	}
	l.moderated(ctx, r, ev, actorID, a.User, models.RelatedAchievement, a.ID, a.RejectionReason)
}

// NeedModerated records an approve or reject decision.
func (l *Logger) NeedModerated(ctx context.Context, r *http.Request, actorID primitive.ObjectID, n models.Need) {
	ev := audit.EventNeedApproved
	if n.IsApproved == models.ApprovalRejected {
		ev = audit.EventNeedRejected
	}
	l.moderated(ctx, r, ev, actorID, n.User, models.RelatedNeed, n.ID, n.RejectionReason)
}

func (l *Logger) moderated(ctx context.Context, r *http.Request, ev string, actorID, ownerID primitive.ObjectID, model models.RelatedModel, id primitive.ObjectID, reason string) {
	var details map[string]string
	if reason != "" {
		details = map[string]string{"rejection_reason": reason}
	}
	l.Log(ctx, audit.Event{
		Category:    audit.CategoryModeration,
		EventType:   ev,
		ActorID:     ptr(actorID),
		OwnerID:     ptr(ownerID),
		EntityModel: string(model),
		EntityID:    ptr(id),
		IP:          ip(r),
		Details:     details,
	})
}

// --- Content lifecycle ---

// NeedFulfilled records the creator closing a need.
func (l *Logger) NeedFulfilled(ctx context.Context, r *http.Request, n models.Need) {
	l.Log(ctx, audit.Event{
		Category:    audit.CategoryContent,
		EventType:   audit.EventNeedFulfilled,
		ActorID:     ptr(n.User),
		OwnerID:     ptr(n.User),
		EntityModel: string(models.RelatedNeed),
		EntityID:    ptr(n.ID),
		IP:          ip(r),
	})
}

// NeedsExpired records one sweep that expired count needs.
func (l *Logger) NeedsExpired(ctx context.Context, count int64) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryContent,
		EventType: audit.EventNeedsExpired,
		Details:   map[string]string{"count": strconv.FormatInt(count, 10)},
	})
}

// PostDeleted records deletion of an achievement or need.
func (l *Logger) PostDeleted(ctx context.Context, r *http.Request, actorID, ownerID primitive.ObjectID, model models.RelatedModel, id primitive.ObjectID) {
	ev := audit.EventNeedDeleted
	if model == models.RelatedAchievement {
		ev = audit.EventAchievementDeleted
	}
	l.Log(ctx, audit.Event{
		Category:    audit.CategoryContent,
		EventType:   ev,
		ActorID:     ptr(actorID),
		OwnerID:     ptr(ownerID),
		EntityModel: string(model),
		EntityID:    ptr(id),
		IP:          ip(r),
	})
}

// AssetDeleted records removal of a single asset.
func (l *Logger) AssetDeleted(ctx context.Context, r *http.Request, actorID primitive.ObjectID, a models.Asset) {
	l.Log(ctx, audit.Event{
		Category:    audit.CategoryContent,
		EventType:   audit.EventAssetDeleted,
		ActorID:     ptr(actorID),
		OwnerID:     ptr(a.User),
		EntityModel: "Asset",
		EntityID:    ptr(a.ID),
		IP:          ip(r),
		Details: map[string]string{
			"related_model": string(a.RelatedModel),
			"related_id":    a.RelatedID.Hex(),
		},
	})
}

// UserAssetsPurged records an admin removing every asset of a user.
func (l *Logger) UserAssetsPurged(ctx context.Context, r *http.Request, actorID, userID primitive.ObjectID, count int) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryContent,
		EventType: audit.EventUserAssetsPurged,
		ActorID:   ptr(actorID),
		OwnerID:   ptr(userID),
		IP:        ip(r),
		Details:   map[string]string{"count": strconv.Itoa(count)},
	})
}
