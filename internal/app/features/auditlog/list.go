// internal/app/features/auditlog/list.go
package auditlog

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/bemyforce/bemyforce/internal/app/store/audit"
	"github.com/bemyforce/bemyforce/internal/app/system/apierr"
	"github.com/bemyforce/bemyforce/internal/app/system/formutil"
	"github.com/bemyforce/bemyforce/internal/app/system/paging"
	"github.com/bemyforce/bemyforce/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ServeList handles GET /audit. Filters: category, event_type, actor_id,
// owner_id, entity_id, start_date and end_date (YYYY-MM-DD, inclusive).
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	pg := paging.Parse(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "audit log list")
	defer cancel()

	events, pagination, err := h.Events.Query(ctx, filter, pg)
	if err != nil {
		h.Log.Error("failed to query audit events", zap.Error(err))
		h.Resp.Error(w, r, err)
		return
	}

	h.Resp.Page(w, h.resolve(ctx, events), pagination)
}

// ServeEntity handles GET /audit/entity/{id}: the full history of one
// post or asset, oldest first.
func (h *Handler) ServeEntity(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.ObjectID(r, "id", "No audit history for this item")
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "audit entity history")
	defer cancel()

	events, err := h.Events.ForEntity(ctx, id)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	if len(events) == 0 {
		h.Resp.Error(w, r, apierr.NotFound("No audit history for this item"))
		return
	}
	h.Resp.OK(w, "", h.resolve(ctx, events))
}

func parseFilter(r *http.Request) (audit.QueryFilter, error) {
	f := audit.QueryFilter{
		Category:  strings.TrimSpace(query.Get(r, "category")),
		EventType: strings.TrimSpace(query.Get(r, "event_type")),
	}

	if f.Category != "" && eventTypesForCategory(f.Category) == nil {
		return f, apierr.Validation("Invalid category", "category")
	}
	if f.EventType != "" && !validEventType(f.Category, f.EventType) {
		return f, apierr.Validation("Invalid event type", "event_type")
	}

	for _, p := range []struct {
		key string
		dst **primitive.ObjectID
	}{
		{"actor_id", &f.ActorID},
		{"owner_id", &f.OwnerID},
		{"entity_id", &f.EntityID},
	} {
		v := strings.TrimSpace(query.Get(r, p.key))
		if v == "" {
			continue
		}
		oid, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			return f, apierr.Validation("Invalid "+p.key, p.key)
		}
		*p.dst = &oid
	}

	if v := strings.TrimSpace(query.Get(r, "start_date")); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return f, apierr.Validation("Invalid start_date", "start_date")
		}
		f.StartTime = &t
	}
	if v := strings.TrimSpace(query.Get(r, "end_date")); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return f, apierr.Validation("Invalid end_date", "end_date")
		}
		endOfDay := t.Add(24*time.Hour - time.Nanosecond)
		f.EndTime = &endOfDay
	}
	if f.StartTime != nil && f.EndTime != nil && f.EndTime.Before(*f.StartTime) {
		return f, apierr.Validation("end_date is before start_date", "end_date")
	}
	return f, nil
}

// resolve converts events to list items, batch-loading user names. A
// failed name lookup degrades to hex ids.
func (h *Handler) resolve(ctx context.Context, events []audit.Event) []listItem {
	seen := make(map[primitive.ObjectID]struct{})
	var ids []primitive.ObjectID
	for _, e := range events {
		for _, id := range []*primitive.ObjectID{e.ActorID, e.OwnerID} {
			if id == nil {
				continue
			}
			if _, ok := seen[*id]; !ok {
				seen[*id] = struct{}{}
				ids = append(ids, *id)
			}
		}
	}

	names, err := h.Users.Summaries(ctx, ids)
	if err != nil {
		h.Log.Warn("failed to fetch user names for audit log", zap.Error(err))
	}
	name := func(id primitive.ObjectID) string {
		if s, ok := names[id]; ok && s.FullName != "" {
			return s.FullName
		}
		return id.Hex()
	}

	items := make([]listItem, 0, len(events))
	for _, e := range events {
		item := listItem{
			ID:          e.ID.Hex(),
			Timestamp:   e.Timestamp,
			Category:    e.Category,
			EventType:   e.EventType,
			EntityModel: e.EntityModel,
			IP:          e.IP,
			Details:     e.Details,
		}
		if e.ActorID != nil {
			item.ActorID = e.ActorID.Hex()
			item.ActorName = name(*e.ActorID)
		}
		if e.OwnerID != nil {
			item.OwnerID = e.OwnerID.Hex()
			item.OwnerName = name(*e.OwnerID)
		}
		if e.EntityID != nil {
			item.EntityID = e.EntityID.Hex()
		}
		items = append(items, item)
	}
	return items
}
