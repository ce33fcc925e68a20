// internal/app/features/achievements/view.go
package achievements

import (
	"errors"
	"net/http"

	"github.com/bemyforce/bemyforce/internal/app/policy/achievementpolicy"
	"github.com/bemyforce/bemyforce/internal/app/system/apierr"
	"github.com/bemyforce/bemyforce/internal/app/system/authz"
	"github.com/bemyforce/bemyforce/internal/app/system/formutil"
	"github.com/bemyforce/bemyforce/internal/app/system/paging"
	"github.com/bemyforce/bemyforce/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/mongo"
)

const msgNotFound = "Achievement not found"

// ServeList handles GET /achievements?page&limit&status.
// Non-admins only ever see approved posts; newest first. A status that is
// not a known state is rejected with 400 rather than ignored.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	pg := paging.Parse(r)
	filter, err := achievementpolicy.ResolveListFilter(query.Get(r, "status"), authz.IsAdmin(r))
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "achievement list")
	defer cancel()

	rows, pagination, err := h.Achievements.Find(ctx, filter, pg, achievementpolicy.ListSort())
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	views, err := h.Feed.Achievements(ctx, rows)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Resp.Page(w, views, pagination)
}

// ServeGet handles GET /achievements/{id}. Unapproved posts are visible
// to their owner and to admins only.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.ObjectID(r, "id", msgNotFound)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	actor, _ := authz.CurrentActor(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "achievement get")
	defer cancel()

	a, err := h.Achievements.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.Resp.Error(w, r, apierr.NotFound(msgNotFound))
		return
	}
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	if err := achievementpolicy.CanView(a, actor); err != nil {
		h.Resp.Error(w, r, err)
		return
	}

	view, err := h.Feed.Achievement(ctx, a)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Resp.OK(w, "", view)
}
