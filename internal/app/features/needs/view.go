// internal/app/features/needs/view.go
package needs

import (
	"errors"
	"net/http"
	"time"

	"github.com/bemyforce/bemyforce/internal/app/policy/needpolicy"
	"github.com/bemyforce/bemyforce/internal/app/system/apierr"
	"github.com/bemyforce/bemyforce/internal/app/system/authz"
	"github.com/bemyforce/bemyforce/internal/app/system/formutil"
	"github.com/bemyforce/bemyforce/internal/app/system/paging"
	"github.com/bemyforce/bemyforce/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/mongo"
)

// ServeList handles GET /needs?page&limit&is_approved&status.
// Without a status only upcoming, still-searching needs are listed;
// soonest event first. An is_approved or status value that is not a
// known state is rejected with 400 rather than ignored.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	pg := paging.Parse(r)
	filter, err := needpolicy.ResolveListFilter(needpolicy.ListQuery{
		IsApproved: query.Get(r, "is_approved"),
		Status:     query.Get(r, "status"),
	}, authz.IsAdmin(r), time.Now())
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "need list")
	defer cancel()

	rows, pagination, err := h.Needs.Find(ctx, filter, pg, needpolicy.ListSort())
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	views, err := h.Feed.Needs(ctx, rows)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Resp.Page(w, views, pagination)
}

// ServeGet handles GET /needs/{id}. Any member may read any need.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	const notFound = "Need post not found"
	id, err := formutil.ObjectID(r, "id", notFound)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "need get")
	defer cancel()

	n, err := h.Needs.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.Resp.Error(w, r, apierr.NotFound(notFound))
		return
	}
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	view, err := h.Feed.Need(ctx, n)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Resp.OK(w, "", view)
}
