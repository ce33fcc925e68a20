// internal/app/features/needs/create.go
package needs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/bemyforce/bemyforce/internal/app/policy/interestpolicy"
	"github.com/bemyforce/bemyforce/internal/app/system/apierr"
	"github.com/bemyforce/bemyforce/internal/app/system/attachments"
	"github.com/bemyforce/bemyforce/internal/app/system/authz"
	"github.com/bemyforce/bemyforce/internal/app/system/formutil"
	"github.com/bemyforce/bemyforce/internal/app/system/htmlsanitize"
	"github.com/bemyforce/bemyforce/internal/app/system/inputval"
	"github.com/bemyforce/bemyforce/internal/app/system/objectstore"
	"github.com/bemyforce/bemyforce/internal/app/system/timeouts"
	"github.com/bemyforce/bemyforce/internal/app/system/videoproc"
	"github.com/bemyforce/bemyforce/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	msgCreated     = "Need post created successfully"
	msgOneVideo    = "Only one video is allowed per need post"
	msgFutureEvent = "Event date must be in the future"
)

type createInput struct {
	Title       string   `json:"title" label:"Title" validate:"notblank,max=200"`
	Description string   `json:"description" label:"Description" validate:"required,json"`
	Interests   []string `json:"interests" label:"Interests" validate:"min=1,dive,objectid"`
	EventDate   string   `json:"event_date" label:"Event date" validate:"notblank"`
}

// parseEventDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates
// (midnight UTC). The event must lie after now.
func parseEventDate(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t, err = time.Parse("2006-01-02", s)
	}
	if err != nil || !t.After(now) {
		return time.Time{}, apierr.ValidationFailed("event_date", msgFutureEvent)
	}
	return t.UTC(), nil
}

// sanitizeDescription cleans editor blocks when the description is block
// content; any other JSON is stored as given. Top-level keys other than
// blocks are kept, and entries of blocks that are not objects are dropped.
func sanitizeDescription(raw string) string {
	var doc map[string]any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return raw
	}
	list, ok := doc["blocks"].([]any)
	if !ok || len(list) == 0 {
		return raw
	}
	blocks := make([]map[string]any, 0, len(list))
	kept := make([]any, 0, len(list))
	for _, b := range list {
		if m, ok := b.(map[string]any); ok {
			blocks = append(blocks, m)
			kept = append(kept, m)
		}
	}
	htmlsanitize.SanitizeBlocks(blocks)
	doc["blocks"] = kept
	out, err := json.Marshal(doc)
	if err != nil {
		return raw
	}
	return string(out)
}

// HandleCreate handles POST /needs (multipart). It follows the same order
// as achievement creation: fields, file counts, interests, persist,
// video, attach.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := authz.CurrentActor(r)
	if !ok {
		h.Resp.Error(w, r, apierr.Unauthenticated())
		return
	}
	if err := formutil.ParsePost(w, r, h.MaxMemory); err != nil {
		h.Resp.Error(w, r, err)
		return
	}

	in := createInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Interests:   formutil.Values(r, "interests"),
		EventDate:   r.FormValue("event_date"),
	}
	if res := inputval.Validate(in); res.HasErrors() {
		fe := res.FirstField()
		h.Resp.Error(w, r, apierr.ValidationFailed(fe.Field, fe.Message))
		return
	}
	eventDate, err := parseEventDate(in.EventDate, time.Now())
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}

	files, err := formutil.Files(r)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	if err := formutil.CheckFileCounts(files, msgOneVideo); err != nil {
		h.Resp.Error(w, r, err)
		return
	}

	interests, err := interestpolicy.ParseIDs(in.Interests)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "need create")
	defer cancel()

	owned, err := h.Users.Interests(ctx, actor.ID)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		h.Resp.Error(w, r, err)
		return
	}
	if err := interestpolicy.Check(owned, interests); err != nil {
		h.Resp.Error(w, r, err)
		return
	}

	n, err := h.Needs.Create(ctx, models.Need{
		User:        actor.ID,
		Title:       htmlsanitize.PlainText(in.Title),
		Description: sanitizeDescription(in.Description),
		Interests:   interests,
		EventDate:   eventDate,
	})
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Metrics.Transition("need", string(models.ApprovalPending))

	if len(files) > 0 {
		if err := h.attach(r.Context(), n, files); err != nil {
			h.rollback(r.Context(), n)
			h.Resp.Error(w, r, err)
			return
		}
	}

	view, err := h.Feed.Need(ctx, n)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Resp.Created(w, msgCreated, view)
}

func (h *Handler) attach(ctx context.Context, n models.Need, files []objectstore.File) error {
	vctx, vcancel := timeouts.WithTimeout(ctx, timeouts.Transcode(), h.Log, "need video")
	duration, err := videoproc.NormalizeFiles(vctx, h.Video, files)
	vcancel()
	if err != nil {
		return err
	}
	if duration != nil {
		h.Metrics.VideoDuration(*duration)
	}

	uctx, ucancel := timeouts.WithTimeout(ctx, timeouts.Upload(), h.Log, "need upload")
	defer ucancel()
	_, err = h.Attach.CreateMany(uctx, attachments.CreateManyParams{
		Target: attachments.Target{
			User:         n.User,
			RelatedModel: models.RelatedNeed,
			RelatedID:    n.ID,
			Folder:       "needs/" + n.ID.Hex(),
		},
		Files:         files,
		VideoDuration: duration,
	})
	return err
}

func (h *Handler) rollback(ctx context.Context, n models.Need) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeouts.Short())
	defer cancel()
	if _, err := h.Needs.Delete(ctx, n.ID); err != nil {
		h.Log.Error("rollback of need failed",
			zap.String("need_id", n.ID.Hex()), zap.Error(err))
	}
}
