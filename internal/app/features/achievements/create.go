// internal/app/features/achievements/create.go
package achievements

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

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
	msgCreated  = "Achievement created successfully and pending approval"
	msgOneVideo = "Only one video is allowed per achievement"
)

type createInput struct {
	Title       string   `json:"title" label:"Title" validate:"notblank,max=200"`
	Description string   `json:"description" label:"Description" validate:"required,json"`
	Interests   []string `json:"interests" label:"Interests" validate:"min=1,dive,objectid"`
}

// HandleCreate handles POST /achievements (multipart).
//
// Order: field validation, file counts, interest membership, persist as
// pending, normalise the video, attach files, respond with the populated
// post.
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
	}
	if res := inputval.Validate(in); res.HasErrors() {
		fe := res.FirstField()
		h.Resp.Error(w, r, apierr.ValidationFailed(fe.Field, fe.Message))
		return
	}
	var desc models.RichText
	if err := json.Unmarshal([]byte(in.Description), &desc); err != nil {
		h.Resp.Error(w, r, apierr.ValidationFailed("description", "Invalid stringified JSON format"))
		return
	}
	htmlsanitize.SanitizeBlocks(desc.Blocks)

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

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "achievement create")
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

	a, err := h.Achievements.Create(ctx, models.Achievement{
		User:        actor.ID,
		Title:       htmlsanitize.PlainText(in.Title),
		Description: desc,
		Interests:   interests,
	})
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Metrics.Transition("achievement", string(models.AchievementPending))

	if len(files) > 0 {
		if err := h.attach(r.Context(), a, files); err != nil {
			h.rollback(r.Context(), a)
			h.Resp.Error(w, r, err)
			return
		}
	}

	view, err := h.Feed.Achievement(ctx, a)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Resp.Created(w, msgCreated, view)
}

func (h *Handler) attach(ctx context.Context, a models.Achievement, files []objectstore.File) error {
	vctx, vcancel := timeouts.WithTimeout(ctx, timeouts.Transcode(), h.Log, "achievement video")
	duration, err := videoproc.NormalizeFiles(vctx, h.Video, files)
	vcancel()
	if err != nil {
		return err
	}
	if duration != nil {
		h.Metrics.VideoDuration(*duration)
	}

	uctx, ucancel := timeouts.WithTimeout(ctx, timeouts.Upload(), h.Log, "achievement upload")
	defer ucancel()
	_, err = h.Attach.CreateMany(uctx, attachments.CreateManyParams{
		Target: attachments.Target{
			User:         a.User,
			RelatedModel: models.RelatedAchievement,
			RelatedID:    a.ID,
			Folder:       "achievements/" + a.ID.Hex(),
		},
		Files:         files,
		VideoDuration: duration,
	})
	return err
}

// rollback removes a just-created achievement whose files could not be
// attached, so no half-built post is left pending.
func (h *Handler) rollback(ctx context.Context, a models.Achievement) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeouts.Short())
	defer cancel()
	if _, err := h.Achievements.Delete(ctx, a.ID); err != nil {
		h.Log.Error("rollback of achievement failed",
			zap.String("achievement_id", a.ID.Hex()), zap.Error(err))
	}
}
