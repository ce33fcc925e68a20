// internal/app/features/interests/handler.go
package interests

import (
	"errors"
	"net/http"

	intereststore "github.com/bemyforce/bemyforce/internal/app/store/interests"
	"github.com/bemyforce/bemyforce/internal/app/system/apierr"
	"github.com/bemyforce/bemyforce/internal/app/system/auth"
	"github.com/bemyforce/bemyforce/internal/app/system/formutil"
	"github.com/bemyforce/bemyforce/internal/app/system/inputval"
	"github.com/bemyforce/bemyforce/internal/app/system/respond"
	"github.com/bemyforce/bemyforce/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the interest catalog that posts are tagged with.
type Handler struct {
	Interests *intereststore.Store
	Resp      *respond.Responder
	Log       *zap.Logger
}

func NewHandler(db *mongo.Database, resp *respond.Responder, logger *zap.Logger) *Handler {
	return &Handler{Interests: intereststore.New(db), Resp: resp, Log: logger}
}

// Routes mounts under /master/interests. Reading only needs a session
// because onboarding picks from this list.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.With(sm.RequireSignedIn).Get("/", h.ServeList)
	r.With(sm.RequireRole("admin")).Post("/", h.HandleCreate)
	return r
}

// ServeList handles GET /master/interests.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "interest list")
	defer cancel()

	list, err := h.Interests.List(ctx)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Resp.OK(w, "", list)
}

type createInput struct {
	Name string `json:"name" label:"Name" validate:"notblank,max=100"`
}

// HandleCreate handles POST /master/interests {"name": "..."}.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in createInput
	if err := formutil.DecodeJSON(w, r, &in); err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	if res := inputval.Validate(in); res.HasErrors() {
		fe := res.FirstField()
		h.Resp.Error(w, r, apierr.ValidationFailed(fe.Field, fe.Message))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "interest create")
	defer cancel()

	created, err := h.Interests.Create(ctx, in.Name)
	if errors.Is(err, intereststore.ErrDuplicateName) {
		h.Resp.Error(w, r, apierr.Validation("Interest already exists", "name"))
		return
	}
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Resp.Created(w, "Interest created successfully", created)
}
