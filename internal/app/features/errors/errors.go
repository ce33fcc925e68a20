// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/bemyforce/bemyforce/internal/app/system/apierr"
	"github.com/bemyforce/bemyforce/internal/app/system/respond"
)

// Handler answers requests no feature router claimed, in the same JSON
// envelope as every other error.
type Handler struct {
	Resp *respond.Responder
}

// NewHandler constructs an errors Handler.
func NewHandler(resp *respond.Responder) *Handler {
	return &Handler{Resp: resp}
}

// NotFound is installed as the router's fallback.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.Resp.Error(w, r, apierr.NotFound("Not Found"))
}

// MethodNotAllowed is installed for known paths hit with the wrong verb.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.Resp.Error(w, r, &apierr.Error{
		Kind:    apierr.KindValidation,
		Status:  http.StatusMethodNotAllowed,
		Message: "Method Not Allowed",
	})
}
