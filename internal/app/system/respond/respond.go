// internal/app/system/respond/respond.go
package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/bemyforce/bemyforce/internal/app/system/apierr"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// InterestsProfileMessage replaces database-level interest validation
// failures with something a user can act on.
const InterestsProfileMessage = "Some interests are not in your profile. Please update your interests in your profile first."

// mongo DocumentValidationFailure
const codeDocumentValidation = 121

// Envelope is the shape of every JSON response body.
type Envelope struct {
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
	Data       any    `json:"data,omitempty"`
	Pagination any    `json:"pagination,omitempty"`
	Stack      string `json:"stack,omitempty"`
}

// Responder writes envelopes and normalises errors.
// ShowStack adds the error chain to failure bodies; it is off in prod.
type Responder struct {
	Log       *zap.Logger
	ShowStack bool
}

// New constructs a Responder.
func New(logger *zap.Logger, showStack bool) *Responder {
	return &Responder{Log: logger, ShowStack: showStack}
}

// JSON writes v with the given status.
func (rs *Responder) JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && rs.Log != nil {
		rs.Log.Warn("encode response failed", zap.Error(err))
	}
}

// OK writes a 200 success envelope.
func (rs *Responder) OK(w http.ResponseWriter, message string, data any) {
	rs.JSON(w, http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

// Created writes a 201 success envelope.
func (rs *Responder) Created(w http.ResponseWriter, message string, data any) {
	rs.JSON(w, http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}

// Page writes a 200 list envelope with pagination metadata.
func (rs *Responder) Page(w http.ResponseWriter, data any, pagination any) {
	rs.JSON(w, http.StatusOK, Envelope{Success: true, Data: data, Pagination: pagination})
}

// Error is the single terminal handler for failures. Typed errors keep their
// status; database validation failures become 400s; anything else is 500.
func (rs *Responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	e := Normalize(err)

	if rs.Log != nil {
		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("kind", string(e.Kind)),
			zap.Int("status", e.Status),
			zap.Error(err),
		}
		if e.Status >= http.StatusInternalServerError {
			rs.Log.Error("request failed", fields...)
		} else {
			rs.Log.Debug("request rejected", fields...)
		}
	}

	body := Envelope{Success: false, Message: e.Message, Data: e.Data}
	if rs.ShowStack {
		body.Stack = err.Error()
	}
	rs.JSON(w, e.Status, body)
}

// Normalize maps any error onto an *apierr.Error.
func Normalize(err error) *apierr.Error {
	if e, ok := apierr.As(err); ok {
		return e
	}
	if msg, ok := validationMessage(err); ok {
		if strings.Contains(msg, "interests") {
			return apierr.InvalidInterests(InterestsProfileMessage)
		}
		return apierr.Validation(msg, "")
	}
	return apierr.Internal(err)
}

// validationMessage extracts the message of a store-level validation error
// (a CommandError without a server code) or a server-side schema failure.
func validationMessage(err error) (string, bool) {
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		if ce.Code == 0 || ce.Code == codeDocumentValidation {
			return ce.Message, true
		}
		return "", false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == codeDocumentValidation {
				msg := e.Message
				if e.Details != nil {
					msg += " " + e.Details.String()
				}
				return msg, true
			}
		}
	}
	return "", false
}
