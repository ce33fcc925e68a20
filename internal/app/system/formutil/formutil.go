// Package formutil reads post submissions: multipart fields, uploaded
// files, id path params and small JSON bodies.
package formutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/bemyforce/bemyforce/internal/app/system/apierr"
	"github.com/bemyforce/bemyforce/internal/app/system/limits"
	"github.com/bemyforce/bemyforce/internal/app/system/objectstore"
	"github.com/bemyforce/bemyforce/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FilesField is the multipart field carrying uploads.
const FilesField = "files"

// MsgTooManyFiles is returned when more than MaxFilesPerPost files arrive.
var MsgTooManyFiles = fmt.Sprintf("Maximum %d files are allowed", models.MaxFilesPerPost)

// ParsePost parses a multipart or urlencoded body, bounded by
// limits.MaxPostBodySize. maxMemory <= 0 uses limits.MaxMultipartMemory.
func ParsePost(w http.ResponseWriter, r *http.Request, maxMemory int64) error {
	if maxMemory <= 0 {
		maxMemory = limits.MaxMultipartMemory
	}
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxPostBodySize)

	var err error
	if strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "multipart/") {
		err = r.ParseMultipartForm(maxMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return apierr.LimitExceeded("Request body is too large")
		}
		return &apierr.Error{Kind: apierr.KindValidation, Status: http.StatusBadRequest, Message: "Invalid form data", Err: err}
	}
	return nil
}

// Values returns the trimmed, non-blank values of a repeatable field.
// Both "name" and "name[]" are read.
func Values(r *http.Request, name string) []string {
	var out []string
	for _, key := range []string{name, name + "[]"} {
		for _, v := range r.Form[key] {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

// Files reads every uploaded file in FilesField into memory. The content
// type comes from the part header.
func Files(r *http.Request) ([]objectstore.File, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	headers := r.MultipartForm.File[FilesField]
	out := make([]objectstore.File, 0, len(headers))
	for _, fh := range headers {
		f, err := readPart(fh)
		if err != nil {
			return nil, &apierr.Error{Kind: apierr.KindValidation, Status: http.StatusBadRequest, Message: "Invalid file upload", Err: err}
		}
		out = append(out, f)
	}
	return out, nil
}

func readPart(fh *multipart.FileHeader) (objectstore.File, error) {
	src, err := fh.Open()
	if err != nil {
		return objectstore.File{}, err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return objectstore.File{}, err
	}
	ct := fh.Header.Get("Content-Type")
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	return objectstore.File{Name: fh.Filename, ContentType: ct, Data: data, Size: int64(len(data))}, nil
}

// CheckFileCounts enforces the per-post file and video counts.
// videoMsg is the entity-specific message for a second video.
func CheckFileCounts(files []objectstore.File, videoMsg string) error {
	if len(files) > models.MaxFilesPerPost {
		return apierr.LimitExceeded(MsgTooManyFiles)
	}
	videos := 0
	for _, f := range files {
		if objectstore.Classify(f.ContentType) == models.AssetVideo {
			videos++
		}
	}
	if videos > models.MaxVideosPerPost {
		return apierr.LimitExceeded(videoMsg)
	}
	return nil
}

// ObjectID reads the chi URL param key. A malformed id cannot resolve to
// anything, so it is reported with notFound like a missing one.
func ObjectID(r *http.Request, key, notFound string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, key))
	if err != nil {
		return primitive.NilObjectID, apierr.NotFound(notFound)
	}
	return id, nil
}

// DecodeJSON decodes a small JSON body into v. An empty body leaves v
// untouched.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return &apierr.Error{Kind: apierr.KindValidation, Status: http.StatusBadRequest, Message: "Invalid request body", Err: err}
}
