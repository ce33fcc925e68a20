package testutil

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"

	"github.com/bemyforce/bemyforce/internal/app/system/videoproc"
	"github.com/bemyforce/bemyforce/internal/domain/models"
)

// UploadFile is one file part of a test multipart body.
type UploadFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// NewMultipartRequest builds an authenticated multipart request with the
// given form fields and files (sent as the repeatable "files" field).
func NewMultipartRequest(t *testing.T, method, target string, u models.User, fields map[string][]string, files ...UploadFile) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, vs := range fields {
		for _, v := range vs {
			if err := mw.WriteField(k, v); err != nil {
				t.Fatalf("write field %s: %v", k, err)
			}
		}
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="files"; filename="`+f.Name+`"`)
		h.Set("Content-Type", f.ContentType)
		part, err := mw.CreatePart(h)
		if err != nil {
			t.Fatalf("create part %s: %v", f.Name, err)
		}
		data := f.Data
		if len(data) == 0 {
			data = []byte("bytes of " + f.Name)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatalf("write part %s: %v", f.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return WithUser(req, u)
}

// FakeVideo stands in for the ffmpeg-backed processor. It returns
// Duration and a fixed small payload, or Err when set.
type FakeVideo struct {
	Duration int
	Err      error

	mu    sync.Mutex
	calls int
}

func (f *FakeVideo) Process(_ context.Context, in videoproc.Input) (videoproc.Output, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.Err != nil {
		return videoproc.Output{}, f.Err
	}
	return videoproc.Output{Data: []byte("compressed"), Duration: f.Duration}, nil
}

// Calls reports how many videos were processed.
func (f *FakeVideo) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
