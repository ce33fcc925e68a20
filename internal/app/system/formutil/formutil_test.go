package formutil_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/bemyforce/bemyforce/internal/app/system/apierr"
	"github.com/bemyforce/bemyforce/internal/app/system/formutil"
	"github.com/bemyforce/bemyforce/internal/app/system/objectstore"
	"github.com/bemyforce/bemyforce/internal/testutil"
)

func multipartRequest(t *testing.T, fields map[string][]string, files map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, vs := range fields {
		for _, v := range vs {
			_ = mw.WriteField(k, v)
		}
	}
	for name, ct := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="files"; filename="`+name+`"`)
		h.Set("Content-Type", ct)
		part, err := mw.CreatePart(h)
		if err != nil {
			t.Fatalf("CreatePart: %v", err)
		}
		_, _ = part.Write([]byte("data-" + name))
	}
	_ = mw.Close()

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestParsePost_ValuesAndFiles(t *testing.T) {
	req := multipartRequest(t,
		map[string][]string{"title": {" Hi "}, "interests": {"a", " ", "b"}, "interests[]": {"c"}},
		map[string]string{"clip.mp4": "video/mp4"},
	)
	if err := formutil.ParsePost(httptest.NewRecorder(), req, 0); err != nil {
		t.Fatalf("ParsePost: %v", err)
	}

	if got := formutil.Values(req, "interests"); strings.Join(got, ",") != "a,b,c" {
		t.Errorf("Values = %v", got)
	}

	files, err := formutil.Files(req)
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(files) != 1 || files[0].ContentType != "video/mp4" || string(files[0].Data) != "data-clip.mp4" {
		t.Errorf("files = %+v", files)
	}
	if files[0].Size != int64(len("data-clip.mp4")) {
		t.Errorf("size = %d", files[0].Size)
	}
}

func TestParsePost_URLEncoded(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader("interests=x&interests=y"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if err := formutil.ParsePost(httptest.NewRecorder(), req, 0); err != nil {
		t.Fatalf("ParsePost: %v", err)
	}
	files, err := formutil.Files(req)
	if err != nil || len(files) != 0 {
		t.Errorf("Files = %v, %v", files, err)
	}
	if got := formutil.Values(req, "interests"); len(got) != 2 {
		t.Errorf("Values = %v", got)
	}
}

func TestCheckFileCounts(t *testing.T) {
	img := objectstore.File{ContentType: "image/png"}
	vid := objectstore.File{ContentType: "video/mp4"}

	eleven := make([]objectstore.File, 11)
	for i := range eleven {
		eleven[i] = img
	}

	tests := []struct {
		name  string
		files []objectstore.File
		msg   string
	}{
		{"none", nil, ""},
		{"ten images", eleven[:10], ""},
		{"eleven files", eleven, formutil.MsgTooManyFiles},
		{"one video", []objectstore.File{img, vid}, ""},
		{"two videos", []objectstore.File{vid, img, vid}, "Only one video is allowed per need post"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := formutil.CheckFileCounts(tt.files, "Only one video is allowed per need post")
			if tt.msg == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			e, ok := apierr.As(err)
			if !ok || e.Kind != apierr.KindLimitExceeded || e.Message != tt.msg {
				t.Errorf("got %v, want limit error %q", err, tt.msg)
			}
		})
	}
	if formutil.MsgTooManyFiles != "Maximum 10 files are allowed" {
		t.Errorf("MsgTooManyFiles = %q", formutil.MsgTooManyFiles)
	}
}

func TestObjectID(t *testing.T) {
	req := testutil.WithChiURLParam(httptest.NewRequest("GET", "/", nil), "id", "nope")
	if _, err := formutil.ObjectID(req, "id", "Need not found"); !apierr.IsKind(err, apierr.KindNotFound) {
		t.Errorf("expected not found, got %v", err)
	}

	req = testutil.WithChiURLParam(httptest.NewRequest("GET", "/", nil), "id", "64b7f0c2a1b2c3d4e5f60718")
	id, err := formutil.ObjectID(req, "id", "Need not found")
	if err != nil || id.Hex() != "64b7f0c2a1b2c3d4e5f60718" {
		t.Errorf("got %v, %v", id, err)
	}
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Status string `json:"status"`
	}

	req := httptest.NewRequest("PATCH", "/", strings.NewReader(`{"status":"approved"}`))
	if err := formutil.DecodeJSON(httptest.NewRecorder(), req, &v); err != nil || v.Status != "approved" {
		t.Errorf("got %q, %v", v.Status, err)
	}

	req = httptest.NewRequest("PATCH", "/", strings.NewReader(""))
	if err := formutil.DecodeJSON(httptest.NewRecorder(), req, &v); err != nil {
		t.Errorf("empty body: %v", err)
	}

	req = httptest.NewRequest("PATCH", "/", strings.NewReader("{"))
	if err := formutil.DecodeJSON(httptest.NewRecorder(), req, &v); !apierr.IsKind(err, apierr.KindValidation) {
		t.Errorf("bad body: %v", err)
	}
}
