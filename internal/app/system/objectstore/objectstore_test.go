package objectstore_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bemyforce/bemyforce/internal/app/system/objectstore"
	"github.com/bemyforce/bemyforce/internal/domain/models"
	"github.com/bemyforce/bemyforce/internal/testutil"
	"github.com/dalemusser/waffle/pantry/storage"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		contentType string
		want        models.AssetType
	}{
		{"video/mp4", models.AssetVideo},
		{"VIDEO/quicktime", models.AssetVideo},
		{"image/png", models.AssetImage},
		{"application/pdf", models.AssetImage},
		{"", models.AssetImage},
	}
	for _, tt := range tests {
		if got := objectstore.Classify(tt.contentType); got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.contentType, got, tt.want)
		}
	}
}

func TestKey(t *testing.T) {
	k := objectstore.Key("achievements/abc", "clip.MP4")
	if !strings.HasPrefix(k, "achievements/abc/") || !strings.HasSuffix(k, ".mp4") {
		t.Errorf("unexpected key %q", k)
	}
	if k == objectstore.Key("achievements/abc", "clip.MP4") {
		t.Error("keys should be unique")
	}
	if k := objectstore.Key("../../etc", "x.png"); strings.Contains(k, "..") {
		t.Errorf("key escapes folder: %q", k)
	}
}

func TestUploadMany_Order(t *testing.T) {
	objects, mem := testutil.NewObjectStore()
	files := []objectstore.File{
		{Name: "a.png", ContentType: "image/png", Data: []byte("a")},
		{Name: "b.mp4", ContentType: "video/mp4", Data: []byte("b")},
		{Name: "c.jpg", ContentType: "image/jpeg", Data: []byte("c")},
	}

	res, err := objects.UploadMany(context.Background(), files, "needs/1")
	if err != nil {
		t.Fatalf("UploadMany failed: %v", err)
	}
	if len(res) != 3 {
		t.Fatalf("expected 3 results, got %d", len(res))
	}
	if res[1].AssetType != models.AssetVideo || res[0].AssetType != models.AssetImage {
		t.Errorf("results out of order: %+v", res)
	}
	for _, r := range res {
		if r.URL != testutil.StorageBaseURL+"/"+r.PublicID {
			t.Errorf("URL %q does not address key %q", r.URL, r.PublicID)
		}
	}
	if mem.Count() != 3 {
		t.Errorf("expected 3 stored objects, got %d", mem.Count())
	}
}

func TestUploadMany_FailureCleansUp(t *testing.T) {
	objects, mem := testutil.NewObjectStore()
	mem.FailPuts = errors.New("quota")
	mem.FailAfter = 2

	files := make([]objectstore.File, 5)
	for i := range files {
		files[i] = objectstore.File{Name: "x.png", ContentType: "image/png", Data: []byte("x")}
	}

	if _, err := objects.UploadMany(context.Background(), files, "f"); err == nil {
		t.Fatal("expected error")
	}
	if mem.Count() != 0 {
		t.Errorf("expected uploaded objects to be removed, %d left", mem.Count())
	}
}

func TestUpload_DetectsMissingContentType(t *testing.T) {
	objects, mem := testutil.NewObjectStore()
	ctx := context.Background()

	res, err := objects.Upload(ctx, objectstore.File{Name: "clip.mp4", Data: []byte("v")}, "achievements")
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if res.AssetType != models.AssetVideo {
		t.Errorf("asset type: got %q, want video", res.AssetType)
	}
	info, err := mem.Head(ctx, res.PublicID)
	if err != nil {
		t.Fatalf("Head failed: %v", err)
	}
	if info.ContentType != "video/mp4" {
		t.Errorf("content type: got %q", info.ContentType)
	}
}

func TestLocal_UploadDelete(t *testing.T) {
	dir := t.TempDir()
	backend, err := storage.NewLocal(storage.LocalConfig{BasePath: dir, BaseURL: "http://localhost:8080/files"})
	if err != nil {
		t.Fatalf("NewLocal failed: %v", err)
	}
	objects := objectstore.New(backend)
	ctx := context.Background()

	res, err := objects.Upload(ctx, objectstore.File{Name: "p.png", ContentType: "image/png", Data: []byte("png")}, "users/1")
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if !strings.HasPrefix(res.URL, "http://localhost:8080/files/users/1/") {
		t.Errorf("unexpected URL %q", res.URL)
	}
	p := filepath.Join(dir, filepath.FromSlash(res.PublicID))
	if _, err := os.Stat(p); err != nil {
		t.Fatalf("file not written: %v", err)
	}

	if err := objects.Delete(ctx, res.PublicID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := os.Stat(p); !os.IsNotExist(err) {
		t.Errorf("file still present: %v", err)
	}
	if err := objects.Delete(ctx, res.PublicID); err != nil {
		t.Errorf("second Delete should be a no-op: %v", err)
	}
}

func TestUpload_EmptyFile(t *testing.T) {
	objects, mem := testutil.NewObjectStore()
	if _, err := objects.Upload(context.Background(), objectstore.File{Name: "e.png"}, "f"); err != objectstore.ErrEmptyFile {
		t.Errorf("expected ErrEmptyFile, got %v", err)
	}
	if mem.Count() != 0 {
		t.Errorf("empty file stored: %d objects", mem.Count())
	}
}

func TestDeleteMany_SkipsMissing(t *testing.T) {
	objects, mem := testutil.NewObjectStore()
	ctx := context.Background()

	res, err := objects.Upload(ctx, objectstore.File{Name: "a.png", ContentType: "image/png", Data: []byte("a")}, "f")
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if err := objects.DeleteMany(ctx, []string{res.PublicID, "f/missing.png"}); err != nil {
		t.Fatalf("DeleteMany failed: %v", err)
	}
	if mem.Has(res.PublicID) {
		t.Error("object still stored")
	}

	mem.FailDeletes = errors.New("denied")
	if err := objects.DeleteMany(ctx, []string{"f/x.png"}); !errors.Is(err, mem.FailDeletes) {
		t.Errorf("expected backend error, got %v", err)
	}
}
