package storage

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		t.Fatalf("parse multipart form: %v", err)
	}
	return req.MultipartForm.File["image"][0]
}

func TestDiskStoreSaveAndDelete(t *testing.T) {
	store := NewDiskStore(t.TempDir(), "/static/uploads", "http://localhost:8080")

	rel, err := store.SaveImage(fileHeader(t, "cover.png", pngBytes(t, 40, 30)), CreateImageExts)
	if err != nil {
		t.Fatalf("save image: %v", err)
	}

	if !strings.HasPrefix(rel, "images/") {
		t.Fatalf("blob should live under the images namespace, got %q", rel)
	}
	if !store.Exists(rel) {
		t.Fatal("saved blob should exist on disk")
	}

	url := store.URL(rel)
	if !strings.HasPrefix(url, "http://localhost:8080/static/uploads/images/") {
		t.Fatalf("unexpected public URL %q", url)
	}

	if err := store.Delete(rel); err != nil {
		t.Fatalf("delete blob: %v", err)
	}
	if store.Exists(rel) {
		t.Fatal("deleted blob should be gone")
	}

	// Deleting again is a no-op.
	if err := store.Delete(rel); err != nil {
		t.Fatalf("repeated delete should not fail: %v", err)
	}
}

func TestDiskStoreRejectsUnsupportedFormat(t *testing.T) {
	store := NewDiskStore(t.TempDir(), "/static/uploads", "http://localhost:8080")

	_, err := store.SaveImage(fileHeader(t, "notes.txt", []byte("plain text")), CreateImageExts)
	if !errors.Is(err, ErrImageFormat) {
		t.Fatalf("expected ErrImageFormat, got %v", err)
	}

	// svg is only allowed on first attach, not on replace.
	_, err = store.SaveImage(fileHeader(t, "logo.svg", []byte("<svg/>")), UpdateImageExts)
	if !errors.Is(err, ErrImageFormat) {
		t.Fatalf("expected ErrImageFormat for svg on update, got %v", err)
	}
}

func TestDiskStoreRejectsUndecodablePayload(t *testing.T) {
	store := NewDiskStore(t.TempDir(), "/static/uploads", "http://localhost:8080")

	_, err := store.SaveImage(fileHeader(t, "fake.png", []byte("not an image")), CreateImageExts)
	if !errors.Is(err, ErrImageInvalid) {
		t.Fatalf("expected ErrImageInvalid, got %v", err)
	}
}

func TestDiskStoreDownscalesWideImages(t *testing.T) {
	store := NewDiskStore(t.TempDir(), "/static/uploads", "http://localhost:8080")

	rel, err := store.SaveImage(fileHeader(t, "wide.png", pngBytes(t, maxImageWidth+200, 300)), CreateImageExts)
	if err != nil {
		t.Fatalf("save wide image: %v", err)
	}
	if !strings.HasSuffix(rel, ".jpg") {
		t.Fatalf("downscaled blob should be re-encoded as jpeg, got %q", rel)
	}
}

func TestDiskStoreDownscaleKeepsMinimumHeight(t *testing.T) {
	dir := t.TempDir()
	store := NewDiskStore(dir, "/static/uploads", "http://localhost:8080")

	// A 4000x1 banner rounds its scaled height down to zero without a clamp.
	rel, err := store.SaveImage(fileHeader(t, "banner.png", pngBytes(t, 4000, 1)), CreateImageExts)
	if err != nil {
		t.Fatalf("save banner image: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("read stored blob: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("stored blob should be a decodable jpeg: %v", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() != maxImageWidth {
		t.Fatalf("expected width %d, got %d", maxImageWidth, bounds.Dx())
	}
	if bounds.Dy() < 1 {
		t.Fatalf("downscaled height must stay at least 1, got %d", bounds.Dy())
	}
}

func TestDiskStoreRefusesPathEscape(t *testing.T) {
	store := NewDiskStore(t.TempDir(), "/static/uploads", "http://localhost:8080")

	if err := store.Delete("../outside"); !errors.Is(err, ErrPathEscapes) {
		t.Fatalf("expected ErrPathEscapes, got %v", err)
	}
	if store.Exists("../outside") {
		t.Fatal("escaping path should never report existence")
	}
}
