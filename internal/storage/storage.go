package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/image/draw"

	_ "image/gif"
	_ "image/png"
)

var (
	ErrImageFormat   = errors.New("unsupported image format")
	ErrImageTooLarge = errors.New("image exceeds the size limit")
	ErrImageInvalid  = errors.New("image data could not be decoded")
	ErrPathEscapes   = errors.New("path escapes the storage root")
)

const (
	// maxUploadBytes mirrors the 4048 KB upload cap of the web forms.
	maxUploadBytes = 4048 << 10
	maxImageWidth  = 1600
	jpegQuality    = 85
	imageNamespace = "images"
)

// CreateImageExts lists extensions accepted when first attaching an image.
var CreateImageExts = []string{".jpeg", ".jpg", ".png", ".gif", ".svg"}

// UpdateImageExts excludes svg, matching the stricter replace rule.
var UpdateImageExts = []string{".jpeg", ".jpg", ".png", ".gif"}

// DiskStore persists uploaded blobs under a public-servable directory and
// resolves stored paths to absolute URLs.
type DiskStore struct {
	root       string
	publicBase string
}

// NewDiskStore builds a store rooted at dir. urlPrefix is the path the router
// serves dir under, and siteBaseURL makes resolved URLs absolute.
func NewDiskStore(dir, urlPrefix, siteBaseURL string) *DiskStore {
	base := strings.TrimRight(strings.TrimSpace(siteBaseURL), "/")
	prefix := strings.Trim(strings.TrimSpace(urlPrefix), "/")
	if prefix != "" {
		base = base + "/" + prefix
	}
	return &DiskStore{root: dir, publicBase: base}
}

// SaveImage validates and stores an uploaded image under the images
// namespace, returning the relative path to persist. Raster formats are
// decoded as a validity check and downscaled when wider than maxImageWidth;
// svg files are stored verbatim.
func (s *DiskStore) SaveImage(file *multipart.FileHeader, allowedExts []string) (string, error) {
	if file.Size > maxUploadBytes {
		return "", ErrImageTooLarge
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !extAllowed(ext, allowedExts) {
		return "", ErrImageFormat
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(src); err != nil {
		return "", err
	}
	data := buf.Bytes()

	if ext != ".svg" {
		data, ext, err = processRaster(data, ext)
		if err != nil {
			return "", err
		}
	}

	name := fmt.Sprintf("%s-%s%s", time.Now().Format("20060102"), uuid.New().String(), ext)
	rel := path.Join(imageNamespace, name)

	dir := filepath.Join(s.root, imageNamespace)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", err
	}

	return rel, nil
}

// Delete removes a stored blob. Deleting a path that is already gone is not
// an error.
func (s *DiskStore) Delete(rel string) error {
	full, err := s.resolve(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Exists reports whether a stored blob is present on disk.
func (s *DiskStore) Exists(rel string) bool {
	full, err := s.resolve(rel)
	if err != nil {
		return false
	}
	info, err := os.Stat(full)
	return err == nil && !info.IsDir()
}

// URL resolves a stored path to an absolute public URL. Empty paths resolve
// to the empty string.
func (s *DiskStore) URL(rel string) string {
	if rel == "" {
		return ""
	}
	return s.publicBase + "/" + strings.TrimLeft(path.Clean(rel), "/")
}

func (s *DiskStore) resolve(rel string) (string, error) {
	cleaned := path.Clean(strings.TrimLeft(rel, "/"))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") {
		return "", ErrPathEscapes
	}
	return filepath.Join(s.root, filepath.FromSlash(cleaned)), nil
}

// processRaster decodes the upload to reject non-image payloads and
// downscales anything wider than maxImageWidth, re-encoding as JPEG.
func processRaster(data []byte, ext string) ([]byte, string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", ErrImageInvalid
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxImageWidth {
		return data, ext, nil
	}

	newH := h * maxImageWidth / w
	if newH < 1 {
		// Extreme aspect ratios round down to zero height.
		newH = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, "", err
	}
	return out.Bytes(), ".jpg", nil
}

func extAllowed(ext string, allowed []string) bool {
	for _, candidate := range allowed {
		if ext == candidate {
			return true
		}
	}
	return false
}
