package imaging

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"net/url"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"liminmarket/internal/models"
)

const maxUploadSize = 5 << 20 // 5 MB

// Progress stages reported while a photo moves through the pipeline.
const (
	StageValidating  = "validating"
	StageCompressing = "compressing"
	StageUploading   = "uploading"
	StageComplete    = "complete"
)

// ProgressFunc receives the stage, the variant tag being worked on and an
// overall percentage.
type ProgressFunc func(stage, variant string, percent float64)

// Uploader stores an object and resolves its public URL, and removes objects
// that are no longer referenced.
type Uploader interface {
	Upload(ctx context.Context, data []byte, key, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

type variantSpec struct {
	tag     string
	width   int
	height  int
	quality int
}

// The three resized renditions, produced in this order. The original is
// re-encoded lightly (quality 95) and uploaded last.
var variantSpecs = []variantSpec{
	{tag: "thumb", width: 300, height: 300, quality: 80},
	{tag: "medium", width: 800, height: 600, quality: 85},
	{tag: "full", width: 1200, height: 900, quality: 90},
}

const (
	originalQuality = 95
	// The re-encoded original may not exceed this; quality is stepped down
	// until it fits.
	originalMaxSize = 4 << 20
)

// Generator produces the four renditions of an uploaded photo and pushes
// them to object storage.
//
// The operation is all-or-nothing: a compression or upload failure on any
// rendition aborts the whole call and no variant set is returned. Renditions
// already uploaded before the failure are left behind in storage; their keys
// are random and never referenced, so the orphans are harmless.
type Generator struct {
	Uploader Uploader
	Folder   string
}

// UploadListingImage validates, compresses and uploads one photo. The
// returned variant set always has all four URLs populated, or the call
// returns an error.
func (g *Generator) UploadListingImage(ctx context.Context, data []byte, contentType string, onProgress ProgressFunc) (*models.ImageVariants, error) {
	report := func(stage, variant string, percent float64) {
		if onProgress != nil {
			onProgress(stage, variant, percent)
		}
	}

	report(StageValidating, "", 0)

	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("unsupported file type %q, expected an image", contentType)
	}
	if len(data) > maxUploadSize {
		return nil, fmt.Errorf("image is %s, the maximum size is 5 MB", formatBytes(len(data)))
	}

	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	base := fmt.Sprintf("%s-%d", uuid.New().String(), time.Now().UnixMilli())
	total := float64(len(variantSpecs) + 1)

	var variants models.ImageVariants
	for i, spec := range variantSpecs {
		report(StageCompressing, spec.tag, (float64(i)+0.25)/total*100)

		resized := fitWithin(src, spec.width, spec.height)
		encoded, err := encodeJPEG(resized, spec.quality)
		if err != nil {
			return nil, fmt.Errorf("failed to compress %s variant: %w", spec.tag, err)
		}

		report(StageUploading, spec.tag, (float64(i)+0.6)/total*100)

		url, err := g.upload(ctx, encoded, base, spec.tag)
		if err != nil {
			return nil, err
		}
		switch spec.tag {
		case "thumb":
			variants.Thumb = url
		case "medium":
			variants.Medium = url
		case "full":
			variants.Full = url
		}
	}

	// Original goes last: light compression, no resize.
	idx := float64(len(variantSpecs))
	report(StageCompressing, "original", (idx+0.25)/total*100)

	encoded, err := encodeOriginal(src)
	if err != nil {
		return nil, fmt.Errorf("failed to compress original: %w", err)
	}

	report(StageUploading, "original", (idx+0.6)/total*100)

	url, err := g.upload(ctx, encoded, base, "original")
	if err != nil {
		return nil, err
	}
	variants.Original = url

	report(StageComplete, "", 100)
	return &variants, nil
}

// RemoveListingImage deletes every stored rendition of a variant set. It
// keeps going past individual failures and returns the first error so the
// caller can decide whether the orphans matter. URLs that do not point into
// the bucket, such as category placeholders, are skipped.
func (g *Generator) RemoveListingImage(ctx context.Context, set models.ImageVariants) error {
	var firstErr error
	for _, rawURL := range []string{set.Thumb, set.Medium, set.Full, set.Original} {
		key, ok := keyForURL(rawURL)
		if !ok {
			continue
		}
		if err := g.Uploader.Delete(ctx, key); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to delete %s: %w", key, err)
		}
	}
	return firstErr
}

// keyForURL recovers the object key from a public URL. The URL is a pure
// function of the key, so the key is the URL path without its leading slash.
func keyForURL(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "", false
	}
	key := strings.TrimPrefix(u.Path, "/")
	return key, key != ""
}

func (g *Generator) upload(ctx context.Context, data []byte, base, tag string) (string, error) {
	key := fmt.Sprintf("%s-%s.jpg", base, tag)
	if g.Folder != "" {
		key = g.Folder + "/" + key
	}
	url, err := g.Uploader.Upload(ctx, data, key, "image/jpeg")
	if err != nil {
		return "", fmt.Errorf("failed to upload %s variant: %w", tag, err)
	}
	return url, nil
}

// fitWithin scales down so both dimensions fit the box, never upscales.
func fitWithin(src image.Image, width, height int) image.Image {
	b := src.Bounds()
	if b.Dx() <= width && b.Dy() <= height {
		return src
	}
	return imaging.Fit(src, width, height, imaging.Lanczos)
}

func encodeOriginal(src image.Image) ([]byte, error) {
	for quality := originalQuality; quality >= 60; quality -= 10 {
		encoded, err := encodeJPEG(src, quality)
		if err != nil {
			return nil, err
		}
		if len(encoded) <= originalMaxSize {
			return encoded, nil
		}
	}
	return nil, fmt.Errorf("original exceeds %s after compression", formatBytes(originalMaxSize))
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/float64(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
