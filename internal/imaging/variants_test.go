package imaging

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"strings"
	"testing"

	"liminmarket/internal/models"
)

type fakeUploader struct {
	keys    []string
	deleted []string
	failOn  string
	baseURL string
}

func (f *fakeUploader) Upload(_ context.Context, _ []byte, key, _ string) (string, error) {
	if f.failOn != "" && strings.Contains(key, f.failOn) {
		return "", errors.New("storage unavailable")
	}
	f.keys = append(f.keys, key)
	return f.baseURL + "/" + key, nil
}

func (f *fakeUploader) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func testJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encoding test image: %v", err)
	}
	return buf.Bytes()
}

func TestUploadListingImageProducesAllVariants(t *testing.T) {
	up := &fakeUploader{baseURL: "https://cdn.test"}
	g := &Generator{Uploader: up, Folder: "listings"}

	variants, err := g.UploadListingImage(context.Background(), testJPEG(t, 1600, 1200), "image/jpeg", nil)
	if err != nil {
		t.Fatalf("UploadListingImage: %v", err)
	}

	if !variants.Complete() {
		t.Fatalf("expected all four URLs, got %+v", variants)
	}
	if len(up.keys) != 4 {
		t.Fatalf("expected 4 uploads, got %d (%v)", len(up.keys), up.keys)
	}

	wantSuffixes := []string{"-thumb.jpg", "-medium.jpg", "-full.jpg", "-original.jpg"}
	for i, suffix := range wantSuffixes {
		if !strings.HasSuffix(up.keys[i], suffix) {
			t.Errorf("upload %d: key %q does not end with %q", i, up.keys[i], suffix)
		}
		if !strings.HasPrefix(up.keys[i], "listings/") {
			t.Errorf("upload %d: key %q missing folder prefix", i, up.keys[i])
		}
	}
}

func TestUploadListingImageRejectsOversizedFile(t *testing.T) {
	up := &fakeUploader{baseURL: "https://cdn.test"}
	g := &Generator{Uploader: up}

	variants, err := g.UploadListingImage(context.Background(), make([]byte, 6<<20), "image/jpeg", nil)
	if variants != nil {
		t.Fatalf("expected nil variants, got %+v", variants)
	}
	if err == nil || !strings.Contains(err.Error(), "5 MB") {
		t.Fatalf("expected size error mentioning 5 MB, got %v", err)
	}
	if len(up.keys) != 0 {
		t.Errorf("no upload must be attempted for an oversized file, got %v", up.keys)
	}
}

func TestUploadListingImageRejectsNonImage(t *testing.T) {
	g := &Generator{Uploader: &fakeUploader{}}

	_, err := g.UploadListingImage(context.Background(), []byte("%PDF-1.4"), "application/pdf", nil)
	if err == nil {
		t.Fatal("expected a type error for non-image content")
	}
}

func TestUploadListingImageAllOrNothing(t *testing.T) {
	up := &fakeUploader{baseURL: "https://cdn.test", failOn: "-medium"}
	g := &Generator{Uploader: up}

	variants, err := g.UploadListingImage(context.Background(), testJPEG(t, 640, 480), "image/jpeg", nil)
	if err == nil {
		t.Fatal("expected failure when one variant upload fails")
	}
	if variants != nil {
		t.Fatalf("a partial variant set must never be returned, got %+v", variants)
	}
	if !strings.Contains(err.Error(), "medium") {
		t.Errorf("error should name the failed variant, got %v", err)
	}
}

func TestUploadListingImageProgressSequence(t *testing.T) {
	g := &Generator{Uploader: &fakeUploader{baseURL: "https://cdn.test"}}

	type event struct {
		stage   string
		variant string
		percent float64
	}
	var events []event
	_, err := g.UploadListingImage(context.Background(), testJPEG(t, 100, 100), "image/jpeg", func(stage, variant string, percent float64) {
		events = append(events, event{stage, variant, percent})
	})
	if err != nil {
		t.Fatalf("UploadListingImage: %v", err)
	}

	if events[0].stage != StageValidating || events[0].percent != 0 {
		t.Errorf("first event should be validating at 0%%, got %+v", events[0])
	}
	last := events[len(events)-1]
	if last.stage != StageComplete || last.percent != 100 {
		t.Errorf("last event should be complete at 100%%, got %+v", last)
	}

	prev := -1.0
	for _, e := range events {
		if e.percent < prev {
			t.Fatalf("progress went backwards: %+v after %.1f", e, prev)
		}
		prev = e.percent
	}

	var uploadTags []string
	for _, e := range events {
		if e.stage == StageUploading {
			uploadTags = append(uploadTags, e.variant)
		}
	}
	want := []string{"thumb", "medium", "full", "original"}
	if len(uploadTags) != len(want) {
		t.Fatalf("expected %d uploading events, got %v", len(want), uploadTags)
	}
	for i := range want {
		if uploadTags[i] != want[i] {
			t.Errorf("upload order: got %v, want %v", uploadTags, want)
			break
		}
	}
}

func TestUploadListingImageDoesNotUpscale(t *testing.T) {
	small := testJPEG(t, 100, 80)
	resized := fitWithin(mustDecode(t, small), 300, 300)
	if b := resized.Bounds(); b.Dx() != 100 || b.Dy() != 80 {
		t.Errorf("small image must keep its dimensions, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestRemoveListingImageDeletesEveryRendition(t *testing.T) {
	up := &fakeUploader{baseURL: "https://bucket.cdn.test"}
	g := &Generator{Uploader: up, Folder: "listings"}

	set := models.ImageVariants{
		Thumb:    "https://bucket.cdn.test/listings/abc-1-thumb.jpg",
		Medium:   "https://bucket.cdn.test/listings/abc-1-medium.jpg",
		Full:     "https://bucket.cdn.test/listings/abc-1-full.jpg",
		Original: "https://bucket.cdn.test/listings/abc-1-original.jpg",
	}
	if err := g.RemoveListingImage(context.Background(), set); err != nil {
		t.Fatalf("RemoveListingImage: %v", err)
	}

	want := []string{
		"listings/abc-1-thumb.jpg",
		"listings/abc-1-medium.jpg",
		"listings/abc-1-full.jpg",
		"listings/abc-1-original.jpg",
	}
	if len(up.deleted) != len(want) {
		t.Fatalf("expected %d deletes, got %v", len(want), up.deleted)
	}
	for i := range want {
		if up.deleted[i] != want[i] {
			t.Errorf("delete %d: got %q, want %q", i, up.deleted[i], want[i])
		}
	}
}

func TestRemoveListingImageSkipsPlaceholderPaths(t *testing.T) {
	up := &fakeUploader{}
	g := &Generator{Uploader: up}

	set := models.ImageVariants{Medium: "/static/placeholders/jobs.jpg"}
	if err := g.RemoveListingImage(context.Background(), set); err != nil {
		t.Fatalf("RemoveListingImage: %v", err)
	}
	if len(up.deleted) != 0 {
		t.Errorf("relative paths are not bucket objects, got %v", up.deleted)
	}
}

func mustDecode(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decoding: %v", err)
	}
	return img
}
