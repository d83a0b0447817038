package thumbnail_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"longbox/internal/thumbnail"
)

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func decodeSize(t *testing.T, data []byte) (int, int) {
	t.Helper()

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode thumbnail: %v", err)
	}
	return cfg.Width, cfg.Height
}

func TestFromImageCapsLongestSide(t *testing.T) {
	thumb, err := thumbnail.FromImage(encodePNG(t, 800, 1200), 320)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}

	w, h := decodeSize(t, thumb)
	if h != 320 {
		t.Fatalf("expected height capped at 320, got %d", h)
	}
	if w <= 0 || w > 320 {
		t.Fatalf("unexpected width %d", w)
	}
}

func TestFromImageKeepsSmallImages(t *testing.T) {
	thumb, err := thumbnail.FromImage(encodePNG(t, 100, 60), 320)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}

	w, h := decodeSize(t, thumb)
	if w != 100 || h != 60 {
		t.Fatalf("expected original dimensions, got %dx%d", w, h)
	}
}

func TestFromImageRejectsGarbage(t *testing.T) {
	if _, err := thumbnail.FromImage([]byte("not an image"), 320); err == nil {
		t.Fatal("expected decode failure")
	}
}

func TestDataURI(t *testing.T) {
	uri := thumbnail.DataURI([]byte{0xff, 0xd8})
	if !strings.HasPrefix(uri, "data:image/jpeg;base64,") {
		t.Fatalf("unexpected prefix: %s", uri)
	}
	if thumbnail.DataURI(nil) != "" {
		t.Fatal("nil thumbnail should produce empty URI")
	}
}
