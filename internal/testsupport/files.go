package testsupport

import (
	"archive/zip"
	"bytes"
	_ "embed"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// pages.cbr is a store-method RAR5 container committed as a static
// fixture (no RAR writer exists in Go). Entries in archive order:
// page10.png, notes.txt, scans/extra4.png, page1.png, page2.png, so
// natural ordering, image filtering, and subdirectory walking all have
// something to prove.
//
//go:embed testdata/pages.cbr
var cbrFixture []byte

// CBR entry contents, keyed by natural page index.
var cbrPages = [][]byte{
	[]byte("rar page one bytes"),
	[]byte("rar page two bytes"),
	[]byte("rar page ten bytes"),
	[]byte("rar bonus page bytes"),
}

// CBRFixture returns the static four-page CBR container.
func CBRFixture(t testing.TB) []byte {
	t.Helper()

	out := make([]byte, len(cbrFixture))
	copy(out, cbrFixture)
	return out
}

// CBRPage returns the expected bytes of the fixture page at index, in
// natural order (page1, page2, page10, scans/extra4).
func CBRPage(t testing.TB, index int) []byte {
	t.Helper()

	if index < 0 || index >= len(cbrPages) {
		t.Fatalf("fixture has no page %d", index)
	}
	out := make([]byte, len(cbrPages[index]))
	copy(out, cbrPages[index])
	return out
}

// PNGBytes encodes a small valid PNG for use as an archive page. The seed
// perturbs pixel values so distinct pages produce distinct bytes.
func PNGBytes(t testing.TB, seed int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: uint8(seed), G: uint8(x * 60), B: uint8(y * 60), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// BuildCBZ assembles an in-memory CBZ container from entry names to
// contents. Entries are written in map iteration order; callers relying on
// page order should assert natural ordering, not insertion order.
func BuildCBZ(t testing.TB, entries map[string][]byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	for name, data := range entries {
		entry, err := writer.Create(name)
		if err != nil {
			t.Fatalf("create zip entry %s: %v", name, err)
		}
		if _, err := entry.Write(data); err != nil {
			t.Fatalf("write zip entry %s: %v", name, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close zip writer: %v", err)
	}
	return buf.Bytes()
}

// ThreePageCBZ builds a CBZ with three PNG pages named so natural order is
// page1, page2, page10.
func ThreePageCBZ(t testing.TB) []byte {
	t.Helper()

	return BuildCBZ(t, map[string][]byte{
		"page1.png":  PNGBytes(t, 1),
		"page2.png":  PNGBytes(t, 2),
		"page10.png": PNGBytes(t, 10),
	})
}
