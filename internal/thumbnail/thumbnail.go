package thumbnail

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

const jpegQuality = 80

// FromImage decodes an image and returns a JPEG preview whose longest side
// is at most maxPx. Images already within bounds are re-encoded without
// scaling.
func FromImage(data []byte, maxPx int) ([]byte, error) {
	if maxPx <= 0 {
		return nil, fmt.Errorf("thumbnail bound must be positive, got %d", maxPx)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode cover image: %w", err)
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("cover image has empty bounds %v", bounds)
	}

	if width > maxPx || height > maxPx {
		scale := float64(maxPx) / float64(width)
		if height > width {
			scale = float64(maxPx) / float64(height)
		}
		dstW := max(1, int(float64(width)*scale))
		dstH := max(1, int(float64(height)*scale))

		dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		src = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURI renders a generated thumbnail as an inline data URI.
func DataURI(thumb []byte) string {
	if len(thumb) == 0 {
		return ""
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(thumb)
}
