package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"strings"

	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"

	"vision-voice/internal/domain"
)

const (
	// DefaultScale downsizes captures to 70% of native resolution.
	DefaultScale = 0.7

	// DefaultJPEGQuality matches an encoding quality of 0.7.
	DefaultJPEGQuality = 70
)

// Compress decodes a raw frame, scales it down, and re-encodes it as JPEG.
// The returned frame is self-contained and independent of the source stream.
func Compress(data []byte, scale float64, quality int) (domain.CapturedFrame, error) {
	if len(data) == 0 {
		return domain.CapturedFrame{}, fmt.Errorf("empty frame data")
	}
	if scale <= 0 || scale > 1 {
		return domain.CapturedFrame{}, fmt.Errorf("scale %v out of range (0, 1]", scale)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return domain.CapturedFrame{}, fmt.Errorf("decoding frame: %w", err)
	}

	bounds := src.Bounds()
	w := int(float64(bounds.Dx()) * scale)
	h := int(float64(bounds.Dy()) * scale)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality}); err != nil {
		return domain.CapturedFrame{}, fmt.Errorf("encoding frame: %w", err)
	}

	return domain.CapturedFrame{Data: buf.Bytes(), MIME: "image/jpeg"}, nil
}

// DecodeDataURL accepts either a data URL ("data:image/png;base64,...") or
// bare base64 and returns the raw bytes. Browser canvases hand frames over
// in data-URL form; the analysis endpoint wants neither prefix nor encoding.
func DecodeDataURL(s string) ([]byte, error) {
	if strings.HasPrefix(s, "data:") {
		idx := strings.IndexByte(s, ',')
		if idx < 0 {
			return nil, fmt.Errorf("malformed data URL")
		}
		s = s[idx+1:]
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decoding base64 frame: %w", err)
	}
	return data, nil
}
