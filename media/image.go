package media

import (
	"bytes"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
)

// ResizeForWeb decodes an uploaded image, scales it down to fit within
// maxSize pixels on the longest side (never upscaling), and re-encodes it
// as JPEG. Returns the encoded bytes and the file extension to store under.
func ResizeForWeb(r io.Reader, maxSize int) (*bytes.Buffer, string, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	resized := imaging.Fit(img, maxSize, maxSize, imaging.Lanczos)

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, resized, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, "", fmt.Errorf("failed to encode image: %w", err)
	}
	return buf, ".jpg", nil
}
