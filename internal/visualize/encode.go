package visualize

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
)

// Encoded is a rendering packed for transport.
type Encoded struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Encode packs img as base64 PNG.
func Encode(img image.Image) (*Encoded, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &Encoded{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
