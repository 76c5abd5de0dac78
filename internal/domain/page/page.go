// Package page holds the per-page artifacts passed between render, encode and inference.
package page

import (
	"encoding/base64"
	"fmt"
	"image"
)

// MediaTypeJPEG is the only media type the encoder produces.
const MediaTypeJPEG = "image/jpeg"

// Image is one rendered page, owned by the render step until encoded.
type Image struct {
	index int
	img   image.Image
}

// NewImage wraps a raster for the given 0-based page index.
func NewImage(index int, img image.Image) Image {
	return Image{index: index, img: img}
}

// Index returns the 0-based page index.
func (p Image) Index() int { return p.index }

// Raster returns the underlying image.
func (p Image) Raster() image.Image { return p.img }

// Encoded is a transport-ready page payload (immutable, passed by value).
type Encoded struct {
	index     int
	mediaType string
	data      string
}

// NewEncoded creates an encoded page from a base64 payload.
func NewEncoded(index int, mediaType, data string) Encoded {
	return Encoded{index: index, mediaType: mediaType, data: data}
}

// Index returns the 0-based page index.
func (e Encoded) Index() int { return e.index }

// MediaType returns the payload MIME type.
func (e Encoded) MediaType() string { return e.mediaType }

// Data returns the base64 payload.
func (e Encoded) Data() string { return e.data }

// DataURL returns the payload as a data URL.
func (e Encoded) DataURL() string {
	return "data:" + e.mediaType + ";base64," + e.data
}

// Bytes decodes the base64 payload.
func (e Encoded) Bytes() ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(e.data)
	if err != nil {
		return nil, fmt.Errorf("decode page %d payload: %w", e.index, err)
	}
	return b, nil
}
