// Package encode turns rendered page rasters into transport-ready payloads.
package encode

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/jpeg"

	"github.com/kailas-cloud/pagex/internal/domain"
	"github.com/kailas-cloud/pagex/internal/domain/page"
)

// DefaultQuality is the JPEG quality used when none is configured.
const DefaultQuality = 85

// JPEG encodes page rasters as base64 JPEG at a fixed quality. Stateless.
type JPEG struct {
	quality int
}

// NewJPEG creates a JPEG encoder. Quality must be within 1..100; 0 selects DefaultQuality.
func NewJPEG(quality int) (*JPEG, error) {
	if quality == 0 {
		quality = DefaultQuality
	}
	if err := ValidateQuality(quality); err != nil {
		return nil, err
	}
	return &JPEG{quality: quality}, nil
}

// ValidateQuality checks the JPEG quality bounds.
func ValidateQuality(quality int) error {
	if quality < 1 || quality > 100 {
		return fmt.Errorf("jpeg quality must be between 1 and 100, got %d", quality)
	}
	return nil
}

// Encode produces the base64 JPEG payload for one page.
func (e *JPEG) Encode(p page.Image) (page.Encoded, error) {
	img := p.Raster()
	if img == nil || img.Bounds().Empty() {
		return page.Encoded{}, fmt.Errorf("%w: page %d has no image data", domain.ErrEncoding, p.Index())
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: e.quality}); err != nil {
		return page.Encoded{}, fmt.Errorf("%w: page %d: %w", domain.ErrEncoding, p.Index(), err)
	}

	return page.NewEncoded(p.Index(), page.MediaTypeJPEG, base64.StdEncoding.EncodeToString(buf.Bytes())), nil
}

// EncodeAll encodes pages in order, failing on the first error.
func (e *JPEG) EncodeAll(pages []page.Image) ([]page.Encoded, error) {
	out := make([]page.Encoded, 0, len(pages))
	for _, p := range pages {
		enc, err := e.Encode(p)
		if err != nil {
			return nil, err
		}
		out = append(out, enc)
	}
	return out, nil
}
