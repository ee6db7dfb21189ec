// Package photo normalizes uploaded images before they are stored.
package photo

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/disintegration/imaging"
)

var ErrNotImage = errors.New("file is not a supported image")

// Processor downsizes images whose longest side exceeds MaxSide, honouring
// EXIF orientation when it re-encodes. Images within MaxSide, or any image
// when MaxSide is zero, are returned unchanged.
type Processor struct {
	MaxSide int
	Quality int
}

func NewProcessor(maxSide int) *Processor {
	return &Processor{MaxSide: maxSide, Quality: 85}
}

func (p *Processor) Process(name string, data []byte) ([]byte, error) {
	format, err := imaging.FormatFromFilename(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotImage, name)
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}

	bounds := img.Bounds()
	if p.MaxSide <= 0 || (bounds.Dx() <= p.MaxSide && bounds.Dy() <= p.MaxSide) {
		return data, nil
	}

	resized := imaging.Fit(img, p.MaxSide, p.MaxSide, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, format, imaging.JPEGQuality(p.Quality)); err != nil {
		return nil, fmt.Errorf("encode %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
