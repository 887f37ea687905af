package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"medagent-tools/errors"
	"medagent-tools/logger"
	"medagent-tools/medparser"
)

const (
	// maxDimension caps either side before the payload goes to the model.
	maxDimension = 2048
	// minDimension is the smallest side the model handles reliably.
	minDimension = 224

	jpegQuality = 85
)

// PreparedImage is the validated, possibly downscaled payload handed to the
// vision client, together with the measured quality of the original.
type PreparedImage struct {
	Base64    string
	MediaType string
	Quality   medparser.ImageQuality
	Metrics   QualityMetrics
	Optimized bool
}

// Preprocessor validates and conditions incoming medication photos.
type Preprocessor struct {
	maxBytes int
	minBytes int
	log      logger.Logger
}

func NewPreprocessor(maxBytes, minBytes int) *Preprocessor {
	return &Preprocessor{
		maxBytes: maxBytes,
		minBytes: minBytes,
		log:      logger.GetLogger(),
	}
}

// Prepare normalizes, validates and optimizes a base64 image. Validation
// failures return an error; quality assessment or optimization failures do
// not, the original payload is passed through instead.
func (p *Preprocessor) Prepare(data string) (PreparedImage, error) {
	if data == "" {
		return PreparedImage{}, errors.NewValidationError("image_data parameter is required")
	}

	normalized, err := NormalizeBase64(data)
	if err != nil {
		return PreparedImage{}, err
	}

	estimated := EstimatedByteSize(normalized)
	if estimated > p.maxBytes {
		return PreparedImage{}, errors.NewValidationError(
			fmt.Sprintf("image size %d bytes exceeds maximum of %d bytes", estimated, p.maxBytes))
	}
	if estimated < p.minBytes {
		return PreparedImage{}, errors.NewValidationError(
			fmt.Sprintf("image size %d bytes is below minimum of %d bytes", estimated, p.minBytes))
	}

	decoded, err := decodeBase64(normalized)
	if err != nil {
		return PreparedImage{}, err
	}

	prepared := PreparedImage{
		Base64:    normalized,
		MediaType: DetectMediaType(decoded),
		Quality:   medparser.QualityUnknown,
	}

	img, _, err := image.Decode(bytes.NewReader(decoded))
	if err != nil {
		p.log.Warn("Image decode failed, passing original payload through", map[string]interface{}{
			"error": err.Error(),
		})
		return prepared, nil
	}

	prepared.Quality, prepared.Metrics = AssessQuality(img, len(decoded))

	if optimized, ok := p.optimize(img); ok {
		prepared.Base64 = optimized
		prepared.MediaType = MediaTypeJPEG
		prepared.Optimized = true
	}

	return prepared, nil
}

// optimize downscales oversized images and re-encodes them as JPEG. It
// reports false when the image needs no resizing or encoding fails.
func (p *Preprocessor) optimize(img image.Image) (string, bool) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width <= maxDimension && height <= maxDimension {
		return "", false
	}

	scale := float64(maxDimension) / float64(width)
	if height > width {
		scale = float64(maxDimension) / float64(height)
	}

	newWidth := int(float64(width) * scale)
	newHeight := int(float64(height) * scale)
	if newWidth < minDimension {
		newWidth = minDimension
	}
	if newHeight < minDimension {
		newHeight = minDimension
	}

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		p.log.Warn("Image re-encode failed, keeping original payload", map[string]interface{}{
			"error": err.Error(),
		})
		return "", false
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), true
}
