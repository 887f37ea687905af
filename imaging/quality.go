package imaging

import (
	"image"
	"math"

	"medagent-tools/medparser"
)

const (
	blurVarianceGood = 100.0
	blurVarianceFair = 50.0

	brightnessGoodLow  = 50.0
	brightnessGoodHigh = 200.0
	brightnessFairLow  = 30.0
	brightnessFairHigh = 220.0

	contrastGood = 30.0
	contrastFair = 15.0

	resolutionGood = 500000
	resolutionFair = 100000

	fileSizeGood = 5000
	fileSizeFair = 2500

	qualityGoodThreshold = 0.8
	qualityFairThreshold = 0.5
)

// QualityMetrics holds the raw measurements behind a quality bucket so
// callers can log why an image was rated the way it was.
type QualityMetrics struct {
	BlurScore  float64
	Brightness float64
	Contrast   float64
	Width      int
	Height     int
	FileSize   int
	Score      float64
}

// AssessQuality scores sharpness, brightness, contrast, resolution and
// file size, then maps the combined score onto the good/fair/poor buckets.
func AssessQuality(img image.Image, fileSize int) (medparser.ImageQuality, QualityMetrics) {
	gray, width, height := toGrayscale(img)

	metrics := QualityMetrics{
		BlurScore:  laplacianVariance(gray, width, height),
		Brightness: mean(gray),
		Contrast:   stddev(gray),
		Width:      width,
		Height:     height,
		FileSize:   fileSize,
	}

	score := 0.0
	maxScore := 5.0

	switch {
	case metrics.BlurScore > blurVarianceGood:
		score += 1.0
	case metrics.BlurScore > blurVarianceFair:
		score += 0.5
	}

	switch {
	case metrics.Brightness >= brightnessGoodLow && metrics.Brightness <= brightnessGoodHigh:
		score += 1.0
	case metrics.Brightness >= brightnessFairLow && metrics.Brightness <= brightnessFairHigh:
		score += 0.5
	}

	switch {
	case metrics.Contrast > contrastGood:
		score += 1.0
	case metrics.Contrast > contrastFair:
		score += 0.5
	}

	pixels := width * height
	switch {
	case pixels > resolutionGood:
		score += 1.0
	case pixels > resolutionFair:
		score += 0.5
	}

	switch {
	case fileSize > fileSizeGood:
		score += 1.0
	case fileSize > fileSizeFair:
		score += 0.5
	}

	metrics.Score = score / maxScore

	switch {
	case metrics.Score >= qualityGoodThreshold:
		return medparser.QualityGood, metrics
	case metrics.Score >= qualityFairThreshold:
		return medparser.QualityFair, metrics
	default:
		return medparser.QualityPoor, metrics
	}
}

// toGrayscale flattens the image into a row-major luminance slice.
func toGrayscale(img image.Image) ([]float64, int, int) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	gray := make([]float64, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			lum := 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
			gray[y*width+x] = lum
		}
	}

	return gray, width, height
}

// laplacianVariance measures sharpness: a blurry image has weak edges and
// therefore a low variance of its Laplacian.
func laplacianVariance(gray []float64, width, height int) float64 {
	if width < 3 || height < 3 {
		return 0
	}

	lap := make([]float64, 0, (width-2)*(height-2))
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			center := gray[y*width+x]
			v := 4*center - gray[(y-1)*width+x] - gray[(y+1)*width+x] -
				gray[y*width+x-1] - gray[y*width+x+1]
			lap = append(lap, v)
		}
	}

	return variance(lap)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return sum / float64(len(values))
}

func stddev(values []float64) float64 {
	return math.Sqrt(variance(values))
}
