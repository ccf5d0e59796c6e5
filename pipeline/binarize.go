package pipeline

import (
	"image"
	"image/color"
)

// BinarizeThreshold is the luminance cutoff separating black from white.
const BinarizeThreshold = 128

// Binarize converts img to grayscale and reduces it to two levels: pixels
// with luminance below BinarizeThreshold become black (0), the rest white
// (255). Tesseract copes far better with binarized scans of Bangla script
// than with raw grayscale.
func Binarize(img image.Image) *image.Gray {
	bounds := img.Bounds()
	out := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			g := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			var v uint8
			if g.Y >= BinarizeThreshold {
				v = 255
			}
			out.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return out
}
