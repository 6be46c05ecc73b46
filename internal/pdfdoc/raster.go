package pdfdoc

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// FitWidth scales img down to the given width, preserving aspect
// ratio. Images already at or below the width, or a non-positive
// width, are returned unchanged; pages are never upscaled.
func FitWidth(img image.Image, width int) image.Image {
	bounds := img.Bounds()
	if width <= 0 || bounds.Dx() <= width {
		return img
	}

	height := int(math.Round(float64(width) * float64(bounds.Dy()) / float64(bounds.Dx())))
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}
