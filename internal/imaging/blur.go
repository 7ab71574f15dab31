package imaging

import (
	"image"
	"math"
)

// gaussianBlur applies a 5x5 Gaussian blur to a gray plane.
//
// Uses a standard 5x5 Gaussian kernel with sigma ≈ 1.1:
//
//	1  4  7  4  1
//	4 16 26 16  4
//	7 26 41 26  7
//	4 16 26 16  4
//	1  4  7  4  1
//
// Total kernel sum = 273, used for normalization.
// Border pixels use clamped (replicated) edge values.
func gaussianBlur(gray *image.Gray) *image.Gray {
	kernel := [5][5]float64{
		{1, 4, 7, 4, 1},
		{4, 16, 26, 16, 4},
		{7, 26, 41, 26, 7},
		{4, 16, 26, 16, 4},
		{1, 4, 7, 4, 1},
	}
	kernelSum := 273.0

	width, height := gray.Bounds().Dx(), gray.Bounds().Dy()
	result := image.NewGray(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var sum float64
			for ky := -2; ky <= 2; ky++ {
				for kx := -2; kx <= 2; kx++ {
					py := clamp(y+ky, 0, height-1)
					px := clamp(x+kx, 0, width-1)
					sum += float64(gray.Pix[py*gray.Stride+px]) * kernel[ky+2][kx+2]
				}
			}
			result.Pix[y*result.Stride+x] = uint8(math.Round(sum / kernelSum))
		}
	}
	return result
}

// clamp constrains an integer value to the range [lo, hi].
// Used for boundary handling in window operations.
func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
