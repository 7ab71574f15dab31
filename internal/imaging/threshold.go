package imaging

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/histogram"
)

// adaptiveThreshold binarizes a gray plane against its local mean.
//
// The window is (2*radius+1) pixels square. A pixel becomes white (255) when
// its value exceeds the rounded window mean minus c, otherwise black (0).
// Windows that extend past the border see replicated edge pixels.
//
// The mean is computed with two separable sliding sums, so cost is
// O(width*height*window) rather than O(width*height*window²).
func adaptiveThreshold(gray *image.Gray, radius, c int) *image.Gray {
	width, height := gray.Bounds().Dx(), gray.Bounds().Dy()
	window := 2*radius + 1
	area := float64(window * window)

	rows := make([]int, width*height)
	for y := 0; y < height; y++ {
		line := gray.Pix[y*gray.Stride : y*gray.Stride+width]
		for x := 0; x < width; x++ {
			var sum int
			for k := -radius; k <= radius; k++ {
				sum += int(line[clamp(x+k, 0, width-1)])
			}
			rows[y*width+x] = sum
		}
	}

	result := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var sum int
			for k := -radius; k <= radius; k++ {
				sum += rows[clamp(y+k, 0, height-1)*width+x]
			}
			mean := int(math.Round(float64(sum) / area))
			if int(gray.Pix[y*gray.Stride+x])-mean > -c {
				result.Pix[y*result.Stride+x] = 0xFF
			}
		}
	}
	return result
}

// otsuLevel returns the gray level that maximizes the between-class variance
// of the plane's intensity histogram. Pixels strictly above the level form
// the foreground class. Ties keep the lowest level.
func otsuLevel(gray *image.Gray) uint8 {
	bins := histogram.NewRGBAHistogram(gray).R.Bins

	var total int
	var sum float64
	for i, n := range bins {
		total += n
		sum += float64(i * n)
	}

	var (
		weightB int
		sumB    float64
		best    float64
		level   int
	)
	for t, n := range bins {
		weightB += n
		if weightB == 0 {
			continue
		}
		weightF := total - weightB
		if weightF == 0 {
			break
		}
		sumB += float64(t * n)
		meanB := sumB / float64(weightB)
		meanF := (sum - sumB) / float64(weightF)
		between := float64(weightB) * float64(weightF) * (meanB - meanF) * (meanB - meanF)
		if between > best {
			best = between
			level = t
		}
	}
	return uint8(level)
}

// otsuThreshold binarizes a gray plane at its Otsu level.
func otsuThreshold(gray *image.Gray) *image.Gray {
	level := otsuLevel(gray)
	result := image.NewGray(gray.Bounds())
	for i, v := range gray.Pix {
		if v > level {
			result.Pix[i] = 0xFF
		}
	}
	return result
}

// contrastStretch linearly maps the plane's [min, max] intensity range onto
// [0, 255]. When min == max there is no range to stretch and the plane is
// returned as an unmodified copy.
func contrastStretch(gray *image.Gray) *image.Gray {
	lo, hi := uint8(0xFF), uint8(0)
	for _, v := range gray.Pix {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	result := image.NewGray(gray.Bounds())
	if len(gray.Pix) == 0 || lo == hi {
		copy(result.Pix, gray.Pix)
		return result
	}

	span := int(hi - lo)
	for i, v := range gray.Pix {
		result.Pix[i] = uint8(int(v-lo) * 255 / span)
	}
	return result
}
