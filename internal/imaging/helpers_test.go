package imaging

import (
	"image"
	"image/color"
)

// createInMemoryImage creates an in-memory test image of a single color
func createInMemoryImage(width, height int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createPatternImage creates an image with different colors in each quadrant
func createPatternImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.Color
			if x < width/2 && y < height/2 {
				c = color.RGBA{255, 0, 0, 255} // Red top-left
			} else if x >= width/2 && y < height/2 {
				c = color.RGBA{0, 255, 0, 255} // Green top-right
			} else if x < width/2 && y >= height/2 {
				c = color.RGBA{0, 0, 255, 255} // Blue bottom-left
			} else {
				c = color.RGBA{255, 255, 255, 255} // White bottom-right
			}
			img.Set(x, y, c)
		}
	}
	return img
}

// createGradientImage creates a horizontal gray ramp from lo to hi
func createGradientImage(width, height int, lo, hi uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := int(lo)
			if width > 1 {
				v += (int(hi) - int(lo)) * x / (width - 1)
			}
			img.SetGray(x, y, color.Gray{uint8(v)})
		}
	}
	return img
}

// createBimodalGray creates a gray plane whose left half is lo and right half is hi
func createBimodalGray(width, height int, lo, hi uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := lo
			if x >= width/2 {
				v = hi
			}
			img.SetGray(x, y, color.Gray{v})
		}
	}
	return img
}

// grayAt reads the red channel of an NRGBA-compatible image at (x, y)
func grayAt(img image.Image, x, y int) uint8 {
	r, _, _, _ := img.At(x, y).RGBA()
	return uint8(r >> 8)
}
