package imaging

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// luminance converts 8-bit RGB to gray using ITU-R BT.601 weights
// (0.299*R + 0.587*G + 0.114*B), rounded to the nearest integer.
func luminance(r, g, b uint8) uint8 {
	return uint8(math.Round(0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)))
}

// toGray converts any image to an 8-bit gray plane with origin (0,0).
func toGray(img image.Image) *image.Gray {
	src := imaging.Clone(img)
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	gray := image.NewGray(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*src.Stride + x*4
			gray.Pix[y*gray.Stride+x] = luminance(src.Pix[i], src.Pix[i+1], src.Pix[i+2])
		}
	}
	return gray
}

// grayToNRGBA replicates a gray plane into three opaque color channels.
// This is the canonical output representation of every gray operator.
func grayToNRGBA(gray *image.Gray) *image.NRGBA {
	w, h := gray.Bounds().Dx(), gray.Bounds().Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := gray.Pix[y*gray.Stride+x]
			i := y*dst.Stride + x*4
			dst.Pix[i] = v
			dst.Pix[i+1] = v
			dst.Pix[i+2] = v
			dst.Pix[i+3] = 0xFF
		}
	}
	return dst
}

// colorDifference computes the channel max(R, G) - B, clipped to [0, 255].
//
// Yellow and orange targets printed on light backgrounds almost vanish in a
// luminance image but stand out strongly here. Pixels that are fully
// transparent, and gray pixels (R=G=B), map to black.
func colorDifference(img image.Image) *image.NRGBA {
	src := imaging.Clone(img)
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	diff := image.NewGray(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c, ok := colorful.MakeColor(src.NRGBAAt(x, y))
			if !ok {
				continue
			}
			r, g, b := c.RGB255()
			v := int(max(r, g)) - int(b)
			diff.Pix[y*diff.Stride+x] = uint8(clamp(v, 0, 255))
		}
	}
	return grayToNRGBA(diff)
}
