package imaging

import (
	"image"
	"math"
)

// claheTiles and claheClip configure contrast-limited adaptive histogram
// equalization: a 4x4 tile grid with a clip limit of 2.0.
const (
	claheTiles = 4
	claheClip  = 2.0
)

// clahe applies contrast-limited adaptive histogram equalization.
//
// # Algorithm
//
//  1. Pad the plane by reflection (without repeating the border pixel) up to
//     a multiple of claheTiles and split it into a claheTiles x claheTiles
//     grid. Every tile has the same area, so a uniform plane gets the same
//     lookup table in every tile.
//  2. Build a histogram per tile and clip every bin at
//     max(1, clip*tileArea/256). The clipped excess is redistributed evenly,
//     with the remainder spread across bins at a fixed stride.
//  3. Turn each clipped histogram into an equalization lookup table.
//  4. Map every pixel by bilinearly interpolating the lookup tables of the
//     four nearest tile centers, which avoids visible tile seams.
func clahe(gray *image.Gray) *image.Gray {
	width, height := gray.Bounds().Dx(), gray.Bounds().Dy()
	result := image.NewGray(image.Rect(0, 0, width, height))
	if width == 0 || height == 0 {
		return result
	}

	tileW := (width + claheTiles - 1) / claheTiles
	tileH := (height + claheTiles - 1) / claheTiles
	nx, ny := claheTiles, claheTiles

	luts := make([][256]uint8, nx*ny)
	for ty := 0; ty < ny; ty++ {
		for tx := 0; tx < nx; tx++ {
			rect := image.Rect(tx*tileW, ty*tileH, (tx+1)*tileW, (ty+1)*tileH)
			luts[ty*nx+tx] = tileLUT(gray, rect)
		}
	}

	for y := 0; y < height; y++ {
		fy := (float64(y)+0.5)/float64(tileH) - 0.5
		ty1 := int(math.Floor(fy))
		ya := fy - float64(ty1)
		ty2 := clamp(ty1+1, 0, ny-1)
		ty1 = clamp(ty1, 0, ny-1)

		for x := 0; x < width; x++ {
			fx := (float64(x)+0.5)/float64(tileW) - 0.5
			tx1 := int(math.Floor(fx))
			xa := fx - float64(tx1)
			tx2 := clamp(tx1+1, 0, nx-1)
			tx1 = clamp(tx1, 0, nx-1)

			v := gray.Pix[y*gray.Stride+x]
			top := (1-xa)*float64(luts[ty1*nx+tx1][v]) + xa*float64(luts[ty1*nx+tx2][v])
			bottom := (1-xa)*float64(luts[ty2*nx+tx1][v]) + xa*float64(luts[ty2*nx+tx2][v])
			out := math.Round((1-ya)*top + ya*bottom)
			result.Pix[y*result.Stride+x] = uint8(clamp(int(out), 0, 255))
		}
	}
	return result
}

// tileLUT builds the clipped equalization lookup table for one tile of the
// padded plane. Coordinates past the image edge are reflected back in.
func tileLUT(gray *image.Gray, rect image.Rectangle) [256]uint8 {
	width, height := gray.Bounds().Dx(), gray.Bounds().Dy()

	var hist [256]int
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		row := reflect101(y, height) * gray.Stride
		for x := rect.Min.X; x < rect.Max.X; x++ {
			hist[gray.Pix[row+reflect101(x, width)]]++
		}
	}
	area := rect.Dx() * rect.Dy()

	limit := max(1, int(claheClip*float64(area)/256))
	excess := 0
	for i := range hist {
		if hist[i] > limit {
			excess += hist[i] - limit
			hist[i] = limit
		}
	}

	batch := excess / 256
	residual := excess - batch*256
	for i := range hist {
		hist[i] += batch
	}
	if residual > 0 {
		step := max(256/residual, 1)
		for i := 0; i < 256 && residual > 0; i += step {
			hist[i]++
			residual--
		}
	}

	var lut [256]uint8
	scale := 255.0 / float64(area)
	cdf := 0
	for i := range hist {
		cdf += hist[i]
		lut[i] = uint8(clamp(int(math.Round(float64(cdf)*scale)), 0, 255))
	}
	return lut
}

// reflect101 maps i into [0, n) by mirroring about the edge pixels without
// repeating them: for n=5, indices 5, 6, 7 map to 3, 2, 1.
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * (n - 1)
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - i
	}
	return i
}
