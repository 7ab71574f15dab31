package imaging

import (
	"bytes"
	"fmt"
	"image"
	"math/rand/v2"

	"github.com/disintegration/imaging"
)

const (
	// noiseSigma is the standard deviation of the additive sensor noise.
	noiseSigma = 15.0

	// compressionQuality is the JPEG quality used to simulate low-bitrate capture.
	compressionQuality = 35
)

// gaussianNoise adds independent N(0, sigma²) noise to every color channel of
// every pixel, clipping to [0, 255]. Alpha is left untouched.
func gaussianNoise(img image.Image, sigma float64, rng *rand.Rand) *image.NRGBA {
	dst := imaging.Clone(img)
	for i := 0; i < len(dst.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			v := float64(dst.Pix[i+c]) + rng.NormFloat64()*sigma
			dst.Pix[i+c] = uint8(max(0, min(v, 255)))
		}
	}
	return dst
}

// jpegRoundTrip encodes img as JPEG at the given quality and decodes it again,
// leaving the block and chroma artifacts of a cheap video encoder.
func jpegRoundTrip(img image.Image, quality int) (*image.NRGBA, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	decoded, err := imaging.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("failed to decode jpeg: %w", err)
	}
	return imaging.Clone(decoded), nil
}
