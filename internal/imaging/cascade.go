package imaging

import (
	"errors"
	"fmt"
	"image"
	"math/rand/v2"
)

// CascadeVersion identifies the operator list returned by DefaultCascade.
// It must change whenever an operator is added, removed, reordered or
// reparameterized.
const CascadeVersion = "rqrr-v1"

// ErrSpatialChange is returned by Apply when an operator's output does not
// have the same width and height as its input.
var ErrSpatialChange = errors.New("operator changed image dimensions")

// OperatorKind identifies one operator of the closed cascade.
type OperatorKind int

// Operator kinds in cascade order.
const (
	AdaptiveThreshold       OperatorKind = iota // local mean threshold, medium window
	AdaptiveThresholdFine                       // local mean threshold, small window
	AdaptiveThresholdCoarse                     // local mean threshold, large window
	CLAHE                                       // contrast-limited adaptive histogram equalization
	BlurThreshold                               // gaussian blur, then local threshold
	StretchThreshold                            // min/max contrast stretch, then local threshold
	ColorDifference                             // max(R,G) - B channel
	Otsu                                        // global histogram threshold
	GaussianNoise                               // additive sensor noise
	JPEGCompression                             // lossy encode/decode

	numKinds
)

// Operator transforms one image into another of identical dimensions.
// Stochastic operators draw from rng; deterministic ones ignore it.
type Operator func(img image.Image, rng *rand.Rand) (image.Image, error)

// Transform is one named entry of the cascade.
type Transform struct {
	Kind  OperatorKind
	Tag   string
	Apply Operator
}

type operatorEntry struct {
	tag   string
	apply Operator
}

// dispatch is the operator table, indexed by kind. Window radii and bias
// constants match the decoder's coarse/medium/fine retry ladder.
var dispatch = [numKinds]operatorEntry{
	AdaptiveThreshold: {"at15", grayOperator(func(g *image.Gray) *image.Gray {
		return adaptiveThreshold(g, 15, 8)
	})},
	AdaptiveThresholdFine: {"at11", grayOperator(func(g *image.Gray) *image.Gray {
		return adaptiveThreshold(g, 11, 6)
	})},
	AdaptiveThresholdCoarse: {"at21", grayOperator(func(g *image.Gray) *image.Gray {
		return adaptiveThreshold(g, 21, 10)
	})},
	CLAHE: {"clahe", grayOperator(clahe)},
	BlurThreshold: {"blur_at", grayOperator(func(g *image.Gray) *image.Gray {
		return adaptiveThreshold(gaussianBlur(g), 15, 8)
	})},
	StretchThreshold: {"stretch_at", grayOperator(func(g *image.Gray) *image.Gray {
		return adaptiveThreshold(contrastStretch(g), 15, 8)
	})},
	ColorDifference: {"yellow", func(img image.Image, _ *rand.Rand) (image.Image, error) {
		return colorDifference(img), nil
	}},
	Otsu: {"otsu", grayOperator(otsuThreshold)},
	GaussianNoise: {"noise15", func(img image.Image, rng *rand.Rand) (image.Image, error) {
		return gaussianNoise(img, noiseSigma, rng), nil
	}},
	JPEGCompression: {"jpeg35", func(img image.Image, _ *rand.Rand) (image.Image, error) {
		return jpegRoundTrip(img, compressionQuality)
	}},
}

// grayOperator lifts a gray-plane function into an Operator that accepts any
// image and returns the canonical three-channel representation.
func grayOperator(f func(*image.Gray) *image.Gray) Operator {
	return func(img image.Image, _ *rand.Rand) (image.Image, error) {
		return grayToNRGBA(f(toGray(img))), nil
	}
}

// Valid reports whether k is one of the cascade's kinds.
func (k OperatorKind) Valid() bool {
	return k >= 0 && k < numKinds
}

// Tag returns the short name used in provenance names, e.g. "at15".
func (k OperatorKind) Tag() string {
	if !k.Valid() {
		return fmt.Sprintf("OperatorKind(%d)", int(k))
	}
	return dispatch[k].tag
}

func (k OperatorKind) String() string {
	return k.Tag()
}

// Kinds returns every operator kind in cascade order.
func Kinds() []OperatorKind {
	kinds := make([]OperatorKind, 0, numKinds)
	for k := OperatorKind(0); k < numKinds; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// ParseKind resolves a tag such as "clahe" to its kind.
func ParseKind(tag string) (OperatorKind, error) {
	for _, k := range Kinds() {
		if dispatch[k].tag == tag {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown operator tag: %s", tag)
}

// DefaultCascade returns the full cascade in its declared order.
func DefaultCascade() []Transform {
	cascade := make([]Transform, 0, numKinds)
	for _, k := range Kinds() {
		cascade = append(cascade, Transform{Kind: k, Tag: dispatch[k].tag, Apply: dispatch[k].apply})
	}
	return cascade
}

// Apply runs one transform on img and checks the non-spatial invariant.
//
// A panicking operator is reported as an error so a single bad (image,
// operator) combination cannot take down a batch. A nil rng is replaced with
// a fixed-seed generator.
//
// # Errors
//
//   - Returns the operator's own error, wrapped with its tag
//   - Returns an error if the operator panics or returns no image
//   - Returns ErrSpatialChange if the output size differs from the input
func Apply(t Transform, img image.Image, rng *rand.Rand) (out image.Image, err error) {
	if rng == nil {
		rng = rand.New(rand.NewPCG(0, 0))
	}

	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("operator %s panicked: %v", t.Tag, r)
		}
	}()

	out, err = t.Apply(img, rng)
	if err != nil {
		return nil, fmt.Errorf("operator %s failed: %w", t.Tag, err)
	}
	if out == nil {
		return nil, fmt.Errorf("operator %s returned no image", t.Tag)
	}

	in, got := Dimensions(img), Dimensions(out)
	if in != got {
		return nil, fmt.Errorf("%w: %s turned %dx%d into %dx%d",
			ErrSpatialChange, t.Tag, in.Width, in.Height, got.Width, got.Height)
	}
	return out, nil
}
