// Package imaging provides the pixel-level degradation cascade used to augment
// detector training images.
//
// The cascade mirrors the preprocessing a barcode-style decoder runs before it
// gives up on a frame: several local binarizations, contrast equalization, a
// color-difference channel, a global threshold and two capture degradations
// (sensor noise and low-quality JPEG). Training the detector on these variants
// teaches it to find targets under exactly the conditions the decoder will see.
//
// # Non-spatial Invariant
//
// Every operator changes pixel values but never pixel positions. An operator
// applied to a W×H image returns a W×H image, so bounding-box annotations of
// the source remain valid for the output byte-for-byte. [Apply] enforces this
// and reports [ErrSpatialChange] for any operator that breaks it.
//
// # Closed Operator Set
//
// Operators are identified by [OperatorKind]. The set is closed and versioned
// by [CascadeVersion]; [DefaultCascade] returns it in its fixed declared order.
// Adding an operator means adding a kind, a tag and a dispatch table entry,
// then bumping the version.
//
// # Color Representation
//
// Gray operators compute ITU-R BT.601 luminance and return an *image.NRGBA
// with R=G=B and opaque alpha, so every output has the same channel arity
// regardless of the operator that produced it.
//
// # Randomness
//
// Only the noise operator is stochastic. It draws from the *rand.Rand passed
// to [Apply]; there is no package-level random state.
package imaging
