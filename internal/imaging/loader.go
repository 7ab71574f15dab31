package imaging

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// ImageExtensions lists the file extensions recognized as source images.
// Matching is case-insensitive.
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".webp", ".tif", ".tiff"}

// IsImage reports whether path has one of the recognized image extensions.
func IsImage(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range ImageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Load decodes the image stored at path.
//
// PNG, JPEG, GIF, BMP and TIFF are decoded through disintegration/imaging;
// WebP through golang.org/x/image/webp. EXIF orientation is deliberately not
// applied: pixels are returned in stored order so annotations made against the
// stored frame keep lining up.
//
// # Errors
//
//   - Returns error if the file does not exist or cannot be read
//   - Returns error if the file is not a decodable image
func Load(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// Save encodes img to path. The format is chosen from the extension; JPEG
// output uses the given quality (1-100).
func Save(img image.Image, path string, quality int) error {
	if err := imaging.Save(img, path, imaging.JPEGQuality(quality)); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}

// DimensionsResult contains the width and height of an image.
type DimensionsResult struct {
	Width  int
	Height int
}

// Dimensions returns the size of img.
func Dimensions(img image.Image) DimensionsResult {
	b := img.Bounds()
	return DimensionsResult{Width: b.Dx(), Height: b.Dy()}
}
