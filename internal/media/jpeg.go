package media

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"

	_ "image/png" // captures occasionally arrive as PNG screenshots
)

// JPEGCompressor re-encodes a capture at a profile's JPEG quality and
// persists the result next to the original. Captures are already
// camera-sized; dropping encode quality is what actually shrinks the
// payload for constrained links.
type JPEGCompressor struct{}

func (JPEGCompressor) Compress(_ context.Context, localPath string, profile Profile) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open capture %s: %w", localPath, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("failed to decode capture %s: %w", localPath, err)
	}

	ext := filepath.Ext(localPath)
	out := strings.TrimSuffix(localPath, ext) + "." + string(profile.Quality) + ".jpg"
	dst, err := os.Create(out)
	if err != nil {
		return "", fmt.Errorf("failed to create compressed copy: %w", err)
	}
	defer dst.Close()

	if err := jpeg.Encode(dst, img, &jpeg.Options{Quality: profile.JPEGQuality}); err != nil {
		os.Remove(out)
		return "", fmt.Errorf("failed to encode compressed copy: %w", err)
	}
	return out, nil
}
