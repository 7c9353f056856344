// Package media holds the per-photo primitives the attachment engine
// drives: compress a capture to a quality profile, upload the result
// to the object store, and delete a superseded object.
package media

import (
	"context"
	"fmt"

	"github.com/openrelief/fieldsync/internal/models"
)

// Profile is a compression target for one quality tier.
type Profile struct {
	Quality     models.MediaQuality
	JPEGQuality int
}

var (
	// ProfileLow is the cheap rendition pushed over poor links.
	ProfileLow = Profile{Quality: models.QualityLow, JPEGQuality: 40}
	// ProfileHigh is the full-fidelity rendition.
	ProfileHigh = Profile{Quality: models.QualityHigh, JPEGQuality: 85}
)

// Pipeline is the contract the attachment engine consumes. Upload is
// idempotent by object key; repeating an interrupted upload overwrites
// the same object.
type Pipeline interface {
	Compress(ctx context.Context, localPath string, profile Profile) (string, error)
	Upload(ctx context.Context, localPath, objectKey string) (locator string, err error)
	Delete(ctx context.Context, objectKey string) error
}

// ObjectKey names an attachment rendition in the object store.
func ObjectKey(recordID string, index int, quality models.MediaQuality) string {
	return fmt.Sprintf("%s_%d_%s.jpg", recordID, index, quality)
}
