// Package blob fronts the managed object storage bucket the service uploads
// audit files and rendered images to.
package blob

import (
	"context"
	"errors"
)

// Sentinel errors for object storage failures.
var (
	ErrStorageUnreachable = errors.New("object storage unreachable")
	ErrUploadFailed       = errors.New("object storage upload failed")
)

// Bucket is the interface for blob upload and public URL issuance.
type Bucket interface {
	// Upload stores data under objectName and returns the object's public URL.
	Upload(ctx context.Context, objectName, contentType string, data []byte) (string, error)
	Ready(ctx context.Context) error
}
