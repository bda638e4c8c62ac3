// Package storage uploads images to durable object storage and returns public URLs.
package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
)

var (
	// ErrUpload wraps any failure reported by the storage provider.
	ErrUpload = errors.New("storage: upload failed")
	// ErrUnsupported is returned when a provider cannot apply an image transformation.
	ErrUnsupported = errors.New("storage: transformation not supported")
)

// ImageStore is the object-storage surface the creation pipeline needs.
type ImageStore interface {
	// UploadDataURI stores a data:image/... URI and returns its secure URL.
	UploadDataURI(ctx context.Context, dataURI string) (string, error)
	// RemoveBackground stores an image with the background stripped.
	RemoveBackground(ctx context.Context, filename string, image io.Reader) (string, error)
	// RemoveObject stores an image and returns a URL rendering it without the named object.
	RemoveObject(ctx context.Context, filename string, image io.Reader, object string) (string, error)
}

// PNGDataURI encodes raw PNG bytes as a data URI.
func PNGDataURI(img []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(img)
}
