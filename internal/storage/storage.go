// Package storage keeps uploaded club images outside the database.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ErrNotImage is returned by NewImage when the content is not an image.
var ErrNotImage = errors.New("storage: content is not an image")

// Image is an upload whose type has been sniffed from its bytes, not taken
// from the client's filename or Content-Type header.
type Image struct {
	Data        []byte
	ContentType string // e.g. "image/png"
	Extension   string // e.g. ".png"
}

// NewImage sniffs data and accepts it only if it is an image.
func NewImage(data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty upload", ErrNotImage)
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, fmt.Errorf("%w: detected %s", ErrNotImage, mt.String())
	}
	return &Image{
		Data:        data,
		ContentType: mt.String(),
		Extension:   mt.Extension(),
	}, nil
}

// Object identifies a stored image.
type Object struct {
	Key string // bucket-relative object name, used to delete it
	URL string // public URL saved on the club
}

// ImageStore stores and removes images. Implementations must be safe for
// concurrent use.
type ImageStore interface {
	Put(ctx context.Context, prefix string, img *Image) (Object, error)
	Delete(ctx context.Context, key string) error
}
