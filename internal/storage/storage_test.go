package storage

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/college-board/internal/config"
)

// pngHeader is the 8-byte PNG signature followed by the start of an IHDR chunk.
var pngHeader = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
}

func TestNewImage(t *testing.T) {
	img, err := NewImage(pngHeader)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, ".png", img.Extension)

	gif := []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00")
	img, err = NewImage(gif)
	require.NoError(t, err)
	assert.Equal(t, "image/gif", img.ContentType)
}

func TestNewImage_RejectsNonImages(t *testing.T) {
	tests := map[string][]byte{
		"empty": nil,
		"text":  []byte("just some text, definitely not a picture"),
		"pdf":   []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n"),
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewImage(data)
			assert.ErrorIs(t, err, ErrNotImage)
		})
	}
}

func TestObjectKey(t *testing.T) {
	s := &MinIOStore{now: func() time.Time { return time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC) }}

	key := s.objectKey("clubs", ".png")
	assert.Regexp(t, regexp.MustCompile(`^clubs/2026/03/[0-9a-f-]{36}\.png$`), key)
	assert.NotEqual(t, key, s.objectKey("clubs", ".png"))
}

func TestPublicBaseURL(t *testing.T) {
	assert.Equal(t, "http://localhost:9000", publicBaseURL(config.MinIO{Endpoint: "localhost:9000"}))
	assert.Equal(t, "https://s3.example.com", publicBaseURL(config.MinIO{Endpoint: "s3.example.com", UseSSL: true}))
	assert.Equal(t, "https://cdn.example.com", publicBaseURL(config.MinIO{
		Endpoint: "minio:9000", PublicURL: "https://cdn.example.com/",
	}))
}
