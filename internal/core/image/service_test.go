package image

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	"recipe-finder/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestValidatePNG(t *testing.T) {
	s := NewService(0)

	up, err := s.Validate(pngBytes(t, 4, 3))
	require.NoError(t, err)
	assert.Equal(t, "image/png", up.MIMEType)
	assert.Equal(t, "png", up.Format)
	assert.Equal(t, 4, up.Width)
	assert.Equal(t, 3, up.Height)
	assert.Equal(t, DefaultMaxSizeBytes, s.MaxSizeBytes())
}

func TestValidateRejectsNonImage(t *testing.T) {
	s := NewService(0)

	_, err := s.Validate([]byte("%PDF-1.4 not an image"))
	assert.ErrorIs(t, err, common.ErrInvalidImageFormat)

	_, err = s.Validate(nil)
	assert.ErrorIs(t, err, common.ErrEmptyImage)
}

func TestValidateRejectsOversized(t *testing.T) {
	data := pngBytes(t, 8, 8)
	s := NewService(int64(len(data) - 1))

	_, err := s.Validate(data)
	assert.ErrorIs(t, err, common.ErrInvalidImageSize)
}

func TestValidateRejectsTruncatedImage(t *testing.T) {
	data := pngBytes(t, 8, 8)

	_, err := NewService(0).Validate(data[:20])
	assert.ErrorIs(t, err, common.ErrInvalidImageFormat)
}

func TestDecodeBase64(t *testing.T) {
	s := NewService(0)
	raw := pngBytes(t, 2, 2)
	encoded := base64.StdEncoding.EncodeToString(raw)

	up, err := s.DecodeBase64(encoded)
	require.NoError(t, err)
	assert.Equal(t, raw, up.Data)

	up, err = s.DecodeBase64("data:image/png;base64," + encoded)
	require.NoError(t, err)
	assert.Equal(t, "png", up.Format)
}

func TestDecodeBase64Errors(t *testing.T) {
	s := NewService(0)

	_, err := s.DecodeBase64("   ")
	assert.ErrorIs(t, err, common.ErrEmptyImage)

	_, err = s.DecodeBase64("data:text/plain;base64,aGVsbG8=")
	assert.ErrorIs(t, err, common.ErrInvalidImageFormat)

	_, err = s.DecodeBase64("!!!not-base64!!!")
	assert.ErrorIs(t, err, common.ErrInvalidImageFormat)
}

func TestDecodeBase64RejectsOversizedBeforeDecoding(t *testing.T) {
	s := NewService(10)
	big := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0xff}, 64))

	_, err := s.DecodeBase64(big)
	assert.ErrorIs(t, err, common.ErrInvalidImageSize)
}
