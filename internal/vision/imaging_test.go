package vision

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestImage(t *testing.T, name string, encode func(*bytes.Buffer, image.Image) error) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 32), G: uint8(y * 32), A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, encode(&buf, img))

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestEncodeJPEGBase64(t *testing.T) {
	cases := []struct {
		name   string
		file   string
		encode func(*bytes.Buffer, image.Image) error
	}{
		{"png input", "in.png", func(buf *bytes.Buffer, img image.Image) error {
			return png.Encode(buf, img)
		}},
		{"jpeg input", "in.jpg", func(buf *bytes.Buffer, img image.Image) error {
			return jpeg.Encode(buf, img, nil)
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeTestImage(t, tc.file, tc.encode)

			encoded, err := EncodeJPEGBase64(path)
			require.NoError(t, err)

			raw, err := base64.StdEncoding.DecodeString(encoded)
			require.NoError(t, err)

			decoded, err := jpeg.Decode(bytes.NewReader(raw))
			require.NoError(t, err)
			assert.Equal(t, modelImageSize, decoded.Bounds().Dx())
			assert.Equal(t, modelImageSize, decoded.Bounds().Dy())
		})
	}
}

func TestEncodeJPEGBase64Errors(t *testing.T) {
	_, err := EncodeJPEGBase64(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)

	garbage := filepath.Join(t.TempDir(), "garbage.png")
	require.NoError(t, os.WriteFile(garbage, []byte("not an image"), 0o644))
	_, err = EncodeJPEGBase64(garbage)
	assert.Error(t, err)
}
