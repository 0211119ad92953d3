package compression_test

import (
	"bytes"
	"testing"

	c "github.com/dargueta/fatvol/utilities/compression"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageRoundTrip(t *testing.T) {
	image := make([]byte, 64*512)
	copy(image[510:], []byte{0x55, 0xaa})
	copy(image[32*512:], []byte{0xf8, 0xff, 0xff, 0x0f, 0xff, 0xff, 0xff, 0x0f})

	compressed := bytes.Buffer{}
	_, err := c.CompressImage(bytes.NewReader(image), &compressed)
	require.NoError(t, err, "compression failed")
	assert.Less(t, compressed.Len(), len(image), "compressed image isn't smaller")

	decompressed, err := c.DecompressImageToBytes(bytes.NewReader(compressed.Bytes()))
	require.NoError(t, err, "decompression failed")
	assert.Equal(t, image, decompressed)
}

func TestDecompressImageRejectsNonGzip(t *testing.T) {
	_, err := c.DecompressImageToBytes(bytes.NewReader([]byte("not a gzip stream")))
	assert.Error(t, err)
}
