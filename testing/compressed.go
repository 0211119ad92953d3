package testing

import (
	"bytes"
	_ "embed"
	"testing"

	"github.com/dargueta/fatvol"
	"github.com/dargueta/fatvol/utilities/compression"
	"github.com/stretchr/testify/require"
)

// FormattedVolumeImage is a compressed 1048-sector FAT32 volume with 512-byte
// sectors, label "FIXTURE" and volume ID DEADBEEF. The root directory is an
// empty single cluster, and clusters 3 and 4 form one chain whose first cluster
// starts with "hello from cluster 3\n". Open it with [LoadDiskImage].
//
//go:embed testdata/formatted-volume.img.rle.gz
var FormattedVolumeImage []byte

// CompressImage compresses an image into the `*.rle.gz` format.
func CompressImage(t *testing.T, image []byte) []byte {
	buffer := bytes.Buffer{}
	_, err := compression.CompressImage(bytes.NewReader(image), &buffer)
	require.NoError(t, err, "failed to compress image")
	return buffer.Bytes()
}

// LoadDiskImage takes a compressed disk image and returns a data source over
// the uncompressed data.
//
// The image must decompress to exactly `sectorSize * totalSectors` bytes.
func LoadDiskImage(
	t *testing.T, compressedImageBytes []byte, sectorSize, totalSectors uint,
) fatvol.DataSource {
	require.Greater(t, len(compressedImageBytes), 0, "compressed image is empty")

	imageBytes, err := compression.DecompressImageToBytes(bytes.NewReader(compressedImageBytes))
	require.NoError(t, err)

	require.Equal(
		t,
		totalSectors*sectorSize,
		uint(len(imageBytes)),
		"uncompressed image is wrong size",
	)
	return fatvol.NewMemorySource(imageBytes)
}
