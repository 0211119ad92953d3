package fat32_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/dargueta/fatvol"
	"github.com/dargueta/fatvol/drivers/fat32"
	dt "github.com/dargueta/fatvol/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntries(t *testing.T) {
	spec := dt.DefaultImageSpec()
	spec.Entries = map[uint32]uint32{3: 4, 4: 0x0ffffff8}
	image := dt.BuildImage(t, spec)
	dt.SetFATEntry(t, image, spec, 1, 4, 0)
	volume := openImage(t, image, fatvol.OpenFlagsDefault)

	records, err := volume.Entries(2, 4)
	require.NoError(t, err)
	assert.Equal(t, []fat32.EntryRecord{
		{Cluster: 2, Raw: "0x0ffffff8", Kind: "end-of-chain", Next: 0, Mirrored: true},
		{Cluster: 3, Raw: "0x00000004", Kind: "allocated", Next: 4, Mirrored: true},
		{Cluster: 4, Raw: "0x0ffffff8", Kind: "end-of-chain", Next: 0, Mirrored: false},
		{Cluster: 5, Raw: "0x00000000", Kind: "free", Next: 0, Mirrored: true},
	}, records)
}

func TestEntriesClipped(t *testing.T) {
	volume := openImage(t, dt.BuildImage(t, dt.DefaultImageSpec()), fatvol.OpenFlagsDefault)

	records, err := volume.Entries(1020, 100)
	require.NoError(t, err)
	assert.Len(t, records, 4)

	records, err = volume.Entries(1024, 10)
	require.NoError(t, err)
	assert.Empty(t, records)

	_, err = volume.Entries(1025, 1)
	assert.True(t, errors.Is(err, fatvol.ErrArgumentOutOfRange))
}

func TestEntriesCSVRoundTrip(t *testing.T) {
	spec := dt.DefaultImageSpec()
	spec.Entries = map[uint32]uint32{3: 0x0ffffff7}
	volume := openImage(t, dt.BuildImage(t, spec), fatvol.OpenFlagsDefault)

	records, err := volume.Entries(0, 5)
	require.NoError(t, err)

	buffer := bytes.Buffer{}
	require.NoError(t, fat32.WriteEntriesCSV(&buffer, records))

	lines := strings.Split(strings.TrimSpace(buffer.String()), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "cluster,raw,kind,next,mirrored", lines[0])
	assert.Equal(t, "3,0x0ffffff7,defective,0,true", lines[4])

	parsed, err := fat32.ReadEntriesCSV(&buffer)
	require.NoError(t, err)
	assert.Equal(t, records, parsed)
}
