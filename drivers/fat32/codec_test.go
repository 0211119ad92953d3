package fat32_test

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/dargueta/fatvol"
	"github.com/dargueta/fatvol/drivers/fat32"
	dt "github.com/dargueta/fatvol/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomSector(t *testing.T, size int) []byte {
	data := make([]byte, size)
	_, err := rand.Read(data)
	require.NoError(t, err)
	return data
}

func TestDecodePartitionAreaPathsAgree(t *testing.T) {
	for i := 0; i < 16; i++ {
		data := randomSector(t, fat32.PartitionAreaSize)
		data[510] = 0x55
		data[511] = 0xaa

		explicit, err := fat32.DecodePartitionArea(data)
		require.NoError(t, err)

		generic := fat32.PartitionArea{}
		require.NoError(t, fat32.Unpack(data, &generic))

		assert.Equal(t, explicit, generic, "decoders disagree")
		assert.Equal(t, [2]byte{0x55, 0xaa}, explicit.SignatureWord.Value)
		assert.Equal(t, data[:446], explicit.MasterBootRecord.NotRestricted[:])
		assert.NoError(t, explicit.Validate())
	}
}

func TestDecodePartitionTable(t *testing.T) {
	data := []byte{
		0x80,       // boot indicator
		0x01,       // starting head
		0x01, 0x00, // starting sector/cylinder
		0x0c,       // FAT32 LBA
		0xfe,       // ending head
		0xff, 0xff, // ending sector/cylinder
		0x00, 0x08, 0x00, 0x00, // relative sector 2048
		0x00, 0x00, 0x10, 0x00, // 1 Mi sectors
	}

	entry, err := fat32.DecodePartitionTable(data)
	require.NoError(t, err)
	assert.EqualValues(t, 2048, entry.RelativeSector)
	assert.EqualValues(t, 0x100000, entry.TotalSectors)
	assert.EqualValues(t, 0x0001, entry.StartingSector)
	assert.True(t, entry.IsBootable())
	assert.True(t, entry.IsFAT32())
	assert.False(t, entry.IsEmpty())

	generic := fat32.PartitionTable{}
	require.NoError(t, fat32.Unpack(data, &generic))
	assert.Equal(t, entry, generic)
}

func TestDecodeSectorPathsAgree(t *testing.T) {
	bootData := randomSector(t, fat32.PartitionBootSectorSize)
	explicitPBS, err := fat32.DecodePartitionBootSector(bootData)
	require.NoError(t, err)
	genericPBS := fat32.PartitionBootSector{}
	require.NoError(t, fat32.Unpack(bootData, &genericPBS))
	assert.Equal(t, explicitPBS, genericPBS, "boot sector decoders disagree")

	infoData := randomSector(t, fat32.FsInfoSectorSize)
	explicitInfo, err := fat32.DecodeFsInfoSector(infoData)
	require.NoError(t, err)
	genericInfo := fat32.FsInfoSector{}
	require.NoError(t, fat32.Unpack(infoData, &genericInfo))
	assert.Equal(t, explicitInfo, genericInfo, "FS info decoders disagree")

	direntData := randomSector(t, fat32.DirectoryEntrySize)
	explicitDirent, err := fat32.DecodeDirectoryEntry(direntData)
	require.NoError(t, err)
	genericDirent := fat32.DirectoryEntryField{}
	require.NoError(t, fat32.Unpack(direntData, &genericDirent))
	assert.Equal(t, explicitDirent, genericDirent, "directory entry decoders disagree")
}

func TestDecodeBootSectorFields(t *testing.T) {
	data := make([]byte, fat32.PartitionBootSectorSize)
	data[0x15] = 0xf8
	binary.LittleEndian.PutUint16(data[0x2a:], 0x0000)
	data[0x40] = 0x80
	data[0x42] = 0x29
	data[0x1fe] = 0x55
	data[0x1ff] = 0xaa
	binary.LittleEndian.PutUint16(data[0x0b:], 512)
	binary.LittleEndian.PutUint32(data[0x24:], 0x01020304)
	copy(data[0x47:], "MY VOLUME  ")

	pbs, err := fat32.DecodePartitionBootSector(data)
	require.NoError(t, err)
	assert.EqualValues(t, 0xf8, pbs.MediumIdentifier)
	assert.EqualValues(t, 0, pbs.FSVersion)
	assert.EqualValues(t, 0x29, pbs.ExtendedBootRecordSignature)
	assert.EqualValues(t, 0x80, pbs.PhysicalDiskNumber)
	assert.Equal(t, [2]byte{0x55, 0xaa}, pbs.SignatureWord)
	assert.EqualValues(t, 512, pbs.SectorSize)
	assert.EqualValues(t, 0x01020304, pbs.SectorsPerFAT32)
	assert.Equal(t, "MY VOLUME  ", string(pbs.VolumeLabel[:]))
}

func TestPackRoundTrip(t *testing.T) {
	pbs := dt.NewBootSector(dt.DefaultImageSpec())
	data, err := fat32.Pack(&pbs)
	require.NoError(t, err)
	require.Len(t, data, fat32.PartitionBootSectorSize)

	decoded, err := fat32.DecodePartitionBootSector(data)
	require.NoError(t, err)
	assert.Equal(t, pbs, decoded)
}

func TestDecodeWrongLength(t *testing.T) {
	tests := []struct {
		Name   string
		Decode func([]byte) error
		Size   int
	}{
		{
			"partition area",
			func(b []byte) error { _, err := fat32.DecodePartitionArea(b); return err },
			fat32.PartitionAreaSize,
		},
		{
			"boot sector",
			func(b []byte) error { _, err := fat32.DecodePartitionBootSector(b); return err },
			fat32.PartitionBootSectorSize,
		},
		{
			"fs info",
			func(b []byte) error { _, err := fat32.DecodeFsInfoSector(b); return err },
			fat32.FsInfoSectorSize,
		},
		{
			"directory entry",
			func(b []byte) error { _, err := fat32.DecodeDirectoryEntry(b); return err },
			fat32.DirectoryEntrySize,
		},
		{
			"generic boot sector",
			func(b []byte) error { return fat32.Unpack(b, &fat32.PartitionBootSector{}) },
			fat32.PartitionBootSectorSize,
		},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			for _, size := range []int{0, test.Size - 1, test.Size + 1} {
				err := test.Decode(make([]byte, size))
				require.Errorf(t, err, "decoding %d bytes should fail", size)
				assert.True(
					t,
					errors.Is(err, fatvol.ErrDecodeFailed),
					"error doesn't match ErrDecodeFailed: %s",
					err.Error())
			}
		})
	}
}
