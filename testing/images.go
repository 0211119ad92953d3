package testing

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/dargueta/fatvol/drivers/fat32"
	"github.com/noxer/bytewriter"
	"github.com/stretchr/testify/require"
)

// ImageSpec describes a synthetic FAT32 volume for tests. Use [DefaultImageSpec]
// and modify what the test cares about.
type ImageSpec struct {
	SectorSize        uint16
	SectorsPerCluster uint8
	ReservedSectors   uint16
	NumFATs           uint8
	SectorsPerFAT     uint32
	TotalSectors      uint32
	RootCluster       uint32
	FSInfoSector      uint16
	BackupBootSector  uint16
	MediumIdentifier  uint8
	VolumeID          uint32
	VolumeLabel       string
	FreeClusterCount  uint32
	NextFreeCluster   uint32

	// Entries holds FAT slot values written to every copy of the table, on top
	// of the two reserved slots and the root directory's end-of-chain marker.
	Entries map[uint32]uint32
}

// DefaultImageSpec gives a small but well-formed volume: 512-byte sectors, one
// sector per cluster, 32 reserved sectors, two 8-sector FATs and 1000 data
// clusters.
func DefaultImageSpec() ImageSpec {
	return ImageSpec{
		SectorSize:        512,
		SectorsPerCluster: 1,
		ReservedSectors:   32,
		NumFATs:           2,
		SectorsPerFAT:     8,
		TotalSectors:      32 + 2*8 + 1000,
		RootCluster:       2,
		FSInfoSector:      1,
		BackupBootSector:  6,
		MediumIdentifier:  0xf8,
		VolumeID:          0x1234abcd,
		VolumeLabel:       "NO NAME",
		FreeClusterCount:  999,
		NextFreeCluster:   3,
		Entries:           map[uint32]uint32{},
	}
}

func padded(text string, size int) []byte {
	field := bytes.Repeat([]byte{' '}, size)
	copy(field, text)
	return field
}

// NewBootSector builds the boot sector for `spec`.
func NewBootSector(spec ImageSpec) fat32.PartitionBootSector {
	pbs := fat32.PartitionBootSector{
		JumpCommand:                 [3]byte{0xeb, 0x58, 0x90},
		SectorSize:                  spec.SectorSize,
		SectorsPerCluster:           spec.SectorsPerCluster,
		ReservedSectorCount:         spec.ReservedSectors,
		NumberOfFATs:                spec.NumFATs,
		MediumIdentifier:            spec.MediumIdentifier,
		SectorsPerTrack:             32,
		NumberOfSides:               2,
		TotalSectors32:              spec.TotalSectors,
		SectorsPerFAT32:             spec.SectorsPerFAT,
		RootCluster:                 spec.RootCluster,
		FSInfoSector:                spec.FSInfoSector,
		BackupBootSector:            spec.BackupBootSector,
		PhysicalDiskNumber:          0x80,
		ExtendedBootRecordSignature: 0x29,
		VolumeIDNumber:              spec.VolumeID,
		SignatureWord:               fat32.BootSignature,
	}
	copy(pbs.CreatingSystemIdentifier[:], "mkfs.fat")
	copy(pbs.VolumeLabel[:], padded(spec.VolumeLabel, len(pbs.VolumeLabel)))
	copy(pbs.FileSystemType[:], padded("FAT32", len(pbs.FileSystemType)))
	return pbs
}

// NewFsInfo builds the FS info sector for `spec`.
func NewFsInfo(spec ImageSpec) fat32.FsInfoSector {
	return fat32.FsInfoSector{
		LeadSignature:    fat32.FsInfoLeadSignature,
		StructSignature:  fat32.FsInfoStructSignature,
		FreeClusterCount: spec.FreeClusterCount,
		NextFreeCluster:  spec.NextFreeCluster,
		TailSignature:    fat32.FsInfoTailSignature,
	}
}

// BuildImage lays out a complete volume image according to `spec`. The data
// area is left zeroed.
func BuildImage(t *testing.T, spec ImageSpec) []byte {
	sectorSize := int64(spec.SectorSize)
	image := make([]byte, int64(spec.TotalSectors)*sectorSize)

	writeAt := func(offset int64, value interface{}) {
		writer := bytewriter.New(image[offset:])
		err := binary.Write(writer, binary.LittleEndian, value)
		require.NoErrorf(t, err, "failed to write %T at offset %d", value, offset)
	}

	bootSector := NewBootSector(spec)
	packed, err := fat32.Pack(&bootSector)
	require.NoError(t, err, "failed to pack boot sector")
	require.Len(t, packed, fat32.PartitionBootSectorSize)

	copy(image, packed)
	writeAt(int64(spec.FSInfoSector)*sectorSize, NewFsInfo(spec))
	if spec.BackupBootSector != 0 {
		copy(image[int64(spec.BackupBootSector)*sectorSize:], packed)
		writeAt(int64(spec.BackupBootSector+1)*sectorSize, NewFsInfo(spec))
	}

	entries := map[uint32]uint32{
		0:                0x0fffff00 | uint32(spec.MediumIdentifier),
		1:                0x0fffffff,
		spec.RootCluster: 0x0ffffff8,
	}
	for cluster, value := range spec.Entries {
		entries[cluster] = value
	}

	fatSize := int64(spec.SectorsPerFAT) * sectorSize
	for i := int64(0); i < int64(spec.NumFATs); i++ {
		fatStart := int64(spec.ReservedSectors)*sectorSize + i*fatSize
		for cluster, value := range entries {
			require.Lessf(
				t,
				int64(cluster)*fat32.FatEntrySize,
				fatSize,
				"cluster %d doesn't fit in the FAT",
				cluster)
			writeAt(fatStart+int64(cluster)*fat32.FatEntrySize, value)
		}
	}
	return image
}

// SetFATEntry overwrites one slot of the `fatIndex`th table in an image built
// from `spec`, to simulate a damaged mirror.
func SetFATEntry(t *testing.T, image []byte, spec ImageSpec, fatIndex uint, cluster, value uint32) {
	sectorSize := int64(spec.SectorSize)
	offset := int64(spec.ReservedSectors)*sectorSize +
		int64(fatIndex)*int64(spec.SectorsPerFAT)*sectorSize +
		int64(cluster)*fat32.FatEntrySize

	writer := bytewriter.New(image[offset : offset+fat32.FatEntrySize])
	require.NoError(t, binary.Write(writer, binary.LittleEndian, value))
}
