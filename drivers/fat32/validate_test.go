package fat32_test

import (
	"errors"
	"testing"

	"github.com/dargueta/fatvol"
	"github.com/dargueta/fatvol/drivers/fat32"
	dt "github.com/dargueta/fatvol/testing"
	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateGoodBootSector(t *testing.T) {
	pbs := dt.NewBootSector(dt.DefaultImageSpec())
	assert.NoError(t, pbs.Validate())
}

func TestValidateBootSectorProblems(t *testing.T) {
	tests := []struct {
		Name   string
		Modify func(pbs *fat32.PartitionBootSector)
	}{
		{"sector size", func(pbs *fat32.PartitionBootSector) { pbs.SectorSize = 513 }},
		{"sectors per cluster", func(pbs *fat32.PartitionBootSector) { pbs.SectorsPerCluster = 3 }},
		{"zero sectors per cluster", func(pbs *fat32.PartitionBootSector) { pbs.SectorsPerCluster = 0 }},
		{"cluster too big", func(pbs *fat32.PartitionBootSector) {
			pbs.SectorSize = 4096
			pbs.SectorsPerCluster = 16
		}},
		{"no reserved sectors", func(pbs *fat32.PartitionBootSector) { pbs.ReservedSectorCount = 0 }},
		{"no FATs", func(pbs *fat32.PartitionBootSector) { pbs.NumberOfFATs = 0 }},
		{"root entries", func(pbs *fat32.PartitionBootSector) { pbs.NumberOfRootDirectoryEntries = 512 }},
		{"16-bit total", func(pbs *fat32.PartitionBootSector) { pbs.TotalSectors16 = 1 }},
		{"no total", func(pbs *fat32.PartitionBootSector) { pbs.TotalSectors32 = 0 }},
		{"16-bit FAT size", func(pbs *fat32.PartitionBootSector) { pbs.SectorsPerFAT16 = 9 }},
		{"no FAT size", func(pbs *fat32.PartitionBootSector) { pbs.SectorsPerFAT32 = 0 }},
		{"media", func(pbs *fat32.PartitionBootSector) { pbs.MediumIdentifier = 0x01 }},
		{"version", func(pbs *fat32.PartitionBootSector) { pbs.FSVersion = 1 }},
		{"root cluster", func(pbs *fat32.PartitionBootSector) { pbs.RootCluster = 1 }},
		{"FS info at 0", func(pbs *fat32.PartitionBootSector) { pbs.FSInfoSector = 0 }},
		{"FS info past reserved", func(pbs *fat32.PartitionBootSector) { pbs.FSInfoSector = 32 }},
		{"backup past reserved", func(pbs *fat32.PartitionBootSector) { pbs.BackupBootSector = 31 }},
		{"disk number", func(pbs *fat32.PartitionBootSector) { pbs.PhysicalDiskNumber = 0 }},
		{"extended signature", func(pbs *fat32.PartitionBootSector) { pbs.ExtendedBootRecordSignature = 0x28 }},
		{"boot signature", func(pbs *fat32.PartitionBootSector) { pbs.SignatureWord = [2]byte{0x55, 0x55} }},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			pbs := dt.NewBootSector(dt.DefaultImageSpec())
			test.Modify(&pbs)
			err := pbs.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, fatvol.ErrFileSystemCorrupted))
		})
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	pbs := dt.NewBootSector(dt.DefaultImageSpec())
	pbs.SectorSize = 100
	pbs.NumberOfFATs = 0
	pbs.MediumIdentifier = 0

	err := pbs.Validate()
	require.Error(t, err)

	var combined *multierror.Error
	require.True(t, errors.As(err, &combined))
	// The base error followed by one entry per problem.
	assert.Len(t, combined.Errors, 4)
}

func TestValidateFsInfo(t *testing.T) {
	info := dt.NewFsInfo(dt.DefaultImageSpec())
	assert.NoError(t, info.Validate())

	next, ok := info.NextFree()
	assert.True(t, ok)
	assert.EqualValues(t, 3, next)

	info.StructSignature[0] = 'x'
	info.TailSignature = [4]byte{}
	err := info.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, fatvol.ErrFileSystemCorrupted))
}

func TestFsInfoUnknownCounters(t *testing.T) {
	spec := dt.DefaultImageSpec()
	spec.FreeClusterCount = fat32.FsInfoUnknown
	spec.NextFreeCluster = fat32.FsInfoUnknown
	info := dt.NewFsInfo(spec)

	_, ok := info.FreeClusters()
	assert.False(t, ok)
	_, ok = info.NextFree()
	assert.False(t, ok)
}

func TestMediumIdentifiers(t *testing.T) {
	for id := 0; id < 256; id++ {
		expected := id == 0xf0 || id >= 0xf8
		assert.Equalf(t, expected, fat32.IsValidMediumIdentifier(uint8(id)), "media %#02x", id)
	}
}

func TestPartitionTableHelpers(t *testing.T) {
	entry := fat32.PartitionTable{BootIndicator: 0x80, SystemID: 0x0c}
	assert.True(t, entry.IsBootable())
	assert.True(t, entry.IsFAT32())
	assert.False(t, entry.IsEmpty())

	empty := fat32.PartitionTable{}
	assert.False(t, empty.IsBootable())
	assert.False(t, empty.IsFAT32())
	assert.True(t, empty.IsEmpty())

	linux := fat32.PartitionTable{SystemID: 0x83}
	assert.False(t, linux.IsFAT32())
}

func TestPartitionAreaValidate(t *testing.T) {
	area := fat32.PartitionArea{}
	err := area.Validate()
	assert.True(t, errors.Is(err, fatvol.ErrFileSystemCorrupted))

	area.SignatureWord.Value = fat32.BootSignature
	assert.NoError(t, area.Validate())
}
