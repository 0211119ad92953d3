package fat32

import (
	"fmt"

	"github.com/dargueta/fatvol"
)

// Decoding never rejects a structure because of its contents. The functions in
// this file are how callers find out whether what they got makes sense.

// MediaDescriptors maps every valid medium identifier to a description.
var MediaDescriptors = map[uint8]string{
	0xf0: "removable media",
	0xf8: "fixed media",
	0xf9: "removable media (720K/1.2M floppy)",
	0xfa: "removable media",
	0xfb: "removable media",
	0xfc: "removable media (180K floppy)",
	0xfd: "removable media (360K floppy)",
	0xfe: "removable media (160K floppy)",
	0xff: "removable media (320K floppy)",
}

// Values required in the FAT32 extended boot sector fields.
const (
	RequiredFSVersion                   = 0x0000
	RequiredExtendedBootRecordSignature = 0x29
	RequiredPhysicalDiskNumber          = 0x80
)

// IsValidMediumIdentifier returns true if `id` is a recognized media descriptor.
func IsValidMediumIdentifier(id uint8) bool {
	_, ok := MediaDescriptors[id]
	return ok
}

func isPowerOfTwo(value uint) bool {
	return value != 0 && value&(value-1) == 0
}

// Validate checks the boot sector against the requirements of a FAT32 volume.
// All violations are reported together, and the returned error matches
// [fatvol.ErrFileSystemCorrupted].
func (pbs *PartitionBootSector) Validate() error {
	problems := []error{}
	fail := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Errorf(format, args...))
	}

	switch pbs.SectorSize {
	case 512, 1024, 2048, 4096:
	default:
		fail("sector size must be 512, 1024, 2048, or 4096, got %d", pbs.SectorSize)
	}

	if !isPowerOfTwo(uint(pbs.SectorsPerCluster)) {
		fail("sectors per cluster must be a power of 2 in 1-128, got %d", pbs.SectorsPerCluster)
	} else if uint(pbs.SectorsPerCluster)*uint(pbs.SectorSize) > 32768 {
		fail(
			"cluster size cannot exceed 32768 bytes, got %d",
			uint(pbs.SectorsPerCluster)*uint(pbs.SectorSize))
	}

	if pbs.ReservedSectorCount == 0 {
		fail("reserved sector count must not be 0")
	}
	if pbs.NumberOfFATs == 0 {
		fail("there must be at least one FAT")
	}
	if pbs.NumberOfRootDirectoryEntries != 0 {
		fail("root directory entry count must be 0, got %d", pbs.NumberOfRootDirectoryEntries)
	}
	if pbs.TotalSectors16 != 0 {
		fail("16-bit total sector count must be 0, got %d", pbs.TotalSectors16)
	}
	if pbs.TotalSectors32 == 0 {
		fail("32-bit total sector count must not be 0")
	}
	if pbs.SectorsPerFAT16 != 0 {
		fail("16-bit sectors per FAT must be 0, got %d", pbs.SectorsPerFAT16)
	}
	if pbs.SectorsPerFAT32 == 0 {
		fail("sectors per FAT must not be 0")
	}
	if !IsValidMediumIdentifier(pbs.MediumIdentifier) {
		fail("unrecognized medium identifier %#02x", pbs.MediumIdentifier)
	}
	if pbs.FSVersion != RequiredFSVersion {
		fail("unsupported file system version %#04x", pbs.FSVersion)
	}
	if pbs.RootCluster < uint32(FirstDataCluster) {
		fail("root cluster must be at least 2, got %d", pbs.RootCluster)
	}
	if pbs.FSInfoSector == 0 || pbs.FSInfoSector >= pbs.ReservedSectorCount {
		fail(
			"FS info sector %d is outside the reserved area [1, %d)",
			pbs.FSInfoSector,
			pbs.ReservedSectorCount)
	}
	if pbs.BackupBootSector != 0 && pbs.BackupBootSector+1 >= pbs.ReservedSectorCount {
		fail(
			"backup boot sector %d and its FS info copy don't fit in %d reserved sectors",
			pbs.BackupBootSector,
			pbs.ReservedSectorCount)
	}
	if pbs.PhysicalDiskNumber != RequiredPhysicalDiskNumber {
		fail("physical disk number must be %#02x, got %#02x",
			RequiredPhysicalDiskNumber, pbs.PhysicalDiskNumber)
	}
	if pbs.ExtendedBootRecordSignature != RequiredExtendedBootRecordSignature {
		fail("extended boot record signature must be %#02x, got %#02x",
			RequiredExtendedBootRecordSignature, pbs.ExtendedBootRecordSignature)
	}
	if pbs.SignatureWord != BootSignature {
		fail("boot signature must be 55 AA, got % X", pbs.SignatureWord[:])
	}

	return fatvol.Collect(fatvol.ErrFileSystemCorrupted.WithMessage("invalid boot sector"), problems)
}

// Validate checks the three signatures of the FS info sector. The counters are
// advisory and aren't checked.
func (info *FsInfoSector) Validate() error {
	problems := []error{}
	if info.LeadSignature != FsInfoLeadSignature {
		problems = append(problems, fmt.Errorf("bad lead signature % X", info.LeadSignature[:]))
	}
	if info.StructSignature != FsInfoStructSignature {
		problems = append(problems, fmt.Errorf("bad struct signature % X", info.StructSignature[:]))
	}
	if info.TailSignature != FsInfoTailSignature {
		problems = append(problems, fmt.Errorf("bad tail signature % X", info.TailSignature[:]))
	}
	return fatvol.Collect(fatvol.ErrFileSystemCorrupted.WithMessage("invalid FS info sector"), problems)
}

// FreeClusters gives the advisory free cluster count. The second return value
// is false if the formatter left it unknown.
func (info *FsInfoSector) FreeClusters() (uint32, bool) {
	return info.FreeClusterCount, info.FreeClusterCount != FsInfoUnknown
}

// NextFree gives the advisory hint for where to start looking for a free
// cluster. The second return value is false if no hint was recorded.
func (info *FsInfoSector) NextFree() (ClusterID, bool) {
	return ClusterID(info.NextFreeCluster), info.NextFreeCluster != FsInfoUnknown
}

// Validate checks the signature of sector 0.
func (area *PartitionArea) Validate() error {
	if area.SignatureWord.Value != BootSignature {
		return fatvol.ErrFileSystemCorrupted.WithMessage(
			fmt.Sprintf("partition area signature must be 55 AA, got % X", area.SignatureWord.Value[:]))
	}
	return nil
}

// IsBootable returns true if the partition is marked active.
func (p PartitionTable) IsBootable() bool {
	return p.BootIndicator == 0x80
}

// IsEmpty returns true if the slot doesn't describe a partition.
func (p PartitionTable) IsEmpty() bool {
	return p.SystemID == 0
}

// IsFAT32 returns true if the system ID is one of the FAT32 partition types.
func (p PartitionTable) IsFAT32() bool {
	return p.SystemID == 0x0b || p.SystemID == 0x0c
}
