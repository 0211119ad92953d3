// Package fat32 maps the on-disk structures of a FAT32 volume to Go types and
// reads them from a volume image.
//
// A FAT32 volume is laid out as follows (sector numbers relative to the start
// of the volume):
//
//	0                      partition boot sector
//	FSInfoSector           FS info sector (usually 1)
//	BackupBootSector       copy of the boot sector (usually 6), FS info copy after it
//	ReservedSectorCount    first file allocation table
//	  + SectorsPerFAT32    second file allocation table, and so on
//	  + NumberOfFATs * SectorsPerFAT32
//	                       data area, starting with cluster 2
//
// Every struct in this file has exactly the size of the on-disk structure it
// mirrors, with no padding. [VerifyLayout] checks this.
package fat32

// Sizes, in bytes, of the on-disk structures.
const (
	SectorSize              = 512
	MasterBootRecordSize    = 446
	PartitionTableSize      = 16
	SignatureWordSize       = 2
	PartitionAreaSize       = 512
	PartitionBootSectorSize = 512
	FsInfoSectorSize        = 512
	FatEntrySize            = 4
	DirectoryEntrySize      = 32
)

// BootSignature is the two-byte signature ending sector 0, the boot sector and
// its backup.
var BootSignature = [2]byte{0x55, 0xaa}

// PartitionArea is the first sector of a raw device: boot code, four partition
// table slots and the boot signature.
type PartitionArea struct {
	MasterBootRecord MasterBootRecord
	Partitions       [4]PartitionTable
	SignatureWord    SignatureWord
}

// MasterBootRecord is the area of sector 0 preceding the partition table. Its
// contents are not restricted by the format.
type MasterBootRecord struct {
	NotRestricted [446]byte
}

// PartitionTable is a single entry of the partition table in sector 0.
type PartitionTable struct {
	BootIndicator  uint8
	StartingHead   uint8
	StartingSector uint16 // sector in bits 0-5, cylinder in bits 6-15
	SystemID       uint8
	EndingHead     uint8
	EndingSector   uint16
	RelativeSector uint32 // LBA of the first sector
	TotalSectors   uint32
}

// SignatureWord holds the 0x55, 0xAA marker.
type SignatureWord struct {
	Value [2]byte
}

// PartitionBootSector is the first sector of a FAT32 volume, containing the BIOS
// parameter block and the FAT32 extended fields.
type PartitionBootSector struct {
	JumpCommand                  [3]byte
	CreatingSystemIdentifier     [8]byte
	SectorSize                   uint16
	SectorsPerCluster            uint8
	ReservedSectorCount          uint16
	NumberOfFATs                 uint8
	NumberOfRootDirectoryEntries uint16 // 0 on FAT32
	TotalSectors16               uint16 // 0 on FAT32
	MediumIdentifier             uint8
	SectorsPerFAT16              uint16 // 0 on FAT32
	SectorsPerTrack              uint16
	NumberOfSides                uint16
	NumberOfHiddenSectors        uint32
	TotalSectors32               uint32
	SectorsPerFAT32              uint32
	ExtensionFlag                uint16
	FSVersion                    uint16
	RootCluster                  uint32
	FSInfoSector                 uint16
	BackupBootSector             uint16
	Reserved1                    [12]byte
	PhysicalDiskNumber           uint8
	Reserved2                    uint8
	ExtendedBootRecordSignature  uint8
	VolumeIDNumber               uint32
	VolumeLabel                  [11]byte
	FileSystemType               [8]byte
	Reserved3                    [420]byte
	SignatureWord                [2]byte
}

// FsInfoSector carries advisory free-space hints. Neither counter is guaranteed
// to be accurate.
type FsInfoSector struct {
	LeadSignature    [4]byte
	Reserved1        [480]byte
	StructSignature  [4]byte
	FreeClusterCount uint32
	NextFreeCluster  uint32
	Reserved2        [12]byte
	TailSignature    [4]byte
}

// Signatures of the FS info sector.
var (
	FsInfoLeadSignature   = [4]byte{0x52, 0x52, 0x61, 0x41} // "RRaA"
	FsInfoStructSignature = [4]byte{0x72, 0x72, 0x41, 0x61} // "rrAa"
	FsInfoTailSignature   = [4]byte{0x00, 0x00, 0x55, 0xaa}
)

// FsInfoUnknown is stored in either FS info counter when it's not known.
const FsInfoUnknown = 0xffffffff

// DirectoryEntryField is a short-name directory entry.
type DirectoryEntryField struct {
	Name                      [11]byte
	Attributes                Attribute
	ReservedForNT             uint8
	CreatedTimeTenth          uint8
	CreatedTime               uint16
	CreatedDate               uint16
	LastAccessDate            uint16
	StartingClusterNumberHigh uint16
	TimeRecorded              uint16
	DateRecorded              uint16
	StartingClusterNumberLow  uint16
	FileLength                uint32
}

// Attribute is the attribute bitmask of a directory entry.
type Attribute uint8

const (
	AttrReadOnly Attribute = 1 << iota
	AttrHidden
	AttrSystem
	AttrVolumeID
	AttrDirectory
	AttrArchive
)

// AttrLongName marks an entry holding part of a long file name.
const AttrLongName = AttrReadOnly | AttrHidden | AttrSystem | AttrVolumeID
