package fat32

import (
	"fmt"

	"github.com/dargueta/fatvol"
)

// ClusterID is the number of a cluster in the data area. The first data
// cluster is 2.
type ClusterID uint32

// FirstDataCluster is the lowest cluster number that maps to the data area.
// Clusters 0 and 1 only exist as slots in the allocation table.
const FirstDataCluster = ClusterID(2)

// Locator computes where each structure of a volume lives, in bytes from the
// start of the data source. It never performs I/O; everything is derived from
// the boot sector.
type Locator struct {
	bootSector PartitionBootSector
}

// NewLocator creates a Locator for the volume described by `pbs`.
func NewLocator(pbs PartitionBootSector) Locator {
	return Locator{bootSector: pbs}
}

func (l Locator) sectorsToBytes(sectors uint32) int64 {
	return int64(sectors) * int64(l.bootSector.SectorSize)
}

// SectorSize gives the number of bytes in a sector.
func (l Locator) SectorSize() uint {
	return uint(l.bootSector.SectorSize)
}

// ClusterSize gives the number of bytes in a cluster.
func (l Locator) ClusterSize() uint {
	return uint(l.bootSector.SectorsPerCluster) * uint(l.bootSector.SectorSize)
}

// FsInfoOffset gives the offset of the FS info sector.
func (l Locator) FsInfoOffset() int64 {
	return l.sectorsToBytes(uint32(l.bootSector.FSInfoSector))
}

// BackupBootSectorOffset gives the offset of the copy of the boot sector.
func (l Locator) BackupBootSectorOffset() int64 {
	return l.sectorsToBytes(uint32(l.bootSector.BackupBootSector))
}

// BackupFsInfoOffset gives the offset of the copy of the FS info sector, which
// immediately follows the backup boot sector.
func (l Locator) BackupFsInfoOffset() int64 {
	return l.sectorsToBytes(uint32(l.bootSector.BackupBootSector) + 1)
}

// FATSize gives the size of a single copy of the allocation table, in bytes.
func (l Locator) FATSize() int64 {
	return l.sectorsToBytes(l.bootSector.SectorsPerFAT32)
}

// FAT1Offset gives the offset of the first allocation table, right after the
// reserved sectors.
func (l Locator) FAT1Offset() int64 {
	return l.sectorsToBytes(uint32(l.bootSector.ReservedSectorCount))
}

// FAT2Offset gives the offset of the second allocation table, which is
// contiguous with the first.
func (l Locator) FAT2Offset() int64 {
	return l.FAT1Offset() + l.FATSize()
}

// FATOffset gives the offset of the `index`th copy of the allocation table,
// counting from 0.
func (l Locator) FATOffset(index uint) (int64, error) {
	if index >= uint(l.bootSector.NumberOfFATs) {
		return -1, fatvol.ErrArgumentOutOfRange.WithMessage(
			fmt.Sprintf("FAT index %d not in range [0, %d)", index, l.bootSector.NumberOfFATs))
	}
	return l.FAT1Offset() + int64(index)*l.FATSize(), nil
}

// DataAreaOffset gives the offset of cluster 2, which follows the last copy of
// the allocation table.
func (l Locator) DataAreaOffset() int64 {
	return l.FAT1Offset() + int64(l.bootSector.NumberOfFATs)*l.FATSize()
}

// ClusterOffset gives the offset of the first byte of `cluster`.
//
// Clusters 0 and 1 have no data; asking for them is a bug in the caller and
// panics.
func (l Locator) ClusterOffset(cluster ClusterID) int64 {
	if cluster < FirstDataCluster {
		panic(fmt.Sprintf("cluster %d is reserved and has no data area offset", cluster))
	}
	return l.DataAreaOffset() + int64(cluster-FirstDataCluster)*int64(l.ClusterSize())
}

// MaxCluster gives the highest cluster number that fits in the data area, capped
// at [EntryMaxAllocated]. It returns 0 if the geometry is too broken to contain
// any clusters.
func (l Locator) MaxCluster() ClusterID {
	pbs := l.bootSector
	if pbs.SectorsPerCluster == 0 || pbs.SectorSize == 0 {
		return 0
	}

	dataStart := uint64(pbs.ReservedSectorCount) +
		uint64(pbs.NumberOfFATs)*uint64(pbs.SectorsPerFAT32)
	if uint64(pbs.TotalSectors32) <= dataStart {
		return 0
	}

	clusters := (uint64(pbs.TotalSectors32) - dataStart) / uint64(pbs.SectorsPerCluster)
	if clusters == 0 {
		return 0
	}
	// Slot values above EntryMaxAllocated are markers, not cluster numbers.
	if clusters+1 > EntryMaxAllocated {
		return ClusterID(EntryMaxAllocated)
	}
	return ClusterID(clusters + 1)
}
