package fat32

import (
	"encoding/binary"
	"fmt"

	"github.com/dargueta/fatvol"
)

// FatEntry is the raw 32-bit contents of a slot in the allocation table. Only
// the low 28 bits mean anything; the top four are reserved and ignored when
// reading.
type FatEntry uint32

// EntryMask selects the significant bits of a [FatEntry].
const EntryMask = 0x0fffffff

// Significant values of a FAT32 slot, after masking.
const (
	EntryFree         = 0x00000000
	EntryMaxAllocated = 0x0ffffff6
	EntryDefective    = 0x0ffffff7
	EntryEndOfChain   = 0x0ffffff8 // anything from here up to 0x0fffffff
)

// EntryKind is what a FAT slot says about its cluster.
type EntryKind int

const (
	// NotUsed means the cluster is free.
	NotUsed EntryKind = iota
	// Allocated means the cluster is in use and the slot holds the next cluster
	// in the chain.
	Allocated
	// Reserved values must not appear in a chain.
	Reserved
	// Defective marks a bad cluster.
	Defective
	// EndOfChain marks the last cluster of a chain.
	EndOfChain
)

func (k EntryKind) String() string {
	switch k {
	case NotUsed:
		return "free"
	case Allocated:
		return "allocated"
	case Reserved:
		return "reserved"
	case Defective:
		return "defective"
	case EndOfChain:
		return "end-of-chain"
	default:
		return fmt.Sprintf("EntryKind(%d)", int(k))
	}
}

// Value gives the significant 28 bits of the entry.
func (e FatEntry) Value() uint32 {
	return uint32(e) & EntryMask
}

// Kind classifies the entry without any knowledge of the volume it came from.
func (e FatEntry) Kind() EntryKind {
	kind, _ := Classify(uint32(e))
	return kind
}

// NextCluster gives the cluster following this one in its chain. The second
// return value is false unless the entry is [Allocated].
func (e FatEntry) NextCluster() (ClusterID, bool) {
	kind, next := Classify(uint32(e))
	return next, kind == Allocated
}

// Classify interprets a raw slot value. Every possible input falls into exactly
// one kind. For [Allocated] entries the returned cluster is the next one in the
// chain; for everything else it's 0.
//
// Value 1 never refers to a cluster and is reported as [Reserved].
func Classify(raw uint32) (EntryKind, ClusterID) {
	value := raw & EntryMask
	switch {
	case value == EntryFree:
		return NotUsed, 0
	case value < uint32(FirstDataCluster):
		return Reserved, 0
	case value <= EntryMaxAllocated:
		return Allocated, ClusterID(value)
	case value == EntryDefective:
		return Defective, 0
	default:
		return EndOfChain, 0
	}
}

// ClassifyWithLimit is like [Classify] but also treats pointers past the last
// cluster of the volume as [Reserved]. A `maxCluster` of 0 means no limit.
func ClassifyWithLimit(raw uint32, maxCluster ClusterID) (EntryKind, ClusterID) {
	kind, next := Classify(raw)
	if kind == Allocated && maxCluster != 0 && next > maxCluster {
		return Reserved, 0
	}
	return kind, next
}

// FileAllocationTable is one copy of the allocation table, kept as raw bytes.
// Slots are decoded on demand.
type FileAllocationTable []byte

// Len gives the number of slots in the table.
func (t FileAllocationTable) Len() uint {
	return uint(len(t)) / FatEntrySize
}

// Entry returns the slot for `cluster`, i.e. the 4 bytes at 4 * cluster.
func (t FileAllocationTable) Entry(cluster ClusterID) (FatEntry, error) {
	if uint(cluster) >= t.Len() {
		return 0, fatvol.ErrArgumentOutOfRange.WithMessage(
			fmt.Sprintf("cluster %d not in range [0, %d)", cluster, t.Len()))
	}
	offset := uint(cluster) * FatEntrySize
	return FatEntry(binary.LittleEndian.Uint32(t[offset : offset+FatEntrySize])), nil
}

// Classify reads and classifies the slot for `cluster`.
func (t FileAllocationTable) Classify(cluster ClusterID) (EntryKind, ClusterID, error) {
	entry, err := t.Entry(cluster)
	if err != nil {
		return NotUsed, 0, err
	}
	kind, next := Classify(uint32(entry))
	return kind, next, nil
}
