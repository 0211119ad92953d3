package fat32

import (
	"encoding/binary"
	"fmt"

	"github.com/dargueta/fatvol"
	"github.com/go-restruct/restruct"
)

// There are two ways of turning raw sector bytes into the structs in layout.go:
//
//   - The Decode* functions walk the buffer field by field, decoding multi-byte
//     integers as little endian and copying byte arrays verbatim.
//   - [Unpack] hands the buffer to restruct, which does the same thing driven
//     by reflection. It copes with the 420- and 446-byte arrays without any
//     special handling.
//
// Both require the buffer to be exactly as long as the structure and produce
// identical results for identical input.

// fieldDecoder reads consecutive little-endian fields from a byte slice. The
// caller is responsible for checking the total length up front.
type fieldDecoder struct {
	data     []byte
	position int
}

func (d *fieldDecoder) take(size int) []byte {
	chunk := d.data[d.position : d.position+size]
	d.position += size
	return chunk
}

func (d *fieldDecoder) u8() uint8 {
	return d.take(1)[0]
}

func (d *fieldDecoder) u16() uint16 {
	return binary.LittleEndian.Uint16(d.take(2))
}

func (d *fieldDecoder) u32() uint32 {
	return binary.LittleEndian.Uint32(d.take(4))
}

func (d *fieldDecoder) bytes(destination []byte) {
	copy(destination, d.take(len(destination)))
}

func checkLength(data []byte, expected int, what string) error {
	if len(data) != expected {
		return fatvol.ErrDecodeFailed.WithMessage(
			fmt.Sprintf("%s needs exactly %d bytes, got %d", what, expected, len(data)))
	}
	return nil
}

// DecodePartitionTable decodes a single 16-byte partition table entry.
func DecodePartitionTable(data []byte) (PartitionTable, error) {
	if err := checkLength(data, PartitionTableSize, "partition table entry"); err != nil {
		return PartitionTable{}, err
	}
	d := fieldDecoder{data: data}
	return decodePartitionTable(&d), nil
}

func decodePartitionTable(d *fieldDecoder) PartitionTable {
	return PartitionTable{
		BootIndicator:  d.u8(),
		StartingHead:   d.u8(),
		StartingSector: d.u16(),
		SystemID:       d.u8(),
		EndingHead:     d.u8(),
		EndingSector:   d.u16(),
		RelativeSector: d.u32(),
		TotalSectors:   d.u32(),
	}
}

// DecodePartitionArea decodes sector 0 of a raw device.
func DecodePartitionArea(data []byte) (PartitionArea, error) {
	area := PartitionArea{}
	if err := checkLength(data, PartitionAreaSize, "partition area"); err != nil {
		return area, err
	}

	d := fieldDecoder{data: data}
	d.bytes(area.MasterBootRecord.NotRestricted[:])
	for i := range area.Partitions {
		area.Partitions[i] = decodePartitionTable(&d)
	}
	d.bytes(area.SignatureWord.Value[:])
	return area, nil
}

// DecodePartitionBootSector decodes the first sector of a FAT32 volume.
func DecodePartitionBootSector(data []byte) (PartitionBootSector, error) {
	pbs := PartitionBootSector{}
	if err := checkLength(data, PartitionBootSectorSize, "partition boot sector"); err != nil {
		return pbs, err
	}

	d := fieldDecoder{data: data}
	d.bytes(pbs.JumpCommand[:])
	d.bytes(pbs.CreatingSystemIdentifier[:])
	pbs.SectorSize = d.u16()
	pbs.SectorsPerCluster = d.u8()
	pbs.ReservedSectorCount = d.u16()
	pbs.NumberOfFATs = d.u8()
	pbs.NumberOfRootDirectoryEntries = d.u16()
	pbs.TotalSectors16 = d.u16()
	pbs.MediumIdentifier = d.u8()
	pbs.SectorsPerFAT16 = d.u16()
	pbs.SectorsPerTrack = d.u16()
	pbs.NumberOfSides = d.u16()
	pbs.NumberOfHiddenSectors = d.u32()
	pbs.TotalSectors32 = d.u32()
	pbs.SectorsPerFAT32 = d.u32()
	pbs.ExtensionFlag = d.u16()
	pbs.FSVersion = d.u16()
	pbs.RootCluster = d.u32()
	pbs.FSInfoSector = d.u16()
	pbs.BackupBootSector = d.u16()
	d.bytes(pbs.Reserved1[:])
	pbs.PhysicalDiskNumber = d.u8()
	pbs.Reserved2 = d.u8()
	pbs.ExtendedBootRecordSignature = d.u8()
	pbs.VolumeIDNumber = d.u32()
	d.bytes(pbs.VolumeLabel[:])
	d.bytes(pbs.FileSystemType[:])
	d.bytes(pbs.Reserved3[:])
	d.bytes(pbs.SignatureWord[:])
	return pbs, nil
}

// DecodeFsInfoSector decodes an FS info sector.
func DecodeFsInfoSector(data []byte) (FsInfoSector, error) {
	info := FsInfoSector{}
	if err := checkLength(data, FsInfoSectorSize, "FS info sector"); err != nil {
		return info, err
	}

	d := fieldDecoder{data: data}
	d.bytes(info.LeadSignature[:])
	d.bytes(info.Reserved1[:])
	d.bytes(info.StructSignature[:])
	info.FreeClusterCount = d.u32()
	info.NextFreeCluster = d.u32()
	d.bytes(info.Reserved2[:])
	d.bytes(info.TailSignature[:])
	return info, nil
}

// DecodeDirectoryEntry decodes a 32-byte short-name directory entry.
func DecodeDirectoryEntry(data []byte) (DirectoryEntryField, error) {
	entry := DirectoryEntryField{}
	if err := checkLength(data, DirectoryEntrySize, "directory entry"); err != nil {
		return entry, err
	}

	d := fieldDecoder{data: data}
	d.bytes(entry.Name[:])
	entry.Attributes = Attribute(d.u8())
	entry.ReservedForNT = d.u8()
	entry.CreatedTimeTenth = d.u8()
	entry.CreatedTime = d.u16()
	entry.CreatedDate = d.u16()
	entry.LastAccessDate = d.u16()
	entry.StartingClusterNumberHigh = d.u16()
	entry.TimeRecorded = d.u16()
	entry.DateRecorded = d.u16()
	entry.StartingClusterNumberLow = d.u16()
	entry.FileLength = d.u32()
	return entry, nil
}

// Unpack decodes `data` into the struct pointed to by `target` with restruct.
// Like the Decode* functions, it fails if the length of `data` differs from
// the encoded size of the struct.
func Unpack(data []byte, target interface{}) error {
	size, err := restruct.SizeOf(target)
	if err != nil {
		return fatvol.ErrDecodeFailed.Wrap(err)
	}
	if err = checkLength(data, size, fmt.Sprintf("%T", target)); err != nil {
		return err
	}

	err = restruct.Unpack(data, binary.LittleEndian, target)
	if err != nil {
		return fatvol.ErrDecodeFailed.Wrap(err)
	}
	return nil
}

// Pack encodes a structure back to its on-disk representation.
func Pack(source interface{}) ([]byte, error) {
	data, err := restruct.Pack(binary.LittleEndian, source)
	if err != nil {
		return nil, fatvol.ErrDecodeFailed.Wrap(err)
	}
	return data, nil
}

// decodeBootSector and decodeFsInfo pick the decoder according to the open
// flags.
func decodeBootSector(data []byte, flags fatvol.OpenFlags) (PartitionBootSector, error) {
	if !flags.Has(fatvol.OpenFlagsDecodeGeneric) {
		return DecodePartitionBootSector(data)
	}
	pbs := PartitionBootSector{}
	err := Unpack(data, &pbs)
	return pbs, err
}

func decodeFsInfo(data []byte, flags fatvol.OpenFlags) (FsInfoSector, error) {
	if !flags.Has(fatvol.OpenFlagsDecodeGeneric) {
		return DecodeFsInfoSector(data)
	}
	info := FsInfoSector{}
	err := Unpack(data, &info)
	return info, err
}
