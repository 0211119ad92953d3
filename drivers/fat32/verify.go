package fat32

import (
	"encoding/binary"
	"fmt"
	"reflect"

	"github.com/dargueta/fatvol"
	"github.com/go-restruct/restruct"
)

type layoutExpectation struct {
	value   interface{}
	size    int
	offsets map[string]int
}

var layoutExpectations = []layoutExpectation{
	{value: MasterBootRecord{}, size: MasterBootRecordSize},
	{value: PartitionTable{}, size: PartitionTableSize, offsets: map[string]int{
		"SystemID":       4,
		"RelativeSector": 8,
		"TotalSectors":   12,
	}},
	{value: SignatureWord{}, size: SignatureWordSize},
	{value: PartitionArea{}, size: PartitionAreaSize, offsets: map[string]int{
		"Partitions":    446,
		"SignatureWord": 510,
	}},
	{value: PartitionBootSector{}, size: PartitionBootSectorSize, offsets: map[string]int{
		"SectorSize":                  0x0b,
		"SectorsPerCluster":           0x0d,
		"ReservedSectorCount":         0x0e,
		"NumberOfFATs":                0x10,
		"MediumIdentifier":            0x15,
		"TotalSectors32":              0x20,
		"SectorsPerFAT32":             0x24,
		"FSVersion":                   0x2a,
		"RootCluster":                 0x2c,
		"FSInfoSector":                0x30,
		"BackupBootSector":            0x32,
		"PhysicalDiskNumber":          0x40,
		"ExtendedBootRecordSignature": 0x42,
		"VolumeIDNumber":              0x43,
		"VolumeLabel":                 0x47,
		"FileSystemType":              0x52,
		"SignatureWord":               0x1fe,
	}},
	{value: FsInfoSector{}, size: FsInfoSectorSize, offsets: map[string]int{
		"StructSignature":  0x1e4,
		"FreeClusterCount": 0x1e8,
		"NextFreeCluster":  0x1ec,
		"TailSignature":    0x1fc,
	}},
	{value: FatEntry(0), size: FatEntrySize},
	{value: DirectoryEntryField{}, size: DirectoryEntrySize, offsets: map[string]int{
		"Attributes":                0x0b,
		"CreatedTime":               0x0e,
		"StartingClusterNumberHigh": 0x14,
		"StartingClusterNumberLow":  0x1a,
		"FileLength":                0x1c,
	}},
}

// VerifyLayout checks that every on-disk structure encodes to exactly its
// on-disk size, under both decoders, and that key fields sit at their on-disk
// offsets. A failure here means the type definitions are wrong.
func VerifyLayout() error {
	problems := []error{}
	for _, expected := range layoutExpectations {
		typeName := reflect.TypeOf(expected.value).Name()

		if size := binary.Size(expected.value); size != expected.size {
			problems = append(
				problems,
				fmt.Errorf("%s: encoded size is %d, expected %d", typeName, size, expected.size))
		}

		// restruct only deals in structs; FAT slots are plain integers.
		if reflect.TypeOf(expected.value).Kind() == reflect.Struct {
			size, err := restruct.SizeOf(expected.value)
			if err != nil {
				problems = append(problems, fmt.Errorf("%s: %w", typeName, err))
			} else if size != expected.size {
				problems = append(
					problems,
					fmt.Errorf("%s: restruct size is %d, expected %d", typeName, size, expected.size))
			}
		}

		offsets := fieldOffsets(expected.value)
		for field, want := range expected.offsets {
			got, ok := offsets[field]
			if !ok {
				problems = append(problems, fmt.Errorf("%s: no field %s", typeName, field))
			} else if got != want {
				problems = append(
					problems,
					fmt.Errorf("%s.%s: offset is %#x, expected %#x", typeName, field, got, want))
			}
		}
	}
	return fatvol.Collect(fatvol.ErrNotSupported.WithMessage("struct layout mismatch"), problems)
}

// fieldOffsets returns the encoded byte offset of each top-level field of a
// struct. Non-struct values have no fields.
func fieldOffsets(value interface{}) map[string]int {
	offsets := map[string]int{}
	valueType := reflect.TypeOf(value)
	if valueType.Kind() != reflect.Struct {
		return offsets
	}

	position := 0
	for i := 0; i < valueType.NumField(); i++ {
		field := valueType.Field(i)
		offsets[field.Name] = position
		position += binary.Size(reflect.Zero(field.Type).Interface())
	}
	return offsets
}
