package fat32

import (
	"fmt"
	"io"

	"github.com/dargueta/fatvol"
	"github.com/gocarina/gocsv"
)

// EntryRecord is one classified slot of the allocation table, in a form suited
// for export.
type EntryRecord struct {
	Cluster ClusterID `csv:"cluster"`
	Raw     string    `csv:"raw"`
	Kind    string    `csv:"kind"`
	// Next is the following cluster for allocated slots, 0 otherwise.
	Next ClusterID `csv:"next"`
	// Mirrored is false if the slot differs in the second copy of the table.
	Mirrored bool `csv:"mirrored"`
}

// Entries returns records for `count` slots of the first allocation table,
// starting at `start`. The range is clipped to the end of the table.
func (v *Volume) Entries(start ClusterID, count uint) ([]EntryRecord, error) {
	total := v.FAT1.Len()
	if uint(start) > total {
		return nil, fatvol.ErrArgumentOutOfRange.WithMessage(
			fmt.Sprintf("start cluster %d is past the end of the table (%d slots)", start, total))
	}
	if count > total-uint(start) {
		count = total - uint(start)
	}

	mirror := CompareTables(v.FAT1, v.FAT2)
	records := make([]EntryRecord, 0, count)
	for i := uint(0); i < count; i++ {
		cluster := start + ClusterID(i)
		entry, err := v.FAT1.Entry(cluster)
		if err != nil {
			return nil, err
		}

		kind, next := ClassifyWithLimit(uint32(entry), v.locator.MaxCluster())
		records = append(records, EntryRecord{
			Cluster:  cluster,
			Raw:      fmt.Sprintf("0x%08x", uint32(entry)),
			Kind:     kind.String(),
			Next:     next,
			Mirrored: !mirror.Differs(cluster),
		})
	}
	return records, nil
}

// WriteEntriesCSV writes records as CSV with a header row.
func WriteEntriesCSV(output io.Writer, records []EntryRecord) error {
	err := gocsv.Marshal(records, output)
	if err != nil {
		return fatvol.ErrIOFailed.Wrap(err)
	}
	return nil
}

// ReadEntriesCSV parses the output of [WriteEntriesCSV].
func ReadEntriesCSV(input io.Reader) ([]EntryRecord, error) {
	records := []EntryRecord{}
	err := gocsv.Unmarshal(input, &records)
	if err != nil {
		return nil, fatvol.ErrDecodeFailed.Wrap(err)
	}
	return records, nil
}
