package fat32

import (
	"time"
)

// StartingCluster joins the two halves of the first cluster number.
func (e *DirectoryEntryField) StartingCluster() ClusterID {
	return ClusterID(uint32(e.StartingClusterNumberHigh)<<16 | uint32(e.StartingClusterNumberLow))
}

// Has returns true if every bit in `flags` is set.
func (a Attribute) Has(flags Attribute) bool {
	return a&flags == flags
}

// IsLongName returns true if the entry is part of a long file name rather than
// a regular entry.
func (a Attribute) IsLongName() bool {
	return a&AttrLongName == AttrLongName
}

func (e *DirectoryEntryField) IsDir() bool {
	return e.Attributes.Has(AttrDirectory)
}

// IsFree returns true if the entry slot is unused. 0xE5 marks a deleted entry,
// 0x00 an entry that was never used.
func (e *DirectoryEntryField) IsFree() bool {
	return e.Name[0] == 0xe5 || e.Name[0] == 0x00
}

// Created gives the creation timestamp, including the tenths-of-a-second
// field. It's the zero time if the date is invalid.
func (e *DirectoryEntryField) Created() time.Time {
	return joinTimestamp(e.CreatedDate, e.CreatedTime, e.CreatedTimeTenth)
}

// Modified gives the last write timestamp, or the zero time if the date is
// invalid.
func (e *DirectoryEntryField) Modified() time.Time {
	return joinTimestamp(e.DateRecorded, e.TimeRecorded, 0)
}

// LastAccessed gives the date of the last access. FAT doesn't store a time for
// it.
func (e *DirectoryEntryField) LastAccessed() time.Time {
	return ParseDate(e.LastAccessDate)
}

func joinTimestamp(datePart, timePart uint16, tenths uint8) time.Time {
	date := ParseDate(datePart)
	if date.IsZero() {
		return time.Time{}
	}

	clock := ParseTime(timePart)
	// Counts units of 10ms, 0-199.
	extra := time.Duration(tenths) * 10 * time.Millisecond
	return time.Date(
		date.Year(),
		date.Month(),
		date.Day(),
		clock.Hour(),
		clock.Minute(),
		clock.Second(),
		0,
		time.UTC,
	).Add(extra)
}

// ParseDate decodes a FAT date stamp: day of month in bits 0-4, month in bits
// 5-8, years since 1980 in bits 9-15. A stamp with no valid day or month gives
// the zero time.
func ParseDate(stamp uint16) time.Time {
	day := int(stamp & 0x1f)
	month := int(stamp >> 5 & 0x0f)
	if day == 0 || month == 0 || month > 12 {
		return time.Time{}
	}
	return time.Date(1980+int(stamp>>9), time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// ParseTime decodes a FAT time stamp: two-second units in bits 0-4, minutes in
// bits 5-10, hours in bits 11-15. The date part is January 1 of year 1.
//
// Each field is clamped separately, so 24:61:62 reads as 23:59:59.
func ParseTime(stamp uint16) time.Time {
	hours := clampField(int(stamp>>11), 23)
	minutes := clampField(int(stamp>>5&0x3f), 59)
	seconds := clampField(int(stamp&0x1f)*2, 59)
	return time.Date(1, 1, 1, hours, minutes, seconds, 0, time.UTC)
}

func clampField(value, limit int) int {
	if value > limit {
		return limit
	}
	return value
}
