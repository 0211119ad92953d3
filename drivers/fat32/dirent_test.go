package fat32_test

import (
	"testing"
	"time"

	"github.com/dargueta/fatvol/drivers/fat32"
	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	// 2023-07-14: (43 << 9) | (7 << 5) | 14
	assert.Equal(t, time.Date(2023, 7, 14, 0, 0, 0, 0, time.UTC), fat32.ParseDate(43<<9|7<<5|14))
	assert.Equal(t, time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC), fat32.ParseDate(1<<5|1))
	assert.True(t, fat32.ParseDate(0).IsZero())
	assert.True(t, fat32.ParseDate(1<<5).IsZero(), "day 0 is invalid")
	assert.True(t, fat32.ParseDate(13<<5|1).IsZero(), "month 13 is invalid")
}

func TestParseTime(t *testing.T) {
	parsed := fat32.ParseTime(13<<11 | 45<<5 | 29)
	assert.Equal(t, 13, parsed.Hour())
	assert.Equal(t, 45, parsed.Minute())
	assert.Equal(t, 58, parsed.Second())

	assert.True(t, fat32.ParseTime(0).IsZero())
}

func TestParseTimeClampsEachField(t *testing.T) {
	tests := []struct {
		Stamp    uint16
		Expected time.Time
	}{
		{31 << 11, time.Date(1, 1, 1, 23, 0, 0, 0, time.UTC)},
		{10<<11 | 60<<5, time.Date(1, 1, 1, 10, 59, 0, 0, time.UTC)},
		{10<<11 | 30<<5 | 31, time.Date(1, 1, 1, 10, 30, 59, 0, time.UTC)},
		{0xffff, time.Date(1, 1, 1, 23, 59, 59, 0, time.UTC)},
	}

	for _, test := range tests {
		assert.Equalf(t, test.Expected, fat32.ParseTime(test.Stamp), "stamp %#04x", test.Stamp)
	}
}

func TestDirectoryEntryTimestamps(t *testing.T) {
	entry := fat32.DirectoryEntryField{
		CreatedTimeTenth: 150,
		CreatedTime:      10<<11 | 30<<5 | 5,
		CreatedDate:      43<<9 | 7<<5 | 14,
		LastAccessDate:   43<<9 | 8<<5 | 1,
		TimeRecorded:     23<<11 | 59<<5 | 29,
		DateRecorded:     44<<9 | 1<<5 | 2,
	}

	assert.Equal(t, time.Date(2023, 7, 14, 10, 30, 11, 500_000_000, time.UTC), entry.Created())
	assert.Equal(t, time.Date(2024, 1, 2, 23, 59, 58, 0, time.UTC), entry.Modified())
	assert.Equal(t, time.Date(2023, 8, 1, 0, 0, 0, 0, time.UTC), entry.LastAccessed())

	entry.CreatedDate = 0
	assert.True(t, entry.Created().IsZero())
}

func TestDirectoryEntryFlags(t *testing.T) {
	entry := fat32.DirectoryEntryField{
		Attributes:                fat32.AttrDirectory | fat32.AttrHidden,
		StartingClusterNumberHigh: 0x0012,
		StartingClusterNumberLow:  0x3456,
	}
	copy(entry.Name[:], "DOCS       ")

	assert.True(t, entry.IsDir())
	assert.False(t, entry.IsFree())
	assert.False(t, entry.Attributes.IsLongName())
	assert.EqualValues(t, 0x00123456, entry.StartingCluster())

	entry.Attributes = fat32.AttrLongName
	assert.True(t, entry.Attributes.IsLongName())

	entry.Name[0] = 0xe5
	assert.True(t, entry.IsFree())
	entry.Name[0] = 0
	assert.True(t, entry.IsFree())
}
