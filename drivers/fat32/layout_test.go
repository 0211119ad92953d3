package fat32_test

import (
	"encoding/binary"
	"testing"

	"github.com/dargueta/fatvol/drivers/fat32"
	"github.com/stretchr/testify/assert"
)

func TestVerifyLayout(t *testing.T) {
	assert.NoError(t, fat32.VerifyLayout())
}

func TestStructSizes(t *testing.T) {
	assert.Equal(t, 2, binary.Size(fat32.SignatureWord{}))
	assert.Equal(t, 16, binary.Size(fat32.PartitionTable{}))
	assert.Equal(t, 446, binary.Size(fat32.MasterBootRecord{}))
	assert.Equal(t, 512, binary.Size(fat32.PartitionArea{}))
	assert.Equal(t, 512, binary.Size(fat32.PartitionBootSector{}))
	assert.Equal(t, 512, binary.Size(fat32.FsInfoSector{}))
	assert.Equal(t, 4, binary.Size(fat32.FatEntry(0)))
	assert.Equal(t, 32, binary.Size(fat32.DirectoryEntryField{}))
}
