package fat32

import (
	"fmt"

	"github.com/dargueta/fatvol"
	"github.com/dargueta/fatvol/drivers/common"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// State is where a [Volume] is in its lifecycle.
type State int

const (
	Unopened State = iota
	Opened
	Closed
)

func (s State) String() string {
	switch s {
	case Unopened:
		return "unopened"
	case Opened:
		return "opened"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// InitStep identifies the part of opening a volume that failed.
type InitStep int

const (
	StepOpen InitStep = iota
	StepBootSector
	StepFsInfo
	StepFAT1
	StepFAT2
	StepValidate
)

func (s InitStep) String() string {
	switch s {
	case StepOpen:
		return "open"
	case StepBootSector:
		return "boot sector"
	case StepFsInfo:
		return "fs info"
	case StepFAT1:
		return "fat1"
	case StepFAT2:
		return "fat2"
	case StepValidate:
		return "validate"
	default:
		return fmt.Sprintf("InitStep(%d)", int(s))
	}
}

// InitError is returned when a volume can't be opened. Err is one of the
// module's [fatvol.DriverError] values, usually [fatvol.ErrOpenFailed],
// [fatvol.ErrShortRead] or [fatvol.ErrDecodeFailed].
type InitError struct {
	Step InitStep
	Err  error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("reading %s: %s", e.Step, e.Err.Error())
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// Options configures how a volume is opened. The zero value is usable.
type Options struct {
	Flags fatvol.OpenFlags
	// Logger receives debug output while the volume is read. Defaults to the
	// logrus standard logger.
	Logger logrus.FieldLogger
}

// Volume is an open FAT32 volume. The boot sector, the FS info sector and both
// copies of the allocation table are read once when the volume is opened and
// never refreshed.
//
// A Volume is not safe for concurrent use. Open one per goroutine instead.
type Volume struct {
	source  fatvol.DataSource
	reader  *common.SectorReader
	state   State
	locator Locator
	log     logrus.FieldLogger

	BootSector PartitionBootSector
	FsInfo     FsInfoSector
	FAT1       FileAllocationTable
	FAT2       FileAllocationTable
}

// Open opens the image at `path` on `fs` and reads the volume structures from
// it. Compressed images are handled as described in [fatvol.OpenImage].
func Open(fs afero.Fs, path string, options Options) (*Volume, error) {
	source, err := fatvol.OpenImage(fs, path)
	if err != nil {
		return nil, &InitError{Step: StepOpen, Err: err}
	}
	return NewFromSource(source, options)
}

// NewFromSource reads the volume structures from an already opened data
// source. The volume takes ownership of `source`: it's closed if reading
// fails, and by [Volume.Close] otherwise.
func NewFromSource(source fatvol.DataSource, options Options) (*Volume, error) {
	logger := options.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	volume := &Volume{source: source, log: logger}
	err := volume.load(options.Flags)
	if err != nil {
		closeErr := source.Close()
		if closeErr != nil {
			logger.WithError(closeErr).Warn("failed to close data source after error")
		}
		return nil, err
	}

	volume.state = Opened
	return volume, nil
}

func (v *Volume) load(flags fatvol.OpenFlags) error {
	reader, err := common.NewSectorReader(v.source)
	if err != nil {
		return &InitError{Step: StepOpen, Err: err}
	}
	v.reader = reader
	v.log.WithField("size", reader.Size()).Debug("opened data source")

	data, err := v.read(StepBootSector, 0, PartitionBootSectorSize)
	if err != nil {
		return err
	}
	v.BootSector, err = decodeBootSector(data, flags)
	if err != nil {
		return &InitError{Step: StepBootSector, Err: err}
	}
	v.locator = NewLocator(v.BootSector)

	data, err = v.read(StepFsInfo, v.locator.FsInfoOffset(), int64(v.locator.SectorSize()))
	if err != nil {
		return err
	}
	if len(data) < FsInfoSectorSize {
		return &InitError{
			Step: StepFsInfo,
			Err: fatvol.ErrDecodeFailed.WithMessage(
				fmt.Sprintf("sector size %d is smaller than the FS info sector", len(data))),
		}
	}
	v.FsInfo, err = decodeFsInfo(data[:FsInfoSectorSize], flags)
	if err != nil {
		return &InitError{Step: StepFsInfo, Err: err}
	}

	fatSize := v.locator.FATSize()
	data, err = v.read(StepFAT1, v.locator.FAT1Offset(), fatSize)
	if err != nil {
		return err
	}
	v.FAT1 = FileAllocationTable(data)

	// The second copy follows the first directly, so no seek.
	v.log.WithFields(logrus.Fields{
		"step":   StepFAT2.String(),
		"offset": v.reader.Position(),
		"size":   fatSize,
	}).Debug("reading")
	data, err = v.reader.ReadNext(fatSize)
	if err != nil {
		return &InitError{Step: StepFAT2, Err: err}
	}
	v.FAT2 = FileAllocationTable(data)

	return v.check(flags)
}

func (v *Volume) read(step InitStep, offset, size int64) ([]byte, error) {
	v.log.WithFields(logrus.Fields{
		"step":   step.String(),
		"offset": offset,
		"size":   size,
	}).Debug("reading")

	data, err := v.reader.ReadAt(offset, size)
	if err != nil {
		return nil, &InitError{Step: step, Err: err}
	}
	return data, nil
}

// check applies the optional checks requested by `flags`.
func (v *Volume) check(flags fatvol.OpenFlags) error {
	if flags.Has(fatvol.OpenFlagsStrict) {
		err := v.BootSector.Validate()
		if err == nil {
			err = v.FsInfo.Validate()
		}
		if err != nil {
			return &InitError{Step: StepValidate, Err: err}
		}
	}

	if flags.Has(fatvol.OpenFlagsRequireMirror) {
		report := CompareTables(v.FAT1, v.FAT2)
		if !report.Identical() {
			return &InitError{
				Step: StepValidate,
				Err: fatvol.ErrFileSystemCorrupted.WithMessage(
					fmt.Sprintf("%d FAT slots differ between copies", report.Count)),
			}
		}
	}
	return nil
}

// Close releases the data source. Everything already read stays available.
func (v *Volume) Close() error {
	if v.state != Opened {
		return fatvol.ErrClosed
	}
	v.state = Closed
	return v.source.Close()
}

// State gives the lifecycle state of the volume.
func (v *Volume) State() State {
	return v.state
}

// Locator gives the offset calculator for this volume.
func (v *Volume) Locator() Locator {
	return v.locator
}

func (v *Volume) SectorSize() uint16 {
	return v.BootSector.SectorSize
}

func (v *Volume) TotalSectors() uint32 {
	return v.BootSector.TotalSectors32
}

func (v *Volume) SectorsPerCluster() uint8 {
	return v.BootSector.SectorsPerCluster
}

func (v *Volume) ClusterSize() uint {
	return v.locator.ClusterSize()
}

func (v *Volume) RootCluster() ClusterID {
	return ClusterID(v.BootSector.RootCluster)
}

func (v *Volume) FSInfoSectorNumber() uint16 {
	return v.BootSector.FSInfoSector
}

// ClusterOffset gives the byte offset of `cluster` in the data source. See
// [Locator.ClusterOffset].
func (v *Volume) ClusterOffset(cluster ClusterID) int64 {
	return v.locator.ClusterOffset(cluster)
}

// ClassifyEntry classifies the slot for `cluster` in the first allocation
// table. Pointers past the end of the volume are reported as [Reserved].
func (v *Volume) ClassifyEntry(cluster ClusterID) (EntryKind, ClusterID, error) {
	entry, err := v.FAT1.Entry(cluster)
	if err != nil {
		return NotUsed, 0, err
	}
	kind, next := ClassifyWithLimit(uint32(entry), v.locator.MaxCluster())
	return kind, next, nil
}

// MirrorsMatch returns true if both copies of the allocation table are
// byte-for-byte identical.
func (v *Volume) MirrorsMatch() bool {
	return CompareTables(v.FAT1, v.FAT2).Identical()
}

////////////////////////////////////////////////////////////////////////////////
// Reads beyond the structures loaded at open time. These go to the data source
// and so require the volume to be open.

func (v *Volume) readSector(offset int64, size int64) ([]byte, error) {
	if v.state != Opened {
		return nil, fatvol.ErrClosed
	}
	return v.reader.ReadAt(offset, size)
}

// ReadPartitionArea reads sector 0 as a partition area. On an image holding a
// bare volume this is the boot sector seen through a different lens; only the
// signature is shared.
func (v *Volume) ReadPartitionArea() (PartitionArea, error) {
	data, err := v.readSector(0, PartitionAreaSize)
	if err != nil {
		return PartitionArea{}, err
	}
	return DecodePartitionArea(data)
}

// ReadBackupBootSector reads the copy of the boot sector. It returns the raw
// bytes along with the decoded structure so callers can compare them against
// the primary.
func (v *Volume) ReadBackupBootSector() ([]byte, PartitionBootSector, error) {
	data, err := v.readSector(v.locator.BackupBootSectorOffset(), PartitionBootSectorSize)
	if err != nil {
		return nil, PartitionBootSector{}, err
	}
	pbs, err := DecodePartitionBootSector(data)
	return data, pbs, err
}

// ReadBackupFsInfo reads the copy of the FS info sector. Not every formatter
// writes one; use [FsInfoSector.Validate] to tell.
func (v *Volume) ReadBackupFsInfo() (FsInfoSector, error) {
	data, err := v.readSector(v.locator.BackupFsInfoOffset(), FsInfoSectorSize)
	if err != nil {
		return FsInfoSector{}, err
	}
	return DecodeFsInfoSector(data)
}

// ReadBootSectorBytes reads the raw bytes of the primary boot sector again.
func (v *Volume) ReadBootSectorBytes() ([]byte, error) {
	return v.readSector(0, PartitionBootSectorSize)
}
