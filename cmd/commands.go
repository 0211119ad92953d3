package main

import (
	"fmt"
	"io"

	"github.com/dargueta/fatvol"
	"github.com/dargueta/fatvol/drivers/fat32"
	"github.com/dargueta/fatvol/utilities/compression"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"
)

func requireArgs(context *cli.Context, names ...string) error {
	if context.NArg() != len(names) {
		return cli.Exit(
			fmt.Sprintf("expected %d arguments (%v), got %d", len(names), names, context.NArg()),
			2)
	}
	return nil
}

func openVolume(context *cli.Context) (*fat32.Volume, error) {
	err := requireArgs(context, "IMAGE")
	if err != nil {
		return nil, err
	}

	flags := fatvol.OpenFlagsDefault
	if context.Bool("strict") {
		flags |= fatvol.OpenFlagsStrict
	}
	if context.Bool("generic-decoder") {
		flags |= fatvol.OpenFlagsDecodeGeneric
	}

	path := context.Args().First()
	return fat32.Open(
		afero.NewReadOnlyFs(osFs),
		path,
		fat32.Options{
			Flags:  flags,
			Logger: logrus.WithField("image", path),
		})
}

func showInfo(context *cli.Context) error {
	volume, err := openVolume(context)
	if err != nil {
		return err
	}
	defer volume.Close()

	pbs := volume.BootSector
	locator := volume.Locator()
	out := context.App.Writer

	fmt.Fprintf(out, "OEM name:            %q\n", string(pbs.CreatingSystemIdentifier[:]))
	fmt.Fprintf(out, "Volume label:        %q\n", string(pbs.VolumeLabel[:]))
	fmt.Fprintf(out, "Volume ID:           %08X\n", pbs.VolumeIDNumber)
	fmt.Fprintf(out, "Media:               %#02x (%s)\n",
		pbs.MediumIdentifier, fat32.MediaDescriptors[pbs.MediumIdentifier])
	fmt.Fprintf(out, "Sector size:         %d\n", volume.SectorSize())
	fmt.Fprintf(out, "Sectors per cluster: %d\n", volume.SectorsPerCluster())
	fmt.Fprintf(out, "Cluster size:        %d\n", volume.ClusterSize())
	fmt.Fprintf(out, "Total sectors:       %d\n", volume.TotalSectors())
	fmt.Fprintf(out, "Root cluster:        %d\n", volume.RootCluster())
	fmt.Fprintf(out, "Max cluster:         %d\n", locator.MaxCluster())
	fmt.Fprintf(out, "FS info sector:      %d (offset %#x)\n",
		volume.FSInfoSectorNumber(), locator.FsInfoOffset())
	fmt.Fprintf(out, "Backup boot sector:  %d (offset %#x)\n",
		pbs.BackupBootSector, locator.BackupBootSectorOffset())
	fmt.Fprintf(out, "FAT size:            %d bytes\n", locator.FATSize())
	fmt.Fprintf(out, "FAT1 offset:         %#x\n", locator.FAT1Offset())
	fmt.Fprintf(out, "FAT2 offset:         %#x\n", locator.FAT2Offset())
	fmt.Fprintf(out, "Data area offset:    %#x\n", locator.DataAreaOffset())

	if free, ok := volume.FsInfo.FreeClusters(); ok {
		fmt.Fprintf(out, "Free clusters:       %d\n", free)
	} else {
		fmt.Fprintln(out, "Free clusters:       unknown")
	}
	if next, ok := volume.FsInfo.NextFree(); ok {
		fmt.Fprintf(out, "Next free cluster:   %d\n", next)
	} else {
		fmt.Fprintln(out, "Next free cluster:   unknown")
	}
	return nil
}

func checkVolume(context *cli.Context) error {
	volume, err := openVolume(context)
	if err != nil {
		return err
	}
	defer volume.Close()

	out := context.App.Writer
	failed := false
	report := func(name string, err error) {
		if err != nil {
			failed = true
			fmt.Fprintf(out, "%-20s FAIL\n  %s\n", name, err)
		} else {
			fmt.Fprintf(out, "%-20s ok\n", name)
		}
	}

	report("boot sector", volume.BootSector.Validate())
	report("fs info", volume.FsInfo.Validate())

	if volume.BootSector.BackupBootSector == 0 {
		fmt.Fprintf(out, "%-20s absent\n", "backup boot sector")
	} else {
		_, backup, err := volume.ReadBackupBootSector()
		if err == nil {
			err = backup.Validate()
			if err == nil && backup != volume.BootSector {
				err = fatvol.ErrFileSystemCorrupted.WithMessage("backup differs from primary")
			}
		}
		report("backup boot sector", err)
	}

	mirror := fat32.CompareTables(volume.FAT1, volume.FAT2)
	if mirror.Identical() {
		report("fat mirror", nil)
	} else {
		report("fat mirror", fatvol.ErrFileSystemCorrupted.WithMessage(
			fmt.Sprintf("clusters differ: %v", mirror.DifferingClusters())))
	}

	if failed {
		return cli.Exit("volume has errors", 1)
	}
	return nil
}

func dumpFAT(context *cli.Context) error {
	volume, err := openVolume(context)
	if err != nil {
		return err
	}
	defer volume.Close()

	count := context.Uint("count")
	if count == 0 {
		count = volume.FAT1.Len()
	}

	records, err := volume.Entries(fat32.ClusterID(context.Uint("start")), count)
	if err != nil {
		return err
	}
	return fat32.WriteEntriesCSV(context.App.Writer, records)
}

type convertFunc func(input io.Reader, output io.Writer) (int64, error)

func convertImage(context *cli.Context, convert convertFunc) error {
	err := requireArgs(context, "SOURCE", "DEST")
	if err != nil {
		return err
	}
	sourcePath := context.Args().Get(0)
	destPath := context.Args().Get(1)

	source, err := osFs.Open(sourcePath)
	if err != nil {
		return fatvol.ErrOpenFailed.WithMessage(sourcePath).Wrap(err)
	}
	defer source.Close()

	dest, err := osFs.Create(destPath)
	if err != nil {
		return fatvol.ErrOpenFailed.WithMessage(destPath).Wrap(err)
	}

	n, err := convert(source, dest)
	closeErr := dest.Close()
	if err != nil {
		return fatvol.ErrIOFailed.Wrap(err)
	}
	if closeErr != nil {
		return fatvol.ErrIOFailed.Wrap(closeErr)
	}

	logrus.WithFields(logrus.Fields{
		"source": sourcePath,
		"dest":   destPath,
		"bytes":  n,
	}).Info("converted image")
	return nil
}

func packImage(context *cli.Context) error {
	return convertImage(context, compression.CompressImage)
}

func unpackImage(context *cli.Context) error {
	return convertImage(context, compression.DecompressImage)
}
