package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"
)

// osFs is where images are read from and written to. Tests swap it out.
var osFs = afero.NewOsFs()

func main() {
	app := newApp()
	err := app.Run(os.Args)
	if err != nil {
		logrus.Fatalf("fatal error: %s", err.Error())
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "fatvol",
		Usage: "Inspect FAT32 volume images",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "one of panic, fatal, error, warn, info, debug, trace",
				Value:   "warn",
				EnvVars: []string{"FATVOL_LOG_LEVEL"},
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "shorthand for --log-level=debug",
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "refuse to open volumes that fail validation",
			},
			&cli.BoolFlag{
				Name:  "generic-decoder",
				Usage: "decode sectors with the reflection-based decoder",
			},
		},
		Before: setUpLogging,
		Commands: []*cli.Command{
			{
				Name:      "info",
				Usage:     "Print the geometry and layout of a volume",
				Action:    showInfo,
				ArgsUsage: "IMAGE",
			},
			{
				Name:      "check",
				Usage:     "Validate the boot structures and compare the FAT copies",
				Action:    checkVolume,
				ArgsUsage: "IMAGE",
			},
			{
				Name:      "fat",
				Usage:     "Dump allocation table entries as CSV",
				Action:    dumpFAT,
				ArgsUsage: "IMAGE",
				Flags: []cli.Flag{
					&cli.UintFlag{
						Name:  "start",
						Usage: "first cluster to dump",
						Value: 0,
					},
					&cli.UintFlag{
						Name:  "count",
						Usage: "number of entries to dump, 0 for all",
						Value: 0,
					},
				},
			},
			{
				Name:      "pack",
				Usage:     "Compress an image using RLE8 and gzip",
				Action:    packImage,
				ArgsUsage: "SOURCE DEST",
			},
			{
				Name:      "unpack",
				Usage:     "Expand an image compressed with `pack`",
				Action:    unpackImage,
				ArgsUsage: "SOURCE DEST",
			},
		},
	}
}

func setUpLogging(context *cli.Context) error {
	if context.Bool("verbose") {
		logrus.SetLevel(logrus.DebugLevel)
		return nil
	}

	level, err := logrus.ParseLevel(context.String("log-level"))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	logrus.SetLevel(level)
	return nil
}
