// Package compression implements the storage format for volume images: RLE8
// followed by gzip.
//
// FAT32 images are dominated by empty sectors and by allocation tables that
// are almost entirely zero. Run-length encoding first and gzipping the result
// shrinks a freshly formatted 32 MiB image to a few hundred bytes.
//
// The run-length encoding is RLE8 as used by the BMP file format: a byte B
// occurring N >= 2 times is written twice, followed by an unsigned byte giving
// how many more times B occurred. For example:
//
//	WXXXXXXXXXXXXXXXYZZ
//	W XX 13 Y ZZ 0
//
// A single group covers at most 257 bytes; longer runs are split, so a run of
// 300 "X" is stored as `XX 255 XX 41`.
package compression
