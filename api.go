package fatvol

import (
	"bytes"
	"io"
	"strings"

	"github.com/dargueta/fatvol/utilities/compression"
	"github.com/spf13/afero"
	"github.com/xaionaro-go/bytesextra"
)

// CompressedImageSuffix is the file name suffix of images stored with RLE8 and
// gzip, as produced by [compression.CompressImage].
const CompressedImageSuffix = ".rle.gz"

// DataSource is the only thing the volume reader needs from the backing store:
// absolute seeks and bounded reads. Volumes are never written to.
type DataSource interface {
	io.Reader
	io.Seeker
	io.Closer
}

// memorySource adapts an in-memory image to [DataSource].
type memorySource struct {
	io.ReadSeeker
}

func (memorySource) Close() error {
	return nil
}

// NewMemorySource wraps a byte slice so it can be used as a [DataSource]. The
// slice is not copied.
func NewMemorySource(image []byte) DataSource {
	return memorySource{bytesextra.NewReadWriteSeeker(image)}
}

// OpenImage opens the volume image at `path` on `fs`. Images whose name ends in
// [CompressedImageSuffix] are decompressed into memory first.
//
// Any failure is returned as [ErrOpenFailed] wrapping the underlying error.
func OpenImage(fs afero.Fs, path string) (DataSource, error) {
	file, err := fs.Open(path)
	if err != nil {
		return nil, ErrOpenFailed.Wrap(err)
	}

	if !strings.HasSuffix(path, CompressedImageSuffix) {
		return file, nil
	}
	defer file.Close()

	buffer := bytes.Buffer{}
	_, err = compression.DecompressImage(file, &buffer)
	if err != nil {
		return nil, ErrOpenFailed.WithMessage(path).Wrap(err)
	}
	return NewMemorySource(buffer.Bytes()), nil
}
