package common

import (
	"errors"
	"fmt"
	"io"

	"github.com/dargueta/fatvol"
)

// SectorReader wraps a seekable stream to give exact-length reads at absolute
// byte offsets. A read either returns exactly the requested number of bytes or
// fails; there are no partial results.
//
// The total size of the stream is determined once, up front, so that reads
// extending past the end fail before any memory is allocated for them.
type SectorReader struct {
	stream   io.ReadSeeker
	size     int64
	position int64
}

// NewSectorReader creates a SectorReader over `stream`, leaving the stream
// positioned at offset 0.
func NewSectorReader(stream io.ReadSeeker) (*SectorReader, error) {
	size, err := stream.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fatvol.ErrIOFailed.Wrap(err)
	}

	_, err = stream.Seek(0, io.SeekStart)
	if err != nil {
		return nil, fatvol.ErrIOFailed.Wrap(err)
	}
	return &SectorReader{stream: stream, size: size}, nil
}

// Size gives the total size of the stream, in bytes.
func (r *SectorReader) Size() int64 {
	return r.size
}

// Position gives the offset the next call to [SectorReader.ReadNext] will read
// from.
func (r *SectorReader) Position() int64 {
	return r.position
}

// CheckIOBounds checks to see if `length` bytes can be read starting at
// `offset`. If not, it returns an error indicating exactly what went wrong.
func (r *SectorReader) CheckIOBounds(offset, length int64) error {
	if offset < 0 || length < 0 {
		return fatvol.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("invalid read of %d bytes at offset %d", length, offset))
	}

	if offset > r.size || length > r.size-offset {
		available := r.size - offset
		if available < 0 {
			available = 0
		}
		return fatvol.ErrShortRead.WithMessage(
			fmt.Sprintf(
				"wanted %d bytes at offset %d, only %d available",
				length,
				offset,
				available))
	}
	return nil
}

// ReadAt seeks to `offset` and reads exactly `length` bytes.
func (r *SectorReader) ReadAt(offset, length int64) ([]byte, error) {
	err := r.CheckIOBounds(offset, length)
	if err != nil {
		return nil, err
	}

	_, err = r.stream.Seek(offset, io.SeekStart)
	if err != nil {
		return nil, fatvol.ErrIOFailed.Wrap(err)
	}
	r.position = offset
	return r.ReadNext(length)
}

// ReadNext reads exactly `length` bytes from wherever the previous read ended.
func (r *SectorReader) ReadNext(length int64) ([]byte, error) {
	err := r.CheckIOBounds(r.position, length)
	if err != nil {
		return nil, err
	}

	buffer := make([]byte, length)
	bytesRead, err := io.ReadFull(r.stream, buffer)
	r.position += int64(bytesRead)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fatvol.ErrShortRead.WithMessage(
				fmt.Sprintf("wanted %d bytes, got %d", length, bytesRead)).Wrap(err)
		}
		return nil, fatvol.ErrIOFailed.Wrap(err)
	}
	return buffer, nil
}
