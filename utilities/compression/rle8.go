package compression

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// maxRunPerGroup is the longest run a single three-byte group can express:
// the two literal bytes plus a repeat count of up to 255.
const maxRunPerGroup = 257

// runWriter accumulates a run of identical bytes and emits it as RLE8 groups.
type runWriter struct {
	output       io.Writer
	value        byte
	length       int
	bytesWritten int64
}

func (w *runWriter) write(data ...byte) error {
	n, err := w.output.Write(data)
	w.bytesWritten += int64(n)
	return err
}

// flush writes out the pending run, if any.
func (w *runWriter) flush() error {
	for w.length >= 2 {
		group := w.length
		if group > maxRunPerGroup {
			group = maxRunPerGroup
		}
		err := w.write(w.value, w.value, byte(group-2))
		if err != nil {
			return err
		}
		w.length -= group
	}

	if w.length == 1 {
		w.length = 0
		return w.write(w.value)
	}
	return nil
}

// CompressRLE8 reads bytes from the input and writes compressed data to the
// output until the input is exhausted. The return value is the number of bytes
// written, only valid if no error occurred.
func CompressRLE8(input io.Reader, output io.Writer) (int64, error) {
	source := bufio.NewReader(input)
	run := runWriter{output: output}

	for {
		currentByte, err := source.ReadByte()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return run.bytesWritten, err
			}
			return run.bytesWritten, run.flush()
		}

		if run.length > 0 && currentByte == run.value {
			run.length++
			continue
		}

		err = run.flush()
		if err != nil {
			return run.bytesWritten, err
		}
		run.value = currentByte
		run.length = 1
	}
}

// DecompressRLE8 reverses [CompressRLE8]. A stream that ends right after two
// identical bytes is truncated and fails with an error wrapping
// [io.ErrUnexpectedEOF].
func DecompressRLE8(input io.Reader, output io.Writer) (int64, error) {
	source := bufio.NewReader(input)
	previous := -1
	totalBytesWritten := int64(0)

	for {
		currentByte, err := source.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return totalBytesWritten, nil
			}
			return totalBytesWritten, fmt.Errorf("error reading input: %w", err)
		}

		var chunk []byte
		if int(currentByte) == previous {
			repeatCount, err := source.ReadByte()
			if err != nil {
				if errors.Is(err, io.EOF) {
					err = fmt.Errorf(
						"%w: missing repeat count after two %02x bytes",
						io.ErrUnexpectedEOF,
						currentByte,
					)
				}
				return totalBytesWritten, err
			}

			// One copy of the byte went out on the previous iteration.
			chunk = bytes.Repeat([]byte{currentByte}, int(repeatCount)+1)
			previous = -1
		} else {
			chunk = []byte{currentByte}
			previous = int(currentByte)
		}

		n, err := output.Write(chunk)
		totalBytesWritten += int64(n)
		if err != nil {
			return totalBytesWritten, fmt.Errorf("failed to write to output: %w", err)
		}
	}
}
