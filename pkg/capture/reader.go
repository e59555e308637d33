package capture

import (
	"DumpSpectra/internal/model"
	"bufio"
	"errors"
	"fmt"
	"iter"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// ErrInputUnavailable marks a capture file that is missing or unreadable.
var ErrInputUnavailable = errors.New("capture input unavailable")

// maxLineSize bounds a single capture line; longer lines are reported as a read error.
const maxLineSize = 1 << 20

// Reader reads the lines of a text capture file.
type Reader struct {
	path string
	err  error
}

// NewReader creates a new reader for the given file path. The file is not
// opened until Lines is iterated.
func NewReader(path string) *Reader {
	return &Reader{path: path}
}

// Err returns the error of the last iteration, wrapped with ErrInputUnavailable.
func (r *Reader) Err() error {
	return r.err
}

// Lines returns a lazy sequence over the file's lines. Each iteration reopens
// the file and starts from the first line. A file that cannot be read yields
// an empty sequence; the failure is logged and kept for Err.
func (r *Reader) Lines() iter.Seq[model.RawLine] {
	return func(yield func(model.RawLine) bool) {
		r.err = nil

		file, err := os.Open(r.path)
		if err != nil {
			r.fail(err)
			return
		}
		defer file.Close()

		scanner := bufio.NewScanner(file)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

		n := 0
		for scanner.Scan() {
			n++
			text := strings.TrimSuffix(scanner.Text(), "\r")
			if !yield(model.RawLine{Number: n, Text: text}) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			r.fail(fmt.Errorf("after line %d: %w", n, err))
		}
	}
}

func (r *Reader) fail(err error) {
	r.err = fmt.Errorf("%w: %s: %w", ErrInputUnavailable, r.path, err)
	log.WithError(err).WithField("path", r.path).Warn("Capture could not be read, continuing with the lines read so far")
}
