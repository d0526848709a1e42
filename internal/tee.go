package internal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Tee duplicates report output to a primary writer and a UTF-8 text file for
// the lifetime of one run. Close flushes and closes the file; the primary
// writer is left open.
type Tee struct {
	io.Writer
	path string
	file *os.File
	buf  *bufio.Writer
}

// OpenTee creates (truncating) the file at path and returns a writer feeding both.
func OpenTee(primary io.Writer, path string) (*Tee, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	buf := bufio.NewWriter(f)
	return &Tee{
		Writer: io.MultiWriter(primary, buf),
		path:   path,
		file:   f,
		buf:    buf,
	}, nil
}

// Path returns the file the tee writes to
func (t *Tee) Path() string {
	return t.path
}

// Close flushes buffered output and closes the file
func (t *Tee) Close() error {
	flushErr := t.buf.Flush()
	closeErr := t.file.Close()
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}
