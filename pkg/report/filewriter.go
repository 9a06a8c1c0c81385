// Copyright 2020 Daniel Erat <dan@erat.org>.
// All rights reserved.

package report

import (
	"io/ioutil"
	"os"
	"path/filepath"
)

// FileWriter writes to a temp file and later atomically renames it.
// If a write error occurs, it is saved internally and future writes become no-ops.
type FileWriter struct {
	p    string   // target filename
	f    *os.File // temp file
	werr error    // first error encountered while writing
}

// NewFileWriter returns a FileWriter that will write to p.
func NewFileWriter(p string) (*FileWriter, error) {
	f, err := ioutil.TempFile(filepath.Dir(p), filepath.Base(p)+".*")
	if err != nil {
		return nil, err
	}
	return &FileWriter{p, f, nil}, nil
}

// Write implements io.Writer. After the first error every call fails with it.
func (fw *FileWriter) Write(b []byte) (int, error) {
	if fw.werr != nil {
		return 0, fw.werr
	}
	var n int
	n, fw.werr = fw.f.Write(b)
	return n, fw.werr
}

// Close renames the temp file to the path originally supplied to NewFileWriter.
// If a write error occurred earlier, it is returned and the target is untouched.
func (fw *FileWriter) Close() error {
	defer os.Remove(fw.f.Name()) // no-op on success
	cerr := fw.f.Close()
	if fw.werr != nil {
		return fw.werr
	}
	if cerr != nil {
		return cerr
	}
	return os.Rename(fw.f.Name(), fw.p)
}

// WriteFile runs fn against a FileWriter for p. The file only appears at p
// if fn succeeds.
func WriteFile(p string, fn func(fw *FileWriter) error) error {
	fw, err := NewFileWriter(p)
	if err != nil {
		return err
	}
	if err := fn(fw); err != nil {
		fw.werr = err
		fw.Close()
		return err
	}
	return fw.Close()
}
