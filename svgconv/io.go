package svgconv

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/benoitkugler/svg2jpeg/svgerr"
)

const (
	stdinName  = "<stdin>"
	stdoutName = "<stdout>"
)

// Source provides the complete input document.
type Source interface {
	Name() string
	ReadAll() ([]byte, error)
}

// Sink receives the complete encoded output.
type Sink interface {
	Name() string
	Write(data []byte) error
}

// NewSource reads the file at path, or r when path is empty.
func NewSource(path string, r io.Reader) Source {
	if path == "" {
		return StreamSource{R: r}
	}
	return FileSource{Path: path}
}

// NewSink writes the file at path, or w when path is empty.
func NewSink(path string, w io.Writer) Sink {
	if path == "" {
		return StreamSink{W: w}
	}
	return FileSink{Path: path}
}

// FileSource reads a whole file.
type FileSource struct{ Path string }

func (s FileSource) Name() string { return s.Path }

func (s FileSource) ReadAll() ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, svgerr.IO(s.Path, err, "failed to read input file")
	}
	return data, nil
}

// StreamSource reads a stream until EOF.
type StreamSource struct {
	R     io.Reader
	Label string // defaults to "<stdin>"
}

func (s StreamSource) Name() string {
	if s.Label == "" {
		return stdinName
	}
	return s.Label
}

func (s StreamSource) ReadAll() ([]byte, error) {
	if s.R == nil {
		return nil, svgerr.IO(s.Name(), os.ErrInvalid, "failed to read from")
	}
	data, err := io.ReadAll(s.R)
	if err != nil {
		return nil, svgerr.IO(s.Name(), err, "failed to read from")
	}
	return data, nil
}

// FileSink writes the file at Path. Symbolic links are followed. A regular
// or missing destination is replaced through a synced temporary file in the
// same directory, so it either keeps its previous content or holds the
// complete new one; an existing file keeps its permission bits. Other
// destinations, such as devices, are opened and written directly.
type FileSink struct{ Path string }

func (s FileSink) Name() string { return s.Path }

func (s FileSink) Write(data []byte) error {
	target, err := filepath.EvalSymlinks(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		target = s.Path
	} else if err != nil {
		return svgerr.IO(s.Path, err, "failed to write output file")
	}

	mode := fs.FileMode(0o644)
	if fi, err := os.Stat(target); err == nil {
		if !fi.Mode().IsRegular() {
			return s.writeDirect(target, data)
		}
		mode = fi.Mode().Perm()
	}
	return s.replace(target, mode, data)
}

func (s FileSink) writeDirect(target string, data []byte) error {
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return svgerr.IO(s.Path, err, "failed to write output file")
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return svgerr.IO(s.Path, err, "failed to write output file")
	}
	if err := f.Close(); err != nil {
		return svgerr.IO(s.Path, err, "failed to write output file")
	}
	return nil
}

func (s FileSink) replace(target string, mode fs.FileMode, data []byte) (err error) {
	dir, base := filepath.Split(target)
	if dir == "" {
		dir = "."
	}
	f, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return svgerr.IO(s.Path, err, "failed to write output file")
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmp)
		}
	}()

	if _, err = f.Write(data); err != nil {
		return svgerr.IO(s.Path, err, "failed to write output file")
	}
	if err = f.Chmod(mode); err != nil {
		return svgerr.IO(s.Path, err, "failed to write output file")
	}
	if err = f.Sync(); err != nil {
		return svgerr.IO(s.Path, err, "failed to write output file")
	}
	if err = f.Close(); err != nil {
		return svgerr.IO(s.Path, err, "failed to write output file")
	}
	if err = os.Rename(tmp, target); err != nil {
		return svgerr.IO(s.Path, err, "failed to write output file")
	}
	return nil
}

// StreamSink writes the whole buffer to a stream in one call.
type StreamSink struct {
	W     io.Writer
	Label string // defaults to "<stdout>"
}

func (s StreamSink) Name() string {
	if s.Label == "" {
		return stdoutName
	}
	return s.Label
}

func (s StreamSink) Write(data []byte) error {
	if s.W == nil {
		return svgerr.IO(s.Name(), os.ErrInvalid, "failed to write to")
	}
	n, err := s.W.Write(data)
	if err == nil && n != len(data) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return svgerr.IO(s.Name(), err, "failed to write to")
	}
	return nil
}
