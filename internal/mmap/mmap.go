package mmap

import (
	"errors"
	"io"
	"os"
	"sync"
)

// ErrInvalidOffset is returned by ReadAt for a negative offset.
var ErrInvalidOffset = errors.New("mmap: invalid offset")

// File is a read-only mapping of a whole file.
type File struct {
	data   []byte
	mapped bool
	once   sync.Once
	err    error
}

// Open maps the file at path into memory as read-only.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}

	size := fi.Size()
	if size < 0 {
		return nil, errors.New("mmap: file size is negative")
	}
	if size == 0 {
		return &File{}, nil
	}

	data, mapped, err := mmap(f, int(size))
	if err != nil {
		return nil, err
	}

	return &File{data: data, mapped: mapped}, nil
}

// Bytes returns the mapped contents. The slice must not be modified.
func (m *File) Bytes() []byte { return m.data }

// Size returns the length of the mapping in bytes.
func (m *File) Size() int { return len(m.data) }

// ReadAt implements io.ReaderAt.
func (m *File) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, ErrInvalidOffset
	}
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Close releases the mapping.
func (m *File) Close() error {
	if m == nil {
		return nil
	}
	m.once.Do(func() {
		if m.mapped && m.data != nil {
			m.err = munmap(m.data)
		}
		m.data = nil
	})
	return m.err
}
