// Package tmfstore moves containers between disk and memory.
package tmfstore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/samcharles93/tmf/pkg/tmf"
)

// File is a validated container opened from disk.
type File struct {
	data    []byte
	reader  *tmf.Reader
	mmapped bool
}

// Open maps path read-only and validates the container header. When mmap
// is unavailable the file is read into memory instead. The File must be
// closed to release the mapping.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	size, err := fileSize(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err == nil {
		file, verr := newFile(data, true)
		if verr != nil {
			_ = unix.Munmap(data)
			return nil, fmt.Errorf("%s: %w", path, verr)
		}
		return file, nil
	}

	data, err = readAllAt(f, size)
	if err != nil {
		return nil, err
	}
	file, err := newFile(data, false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return file, nil
}

// OpenReaderAt loads and validates a container from r without mmap.
func OpenReaderAt(r io.ReaderAt, size int64) (*File, error) {
	if size < 0 || size > int64(tmf.MaxBufferSize) || size > int64(int(^uint(0)>>1)) {
		return nil, fmt.Errorf("%w: size %d", tmf.ErrBufferTooLarge, size)
	}
	data, err := readAllAt(r, int(size))
	if err != nil {
		return nil, err
	}
	return newFile(data, false)
}

func fileSize(f *os.File) (int, error) {
	stat, err := f.Stat()
	if err != nil {
		return 0, err
	}
	size := stat.Size()
	if size < tmf.HeaderSize {
		return 0, fmt.Errorf("%w: %d bytes", tmf.ErrTruncated, size)
	}
	if size > int64(tmf.MaxBufferSize) || size > int64(int(^uint(0)>>1)) {
		return 0, fmt.Errorf("%w: %d bytes", tmf.ErrBufferTooLarge, size)
	}
	return int(size), nil
}

func newFile(data []byte, mmapped bool) (*File, error) {
	r := tmf.NewReader(data)
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &File{data: data, reader: r, mmapped: mmapped}, nil
}

func readAllAt(r io.ReaderAt, size int) ([]byte, error) {
	data := make([]byte, size)
	n, err := r.ReadAt(data, 0)
	if n == size {
		return data, nil
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return nil, fmt.Errorf("%w: read %d of %d bytes", tmf.ErrTruncated, n, size)
}

// Reader returns the container reader. It must not be used after Close.
func (f *File) Reader() *tmf.Reader {
	return f.reader
}

// Bytes returns the raw container bytes. The slice must not be retained
// after Close.
func (f *File) Bytes() []byte {
	return f.data
}

// Mapped reports whether the bytes are backed by a memory mapping.
func (f *File) Mapped() bool {
	return f.mmapped
}

// Close releases the mapping, if any.
func (f *File) Close() error {
	if f == nil || f.data == nil {
		return nil
	}
	var err error
	if f.mmapped {
		err = unix.Munmap(f.data)
	}
	f.data = nil
	f.reader = nil
	f.mmapped = false
	return err
}

// Load reads path into a growable buffer that can be appended to.
func Load(path string) (*tmf.Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := tmf.NewReader(data).Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tmf.NewBufferFrom(data), nil
}

// Store writes data to path through a temporary file in the same
// directory, so readers never see a partial container.
func Store(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
