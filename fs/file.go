package fs

import (
	"errors"
	"io"

	"github.com/mit-pdos/go-simplefs/common"
)

var errNegativeOffset = errors.New("negative offset")

// File adapts one inode to io.ReaderAt and io.WriterAt.
type File struct {
	fs   *Fs
	inum common.Inum
}

var _ io.ReaderAt = (*File)(nil)
var _ io.WriterAt = (*File)(nil)

// Open returns a File for an allocated inode.
func (fs *Fs) Open(inum common.Inum) (*File, error) {
	if _, err := fs.loadValid(inum); err != nil {
		return nil, err
	}
	return &File{fs: fs, inum: inum}, nil
}

func (f *File) Inum() common.Inum {
	return f.inum
}

func (f *File) Size() (uint64, error) {
	return f.fs.GetSize(f.inum)
}

// ReadAt returns io.EOF when it reads less than len(p).
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errNegativeOffset
	}
	n, err := f.fs.Read(f.inum, p, uint64(off))
	if err == nil && n < len(p) {
		err = io.EOF
	}
	return n, err
}

// WriteAt returns io.ErrShortWrite when a zero byte in p ends the write.
func (f *File) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errNegativeOffset
	}
	n, err := f.fs.Write(f.inum, p, uint64(off))
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	return n, err
}
