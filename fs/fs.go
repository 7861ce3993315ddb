// Package fs is a flat inode file system on a block device. Files are named
// by inumber and accessed by byte offset.
//
// An Fs is a single session on one disk and is not safe for concurrent use.
// The free block bitmap exists only in memory: Mount rebuilds it from the
// inode table, and it is dropped with the Fs.
//
// File content is NUL-terminated within each block: reads and writes stop at
// the first zero byte.
package fs

import (
	"errors"

	"github.com/mit-pdos/go-simplefs/alloc"
	"github.com/mit-pdos/go-simplefs/bmap"
	"github.com/mit-pdos/go-simplefs/common"
	"github.com/mit-pdos/go-simplefs/disk"
	"github.com/mit-pdos/go-simplefs/inode"
	"github.com/mit-pdos/go-simplefs/super"
)

var (
	ErrNotMounted     = errors.New("file system not mounted")
	ErrAlreadyMounted = errors.New("file system already mounted")
	ErrInvalidMagic   = errors.New("invalid magic number")
	ErrInvalidInumber = inode.ErrInvalidInumber
	ErrNoInodes       = inode.ErrNoInodes
	ErrDiskFull       = errors.New("disk full")
	ErrFileTooLarge   = errors.New("file too large")
	ErrDiskTooSmall   = errors.New("disk too small to format")
	ErrDiskTooLarge   = errors.New("disk too large to format")
)

type Fs struct {
	d       disk.Disk
	mounted bool

	// valid while mounted
	sb     *super.FsSuper
	alloc  *alloc.Alloc
	inodes *inode.Table
	bmap   *bmap.Mapper
}

// MkFs attaches a session to d. The file system is not mounted.
func MkFs(d disk.Disk) *Fs {
	return &Fs{d: d}
}

func (fs *Fs) Mounted() bool {
	return fs.mounted
}

// Super returns the mounted superblock, or nil.
func (fs *Fs) Super() *super.FsSuper {
	if !fs.mounted {
		return nil
	}
	sb := *fs.sb
	return &sb
}

// NumFree reports how many blocks the bitmap has free.
func (fs *Fs) NumFree() uint64 {
	if !fs.mounted {
		return 0
	}
	return fs.alloc.NumFree()
}

// IsBusy reports whether the bitmap has block bn in use.
func (fs *Fs) IsBusy(bn common.Bnum) bool {
	if !fs.mounted {
		return false
	}
	return fs.alloc.IsUsed(bn)
}

// loadValid loads an allocated inode.
func (fs *Fs) loadValid(inum common.Inum) (*inode.Inode, error) {
	if !fs.mounted {
		return nil, ErrNotMounted
	}
	ip, err := fs.inodes.Load(inum)
	if err != nil {
		return nil, err
	}
	if !ip.Valid {
		return nil, ErrInvalidInumber
	}
	return ip, nil
}
