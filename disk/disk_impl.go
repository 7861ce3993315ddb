package disk

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/mit-pdos/go-simplefs/util"
)

var _ Disk = (*FileDisk)(nil)

// FileDisk is a disk image stored in a regular file (or a block device).
type FileDisk struct {
	fd        int
	numBlocks uint64
}

// NewFileDisk opens the image at path, creating it if needed, and sizes it to
// numBlocks blocks.
func NewFileDisk(path string, numBlocks uint64) (*FileDisk, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CREAT, 0666)
	if err != nil {
		return nil, fmt.Errorf("opening disk image `%s`: %w", path, err)
	}
	var stat unix.Stat_t
	err = unix.Fstat(fd, &stat)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("stat disk image `%s`: %w", path, err)
	}
	if (stat.Mode&unix.S_IFMT) == unix.S_IFREG &&
		uint64(stat.Size) != numBlocks*BlockSize {
		err = unix.Ftruncate(fd, int64(numBlocks*BlockSize))
		if err != nil {
			unix.Close(fd)
			return nil, fmt.Errorf(
				"resizing disk image `%s` to `%d` blocks: %w",
				path,
				numBlocks,
				err,
			)
		}
	}
	util.DPrintf(1, "NewFileDisk: %s %d blocks\n", path, numBlocks)
	return &FileDisk{fd, numBlocks}, nil
}

// OpenFileDisk opens an existing image and takes its size from the end of
// the file or device.
func OpenFileDisk(path string) (*FileDisk, error) {
	fd, err := unix.Open(path, unix.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("opening disk image `%s`: %w", path, err)
	}
	end, err := unix.Seek(fd, 0, unix.SEEK_END)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("sizing disk image `%s`: %w", path, err)
	}
	numBlocks := uint64(end) / BlockSize
	util.DPrintf(1, "OpenFileDisk: %s %d blocks\n", path, numBlocks)
	return &FileDisk{fd, numBlocks}, nil
}

func (d *FileDisk) ReadTo(a uint64, buf Block) {
	if uint64(len(buf)) != BlockSize {
		panic("buffer is not block-sized")
	}
	if a >= d.numBlocks {
		panic(fmt.Errorf("out-of-bounds read at %v", a))
	}
	_, err := unix.Pread(d.fd, buf, int64(a*BlockSize))
	if err != nil {
		panic("read failed: " + err.Error())
	}
	util.DPrintf(20, "read: %v\n", a)
}

func (d *FileDisk) Read(a uint64) Block {
	buf := make([]byte, BlockSize)
	d.ReadTo(a, buf)
	return buf
}

func (d *FileDisk) Write(a uint64, v Block) {
	if uint64(len(v)) != BlockSize {
		panic(fmt.Errorf("v is not block sized (%d bytes)", len(v)))
	}
	if a >= d.numBlocks {
		panic(fmt.Errorf("out-of-bounds write at %v", a))
	}
	_, err := unix.Pwrite(d.fd, v, int64(a*BlockSize))
	if err != nil {
		panic("write failed: " + err.Error())
	}
	util.DPrintf(20, "write: %v\n", a)
}

func (d *FileDisk) Size() uint64 {
	return d.numBlocks
}

// Barrier ensures data is persisted.
func (d *FileDisk) Barrier() {
	// NOTE: on macOS, this flushes to the drive but doesn't actually issue a
	// disk barrier; see https://golang.org/src/internal/poll/fd_fsync_darwin.go
	// for more details. The correct replacement is to issue a fcntl syscall with
	// cmd F_FULLFSYNC.
	err := unix.Fsync(d.fd)
	if err != nil {
		panic("file sync failed: " + err.Error())
	}
}

func (d *FileDisk) Close() error {
	return unix.Close(d.fd)
}
