package common

import (
	"math"

	"github.com/tchajed/goose/machine/disk"
)

const (
	MAGIC uint32 = 0xf0f03410

	INODESZ  uint64 = 32 // on-disk size
	INODEBLK uint64 = disk.BlockSize / INODESZ
	NDIRECT  uint64 = 5

	BNUMSZ   uint64 = 4 // on-disk size of a block pointer
	NBNUMBLK uint64 = disk.BlockSize / BNUMSZ

	MAXFILEBLKS = NDIRECT + NBNUMBLK

	// largest file size and volume field the 32-bit on-disk format holds
	MAXSIZE uint64 = math.MaxUint32

	// fraction of the disk reserved for the inode table, as 1/INODEFRAC
	INODEFRAC uint64 = 10
)

type Inum uint64
type Bnum = uint64

const (
	NULLINUM Inum = 0
	NULLBNUM Bnum = 0
)

const SUPERBLK Bnum = 0

func BlockSize() uint64 {
	return disk.BlockSize
}
