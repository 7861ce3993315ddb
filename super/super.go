// Package super describes the on-disk layout: block 0 holds the superblock,
// blocks [1, NInodeBlocks] the inode table, and the rest data and indirect
// blocks.
package super

import (
	"github.com/tchajed/marshal"

	"github.com/mit-pdos/go-simplefs/addr"
	"github.com/mit-pdos/go-simplefs/common"
	"github.com/mit-pdos/go-simplefs/disk"
	"github.com/mit-pdos/go-simplefs/util"
)

// FsSuper is the superblock. Fields are stored in this order as little-endian
// uint32s.
type FsSuper struct {
	Magic        uint32
	NBlocks      uint64
	NInodeBlocks uint64
	NInodes      uint64
}

// MkFsSuper computes the layout for a disk of nblocks blocks, reserving a
// tenth of it (rounded up) for inodes.
func MkFsSuper(nblocks uint64) *FsSuper {
	ninodeblocks := util.RoundUp(nblocks, common.INODEFRAC)
	return &FsSuper{
		Magic:        common.MAGIC,
		NBlocks:      nblocks,
		NInodeBlocks: ninodeblocks,
		NInodes:      ninodeblocks * common.INODEBLK,
	}
}

func (fs *FsSuper) Encode() disk.Block {
	enc := marshal.NewEnc(disk.BlockSize)
	enc.PutInt32(fs.Magic)
	enc.PutInt32(uint32(fs.NBlocks))
	enc.PutInt32(uint32(fs.NInodeBlocks))
	enc.PutInt32(uint32(fs.NInodes))
	return enc.Finish()
}

func Decode(blk disk.Block) *FsSuper {
	dec := marshal.NewDec(blk)
	fs := &FsSuper{}
	fs.Magic = dec.GetInt32()
	fs.NBlocks = uint64(dec.GetInt32())
	fs.NInodeBlocks = uint64(dec.GetInt32())
	fs.NInodes = uint64(dec.GetInt32())
	return fs
}

func (fs *FsSuper) MagicOk() bool {
	return fs.Magic == common.MAGIC
}

// InodeStart returns the first block containing inodes.
func (fs *FsSuper) InodeStart() common.Bnum {
	return common.SUPERBLK + 1
}

// DataStart returns the first data block after metadata.
func (fs *FsSuper) DataStart() common.Bnum {
	return fs.InodeStart() + common.Bnum(fs.NInodeBlocks)
}

func (fs *FsSuper) NInode() common.Inum {
	return common.Inum(fs.NInodes)
}

func (fs *FsSuper) ValidInum(inum common.Inum) bool {
	return inum > common.NULLINUM && inum <= fs.NInode()
}

// ValidBlock excludes the superblock but includes the inode table.
func (fs *FsSuper) ValidBlock(bn common.Bnum) bool {
	return bn >= 1 && bn < fs.NBlocks
}

func (fs *FsSuper) ValidDataBlock(bn common.Bnum) bool {
	return fs.ValidBlock(bn) && bn >= fs.DataStart()
}

// Inum2Addr computes the disk address of the given inode number.
func (fs *FsSuper) Inum2Addr(inum common.Inum) addr.Addr {
	return addr.MkSlotAddr(fs.InodeStart(), uint64(inum-1), common.INODESZ)
}

// Addr2Inum is the inverse of Inum2Addr for slot slot of inode block blkno.
func (fs *FsSuper) Addr2Inum(blkno common.Bnum, slot uint64) common.Inum {
	return common.Inum((blkno-fs.InodeStart())*common.INODEBLK + slot + 1)
}
