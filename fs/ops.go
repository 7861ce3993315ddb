package fs

import (
	"github.com/mit-pdos/go-simplefs/common"
	"github.com/mit-pdos/go-simplefs/disk"
	"github.com/mit-pdos/go-simplefs/inode"
	"github.com/mit-pdos/go-simplefs/util"
)

// Create allocates a zero-length file and returns its inumber.
func (fs *Fs) Create() (common.Inum, error) {
	if !fs.mounted {
		return common.NULLINUM, ErrNotMounted
	}
	return fs.inodes.Create()
}

// Delete frees inum's data and indirect blocks, zeroing their content, and
// clears the inode.
func (fs *Fs) Delete(inum common.Inum) error {
	ip, err := fs.loadValid(inum)
	if err != nil {
		return err
	}
	bl := fs.bmap.ResolveInode(ip)
	zero := disk.MkBlock()
	if fs.sb.ValidDataBlock(bl.Indirect) {
		fs.alloc.FreeNum(bl.Indirect)
		fs.d.Write(bl.Indirect, zero)
	}
	for _, bn := range bl.Blocks {
		fs.alloc.FreeNum(bn)
		fs.d.Write(bn, zero)
	}
	util.DPrintf(1, "Delete: %d freed %d blocks\n", inum, bl.Len())
	return fs.inodes.Save(inum, &inode.Inode{})
}

// GetSize returns the size recorded in inum's inode.
func (fs *Fs) GetSize(inum common.Inum) (uint64, error) {
	ip, err := fs.loadValid(inum)
	if err != nil {
		return 0, err
	}
	return ip.Size, nil
}
