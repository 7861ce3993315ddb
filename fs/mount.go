package fs

import (
	"fmt"

	"github.com/mit-pdos/go-simplefs/alloc"
	"github.com/mit-pdos/go-simplefs/bmap"
	"github.com/mit-pdos/go-simplefs/common"
	"github.com/mit-pdos/go-simplefs/disk"
	"github.com/mit-pdos/go-simplefs/inode"
	"github.com/mit-pdos/go-simplefs/super"
	"github.com/mit-pdos/go-simplefs/util"
)

// Format writes a new superblock and zeroes every other block, destroying
// any existing content. It does not mount.
func (fs *Fs) Format() error {
	if fs.mounted {
		return ErrAlreadyMounted
	}
	nblocks := fs.d.Size()
	if nblocks < 2 {
		return fmt.Errorf("%w: `%d` blocks", ErrDiskTooSmall, nblocks)
	}
	sb := super.MkFsSuper(nblocks)
	if sb.NInodes > common.MAXSIZE {
		return fmt.Errorf("%w: `%d` blocks", ErrDiskTooLarge, nblocks)
	}
	util.DPrintf(1, "Format: %d blocks %d inode blocks %d inodes\n",
		sb.NBlocks, sb.NInodeBlocks, sb.NInodes)
	fs.d.Write(common.SUPERBLK, sb.Encode())
	zero := disk.MkBlock()
	for bn := common.SUPERBLK + 1; bn < nblocks; bn++ {
		fs.d.Write(bn, zero)
	}
	return nil
}

// Mount reads the superblock and rebuilds the free block bitmap. Mounting a
// mounted file system does nothing.
func (fs *Fs) Mount() error {
	if fs.mounted {
		return nil
	}
	if fs.d.Size() == 0 {
		return fmt.Errorf("%w: empty device", ErrInvalidMagic)
	}
	sb := super.Decode(fs.d.Read(common.SUPERBLK))
	if !sb.MagicOk() {
		return fmt.Errorf("%w: `%#x`", ErrInvalidMagic, sb.Magic)
	}
	if sb.NBlocks > fs.d.Size() || sb.NInodeBlocks >= sb.NBlocks {
		return fmt.Errorf(
			"%w: superblock describes `%d` blocks (`%d` inode blocks) on a "+
				"`%d` block disk",
			ErrInvalidMagic,
			sb.NBlocks,
			sb.NInodeBlocks,
			fs.d.Size(),
		)
	}
	if sb.NInodes != sb.NInodeBlocks*common.INODEBLK {
		return fmt.Errorf(
			"%w: superblock describes `%d` inodes in `%d` inode blocks",
			ErrInvalidMagic,
			sb.NInodes,
			sb.NInodeBlocks,
		)
	}
	fs.sb = sb
	fs.inodes = inode.MkTable(fs.d, sb)
	fs.bmap = bmap.MkMapper(fs.d, sb, fs.inodes)
	fs.alloc = alloc.MkMaxAlloc(sb.NBlocks)
	fs.rebuildBitmap()
	fs.mounted = true
	util.DPrintf(1, "Mount: %d of %d blocks free\n", fs.alloc.NumFree(), sb.NBlocks)
	return nil
}

// rebuildBitmap marks the superblock, the inode table, and every block a
// valid inode points to (directly or through its indirect block) as used.
func (fs *Fs) rebuildBitmap() {
	fs.alloc.Reset(fs.sb.NInodeBlocks)

	var indirects []common.Bnum
	fs.inodes.Scan(func(inum common.Inum, ip *inode.Inode) bool {
		if !ip.Valid {
			return true
		}
		for _, bn := range ip.Direct {
			fs.markUsed(bn)
		}
		if fs.sb.ValidDataBlock(ip.Indirect) {
			indirects = append(indirects, ip.Indirect)
		}
		return true
	})

	for _, ind := range indirects {
		fs.markUsed(ind)
		for _, bn := range fs.bmap.IndirectPointers(ind) {
			fs.markUsed(bn)
		}
	}
	util.DPrintf(5, "rebuildBitmap: %d indirect blocks\n", len(indirects))
}

// markUsed records a block pointer found on disk. Pointers outside the volume
// or to the superblock are ignored.
func (fs *Fs) markUsed(bn common.Bnum) {
	if fs.sb.ValidBlock(bn) {
		fs.alloc.MarkUsed(bn)
	}
}
