package fs

import (
	"github.com/mit-pdos/go-simplefs/bmap"
	"github.com/mit-pdos/go-simplefs/common"
	"github.com/mit-pdos/go-simplefs/disk"
	"github.com/mit-pdos/go-simplefs/util"
)

// copyToNul copies from src into dst until either runs out or src has a zero
// byte. It reports whether it stopped at a zero byte.
func copyToNul(dst []byte, src []byte) (uint64, bool) {
	var n uint64
	for n < uint64(len(dst)) && n < uint64(len(src)) {
		if src[n] == 0 {
			return n, true
		}
		dst[n] = src[n]
		n++
	}
	return n, false
}

// Read copies up to len(p) bytes of inum starting at off into p. It stops at
// the end of the file's blocks or at the first zero byte, and returns the
// number of bytes copied.
func (fs *Fs) Read(inum common.Inum, p []byte, off uint64) (int, error) {
	ip, err := fs.loadValid(inum)
	if err != nil {
		return 0, err
	}
	bl := fs.bmap.ResolveInode(ip)

	var n uint64
	length := uint64(len(p))
	boff := off % disk.BlockSize
	for i := off / disk.BlockSize; i < bl.Len() && n < length; i++ {
		blk := fs.d.Read(bl.Blocks[i])
		m, nul := copyToNul(p[n:], blk[boff:])
		n += m
		boff = 0
		if nul || m == 0 {
			break
		}
	}
	util.DPrintf(5, "Read: %d off %d: %d of %d bytes\n", inum, off, n, length)
	return int(n), nil
}

// grow allocates blocks until bl reaches logical block lbn, adding the
// indirect block when the direct pointers run out.
func (fs *Fs) grow(bl *bmap.BlockList, lbn uint64) error {
	for bl.Len() <= lbn {
		if bl.NeedsIndirect() {
			bn := fs.alloc.AllocNum()
			if bn == common.NULLBNUM {
				return ErrDiskFull
			}
			bl.Indirect = bn
		}
		bn := fs.alloc.AllocNum()
		if bn == common.NULLBNUM {
			return ErrDiskFull
		}
		bl.Append(bn)
	}
	return nil
}

// writeBlock copies src into block bn at boff, up to the end of the block or
// the first zero byte in src.
func (fs *Fs) writeBlock(bn common.Bnum, src []byte, boff uint64) uint64 {
	blk := fs.d.Read(bn)
	n, _ := copyToNul(blk[boff:], src)
	if n > 0 {
		fs.d.Write(bn, blk)
	}
	return n
}

// growSize adds n to size, saturating at the largest size an inode stores.
func growSize(size uint64, n uint64) uint64 {
	if n > common.MAXSIZE || size > common.MAXSIZE-n {
		return common.MAXSIZE
	}
	return size + n
}

// Write copies p into inum at off, allocating blocks as needed, and returns
// the number of bytes written. A write that runs out of space, reaches the
// maximum file size, or meets a zero byte in p stops early; the error says
// why, except for the zero byte. The inode's size grows by the bytes written,
// stopping at common.MAXSIZE.
func (fs *Fs) Write(inum common.Inum, p []byte, off uint64) (int, error) {
	if !fs.mounted {
		return 0, ErrNotMounted
	}
	if !fs.sb.ValidInum(inum) {
		return 0, ErrInvalidInumber
	}
	if len(p) == 0 {
		return 0, nil
	}
	if fs.alloc.IsFull() {
		return 0, ErrDiskFull
	}
	ip, err := fs.loadValid(inum)
	if err != nil {
		return 0, err
	}
	bl := fs.bmap.ResolveInode(ip)

	var n uint64
	length := uint64(len(p))
	for n < length {
		pos := off + n
		lbn := pos / disk.BlockSize
		if lbn >= common.MAXFILEBLKS {
			err = ErrFileTooLarge
			break
		}
		if err = fs.grow(bl, lbn); err != nil {
			break
		}
		m := fs.writeBlock(bl.Blocks[lbn], p[n:], pos%disk.BlockSize)
		if m == 0 {
			break
		}
		n += m
	}

	fs.bmap.Commit(ip, bl)
	ip.Size = growSize(ip.Size, n)
	if serr := fs.inodes.Save(inum, ip); serr != nil {
		return int(n), serr
	}
	util.DPrintf(5, "Write: %d off %d: %d of %d bytes\n", inum, off, n, length)
	return int(n), err
}
