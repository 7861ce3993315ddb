// Package bmap maps an inode's direct and indirect pointers to the ordered
// list of data blocks holding the file's content.
//
// The indirect block is read densely from index 0: the first entry that is
// not a valid data block ends the list, even if later entries are valid.
// Direct pointers are different; an invalid direct slot is skipped.
package bmap

import (
	"github.com/mit-pdos/go-simplefs/addr"
	"github.com/mit-pdos/go-simplefs/buf"
	"github.com/mit-pdos/go-simplefs/common"
	"github.com/mit-pdos/go-simplefs/disk"
	"github.com/mit-pdos/go-simplefs/inode"
	"github.com/mit-pdos/go-simplefs/super"
	"github.com/mit-pdos/go-simplefs/util"
)

// BlockList is a file's data blocks in logical order, plus its indirect block
// (NULLBNUM if none).
type BlockList struct {
	Indirect common.Bnum
	Blocks   []common.Bnum
}

func (bl *BlockList) Len() uint64 {
	return uint64(len(bl.Blocks))
}

// Append adds bn as the next logical block.
func (bl *BlockList) Append(bn common.Bnum) {
	bl.Blocks = append(bl.Blocks, bn)
}

// NeedsIndirect reports whether the next block appended must go through an
// indirect block that does not exist yet.
func (bl *BlockList) NeedsIndirect() bool {
	return bl.Indirect == common.NULLBNUM && bl.Len() >= common.NDIRECT
}

type Mapper struct {
	d  disk.Disk
	sb *super.FsSuper
	t  *inode.Table
}

func MkMapper(d disk.Disk, sb *super.FsSuper, t *inode.Table) *Mapper {
	return &Mapper{d: d, sb: sb, t: t}
}

// Resolve loads inode inum and returns its block list. An inode that cannot
// be loaded has an empty list.
func (m *Mapper) Resolve(inum common.Inum) *BlockList {
	ip, err := m.t.Load(inum)
	if err != nil {
		return &BlockList{}
	}
	return m.ResolveInode(ip)
}

// ResolveInode returns the block list of an already loaded inode.
func (m *Mapper) ResolveInode(ip *inode.Inode) *BlockList {
	bl := &BlockList{}
	for _, bn := range ip.Direct {
		if m.sb.ValidDataBlock(bn) {
			bl.Append(bn)
		}
	}
	if !m.sb.ValidDataBlock(ip.Indirect) {
		return bl
	}
	bl.Indirect = ip.Indirect
	ind := m.readIndirect(ip.Indirect)
	for i := uint64(0); i < ind.NBnum(); i++ {
		bn := ind.BnumGet(i)
		if !m.sb.ValidDataBlock(bn) {
			break
		}
		bl.Append(bn)
	}
	util.DPrintf(10, "ResolveInode: %v\n", bl)
	return bl
}

func (m *Mapper) readIndirect(bn common.Bnum) *buf.Buf {
	return buf.ReadBuf(m.d, addr.MkAddr(bn, 0), disk.BlockSize)
}

// IndirectPointers returns every entry of indirect block bn, gaps included.
func (m *Mapper) IndirectPointers(bn common.Bnum) []common.Bnum {
	ind := m.readIndirect(bn)
	ptrs := make([]common.Bnum, ind.NBnum())
	for i := range ptrs {
		ptrs[i] = ind.BnumGet(uint64(i))
	}
	return ptrs
}

// Commit rewrites ip's pointers from bl: every direct slot, and, if bl has
// an indirect block, its whole pointer array. The caller saves ip.
func (m *Mapper) Commit(ip *inode.Inode, bl *BlockList) {
	for i := range ip.Direct {
		if uint64(i) < bl.Len() {
			ip.Direct[i] = bl.Blocks[i]
		} else {
			ip.Direct[i] = common.NULLBNUM
		}
	}
	ip.Indirect = bl.Indirect
	if !m.sb.ValidDataBlock(bl.Indirect) {
		return
	}
	ind := buf.MkBuf(addr.MkAddr(bl.Indirect, 0), disk.BlockSize, disk.MkBlock())
	for i := common.NDIRECT; i < bl.Len(); i++ {
		ind.BnumPut(i-common.NDIRECT, bl.Blocks[i])
	}
	ind.WriteDirect(m.d)
}
