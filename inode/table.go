package inode

import (
	"errors"

	"github.com/mit-pdos/go-simplefs/buf"
	"github.com/mit-pdos/go-simplefs/common"
	"github.com/mit-pdos/go-simplefs/disk"
	"github.com/mit-pdos/go-simplefs/super"
	"github.com/mit-pdos/go-simplefs/util"
)

var (
	ErrInvalidInumber = errors.New("invalid inumber")
	ErrNoInodes       = errors.New("no free inodes")
)

// Table is the inode table occupying blocks [1, NInodeBlocks].
type Table struct {
	d  disk.Disk
	sb *super.FsSuper
}

func MkTable(d disk.Disk, sb *super.FsSuper) *Table {
	return &Table{d: d, sb: sb}
}

// Load reads inode inum. It does not check that the inode is valid.
func (t *Table) Load(inum common.Inum) (*Inode, error) {
	if !t.sb.ValidInum(inum) {
		return nil, ErrInvalidInumber
	}
	b := buf.ReadBuf(t.d, t.sb.Inum2Addr(inum), common.INODESZ)
	return Decode(b.Data), nil
}

// Save overwrites inode inum, rewriting the whole block that holds it.
func (t *Table) Save(inum common.Inum, ip *Inode) error {
	if !t.sb.ValidInum(inum) {
		return ErrInvalidInumber
	}
	util.DPrintf(5, "Save: %d %v\n", inum, ip)
	b := buf.MkBuf(t.sb.Inum2Addr(inum), common.INODESZ, ip.Encode())
	b.WriteDirect(t.d)
	return nil
}

// Scan visits every inode slot in inumber order, reading each inode block
// once. It stops early if f returns false.
func (t *Table) Scan(f func(inum common.Inum, ip *Inode) bool) {
	start := t.sb.InodeStart()
	for blkno := start; blkno < start+t.sb.NInodeBlocks; blkno++ {
		blk := t.d.Read(blkno)
		for slot := uint64(0); slot < common.INODEBLK; slot++ {
			off := slot * common.INODESZ
			ip := Decode(blk[off : off+common.INODESZ])
			if !f(t.sb.Addr2Inum(blkno, slot), ip) {
				return
			}
		}
	}
}

// Create claims the lowest-numbered free slot for a new empty inode.
func (t *Table) Create() (common.Inum, error) {
	var inum = common.NULLINUM
	t.Scan(func(n common.Inum, ip *Inode) bool {
		if !ip.Valid {
			inum = n
			return false
		}
		return true
	})
	if inum == common.NULLINUM {
		return common.NULLINUM, ErrNoInodes
	}
	if err := t.Save(inum, MkInode()); err != nil {
		return common.NULLINUM, err
	}
	util.DPrintf(1, "Create: %d\n", inum)
	return inum, nil
}
