// Package buf provides typed views of sub-block disk objects (inodes, block
// pointers) packed into one disk block.
package buf

import (
	"github.com/tchajed/marshal"

	"github.com/mit-pdos/go-simplefs/addr"
	"github.com/mit-pdos/go-simplefs/common"
	"github.com/mit-pdos/go-simplefs/disk"
	"github.com/mit-pdos/go-simplefs/util"
)

// A Buf is a disk object (an inode, or a whole block) loaded from its block
type Buf struct {
	Addr addr.Addr
	Sz   uint64 // number of bytes
	Data []byte
}

func MkBuf(addr addr.Addr, sz uint64, data []byte) *Buf {
	b := &Buf{
		Addr: addr,
		Sz:   sz,
		Data: data,
	}
	return b
}

// Load the bytes of a disk block into a new buf, as specified by addr. The buf
// owns a copy, so the block can be reused.
func MkBufLoad(addr addr.Addr, sz uint64, blk disk.Block) *Buf {
	data := util.CloneByteSlice(blk[addr.Off : addr.Off+sz])
	b := &Buf{
		Addr: addr,
		Sz:   sz,
		Data: data,
	}
	return b
}

// ReadBuf reads the block holding addr and loads the object from it.
func ReadBuf(d disk.Disk, addr addr.Addr, sz uint64) *Buf {
	blk := d.Read(addr.Blkno)
	return MkBufLoad(addr, sz, blk)
}

// Install the bytes from buf into blk.
func (buf *Buf) Install(blk disk.Block) {
	if buf.Addr.Off+buf.Sz > uint64(len(blk)) || uint64(len(buf.Data)) != buf.Sz {
		panic("Install unsupported\n")
	}
	util.DPrintf(15, "%v: install\n", buf.Addr)
	copy(blk[buf.Addr.Off:buf.Addr.Off+buf.Sz], buf.Data)
}

// WriteDirect writes buf to its block. An object smaller than a block costs a
// read of the block it lives in.
func (buf *Buf) WriteDirect(d disk.Disk) {
	if buf.Sz == disk.BlockSize {
		d.Write(buf.Addr.Blkno, buf.Data)
	} else {
		blk := d.Read(buf.Addr.Blkno)
		buf.Install(blk)
		d.Write(buf.Addr.Blkno, blk)
	}
}

// BnumGet reads the block pointer at index i.
func (buf *Buf) BnumGet(i uint64) common.Bnum {
	off := i * common.BNUMSZ
	dec := marshal.NewDec(buf.Data[off : off+common.BNUMSZ])
	return common.Bnum(dec.GetInt32())
}

// BnumPut writes the block pointer at index i.
func (buf *Buf) BnumPut(i uint64, v common.Bnum) {
	off := i * common.BNUMSZ
	enc := marshal.NewEnc(common.BNUMSZ)
	enc.PutInt32(uint32(v))
	copy(buf.Data[off:off+common.BNUMSZ], enc.Finish())
}

// NBnum is the number of block pointers buf holds.
func (buf *Buf) NBnum() uint64 {
	return buf.Sz / common.BNUMSZ
}
