package inode

import (
	"fmt"

	"github.com/tchajed/marshal"

	"github.com/mit-pdos/go-simplefs/common"
)

// Inode is the on-disk record describing one file. Zero pointers are unused.
type Inode struct {
	Valid    bool
	Size     uint64
	Direct   [common.NDIRECT]common.Bnum
	Indirect common.Bnum
}

// MkInode returns a fresh, valid, empty inode.
func MkInode() *Inode {
	return &Inode{Valid: true}
}

func (ip *Inode) String() string {
	return fmt.Sprintf("valid %v size %d direct %v indirect %d",
		ip.Valid, ip.Size, ip.Direct, ip.Indirect)
}

// Encode lays out the inode as little-endian uint32s: valid, size, the
// direct pointers, then the indirect pointer.
func (ip *Inode) Encode() []byte {
	enc := marshal.NewEnc(common.INODESZ)
	var valid uint32
	if ip.Valid {
		valid = 1
	}
	enc.PutInt32(valid)
	enc.PutInt32(uint32(ip.Size))
	for _, bn := range ip.Direct {
		enc.PutInt32(uint32(bn))
	}
	enc.PutInt32(uint32(ip.Indirect))
	return enc.Finish()
}

func Decode(data []byte) *Inode {
	dec := marshal.NewDec(data)
	ip := &Inode{}
	ip.Valid = dec.GetInt32() != 0
	ip.Size = uint64(dec.GetInt32())
	for i := range ip.Direct {
		ip.Direct[i] = common.Bnum(dec.GetInt32())
	}
	ip.Indirect = common.Bnum(dec.GetInt32())
	return ip
}
