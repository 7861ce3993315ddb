package fs

import (
	"bufio"
	"fmt"
	"io"

	"github.com/mit-pdos/go-simplefs/common"
	"github.com/mit-pdos/go-simplefs/inode"
)

// Debug writes a report of the superblock and every valid inode to w.
func (fs *Fs) Debug(w io.Writer) error {
	if !fs.mounted {
		return ErrNotMounted
	}
	bw := bufio.NewWriter(w)
	magic := "magic number is valid"
	if !fs.sb.MagicOk() {
		magic = "magic number is invalid!"
	}
	fmt.Fprintf(bw, "superblock:\n")
	fmt.Fprintf(bw, "    %s\n", magic)
	fmt.Fprintf(bw, "    %d blocks\n", fs.sb.NBlocks)
	fmt.Fprintf(bw, "    %d inode blocks\n", fs.sb.NInodeBlocks)
	fmt.Fprintf(bw, "    %d inodes\n", fs.sb.NInodes)

	fs.inodes.Scan(func(inum common.Inum, ip *inode.Inode) bool {
		if !ip.Valid {
			return true
		}
		fmt.Fprintf(bw, "inode %d:\n", inum)
		fmt.Fprintf(bw, "    size: %d bytes\n", ip.Size)
		fmt.Fprintf(bw, "    direct blocks:")
		for _, bn := range ip.Direct {
			if bn != common.NULLBNUM {
				fmt.Fprintf(bw, " %d", bn)
			}
		}
		fmt.Fprintf(bw, "\n")
		if !fs.sb.ValidDataBlock(ip.Indirect) {
			return true
		}
		fmt.Fprintf(bw, "    indirect block: %d\n", ip.Indirect)
		fmt.Fprintf(bw, "    indirect data blocks:")
		for _, bn := range fs.bmap.IndirectPointers(ip.Indirect) {
			if bn != common.NULLBNUM {
				fmt.Fprintf(bw, " %d", bn)
			}
		}
		fmt.Fprintf(bw, "\n")
		return true
	})
	return bw.Flush()
}
