// Package disk is the block store the file system runs on.
package disk

import (
	"github.com/tchajed/goose/machine/disk"
)

// Block is a 4096-byte buffer
type Block = disk.Block

const BlockSize uint64 = disk.BlockSize

// Disk provides access to a logical block-based disk.
//
// It is the narrow slice of goose's disk.Disk the file system consumes; any
// goose disk satisfies it.
type Disk interface {
	// Read reads a disk block by address
	//
	// Expects a < Size().
	Read(a uint64) Block

	// Write updates a disk block by address
	//
	// Expects a < Size() and len(v) == BlockSize.
	Write(a uint64, v Block)

	// Size reports how big the disk is, in blocks
	Size() uint64
}

// NewMemDisk creates an all-zero in-memory disk of numBlocks blocks.
func NewMemDisk(numBlocks uint64) Disk {
	return disk.NewMemDisk(numBlocks)
}

// MkBlock returns a zeroed block.
func MkBlock() Block {
	return make(Block, BlockSize)
}
