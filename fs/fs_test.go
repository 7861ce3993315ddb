package fs

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mit-pdos/go-simplefs/addr"
	"github.com/mit-pdos/go-simplefs/buf"
	"github.com/mit-pdos/go-simplefs/common"
	"github.com/mit-pdos/go-simplefs/disk"
	"github.com/mit-pdos/go-simplefs/super"
)

const bs = int(disk.BlockSize)

// 20 blocks: superblock, inode blocks 1-2, data blocks 3-19.
const nblocks = 20
const ndata = 17

type FsSuite struct {
	suite.Suite
	d  *disk.Stats
	fs *Fs
}

func (suite *FsSuite) SetupTest() {
	suite.d = disk.MkStats(disk.NewMemDisk(nblocks))
	suite.fs = MkFs(suite.d)
	suite.Require().NoError(suite.fs.Format())
	suite.Require().NoError(suite.fs.Mount())
}

// remount starts a new session on the same disk.
func (suite *FsSuite) remount() {
	suite.fs = MkFs(suite.d)
	suite.Require().NoError(suite.fs.Mount())
}

func (suite *FsSuite) create() common.Inum {
	inum, err := suite.fs.Create()
	suite.Require().NoError(err)
	return inum
}

func TestFs(t *testing.T) {
	suite.Run(t, new(FsSuite))
}

// mkData returns sz bytes with no zero byte.
func mkData(sz int) []byte {
	data := make([]byte, sz)
	for i := range data {
		data[i] = 'a' + byte(i%26)
	}
	return data
}

func (suite *FsSuite) TestFormatMount() {
	sb := suite.fs.Super()
	suite.Equal(uint64(nblocks), sb.NBlocks)
	suite.Equal(uint64(2), sb.NInodeBlocks)
	suite.Equal(uint64(256), sb.NInodes)
	suite.Equal(uint64(ndata), suite.fs.NumFree())
	suite.True(suite.fs.IsBusy(0))
	suite.True(suite.fs.IsBusy(2))
	suite.False(suite.fs.IsBusy(3))
}

func (suite *FsSuite) TestMountTwice() {
	suite.NoError(suite.fs.Mount())
	suite.True(suite.fs.Mounted())
}

func (suite *FsSuite) TestFormatWhileMounted() {
	inum := suite.create()
	_, err := suite.fs.Write(inum, []byte("hello"), 0)
	suite.NoError(err)

	suite.d.Reset()
	suite.Equal(ErrAlreadyMounted, suite.fs.Format())
	suite.Equal(uint64(0), suite.d.Writes)

	suite.remount()
	p := make([]byte, 5)
	n, err := suite.fs.Read(inum, p, 0)
	suite.NoError(err)
	suite.Equal("hello", string(p[:n]))
}

func (suite *FsSuite) TestMountBadMagic() {
	fs := MkFs(disk.NewMemDisk(nblocks))
	err := fs.Mount()
	suite.True(errors.Is(err, ErrInvalidMagic), "%v", err)
	suite.False(fs.Mounted())
	_, err = fs.Create()
	suite.Equal(ErrNotMounted, err)
}

func (suite *FsSuite) TestMountCorruptSuper() {
	d := disk.NewMemDisk(nblocks)
	d.Write(common.SUPERBLK, super.MkFsSuper(100).Encode())
	err := MkFs(d).Mount()
	suite.True(errors.Is(err, ErrInvalidMagic), "%v", err)
}

func (suite *FsSuite) TestMountEmptyDevice() {
	fs := MkFs(disk.NewMemDisk(0))
	err := fs.Mount()
	suite.True(errors.Is(err, ErrInvalidMagic), "%v", err)
	suite.False(fs.Mounted())
}

func (suite *FsSuite) TestMountInodeCountMismatch() {
	d := disk.NewMemDisk(nblocks)
	sb := super.MkFsSuper(nblocks)
	sb.NInodes = 1000
	d.Write(common.SUPERBLK, sb.Encode())
	err := MkFs(d).Mount()
	suite.True(errors.Is(err, ErrInvalidMagic), "%v", err)
}

// hugeDisk reports a size the on-disk format cannot describe.
type hugeDisk struct {
	disk.Disk
}

func (hugeDisk) Size() uint64 {
	return 1 << 32
}

func (suite *FsSuite) TestFormatTooLarge() {
	d := disk.MkStats(disk.NewMemDisk(1))
	err := MkFs(hugeDisk{d}).Format()
	suite.True(errors.Is(err, ErrDiskTooLarge), "%v", err)
	suite.Equal(uint64(0), d.Writes)
}

func (suite *FsSuite) TestFormatTooSmall() {
	err := MkFs(disk.NewMemDisk(1)).Format()
	suite.True(errors.Is(err, ErrDiskTooSmall), "%v", err)
}

func (suite *FsSuite) TestNotMounted() {
	fs := MkFs(suite.d)
	_, err := fs.Create()
	suite.Equal(ErrNotMounted, err)
	suite.Equal(ErrNotMounted, fs.Delete(1))
	_, err = fs.GetSize(1)
	suite.Equal(ErrNotMounted, err)
	n, err := fs.Read(1, make([]byte, 4), 0)
	suite.Equal(0, n)
	suite.Equal(ErrNotMounted, err)
	n, err = fs.Write(1, []byte("data"), 0)
	suite.Equal(0, n)
	suite.Equal(ErrNotMounted, err)
	suite.Equal(ErrNotMounted, fs.Debug(io.Discard))
	suite.Nil(fs.Super())
}

func (suite *FsSuite) TestInvalidInumber() {
	suite.d.Reset()
	for _, inum := range []common.Inum{0, 257, 1000} {
		_, err := suite.fs.GetSize(inum)
		suite.Equal(ErrInvalidInumber, err)
		n, err := suite.fs.Read(inum, make([]byte, 4), 0)
		suite.Equal(0, n)
		suite.Equal(ErrInvalidInumber, err)
		n, err = suite.fs.Write(inum, []byte("data"), 0)
		suite.Equal(0, n)
		suite.Equal(ErrInvalidInumber, err)
		suite.Equal(ErrInvalidInumber, suite.fs.Delete(inum))
		_, err = suite.fs.Open(inum)
		suite.Equal(ErrInvalidInumber, err)
	}
	suite.Equal(uint64(0), suite.d.Reads+suite.d.Writes)
	suite.Equal(uint64(ndata), suite.fs.NumFree())
}

func (suite *FsSuite) TestWriteChecksInumberFirst() {
	inum := suite.create()
	_, err := suite.fs.Write(inum, mkData(nblocks*bs), 0)
	suite.Equal(ErrDiskFull, err)

	for _, bad := range []common.Inum{0, 257} {
		n, err := suite.fs.Write(bad, []byte("x"), 0)
		suite.Equal(0, n)
		suite.Equal(ErrInvalidInumber, err, "full disk, inumber %d", bad)
		n, err = suite.fs.Write(bad, nil, 0)
		suite.Equal(0, n)
		suite.Equal(ErrInvalidInumber, err, "empty write, inumber %d", bad)
	}
}

func (suite *FsSuite) TestUnallocatedInode() {
	_, err := suite.fs.GetSize(5)
	suite.Equal(ErrInvalidInumber, err)
	n, err := suite.fs.Write(5, []byte("data"), 0)
	suite.Equal(0, n)
	suite.Equal(ErrInvalidInumber, err)
	suite.Equal(uint64(ndata), suite.fs.NumFree())
}

func (suite *FsSuite) TestCreateDelete() {
	inum := suite.create()
	suite.Equal(common.Inum(1), inum)
	sz, err := suite.fs.GetSize(inum)
	suite.NoError(err)
	suite.Equal(uint64(0), sz)

	_, err = suite.fs.Write(inum, mkData(3*bs), 0)
	suite.NoError(err)
	suite.Equal(uint64(ndata-3), suite.fs.NumFree())

	suite.NoError(suite.fs.Delete(inum))
	suite.Equal(uint64(ndata), suite.fs.NumFree())
	suite.Equal(ErrInvalidInumber, suite.fs.Delete(inum), "second delete fails")
	suite.Equal(uint64(ndata), suite.fs.NumFree())

	suite.Equal(inum, suite.create(), "slot is reused")
}

func (suite *FsSuite) TestCreateOrder() {
	for i := 1; i <= 130; i++ {
		suite.Equal(common.Inum(i), suite.create())
	}
}

func (suite *FsSuite) TestRoundTripOneBlock() {
	inum := suite.create()
	data := mkData(bs)
	n, err := suite.fs.Write(inum, data, 0)
	suite.NoError(err)
	suite.Equal(bs, n)

	out := make([]byte, bs)
	n, err = suite.fs.Read(inum, out, 0)
	suite.NoError(err)
	suite.Equal(bs, n)
	suite.Equal(data, out)

	sz, err := suite.fs.GetSize(inum)
	suite.NoError(err)
	suite.Equal(uint64(bs), sz)
	suite.True(suite.fs.IsBusy(3))
}

func (suite *FsSuite) TestRoundTripIndirect() {
	inum := suite.create()
	data := mkData(10*bs + 100)
	n, err := suite.fs.Write(inum, data, 0)
	suite.NoError(err)
	suite.Equal(len(data), n)

	out := make([]byte, len(data))
	n, err = suite.fs.Read(inum, out, 0)
	suite.NoError(err)
	suite.Equal(len(data), n)
	suite.Equal(data, out)
	suite.Equal(uint64(ndata-12), suite.fs.NumFree(), "11 data blocks and 1 indirect")
}

func (suite *FsSuite) TestIndirectAllocation() {
	inum := suite.create()
	_, err := suite.fs.Write(inum, mkData(6*bs), 0)
	suite.NoError(err)

	ip, err := suite.fs.inodes.Load(inum)
	suite.NoError(err)
	suite.Equal([common.NDIRECT]common.Bnum{3, 4, 5, 6, 7}, ip.Direct)
	suite.Equal(common.Bnum(8), ip.Indirect)
	suite.True(suite.fs.IsBusy(ip.Indirect))
	suite.Equal([]common.Bnum{9, 0}, suite.fs.bmap.IndirectPointers(8)[:2])
	suite.Equal(uint64(ndata-7), suite.fs.NumFree())
}

func (suite *FsSuite) TestDiskFull() {
	inum := suite.create()
	n, err := suite.fs.Write(inum, mkData(nblocks*bs), 0)
	suite.Equal(ErrDiskFull, err)
	suite.Equal(16*bs, n, "5 direct and 11 indirect data blocks")
	suite.Equal(uint64(0), suite.fs.NumFree())
	sz, _ := suite.fs.GetSize(inum)
	suite.Equal(uint64(n), sz)

	other := suite.create()
	n, err = suite.fs.Write(other, []byte("more"), 0)
	suite.Equal(0, n)
	suite.Equal(ErrDiskFull, err)

	suite.NoError(suite.fs.Delete(inum))
	n, err = suite.fs.Write(other, []byte("more"), 0)
	suite.NoError(err)
	suite.Equal(4, n)
}

func (suite *FsSuite) TestDeleteFreesIndirect() {
	inum := suite.create()
	ip, err := suite.fs.inodes.Load(inum)
	suite.Require().NoError(err)
	ip.Direct = [common.NDIRECT]common.Bnum{3, 4, 5, 0, 0}
	ip.Indirect = 6
	suite.Require().NoError(suite.fs.inodes.Save(inum, ip))
	ind := buf.MkBuf(addr.MkAddr(6, 0), disk.BlockSize, disk.MkBlock())
	ind.BnumPut(0, 7)
	ind.BnumPut(1, 8)
	ind.WriteDirect(suite.d)
	for _, bn := range []common.Bnum{3, 4, 5, 7, 8} {
		suite.d.Write(bn, mkData(bs))
	}

	suite.remount()
	suite.Equal(uint64(ndata-6), suite.fs.NumFree())

	suite.NoError(suite.fs.Delete(inum))
	suite.Equal(uint64(ndata), suite.fs.NumFree(), "3 direct, 1 indirect, 2 indirect data")
	for bn := common.Bnum(3); bn <= 8; bn++ {
		suite.Equal(disk.MkBlock(), suite.d.Read(bn), "block %d zeroed", bn)
	}
}

func (suite *FsSuite) TestRemountRebuildsBitmap() {
	a := suite.create()
	b := suite.create()
	_, err := suite.fs.Write(a, mkData(7*bs), 0)
	suite.NoError(err)
	_, err = suite.fs.Write(b, mkData(2*bs), 0)
	suite.NoError(err)
	free := suite.fs.NumFree()

	suite.remount()
	suite.Equal(free, suite.fs.NumFree())
	for bn := common.Bnum(0); bn < 3+10; bn++ {
		suite.True(suite.fs.IsBusy(bn), "block %d", bn)
	}
	suite.False(suite.fs.IsBusy(13))

	out := make([]byte, 2*bs)
	n, err := suite.fs.Read(b, out, 0)
	suite.NoError(err)
	suite.Equal(2*bs, n)
	suite.Equal(mkData(2*bs), out)
}

func (suite *FsSuite) TestRemountIgnoresBadPointers() {
	inum := suite.create()
	ip, err := suite.fs.inodes.Load(inum)
	suite.Require().NoError(err)
	ip.Direct = [common.NDIRECT]common.Bnum{3, 500, 0, 1 << 31, 4}
	suite.Require().NoError(suite.fs.inodes.Save(inum, ip))

	suite.remount()
	suite.Equal(uint64(ndata-2), suite.fs.NumFree())
	suite.True(suite.fs.IsBusy(3))
	suite.True(suite.fs.IsBusy(4))
	suite.False(suite.fs.IsBusy(500))
}

func (suite *FsSuite) TestNulEndsData() {
	inum := suite.create()
	n, err := suite.fs.Write(inum, []byte("hello\x00world"), 0)
	suite.NoError(err)
	suite.Equal(5, n)

	out := make([]byte, 11)
	n, err = suite.fs.Read(inum, out, 0)
	suite.NoError(err)
	suite.Equal(5, n)
	suite.Equal("hello", string(out[:n]))
}

func (suite *FsSuite) TestReadAtOffset() {
	inum := suite.create()
	data := mkData(2 * bs)
	_, err := suite.fs.Write(inum, data, 0)
	suite.NoError(err)

	out := make([]byte, 200)
	n, err := suite.fs.Read(inum, out, uint64(bs-100))
	suite.NoError(err)
	suite.Equal(200, n)
	suite.Equal(data[bs-100:bs+100], out)

	n, err = suite.fs.Read(inum, out, uint64(2*bs))
	suite.NoError(err)
	suite.Equal(0, n, "past the last block")
}

func (suite *FsSuite) TestOverwriteGrowsSize() {
	inum := suite.create()
	_, err := suite.fs.Write(inum, []byte("hello"), 0)
	suite.NoError(err)
	_, err = suite.fs.Write(inum, []byte("J"), 0)
	suite.NoError(err)

	sz, err := suite.fs.GetSize(inum)
	suite.NoError(err)
	suite.Equal(uint64(6), sz, "size counts bytes written, not the extent")

	out := make([]byte, 5)
	n, err := suite.fs.Read(inum, out, 0)
	suite.NoError(err)
	suite.Equal("Jello", string(out[:n]))
	suite.Equal(uint64(ndata-1), suite.fs.NumFree())
}

func (suite *FsSuite) TestSizeSaturates() {
	inum := suite.create()
	ip, err := suite.fs.inodes.Load(inum)
	suite.Require().NoError(err)
	ip.Size = common.MAXSIZE - 2
	suite.Require().NoError(suite.fs.inodes.Save(inum, ip))

	n, err := suite.fs.Write(inum, []byte("hello"), 0)
	suite.NoError(err)
	suite.Equal(5, n)

	suite.remount()
	sz, err := suite.fs.GetSize(inum)
	suite.NoError(err)
	suite.Equal(common.MAXSIZE, sz)
}

func (suite *FsSuite) TestWritePastEnd() {
	inum := suite.create()
	_, err := suite.fs.Write(inum, []byte("x"), uint64(3*bs))
	suite.NoError(err)
	suite.Equal(uint64(ndata-4), suite.fs.NumFree(), "gap blocks are allocated")

	out := make([]byte, 1)
	n, err := suite.fs.Read(inum, out, 0)
	suite.NoError(err)
	suite.Equal(0, n, "gap blocks are empty")
	n, err = suite.fs.Read(inum, out, uint64(3*bs))
	suite.NoError(err)
	suite.Equal(1, n)
	suite.Equal("x", string(out))
}

func (suite *FsSuite) TestEmptyWrite() {
	inum := suite.create()
	n, err := suite.fs.Write(inum, nil, 0)
	suite.NoError(err)
	suite.Equal(0, n)
	suite.Equal(uint64(ndata), suite.fs.NumFree())
}

func (suite *FsSuite) TestDebug() {
	inum := suite.create()
	_, err := suite.fs.Write(inum, mkData(6*bs), 0)
	suite.NoError(err)

	var out bytes.Buffer
	suite.NoError(suite.fs.Debug(&out))
	s := out.String()
	suite.True(strings.HasPrefix(s, "superblock:\n    magic number is valid\n"))
	suite.Contains(s, "    20 blocks\n")
	suite.Contains(s, "    2 inode blocks\n")
	suite.Contains(s, "    256 inodes\n")
	suite.Contains(s, "inode 1:\n    size: 24576 bytes\n")
	suite.Contains(s, "    direct blocks: 3 4 5 6 7\n")
	suite.Contains(s, "    indirect block: 8\n")
	suite.Contains(s, "    indirect data blocks: 9\n")
	suite.NotContains(s, "inode 2:")
}

func (suite *FsSuite) TestFile() {
	inum := suite.create()
	f, err := suite.fs.Open(inum)
	suite.Require().NoError(err)
	suite.Equal(inum, f.Inum())

	n, err := f.WriteAt([]byte("hello, world"), 0)
	suite.NoError(err)
	suite.Equal(12, n)

	out := make([]byte, 64)
	n, err = f.ReadAt(out, 7)
	suite.Equal(io.EOF, err)
	suite.Equal("world", string(out[:n]))

	_, err = f.WriteAt([]byte("a\x00b"), 0)
	suite.Equal(io.ErrShortWrite, err)

	_, err = f.ReadAt(out, -1)
	suite.Error(err)

	sz, err := f.Size()
	suite.NoError(err)
	suite.Equal(uint64(13), sz)
}

func TestFileTooLarge(t *testing.T) {
	// room for a maximal file plus its indirect block
	fs := MkFs(disk.NewMemDisk(2000))
	if err := fs.Format(); err != nil {
		t.Fatal(err)
	}
	if err := fs.Mount(); err != nil {
		t.Fatal(err)
	}
	inum, err := fs.Create()
	if err != nil {
		t.Fatal(err)
	}
	limit := common.MAXFILEBLKS * disk.BlockSize
	n, err := fs.Write(inum, []byte("ab"), limit-1)
	if err != ErrFileTooLarge {
		t.Fatalf("Write(): wanted `%v`; found `%v`", ErrFileTooLarge, err)
	}
	if n != 1 {
		t.Fatalf("Write(): wanted `1` byte written; found `%d`", n)
	}
}
