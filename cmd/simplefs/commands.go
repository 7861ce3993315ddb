package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mit-pdos/go-simplefs/common"
	"github.com/mit-pdos/go-simplefs/fs"
)

const chunkSz = 16384

// A command runs against one Fs. The driver exposes each one both as a
// subcommand and inside the shell.
type command struct {
	name  string
	args  []string
	usage string
	// mount before running, outside the shell
	mount bool
	run   func(f *fs.Fs, args []string, w io.Writer) error
}

var commands = []command{{
	name:  "format",
	usage: "write a new empty file system to the image",
	run: func(f *fs.Fs, args []string, w io.Writer) error {
		if err := f.Format(); err != nil {
			return err
		}
		fmt.Fprintln(w, "disk formatted.")
		return nil
	},
}, {
	name:  "mount",
	usage: "check the superblock and load the free block bitmap",
	run: func(f *fs.Fs, args []string, w io.Writer) error {
		if err := f.Mount(); err != nil {
			return err
		}
		fmt.Fprintln(w, "disk mounted.")
		return nil
	},
}, {
	name:  "debug",
	usage: "print the superblock and every allocated inode",
	mount: true,
	run: func(f *fs.Fs, args []string, w io.Writer) error {
		return f.Debug(w)
	},
}, {
	name:  "create",
	usage: "allocate an empty file",
	mount: true,
	run: func(f *fs.Fs, args []string, w io.Writer) error {
		inum, err := f.Create()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "created inode %d.\n", inum)
		return nil
	},
}, {
	name:  "delete",
	args:  []string{"INUM"},
	usage: "free a file and its blocks",
	mount: true,
	run: func(f *fs.Fs, args []string, w io.Writer) error {
		inum, err := parseInum(args[0])
		if err != nil {
			return err
		}
		if err := f.Delete(inum); err != nil {
			return err
		}
		fmt.Fprintf(w, "inode %d deleted.\n", inum)
		return nil
	},
}, {
	name:  "getsize",
	args:  []string{"INUM"},
	usage: "print the size recorded for a file",
	mount: true,
	run: func(f *fs.Fs, args []string, w io.Writer) error {
		inum, err := parseInum(args[0])
		if err != nil {
			return err
		}
		sz, err := f.GetSize(inum)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "inode %d has size %d.\n", inum, sz)
		return nil
	},
}, {
	name:  "cat",
	args:  []string{"INUM"},
	usage: "print the content of a file",
	mount: true,
	run: func(f *fs.Fs, args []string, w io.Writer) error {
		inum, err := parseInum(args[0])
		if err != nil {
			return err
		}
		_, err = copyOut(f, inum, w)
		return err
	},
}, {
	name:  "copyin",
	args:  []string{"FILE", "INUM"},
	usage: "copy a host file into a file",
	mount: true,
	run: func(f *fs.Fs, args []string, w io.Writer) error {
		inum, err := parseInum(args[1])
		if err != nil {
			return err
		}
		n, err := copyIn(f, args[0], inum)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%d bytes copied\n", n)
		return nil
	},
}, {
	name:  "copyout",
	args:  []string{"INUM", "FILE"},
	usage: "copy a file out to a host file",
	mount: true,
	run: func(f *fs.Fs, args []string, w io.Writer) error {
		inum, err := parseInum(args[0])
		if err != nil {
			return err
		}
		dst, err := os.Create(args[1])
		if err != nil {
			return fmt.Errorf("creating `%s`: %w", args[1], err)
		}
		n, err := copyOut(f, inum, dst)
		if cerr := dst.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing `%s`: %w", args[1], cerr)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%d bytes copied\n", n)
		return nil
	},
}}

func lookupCommand(name string) *command {
	for i := range commands {
		if commands[i].name == name {
			return &commands[i]
		}
	}
	return nil
}

func (c *command) argsUsage() string {
	return strings.Join(c.args, " ")
}

// call checks the argument count and runs c.
func (c *command) call(f *fs.Fs, args []string, w io.Writer) error {
	if len(args) != len(c.args) {
		return fmt.Errorf("usage: %s %s", c.name, c.argsUsage())
	}
	return c.run(f, args, w)
}

func parseInum(s string) (common.Inum, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return common.NULLINUM, fmt.Errorf("parsing inumber `%s`: %w", s, err)
	}
	return common.Inum(n), nil
}

// copyIn writes the host file at path into inum from offset 0.
func copyIn(f *fs.Fs, path string, inum common.Inum) (int64, error) {
	file, err := f.Open(inum)
	if err != nil {
		return 0, err
	}
	src, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening `%s`: %w", path, err)
	}
	defer src.Close()

	p := make([]byte, chunkSz)
	var off int64
	for {
		n, rerr := src.Read(p)
		if n > 0 {
			m, err := file.WriteAt(p[:n], off)
			off += int64(m)
			if err != nil {
				return off, fmt.Errorf(
					"writing inode `%d` at `%d`: %w",
					inum,
					off,
					err,
				)
			}
		}
		if rerr == io.EOF {
			return off, nil
		}
		if rerr != nil {
			return off, fmt.Errorf("reading `%s`: %w", path, rerr)
		}
	}
}

// copyOut writes the content of inum to w.
func copyOut(f *fs.Fs, inum common.Inum, w io.Writer) (int64, error) {
	file, err := f.Open(inum)
	if err != nil {
		return 0, err
	}
	p := make([]byte, chunkSz)
	var off int64
	for {
		n, rerr := file.ReadAt(p, off)
		if n > 0 {
			if _, err := w.Write(p[:n]); err != nil {
				return off, err
			}
			off += int64(n)
		}
		if rerr == io.EOF {
			return off, nil
		}
		if rerr != nil {
			return off, rerr
		}
	}
}
