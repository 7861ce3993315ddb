package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/mit-pdos/go-simplefs/fs"
)

const prompt = "simplefs> "

// shell reads commands from in until EOF or exit. Errors are printed and the
// session continues; the file system stays mounted between commands.
func shell(f *fs.Fs, in io.Reader, out io.Writer) error {
	s := bufio.NewScanner(in)
	fmt.Fprint(out, prompt)
	for s.Scan() {
		fields := strings.Fields(s.Text())
		if len(fields) > 0 {
			switch fields[0] {
			case "exit", "quit":
				return nil
			case "help":
				printHelp(out)
			default:
				c := lookupCommand(fields[0])
				if c == nil {
					fmt.Fprintf(out, "unknown command: %s\n", fields[0])
				} else if err := c.call(f, fields[1:], out); err != nil {
					fmt.Fprintf(out, "error: %v\n", err)
				}
			}
		}
		fmt.Fprint(out, prompt)
	}
	return s.Err()
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "Commands are:")
	for _, c := range commands {
		fmt.Fprintf(w, "    %-24s %s\n", c.name+" "+c.argsUsage(), c.usage)
	}
	fmt.Fprintf(w, "    %-24s %s\n", "help", "print this list")
	fmt.Fprintf(w, "    %-24s %s\n", "exit", "leave the shell")
}
