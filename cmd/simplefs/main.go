package main

import (
	"fmt"
	"os"

	"github.com/chzyer/logex"
	"github.com/urfave/cli/v2"

	"github.com/mit-pdos/go-simplefs/config"
	"github.com/mit-pdos/go-simplefs/disk"
	"github.com/mit-pdos/go-simplefs/fs"
	"github.com/mit-pdos/go-simplefs/util"
)

func main() {
	app := cli.App{
		Name:  "simplefs",
		Usage: "operate on a simplefs disk image",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "path of a YAML config file",
				EnvVars: []string{config.EnvVarPrefix + "_CONFIG_FILE"},
			},
			&cli.StringFlag{
				Name:  "image",
				Usage: "path of the disk image",
			},
			&cli.Uint64Flag{
				Name: "blocks",
				Usage: "size the image to this many blocks, creating it if " +
					"needed. Defaults to the size of the existing image.",
			},
			&cli.Uint64Flag{
				Name:  "debug",
				Usage: "debug trace level",
			},
		},
		Commands: append(subcommands(), &cli.Command{
			Name:  "shell",
			Usage: "run commands interactively against one session",
			Action: withFs(false, func(f *fs.Fs, ctx *cli.Context) error {
				return shell(f, os.Stdin, os.Stdout)
			}),
		}),
	}

	if err := app.Run(os.Args); err != nil {
		logex.Fatal(err)
	}
}

func subcommands() []*cli.Command {
	var cmds []*cli.Command
	for i := range commands {
		c := &commands[i]
		cmds = append(cmds, &cli.Command{
			Name:      c.name,
			Usage:     c.usage,
			ArgsUsage: c.argsUsage(),
			Action: withFs(c.mount, func(f *fs.Fs, ctx *cli.Context) error {
				return c.call(f, ctx.Args().Slice(), os.Stdout)
			}),
		})
	}
	return cmds
}

func loadConfig(ctx *cli.Context) (*config.Config, error) {
	c, err := config.Load(ctx.String("config"))
	if err != nil {
		return nil, err
	}
	if ctx.IsSet("image") {
		c.Image = ctx.String("image")
	}
	if ctx.IsSet("blocks") {
		c.Blocks = ctx.Uint64("blocks")
	}
	if ctx.IsSet("debug") {
		c.Debug = ctx.Uint64("debug")
	}
	return c, nil
}

// withFs opens the configured image for one session, mounting it if asked,
// and reports the block I/O the session did.
func withFs(mount bool, f func(*fs.Fs, *cli.Context) error) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		c, err := loadConfig(ctx)
		if err != nil {
			return err
		}
		util.Debug = c.Debug
		d, err := c.OpenDisk()
		if err != nil {
			return err
		}
		defer func() {
			if err := d.Close(); err != nil {
				logex.Error("closing image:", err)
			}
		}()

		stats := disk.MkStats(d)
		fsys := fs.MkFs(stats)
		if mount {
			if err := fsys.Mount(); err != nil {
				return fmt.Errorf("mounting `%s`: %w", c.Image, err)
			}
		}
		err = f(fsys, ctx)
		d.Barrier()
		fmt.Fprintf(os.Stderr, "%d disk block reads\n", stats.Reads)
		fmt.Fprintf(os.Stderr, "%d disk block writes\n", stats.Writes)
		return err
	}
}
