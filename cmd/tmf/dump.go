package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/tmf/internal/dump"
	"github.com/samcharles93/tmf/internal/tmfstore"
)

func dumpCmd() *cli.Command {
	var format string

	return &cli.Command{
		Name:      "dump-binary",
		Aliases:   []string{"dump"},
		Usage:     "Print the block tree of a container",
		ArgsUsage: "<container>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Aliases:     []string{"f"},
				Usage:       "output format (tree, json)",
				Value:       "tree",
				Destination: &format,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return cli.Exit("usage: tmf dump-binary <container>", 1)
			}
			f, err := tmfstore.Open(cmd.Args().First())
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			defer func() { _ = f.Close() }()

			switch format {
			case "tree":
				err = dump.Tree(os.Stdout, f.Reader())
			case "json":
				err = dump.JSON(os.Stdout, f.Reader())
			default:
				return cli.Exit("unknown format "+format+" (want tree or json)", 1)
			}
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			return nil
		},
	}
}
