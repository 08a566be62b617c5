package main

import (
	"context"
	"fmt"
	"io"
	"os"

	digest "github.com/opencontainers/go-digest"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/tmf/internal/dump"
	"github.com/samcharles93/tmf/internal/tmfstore"
)

type inspection struct {
	Path    string        `json:"path"`
	Digest  digest.Digest `json:"digest"`
	Magic   uint32        `json:"magic"`
	Mapped  bool          `json:"mapped"`
	Summary dump.Summary  `json:"summary"`
}

func inspectCmd() *cli.Command {
	var asJSON bool

	return &cli.Command{
		Name:      "inspect",
		Usage:     "Summarize the header and blocks of a container",
		ArgsUsage: "<container>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "emit the summary as JSON",
				Destination: &asJSON,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return cli.Exit("usage: tmf inspect <container>", 1)
			}
			path := cmd.Args().First()
			f, err := tmfstore.Open(path)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			defer func() { _ = f.Close() }()

			r := f.Reader()
			summary, err := dump.Summarize(r)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			hdr, _ := r.Header()
			ins := inspection{
				Path:    path,
				Digest:  digest.FromBytes(f.Bytes()),
				Magic:   hdr.Magic,
				Mapped:  f.Mapped(),
				Summary: summary,
			}
			if asJSON {
				return dump.WriteJSON(os.Stdout, ins)
			}
			printInspection(os.Stdout, ins)
			return nil
		},
	}
}

func printInspection(w io.Writer, ins inspection) {
	s := ins.Summary
	_, _ = fmt.Fprintf(w, "file:   %s\n", ins.Path)
	_, _ = fmt.Fprintf(w, "digest: %s\n", ins.Digest)
	_, _ = fmt.Fprintf(w, "size:   %d bytes\n", s.Size)
	_, _ = fmt.Fprintf(w, "magic:  %d\n", ins.Magic)
	if s.TopTag == 0 {
		_, _ = fmt.Fprintf(w, "top:    %d\n", s.Top)
	} else {
		_, _ = fmt.Fprintf(w, "top:    %d (%s)\n", s.Top, s.TopTag)
	}
	_, _ = fmt.Fprintf(w, "blocks: %d\n", s.Blocks)
	for _, tc := range s.Tags {
		kind := tc.Kind
		if kind == "" {
			kind = "-"
		}
		_, _ = fmt.Fprintf(w, "  %-4s  %-28s %6d blocks %10d bytes\n", tc.Tag, kind, tc.Count, tc.Bytes)
	}
	if s.Error != "" {
		_, _ = fmt.Fprintf(w, "error:  %s\n", s.Error)
	}
}
