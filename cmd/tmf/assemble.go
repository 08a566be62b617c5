package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/tmf/internal/convert"
	"github.com/samcharles93/tmf/internal/logger"
	"github.com/samcharles93/tmf/internal/tmfstore"
)

func assembleCmd() *cli.Command {
	var (
		printDigest bool
		capacity    int64
	)

	return &cli.Command{
		Name:      "text-to-binary",
		Aliases:   []string{"assemble"},
		Usage:     "Assemble a text source into a container",
		ArgsUsage: "<source|-> <output>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "digest",
				Usage:       "print the sha256 digest of the container",
				Destination: &printDigest,
			},
			&cli.Int64Flag{
				Name:        "initial-capacity",
				Usage:       "initial output buffer size in bytes",
				Destination: &capacity,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 2 {
				return cli.Exit("usage: tmf text-to-binary <source|-> <output>", 1)
			}
			in, out := cmd.Args().Get(0), cmd.Args().Get(1)
			log := logger.FromContext(ctx)

			if cfg.InitialCapacity != nil && !cmd.IsSet("initial-capacity") {
				capacity = *cfg.InitialCapacity
			}
			conv := convert.New(
				convert.WithLogger(log),
				convert.WithInitialCapacity(int(capacity)),
			)

			var (
				res convert.Result
				err error
			)
			if in == "-" {
				res, err = assembleStdin(ctx, conv, out)
			} else {
				res, err = conv.File(ctx, convert.Job{Input: in, Output: out})
			}
			if err != nil {
				log.Error("assemble failed", "input", in, "error", err)
				return cli.Exit(err.Error(), 1)
			}
			log.Debug("wrote container", "output", out, "size", res.Size, "top", res.Top, "elapsed", res.Duration)
			if printDigest {
				fmt.Println(res.Digest)
			}
			return nil
		},
	}
}

func assembleStdin(ctx context.Context, conv *convert.Converter, out string) (convert.Result, error) {
	data, res, err := conv.Assemble(ctx, os.Stdin)
	if err != nil {
		return convert.Result{}, fmt.Errorf("stdin: %w", err)
	}
	if err := tmfstore.Store(out, data); err != nil {
		return convert.Result{}, fmt.Errorf("write %s: %w", out, err)
	}
	res.Input = "-"
	res.Output = out
	return res, nil
}
