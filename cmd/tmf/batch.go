package main

import (
	"context"
	"fmt"
	"runtime"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/tmf/internal/convert"
	"github.com/samcharles93/tmf/internal/logger"
)

func batchCmd() *cli.Command {
	var (
		outDir   string
		jobs     int64
		capacity int64
	)

	return &cli.Command{
		Name:      "batch",
		Usage:     "Assemble many sources concurrently",
		ArgsUsage: "<source|dir>...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "out-dir",
				Aliases:     []string{"o"},
				Usage:       fmt.Sprintf("output directory (default: next to each source, or $%s)", envOutDir),
				Destination: &outDir,
			},
			&cli.Int64Flag{
				Name:        "jobs",
				Aliases:     []string{"j"},
				Usage:       "number of sources assembled at once",
				Value:       int64(runtime.GOMAXPROCS(0)),
				Destination: &jobs,
			},
			&cli.Int64Flag{
				Name:        "initial-capacity",
				Usage:       "initial output buffer size in bytes",
				Destination: &capacity,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() == 0 {
				return cli.Exit("usage: tmf batch [--out-dir DIR] <source|dir>...", 1)
			}
			log := logger.FromContext(ctx)
			applyBatchConfig(cmd, cfg, &outDir, &jobs, &capacity)

			dir, err := resolveOutDir(outDir)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			inputs, err := expandInputs(cmd.Args().Slice())
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			conv := convert.New(
				convert.WithLogger(log),
				convert.WithInitialCapacity(int(capacity)),
			)
			log.Info("assembling", "sources", len(inputs), "jobs", jobs)
			results, err := conv.Batch(ctx, convert.Jobs(inputs, dir), int(jobs))
			if err != nil {
				log.Error("batch failed", "error", err)
				return cli.Exit(err.Error(), 1)
			}
			for _, res := range results {
				fmt.Printf("%s  %s  %d bytes\n", res.Digest, res.Output, res.Size)
			}
			return nil
		},
	}
}
