package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/tmf/internal/api"
	"github.com/samcharles93/tmf/internal/convert"
	"github.com/samcharles93/tmf/internal/logger"
)

func serveCmd() *cli.Command {
	var (
		addr        string
		storePath   string
		readTimeout time.Duration
		maxBody     int64
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the assembly and inspection API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.StringFlag{
				Name:        "store",
				Usage:       "bbolt database for containers (default: in memory)",
				Destination: &storePath,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
			&cli.Int64Flag{
				Name:        "max-body",
				Usage:       "largest accepted request body in bytes",
				Value:       api.DefaultMaxBody,
				Destination: &maxBody,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			applyServeConfig(cmd, cfg, &addr, &storePath)

			var store api.Store = api.NewMemoryStore()
			if storePath != "" {
				bs, err := api.OpenBoltStore(storePath)
				if err != nil {
					return cli.Exit(err.Error(), 1)
				}
				store = bs
				log.Info("using container store", "path", storePath)
			}
			defer func() {
				if err := store.Close(); err != nil {
					log.Warn("close store", "error", err)
				}
			}()

			server := api.NewServer(store,
				api.WithLogger(log.WithGroup("api")),
				api.WithConverter(convert.New(convert.WithLogger(log.WithGroup("convert")))),
				api.WithMaxBody(maxBody),
			)
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)
			log.Info("starting server", "address", addr)
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
