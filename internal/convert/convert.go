// Package convert runs text to binary conversions, one at a time or as a
// concurrent batch.
package convert

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	digest "github.com/opencontainers/go-digest"
	"golang.org/x/sync/errgroup"

	"github.com/samcharles93/tmf/internal/logger"
	"github.com/samcharles93/tmf/internal/tmfstore"
	"github.com/samcharles93/tmf/pkg/asm"
	"github.com/samcharles93/tmf/pkg/tmf"
)

// Extension is the file extension given to assembled containers.
const Extension = ".tmf"

// Result describes one assembled container.
type Result struct {
	Input    string        `json:"input,omitempty"`
	Output   string        `json:"output,omitempty"`
	Digest   digest.Digest `json:"digest"`
	Size     int           `json:"size"`
	Top      tmf.Offset    `json:"top"`
	Duration time.Duration `json:"duration"`
}

// Job converts the source file Input into the container file Output.
type Job struct {
	Input  string
	Output string
}

// Converter assembles sources. The zero value is not usable; call New.
type Converter struct {
	log      logger.Logger
	capacity int
}

type Option func(*Converter)

func WithLogger(l logger.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.log = l
		}
	}
}

// WithInitialCapacity sizes each job's output buffer up front.
func WithInitialCapacity(n int) Option {
	return func(c *Converter) {
		c.capacity = n
	}
}

func New(opts ...Option) *Converter {
	c := &Converter{log: logger.Discard()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Assemble converts src in memory and returns the container bytes.
func (c *Converter) Assemble(ctx context.Context, src io.Reader) ([]byte, Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, Result{}, err
	}
	start := time.Now()
	data, err := asm.Assemble(src,
		asm.WithLogger(c.log.WithGroup("asm")),
		asm.WithInitialCapacity(c.capacity),
	)
	if err != nil {
		return nil, Result{}, err
	}
	res := Describe(data)
	res.Duration = time.Since(start)
	return data, res, nil
}

// Describe computes the digest, size and top offset of an assembled
// container.
func Describe(data []byte) Result {
	top, _ := tmf.NewReader(data).Top()
	return Result{
		Digest: digest.FromBytes(data),
		Size:   len(data),
		Top:    top,
	}
}

// File runs a single job.
func (c *Converter) File(ctx context.Context, job Job) (Result, error) {
	src, err := os.ReadFile(job.Input)
	if err != nil {
		return Result{}, err
	}
	data, res, err := c.Assemble(ctx, bytes.NewReader(src))
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", job.Input, err)
	}
	if err := tmfstore.Store(job.Output, data); err != nil {
		return Result{}, fmt.Errorf("write %s: %w", job.Output, err)
	}
	res.Input = job.Input
	res.Output = job.Output
	c.log.Debug("converted", "input", job.Input, "output", job.Output, "size", res.Size, "digest", res.Digest)
	return res, nil
}

// Batch runs jobs with at most limit in flight. Results keep the order of
// jobs. The first failure cancels the jobs that have not started yet.
func (c *Converter) Batch(ctx context.Context, jobs []Job, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 1
	}
	seen := make(map[string]string, len(jobs))
	for _, job := range jobs {
		if prev, ok := seen[job.Output]; ok {
			return nil, fmt.Errorf("%s and %s both write %s", prev, job.Input, job.Output)
		}
		seen[job.Output] = job.Input
	}
	results := make([]Result, len(jobs))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)
	for i, job := range jobs {
		eg.Go(func() error {
			res, err := c.File(ctx, job)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// OutputPath maps a source path to its container path inside dir. An empty
// dir keeps the container next to the source.
func OutputPath(input, dir string) string {
	base := filepath.Base(input)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + Extension
	if dir == "" {
		return filepath.Join(filepath.Dir(input), name)
	}
	return filepath.Join(dir, name)
}

// Jobs pairs every input with its output path in dir.
func Jobs(inputs []string, dir string) []Job {
	jobs := make([]Job, 0, len(inputs))
	for _, in := range inputs {
		jobs = append(jobs, Job{Input: in, Output: OutputPath(in, dir)})
	}
	return jobs
}
