package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dm/escat/internal/engine"
	"github.com/dm/escat/internal/format"
	"github.com/dm/escat/internal/metrics"
	"github.com/dm/escat/internal/publish"
	"github.com/dm/escat/internal/tui"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	var (
		runID         string
		useTUI        bool
		metricsListen string
		noPublish     bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every extraction stage and the transform",
		Long: `Runs the cluster, indices, mappings and settings stages in order, then
transforms the staged artifacts into transformed/all_transformed_<run-id>.json.

A stage whose listing call fails writes no artifact and the run continues.
Staging write failures abort the run with a non-zero exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if metricsListen != "" {
				cfg.Metrics.Listen = metricsListen
			}
			if runID == "" {
				runID = uuid.NewString()
			}

			// Log lines would tear the TUI, so they are held until it exits.
			var held *lockedBuffer
			logOut := cmd.ErrOrStderr()
			if useTUI {
				held = &lockedBuffer{}
				logOut = held
			}
			logger, err := newLogger(cfg, logOut)
			if err != nil {
				return err
			}

			var recorder *metrics.Recorder
			if cfg.Metrics.Listen != "" {
				if recorder, err = metrics.NewRecorder(); err != nil {
					return err
				}
			}
			p, err := newPipeline(cfg, logger, recorder)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			serveCtx, stopServe := context.WithCancel(ctx)
			defer stopServe()
			g, gctx := errgroup.WithContext(serveCtx)

			var program *tea.Program
			progress := printProgress(cmd.OutOrStdout())
			if useTUI {
				app := tui.NewApp(cfg.Connection.URL, runID, engine.Stages, cancel)
				program = tea.NewProgram(app,
					tea.WithContext(ctx),
					tea.WithInput(cmd.InOrStdin()),
					tea.WithOutput(cmd.OutOrStdout()),
				)
				progress = tui.Progress(program.Send)
				g.Go(func() error {
					_, err := program.Run()
					if err != nil && ctx.Err() == nil {
						return fmt.Errorf("tui: %w", err)
					}
					return nil
				})
			}

			if recorder != nil {
				g.Go(func() error {
					return recorder.ListenAndServe(serveCtx, cfg.Metrics.Listen)
				})
			}

			var result *engine.RunResult
			g.Go(func() error {
				defer stopServe()
				var runErr error
				result, runErr = p.runner(runID, progress).Run(gctx)
				if program != nil {
					program.Send(tui.RunDoneMsg{Result: result, Err: runErr})
				}
				return runErr
			})

			err = g.Wait()
			if held != nil {
				_, _ = held.WriteTo(cmd.ErrOrStderr())
			}
			if err != nil {
				return fmt.Errorf("run %s: %w", runID, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "run %s: %s entities written to %s\n",
				runID, format.FormatNumber(int64(result.Entities())), result.TransformedPath)

			if cfg.Publish.Bucket == "" || noPublish {
				return nil
			}
			pub, err := publish.NewS3(ctx, publish.Options{
				Bucket:          cfg.Publish.Bucket,
				Prefix:          cfg.Publish.Prefix,
				Region:          cfg.Publish.Region,
				Endpoint:        cfg.Publish.Endpoint,
				AccessKeyID:     cfg.Publish.AccessKeyID,
				SecretAccessKey: cfg.Publish.SecretAccessKey,
				ForcePathStyle:  cfg.Publish.ForcePathStyle,
			}, logger.With("component", "publish"))
			if err != nil {
				return err
			}
			n, err := pub.PublishRun(ctx, p.store.Root())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "published %d objects to s3://%s/%s\n", n, cfg.Publish.Bucket, cfg.Publish.Prefix)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&runID, "run-id", "", "identifier for the transformed artifact (default: random UUID)")
	f.BoolVar(&useTUI, "tui", false, "show a live progress view")
	f.StringVar(&metricsListen, "metrics-listen", "", "serve Prometheus metrics on this address while the run executes")
	f.BoolVar(&noPublish, "no-publish", false, "skip the S3 upload even when publish.bucket is configured")
	return cmd
}

// lockedBuffer is an io.Writer safe for concurrent use.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) WriteTo(w io.Writer) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.WriteTo(w)
}
