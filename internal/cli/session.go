package cli

import (
	"context"
	"io"

	"github.com/aretw0/nodecalc"
	"github.com/aretw0/nodecalc/internal/presentation/tui"
)

// RunSession starts the interactive editor on in/out. Headless sessions skip
// the banner, the prompt and markdown rendering.
func RunSession(ctx context.Context, opts Options, in io.Reader, out io.Writer) error {
	logger := NewLogger(opts)

	engine, err := createEngine(opts, logger, nil)
	if err != nil {
		return err
	}

	if !opts.Headless {
		tui.PrintBanner(out)
	}

	r := nodecalc.NewRunner()
	r.Input = in
	r.Output = out
	r.Headless = opts.Headless
	if !opts.Headless {
		r.Report = tui.Report
		r.Renderer = tui.NewRenderer()
	}

	logger.Debug("Session started", "headless", opts.Headless)
	return handleExecutionError(r.Run(ctx, engine))
}
