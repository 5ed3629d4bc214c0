package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ccollins476ad/imker/config"
	"github.com/ccollins476ad/imker/download"
	"github.com/ccollins476ad/imker/retry"
	"github.com/ccollins476ad/imker/source"
	"github.com/ccollins476ad/imker/web"
	"github.com/ccollins476ad/imker/wiki"
	log "github.com/sirupsen/logrus"
)

// Exit codes.
const (
	exitOK           = 0
	exitArgs         = 1
	exitPrecondition = 2
	exitResolve      = 3
	exitFailure      = 4
	exitCancelled    = 130
)

// resolveError wraps a failure to turn the source into a list of titles.
type resolveError struct {
	err error
}

func (e *resolveError) Error() string {
	return e.err.Error()
}

func (e *resolveError) Unwrap() error {
	return e.err
}

// run resolves cfg.Source to a list of titles and downloads them into
// cfg.OutDir, printing progress to out. A nil error or a *PartialFailure
// without a cause means the run went through to the end.
func run(ctx context.Context, cfg *Config, settings config.Config, out io.Writer) error {
	client := wiki.NewClient(settings.WikiOptions())
	harness := retry.New(settings.Budget())

	titles, err := source.NewResolver(client, harness).Resolve(ctx, cfg.Source)
	if err != nil {
		return &resolveError{err}
	}

	fmt.Fprintf(out, "\nTarget folder: %s\nDownloading %d files\n", cfg.OutDir, len(titles))

	store := download.NewStore(cfg.OutDir)
	sink := download.NewConsoleSink(out)
	d := download.NewDriver(client, harness, store, sink, download.Options{Verify: cfg.Verify})

	rep, err := d.Run(ctx, titles)
	printSummary(out, rep, err)

	if cfg.Gallery && !errors.Is(err, retry.ErrCancelled) {
		if gerr := saveGallery(store, cfg.Source.String(), rep.Files); gerr != nil {
			log.WithError(gerr).Errorf("failed to write gallery")
		}
	}

	return err
}

func printSummary(out io.Writer, rep *download.Report, err error) {
	fmt.Fprintln(out)

	if errors.Is(err, retry.ErrCancelled) {
		fmt.Fprintf(out, "Run cancelled: %d downloaded, %d skipped, %d failed\n", rep.Downloaded, rep.Skipped, rep.Failed)
		return
	}

	fmt.Fprintf(out, "Run complete: %d downloaded, %d skipped, %d failed\n", rep.Downloaded, rep.Skipped, rep.Failed)

	var pf *download.PartialFailure
	if errors.As(err, &pf) {
		if pf.Cause != nil {
			fmt.Fprintf(out, "Run aborted after a failure affecting all files: %v\n", pf.Cause)
		}
		fmt.Fprintln(out, "Failed files:")
		for _, f := range pf.Failures {
			fmt.Fprintf(out, "  %s: %v\n", f.Title, f.Err)
		}
	}
}

func saveGallery(store *download.Store, heading string, files []string) error {
	var buf bytes.Buffer
	if err := web.WriteGallery(&buf, heading, files); err != nil {
		return err
	}
	return store.SaveFile(web.GalleryName, buf.Bytes())
}

// exitCode maps the outcome of a run to the process exit status.
func exitCode(err error) int {
	var ae *argError
	var pe *preconditionError
	var re *resolveError
	var pf *download.PartialFailure

	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, retry.ErrCancelled):
		return exitCancelled
	case errors.As(err, &ae):
		return exitArgs
	case errors.As(err, &pe):
		return exitPrecondition
	case errors.As(err, &re):
		return exitResolve
	case errors.As(err, &pf):
		// Failed titles and the cause of an abort are listed in the summary.
		return exitOK
	default:
		return exitFailure
	}
}
