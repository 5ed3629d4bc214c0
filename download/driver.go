package download

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/ccollins476ad/imker/fileutil"
	"github.com/ccollins476ad/imker/retry"
	"github.com/ccollins476ad/imker/wiki"
	log "github.com/sirupsen/logrus"
)

// Fetcher streams the content of a remote file. *wiki.Client implements it.
type Fetcher interface {
	Download(ctx context.Context, title string, w io.Writer) (*wiki.FileInfo, error)
}

// Options tunes a Driver.
type Options struct {
	// Verify compares every download against the size and SHA-1 digest
	// advertised by the server.
	Verify bool
}

// Report summarizes a run.
type Report struct {
	Total      int
	Downloaded int
	Skipped    int
	Failed     int

	// Files lists the local names of all files present in the output
	// directory for this run's titles, in title order.
	Files []string
}

// Driver downloads a list of titles into a Store, one at a time.
type Driver struct {
	fetcher Fetcher
	harness *retry.Harness
	store   *Store
	sink    Sink
	opts    Options
}

func NewDriver(f Fetcher, h *retry.Harness, s *Store, sink Sink, opts Options) *Driver {
	return &Driver{
		fetcher: f,
		harness: h,
		store:   s,
		sink:    sink,
		opts:    opts,
	}
}

// Run downloads each title in order, reporting progress through the sink.
// Titles whose file is already present are skipped. A title that fails does
// not stop the run; Run returns a *PartialFailure listing all such titles
// once it is done. Cancellation stops the run at the current title and
// returns an error matching retry.ErrCancelled. The returned report is
// never nil.
func (d *Driver) Run(ctx context.Context, titles []string) (*Report, error) {
	rep := &Report{Total: len(titles)}
	claimed := make(map[string]string, len(titles)) // path --> title
	var failures []Failure

	fail := func(title string, err error) {
		log.WithError(err).Debugf("failed: %s", title)
		d.sink.ItemStatus(statusFailed + err.Error())
		failures = append(failures, Failure{Title: title, Err: err})
		rep.Failed++
	}

	for i, title := range titles {
		if err := ctx.Err(); err != nil {
			return rep, fmt.Errorf("%w: %w", retry.ErrCancelled, err)
		}

		d.sink.ItemBegin(i+1, len(titles), title)

		target, err := d.store.Target(title)
		if err != nil {
			fail(title, err)
			continue
		}
		if other, ok := claimed[target]; ok {
			fail(title, &CollisionError{Title: title, Other: other, Path: target})
			continue
		}
		claimed[target] = title

		if d.store.Has(target) {
			d.sink.ItemStatus(StatusSkipped)
			rep.Skipped++
			rep.Files = append(rep.Files, LocalName(title))
			continue
		}

		err = d.fetch(ctx, title, target)
		switch {
		case err == nil:
			d.sink.ItemStatus(StatusOK)
			rep.Downloaded++
			rep.Files = append(rep.Files, LocalName(title))

		case ctx.Err() != nil || errors.Is(err, retry.ErrCancelled):
			d.sink.ItemStatus(StatusCancelled)
			if !errors.Is(err, retry.ErrCancelled) {
				err = fmt.Errorf("%w: %w", retry.ErrCancelled, ctx.Err())
			}
			return rep, err

		default:
			fail(title, err)
			if d.isGlobal(err) {
				log.WithError(err).Errorf("aborting after %d of %d titles", i+1, len(titles))
				return rep, &PartialFailure{Failures: failures, Cause: err}
			}
		}
	}

	if len(failures) > 0 {
		return rep, &PartialFailure{Failures: failures}
	}
	return rep, nil
}

// fetch downloads title into target. Each attempt starts over with an
// empty temporary file.
func (d *Driver) fetch(ctx context.Context, title, target string) error {
	return d.store.Save(target, func(f *os.File) error {
		_, err := retry.Do(ctx, d.harness, func(ctx context.Context) (*wiki.FileInfo, error) {
			if err := rewind(f); err != nil {
				return nil, &WriteError{Path: f.Name(), Err: err}
			}

			h := sha1.New()
			var n byteCounter
			w := io.MultiWriter(&fileWriter{f: f}, h, &n)

			info, err := d.fetcher.Download(ctx, title, w)
			if err != nil {
				return nil, err
			}

			if d.opts.Verify {
				if err := verify(title, info, h, int64(n)); err != nil {
					return nil, err
				}
			}
			return info, nil
		})
		return err
	})
}

// isGlobal reports whether err means no further title can be stored either.
func (d *Driver) isGlobal(err error) bool {
	var we *WriteError
	if !errors.As(err, &we) {
		return false
	}
	if !fileutil.IsDir(d.store.Dir()) {
		return true
	}
	return errors.Is(err, syscall.ENOSPC) ||
		errors.Is(err, syscall.EROFS) ||
		errors.Is(err, fs.ErrPermission)
}

func verify(title string, info *wiki.FileInfo, h hash.Hash, n int64) error {
	if info.Size > 0 && n != info.Size {
		return &IntegrityError{
			Title: title,
			What:  "size",
			Want:  strconv.FormatInt(info.Size, 10),
			Have:  strconv.FormatInt(n, 10),
		}
	}

	if info.SHA1 == "" {
		log.Debugf("no digest advertised for %s; skipping check", title)
		return nil
	}
	have := hex.EncodeToString(h.Sum(nil))
	if !strings.EqualFold(have, info.SHA1) {
		return &IntegrityError{Title: title, What: "sha1", Want: info.SHA1, Have: have}
	}
	return nil
}

func rewind(f *os.File) error {
	if err := f.Truncate(0); err != nil {
		return err
	}
	_, err := f.Seek(0, io.SeekStart)
	return err
}

// fileWriter marks write failures as local so that they are not retried.
type fileWriter struct {
	f *os.File
}

func (fw *fileWriter) Write(p []byte) (int, error) {
	n, err := fw.f.Write(p)
	if err != nil {
		return n, &WriteError{Path: fw.f.Name(), Err: err}
	}
	return n, nil
}

type byteCounter int64

func (c *byteCounter) Write(p []byte) (int, error) {
	*c += byteCounter(len(p))
	return len(p), nil
}
