package download

import (
	"fmt"
	"io"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Status messages reported through Sink.ItemStatus.
const (
	StatusOK        = "ok"
	StatusSkipped   = "skipped: already present"
	StatusCancelled = "cancelled"
	statusFailed    = "failed: "
)

// Sink receives per-title progress from a Driver. For every title, ItemBegin
// is called once, followed by the title's status messages, before anything
// is reported for the next title. Implementations must not block for long
// and have no way to report errors back.
type Sink interface {
	ItemBegin(index, total int, title string)
	ItemStatus(message string)
}

// ConsoleSink prints progress as plain text lines, e.g.:
//
//	(1/3): File:A.jpg
//	ok
type ConsoleSink struct {
	w io.Writer

	warnOnce sync.Once
}

func NewConsoleSink(w io.Writer) *ConsoleSink {
	return &ConsoleSink{
		w: w,
	}
}

func (s *ConsoleSink) ItemBegin(index, total int, title string) {
	_, err := fmt.Fprintf(s.w, "(%d/%d): %s\n", index, total, title)
	s.check(err)
}

func (s *ConsoleSink) ItemStatus(message string) {
	_, err := fmt.Fprintln(s.w, message)
	s.check(err)
}

// check logs the first write failure; the rest are dropped silently.
func (s *ConsoleSink) check(err error) {
	if err != nil {
		s.warnOnce.Do(func() {
			log.WithError(err).Warn("failed to print progress")
		})
	}
}
