package source

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/ccollins476ad/imker/wiki"
	log "github.com/sirupsen/logrus"
	"mvdan.cc/xurls/v2"
)

// LocalReadError means a local title list could not be read.
type LocalReadError struct {
	Path string
	Err  error
}

func (e *LocalReadError) Error() string {
	return fmt.Sprintf("failed to read title list %s: %v", e.Path, e.Err)
}

func (e *LocalReadError) Unwrap() error {
	return e.Err
}

var urlRx = xurls.Strict()

// ReadTitleFile reads a title list from the file at the given path. See
// ReadTitles for the format.
func ReadTitleFile(filename string) ([]string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, &LocalReadError{Path: filename, Err: err}
	}
	defer f.Close()

	titles, err := ReadTitles(f)
	if err != nil {
		return nil, &LocalReadError{Path: filename, Err: err}
	}
	return titles, nil
}

// ReadTitles parses a UTF-8 title list. Each non-blank line that does not
// begin with '#' names one file, with surrounding whitespace removed. A
// missing "File:" prefix is added. A line consisting of a single link to a
// file page (e.g. https://commons.wikimedia.org/wiki/File:A.jpg) is taken
// to name that file.
func ReadTitles(r io.Reader) ([]string, error) {
	var titles []string

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for first := true; sc.Scan(); first = false {
		line := sc.Text()
		if first {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if urlRx.FindString(line) == line {
			if title, ok := titleFromURL(line); ok {
				log.Debugf("title from link: %s --> %s", line, title)
				line = title
			}
		}

		titles = append(titles, wiki.FileTitle(line))
	}

	if err := sc.Err(); err != nil {
		return nil, err
	}
	return titles, nil
}

// titleFromURL extracts a page title from a link to a wiki page
// ("/wiki/<title>" or "index.php?title=<title>") or to the file content
// itself (last path segment).
func titleFromURL(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}

	var title string
	switch {
	case u.Query().Get("title") != "":
		title = u.Query().Get("title")
	case strings.HasPrefix(u.Path, "/wiki/"):
		title = strings.TrimPrefix(u.Path, "/wiki/")
	default:
		title = path.Base(u.Path)
	}

	if title == "" || title == "." || title == "/" {
		return "", false
	}
	return strings.ReplaceAll(title, "_", " "), true
}
