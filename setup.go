package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ccollins476ad/imker/config"
	"github.com/ccollins476ad/imker/fileutil"
	"github.com/ccollins476ad/imker/source"
	"github.com/ccollins476ad/imker/web"
)

type Config struct {
	Source     source.Selector // What to download.
	OutDir     string          // Existing directory to save files to.
	Verbose    bool            // True for verbose output.
	Verify     bool            // True to check downloads against server digests.
	Gallery    bool            // True to write an html gallery after the run.
	ConfigPath string          // Optional YAML settings file.
}

// argError is a missing or malformed command line argument.
type argError struct {
	msg string
}

func (e *argError) Error() string {
	return e.msg
}

// preconditionError means the arguments were well-formed but name something
// that is not usable, like an output folder that does not exist.
type preconditionError struct {
	msg string
}

func (e *preconditionError) Error() string {
	return e.msg
}

type rawArgs struct {
	category, page, file, outFolder string
	verbose, verify, gallery        bool
	configPath                      string
}

func newFlagSet(ra *rawArgs) *flag.FlagSet {
	fs := flag.NewFlagSet("imker", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&ra.category, "category", "", "download the files in `category`")
	fs.StringVar(&ra.page, "page", "", "download the files used on `page`")
	fs.StringVar(&ra.file, "file", "", "download the files listed in the local text file at `path`")
	fs.StringVar(&ra.outFolder, "outfolder", "", "existing `directory` to save files to")
	fs.BoolVar(&ra.verbose, "v", false, "verbose output")
	fs.BoolVar(&ra.verify, "verify", false, "check each download against the server's SHA-1 digest")
	fs.BoolVar(&ra.gallery, "gallery", false, "write an html gallery named "+web.GalleryName+" to the output folder")
	fs.StringVar(&ra.configPath, "config", "", "YAML settings `file`")

	return fs
}

// parseArgs interprets the command line arguments (without the program
// name). It performs no I/O.
func parseArgs(args []string) (*Config, error) {
	var ra rawArgs
	fs := newFlagSet(&ra)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, &argError{err.Error()}
	}
	if fs.NArg() > 0 {
		return nil, &argError{fmt.Sprintf("unexpected argument: %s", fs.Arg(0))}
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})

	var sel source.Selector
	var chosen []string
	if set["category"] {
		chosen = append(chosen, "-category")
		sel = source.Category{Name: strings.TrimSpace(ra.category)}
	}
	if set["page"] {
		chosen = append(chosen, "-page")
		sel = source.Page{Title: strings.TrimSpace(ra.page)}
	}
	if set["file"] {
		chosen = append(chosen, "-file")
		sel = source.LocalList{Path: ra.file}
	}

	switch {
	case len(chosen) == 0:
		return nil, &argError{"missing required argument: -category, -page, or -file"}
	case len(chosen) > 1:
		return nil, &argError{fmt.Sprintf("only one source may be given: have %s", strings.Join(chosen, ", "))}
	}

	var value string
	switch s := sel.(type) {
	case source.Category:
		value = s.Name
	case source.Page:
		value = s.Title
	case source.LocalList:
		value = strings.TrimSpace(s.Path)
	}
	if value == "" {
		return nil, &argError{fmt.Sprintf("empty value for %s", chosen[0])}
	}

	if !set["outfolder"] || ra.outFolder == "" {
		return nil, &argError{"missing required argument: -outfolder"}
	}

	return &Config{
		Source:     sel,
		OutDir:     ra.outFolder,
		Verbose:    ra.verbose,
		Verify:     ra.verify,
		Gallery:    ra.gallery,
		ConfigPath: ra.configPath,
	}, nil
}

// checkPreconditions verifies that the paths named on the command line
// exist. It runs before any network access.
func checkPreconditions(cfg *Config) error {
	if !fileutil.IsDir(cfg.OutDir) {
		return &preconditionError{"not a folder: " + cfg.OutDir}
	}
	if l, ok := cfg.Source.(source.LocalList); ok && !fileutil.IsRegular(l.Path) {
		return &preconditionError{"not a file: " + l.Path}
	}
	return nil
}

// loadSettings returns the settings from the given YAML file, or the
// defaults if path is empty.
func loadSettings(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}

	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return config.Config{}, &preconditionError{err.Error()}
	}
	return cfg, nil
}

func usage(w io.Writer, program string) {
	fmt.Fprintf(w, "Usage: %s [option]... <source> -outfolder=<directory>\n", filepath.Base(program))
	fmt.Fprintf(w, " ↳ source, exactly one of:\n")
	fmt.Fprintf(w, "     -category=\"Denver, Colorado\"\n")
	fmt.Fprintf(w, "     -page=\"Sandboarding\"\n")
	fmt.Fprintf(w, "     -file=\"Documents/files.txt\" (one file title per line; lines starting with # are ignored)\n")
	fmt.Fprintf(w, " ↳ target folder, which must exist, e.g.:\n")
	fmt.Fprintf(w, "     -outfolder=\"user/downloads\"\n")
	fmt.Fprintf(w, "Options:\n")

	var ra rawArgs
	fs := newFlagSet(&ra)
	fs.SetOutput(w)
	fs.PrintDefaults()
}
