package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ccollins476ad/imker/download"
	log "github.com/sirupsen/logrus"
)

const (
	programName = "Imker"
	description = "Bulk downloader for media files on Wikimedia Commons"
	version     = "v1.0.0"
)

func printFatalError(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
}

func main() {
	cfg, err := parseArgs(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			usage(os.Stdout, os.Args[0])
			os.Exit(exitOK)
		}
		printFatalError(err)
		usage(os.Stderr, os.Args[0])
		os.Exit(exitArgs)
	}

	if cfg.Verbose {
		log.SetLevel(log.DebugLevel)
	}

	fmt.Printf("%s %s\n%s\n\n", programName, version, description)

	settings, err := loadSettings(cfg.ConfigPath)
	if err != nil {
		printFatalError(err)
		os.Exit(exitCode(err))
	}

	// Nothing touches the network until the paths check out.
	err = checkPreconditions(cfg)
	if err != nil {
		printFatalError(err)
		os.Exit(exitCode(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, settings, os.Stdout)
	stop()

	var pf *download.PartialFailure
	if err != nil && !errors.As(err, &pf) {
		printFatalError(err)
	}
	os.Exit(exitCode(err))
}
