package main

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/ccollins476ad/imker/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantSel source.Selector
		wantErr bool
	}{
		{
			name:    "category",
			args:    []string{"-category=Denver, Colorado", "-outfolder=dl"},
			wantSel: source.Category{Name: "Denver, Colorado"},
		},
		{
			name:    "page with spaces trimmed",
			args:    []string{"-page", "  Sandboarding ", "-outfolder", "dl"},
			wantSel: source.Page{Title: "Sandboarding"},
		},
		{
			name:    "local list",
			args:    []string{"-file=files.txt", "-outfolder=dl"},
			wantSel: source.LocalList{Path: "files.txt"},
		},
		{name: "no source", args: []string{"-outfolder=dl"}, wantErr: true},
		{name: "two sources", args: []string{"-category=A", "-page=B", "-outfolder=dl"}, wantErr: true},
		{name: "empty source", args: []string{"-category=", "-outfolder=dl"}, wantErr: true},
		{name: "blank source", args: []string{"-file=  ", "-outfolder=dl"}, wantErr: true},
		{name: "no outfolder", args: []string{"-category=A"}, wantErr: true},
		{name: "empty outfolder", args: []string{"-category=A", "-outfolder="}, wantErr: true},
		{name: "unknown flag", args: []string{"-category=A", "-outfolder=dl", "-recurse"}, wantErr: true},
		{name: "stray argument", args: []string{"-category=A", "-outfolder=dl", "extra"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := parseArgs(tt.args)
			if tt.wantErr {
				var ae *argError
				require.ErrorAs(t, err, &ae)
				assert.Equal(t, exitArgs, exitCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSel, cfg.Source)
			assert.Equal(t, "dl", cfg.OutDir)
		})
	}
}

func TestParseArgsOptions(t *testing.T) {
	cfg, err := parseArgs([]string{"-v", "-verify", "-gallery", "-config=imker.yaml", "-category=A", "-outfolder=dl"})
	require.NoError(t, err)

	assert.True(t, cfg.Verbose)
	assert.True(t, cfg.Verify)
	assert.True(t, cfg.Gallery)
	assert.Equal(t, "imker.yaml", cfg.ConfigPath)
}

func TestParseArgsHelp(t *testing.T) {
	_, err := parseArgs([]string{"-h"})
	assert.ErrorIs(t, err, flag.ErrHelp)
}

func TestCheckPreconditions(t *testing.T) {
	dir := t.TempDir()
	list := filepath.Join(dir, "files.txt")
	require.NoError(t, os.WriteFile(list, []byte("File:A.jpg\n"), 0644))

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"category into folder", Config{Source: source.Category{Name: "A"}, OutDir: dir}, false},
		{"list into folder", Config{Source: source.LocalList{Path: list}, OutDir: dir}, false},
		{"missing folder", Config{Source: source.Category{Name: "A"}, OutDir: filepath.Join(dir, "nope")}, true},
		{"folder is a file", Config{Source: source.Category{Name: "A"}, OutDir: list}, true},
		{"missing list", Config{Source: source.LocalList{Path: filepath.Join(dir, "nope.txt")}, OutDir: dir}, true},
		{"list is a folder", Config{Source: source.LocalList{Path: dir}, OutDir: dir}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkPreconditions(&tt.cfg)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var pe *preconditionError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, exitPrecondition, exitCode(err))
		})
	}
}

func TestLoadSettings(t *testing.T) {
	settings, err := loadSettings("")
	require.NoError(t, err)
	assert.Equal(t, "commons.wikimedia.org", settings.Host)

	_, err = loadSettings(filepath.Join(t.TempDir(), "nope.yaml"))
	var pe *preconditionError
	assert.ErrorAs(t, err, &pe)
}

func TestUsage(t *testing.T) {
	var buf bytes.Buffer
	usage(&buf, "/usr/local/bin/imker")

	out := buf.String()
	assert.Contains(t, out, "Usage: imker ")
	assert.Contains(t, out, "-category")
	assert.Contains(t, out, "-page")
	assert.Contains(t, out, "-file")
	assert.Contains(t, out, "-outfolder")
	assert.Contains(t, out, "-verify")
}
