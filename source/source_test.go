package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ccollins476ad/imker/retry"
	"github.com/ccollins476ad/imker/wiki"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	categoryMembers func(ctx context.Context, category string, recurse bool, namespace int) ([]string, error)
	imagesOnPage    func(ctx context.Context, pageTitle string) ([]string, error)
}

func (f *fakeLister) CategoryMembers(ctx context.Context, category string, recurse bool, namespace int) ([]string, error) {
	return f.categoryMembers(ctx, category, recurse, namespace)
}

func (f *fakeLister) ImagesOnPage(ctx context.Context, pageTitle string) ([]string, error) {
	return f.imagesOnPage(ctx, pageTitle)
}

// noSleep returns a harness whose budget sleeps last no time at all.
func noSleep(maxFails int) *retry.Harness {
	return retry.New(retry.Budget{MaxFails: maxFails, Sleep: time.Nanosecond})
}

func writeList(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "files.txt")
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestReadTitlesWithComments(t *testing.T) {
	titles, err := ReadTitles(strings.NewReader("File:A.jpg\n# comment\n\nB.png\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"File:A.jpg", "File:B.png"}, titles)
}

func TestReadTitlesTrimsAndStripsBOM(t *testing.T) {
	titles, err := ReadTitles(strings.NewReader("\ufeff  File:A.jpg  \r\n\t# indented comment\n  \nimage:C.gif"))
	require.NoError(t, err)
	assert.Equal(t, []string{"File:A.jpg", "File:C.gif"}, titles)
}

func TestReadTitlesFromLinks(t *testing.T) {
	list := strings.Join([]string{
		"https://commons.wikimedia.org/wiki/File:Denver_skyline.jpg",
		"https://commons.wikimedia.org/w/index.php?title=File:Red%20Rocks.png&oldid=1",
		"https://upload.wikimedia.org/wikipedia/commons/a/ab/Union_Station.jpg",
	}, "\n")

	titles, err := ReadTitles(strings.NewReader(list))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"File:Denver skyline.jpg",
		"File:Red Rocks.png",
		"File:Union Station.jpg",
	}, titles)
}

func TestReadTitleFileMissing(t *testing.T) {
	_, err := ReadTitleFile(filepath.Join(t.TempDir(), "nope.txt"))

	var lre *LocalReadError
	require.ErrorAs(t, err, &lre)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDedupe(t *testing.T) {
	in := []string{"File:B.jpg", "File:A.jpg", "", "File:B.jpg", "File:C.jpg", "File:A.jpg"}
	assert.Equal(t, []string{"File:B.jpg", "File:A.jpg", "File:C.jpg"}, Dedupe(in))
	assert.Empty(t, Dedupe(nil))
}

func TestResolveCategory(t *testing.T) {
	l := &fakeLister{
		categoryMembers: func(ctx context.Context, category string, recurse bool, namespace int) ([]string, error) {
			assert.Equal(t, "Denver, Colorado", category)
			assert.False(t, recurse)
			assert.Equal(t, wiki.FileNamespace, namespace)
			return []string{"File:Z.jpg", "File:A.jpg", "File:Z.jpg"}, nil
		},
	}

	titles, err := NewResolver(l, noSleep(3)).Resolve(context.Background(), Category{Name: "Denver, Colorado"})
	require.NoError(t, err)
	assert.Equal(t, []string{"File:Z.jpg", "File:A.jpg"}, titles)
}

func TestResolvePageRetriesTransientFailures(t *testing.T) {
	calls := 0
	l := &fakeLister{
		imagesOnPage: func(ctx context.Context, pageTitle string) ([]string, error) {
			calls++
			if calls < 3 {
				return nil, &wiki.RemoteError{Op: "get", Err: errors.New("connection reset")}
			}
			return []string{"File:Board.jpg"}, nil
		},
	}

	titles, err := NewResolver(l, noSleep(3)).Resolve(context.Background(), Page{Title: "Sandboarding"})
	require.NoError(t, err)
	assert.Equal(t, []string{"File:Board.jpg"}, titles)
	assert.Equal(t, 3, calls)
}

func TestResolveExhaustedRetries(t *testing.T) {
	l := &fakeLister{
		imagesOnPage: func(ctx context.Context, pageTitle string) ([]string, error) {
			return nil, &wiki.RemoteError{Op: "get", Err: errors.New("timeout")}
		},
	}

	_, err := NewResolver(l, noSleep(2)).Resolve(context.Background(), Page{Title: "X"})

	var ee *retry.ExhaustedError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, 2, ee.Attempts)
}

func TestResolveNotFoundIsNotRetried(t *testing.T) {
	calls := 0
	l := &fakeLister{
		categoryMembers: func(ctx context.Context, category string, recurse bool, namespace int) ([]string, error) {
			calls++
			return nil, wiki.ErrNotFound
		},
	}

	_, err := NewResolver(l, noSleep(3)).Resolve(context.Background(), Category{Name: "Nope"})
	assert.ErrorIs(t, err, wiki.ErrNotFound)
	assert.Equal(t, 1, calls)
}

func TestResolveEmptyResult(t *testing.T) {
	l := &fakeLister{
		categoryMembers: func(ctx context.Context, category string, recurse bool, namespace int) ([]string, error) {
			return nil, nil
		},
	}

	_, err := NewResolver(l, noSleep(3)).Resolve(context.Background(), Category{Name: "Empty"})
	assert.ErrorIs(t, err, ErrEmptyResult)
}

func TestResolveLocalList(t *testing.T) {
	p := writeList(t, "File:A.jpg\n# comment\n\nB.png\nA.jpg\n")

	titles, err := NewResolver(&fakeLister{}, noSleep(3)).Resolve(context.Background(), LocalList{Path: p})
	require.NoError(t, err)
	assert.Equal(t, []string{"File:A.jpg", "File:B.png"}, titles)
}

func TestResolveLocalListOnlyComments(t *testing.T) {
	p := writeList(t, "# nothing here\n\n")

	_, err := NewResolver(&fakeLister{}, noSleep(3)).Resolve(context.Background(), LocalList{Path: p})
	assert.ErrorIs(t, err, ErrEmptyResult)
}

func TestResolveLocalListUnreadable(t *testing.T) {
	_, err := NewResolver(&fakeLister{}, noSleep(3)).Resolve(context.Background(), LocalList{Path: t.TempDir()})

	var lre *LocalReadError
	assert.ErrorAs(t, err, &lre)
}
