package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/ccollins476ad/imker/retry"
	"github.com/ccollins476ad/imker/wiki"
	log "github.com/sirupsen/logrus"
)

// ErrEmptyResult means the selector was valid but matched no files.
var ErrEmptyResult = errors.New("selector matched no files")

// recurseSubcategories is passed to category queries. Sub-category
// traversal is switched off until there is a flag for it.
const recurseSubcategories = false

// Lister produces file titles from the remote repository. *wiki.Client
// implements it.
type Lister interface {
	CategoryMembers(ctx context.Context, category string, recurse bool, namespace int) ([]string, error)
	ImagesOnPage(ctx context.Context, pageTitle string) ([]string, error)
}

// Resolver turns selectors into title lists.
type Resolver struct {
	lister  Lister
	harness *retry.Harness
}

func NewResolver(l Lister, h *retry.Harness) *Resolver {
	return &Resolver{
		lister:  l,
		harness: h,
	}
}

// Resolve returns the titles matched by sel, without duplicates, in the
// order the server (or the local list) gave them. Remote queries are retried
// per the harness's budget.
func (r *Resolver) Resolve(ctx context.Context, sel Selector) ([]string, error) {
	var titles []string
	var err error

	switch s := sel.(type) {
	case Category:
		titles, err = retry.Do(ctx, r.harness, func(ctx context.Context) ([]string, error) {
			return r.lister.CategoryMembers(ctx, s.Name, recurseSubcategories, wiki.FileNamespace)
		})
	case Page:
		titles, err = retry.Do(ctx, r.harness, func(ctx context.Context) ([]string, error) {
			return r.lister.ImagesOnPage(ctx, s.Title)
		})
	case LocalList:
		titles, err = ReadTitleFile(s.Path)
	default:
		err = fmt.Errorf("unsupported selector type %T", sel)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", sel, err)
	}

	deduped := Dedupe(titles)
	if n := len(titles) - len(deduped); n > 0 {
		log.Debugf("dropped %d duplicate or empty titles", n)
	}
	if len(deduped) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyResult, sel)
	}

	log.Debugf("resolved %s to %d titles", sel, len(deduped))
	return deduped, nil
}

// Dedupe returns titles without empty entries and without repeats, keeping
// the position of each title's first occurrence.
func Dedupe(titles []string) []string {
	seen := make(map[string]struct{}, len(titles))
	out := make([]string, 0, len(titles))

	for _, t := range titles {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}

	return out
}
