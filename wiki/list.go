package wiki

import (
	"context"
	"errors"
	"net/url"
	"strconv"

	log "github.com/sirupsen/logrus"
)

// ErrRecursionUnsupported is returned when sub-category traversal is
// requested. Category resolution is shallow.
var ErrRecursionUnsupported = errors.New("wiki: recursive category traversal is not supported")

type pageRef struct {
	NS    int    `json:"ns"`
	Title string `json:"title"`
}

type page struct {
	NS            int         `json:"ns"`
	Title         string      `json:"title"`
	Missing       bool        `json:"missing"`
	Invalid       bool        `json:"invalid"`
	InvalidReason string      `json:"invalidreason"`
	Images        []pageRef   `json:"images"`
	ImageInfo     []imageInfo `json:"imageinfo"`
}

type pagesResult struct {
	Query struct {
		Pages []page `json:"pages"`
	} `json:"query"`
}

type categoryMembersResult struct {
	Query struct {
		CategoryMembers []pageRef `json:"categorymembers"`
	} `json:"query"`
}

// paginate runs a list query to completion, following continuation cursors
// and concatenating the titles that collect extracts from each batch. A
// failure on any batch discards everything collected so far.
func paginate[T any](ctx context.Context, c *Client, params url.Values, collect func(*T) ([]string, error)) ([]string, error) {
	var titles []string
	next := params

	for {
		var r T
		cont, err := c.query(ctx, next, &r)
		if err != nil {
			return nil, err
		}

		batch, err := collect(&r)
		if err != nil {
			return nil, err
		}
		titles = append(titles, batch...)

		if len(cont) == 0 {
			return titles, nil
		}

		log.Debugf("continuing query: %v", cont)
		next = withContinue(params, cont)
	}
}

func withContinue(params url.Values, cont map[string]string) url.Values {
	next := url.Values{}
	for k, vs := range params {
		next[k] = vs
	}
	for k, v := range cont {
		next.Set(k, v)
	}
	return next
}

// CategoryMembers returns the titles of the pages in the given namespace
// that belong to category, in server order. The "Category:" prefix is
// optional. An empty category yields an empty slice; a category that does
// not exist at all yields ErrNotFound.
func (c *Client) CategoryMembers(ctx context.Context, category string, recurse bool, namespace int) ([]string, error) {
	if recurse {
		return nil, ErrRecursionUnsupported
	}

	cat := CategoryTitle(category)
	params := url.Values{
		"list":        {"categorymembers"},
		"cmtitle":     {cat},
		"cmnamespace": {strconv.Itoa(namespace)},
		"cmprop":      {"title"},
		"cmlimit":     {"max"},
	}

	titles, err := paginate(ctx, c, params, func(r *categoryMembersResult) ([]string, error) {
		var batch []string
		for _, m := range r.Query.CategoryMembers {
			batch = append(batch, m.Title)
		}
		return batch, nil
	})
	if err != nil {
		return nil, err
	}

	if len(titles) == 0 {
		// Tell an empty category apart from a misspelled one.
		if _, err := c.Normalize(ctx, cat); err != nil {
			return nil, err
		}
	}

	return titles, nil
}

// ImagesOnPage returns the titles of all files used on the given page, in
// server order.
func (c *Client) ImagesOnPage(ctx context.Context, pageTitle string) ([]string, error) {
	params := url.Values{
		"prop":    {"images"},
		"titles":  {pageTitle},
		"imlimit": {"max"},
	}

	return paginate(ctx, c, params, func(r *pagesResult) ([]string, error) {
		var batch []string
		for _, p := range r.Query.Pages {
			if p.Missing || p.Invalid {
				return nil, notFound("page", pageTitle)
			}
			for _, img := range p.Images {
				batch = append(batch, img.Title)
			}
		}
		return batch, nil
	})
}

// Normalize asks the server for the canonical form of title. It returns
// ErrNotFound if the title is invalid or names a page that does not exist.
func (c *Client) Normalize(ctx context.Context, title string) (string, error) {
	params := url.Values{
		"prop":   {"info"},
		"titles": {title},
	}

	var r pagesResult
	if _, err := c.query(ctx, params, &r); err != nil {
		return "", err
	}

	if len(r.Query.Pages) == 0 {
		return "", notFound("page", title)
	}
	p := r.Query.Pages[0]
	if p.Missing || p.Invalid {
		return "", notFound("page", title)
	}

	return p.Title, nil
}
