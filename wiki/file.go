package wiki

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

type imageInfo struct {
	URL  string `json:"url"`
	Size int64  `json:"size"`
	SHA1 string `json:"sha1"`
	MIME string `json:"mime"`
}

// FileInfo describes the current revision of a remote file.
type FileInfo struct {
	Title string
	URL   string // Where the content can be downloaded from.
	Size  int64
	SHA1  string // Hex digest advertised by the server.
	MIME  string
}

// FileInfo looks up the current revision of the file with the given title.
func (c *Client) FileInfo(ctx context.Context, title string) (*FileInfo, error) {
	params := url.Values{
		"prop":   {"imageinfo"},
		"titles": {title},
		"iiprop": {"url|size|sha1|mime"},
	}

	var r pagesResult
	if _, err := c.query(ctx, params, &r); err != nil {
		return nil, err
	}

	if len(r.Query.Pages) == 0 {
		return nil, notFound("file", title)
	}
	p := r.Query.Pages[0]
	// Files hosted on a shared repository show up as missing pages that
	// still carry image info, so only the latter matters.
	if p.Invalid || len(p.ImageInfo) == 0 || p.ImageInfo[0].URL == "" {
		return nil, notFound("file", title)
	}

	ii := p.ImageInfo[0]
	return &FileInfo{
		Title: p.Title,
		URL:   ii.URL,
		Size:  ii.Size,
		SHA1:  ii.SHA1,
		MIME:  ii.MIME,
	}, nil
}

// Download resolves title to its content URL and streams the content into
// w. Failures reading from the network are RemoteErrors; failures writing to
// w are returned as they are, so that a retry harness does not mistake a
// full disk for a flaky connection. On error, w may have received a prefix
// of the content.
func (c *Client) Download(ctx context.Context, title string, w io.Writer) (*FileInfo, error) {
	info, err := c.FileInfo(ctx, title)
	if err != nil {
		return nil, err
	}

	rsp, err := c.get(ctx, info.URL)
	if err != nil {
		return nil, err
	}
	defer rsp.Body.Close()

	switch {
	case rsp.StatusCode == http.StatusNotFound:
		return nil, notFound("file content", title)
	case rsp.StatusCode < 200 || rsp.StatusCode >= 300:
		return nil, &RemoteError{Op: "get " + info.URL, StatusCode: rsp.StatusCode, Err: fmt.Errorf("%s", rsp.Status)}
	}

	tr := &trackingReader{r: rsp.Body}
	if _, err := io.Copy(w, tr); err != nil {
		if tr.err != nil {
			return nil, &RemoteError{Op: "read " + info.URL, Err: err}
		}
		return nil, err
	}

	return info, nil
}

// FetchContent returns the complete content of the file with the given
// title.
func (c *Client) FetchContent(ctx context.Context, title string) ([]byte, *FileInfo, error) {
	var buf bytes.Buffer
	info, err := c.Download(ctx, title, &buf)
	if err != nil {
		return nil, nil, err
	}
	return buf.Bytes(), info, nil
}

// trackingReader remembers the last non-EOF error returned by the wrapped
// reader.
type trackingReader struct {
	r   io.Reader
	err error
}

func (tr *trackingReader) Read(p []byte) (int, error) {
	n, err := tr.r.Read(p)
	if err != nil && err != io.EOF {
		tr.err = err
	}
	return n, err
}
