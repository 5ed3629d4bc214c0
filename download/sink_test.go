package download

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsoleSink(t *testing.T) {
	var buf bytes.Buffer
	s := NewConsoleSink(&buf)

	s.ItemBegin(1, 2, "File:A.jpg")
	s.ItemStatus(StatusOK)
	s.ItemBegin(2, 2, "File:B.jpg")
	s.ItemStatus(StatusSkipped)

	assert.Equal(t, "(1/2): File:A.jpg\nok\n(2/2): File:B.jpg\nskipped: already present\n", buf.String())
}

type brokenWriter struct{}

func (brokenWriter) Write(p []byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestConsoleSinkSwallowsWriteErrors(t *testing.T) {
	s := NewConsoleSink(brokenWriter{})

	assert.NotPanics(t, func() {
		for i := 1; i <= 100; i++ {
			s.ItemBegin(i, 100, "File:A.jpg")
			s.ItemStatus(StatusOK)
		}
	})
}
