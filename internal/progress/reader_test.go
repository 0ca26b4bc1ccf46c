package progress

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReader_CountsBytes(t *testing.T) {
	t.Parallel()

	data := []byte("hello world")
	var events []int64
	pr := NewReader(bytes.NewReader(data), func(transferred int64) {
		events = append(events, transferred)
	})

	buf := make([]byte, 5)
	n, err := pr.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, []int64{5}, events)
	assert.Equal(t, int64(5), pr.Count())

	_, err = io.ReadAll(pr)
	require.NoError(t, err)
	assert.Equal(t, int64(11), pr.Count())
	assert.Equal(t, int64(11), events[len(events)-1])
}

func TestReader_NilCallback(t *testing.T) {
	t.Parallel()

	data := []byte("hello")
	pr := NewReader(bytes.NewReader(data), nil)

	buf, err := io.ReadAll(pr)
	require.NoError(t, err)
	assert.Equal(t, data, buf)
	assert.Equal(t, int64(len(data)), pr.Count())
}

func TestReader_CloseClosesUnderlying(t *testing.T) {
	t.Parallel()

	closed := false
	r := &mockCloser{
		Reader: bytes.NewReader([]byte("test")),
		onClose: func() error {
			closed = true
			return nil
		},
	}

	pr := NewReader(r, nil)
	require.NoError(t, pr.Close())
	assert.True(t, closed)
}

func TestReader_CloseNonCloser(t *testing.T) {
	t.Parallel()

	pr := NewReader(bytes.NewReader([]byte("test")), nil)
	require.NoError(t, pr.Close())
}

type mockCloser struct {
	io.Reader
	onClose func() error
}

func (m *mockCloser) Close() error {
	return m.onClose()
}
