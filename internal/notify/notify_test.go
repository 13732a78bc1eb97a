package notify

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewWriterNotifier(&buf)

	Error(context.Background(), n, "permission denied")

	assert.Equal(t, "[error] permission denied\n", buf.String())
}

func TestRecorder_Drain(t *testing.T) {
	r := NewRecorder()
	ctx := context.Background()

	Error(ctx, r, "network error")
	Warning(ctx, r, "login expired")

	require.Len(t, r.All(), 2)

	drained := r.Drain()
	require.Len(t, drained, 2)
	assert.Equal(t, LevelError, drained[0].Level)
	assert.Equal(t, LevelWarning, drained[1].Level)
	assert.Empty(t, r.All())
}

func TestMulti(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()

	Error(context.Background(), Multi{a, nil, b}, "server error")

	assert.Len(t, a.All(), 1)
	assert.Len(t, b.All(), 1)
}

func TestNilNotifier(t *testing.T) {
	assert.NotPanics(t, func() {
		Error(context.Background(), nil, "ignored")
	})
}
