package spinner

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer guards a bytes.Buffer shared with the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinner_DrawsAndClears(t *testing.T) {
	var out syncBuffer
	s := Start(&out, "Judging")
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Judging")
	}, 2*time.Second, 10*time.Millisecond)

	s.Update("Judging 2/4")
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Judging 2/4")
	}, 2*time.Second, 10*time.Millisecond)

	s.Stop()
	s.Stop()

	got := out.String()
	assert.True(t, strings.HasSuffix(got, "\r"), "line should be cleared on stop")
	assert.Contains(t, got, frames[0])
}

func TestStartIfTerminal_NonTTY(t *testing.T) {
	var out bytes.Buffer
	s := StartIfTerminal(&out, "Judging")
	assert.Nil(t, s)

	// nil spinners are safe to use
	s.Update("more")
	s.Stop()
	assert.Empty(t, out.String())
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}))
}
