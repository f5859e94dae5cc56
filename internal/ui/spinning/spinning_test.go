package spinning_test

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	. "github.com/janpfeifer/wavepath/internal/ui/spinning"
	"github.com/stretchr/testify/assert"
)

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

func TestSpinner(t *testing.T) {
	var out syncBuffer
	s := New(context.Background(), &out, "waving")
	time.Sleep(250 * time.Millisecond)
	s.Done()
	s.Done()
	text := out.String()
	assert.Contains(t, text, "\rwaving ")
	assert.Contains(t, text, "\033[?25h")
}

func TestSpinnerCancelled(t *testing.T) {
	var out syncBuffer
	ctx, cancel := context.WithCancel(context.Background())
	s := New(ctx, &out, "waving")
	cancel()
	s.Done()
	assert.Contains(t, out.String(), "\033[?25h")
}
