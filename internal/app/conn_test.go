package app

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/dkeye/voicerooms/internal/core"
	"github.com/stretchr/testify/require"
)

// recordConn is an in-memory SignalConnection with an optional queue limit.
type recordConn struct {
	mu     sync.Mutex
	frames []core.Frame
	limit  int
	closed bool
}

func (c *recordConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return core.ErrConnClosed
	}
	if c.limit > 0 && len(c.frames) >= c.limit {
		return core.ErrBackpressure
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *recordConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *recordConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *recordConn) messages(t *testing.T) []map[string]any {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]map[string]any, 0, len(c.frames))
	for _, f := range c.frames {
		var m map[string]any
		require.NoError(t, json.Unmarshal(f, &m))
		out = append(out, m)
	}
	return out
}

func (c *recordConn) types(t *testing.T) []string {
	t.Helper()
	var out []string
	for _, m := range c.messages(t) {
		out = append(out, m["type"].(string))
	}
	return out
}
