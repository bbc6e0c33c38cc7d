package core

import (
	"fmt"

	"github.com/dkeye/voicerooms/internal/domain"
)

// Frame is a raw outbound payload (one WebSocket text message).
type Frame []byte

var (
	ErrBackpressure = fmt.Errorf("backpressure: %w", domain.ErrTransportUnavailable)
	ErrConnClosed   = fmt.Errorf("connection closed: %w", domain.ErrTransportUnavailable)
)

// SignalConnection abstracts the messaging transport of one participant.
// Owned by the adapter; the adapter must Close() it.
// TrySend never blocks. Close flushes frames already queued, then tears
// the transport down; it is safe to call more than once.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
