package core

import "github.com/dkeye/Boxcall/internal/domain"

// Frame is one encoded text frame.
type Frame []byte

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	ID() domain.ConnID
	TrySend(Frame) error
	Close()
}
