// Package setup tracks the live state of the crate (boards, channels, last
// known parameter values) and implements the handler that tickets execute
// against.
package setup

import (
	"time"

	"github.com/hvctl-io/hvctl/pkg/protocol"
)

// BoardState is one registered board and, once connected, its driver handle.
type BoardState struct {
	Address string
	Conet   int
	Link    int
	Handle  *int
}

// ChannelState is one registered channel with the last parameter values read
// from the hardware. A nil entry in Params means the parameter has never
// been read; a nil LastUpdate means nothing has been read yet.
type ChannelState struct {
	ID         protocol.ChannelID
	Alias      string
	Layer      int
	LastUpdate *time.Time
	Params     map[string]*float64
}

// Store is the persistence interface for crate state.
type Store interface {
	// Reset drops all recorded boards and channels.
	Reset() error
	// AddBoard registers a board.
	AddBoard(b BoardState) error
	// SetBoardHandle records the driver handle of a connected board.
	SetBoardHandle(address string, handle int) error
	// Boards returns all registered boards.
	Boards() ([]BoardState, error)
	// AddChannel registers a channel.
	AddChannel(ch ChannelState) error
	// Channels returns registered channels, restricted to one layer when
	// layer is non-nil.
	Channels(layer *int) ([]ChannelState, error)
	// Channel returns a single channel by identity.
	Channel(id protocol.ChannelID) (*ChannelState, error)
	// UpdateParams overwrites the stored parameter values of a channel and
	// stamps the update time.
	UpdateParams(id protocol.ChannelID, params map[string]float64, at time.Time) error
	// Close releases the store.
	Close() error
}
