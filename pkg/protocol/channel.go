package protocol

import "fmt"

// ChannelID identifies one physical power-supply channel: the board it lives
// on (VME address string), the conet and link indices of the connection, and
// the channel number on the board.
type ChannelID struct {
	Board   string `json:"board"`
	Conet   int    `json:"conet"`
	Link    int    `json:"link"`
	Channel int    `json:"channel"`
}

// String returns the stable textual form used as a map key in readback
// results, e.g. "40000000:0:0:3".
func (id ChannelID) String() string {
	return fmt.Sprintf("%s:%d:%d:%d", id.Board, id.Conet, id.Link, id.Channel)
}
