// Package board defines the driver seam to the CAEN V65XX hardware and a
// fake implementation used for development and tests. The register-level
// protocol of the real boards lives behind the Driver interface and is
// supplied by a vendor library outside this module.
package board

// Value is one named parameter write.
type Value struct {
	Name  string
	Value float64
}

// ParameterNames lists the channel parameters of a V65XX board, as named in
// the CAEN documentation.
var ParameterNames = []string{
	"VSet",
	"ISet",
	"VMon",
	"IMonH",
	"Pw",
	"ChStatus",
	"Trip",
	"SVMax",
	"RDWn",
	"RUp",
	"PDwn",
	"Polarity",
	"Temp",
	"ImonRange",
	"IMonL",
}

// Driver talks to one or more physical boards. Connect yields an opaque
// handle scoped to the driver instance; all other calls take that handle.
// Implementations must return an error, not panic, on unreachable boards or
// invalid channels.
type Driver interface {
	// Connect opens the board at the given VME address over the conet/link
	// pair and returns a handle for it.
	Connect(address string, conet, link int) (int, error)
	// Disconnect releases the board behind the handle.
	Disconnect(handle int) error
	// Channels returns the number of channels on the board.
	Channels(handle int) (int, error)
	// ReadParameters reads the named parameters for the given channels,
	// keyed by channel number.
	ReadParameters(handle int, channels []int, names []string) (map[int]map[string]float64, error)
	// WriteParameters applies the values to every given channel.
	WriteParameters(handle int, channels []int, values []Value) error
}
