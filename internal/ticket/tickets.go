package ticket

import (
	"fmt"

	"github.com/hvctl-io/hvctl/pkg/protocol"
)

// run executes a ticket body and folds every failure mode, including a
// panicking handler, into a result envelope. Execute's contract is "always
// returns an envelope, never raises".
func run(fn func() (map[string]any, error)) (res protocol.Result) {
	defer func() {
		if r := recover(); r != nil {
			res = protocol.Fail(fmt.Errorf("ticket: %v", r))
		}
	}()
	body, err := fn()
	if err != nil {
		return protocol.Fail(err)
	}
	return protocol.OK(body)
}

// numeric extracts a float64 parameter. JSON numbers decode as float64, but
// tickets built in-process may carry native int or float values.
func numeric(params map[string]any, key string) (float64, error) {
	raw, ok := params[key]
	if !ok {
		return 0, fmt.Errorf("missing required parameter %q", key)
	}
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	}
	return 0, fmt.Errorf("parameter %q is not numeric", key)
}

// stringSlice extracts an optional list-of-strings parameter. Returns nil
// when the parameter is absent.
func stringSlice(params map[string]any, key string) ([]string, error) {
	raw, ok := params[key]
	if !ok || raw == nil {
		return nil, nil
	}
	switch v := raw.(type) {
	case []string:
		return v, nil
	case []any:
		result := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("parameter %q contains a non-string entry", key)
			}
			result = append(result, s)
		}
		return result, nil
	}
	return nil, fmt.Errorf("parameter %q is not a list of strings", key)
}

// --- Down ---

// DownTicket powers down every channel on every layer.
type DownTicket struct {
	params map[string]any
}

var downDescriptor = protocol.TypeDescriptor{
	Name: string(TypeDown),
	Args: map[string]protocol.ParamSpec{},
}

// NewDown builds a Down ticket. The parameter mapping is kept verbatim but
// the ticket itself uses none of it.
func NewDown(params map[string]any) *DownTicket {
	return &DownTicket{params: params}
}

func (t *DownTicket) Type() Type { return TypeDown }

func (t *DownTicket) TypeDescriptor() protocol.TypeDescriptor { return downDescriptor }

func (t *DownTicket) Descriptor() protocol.Envelope {
	return protocol.Envelope{Name: string(TypeDown), Params: map[string]any{}}
}

func (t *DownTicket) Execute(h Handler) protocol.Result {
	return run(func() (map[string]any, error) {
		if err := h.PowerDown(nil); err != nil {
			return nil, err
		}
		return nil, nil
	})
}

// --- SetVoltage ---

// SetVoltageTicket applies a multiple of each layer's default voltage to the
// crate. The multiplier is bounded so no channel can be driven past the
// hardware limit of the V65XX boards.
type SetVoltageTicket struct {
	params map[string]any
}

var setVoltageDescriptor = protocol.TypeDescriptor{
	Name: string(TypeSetVoltage),
	Args: map[string]protocol.ParamSpec{
		"target_voltage": protocol.Bound(0, 1.2, "Multiplier of the per-layer default voltage to be set."),
	},
}

// NewSetVoltage builds a SetVoltage ticket. Construction is total: the
// parameters are stored verbatim and checked only by Inspect or at Execute.
func NewSetVoltage(params map[string]any) *SetVoltageTicket {
	return &SetVoltageTicket{params: params}
}

func (t *SetVoltageTicket) Type() Type { return TypeSetVoltage }

func (t *SetVoltageTicket) TypeDescriptor() protocol.TypeDescriptor { return setVoltageDescriptor }

func (t *SetVoltageTicket) Descriptor() protocol.Envelope {
	params := map[string]any{}
	if v, err := numeric(t.params, "target_voltage"); err == nil {
		params["target_voltage"] = v
	}
	return protocol.Envelope{Name: string(TypeSetVoltage), Params: params}
}

func (t *SetVoltageTicket) Execute(h Handler) protocol.Result {
	return run(func() (map[string]any, error) {
		target, err := numeric(t.params, "target_voltage")
		if err != nil {
			return nil, err
		}
		if err := h.SetVoltage(nil, target); err != nil {
			return nil, err
		}
		return nil, nil
	})
}

// --- GetParams ---

// GetParamsTicket reads back channel parameters for all active channels.
type GetParamsTicket struct {
	params map[string]any
}

var getParamsDescriptor = protocol.TypeDescriptor{
	Name: string(TypeGetParams),
	Args: map[string]protocol.ParamSpec{
		"select_params": protocol.Optional("Parameter names to read back; all known parameters when omitted."),
	},
}

// NewGetParams builds a GetParams ticket.
func NewGetParams(params map[string]any) *GetParamsTicket {
	return &GetParamsTicket{params: params}
}

func (t *GetParamsTicket) Type() Type { return TypeGetParams }

func (t *GetParamsTicket) TypeDescriptor() protocol.TypeDescriptor { return getParamsDescriptor }

func (t *GetParamsTicket) Descriptor() protocol.Envelope {
	params := map[string]any{}
	if sel, err := stringSlice(t.params, "select_params"); err == nil && sel != nil {
		params["select_params"] = sel
	}
	return protocol.Envelope{Name: string(TypeGetParams), Params: params}
}

func (t *GetParamsTicket) Execute(h Handler) protocol.Result {
	return run(func() (map[string]any, error) {
		selected, err := stringSlice(t.params, "select_params")
		if err != nil {
			return nil, err
		}
		chParams, err := h.GetParams(nil, selected)
		if err != nil {
			return nil, err
		}
		return map[string]any{"params": chParams}, nil
	})
}
