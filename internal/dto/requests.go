// Package dto holds the request and response bodies shared by the HTTP and
// MCP adapters. Fields carry json tags for HTTP, mapstructure tags for MCP
// tool arguments and validate tags checked with go-playground/validator.
package dto

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/nodecalc/pkg/domain"
	"github.com/aretw0/nodecalc/pkg/graph"
)

// AddNodeRequest creates a node.
type AddNodeRequest struct {
	Kind      string  `json:"kind" mapstructure:"kind" validate:"required,oneof=constant sum division"`
	Name      string  `json:"name,omitempty" mapstructure:"name" validate:"omitempty,max=64,printascii"`
	Literal   *int64  `json:"literal,omitempty" mapstructure:"literal"`
	Defaults  []int64 `json:"defaults,omitempty" mapstructure:"defaults" validate:"max=2"`
	NoDefault bool    `json:"no_default,omitempty" mapstructure:"no_default"`
}

// Config converts the request into the free-form node config the engine accepts.
func (r AddNodeRequest) Config() map[string]any {
	cfg := map[string]any{}
	if r.Name != "" {
		cfg["name"] = r.Name
	}
	if r.Literal != nil {
		cfg["literal"] = *r.Literal
	}
	if len(r.Defaults) > 0 {
		cfg["defaults"] = r.Defaults
	}
	if r.NoDefault {
		cfg["no_default"] = true
	}
	return cfg
}

// ConnectRequest links an output port to an input port. Ports use the
// "node:out:0" / "node:in:1" notation.
type ConnectRequest struct {
	From string `json:"from" mapstructure:"from" validate:"required"`
	To   string `json:"to" mapstructure:"to" validate:"required"`
}

// Ports parses both ends.
func (r ConnectRequest) Ports() (from, to domain.PortID, err error) {
	if from, err = domain.ParsePortID(r.From); err != nil {
		return from, to, err
	}
	to, err = domain.ParsePortID(r.To)
	return from, to, err
}

// LiteralRequest sets a literal. A null value clears it to absent.
type LiteralRequest struct {
	Value domain.Value `json:"value"`
}

// ToolLiteralRequest is the MCP form of a literal edit: the target is a node
// id or a port, and the value is a decimal string or "null".
type ToolLiteralRequest struct {
	Target string `mapstructure:"target" validate:"required"`
	Value  string `mapstructure:"value"`
}

// AddNodeResponse reports the created id.
type AddNodeResponse struct {
	ID       domain.NodeID   `json:"id"`
	Snapshot domain.Snapshot `json:"snapshot"`
}

// ConnectResponse reports the created connection id.
type ConnectResponse struct {
	ID       domain.ConnectionID `json:"id"`
	Snapshot domain.Snapshot     `json:"snapshot"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind,omitempty"`
	Subject string `json:"subject,omitempty"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the validate tags of a request struct.
func Validate(req any) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}

// Decode fills out from loosely typed arguments (MCP tool calls deliver JSON
// numbers as float64) and validates it. Fractional or out-of-range numbers
// are rejected for integer fields.
func Decode(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(graph.WholeNumberHook()),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(args); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return Validate(out)
}
