package graph

import (
	"fmt"
	"math"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/nodecalc/pkg/domain"
)

// NodeConfig is the per-node configuration accepted by AddNode.
type NodeConfig struct {
	// Name is a display label. Defaults to the kind.
	Name string `mapstructure:"name" json:"name,omitempty" validate:"omitempty,max=64,printascii"`

	// Literal is the initial value of a Constant (default 0).
	Literal *int64 `mapstructure:"literal" json:"literal,omitempty"`

	// Defaults are the initial editable values of the inputs, in port order (default 0).
	Defaults []int64 `mapstructure:"defaults" json:"defaults,omitempty" validate:"max=2"`

	// NoDefault removes the literal editor from every input, leaving
	// unconnected inputs absent.
	NoDefault bool `mapstructure:"no_default" json:"no_default,omitempty"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ConfigError reports a node config that failed to decode or validate.
// It matches domain.ErrInvalidConfig.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return e.Err.Error() }

func (e *ConfigError) Unwrap() []error { return []error{domain.ErrInvalidConfig, e.Err} }

// WholeNumberHook refuses to decode a float into an integer field unless it
// is a whole number within the field's range. Weak decoding would otherwise
// truncate 2.5 to 2 and wrap 1e30 around.
func WholeNumberHook() mapstructure.DecodeHookFuncType {
	return func(from, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.Float64 && from.Kind() != reflect.Float32 {
			return data, nil
		}
		for to.Kind() == reflect.Ptr {
			to = to.Elem()
		}
		var lo, hi float64
		switch to.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			bits := to.Bits()
			lo, hi = -math.Ldexp(1, bits-1), math.Ldexp(1, bits-1)
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			lo, hi = 0, math.Ldexp(1, to.Bits())
		default:
			return data, nil
		}

		f := reflect.ValueOf(data).Float()
		if f != math.Trunc(f) || f < lo || f >= hi {
			return nil, fmt.Errorf("%v is not a whole number in %s range", f, to.Kind())
		}
		return data, nil
	}
}

// DecodeConfig converts a free-form map into a NodeConfig.
// Numbers may arrive as float64 (JSON) or strings (CLI); both are accepted
// when they hold whole numbers. Failures are a *ConfigError.
func DecodeConfig(raw map[string]any) (NodeConfig, error) {
	var cfg NodeConfig
	if len(raw) == 0 {
		return cfg, nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(WholeNumberHook()),
	})
	if err != nil {
		return cfg, fmt.Errorf("failed to build config decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return NodeConfig{}, &ConfigError{Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return NodeConfig{}, &ConfigError{Err: err}
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c NodeConfig) Validate() error {
	return validate.Struct(c)
}

// check verifies the config fits the kind.
func (c NodeConfig) check(kind domain.NodeKind) error {
	inputs, _ := kind.Layout()
	if c.Literal != nil && kind != domain.KindConstant {
		return fmt.Errorf("literal is only valid for %s nodes", domain.KindConstant)
	}
	if len(c.Defaults) > len(inputs) {
		return fmt.Errorf("%s has %d inputs, got %d defaults", kind, len(inputs), len(c.Defaults))
	}
	return nil
}
