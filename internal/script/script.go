// Package script replays edit commands against an engine. Commands come from
// YAML scripts or from single REPL lines and refer to nodes by alias.
package script

import (
	"errors"
	"fmt"

	"github.com/aretw0/nodecalc/pkg/domain"
)

// Op names a command.
type Op string

const (
	OpAdd        Op = "add"
	OpRemove     Op = "remove"
	OpConnect    Op = "connect"
	OpDisconnect Op = "disconnect"
	OpSet        Op = "set"
	OpRecompute  Op = "recompute"
	OpExpect     Op = "expect"
	OpShow       Op = "show"
)

// ErrExpectation is returned when an expect step does not match the snapshot.
var ErrExpectation = errors.New("expectation failed")

// Command is one parsed edit or check.
type Command struct {
	Op Op

	// add
	Kind   domain.NodeKind
	Alias  string
	Config map[string]any

	// remove, disconnect, set: a node alias, node id, port ref or connection alias
	Target string

	// connect
	From, To string

	// set
	Value domain.Value

	// expect
	Expect *Expectation

	// Fails names the error kind the command must fail with.
	Fails string
}

// Expectation describes the observable state a step asserts.
// Empty fields are not checked.
type Expectation struct {
	Display  *string           `yaml:"display"`
	Severity string            `yaml:"severity"`
	Message  *string           `yaml:"message"`
	Values   map[string]string `yaml:"values"`
}

// Check compares the expectation with a snapshot. resolve maps the port
// references used in Values to port ids.
func (x *Expectation) Check(snap domain.Snapshot, resolve func(string) (domain.PortID, error)) error {
	var problems []string
	if x.Display != nil && snap.Display.Text != *x.Display {
		problems = append(problems, fmt.Sprintf("display: got %q, want %q", snap.Display.Text, *x.Display))
	}
	if x.Severity != "" && string(snap.Verdict.Severity()) != x.Severity {
		problems = append(problems, fmt.Sprintf("severity: got %s, want %s", snap.Verdict.Severity(), x.Severity))
	}
	if x.Message != nil && snap.Verdict.Message != *x.Message {
		problems = append(problems, fmt.Sprintf("message: got %q, want %q", snap.Verdict.Message, *x.Message))
	}
	for ref, raw := range x.Values {
		want, err := domain.ParseValue(raw)
		if err != nil {
			return fmt.Errorf("value of %s: %w", ref, err)
		}
		id, err := resolve(ref)
		if err != nil {
			return err
		}
		if got := snap.Value(id); got != want {
			problems = append(problems, fmt.Sprintf("%s: got %q, want %q", ref, got, want))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %v", ErrExpectation, problems)
	}
	return nil
}

// errorKinds maps the names accepted by "fails" to structural sentinels.
var errorKinds = map[string]error{
	"unknown_node":       domain.ErrUnknownNode,
	"unknown_port":       domain.ErrUnknownPort,
	"unknown_connection": domain.ErrUnknownConnection,
	"port_occupied":      domain.ErrPortOccupied,
	"type_mismatch":      domain.ErrTypeMismatch,
	"invalid_operation":  domain.ErrInvalidOperation,
	"invalid_config":     domain.ErrInvalidConfig,
}

// ErrorKind returns the sentinel for a "fails" name.
func ErrorKind(name string) (error, bool) {
	err, ok := errorKinds[name]
	return err, ok
}
