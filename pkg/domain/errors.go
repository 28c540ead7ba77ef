package domain

import (
	"errors"
	"fmt"
)

// Structural error kinds. Commands that fail with one of these leave the graph unchanged.
var (
	ErrUnknownNode       = errors.New("unknown node")
	ErrUnknownPort       = errors.New("unknown port")
	ErrUnknownConnection = errors.New("unknown connection")
	ErrPortOccupied      = errors.New("input port already connected")
	ErrTypeMismatch      = errors.New("port value types differ")
	ErrInvalidOperation  = errors.New("invalid operation")
	ErrInvalidConfig     = errors.New("invalid node config")
)

// ErrNoObservation is returned by observation stores before the first observation.
var ErrNoObservation = errors.New("no observation recorded")

// StructuralError is returned when a command is rejected at the command boundary.
type StructuralError struct {
	Op      string // Command name, e.g. "connect"
	Subject string // Offending id or port
	Kind    error  // One of the Err* sentinels above
	Detail  string
}

func (e *StructuralError) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Op, e.Subject, e.Kind)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

func (e *StructuralError) Unwrap() error { return e.Kind }

// Structural builds a *StructuralError.
func Structural(op, subject string, kind error, detail string) error {
	return &StructuralError{Op: op, Subject: subject, Kind: kind, Detail: detail}
}

// IsStructural reports whether err was produced by a rejected command.
func IsStructural(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}
