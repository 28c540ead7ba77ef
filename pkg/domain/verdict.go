package domain

const (
	// MessageLoops is reported when any directed cycle exists.
	MessageLoops = "Network contains loops"
	// MessageDivisionByZero is reported when a division feeding the sink has a zero divisor.
	MessageDivisionByZero = "Network contains division by zero!"
)

// Severity classifies a verdict.
type Severity string

const (
	SeverityValid   Severity = "valid"
	SeverityWarning Severity = "warning"
	SeverityFatal   Severity = "fatal"
)

// Verdict is the validator's result for the current graph.
// An empty Message means no message.
type Verdict struct {
	IsValid       bool   `json:"is_valid"`
	IsWarningOnly bool   `json:"is_warning_only"`
	Message       string `json:"message,omitempty"`

	// Offenders names the nodes that caused a failed verdict.
	Offenders []NodeID `json:"offenders,omitempty"`
}

// Valid is the verdict of a graph with no findings.
func Valid() Verdict { return Verdict{IsValid: true} }

// Fatal builds a verdict that suspends propagation.
func Fatal(msg string, offenders ...NodeID) Verdict {
	return Verdict{Message: msg, Offenders: offenders}
}

// Warning builds a recoverable verdict.
func Warning(msg string, offenders ...NodeID) Verdict {
	return Verdict{IsWarningOnly: true, Message: msg, Offenders: offenders}
}

// Severity returns the verdict's class.
func (v Verdict) Severity() Severity {
	switch {
	case v.IsValid:
		return SeverityValid
	case v.IsWarningOnly:
		return SeverityWarning
	default:
		return SeverityFatal
	}
}

// Equal compares verdicts including offenders.
func (v Verdict) Equal(o Verdict) bool {
	if v.IsValid != o.IsValid || v.IsWarningOnly != o.IsWarningOnly || v.Message != o.Message {
		return false
	}
	if len(v.Offenders) != len(o.Offenders) {
		return false
	}
	for i := range v.Offenders {
		if v.Offenders[i] != o.Offenders[i] {
			return false
		}
	}
	return true
}
