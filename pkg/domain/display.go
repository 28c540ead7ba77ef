package domain

// DisplayState is the state of the sink's displayed value.
type DisplayState string

const (
	// DisplayUnset is the state before the first propagation pass.
	DisplayUnset DisplayState = "unset"
	// DisplayValue shows the sink's value as text.
	DisplayValue DisplayState = "displaying"
	// DisplayError is shown whenever the verdict is not valid.
	DisplayError DisplayState = "error"
)

// ErrorText is the projection of an invalid graph.
const ErrorText = "Error"

// Display is the sink's display projection.
type Display struct {
	State DisplayState `json:"state"`
	Text  string       `json:"text"`
}

// Project derives the display from the sink value and the verdict.
func Project(sink Value, verdict Verdict) Display {
	if !verdict.IsValid {
		return Display{State: DisplayError, Text: ErrorText}
	}
	return Display{State: DisplayValue, Text: sink.String()}
}
