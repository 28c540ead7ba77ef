package domain

// Evaluate applies the operator of n to the resolved values of its inputs and
// returns the values for its outputs. Input values are read from the ports'
// Value field, so callers resolve inputs first.
func Evaluate(n *Node) []Value {
	in := func(i int) Value {
		if i < len(n.Inputs) {
			return n.Inputs[i].Value
		}
		return Absent()
	}

	switch n.Kind {
	case KindConstant:
		if len(n.Outputs) == 0 {
			return nil
		}
		return []Value{n.Outputs[0].Literal}
	case KindSum:
		return []Value{Add(in(0), in(1))}
	case KindDivision:
		return []Value{Div(in(0), in(1))}
	}
	// Output has no output ports; its value is its input.
	return nil
}
