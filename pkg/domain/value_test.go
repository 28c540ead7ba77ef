package domain

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_AbsentIsNotZero(t *testing.T) {
	assert.False(t, Absent().Present())
	assert.True(t, Of(0).Present())
	assert.NotEqual(t, Absent(), Of(0))
	assert.False(t, Absent().Is(0))
	assert.True(t, Of(0).Is(0))
}

func TestValue_Arithmetic(t *testing.T) {
	tests := []struct {
		name string
		got  Value
		want Value
	}{
		{"sum", Add(Of(5), Of(3)), Of(8)},
		{"sum missing left", Add(Absent(), Of(3)), Absent()},
		{"sum missing right", Add(Of(5), Absent()), Absent()},
		{"division", Div(Of(7), Of(2)), Of(3)},
		{"division truncates toward zero", Div(Of(-7), Of(2)), Of(-3)},
		{"division by zero", Div(Of(5), Of(0)), Absent()},
		{"division missing divisor", Div(Of(5), Absent()), Absent()},
		{"division overflow wraps", Div(Of(math.MinInt64), Of(-1)), Of(math.MinInt64)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestValue_JSON(t *testing.T) {
	data, err := json.Marshal(struct {
		A Value `json:"a"`
		B Value `json:"b"`
	}{Of(42), Absent()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":42,"b":null}`, string(data))

	var back struct {
		A Value `json:"a"`
		B Value `json:"b"`
	}
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, Of(42), back.A)
	assert.Equal(t, Absent(), back.B)
}

func TestParseValue(t *testing.T) {
	v, err := ParseValue("-12")
	require.NoError(t, err)
	assert.Equal(t, Of(-12), v)

	v, err = ParseValue("")
	require.NoError(t, err)
	assert.False(t, v.Present())

	_, err = ParseValue("1.5")
	assert.Error(t, err)
}

func TestParsePortID(t *testing.T) {
	p, err := ParsePortID("sum-1:in:1")
	require.NoError(t, err)
	assert.Equal(t, In("sum-1", 1), p)
	assert.Equal(t, "sum-1:in:1", p.String())

	p, err = ParsePortID("constant-2:out")
	require.NoError(t, err)
	assert.Equal(t, Out("constant-2", 0), p)

	for _, bad := range []string{"", "x", "x:sideways:0", "x:in:-1", ":in:0", "a:b:c:d"} {
		_, err := ParsePortID(bad)
		assert.Error(t, err, bad)
	}
}

func TestProject(t *testing.T) {
	assert.Equal(t, Display{State: DisplayValue, Text: "8"}, Project(Of(8), Valid()))
	assert.Equal(t, Display{State: DisplayError, Text: "Error"}, Project(Of(8), Warning(MessageDivisionByZero)))
	assert.Equal(t, Display{State: DisplayError, Text: "Error"}, Project(Absent(), Fatal(MessageLoops)))
}

func TestStructuralError(t *testing.T) {
	err := Structural("remove_node", "output", ErrInvalidOperation, "sink cannot be removed")
	assert.True(t, errors.Is(err, ErrInvalidOperation))
	assert.True(t, IsStructural(err))
	assert.Contains(t, err.Error(), "sink cannot be removed")
	assert.False(t, IsStructural(errors.New("boom")))
}

func TestEvaluate(t *testing.T) {
	c := &Node{Kind: KindConstant, Outputs: []Port{{Literal: Of(5)}}}
	assert.Equal(t, []Value{Of(5)}, Evaluate(c))

	s := &Node{Kind: KindSum, Inputs: []Port{{Value: Of(2)}, {Value: Of(3)}}}
	assert.Equal(t, []Value{Of(5)}, Evaluate(s))

	d := &Node{Kind: KindDivision, Inputs: []Port{{Value: Of(9)}, {Value: Of(0)}}}
	assert.Equal(t, []Value{Absent()}, Evaluate(d))

	o := &Node{Kind: KindOutput, Inputs: []Port{{Value: Of(1)}}}
	assert.Empty(t, Evaluate(o))
}
