package script

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/nodecalc/pkg/domain"
)

// Script is an ordered list of steps read from YAML.
//
//	name: sum
//	steps:
//	  - add: constant
//	    as: five
//	    literal: 5
//	  - connect: five.value -> output.value
//	  - expect: {display: "5", severity: valid}
type Script struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step is one YAML entry. Exactly one of add, remove, connect (or from/to),
// disconnect, set, recompute and expect must be given.
type Step struct {
	Add       string  `yaml:"add"`
	As        string  `yaml:"as"`
	Name      string  `yaml:"name"`
	Literal   *int64  `yaml:"literal"`
	Defaults  []int64 `yaml:"defaults"`
	NoDefault bool    `yaml:"no_default"`

	Remove string `yaml:"remove"`

	Connect string `yaml:"connect"`
	From    string `yaml:"from"`
	To      string `yaml:"to"`

	Disconnect string `yaml:"disconnect"`

	Set   string `yaml:"set"`
	Value string `yaml:"value"`

	Recompute bool         `yaml:"recompute"`
	Expect    *Expectation `yaml:"expect"`

	Fails string `yaml:"fails"`
}

// Command converts the step.
func (s Step) Command() (Command, error) {
	var ops []Op
	if s.Add != "" {
		ops = append(ops, OpAdd)
	}
	if s.Remove != "" {
		ops = append(ops, OpRemove)
	}
	if s.Connect != "" || s.From != "" || s.To != "" {
		ops = append(ops, OpConnect)
	}
	if s.Disconnect != "" {
		ops = append(ops, OpDisconnect)
	}
	if s.Set != "" {
		ops = append(ops, OpSet)
	}
	if s.Recompute {
		ops = append(ops, OpRecompute)
	}
	if s.Expect != nil {
		ops = append(ops, OpExpect)
	}
	if len(ops) != 1 {
		return Command{}, fmt.Errorf("step must name exactly one command, got %d", len(ops))
	}

	cmd := Command{Op: ops[0], Alias: s.As, Fails: s.Fails}
	if s.Fails != "" {
		if _, ok := ErrorKind(s.Fails); !ok {
			return Command{}, fmt.Errorf("unknown error kind %q", s.Fails)
		}
	}

	switch cmd.Op {
	case OpAdd:
		cmd.Kind = domain.NodeKind(s.Add)
		cmd.Config = map[string]any{}
		if s.Name != "" {
			cmd.Config["name"] = s.Name
		}
		if s.Literal != nil {
			cmd.Config["literal"] = *s.Literal
		}
		if len(s.Defaults) > 0 {
			cmd.Config["defaults"] = s.Defaults
		}
		if s.NoDefault {
			cmd.Config["no_default"] = true
		}
	case OpRemove:
		cmd.Target = s.Remove
	case OpConnect:
		cmd.From, cmd.To = s.From, s.To
		if s.Connect != "" {
			from, to, ok := strings.Cut(s.Connect, "->")
			if !ok {
				return Command{}, fmt.Errorf("connect %q: expected \"from -> to\"", s.Connect)
			}
			cmd.From, cmd.To = strings.TrimSpace(from), strings.TrimSpace(to)
		}
		if cmd.From == "" || cmd.To == "" {
			return Command{}, errors.New("connect needs both ends")
		}
	case OpDisconnect:
		cmd.Target = s.Disconnect
	case OpSet:
		v, err := domain.ParseValue(s.Value)
		if err != nil {
			return Command{}, err
		}
		cmd.Target, cmd.Value = s.Set, v
	case OpExpect:
		cmd.Expect = s.Expect
	}
	return cmd, nil
}

// Commands converts every step, naming the failing step on error.
func (s *Script) Commands() ([]Command, error) {
	out := make([]Command, 0, len(s.Steps))
	for i, step := range s.Steps {
		cmd, err := step.Command()
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		out = append(out, cmd)
	}
	return out, nil
}

// Parser is responsible for converting raw bytes into a Script.
type Parser struct{}

// NewParser creates a new parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes a YAML script. Unknown keys are rejected.
func (p *Parser) Parse(data []byte) (*Script, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Script
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("failed to parse script: empty document")
		}
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	if len(s.Steps) == 0 {
		return nil, errors.New("script has no steps")
	}
	if _, err := s.Commands(); err != nil {
		return nil, fmt.Errorf("invalid script %q: %w", s.Name, err)
	}
	return &s, nil
}
