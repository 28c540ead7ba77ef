package script

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/nodecalc/pkg/domain"
)

// Usage lists the line syntax accepted by ParseLine.
const Usage = `add <kind> [as <alias>] [name=<text>] [literal=<n>] [defaults=<n>,<n>] [no_default]
remove <node>
connect <node.port> <node.port> [as <alias>]
disconnect <connection>
set <node|node.port> <n|null>
recompute
show
expect [display=<text>] [severity=valid|warning|fatal] [message=<text>] [<node.port>=<n|null>]`

// ParseLine parses one interactive command. Blank lines and lines starting
// with '#' yield a Command with an empty Op.
func ParseLine(line string) (Command, error) {
	line, err := SanitizeLine(line)
	if err != nil {
		return Command{}, err
	}
	tokens, err := tokenize(line)
	if err != nil {
		return Command{}, err
	}
	if len(tokens) == 0 || strings.HasPrefix(tokens[0], "#") {
		return Command{}, nil
	}

	op, args := Op(strings.ToLower(tokens[0])), tokens[1:]
	cmd := Command{Op: op}
	switch op {
	case OpAdd:
		if len(args) == 0 {
			return Command{}, errors.New("add: missing node kind")
		}
		cmd.Kind = domain.NodeKind(args[0])
		cmd.Config = map[string]any{}
		rest, alias, err := takeAlias(args[1:])
		if err != nil {
			return Command{}, err
		}
		cmd.Alias = alias
		for _, kv := range rest {
			key, val, hasVal := strings.Cut(kv, "=")
			switch {
			case key == "no_default" && !hasVal:
				cmd.Config[key] = true
			case !hasVal:
				return Command{}, fmt.Errorf("add: expected key=value, got %q", kv)
			case key == "defaults":
				cmd.Config[key] = strings.Split(val, ",")
			default:
				cmd.Config[key] = val
			}
		}

	case OpRemove, OpDisconnect:
		if len(args) != 1 {
			return Command{}, fmt.Errorf("%s: expected one argument", op)
		}
		cmd.Target = args[0]

	case OpConnect:
		rest, alias, err := takeAlias(args)
		if err != nil {
			return Command{}, err
		}
		if len(rest) == 3 && rest[1] == "->" {
			rest = []string{rest[0], rest[2]}
		}
		if len(rest) != 2 {
			return Command{}, errors.New("connect: expected <from> <to>")
		}
		cmd.Alias, cmd.From, cmd.To = alias, rest[0], rest[1]

	case OpSet:
		if len(args) != 2 {
			return Command{}, errors.New("set: expected <target> <value>")
		}
		v, err := domain.ParseValue(args[1])
		if err != nil {
			return Command{}, err
		}
		cmd.Target, cmd.Value = args[0], v

	case OpRecompute, OpShow:
		if len(args) != 0 {
			return Command{}, fmt.Errorf("%s takes no arguments", op)
		}

	case OpExpect:
		x := &Expectation{}
		for _, kv := range args {
			key, val, ok := strings.Cut(kv, "=")
			if !ok {
				return Command{}, fmt.Errorf("expect: expected key=value, got %q", kv)
			}
			switch key {
			case "display":
				x.Display = &val
			case "severity":
				x.Severity = val
			case "message":
				x.Message = &val
			default:
				if x.Values == nil {
					x.Values = map[string]string{}
				}
				x.Values[key] = val
			}
		}
		cmd.Expect = x

	default:
		return Command{}, fmt.Errorf("unknown command %q", tokens[0])
	}
	return cmd, nil
}

func takeAlias(args []string) (rest []string, alias string, err error) {
	for i := 0; i < len(args); i++ {
		if args[i] != "as" {
			rest = append(rest, args[i])
			continue
		}
		if i+1 >= len(args) {
			return nil, "", errors.New("as: missing alias")
		}
		alias = args[i+1]
		i++
	}
	return rest, alias, nil
}

// tokenize splits on whitespace; double quotes group words.
func tokenize(line string) ([]string, error) {
	var tokens []string
	var cur strings.Builder
	inQuotes, started := false, false

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			started = true
		case (r == ' ' || r == '\t') && !inQuotes:
			if started {
				tokens = append(tokens, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if inQuotes {
		return nil, errors.New("unterminated quote")
	}
	if started {
		tokens = append(tokens, cur.String())
	}
	return tokens, nil
}
