package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/nodecalc"
	"github.com/aretw0/nodecalc/internal/presentation/graph"
	"github.com/aretw0/nodecalc/internal/script"
	"github.com/aretw0/nodecalc/pkg/domain"
)

// Options contains the configuration shared by every command.
type Options struct {
	Debug    bool
	JSON     bool
	Headless bool
	Name     string

	// Port is the HTTP port of serve and of the MCP SSE transport.
	Port int
	// RedisAddr enables the Redis observation store when set.
	RedisAddr string
	Transport string
}

// loadScript reads and parses a YAML command script.
func loadScript(path string) (*script.Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	sc, err := script.NewParser().Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if sc.Name == "" {
		sc.Name = path
	}
	return sc, nil
}

// evaluate replays a script against a fresh engine.
func evaluate(ctx context.Context, opts Options, path string) (domain.Snapshot, error) {
	sc, err := loadScript(path)
	if err != nil {
		return domain.Snapshot{}, err
	}
	if opts.Name == "" {
		opts.Name = sc.Name
	}
	engine, err := createEngine(opts, NewLogger(opts), nil)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return script.NewSession(engine).Run(ctx, sc)
}

// Eval runs the script at path and prints the resulting display, or the whole
// snapshot as JSON with --json. A failing step is returned as an error.
func Eval(ctx context.Context, opts Options, path string, w io.Writer) error {
	snap, err := evaluate(ctx, opts, path)
	if err != nil {
		return err
	}
	return printResult(w, opts, snap)
}

// Graph runs the script at path and writes the Mermaid diagram of the result.
func Graph(ctx context.Context, opts Options, path string, w io.Writer) error {
	snap, err := evaluate(ctx, opts, path)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, graph.GenerateMermaid(snap))
	return err
}

func printResult(w io.Writer, opts Options, snap domain.Snapshot) error {
	if opts.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}
	fmt.Fprintln(w, nodecalc.DisplayLine(snap))
	return nil
}
