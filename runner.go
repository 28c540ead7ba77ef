package nodecalc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/nodecalc/internal/script"
	"github.com/aretw0/nodecalc/pkg/domain"
	"github.com/aretw0/nodecalc/pkg/ports"
)

// Runner reads edit commands line by line and applies them to an engine.
// This allows for easy testing and integration with different frontends (CLI, TUI, etc).
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool

	// Report builds the text printed by "show". Defaults to Summary.
	Report func(domain.Snapshot) string
	// Renderer post-processes reports, e.g. markdown to ANSI.
	Renderer ContentRenderer
}

// ContentRenderer is a function that transforms the content before outputting it.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)

// NewRunner creates a Runner. Input and Output must be set before Run.
func NewRunner() *Runner {
	return &Runner{}
}

// Run executes the read-apply-print loop until EOF, "exit" or cancellation.
// Command errors are printed and the loop continues.
func (r *Runner) Run(ctx context.Context, engine ports.Engine) error {
	if r.Input == nil {
		return errors.New("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return errors.New("output writer must be set (use os.Stdout)")
	}
	lines := bufio.NewReader(r.Input)
	w := r.Output
	session := script.NewSession(engine)

	if !r.Headless {
		fmt.Fprintln(w, "--- nodecalc REPL (type 'help') ---")
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !r.Headless {
			fmt.Fprint(w, "> ")
		}

		text, err := lines.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("input error: %w", err)
		}
		eof := errors.Is(err, io.EOF)
		line := strings.TrimSpace(text)

		switch line {
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return nil
		case "help":
			fmt.Fprintln(w, script.Usage)
			continue
		}

		if line != "" {
			r.execute(ctx, w, session, line)
		}
		if eof {
			return nil
		}
	}
}

func (r *Runner) execute(ctx context.Context, w io.Writer, session *script.Session, line string) {
	cmd, err := script.ParseLine(line)
	if err != nil {
		fmt.Fprintf(w, "error: %v\n", err)
		return
	}
	if cmd.Op == "" {
		return
	}

	res, err := session.Apply(ctx, cmd)
	if err != nil {
		fmt.Fprintf(w, "error: %v\n", err)
		return
	}

	switch cmd.Op {
	case script.OpAdd:
		fmt.Fprintf(w, "added %s\n", res.Node)
	case script.OpConnect:
		fmt.Fprintf(w, "connected %s\n", res.Connection)
	case script.OpExpect:
		fmt.Fprintln(w, "ok")
		return
	case script.OpShow:
		r.show(w, res.Snapshot)
		return
	}
	fmt.Fprintln(w, DisplayLine(res.Snapshot))
}

func (r *Runner) show(w io.Writer, snap domain.Snapshot) {
	report := Summary
	if r.Report != nil {
		report = r.Report
	}
	out := report(snap)
	if r.Renderer != nil {
		if rendered, err := r.Renderer(out); err == nil {
			out = rendered
		}
	}
	fmt.Fprintln(w, strings.TrimRight(out, "\n"))
}

// DisplayLine renders the sink display as one line, with the verdict message
// when the graph is invalid.
func DisplayLine(snap domain.Snapshot) string {
	switch snap.Display.State {
	case domain.DisplayUnset:
		return "= (unset)"
	case domain.DisplayError:
		return fmt.Sprintf("= %s (%s)", snap.Display.Text, snap.Verdict.Message)
	}
	return "= " + snap.Display.Text
}

// Summary is a plain-text report of a snapshot.
func Summary(snap domain.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "revision %d, %s\n", snap.Revision, snap.Verdict.Severity())
	if snap.Verdict.Message != "" {
		fmt.Fprintf(&b, "verdict: %s %v\n", snap.Verdict.Message, snap.Verdict.Offenders)
	}
	for _, n := range snap.Nodes {
		fmt.Fprintf(&b, "%s (%s)", n.ID, n.Kind)
		for _, p := range n.Inputs {
			fmt.Fprintf(&b, " %s=%s", p.Name, valueText(p.Value))
		}
		for _, p := range n.Outputs {
			fmt.Fprintf(&b, " -> %s=%s", p.Name, valueText(p.Value))
		}
		b.WriteByte('\n')
	}
	for _, c := range snap.Connections {
		fmt.Fprintf(&b, "%s: %s -> %s\n", c.ID, c.From, c.To)
	}
	b.WriteString(DisplayLine(snap))
	return b.String()
}

func valueText(v domain.Value) string {
	if !v.Present() {
		return "-"
	}
	return v.String()
}
