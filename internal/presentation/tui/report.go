package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/nodecalc/pkg/domain"
)

// Report renders a snapshot as markdown: a status line, the verdict and one
// table row per node.
func Report(snap domain.Snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## Output: %s\n\n", displayText(snap.Display))
	fmt.Fprintf(&b, "Revision **%d**, verdict **%s**", snap.Revision, snap.Verdict.Severity())
	if snap.Verdict.Message != "" {
		fmt.Fprintf(&b, ": %s", snap.Verdict.Message)
		if len(snap.Verdict.Offenders) > 0 {
			ids := make([]string, len(snap.Verdict.Offenders))
			for i, id := range snap.Verdict.Offenders {
				ids[i] = "`" + string(id) + "`"
			}
			fmt.Fprintf(&b, " (%s)", strings.Join(ids, ", "))
		}
	}
	b.WriteString("\n\n")

	b.WriteString("| Node | Kind | Inputs | Output |\n")
	b.WriteString("|------|------|--------|--------|\n")
	for _, n := range snap.Nodes {
		inputs := make([]string, 0, len(n.Inputs))
		for _, p := range n.Inputs {
			inputs = append(inputs, fmt.Sprintf("%s=%s", p.Name, cell(p.Value)))
		}
		out := ""
		if len(n.Outputs) > 0 {
			out = cell(n.Outputs[0].Value)
		}
		fmt.Fprintf(&b, "| `%s` | %s | %s | %s |\n", n.ID, n.Kind, strings.Join(inputs, " "), out)
	}

	if len(snap.Connections) > 0 {
		b.WriteString("\n**Connections**\n\n")
		for _, c := range snap.Connections {
			fmt.Fprintf(&b, "- `%s`: `%s` → `%s`\n", c.ID, c.From, c.To)
		}
	}
	return b.String()
}

func displayText(d domain.Display) string {
	if d.State == domain.DisplayUnset {
		return "_unset_"
	}
	if d.Text == "" {
		return "_empty_"
	}
	return d.Text
}

func cell(v domain.Value) string {
	if !v.Present() {
		return "∅"
	}
	return v.String()
}
