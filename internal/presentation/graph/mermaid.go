package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/nodecalc/pkg/domain"
)

// GenerateMermaid produces a Mermaid flowchart of a snapshot.
// Shapes follow the node kind:
// - Constant: ([Stadium])
// - Sum, Division: [Rectangle]
// - Output: [[Subroutine]]
// Labels carry the current output value (or "-" when absent), edges carry the
// name of the input they feed, and verdict offenders are highlighted.
func GenerateMermaid(snap domain.Snapshot) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	inputNames := make(map[domain.PortID]string)
	for _, node := range snap.Nodes {
		safeID := sanitizeMermaidID(string(node.ID))

		opener, closer := "[", "]"
		switch node.Kind {
		case domain.KindConstant:
			opener, closer = "([", "])"
		case domain.KindOutput:
			opener, closer = "[[", "]]"
		}

		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, label(node, snap.Display), closer)
		for _, p := range node.Inputs {
			inputNames[p.ID] = p.Name
		}
	}

	for _, c := range snap.Connections {
		fmt.Fprintf(&sb, "    %s -->|%s| %s\n",
			sanitizeMermaidID(string(c.From.Node)), inputNames[c.To], sanitizeMermaidID(string(c.To.Node)))
	}

	if snap.Verdict.IsValid {
		return sb.String()
	}

	sb.WriteString("\n    %% Verdict Styles\n")
	// Force black text (color:#000) for contrast on light and dark themes.
	if snap.Verdict.IsWarningOnly {
		sb.WriteString("    classDef offender fill:#fff3e0,stroke:#e65100,stroke-width:2px,color:#000;\n")
	} else {
		sb.WriteString("    classDef offender fill:#ffcdd2,stroke:#b71c1c,stroke-width:2px,color:#000;\n")
	}
	sb.WriteString("    classDef error fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

	seen := make(map[string]bool)
	for _, id := range snap.Verdict.Offenders {
		safeID := sanitizeMermaidID(string(id))
		if !seen[safeID] {
			seen[safeID] = true
			fmt.Fprintf(&sb, "    class %s offender;\n", safeID)
		}
	}
	for _, node := range snap.Nodes {
		if node.Kind == domain.KindOutput {
			fmt.Fprintf(&sb, "    class %s error;\n", sanitizeMermaidID(string(node.ID)))
		}
	}
	return sb.String()
}

func label(node domain.Node, display domain.Display) string {
	name := strings.ReplaceAll(node.Name, "\"", "'")
	if name != string(node.Kind) {
		name = fmt.Sprintf("%s (%s)", name, node.Kind)
	}

	if node.Kind == domain.KindOutput {
		switch display.State {
		case domain.DisplayUnset:
			return name + " = ?"
		case domain.DisplayError:
			return name + " = " + domain.ErrorText
		}
		return name + " = " + orDash(node.Inputs[0].Value)
	}
	if len(node.Outputs) == 0 {
		return name
	}
	return name + " = " + orDash(node.Outputs[0].Value)
}

func orDash(v domain.Value) string {
	if !v.Present() {
		return "-"
	}
	return v.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
