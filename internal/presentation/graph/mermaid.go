package graph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/remnawizard/internal/runtime"
	"github.com/aretw0/remnawizard/pkg/domain"
)

// Overlay highlights one step, typically the one a live session is at.
type Overlay struct {
	CurrentStep domain.StepID
}

// detours are drawn with dotted edges.
var detours = []domain.StepID{domain.StepExpireManualDays, domain.StepTrafficManualGB}

// GenerateMermaid produces a Mermaid flowchart of the step graph.
// Shapes:
// - Idle: ((Circle))
// - Free-text steps: [/Parallelogram/]
// - Button steps: [Rectangle]
// Self loops (presets, toggles) are collapsed into the step label.
func GenerateMermaid(edges []runtime.Transition, inputs map[domain.StepID]bool, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	fmt.Fprintf(&sb, "    %s((\"idle\"))\n", nodeID(domain.StepIdle))
	fmt.Fprintf(&sb, "    %s --> %s\n", nodeID(domain.StepIdle), nodeID(domain.StepUsername))

	loops := make(map[domain.StepID]int)
	for _, e := range edges {
		if e.From == e.To {
			loops[e.From]++
		}
	}

	for _, id := range domain.Steps {
		opener, closer := "[", "]"
		if inputs[id] {
			opener, closer = "[/", "/]"
		}
		label := string(id)
		if n := loops[id]; n > 0 {
			label = fmt.Sprintf("%s <br/> ↻ %d", id, n)
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", nodeID(id), opener, label, closer)
	}

	for _, e := range edges {
		if e.From == e.To {
			continue
		}
		safeLabel := strings.ReplaceAll(e.Label, "\"", "'")
		arrow := fmt.Sprintf("-- \"%s\" -->", safeLabel)
		if slices.Contains(detours, e.From) || slices.Contains(detours, e.To) {
			arrow = fmt.Sprintf("-. \"%s\" .->", safeLabel)
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", nodeID(e.From), arrow, nodeID(e.To))
	}

	if overlay != nil && overlay.CurrentStep != domain.StepIdle {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme.
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		fmt.Fprintf(&sb, "    class %s current;\n", nodeID(overlay.CurrentStep))
	}

	return sb.String()
}

// FromRegistry renders the graph of r as seen with env's catalog.
func FromRegistry(r *runtime.Registry, env *runtime.Env, overlay *Overlay) string {
	inputs := make(map[domain.StepID]bool)
	for _, id := range domain.Steps {
		if step, ok := r.Lookup(id); ok && step.OnText != nil {
			inputs[id] = true
		}
	}
	return GenerateMermaid(r.Transitions(env), inputs, overlay)
}

func nodeID(id domain.StepID) string {
	if id == domain.StepIdle {
		return "idle"
	}
	return strings.ReplaceAll(string(id), "-", "_")
}
