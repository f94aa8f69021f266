package runtime

import (
	"github.com/aretw0/remnawizard/pkg/domain"
)

// Transition is one edge of the step graph.
type Transition struct {
	From  domain.StepID
	To    domain.StepID
	Label string
}

// Sample accumulators and inputs used to discover edges. The fields unlock
// the proceed buttons and the manual username sub-mode.
var (
	probeFields = []domain.Fields{
		{},
		{ManualUsername: true},
		{ExpireMonths: 1, TrafficLimitBytes: domain.Ptr[int64](0)},
	}
	probeTexts = []string{"42", "valid_name"}
)

// Transitions probes every offered button and a few sample texts on each step
// and reports the distinct edges leaving it, self loops included. Submission
// is reported as an edge to idle.
func (r *Registry) Transitions(env *Env) []Transition {
	var out []Transition
	for _, id := range domain.Steps {
		step, ok := r.Lookup(id)
		if !ok {
			continue
		}
		seen := make(map[Transition]bool)
		add := func(to domain.StepID, label string) {
			t := Transition{From: id, To: to, Label: label}
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
		for _, f := range probeFields {
			p := step.Prompt(env, f)
			for _, c := range p.Actions {
				a := domain.ParseAction(c.Token)
				if a.Global() {
					continue
				}
				switch res := step.Dispatch(env, f, a); res.Kind {
				case ResultAdvance:
					add(res.Next, c.Token)
				case ResultTerminal:
					add(domain.StepIdle, c.Token)
				}
			}
			if !p.Input {
				continue
			}
			for _, text := range probeTexts {
				if res := step.Dispatch(env, f, domain.TextAction(text)); res.Kind == ResultAdvance {
					add(res.Next, "text")
					break
				}
			}
		}
	}
	return out
}
