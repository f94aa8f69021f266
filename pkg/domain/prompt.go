package domain

import "strings"

// Choice is one selectable action as the transport should render it.
type Choice struct {
	Token string `json:"token"`
	Label string `json:"label"`
}

// Prompt is the outbound descriptor for the next thing the operator sees.
type Prompt struct {
	Text string `json:"text"`
	// Actions is the ordered action set of the step.
	Actions []Choice `json:"actions,omitempty"`
	// Layout groups Actions into rows by width. A missing tail means one per row.
	Layout []int `json:"layout,omitempty"`
	// Input is true when the step accepts free text.
	Input bool `json:"input,omitempty"`
	// Error annotates a re-issued prompt after a rejection.
	Error string `json:"error,omitempty"`
}

// Rows splits Actions according to Layout.
func (p Prompt) Rows() [][]Choice {
	var rows [][]Choice
	rest := p.Actions
	for _, width := range p.Layout {
		if len(rest) == 0 {
			break
		}
		if width <= 0 || width > len(rest) {
			width = len(rest)
		}
		rows = append(rows, rest[:width])
		rest = rest[width:]
	}
	for _, c := range rest {
		rows = append(rows, []Choice{c})
	}
	return rows
}

// Reply is the result of handling one Envelope.
type Reply struct {
	Prompt Prompt `json:"prompt"`
	// Step is where the session stands after the action (StepIdle when cleared).
	Step StepID `json:"step"`
	// Ignored marks stray actions that changed nothing. Prompt is empty then.
	Ignored bool `json:"ignored,omitempty"`
	// Cleared is set when the action removed the session.
	Cleared bool `json:"cleared,omitempty"`
	// Rejected is set when a validation failure re-issued the same step.
	Rejected bool `json:"rejected,omitempty"`
	// Denied is set when the sender is not allowed to use the wizard.
	Denied bool `json:"denied,omitempty"`
}

// Envelope is an inbound action from a transport.
type Envelope struct {
	UserID UserID `json:"user_id"`
	// Token is a callback token. Empty when Text carries free input.
	Token string `json:"token,omitempty"`
	Text  string `json:"text,omitempty"`
}

// Action decodes the envelope. Free text wins only when no token is present.
func (e Envelope) Action() Action {
	if e.Token != "" {
		return ParseAction(e.Token)
	}
	switch strings.TrimSpace(e.Text) {
	case TokenHome:
		return Action{Kind: ActionHome}
	case "/cancel":
		return Action{Kind: ActionCancel}
	}
	return TextAction(e.Text)
}
