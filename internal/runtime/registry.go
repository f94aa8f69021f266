package runtime

import (
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/remnawizard/internal/validator"
	"github.com/aretw0/remnawizard/pkg/domain"
)

// Env carries the collaborators a step handler may consult.
// Handlers never touch stores or the network.
type Env struct {
	Now      func() time.Time
	NewToken func() string
	Catalog  domain.Catalog
	// MaxInputSize bounds free-text input. Zero selects the validator default.
	MaxInputSize int
}

func (env *Env) now() time.Time {
	if env.Now == nil {
		return time.Now().UTC()
	}
	return env.Now().UTC()
}

func (env *Env) token() string {
	if env.NewToken == nil {
		return domain.NewShortID()
	}
	return env.NewToken()
}

// ResultKind is the outcome class of a handler.
type ResultKind int

const (
	// ResultIgnore leaves the session untouched and produces no prompt.
	ResultIgnore ResultKind = iota
	// ResultAdvance applies Patch and moves to Next (possibly the same step).
	ResultAdvance
	// ResultReject re-issues the current prompt with Reason.
	ResultReject
	// ResultTerminal asks the engine to submit the accumulator.
	ResultTerminal
)

func (k ResultKind) String() string {
	switch k {
	case ResultAdvance:
		return domain.ResultAdvance
	case ResultReject:
		return domain.ResultReject
	case ResultTerminal:
		return domain.ResultSubmit
	}
	return domain.ResultIgnore
}

// Result is what a handler decides. Handlers are pure: the engine applies it.
type Result struct {
	Kind   ResultKind
	Next   domain.StepID
	Patch  func(*domain.Fields)
	Notice string
	Reason string
}

// Advance moves to next after applying patch. A nil patch leaves fields unchanged.
func Advance(next domain.StepID, patch func(*domain.Fields)) Result {
	return Result{Kind: ResultAdvance, Next: next, Patch: patch}
}

// WithNotice prefixes the next prompt with a confirmation line.
func (r Result) WithNotice(notice string) Result {
	r.Notice = notice
	return r
}

// Reject keeps the step and reports reason to the operator.
func Reject(reason string) Result {
	return Result{Kind: ResultReject, Reason: reason}
}

// Ignore is the result of a stray action.
func Ignore() Result {
	return Result{Kind: ResultIgnore}
}

// Terminal triggers submission.
func Terminal() Result {
	return Result{Kind: ResultTerminal}
}

// Handler decides the result of an action against a snapshot of the accumulator.
type Handler func(env *Env, f domain.Fields, a domain.Action) Result

// Step is one row of the transition table.
type Step struct {
	ID domain.StepID
	// Scope is the callback namespace the step owns. Scoped actions
	// (skip included) from any other namespace are ignored.
	Scope  string
	Prompt func(env *Env, f domain.Fields) domain.Prompt
	// OnAction handles scoped buttons. Nil ignores them.
	OnAction Handler
	// OnText handles free text. Nil means the step takes no text.
	OnText Handler
	// OnSkip handles the skip action of the step's scope. Nil ignores it.
	OnSkip Handler
}

// Dispatch routes a non-global action to the matching handler.
func (s *Step) Dispatch(env *Env, f domain.Fields, a domain.Action) Result {
	switch a.Kind {
	case domain.ActionUnknown:
		return Ignore()
	case domain.ActionText:
		if s.OnText == nil {
			return Ignore()
		}
		text, err := validator.Sanitize(a.Text, env.MaxInputSize)
		if errors.Is(err, validator.ErrInputTooLarge) {
			return Reject("❌ Input is too long.")
		}
		if err != nil {
			return Reject("❌ Input is not valid text.")
		}
		a.Text = text
		return s.OnText(env, f, a)
	}

	if a.Scope != s.Scope {
		return Ignore()
	}
	if a.Kind == domain.ActionSkip {
		if s.OnSkip == nil {
			return Ignore()
		}
		return s.OnSkip(env, f, a)
	}
	if s.OnAction == nil {
		return Ignore()
	}
	return s.OnAction(env, f, a)
}

// Registry maps every step id to its table entry.
type Registry struct {
	steps map[domain.StepID]*Step
}

// NewRegistry builds a registry from the given entries.
// It fails on duplicates, unknown ids or missing prompt builders.
func NewRegistry(steps ...*Step) (*Registry, error) {
	r := &Registry{steps: make(map[domain.StepID]*Step, len(steps))}
	for _, s := range steps {
		if !s.ID.Valid() {
			return nil, fmt.Errorf("unknown step %q", s.ID)
		}
		if _, dup := r.steps[s.ID]; dup {
			return nil, fmt.Errorf("duplicate step %q", s.ID)
		}
		if s.Prompt == nil {
			return nil, fmt.Errorf("step %q has no prompt", s.ID)
		}
		r.steps[s.ID] = s
	}
	return r, nil
}

// DefaultRegistry returns the wizard's transition table.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(defaultSteps()...)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the entry for id.
func (r *Registry) Lookup(id domain.StepID) (*Step, bool) {
	s, ok := r.steps[id]
	return s, ok
}

// Len returns the number of registered steps.
func (r *Registry) Len() int {
	return len(r.steps)
}
