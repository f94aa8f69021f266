package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/remnawizard/internal/logging"
	"github.com/aretw0/remnawizard/pkg/domain"
	"github.com/aretw0/remnawizard/pkg/session"
)

// DefaultSubmitTimeout bounds the single provisioning call.
const DefaultSubmitTimeout = 20 * time.Second

// Submitter turns a finished accumulator into a provisioned user.
// It must make a single attempt and classify every failure into the Outcome.
type Submitter interface {
	Submit(ctx context.Context, userID domain.UserID, f domain.Fields) domain.Outcome
}

// Engine is the core state machine runner.
// All work for one user runs under that user's session lock.
type Engine struct {
	registry  *Registry
	sessions  *session.Manager
	submitter Submitter
	env       Env
	timeout   time.Duration
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
}

// Option configures the Engine.
type Option func(*Engine)

// WithRegistry replaces the default transition table.
func WithRegistry(r *Registry) Option {
	return func(e *Engine) {
		e.registry = r
	}
}

// WithCatalog sets the squad catalogs offered by the squad steps.
func WithCatalog(c domain.Catalog) Option {
	return func(e *Engine) {
		e.env.Catalog = c
	}
}

// WithClock overrides the time source used for expiry computation.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.env.Now = now
	}
}

// WithTokenGenerator overrides the generator of usernames and short ids.
func WithTokenGenerator(gen func() string) Option {
	return func(e *Engine) {
		e.env.NewToken = gen
	}
}

// WithMaxInputSize bounds free-text input in bytes.
func WithMaxInputSize(n int) Option {
	return func(e *Engine) {
		e.env.MaxInputSize = n
	}
}

// WithSubmitTimeout bounds the provisioning call made on confirm.
func WithSubmitTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates a new engine with dependencies.
func NewEngine(sessions *session.Manager, submitter Submitter, opts ...Option) *Engine {
	e := &Engine{
		registry:  DefaultRegistry(),
		sessions:  sessions,
		submitter: submitter,
		timeout:   DefaultSubmitTimeout,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Handle processes one envelope. The current step always comes from the store.
func (e *Engine) Handle(ctx context.Context, env domain.Envelope) (domain.Reply, error) {
	action := env.Action()
	logger := e.logger.With(
		"request_id", uuid.NewString(),
		"user_id", env.UserID,
		"action", action.Kind,
	)

	var reply domain.Reply
	err := e.sessions.WithLock(ctx, env.UserID, func(ctx context.Context) error {
		var err error
		reply, err = e.handle(ctx, logger, env.UserID, action)
		return err
	})
	if err != nil {
		logger.Error("failed to handle action", "err", err)
		return domain.Reply{}, err
	}
	return reply, nil
}

func (e *Engine) handle(ctx context.Context, logger *slog.Logger, userID domain.UserID, a domain.Action) (domain.Reply, error) {
	store := e.sessions.Store()

	s, err := store.Load(ctx, userID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		s, err = nil, nil
	}
	if err != nil {
		return domain.Reply{}, fmt.Errorf("failed to load session: %w", err)
	}

	from := domain.StepIdle
	if s != nil {
		from = s.CurrentStep
	}

	switch a.Kind {
	case domain.ActionHome, domain.ActionCancel:
		if s != nil {
			if err := store.Delete(ctx, userID); err != nil {
				return domain.Reply{}, fmt.Errorf("failed to clear session: %w", err)
			}
		}
		e.emitTransition(ctx, logger, userID, a, from, domain.StepIdle, domain.ResultCleared)
		p := IdlePrompt()
		if a.Kind == domain.ActionHome {
			p = HomePrompt()
		}
		return domain.Reply{Prompt: p, Step: domain.StepIdle, Cleared: s != nil}, nil

	case domain.ActionBegin:
		fresh := domain.NewSession(userID)
		fresh.UpdatedAt = e.env.now()
		return e.advance(ctx, logger, fresh, a, from, "")
	}

	if s == nil {
		e.emitTransition(ctx, logger, userID, a, from, from, domain.ResultIgnore)
		return domain.Reply{Step: domain.StepIdle, Ignored: true}, nil
	}

	step, ok := e.registry.Lookup(s.CurrentStep)
	if !ok {
		return domain.Reply{}, fmt.Errorf("session is at unknown step %q", s.CurrentStep)
	}

	res := step.Dispatch(&e.env, s.Fields.Clone(), a)
	switch res.Kind {
	case ResultIgnore:
		e.emitTransition(ctx, logger, userID, a, from, from, domain.ResultIgnore)
		return domain.Reply{Step: from, Ignored: true}, nil

	case ResultReject:
		e.emitTransition(ctx, logger, userID, a, from, from, domain.ResultReject)
		p := step.Prompt(&e.env, s.Fields)
		p.Error = res.Reason
		return domain.Reply{Prompt: p, Step: from, Rejected: true}, nil

	case ResultTerminal:
		return e.submit(ctx, logger, s, a)
	}

	next := s.Clone()
	if res.Patch != nil {
		res.Patch(&next.Fields)
	}
	next.CurrentStep = res.Next
	next.UpdatedAt = e.env.now()
	return e.advance(ctx, logger, next, a, from, res.Notice)
}

// advance persists s and renders the prompt of its current step.
func (e *Engine) advance(ctx context.Context, logger *slog.Logger, s *domain.Session, a domain.Action, from domain.StepID, notice string) (domain.Reply, error) {
	step, ok := e.registry.Lookup(s.CurrentStep)
	if !ok {
		return domain.Reply{}, fmt.Errorf("transition to unknown step %q", s.CurrentStep)
	}
	if err := e.sessions.Store().Save(ctx, s.UserID, s); err != nil {
		return domain.Reply{}, fmt.Errorf("failed to save session: %w", err)
	}
	e.emitTransition(ctx, logger, s.UserID, a, from, s.CurrentStep, domain.ResultAdvance)

	p := step.Prompt(&e.env, s.Fields)
	if notice != "" {
		p.Text = notice + "\n\n" + p.Text
	}
	return domain.Reply{Prompt: p, Step: s.CurrentStep}, nil
}

// submit clears the session, then makes the single submission attempt.
func (e *Engine) submit(ctx context.Context, logger *slog.Logger, s *domain.Session, a domain.Action) (domain.Reply, error) {
	if err := e.sessions.Store().Delete(ctx, s.UserID); err != nil {
		return domain.Reply{}, fmt.Errorf("failed to clear session before submit: %w", err)
	}
	e.emitTransition(ctx, logger, s.UserID, a, s.CurrentStep, domain.StepIdle, domain.ResultSubmit)

	// The session is gone already: only the timeout may abort the call,
	// not a disconnecting caller or a shutdown.
	submitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
	defer cancel()
	outcome := e.submitter.Submit(submitCtx, s.UserID, s.Fields)
	if outcome.OK() {
		logger.Info("user created", "username", outcome.Record.Username, "uuid", outcome.Record.UUID)
	} else {
		logger.Error("submission failed", "username", s.Fields.Username, "err", outcome.Err)
	}
	return domain.Reply{Prompt: OutcomePrompt(outcome), Step: domain.StepIdle, Cleared: true}, nil
}

func (e *Engine) emitTransition(ctx context.Context, logger *slog.Logger, userID domain.UserID, a domain.Action, from, to domain.StepID, result string) {
	logger.Debug("transition", "from", from, "to", to, "result", result)
	if e.hooks.OnTransition == nil {
		return
	}
	e.hooks.OnTransition(ctx, &domain.TransitionEvent{
		EventBase: domain.EventBase{
			Timestamp: time.Now(),
			Type:      domain.EventTransition,
			UserID:    userID,
		},
		From:   from,
		To:     to,
		Action: a.Kind,
		Result: result,
	})
}
