// Package access restricts the wizard to an allow-list of operators.
package access

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/remnawizard/internal/logging"
	"github.com/aretw0/remnawizard/pkg/domain"
	"github.com/aretw0/remnawizard/pkg/ports"
)

// DenialText is the fixed answer to identities outside the allow-list.
const DenialText = "⛔ You do not have access to this bot."

// AllowList is a set of privileged user ids. The zero value allows nobody.
type AllowList map[domain.UserID]struct{}

// NewAllowList builds an allow-list from ids.
func NewAllowList(ids ...domain.UserID) AllowList {
	a := make(AllowList, len(ids))
	for _, id := range ids {
		a[id] = struct{}{}
	}
	return a
}

// ParseAllowList parses a comma separated list of ids such as "5610915553, 1838230929".
func ParseAllowList(s string) (AllowList, error) {
	a := make(AllowList)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("allow-list contains non-integer %q: %w", part, err)
		}
		a[domain.UserID(v)] = struct{}{}
	}
	return a, nil
}

// Allowed reports whether id is privileged.
func (a AllowList) Allowed(id domain.UserID) bool {
	_, ok := a[id]
	return ok
}

// Check returns domain.ErrUnauthorized for non-privileged ids.
func (a AllowList) Check(id domain.UserID) error {
	if a.Allowed(id) {
		return nil
	}
	return fmt.Errorf("%w: user %d", domain.ErrUnauthorized, id)
}

// Guard wraps a Handler and answers non-privileged senders itself.
// Denied envelopes never reach the wrapped handler, so no session is read or written.
type Guard struct {
	next   ports.Handler
	allow  AllowList
	hooks  domain.LifecycleHooks
	logger *slog.Logger
}

// Option configures the Guard.
type Option func(*Guard)

// WithLifecycleHooks registers the OnDenied callback.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(g *Guard) {
		g.hooks = hooks
	}
}

// WithLogger sets the guard logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Guard) {
		g.logger = logger
	}
}

// NewGuard protects next with allow.
func NewGuard(next ports.Handler, allow AllowList, opts ...Option) *Guard {
	g := &Guard{
		next:   next,
		allow:  allow,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Handle implements ports.Handler.
func (g *Guard) Handle(ctx context.Context, env domain.Envelope) (domain.Reply, error) {
	err := g.allow.Check(env.UserID)
	if err == nil {
		return g.next.Handle(ctx, env)
	}

	g.logger.Warn("access denied", "user_id", env.UserID, "err", err)
	if g.hooks.OnDenied != nil {
		g.hooks.OnDenied(ctx, &domain.EventBase{
			Timestamp: time.Now(),
			Type:      domain.EventDenied,
			UserID:    env.UserID,
		})
	}
	return DenialReply(), nil
}

// DenialReply is the reply sent to non-privileged senders.
func DenialReply() domain.Reply {
	return domain.Reply{
		Prompt: domain.Prompt{Text: DenialText},
		Step:   domain.StepIdle,
		Denied: true,
	}
}
