package ports

import (
	"context"

	"github.com/aretw0/remnawizard/pkg/domain"
)

// Handler processes one inbound envelope and returns what to show next.
// Transports depend on this interface, not on the engine itself.
type Handler interface {
	Handle(ctx context.Context, env domain.Envelope) (domain.Reply, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, env domain.Envelope) (domain.Reply, error)

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, env domain.Envelope) (domain.Reply, error) {
	return f(ctx, env)
}
