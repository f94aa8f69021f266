package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/remnawizard/pkg/domain"
)

// Combine calls every non-nil callback of each hook set, in order.
func Combine(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range sets {
		if h.OnTransition != nil {
			prev, next := out.OnTransition, h.OnTransition
			out.OnTransition = func(ctx context.Context, e *domain.TransitionEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				next(ctx, e)
			}
		}
		if h.OnSubmit != nil {
			prev, next := out.OnSubmit, h.OnSubmit
			out.OnSubmit = func(ctx context.Context, e *domain.SubmitEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				next(ctx, e)
			}
		}
		if h.OnDenied != nil {
			prev, next := out.OnDenied, h.OnDenied
			out.OnDenied = func(ctx context.Context, e *domain.EventBase) {
				if prev != nil {
					prev(ctx, e)
				}
				next(ctx, e)
			}
		}
	}
	return out
}

// AuditHooks logs submissions and denials at info level.
// Transitions are left to the engine's debug log.
func AuditHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSubmit: func(_ context.Context, e *domain.SubmitEvent) {
			logger.Info("audit: submission",
				"user_id", e.UserID,
				"username", e.Username,
				"outcome", e.Outcome,
				"code", e.Code,
				"duration", e.Duration,
			)
		},
		OnDenied: func(_ context.Context, e *domain.EventBase) {
			logger.Info("audit: denied", "user_id", e.UserID)
		},
	}
}
