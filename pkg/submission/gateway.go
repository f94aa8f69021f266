// Package submission maps a finished accumulator onto a provisioning request
// and performs the single external call that ends a wizard.
package submission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/remnawizard/internal/logging"
	"github.com/aretw0/remnawizard/pkg/domain"
	"github.com/aretw0/remnawizard/pkg/ports"
)

// Outcome labels reported in SubmitEvent.
const (
	OutcomeOK             = "ok"
	OutcomeAPIError       = "api_error"
	OutcomeTransportError = "transport_error"
)

// Gateway submits requests to a Provisioner.
// It has no retry and no timeout of its own: the caller's context bounds the call.
type Gateway struct {
	provisioner ports.Provisioner
	newToken    func() string
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
}

// Option configures the Gateway.
type Option func(*Gateway)

// WithTokenGenerator overrides the short id generator used when none was minted.
func WithTokenGenerator(gen func() string) Option {
	return func(g *Gateway) {
		if gen != nil {
			g.newToken = gen
		}
	}
}

// WithLifecycleHooks registers the OnSubmit callback.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(g *Gateway) {
		g.hooks = hooks
	}
}

// WithLogger sets the gateway logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// NewGateway creates a Gateway around p.
func NewGateway(p ports.Provisioner, opts ...Option) *Gateway {
	g := &Gateway{
		provisioner: p,
		newToken:    domain.NewShortID,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// BuildRequest maps f one to one onto the panel request, filling defaults.
// It fails with domain.ErrIncomplete when username or expiry are missing.
func BuildRequest(f domain.Fields, newToken func() string) (domain.CreateUserRequest, error) {
	if f.Username == "" {
		return domain.CreateUserRequest{}, fmt.Errorf("%w: username is missing", domain.ErrIncomplete)
	}
	if f.ExpireAt == nil {
		return domain.CreateUserRequest{}, fmt.Errorf("%w: expiry is missing", domain.ErrIncomplete)
	}

	req := domain.CreateUserRequest{
		Username:             f.Username,
		ShortUUID:            f.ShortID,
		ExpireAt:             f.ExpireAt.UTC(),
		Email:                f.Email,
		TelegramID:           f.TelegramID,
		HWIDDeviceLimit:      domain.DefaultHWIDDeviceLimit,
		Tag:                  f.Tag,
		Description:          f.Description,
		TrafficLimitStrategy: f.TrafficLimitStrategy,
		ActiveInternalSquads: []string{},
		ExternalSquadUUID:    f.ExternalSquadID,
	}
	if req.ShortUUID == "" {
		req.ShortUUID = newToken()
	}
	if f.HWIDDeviceLimit != nil {
		req.HWIDDeviceLimit = *f.HWIDDeviceLimit
	}
	if f.TrafficLimitBytes != nil {
		req.TrafficLimitBytes = *f.TrafficLimitBytes
	}
	if req.TrafficLimitStrategy == "" {
		req.TrafficLimitStrategy = domain.DefaultStrategy
	}
	if len(f.ActiveInternalSquads) > 0 {
		req.ActiveInternalSquads = append(req.ActiveInternalSquads, f.ActiveInternalSquads...)
	}
	return req, nil
}

// Submit makes exactly one provisioning call and classifies the result.
// The returned Outcome has a nil Err, an *APIError or a *TransportError.
func (g *Gateway) Submit(ctx context.Context, userID domain.UserID, f domain.Fields) domain.Outcome {
	start := time.Now()

	req, err := BuildRequest(f, g.newToken)
	if err != nil {
		out := domain.Outcome{Err: &domain.TransportError{Message: err.Error(), Err: err}}
		g.emit(ctx, userID, f.Username, start, out)
		return out
	}

	record, err := g.provisioner.CreateUser(ctx, req)
	out := Classify(record, err)
	g.emit(ctx, userID, req.Username, start, out)
	return out
}

// Classify normalizes a provisioner result into an Outcome.
func Classify(record *domain.UserRecord, err error) domain.Outcome {
	if err == nil && record == nil {
		err = errors.New("provisioner returned no record")
	}
	if err == nil {
		return domain.Outcome{Record: record}
	}

	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		return domain.Outcome{Err: apiErr}
	}
	var tErr *domain.TransportError
	if errors.As(err, &tErr) {
		return domain.Outcome{Err: tErr}
	}
	return domain.Outcome{Err: &domain.TransportError{Message: err.Error(), Err: err}}
}

func (g *Gateway) emit(ctx context.Context, userID domain.UserID, username string, start time.Time, out domain.Outcome) {
	ev := &domain.SubmitEvent{
		EventBase: domain.EventBase{
			Timestamp: time.Now(),
			Type:      domain.EventSubmit,
			UserID:    userID,
		},
		Username: username,
		Duration: time.Since(start),
		Outcome:  OutcomeOK,
	}

	var apiErr *domain.APIError
	switch {
	case out.OK():
		g.logger.Info("submission succeeded", "user_id", userID, "username", username, "duration", ev.Duration)
	case errors.As(out.Err, &apiErr):
		ev.Outcome = OutcomeAPIError
		ev.Code = apiErr.Code
		g.logger.Error("submission rejected by panel", "user_id", userID, "code", apiErr.Code, "err", out.Err)
	default:
		ev.Outcome = OutcomeTransportError
		g.logger.Error("submission failed", "user_id", userID, "err", out.Err)
	}

	if g.hooks.OnSubmit != nil {
		g.hooks.OnSubmit(ctx, ev)
	}
}
