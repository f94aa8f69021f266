package remnawizard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/remnawizard/internal/config"
	"github.com/aretw0/remnawizard/internal/logging"
	"github.com/aretw0/remnawizard/internal/runtime"
	"github.com/aretw0/remnawizard/pkg/access"
	"github.com/aretw0/remnawizard/pkg/adapters/memory"
	"github.com/aretw0/remnawizard/pkg/domain"
	"github.com/aretw0/remnawizard/pkg/persistence/middleware"
	"github.com/aretw0/remnawizard/pkg/ports"
	"github.com/aretw0/remnawizard/pkg/session"
	"github.com/aretw0/remnawizard/pkg/submission"
)

// Wizard is the high-level entry point of the library.
// It wires the session store, the state machine, the submission gateway
// and the authorization guard behind a single Handle call.
type Wizard struct {
	handler  ports.Handler
	sessions *session.Manager

	catalog     *domain.Catalog
	store       ports.SessionStore
	locker      ports.DistributedLocker
	lockTTL     time.Duration
	admins      access.AllowList
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	now         func() time.Time
	newToken    func() string
	maxInput    int
	encryption  *middleware.EncryptionConfig
	middlewares []middleware.Middleware
}

// Option defines a functional option for configuring the Wizard.
type Option func(*Wizard)

// WithCatalog sets the squad catalogs. The embedded default is used otherwise.
func WithCatalog(c domain.Catalog) Option {
	return func(w *Wizard) {
		w.catalog = &c
	}
}

// WithStore sets the session store (default: in-memory).
func WithStore(s ports.SessionStore) Option {
	return func(w *Wizard) {
		w.store = s
	}
}

// WithLocker adds a distributed lock around every action, for multi-replica setups.
func WithLocker(l ports.DistributedLocker) Option {
	return func(w *Wizard) {
		w.locker = l
	}
}

// WithLockTTL sets the expiry of the distributed lock.
func WithLockTTL(ttl time.Duration) Option {
	return func(w *Wizard) {
		w.lockTTL = ttl
	}
}

// WithAdmins sets the users allowed to operate the wizard.
// Without it nobody is allowed.
func WithAdmins(allow access.AllowList) Option {
	return func(w *Wizard) {
		w.admins = allow
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(w *Wizard) {
		w.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Wizard) {
		w.logger = logger
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(w *Wizard) {
		w.now = now
	}
}

// WithTokenGenerator overrides the generator of usernames and short ids.
func WithTokenGenerator(gen func() string) Option {
	return func(w *Wizard) {
		w.newToken = gen
	}
}

// WithMaxInputSize bounds free-text input in bytes.
func WithMaxInputSize(n int) Option {
	return func(w *Wizard) {
		w.maxInput = n
	}
}

// WithEncryption seals sessions at rest with AES-256-GCM.
// Fallback keys only decrypt, for rotation.
func WithEncryption(active []byte, fallback ...[]byte) Option {
	return func(w *Wizard) {
		w.encryption = &middleware.EncryptionConfig{ActiveKey: active, FallbackKeys: fallback}
	}
}

// WithStoreMiddleware wraps the session store. Middlewares run outermost first,
// after encryption.
func WithStoreMiddleware(mws ...middleware.Middleware) Option {
	return func(w *Wizard) {
		w.middlewares = append(w.middlewares, mws...)
	}
}

// New builds a Wizard submitting to p.
func New(p ports.Provisioner, opts ...Option) (*Wizard, error) {
	if p == nil {
		return nil, fmt.Errorf("provisioner is required")
	}
	w := &Wizard{}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logging.NewNop()
	}
	if w.store == nil {
		w.store = memory.NewStore()
	}
	if w.catalog == nil {
		c := config.DefaultCatalog()
		w.catalog = &c
	}

	var mws []middleware.Middleware
	if w.encryption != nil {
		enc, err := middleware.NewEncryptionMiddleware(*w.encryption)
		if err != nil {
			return nil, fmt.Errorf("failed to configure encryption: %w", err)
		}
		mws = append(mws, enc)
	}
	store := middleware.Chain(w.store, append(mws, w.middlewares...)...)

	sessionOpts := []session.Option{session.WithLogger(w.logger)}
	if w.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(w.locker))
	}
	if w.lockTTL > 0 {
		sessionOpts = append(sessionOpts, session.WithLockTTL(w.lockTTL))
	}
	w.sessions = session.NewManager(store, sessionOpts...)

	gatewayOpts := []submission.Option{
		submission.WithLifecycleHooks(w.hooks),
		submission.WithLogger(w.logger),
	}
	engineOpts := []runtime.Option{
		runtime.WithCatalog(*w.catalog),
		runtime.WithLifecycleHooks(w.hooks),
		runtime.WithLogger(w.logger),
		runtime.WithMaxInputSize(w.maxInput),
	}
	if w.now != nil {
		engineOpts = append(engineOpts, runtime.WithClock(w.now))
	}
	if w.newToken != nil {
		gatewayOpts = append(gatewayOpts, submission.WithTokenGenerator(w.newToken))
		engineOpts = append(engineOpts, runtime.WithTokenGenerator(w.newToken))
	}

	gateway := submission.NewGateway(p, gatewayOpts...)
	engine := runtime.NewEngine(w.sessions, gateway, engineOpts...)
	w.handler = access.NewGuard(engine, w.admins,
		access.WithLifecycleHooks(w.hooks),
		access.WithLogger(w.logger),
	)
	return w, nil
}

// Handle processes one inbound action for one user.
// Infrastructure failures (store, lock) are returned as errors; every
// wizard outcome, including denials and rejections, is a Reply.
func (w *Wizard) Handle(ctx context.Context, env domain.Envelope) (domain.Reply, error) {
	return w.handler.Handle(ctx, env)
}

// Sessions returns the session store as seen by the engine.
func (w *Wizard) Sessions() ports.SessionStore {
	return w.sessions.Store()
}

// Admins returns the operators the guard lets through.
func (w *Wizard) Admins() access.AllowList {
	return w.admins
}

// Catalog returns the squad catalogs in use.
func (w *Wizard) Catalog() domain.Catalog {
	return *w.catalog
}
