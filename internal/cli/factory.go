// Package cli assembles the wizard and its collaborators from configuration.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/remnawizard"
	"github.com/aretw0/remnawizard/internal/config"
	"github.com/aretw0/remnawizard/internal/logging"
	"github.com/aretw0/remnawizard/pkg/adapters/file"
	"github.com/aretw0/remnawizard/pkg/adapters/memory"
	"github.com/aretw0/remnawizard/pkg/adapters/redis"
	"github.com/aretw0/remnawizard/pkg/adapters/remnawave"
	"github.com/aretw0/remnawizard/pkg/domain"
	"github.com/aretw0/remnawizard/pkg/observability"
	"github.com/aretw0/remnawizard/pkg/ports"
)

// BuildOptions select the behaviour of a single CLI invocation.
type BuildOptions struct {
	// DryRun replaces the panel client with a recording provisioner.
	DryRun bool
	// ExtraAdmins are allowed in addition to ADMIN_IDS.
	ExtraAdmins []int64
}

// Stack is a wired wizard plus what the transports need around it.
type Stack struct {
	Wizard  *remnawizard.Wizard
	Metrics *observability.Metrics
	// Health is nil when there is no backend worth pinging.
	Health interface {
		Ping(ctx context.Context) error
	}
	Logger *slog.Logger

	closers []func() error
}

// Close releases backend connections.
func (s *Stack) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// logWriter keeps logs off stdout, which belongs to the console and the graph output.
var logWriter io.Writer = os.Stderr

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func NewLogger(cfg config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.NewWithWriter(logWriter, level, cfg.LogFormat), nil
}

// Build wires the wizard from cfg.
func Build(cfg config.Config, opts BuildOptions, logger *slog.Logger) (*Stack, error) {
	if !opts.DryRun {
		if err := cfg.Require("REMNAWAVE_BASE_URL", "REMNAWAVE_TOKEN"); err != nil {
			return nil, err
		}
	}

	admins, err := cfg.Admins()
	if err != nil {
		return nil, err
	}
	for _, id := range opts.ExtraAdmins {
		admins[domain.UserID(id)] = struct{}{}
	}

	catalog, err := cfg.Catalog()
	if err != nil {
		return nil, err
	}

	stack := &Stack{Metrics: observability.NewMetrics(), Logger: logger}

	var provisioner ports.Provisioner
	if opts.DryRun {
		logger.Warn("dry run: users are not created on the panel")
		provisioner = memory.NewProvisioner()
	} else {
		provisioner = remnawave.NewClient(cfg.RemnawaveBaseURL, cfg.RemnawaveToken,
			remnawave.WithCookie(cfg.RemnawaveCookie))
	}

	wizOpts := []remnawizard.Option{
		remnawizard.WithAdmins(admins),
		remnawizard.WithCatalog(catalog),
		remnawizard.WithLogger(logger),
		remnawizard.WithMaxInputSize(cfg.MaxInputSize),
		remnawizard.WithLifecycleHooks(observability.Combine(
			stack.Metrics.Hooks(),
			observability.AuditHooks(logger),
		)),
	}

	if cfg.RedisAddr != "" {
		var storeOpts []redis.Option
		if cfg.SessionTTL > 0 {
			storeOpts = append(storeOpts, redis.WithTTL(cfg.SessionTTL))
		}
		store := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, storeOpts...)
		wizOpts = append(wizOpts,
			remnawizard.WithStore(store),
			remnawizard.WithLocker(redis.NewLocker(store.Client(), redis.DefaultPrefix)),
		)
		stack.Health = store
		stack.closers = append(stack.closers, store.Close)
		logger.Info("using redis session store", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
	} else if cfg.SessionDir != "" {
		wizOpts = append(wizOpts, remnawizard.WithStore(file.New(cfg.SessionDir)))
		logger.Info("using file session store", "dir", cfg.SessionDir)
	}

	active, fallback, err := cfg.EncryptionKeys()
	if err != nil {
		return nil, err
	}
	if active != nil {
		wizOpts = append(wizOpts, remnawizard.WithEncryption(active, fallback...))
	}

	stack.Wizard, err = remnawizard.New(provisioner, wizOpts...)
	if err != nil {
		stack.Close()
		return nil, fmt.Errorf("error initializing wizard: %w", err)
	}
	if len(admins) == 0 {
		logger.Warn("ADMIN_IDS is empty: every user will be denied")
	}
	return stack, nil
}
