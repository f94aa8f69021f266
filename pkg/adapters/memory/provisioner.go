package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/remnawizard/pkg/domain"
	"github.com/google/uuid"
)

// Provisioner implements ports.Provisioner without a panel.
// It records every request and answers with a fabricated record, which makes it
// the dry-run backend of the CLI and the fake of choice in tests.
type Provisioner struct {
	mu       sync.Mutex
	requests []domain.CreateUserRequest

	// Err, when set, is returned instead of a record.
	Err error
	// SubscriptionBase prefixes the fabricated subscription URL.
	SubscriptionBase string
}

// NewProvisioner creates a recording provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{SubscriptionBase: "https://sub.example.invalid/"}
}

// CreateUser records req and returns a record echoing its key fields.
func (p *Provisioner) CreateUser(ctx context.Context, req domain.CreateUserRequest) (*domain.UserRecord, error) {
	p.mu.Lock()
	p.requests = append(p.requests, req)
	err := p.Err
	p.mu.Unlock()

	if err != nil {
		return nil, err
	}

	return &domain.UserRecord{
		UUID:            uuid.NewString(),
		ShortUUID:       req.ShortUUID,
		Username:        req.Username,
		ExpireAt:        req.ExpireAt,
		SubscriptionURL: fmt.Sprintf("%s%s", p.SubscriptionBase, req.ShortUUID),
	}, nil
}

// Requests returns a copy of the recorded requests.
func (p *Provisioner) Requests() []domain.CreateUserRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.CreateUserRequest, len(p.requests))
	copy(out, p.requests)
	return out
}

// Calls returns how many times CreateUser was invoked.
func (p *Provisioner) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}
