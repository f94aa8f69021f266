package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/remnawizard/pkg/adapters/memory"
	"github.com/aretw0/remnawizard/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvisioner_RecordsAndEchoes(t *testing.T) {
	p := memory.NewProvisioner()
	req := domain.CreateUserRequest{
		Username:  "alice",
		ShortUUID: "short123",
		ExpireAt:  time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	rec, err := p.CreateUser(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "alice", rec.Username)
	assert.Equal(t, "short123", rec.ShortUUID)
	assert.NotEmpty(t, rec.UUID)
	assert.Contains(t, rec.SubscriptionURL, "short123")
	assert.Equal(t, 1, p.Calls())
	assert.Equal(t, req, p.Requests()[0])
}

func TestProvisioner_Error(t *testing.T) {
	p := memory.NewProvisioner()
	p.Err = errors.New("boom")

	rec, err := p.CreateUser(context.Background(), domain.CreateUserRequest{Username: "bob"})
	assert.Nil(t, rec)
	assert.EqualError(t, err, "boom")
	assert.Equal(t, 1, p.Calls(), "failed calls are recorded too")
}
