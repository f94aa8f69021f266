package submission_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/remnawizard/pkg/adapters/memory"
	"github.com/aretw0/remnawizard/pkg/domain"
	"github.com/aretw0/remnawizard/pkg/submission"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedToken() string { return "minted_short_id_" }

func completeFields() domain.Fields {
	at := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	return domain.Fields{
		Username: "alice_01",
		ShortID:  "abcdefghijklmnop",
		ExpireAt: &at,
	}
}

func TestBuildRequest_Defaults(t *testing.T) {
	req, err := submission.BuildRequest(completeFields(), fixedToken)
	require.NoError(t, err)

	assert.Equal(t, "alice_01", req.Username)
	assert.Equal(t, "abcdefghijklmnop", req.ShortUUID)
	assert.Equal(t, domain.DefaultHWIDDeviceLimit, req.HWIDDeviceLimit)
	assert.Equal(t, domain.StrategyMonth, req.TrafficLimitStrategy)
	assert.NotNil(t, req.ActiveInternalSquads)
	assert.Empty(t, req.ActiveInternalSquads)
	assert.Nil(t, req.Email)
	assert.Nil(t, req.ExternalSquadUUID)
	assert.Zero(t, req.TrafficLimitBytes)
}

func TestBuildRequest_CopiesFields(t *testing.T) {
	f := completeFields()
	f.ShortID = ""
	f.Email = domain.Ptr("a@b.c")
	f.TelegramID = domain.Ptr[int64](42)
	f.HWIDDeviceLimit = domain.Ptr(0)
	f.TrafficLimitBytes = domain.Ptr[int64](100 << 30)
	f.TrafficLimitStrategy = domain.StrategyWeek
	f.ActiveInternalSquads = []string{"id-1", "id-2"}
	f.ExternalSquadID = domain.Ptr("ext-1")

	req, err := submission.BuildRequest(f, fixedToken)
	require.NoError(t, err)

	assert.Equal(t, "minted_short_id_", req.ShortUUID)
	assert.Equal(t, "a@b.c", *req.Email)
	assert.Equal(t, int64(42), *req.TelegramID)
	assert.Equal(t, 0, req.HWIDDeviceLimit)
	assert.Equal(t, int64(100<<30), req.TrafficLimitBytes)
	assert.Equal(t, domain.StrategyWeek, req.TrafficLimitStrategy)
	assert.Equal(t, []string{"id-1", "id-2"}, req.ActiveInternalSquads)
	assert.Equal(t, "ext-1", *req.ExternalSquadUUID)
}

func TestBuildRequest_Incomplete(t *testing.T) {
	f := completeFields()
	f.ExpireAt = nil
	_, err := submission.BuildRequest(f, fixedToken)
	assert.ErrorIs(t, err, domain.ErrIncomplete)

	f = completeFields()
	f.Username = ""
	_, err = submission.BuildRequest(f, fixedToken)
	assert.ErrorIs(t, err, domain.ErrIncomplete)
}

func TestGateway_Submit(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantOutcome string
		check       func(t *testing.T, out domain.Outcome)
	}{
		{
			name:        "Success",
			wantOutcome: submission.OutcomeOK,
			check: func(t *testing.T, out domain.Outcome) {
				require.True(t, out.OK())
				assert.Equal(t, "alice_01", out.Record.Username)
				assert.NotEmpty(t, out.Record.UUID)
			},
		},
		{
			name:        "API Error",
			err:         &domain.APIError{Status: 400, Code: "A019", Message: "User username already exists"},
			wantOutcome: submission.OutcomeAPIError,
			check: func(t *testing.T, out domain.Outcome) {
				var apiErr *domain.APIError
				require.ErrorAs(t, out.Err, &apiErr)
				assert.Equal(t, "A019", apiErr.Code)
				assert.Equal(t, "User username already exists", apiErr.Message)
			},
		},
		{
			name:        "Wrapped API Error",
			err:         errors.Join(errors.New("context"), &domain.APIError{Code: "A001", Message: "boom"}),
			wantOutcome: submission.OutcomeAPIError,
		},
		{
			name:        "Transport Error",
			err:         errors.New("dial tcp: connection refused"),
			wantOutcome: submission.OutcomeTransportError,
			check: func(t *testing.T, out domain.Outcome) {
				var tErr *domain.TransportError
				require.ErrorAs(t, out.Err, &tErr)
				assert.Contains(t, tErr.Error(), "connection refused")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := memory.NewProvisioner()
			p.Err = tt.err

			var events []*domain.SubmitEvent
			g := submission.NewGateway(p, submission.WithLifecycleHooks(domain.LifecycleHooks{
				OnSubmit: func(_ context.Context, e *domain.SubmitEvent) { events = append(events, e) },
			}))

			out := g.Submit(context.Background(), 7, completeFields())

			assert.Equal(t, 1, p.Calls(), "exactly one provisioning call")
			require.Len(t, events, 1)
			assert.Equal(t, tt.wantOutcome, events[0].Outcome)
			assert.Equal(t, domain.UserID(7), events[0].UserID)
			if tt.check != nil {
				tt.check(t, out)
			}
		})
	}
}

func TestGateway_SubmitIncompleteSkipsProvisioner(t *testing.T) {
	p := memory.NewProvisioner()
	g := submission.NewGateway(p)

	out := g.Submit(context.Background(), 1, domain.Fields{Username: "bob"})

	assert.Equal(t, 0, p.Calls())
	var tErr *domain.TransportError
	require.ErrorAs(t, out.Err, &tErr)
	assert.ErrorIs(t, out.Err, domain.ErrIncomplete)
}
