package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/remnawizard/internal/logging"
	"github.com/aretw0/remnawizard/pkg/domain"
	"github.com/aretw0/remnawizard/pkg/observability"
)

func TestMetrics_Hooks(t *testing.T) {
	m := observability.NewMetrics()
	h := m.Hooks()
	ctx := context.Background()

	h.OnTransition(ctx, &domain.TransitionEvent{From: domain.StepEmail, Result: domain.ResultAdvance})
	h.OnTransition(ctx, &domain.TransitionEvent{From: domain.StepEmail, Result: domain.ResultAdvance})
	h.OnTransition(ctx, &domain.TransitionEvent{From: domain.StepHWIDLimit, Result: domain.ResultReject})
	h.OnSubmit(ctx, &domain.SubmitEvent{Outcome: "ok", Duration: 120 * time.Millisecond})
	h.OnSubmit(ctx, &domain.SubmitEvent{Outcome: "api_error", Duration: time.Second})
	h.OnDenied(ctx, &domain.EventBase{UserID: 7})

	expected := `
# HELP remnawizard_transitions_total Handled wizard actions by step and result.
# TYPE remnawizard_transitions_total counter
remnawizard_transitions_total{from="email",result="advance"} 2
remnawizard_transitions_total{from="hwid_limit",result="reject"} 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "remnawizard_transitions_total"))

	expected = `
# HELP remnawizard_submissions_total Provisioning attempts by outcome.
# TYPE remnawizard_submissions_total counter
remnawizard_submissions_total{outcome="api_error"} 1
remnawizard_submissions_total{outcome="ok"} 1
# HELP remnawizard_denials_total Actions refused by the allow-list.
# TYPE remnawizard_denials_total counter
remnawizard_denials_total 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected),
		"remnawizard_submissions_total", "remnawizard_denials_total"))

	count, err := testutil.GatherAndCount(m.Registry(), "remnawizard_submission_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestCombine(t *testing.T) {
	var calls []string
	a := domain.LifecycleHooks{
		OnTransition: func(context.Context, *domain.TransitionEvent) { calls = append(calls, "a") },
	}
	b := domain.LifecycleHooks{
		OnTransition: func(context.Context, *domain.TransitionEvent) { calls = append(calls, "b") },
		OnDenied:     func(context.Context, *domain.EventBase) { calls = append(calls, "b-denied") },
	}

	h := observability.Combine(a, domain.LifecycleHooks{}, b)
	h.OnTransition(context.Background(), &domain.TransitionEvent{})
	h.OnDenied(context.Background(), &domain.EventBase{})
	assert.Nil(t, h.OnSubmit)
	assert.Equal(t, []string{"a", "b", "b-denied"}, calls)
}

func TestAuditHooks(t *testing.T) {
	var buf bytes.Buffer
	h := observability.AuditHooks(logging.NewWithWriter(&buf, slog.LevelInfo, "text"))

	h.OnSubmit(context.Background(), &domain.SubmitEvent{
		EventBase: domain.EventBase{UserID: 9},
		Username:  "alice",
		Outcome:   "ok",
	})
	h.OnDenied(context.Background(), &domain.EventBase{UserID: 13})

	out := buf.String()
	assert.Contains(t, out, "audit: submission")
	assert.Contains(t, out, "username=alice")
	assert.Contains(t, out, "audit: denied")
	assert.Contains(t, out, "user_id=13")
}
